package worker

import (
	"context"
	"errors"
	"fmt"

	"wallet/internal/amqp"
	"wallet/internal/core"
	applog "wallet/internal/log"
	"wallet/internal/sheets"
	"wallet/internal/storage"
)

// ExportWorker copies recorded transactions to a spreadsheet.
type ExportWorker struct {
	ledger     storage.LedgerReader
	categories storage.CategoryResolver
	exporter   sheets.TransactionExporter
	logger     *applog.Logger
}

func NewExportWorker(ledger storage.LedgerReader, categories storage.CategoryResolver, exporter sheets.TransactionExporter, logger *applog.Logger) *ExportWorker {
	if logger == nil {
		logger = applog.Nop()
	}
	return &ExportWorker{
		ledger:     ledger,
		categories: categories,
		exporter:   exporter,
		logger:     logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleTransactionRecorded exports the transaction named by msg.
// A transaction that no longer exists is acknowledged and skipped; any
// other failure is returned so the delivery is requeued.
func (w *ExportWorker) HandleTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	w.logger.DebugContext(ctx, "Processing transaction event",
		applog.FieldEventID, msg.EventID,
		applog.FieldTransactionID, msg.TransactionID)

	t, err := w.ledger.GetTransaction(ctx, msg.TransactionID)
	if errors.Is(err, core.ErrTransactionNotFound) {
		w.logger.WarnContext(ctx, "Transaction from event not found, skipping",
			applog.FieldEventID, msg.EventID,
			applog.FieldTransactionID, msg.TransactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if _, err := w.export(ctx, msg.OwnerID, t); err != nil {
		return err
	}
	return nil
}

// Backfill exports every transaction of ownerID matching f, oldest first.
// It stops at the first export failure and reports how many rows were written.
func (w *ExportWorker) Backfill(ctx context.Context, ownerID string, f core.TransactionFilter) (int, error) {
	wallet, err := w.ledger.GetWallet(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	txns, err := w.ledger.QueryTransactions(ctx, wallet.ID, f)
	if err != nil {
		return 0, fmt.Errorf("query transactions: %w", err)
	}

	exported := 0
	for i := len(txns) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return exported, err
		}
		if _, err := w.export(ctx, ownerID, txns[i]); err != nil {
			return exported, err
		}
		exported++
	}

	w.logger.InfoContext(ctx, "Backfill completed",
		applog.FieldOwnerID, ownerID,
		"exported", exported)
	return exported, nil
}

func (w *ExportWorker) export(ctx context.Context, ownerID string, t core.Transaction) (string, error) {
	row := sheets.NewRow(ownerID, t, w.categoryName(ctx, t.CategoryID))
	ref, err := w.exporter.Export(ctx, row)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to export transaction",
			applog.NewFields().
				WithOperation(applog.OpExport).
				WithTransaction(t.ID, t.Kind.String(), t.Amount.String()).
				WithError(err, core.ErrorCode(err)).
				ToSlice()...)
		return "", fmt.Errorf("export transaction %d: %w", t.ID, err)
	}

	w.logger.InfoContext(ctx, "Exported transaction",
		applog.FieldTransactionID, t.ID,
		applog.FieldOwnerID, ownerID,
		"row_ref", ref)
	return ref, nil
}

// categoryName never fails: unknown or unreachable categories export as uncategorized.
func (w *ExportWorker) categoryName(ctx context.Context, id *int64) string {
	if id == nil || w.categories == nil {
		return core.UncategorizedName
	}
	c, err := w.categories.ResolveCategory(ctx, *id)
	if err != nil {
		if !errors.Is(err, core.ErrCategoryNotFound) {
			w.logger.WarnContext(ctx, "Category lookup failed, exporting as uncategorized",
				applog.FieldCategoryID, *id,
				applog.FieldError, err)
		}
		return core.UncategorizedName
	}
	return c.Name
}
