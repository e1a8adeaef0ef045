package memory

import (
	"context"
	"fmt"
	"sync"

	"wallet/internal/sheets"
)

// Exporter keeps exported rows in memory. Re-exporting a transaction
// returns the existing reference, so redelivered events do not duplicate rows.
type Exporter struct {
	mu    sync.Mutex
	rows  []sheets.Row
	index map[int64]int
}

var _ sheets.TransactionExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{index: map[int64]int{}}
}

// Export stores the row and returns a synthetic row reference.
func (e *Exporter) Export(ctx context.Context, r sheets.Row) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := r.Validate(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if i, ok := e.index[r.TransactionID]; ok {
		return ref(i), nil
	}
	e.rows = append(e.rows, r)
	e.index[r.TransactionID] = len(e.rows) - 1
	return ref(len(e.rows) - 1), nil
}

// Rows returns a copy of everything exported so far, in export order.
func (e *Exporter) Rows() []sheets.Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sheets.Row(nil), e.rows...)
}

func ref(i int) string {
	return fmt.Sprintf("mem:%d", i+1)
}
