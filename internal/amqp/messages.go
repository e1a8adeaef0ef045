package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"wallet/internal/core"
)

// TransactionRecordedMessage announces a committed transaction.
// Consumers reload the row by TransactionID; the remaining fields are for routing and logs.
type TransactionRecordedMessage struct {
	EventID       string    `json:"event_id"`
	TransactionID int64     `json:"transaction_id"`
	WalletID      int64     `json:"wallet_id"`
	OwnerID       string    `json:"owner_id"`
	Kind          core.Kind `json:"kind"`
	AmountCents   int64     `json:"amount_cents"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewTransactionRecordedMessage(ownerID string, t core.Transaction) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		EventID:       uuid.NewString(),
		TransactionID: t.ID,
		WalletID:      t.WalletID,
		OwnerID:       ownerID,
		Kind:          t.Kind,
		AmountCents:   t.Amount.Cents,
		OccurredAt:    t.CreatedAt,
	}
}

func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionRecordedMessageFromJSON decodes and sanity-checks a delivery body.
func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.TransactionID <= 0 {
		return nil, fmt.Errorf("missing transaction id")
	}
	if !msg.Kind.Valid() {
		return nil, fmt.Errorf("unknown kind %q", msg.Kind)
	}
	return &msg, nil
}
