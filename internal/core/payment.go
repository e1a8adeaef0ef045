package core

import (
	"strings"
	"time"
)

type PaymentMethod string

const (
	PaymentPix      PaymentMethod = "PIX"
	PaymentTransfer PaymentMethod = "TRANSFER"
	PaymentBill     PaymentMethod = "BILL"
	PaymentUnknown  PaymentMethod = "UNKNOWN"

	PaymentStatusCompleted = "COMPLETED"
	UnknownRecipient       = "N/A"
	defaultPaymentDesc     = "Payment"
)

type PaymentRequest struct {
	Amount      Money
	Method      PaymentMethod
	Recipient   string
	Description string
}

type PaymentResult struct {
	ID          int64         `json:"id"`
	Amount      Money         `json:"amount"`
	Method      PaymentMethod `json:"method"`
	Recipient   string        `json:"recipient"`
	Description string        `json:"description"`
	Status      string        `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

// BuildPaymentDescription renders the ledger description for a payment.
//
// Method and recipient are not stored separately; ParsePaymentDescription
// recovers them from this text on a best-effort basis.
func BuildPaymentDescription(req PaymentRequest) string {
	switch req.Method {
	case PaymentPix:
		return "Payment via PIX to " + req.Recipient
	case PaymentTransfer:
		return "Transfer to " + req.Recipient
	case PaymentBill:
		return strings.TrimSpace("Bill payment " + req.Description)
	default:
		if req.Description != "" {
			return req.Description
		}
		return defaultPaymentDesc
	}
}

// ParsePaymentDescription re-derives method and recipient from a stored
// description. Method and recipient are matched independently.
func ParsePaymentDescription(desc string) (PaymentMethod, string) {
	method := PaymentUnknown
	switch {
	case strings.Contains(desc, "PIX"):
		method = PaymentPix
	case strings.Contains(desc, "Transfer to"):
		method = PaymentTransfer
	case strings.Contains(desc, "Bill payment"):
		method = PaymentBill
	}

	recipient := UnknownRecipient
	if _, after, ok := strings.Cut(desc, "to "); ok {
		recipient = after
	}
	return method, recipient
}

// PaymentFromTransaction builds the payment view of a recorded expense.
func PaymentFromTransaction(t Transaction) PaymentResult {
	method, recipient := ParsePaymentDescription(t.Description)
	return PaymentResult{
		ID:          t.ID,
		Amount:      t.Amount,
		Method:      method,
		Recipient:   recipient,
		Description: t.Description,
		Status:      PaymentStatusCompleted,
		CreatedAt:   t.CreatedAt,
	}
}
