// Package http exposes the ledger over a small JSON API.
//
// This file implements the Builder Pattern for constructing JSON responses and
// maps ledger errors onto status codes and stable error bodies.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"wallet/internal/core"
)

// ErrorBody is the JSON shape of every error response.
const contentTypeJSON = "application/json; charset=utf-8"

type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(key, value string) *JSONResponseBuilder {
	b.headers[key] = value
	return b
}

// Body sets the value to encode.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Error sets an ErrorBody as the response body.
func (b *JSONResponseBuilder) Error(code, message string, fields map[string]string) *JSONResponseBuilder {
	b.body = ErrorBody{Code: code, Message: message, Fields: fields}
	return b
}

// Write sends the response.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for k, v := range b.headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(b.statusCode)
	if b.body != nil {
		_ = json.NewEncoder(w).Encode(b.body)
	}
}

// ErrorResponse builds the response for a ledger error.
func ErrorResponse(err error) *JSONResponseBuilder {
	code := core.ErrorCode(err)
	return NewJSONResponse().
		Status(statusFor(err)).
		Error(code, messageFor(err, code), errorFields(err))
}

// BadRequestError is for requests that cannot be decoded at all.
func BadRequestError(message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusBadRequest).Error("BAD_REQUEST", message, nil)
}

func statusFor(err error) int {
	switch {
	case core.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrWalletNotFound), errors.Is(err, core.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInsufficientFunds), errors.Is(err, core.ErrWalletExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// messageFor hides internal error text from clients.
func messageFor(err error, code string) string {
	if code == core.CodeInternal {
		return "internal error"
	}
	return err.Error()
}

// errorFields exposes the structured context of typed errors.
func errorFields(err error) map[string]string {
	var funds *core.InsufficientFundsError
	if errors.As(err, &funds) {
		return map[string]string{
			"current":   funds.Current.String(),
			"requested": funds.Requested.String(),
			"shortfall": funds.Shortfall().String(),
		}
	}

	var verr *core.ValidationError
	if errors.As(err, &verr) {
		fields := map[string]string{"field": verr.Field}
		if verr.Value != "" {
			fields["value"] = verr.Value
		}
		return fields
	}
	return nil
}
