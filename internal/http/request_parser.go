// Package http exposes the ledger over a small JSON API.
//
// This file implements utilities for parsing and validating HTTP request data:
// the caller identity header, JSON bodies and query filters.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"wallet/internal/core"
)

const (
	// HeaderOwnerID carries the owner identity established by the upstream auth layer.
	HeaderOwnerID = "X-Owner-ID"

	maxBodyBytes = 64 << 10
)

// OwnerID returns the caller identity. It is trusted verbatim.
func OwnerID(r *http.Request) (string, error) {
	owner := strings.TrimSpace(r.Header.Get(HeaderOwnerID))
	if err := core.ValidateOwner(owner); err != nil {
		return "", err
	}
	return owner, nil
}

// DecodeJSON reads a bounded JSON body into v, rejecting unknown fields.
// Money fields that fail to parse surface as core.ErrInvalidAmount.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, core.ErrInvalidAmount) {
			return &core.ValidationError{Field: "amount", Err: core.ErrInvalidAmount}
		}
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return fmt.Errorf("malformed JSON body: %w", err)
	}
	return nil
}

// ParsePeriod reads the from/to query parameters.
func ParsePeriod(query url.Values) (core.Period, error) {
	from, err := core.ParseTimeBound("from", query.Get("from"), false)
	if err != nil {
		return core.Period{}, err
	}
	to, err := core.ParseTimeBound("to", query.Get("to"), true)
	if err != nil {
		return core.Period{}, err
	}
	p := core.Period{From: from, To: to}
	return p, p.Validate()
}

// ParseTransactionFilter reads kind, category_id, from and to.
func ParseTransactionFilter(query url.Values) (core.TransactionFilter, error) {
	var f core.TransactionFilter

	if v := strings.TrimSpace(query.Get("kind")); v != "" {
		k, err := core.ParseKind(v)
		if err != nil {
			return f, err
		}
		f.Kind = k
	}

	id, err := parseOptionalID("category_id", query.Get("category_id"))
	if err != nil {
		return f, err
	}
	f.CategoryID = id

	p, err := ParsePeriod(query)
	if err != nil {
		return f, err
	}
	f.From, f.To = p.From, p.To
	return f, nil
}

func parseOptionalID(field, value string) (*int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return nil, &core.ValidationError{Field: field, Value: value, Err: core.ErrInvalidCategory}
	}
	return &id, nil
}
