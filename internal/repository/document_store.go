package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection names.
const (
	CollectionTickets      = "tickets"
	CollectionCompanies    = "companies"
	CollectionEmployees    = "employees"
	CollectionCertificates = "tourism_certificates"
	CollectionCounters     = "counters"
	CollectionActivities   = "activities"
	CollectionProviders    = "providers"
	CollectionAccounts     = "accounts"
)

// DocumentIDField addresses the document id itself in QueryEquals and QueryIn.
const DocumentIDField = "__id__"

// MaxQueryInValues is the largest membership list QueryIn accepts.
const MaxQueryInValues = 10

var (
	// ErrDocumentNotFound is returned by Update and ArrayUnion when the target is absent.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrQueryInLimit is returned when QueryIn receives more than MaxQueryInValues values.
	ErrQueryInLimit = fmt.Errorf("query in accepts at most %d values", MaxQueryInValues)
	// ErrTxConflict is returned when a transaction keeps conflicting after every retry.
	ErrTxConflict = errors.New("transaction conflict")
)

// Document is a JSON object stored under a collection and id.
type Document map[string]any

// Tx is the view of the store available inside RunTransaction.
type Tx interface {
	Get(ctx context.Context, collection, id string) (Document, bool, error)
	Set(ctx context.Context, collection, id string, doc Document) error
}

// DocumentStore is a key-value store of JSON documents addressed by collection and id.
// A missing document is reported as ok=false, never as an error.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (Document, bool, error)
	Set(ctx context.Context, collection, id string, doc Document) error
	// Update shallow-merges patch into the stored document.
	Update(ctx context.Context, collection, id string, patch Document) error
	AddAutoID(ctx context.Context, collection string, doc Document) (string, error)
	// List returns every document of the collection in insertion order.
	List(ctx context.Context, collection string) ([]Document, error)
	QueryEquals(ctx context.Context, collection, field string, value any) ([]Document, error)
	QueryIn(ctx context.Context, collection, field string, values []string) ([]Document, error)
	// ArrayUnion atomically appends value to the array field unless already present.
	ArrayUnion(ctx context.Context, collection, id, field string, value any) error
	// RunTransaction runs fn atomically, retrying it on conflict.
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
}

// Encode converts a struct into a storable document using its json tags.
func Encode(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return doc, nil
}

// Decode fills out from a stored document.
func Decode(doc Document, out any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// normalizeValue converts a Go value to its JSON-decoded form so it can be compared
// with values read back from a document.
func normalizeValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func checkQueryIn(values []string) error {
	if len(values) > MaxQueryInValues {
		return fmt.Errorf("%w: got %d", ErrQueryInLimit, len(values))
	}
	return nil
}
