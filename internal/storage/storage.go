// Package storage defines the collection-of-rows contract shared by the
// remote PostgREST backend and the in-memory fallback. Both backends must
// implement identical semantics: exact-equality filters, empty-result-is-not-
// an-error, generated ids, and nil-patch-fields-are-ignored updates.
package storage

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// Collection names. The last two are reserved for future features and are
// not touched by any handler yet.
const (
	CollectionMembers         = "members"
	CollectionCreditRecords   = "credit_records"
	CollectionProducts        = "products"
	CollectionTargets         = "targets"
	CollectionAdminUsers      = "admin_users"
	CollectionOperationLogs   = "operation_logs"
	CollectionAnalysisRecords = "analysis_records"
)

// Row is one record within a collection: a flat mapping of field name to a
// scalar or nested JSON value. Every persisted row carries a unique "id".
type Row = map[string]any

// Filters maps field name to a required exact value (logical AND).
type Filters = map[string]any

// Query narrows and orders a SelectAll. The zero value selects everything
// in backend order.
type Query struct {
	Filters Filters
	OrderBy string
	Desc    bool
	Limit   int
}

// Store is the uniform CRUD surface over named collections. Both backends
// satisfy it; selection happens once at process start and never changes.
type Store interface {
	// SelectAll returns rows matching q. No match yields an empty slice,
	// never an error.
	SelectAll(ctx context.Context, collection string, q Query) ([]Row, error)
	// SelectOne returns the row with the given id. Absence is reported via
	// the bool, not an error, so callers can choose 404-vs-skip behavior.
	SelectOne(ctx context.Context, collection, id string) (Row, bool, error)
	// Insert persists a row, generating an id when absent or empty, and
	// returns the row as persisted.
	Insert(ctx context.Context, collection string, row Row) (Row, error)
	// Update applies a shallow field merge. Nil patch values are ignored;
	// an all-nil patch is a no-op that still returns the current row.
	// A missing id reports false and does not create a row.
	Update(ctx context.Context, collection, id string, patch Row) (Row, bool, error)
	// Delete physically removes exactly one row; false if none matched.
	Delete(ctx context.Context, collection, id string) (bool, error)
	// Ready probes the backend for liveness.
	Ready(ctx context.Context) error
	// Backend names the active implementation for health reporting.
	Backend() string
}

// NewID generates an 8-character opaque row id. Collision probability is
// negligible at the table sizes this system sees; backends still verify
// uniqueness on insert where they can do so cheaply.
func NewID() string {
	return uuid.NewString()[:8]
}

// Encode converts a typed record into a Row via its JSON shape, so one
// storage engine serves every entity type without per-entity boilerplate.
func Encode(v any) (Row, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var row Row
	if err := json.Unmarshal(b, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// Decode fills a typed record from a Row.
func Decode(row Row, v any) error {
	b, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// DecodeAll decodes a slice of rows into typed records.
func DecodeAll[T any](rows []Row) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		var v T
		if err := Decode(r, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// CleanPatch strips nil values from a patch so an explicit JSON null never
// clears a field on either backend.
func CleanPatch(patch Row) Row {
	out := make(Row, len(patch))
	for k, v := range patch {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}
