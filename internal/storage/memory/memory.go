// Package memory provides the in-process fallback store used when no remote
// credentials are configured, and for tests. Data lives for the process
// lifetime only. Instances are constructed explicitly and passed by
// reference; there is no package-level singleton.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bossops/opsdeck/internal/storage"
)

// Store keeps rows per collection in insertion order, guarded by an RWMutex
// so concurrent read-modify-write callers never lose updates.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]storage.Row
}

var _ storage.Store = (*Store)(nil)

// New constructs a store with every known collection present and empty.
func New() *Store {
	s := &Store{collections: make(map[string][]storage.Row)}
	for _, c := range []string{
		storage.CollectionMembers,
		storage.CollectionCreditRecords,
		storage.CollectionProducts,
		storage.CollectionTargets,
		storage.CollectionAdminUsers,
		storage.CollectionOperationLogs,
		storage.CollectionAnalysisRecords,
	} {
		s.collections[c] = []storage.Row{}
	}
	return s
}

// Seed appends fixture rows without id generation. For boot seeds and tests.
func (s *Store) Seed(collection string, rows ...storage.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.collections[collection] = append(s.collections[collection], cloneRow(r))
	}
}

// Reset drops all rows, keeping the known collections. For tests.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.collections {
		s.collections[c] = []storage.Row{}
	}
}

// Len reports the current row count of a collection. For tests.
func (s *Store) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

// SelectAll implements storage.Store.
func (s *Store) SelectAll(_ context.Context, collection string, q storage.Query) ([]storage.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]storage.Row, 0)
	for _, r := range s.collections[collection] {
		if matches(r, q.Filters) {
			out = append(out, cloneRow(r))
		}
	}
	if q.OrderBy != "" {
		field, desc := q.OrderBy, q.Desc
		sort.SliceStable(out, func(i, j int) bool {
			if desc {
				return less(out[j][field], out[i][field])
			}
			return less(out[i][field], out[j][field])
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// SelectOne implements storage.Store.
func (s *Store) SelectOne(_ context.Context, collection, id string) (storage.Row, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.collections[collection] {
		if rowID(r) == id {
			return cloneRow(r), true, nil
		}
	}
	return nil, false, nil
}

// Insert implements storage.Store. An absent or empty id is generated and
// checked for uniqueness within the collection.
func (s *Store) Insert(_ context.Context, collection string, row storage.Row) (storage.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := cloneRow(row)
	if rowID(r) == "" {
		id := storage.NewID()
		for s.hasIDLocked(collection, id) {
			id = storage.NewID()
		}
		r["id"] = id
	}
	s.collections[collection] = append(s.collections[collection], r)
	return cloneRow(r), nil
}

// Update implements storage.Store. Nil patch values never clear a field.
func (s *Store) Update(_ context.Context, collection, id string, patch storage.Row) (storage.Row, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.collections[collection] {
		if rowID(r) != id {
			continue
		}
		for k, v := range storage.CleanPatch(patch) {
			r[k] = v
		}
		return cloneRow(r), true, nil
	}
	return nil, false, nil
}

// Delete implements storage.Store.
func (s *Store) Delete(_ context.Context, collection, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.collections[collection]
	for i, r := range rows {
		if rowID(r) == id {
			s.collections[collection] = append(rows[:i], rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Ready implements storage.Store; the in-memory backend is always ready.
func (s *Store) Ready(context.Context) error { return nil }

// Backend implements storage.Store.
func (s *Store) Backend() string { return "memory" }

func (s *Store) hasIDLocked(collection, id string) bool {
	for _, r := range s.collections[collection] {
		if rowID(r) == id {
			return true
		}
	}
	return false
}

func rowID(r storage.Row) string {
	id, _ := r["id"].(string)
	return id
}

func matches(row storage.Row, filters storage.Filters) bool {
	for k, want := range filters {
		got, ok := row[k]
		if !ok || !valueEq(got, want) {
			return false
		}
	}
	return true
}

// valueEq compares scalars loosely: JSON round-trips turn ints into
// float64, so 3 and 3.0 must compare equal, the same way the remote
// backend's eq.3 predicate matches an integer column.
func valueEq(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok2 := b.(string); ok2 {
			return as == bs
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func less(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af < bf
		}
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func cloneRow(r storage.Row) storage.Row {
	out := make(storage.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
