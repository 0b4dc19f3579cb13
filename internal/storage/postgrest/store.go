// Package postgrest implements the storage contract against a remote
// Supabase/PostgREST endpoint. Filters serialize to per-field eq.<value>
// predicates, ordering to <field>.<asc|desc>, and writes request
// return=representation so affected rows come back as a JSON sequence.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bossops/opsdeck/internal/errs"
	"github.com/bossops/opsdeck/internal/storage"
)

// DefaultTimeout bounds every remote call; a timed-out call fails rather
// than hangs. No retry is performed inside the store.
const DefaultTimeout = 15 * time.Second

// Config configures the remote backend.
type Config struct {
	// ProjectURL is the Supabase project base URL (without /rest/v1).
	ProjectURL string
	// APIKey is the service key, sent as both apikey and bearer token.
	APIKey string
	// Timeout overrides DefaultTimeout when positive.
	Timeout time.Duration
}

// Store talks to the PostgREST endpoint over plain HTTP.
type Store struct {
	prefix  string
	apiKey  string
	hc      *http.Client
	healthy atomic.Bool
}

var _ storage.Store = (*Store)(nil)

// New validates the config and constructs the store. It does not touch the
// network; call Ping once at process start for the connectivity probe.
func New(cfg Config) (*Store, error) {
	if cfg.ProjectURL == "" {
		return nil, fmt.Errorf("postgrest: project URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("postgrest: api key is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{
		prefix: strings.TrimRight(cfg.ProjectURL, "/") + "/rest/v1",
		apiKey: cfg.APIKey,
		hc:     &http.Client{Timeout: timeout},
	}, nil
}

// Ping probes connectivity with a one-row select against members and
// records the outcome in the healthy flag. The flag is observational only:
// a failed probe never switches backends, later requests still attempt the
// remote and fail individually.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.SelectAll(ctx, storage.CollectionMembers, storage.Query{Limit: 1})
	s.healthy.Store(err == nil)
	return err
}

// Healthy reports the outcome of the startup probe.
func (s *Store) Healthy() bool { return s.healthy.Load() }

// Ready implements storage.Store with a live probe.
func (s *Store) Ready(ctx context.Context) error {
	_, err := s.SelectAll(ctx, storage.CollectionMembers, storage.Query{Limit: 1})
	return err
}

// Backend implements storage.Store.
func (s *Store) Backend() string { return "supabase" }

// SelectAll implements storage.Store.
func (s *Store) SelectAll(ctx context.Context, collection string, q storage.Query) ([]storage.Row, error) {
	params := url.Values{}
	params.Set("select", "*")
	for field, v := range q.Filters {
		params.Set(field, "eq."+fmt.Sprint(v))
	}
	if q.OrderBy != "" {
		dir := "asc"
		if q.Desc {
			dir = "desc"
		}
		params.Set("order", q.OrderBy+"."+dir)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	return s.do(ctx, http.MethodGet, collection, params, nil)
}

// SelectOne implements storage.Store.
func (s *Store) SelectOne(ctx context.Context, collection, id string) (storage.Row, bool, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("id", "eq."+id)
	params.Set("limit", "1")
	rows, err := s.do(ctx, http.MethodGet, collection, params, nil)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

// Insert implements storage.Store. The id is generated client-side when
// absent so both backends share identity semantics.
func (s *Store) Insert(ctx context.Context, collection string, row storage.Row) (storage.Row, error) {
	r := make(storage.Row, len(row)+1)
	for k, v := range row {
		r[k] = v
	}
	if id, _ := r["id"].(string); id == "" {
		r["id"] = storage.NewID()
	}
	rows, err := s.do(ctx, http.MethodPost, collection, nil, r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		// Server omitted the representation; echo what was sent.
		return r, nil
	}
	return rows[0], nil
}

// Update implements storage.Store.
func (s *Store) Update(ctx context.Context, collection, id string, patch storage.Row) (storage.Row, bool, error) {
	clean := storage.CleanPatch(patch)
	if len(clean) == 0 {
		// All-nil patch is a no-op that still returns the current row.
		return s.SelectOne(ctx, collection, id)
	}
	params := url.Values{}
	params.Set("id", "eq."+id)
	rows, err := s.do(ctx, http.MethodPatch, collection, params, clean)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

// Delete implements storage.Store.
func (s *Store) Delete(ctx context.Context, collection, id string) (bool, error) {
	params := url.Values{}
	params.Set("id", "eq."+id)
	rows, err := s.do(ctx, http.MethodDelete, collection, params, nil)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// do performs one table-scoped request. An empty or 204 response body is an
// empty sequence, not a parse error; any transport or non-2xx outcome wraps
// errs.ErrBackend so callers can distinguish it from not-found.
func (s *Store) do(ctx context.Context, method, table string, params url.Values, body any) ([]storage.Row, error) {
	u := s.prefix + "/" + url.PathEscape(table)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", errs.ErrBackend, method, table, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: read body: %v", errs.ErrBackend, method, table, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s: status %d: %s", errs.ErrBackend, method, table, resp.StatusCode, truncate(raw, 200))
	}
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return []storage.Row{}, nil
	}
	return decodeRows(raw, method, table)
}

func decodeRows(raw []byte, method, table string) ([]storage.Row, error) {
	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] == '{' {
		var row storage.Row
		if err := json.Unmarshal(trimmed, &row); err != nil {
			return nil, fmt.Errorf("%w: %s %s: decode: %v", errs.ErrBackend, method, table, err)
		}
		return []storage.Row{row}, nil
	}
	var rows []storage.Row
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, fmt.Errorf("%w: %s %s: decode: %v", errs.ErrBackend, method, table, err)
	}
	return rows, nil
}

func truncate(b []byte, n int) string {
	s := string(b)
	if len(s) > n {
		return s[:n]
	}
	return s
}
