// Package credit is the single controlled path for mutating a member's
// credit score. Each (userId, eventType, relatedId, cycleKey) tuple is
// applied at most once; every accepted event leaves an immutable audit
// record in credit_records.
package credit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bossops/opsdeck/internal/errs"
	"github.com/bossops/opsdeck/internal/ops"
	"github.com/bossops/opsdeck/internal/storage"
)

// Service applies credit events against the shared store. Ledger writes are
// serialized through a mutex so the check-then-insert dedup cannot race
// within this process. Concurrent writers in other processes can still slip
// past the check; closing that needs a unique index on the four-tuple.
type Service struct {
	store storage.Store
	now   func() time.Time
	mu    sync.Mutex
}

// New constructs the ledger service over the given store.
func New(store storage.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// ApplyInput names a credit event to apply. RelatedID and CycleKey are
// optional; Data carries template values (currently only "day").
type ApplyInput struct {
	UserID    string
	EventType string
	RelatedID string
	CycleKey  string
	Data      map[string]any
}

// Outcome is either an applied record or a benign skip with its reason.
// Skips are expected in normal operation and are not errors.
type Outcome struct {
	Skipped bool
	Reason  string
	Record  *ops.CreditRecord
}

// Apply runs the ledger algorithm: catalog lookup, dedup check, record
// write, then score mutation clamped at zero. Unknown event types and
// duplicates skip without side effects.
func (s *Service) Apply(ctx context.Context, in ApplyInput) (Outcome, error) {
	ev, ok := Catalog[in.EventType]
	if !ok {
		return Outcome{Skipped: true, Reason: "Unknown event type: " + in.EventType}, nil
	}

	relatedID := in.RelatedID
	cycleKey := in.CycleKey
	if cycleKey == "" {
		cycleKey = CycleDefault
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.SelectAll(ctx, storage.CollectionCreditRecords, storage.Query{
		Filters: storage.Filters{
			"userId":    in.UserID,
			"eventType": in.EventType,
			"relatedId": relatedID,
			"cycleKey":  cycleKey,
		},
	})
	if err != nil {
		return Outcome{}, err
	}
	if len(existing) > 0 {
		return Outcome{Skipped: true, Reason: "Duplicate event"}, nil
	}

	reason := ev.Reason
	if ev.ReasonTemplate != "" {
		day := any("?")
		if v, ok := in.Data["day"]; ok {
			day = v
		}
		reason = fmt.Sprintf(ev.ReasonTemplate, day)
	}

	record := ops.CreditRecord{
		ID:        storage.NewID(),
		UserID:    in.UserID,
		Change:    ev.Change,
		Reason:    reason,
		EventType: in.EventType,
		RelatedID: relatedID,
		CycleKey:  cycleKey,
		CreatedAt: s.now().UTC(),
	}
	row, err := storage.Encode(record)
	if err != nil {
		return Outcome{}, err
	}
	if _, err := s.store.Insert(ctx, storage.CollectionCreditRecords, row); err != nil {
		return Outcome{}, err
	}

	// A member that no longer exists keeps the record but skips the score
	// mutation; the ledger stays append-only either way.
	if err := s.applyScoreLocked(ctx, in.UserID, ev.Change); err != nil {
		return Outcome{}, err
	}
	return Outcome{Record: &record}, nil
}

// Adjust is the admin path: an arbitrary signed delta with a free-text
// reason. It is always recorded under EventAdminAdjust/CycleAdmin so it can
// never be deduplicated against catalog events. Returns the new score.
func (s *Service) Adjust(ctx context.Context, userID string, change int, reason string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, found, err := s.store.SelectOne(ctx, storage.CollectionMembers, userID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, errs.ErrNotFound
	}
	var member ops.Member
	if err := storage.Decode(row, &member); err != nil {
		return 0, err
	}
	newScore := clampScore(member.CreditScore + change)
	if _, _, err := s.store.Update(ctx, storage.CollectionMembers, userID, storage.Row{"creditScore": newScore}); err != nil {
		return 0, err
	}

	record := ops.CreditRecord{
		ID:        storage.NewID(),
		UserID:    userID,
		Change:    change,
		Reason:    "[admin] " + reason,
		EventType: EventAdminAdjust,
		RelatedID: "",
		CycleKey:  CycleAdmin,
		CreatedAt: s.now().UTC(),
	}
	recRow, err := storage.Encode(record)
	if err != nil {
		return 0, err
	}
	if _, err := s.store.Insert(ctx, storage.CollectionCreditRecords, recRow); err != nil {
		return 0, err
	}
	return newScore, nil
}

// History returns a member's ledger records, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]ops.CreditRecord, error) {
	rows, err := s.store.SelectAll(ctx, storage.CollectionCreditRecords, storage.Query{
		Filters: storage.Filters{"userId": userID},
		OrderBy: "createdAt",
		Desc:    true,
	})
	if err != nil {
		return nil, err
	}
	return storage.DecodeAll[ops.CreditRecord](rows)
}

func (s *Service) applyScoreLocked(ctx context.Context, userID string, change int) error {
	row, found, err := s.store.SelectOne(ctx, storage.CollectionMembers, userID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	var member ops.Member
	if err := storage.Decode(row, &member); err != nil {
		return err
	}
	newScore := clampScore(member.CreditScore + change)
	_, _, err = s.store.Update(ctx, storage.CollectionMembers, userID, storage.Row{"creditScore": newScore})
	return err
}

// clampScore enforces the score floor of zero; there is no ceiling.
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	return score
}
