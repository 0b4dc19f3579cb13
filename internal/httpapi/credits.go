// Credit handlers: the trigger endpoint is the only caller-facing path into
// the ledger; skips come back as 200 payloads because they are expected,
// common outcomes rather than faults.
package httpapi

import (
	"net/http"
	"sort"

	"github.com/bossops/opsdeck/internal/credit"
)

func (s *Server) triggerCreditEvent(w http.ResponseWriter, r *http.Request) {
	var req triggerCreditRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.UserID == "" || req.EventType == "" {
		badRequest(w, "userId and eventType are required")
		return
	}
	outcome, err := s.credit.Apply(r.Context(), credit.ApplyInput{
		UserID:    req.UserID,
		EventType: req.EventType,
		RelatedID: req.RelatedID,
		CycleKey:  req.CycleKey,
		Data:      req.Data,
	})
	if err != nil {
		serverError(w, err, "could not apply credit event")
		return
	}
	if outcome.Skipped {
		toJSON(w, http.StatusOK, skippedResponse{Skipped: true, Reason: outcome.Reason})
		return
	}
	toJSON(w, http.StatusOK, outcome.Record)
}

// listCreditEvents exposes the fixed catalog so the frontend can render the
// scoring rules without hardcoding them.
func (s *Server) listCreditEvents(w http.ResponseWriter, r *http.Request) {
	out := make([]creditEventResponse, 0, len(credit.Catalog))
	for eventType, ev := range credit.Catalog {
		out = append(out, creditEventResponse{
			EventType:      eventType,
			Change:         ev.Change,
			Reason:         ev.Reason,
			ReasonTemplate: ev.ReasonTemplate,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventType < out[j].EventType })
	toJSON(w, http.StatusOK, out)
}
