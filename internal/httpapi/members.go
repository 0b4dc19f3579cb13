package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/bossops/opsdeck/internal/ops"
	"github.com/bossops/opsdeck/internal/storage"
)

// listMembers returns every member with their credit history joined fresh,
// newest record first.
func (s *Server) listMembers(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.SelectAll(r.Context(), storage.CollectionMembers, storage.Query{})
	if err != nil {
		serverError(w, err, "could not fetch members")
		return
	}
	members, err := storage.DecodeAll[ops.Member](rows)
	if err != nil {
		serverError(w, err, "could not decode members")
		return
	}
	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		history, err := s.credit.History(r.Context(), m.ID)
		if err != nil {
			serverError(w, err, "could not fetch credit history")
			return
		}
		out = append(out, toMemberResponse(m, history))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) createMember(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.Name == "" || req.Role == "" || req.Contact == "" {
		badRequest(w, "name, role and contact are required")
		return
	}
	score := 100
	if req.CreditScore != nil {
		score = *req.CreditScore
	}
	member := ops.Member{
		Name:        req.Name,
		Avatar:      req.Avatar,
		Role:        req.Role,
		Contact:     req.Contact,
		CreditScore: score,
	}
	row, err := storage.Encode(member)
	if err != nil {
		serverError(w, err, "could not encode member")
		return
	}
	created, err := s.store.Insert(r.Context(), storage.CollectionMembers, row)
	if err != nil {
		serverError(w, err, "could not create member")
		return
	}
	if err := storage.Decode(created, &member); err != nil {
		serverError(w, err, "could not decode member")
		return
	}

	// Optional linked login account. A username clash must not block the
	// member itself.
	if req.Username != "" && req.Password != "" {
		if _, err := s.users.Register(r.Context(), req.Username, req.Password, req.Name, accountRoleOrDefault(req.AccountRole)); err != nil {
			s.log.Warn("login account creation failed", "username", req.Username, "err", err)
		}
	}
	toJSON(w, http.StatusCreated, toMemberResponse(member, nil))
}

func (s *Server) updateMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateMemberRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	patch := req.patch()
	if len(patch) == 0 {
		badRequest(w, "no update data")
		return
	}
	row, found, err := s.store.Update(r.Context(), storage.CollectionMembers, id, patch)
	if err != nil {
		serverError(w, err, "could not update member")
		return
	}
	if !found {
		notFound(w, "member not found")
		return
	}
	var member ops.Member
	if err := storage.Decode(row, &member); err != nil {
		serverError(w, err, "could not decode member")
		return
	}
	history, err := s.credit.History(r.Context(), id)
	if err != nil {
		serverError(w, err, "could not fetch credit history")
		return
	}
	toJSON(w, http.StatusOK, toMemberResponse(member, history))
}

func (s *Server) deleteMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Delete(r.Context(), storage.CollectionMembers, id); err != nil {
		serverError(w, err, "could not delete member")
		return
	}
	toJSON(w, http.StatusOK, okResponse{OK: true})
}

func accountRoleOrDefault(role string) string {
	if role == "" {
		return "user"
	}
	return role
}
