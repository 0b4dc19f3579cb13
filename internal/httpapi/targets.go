// Target handlers. Targets are workspace-partitioned like products but are
// physically removed on delete.
package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/bossops/opsdeck/internal/ops"
	"github.com/bossops/opsdeck/internal/storage"
)

func (s *Server) listTargets(w http.ResponseWriter, r *http.Request) {
	workspace := r.URL.Query().Get("workspace")
	if workspace == "" {
		workspace = ops.DefaultWorkspace
	}
	rows, err := s.store.SelectAll(r.Context(), storage.CollectionTargets, storage.Query{
		Filters: storage.Filters{"workspace": workspace},
	})
	if err != nil {
		serverError(w, err, "could not fetch targets")
		return
	}
	targets, err := storage.DecodeAll[ops.Target](rows)
	if err != nil {
		serverError(w, err, "could not decode targets")
		return
	}
	toJSON(w, http.StatusOK, targets)
}

func (s *Server) createTarget(w http.ResponseWriter, r *http.Request) {
	var req createTargetRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.Title == "" || req.Type == "" || req.Deadline == "" || req.OperatorID == "" {
		badRequest(w, "title, type, deadline and operatorId are required")
		return
	}
	priority := req.Priority
	if priority == "" {
		priority = "Medium"
	}
	workspace := req.Workspace
	if workspace == "" {
		workspace = ops.DefaultWorkspace
	}
	target := ops.Target{
		Title:      req.Title,
		Type:       req.Type,
		Priority:   priority,
		Deadline:   req.Deadline,
		OperatorID: req.OperatorID,
		Workspace:  workspace,
	}
	row, err := storage.Encode(target)
	if err != nil {
		serverError(w, err, "could not encode target")
		return
	}
	created, err := s.store.Insert(r.Context(), storage.CollectionTargets, row)
	if err != nil {
		serverError(w, err, "could not create target")
		return
	}
	if err := storage.Decode(created, &target); err != nil {
		serverError(w, err, "could not decode target")
		return
	}
	toJSON(w, http.StatusCreated, target)
}

func (s *Server) updateTarget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateTargetRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	patch := req.patch()
	if len(patch) == 0 {
		badRequest(w, "no update data")
		return
	}
	row, found, err := s.store.Update(r.Context(), storage.CollectionTargets, id, patch)
	if err != nil {
		serverError(w, err, "could not update target")
		return
	}
	if !found {
		notFound(w, "target not found")
		return
	}
	var target ops.Target
	if err := storage.Decode(row, &target); err != nil {
		serverError(w, err, "could not decode target")
		return
	}
	toJSON(w, http.StatusOK, target)
}

func (s *Server) deleteTarget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Delete(r.Context(), storage.CollectionTargets, id); err != nil {
		serverError(w, err, "could not delete target")
		return
	}
	toJSON(w, http.StatusOK, okResponse{OK: true})
}
