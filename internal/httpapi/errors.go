package httpapi

import (
	"errors"
	"net/http"

	"github.com/bossops/opsdeck/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func badRequest(w http.ResponseWriter, msg string) {
	toJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func unauthorized(w http.ResponseWriter, msg string) {
	toJSON(w, http.StatusUnauthorized, errorResponse{Error: msg})
}

func notFound(w http.ResponseWriter, msg string) {
	toJSON(w, http.StatusNotFound, errorResponse{Error: msg, Code: "not_found"})
}

// serverError maps storage failures: a remote backend fault surfaces as 502
// so operators can tell it apart from a bug in this service.
func serverError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, errs.ErrBackend) {
		toJSON(w, http.StatusBadGateway, errorResponse{Error: msg, Code: "backend_unavailable"})
		return
	}
	toJSON(w, http.StatusInternalServerError, errorResponse{Error: msg})
}
