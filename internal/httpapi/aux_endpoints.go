package httpapi

import "net/http"

type healthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

// health reports liveness and which backend was selected at boot.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	toJSON(w, http.StatusOK, healthResponse{Status: "ok", Storage: s.store.Backend()})
}
