// Auth handlers: login issues a week-long bearer token; register and
// password changes require an authenticated caller.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/bossops/opsdeck/internal/auth"
	"github.com/bossops/opsdeck/internal/errs"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		badRequest(w, "username and password are required")
		return
	}
	user, err := s.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrUnauthorized) {
			unauthorized(w, "invalid username or password")
			return
		}
		serverError(w, err, "could not authenticate")
		return
	}
	token, err := s.jwt.Sign(user.ID, user.Username)
	if err != nil {
		serverError(w, err, "could not issue token")
		return
	}
	toJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        toUserResponse(user),
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		unauthorized(w, "unauthorized")
		return
	}
	user, found, err := s.users.FindByID(r.Context(), claims.UserID)
	if err != nil {
		serverError(w, err, "could not fetch user")
		return
	}
	if !found {
		notFound(w, "user not found")
		return
	}
	toJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	user, err := s.users.Register(r.Context(), req.Username, req.Password, req.DisplayName, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrConflict):
			badRequest(w, "username already exists")
		case errors.Is(err, errs.ErrInvalid):
			badRequest(w, "username and password are required")
		default:
			serverError(w, err, "could not register user")
		}
		return
	}
	toJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		unauthorized(w, "unauthorized")
		return
	}
	var req changePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.NewPassword == "" {
		badRequest(w, "newPassword is required")
		return
	}
	user, found, err := s.users.FindByID(r.Context(), claims.UserID)
	if err != nil {
		serverError(w, err, "could not fetch user")
		return
	}
	if !found {
		notFound(w, "user not found")
		return
	}
	if _, err := s.users.Authenticate(r.Context(), user.Username, req.OldPassword); err != nil {
		badRequest(w, "wrong password")
		return
	}
	if err := s.users.SetPassword(r.Context(), user.ID, req.NewPassword); err != nil {
		serverError(w, err, "could not change password")
		return
	}
	toJSON(w, http.StatusOK, okResponse{OK: true})
}
