// Package httpapi wires the HTTP surface of the back-office service.
// Handlers stay thin: plain CRUD goes straight to the store, score-affecting
// writes go through the credit ledger service.
package httpapi

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bossops/opsdeck/internal/auth"
	"github.com/bossops/opsdeck/internal/credit"
	"github.com/bossops/opsdeck/internal/storage"
)

// Server composes the store, ledger, and auth dependencies behind a Chi mux.
type Server struct {
	store  storage.Store
	credit *credit.Service
	users  *auth.Users
	jwt    *auth.JWT
	log    *slog.Logger
	rt     *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
func New(store storage.Store, creditSvc *credit.Service, users *auth.Users, jwtSvc *auth.JWT, corsOrigins []string, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s := &Server{
		store:  store,
		credit: creditSvc,
		users:  users,
		jwt:    jwtSvc,
		log:    logger,
		rt:     r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public API. Members/products/targets/credits mirror
// the frontend data hooks; auth-sensitive surfaces sit behind RequireAuth.
func (s *Server) routes() {
	s.rt.Get("/api/health", s.health)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())

	s.rt.Post("/api/auth/login", s.login)

	s.rt.Get("/api/members", s.listMembers)
	s.rt.Post("/api/members", s.createMember)
	s.rt.Put("/api/members/{id}", s.updateMember)
	s.rt.Delete("/api/members/{id}", s.deleteMember)

	s.rt.Get("/api/products", s.listProducts)
	s.rt.Post("/api/products", s.createProduct)
	s.rt.Get("/api/products/{id}", s.getProduct)
	s.rt.Put("/api/products/{id}", s.updateProduct)
	s.rt.Delete("/api/products/{id}", s.deleteProduct)

	s.rt.Get("/api/targets", s.listTargets)
	s.rt.Post("/api/targets", s.createTarget)
	s.rt.Put("/api/targets/{id}", s.updateTarget)
	s.rt.Delete("/api/targets/{id}", s.deleteTarget)

	s.rt.Post("/api/credits/trigger", s.triggerCreditEvent)
	s.rt.Get("/api/credits/events", s.listCreditEvents)

	s.rt.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(s.jwt))
		r.Get("/api/auth/me", s.me)
		r.Post("/api/auth/register", s.register)
		r.Put("/api/auth/password", s.changePassword)

		r.Get("/api/admin/stats", s.adminStats)
		r.Get("/api/admin/users", s.adminListUsers)
		r.Delete("/api/admin/users/{id}", s.adminDeleteUser)
		r.Put("/api/admin/users/{id}/reset-password", s.adminResetPassword)
		r.Put("/api/admin/members/{id}/credit", s.adminAdjustCredit)
	})
}
