package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/crucial707/dtl-policy/internal/config"
	"github.com/crucial707/dtl-policy/internal/handlers"
	"github.com/crucial707/dtl-policy/internal/middleware"
	"github.com/crucial707/dtl-policy/internal/repo"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func newRouter(db *sql.DB, cfg config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ready\n"))
	})
	r.Handle("/metrics", promhttp.Handler())

	secret := []byte(cfg.JWTSecret)

	authHandler := &handlers.AuthHandler{
		APIToken: cfg.APIToken,
		Secret:   secret,
		TTL:      time.Duration(cfg.JWTExpireHours) * time.Hour,
	}
	r.With(middleware.AuthRateLimiter().Middleware, middleware.MaxBytes(0)).
		Post("/auth/token", authHandler.IssueToken)

	policyHandler := &handlers.PolicyHandler{Repo: repo.NewPolicyRepo(db)}
	r.Route("/resourceGroups/{group}/labs/{lab}/schedules", func(r chi.Router) {
		r.Use(middleware.JWTMiddleware(secret))
		r.Get("/", policyHandler.ListPolicies)
		r.Get("/{name}", policyHandler.GetPolicy)
		r.With(middleware.MaxBytes(0)).Put("/{name}", policyHandler.PutPolicy)
	})

	return r
}
