package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"amparo/internal/platform/middleware"
	"amparo/pkg/platform/httputil"
)

// HealthChecker reports readiness of a backing dependency.
type HealthChecker func(ctx context.Context) error

// Deps bundles everything the router needs.
type Deps struct {
	Sponsorships SponsorshipService
	Chat         ChatService
	Logbook      LogbookService
	Children     ChildrenService
	Validator    middleware.TokenValidator
	Logger       *slog.Logger
	Health       []HealthChecker
}

// NewRouter assembles the full route tree. /healthz and /metrics stay outside
// the auth chain; every domain route requires a valid bearer assertion.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))

	r.Get("/healthz", handleHealth(deps.Health))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
		NewSponsorshipHandler(deps.Sponsorships, deps.Logger).Register(r)
		NewChatHandler(deps.Chat, deps.Logger).Register(r)
		NewLogbookHandler(deps.Logbook, deps.Logger).Register(r)
		NewChildrenHandler(deps.Children, deps.Logger).Register(r)
	})

	return r
}

func handleHealth(checks []HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
					"reason": err.Error(),
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
