package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"emberchain/gateway/middleware"
)

// Config wires the read-only gateway surface.
type Config struct {
	Backend       Backend
	RateLimiter   *middleware.RateLimiter
	Observability *middleware.Observability
	CORS          middleware.CORSConfig
}

// New builds the gateway router. Every endpoint serves snapshots; nothing on
// this surface mutates engine state.
func New(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(cfg.CORS))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	api := newStakingRoutes(cfg.Backend)
	r.Route("/v1", func(sr chi.Router) {
		if cfg.RateLimiter != nil {
			sr.Use(cfg.RateLimiter.Middleware("v1"))
		}
		if cfg.Observability != nil {
			sr.Use(cfg.Observability.Middleware("v1"))
		}
		api.mount(sr)
	})

	return r
}
