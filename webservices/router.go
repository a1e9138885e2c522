package webservices

import (
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	tracing "github.com/jamesrr39/go-tracing"
)

// NewRouter mounts the services under /api and the metrics under /metrics. A nil tracer disables tracing.
func NewRouter(tracer *tracing.Tracer, tileService *TileService, infoService *InfoService, metrics *Metrics) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.DefaultLogger)
	if tracer != nil {
		router.Use(tracing.Middleware(tracer))
	}

	router.Route("/api", func(r chi.Router) {
		r.Mount("/info", infoService)
		r.Mount("/tiles", tileService)
	})
	router.Handle("/metrics", metrics.Handler())

	return router
}
