package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Rorical/indexschema/internal/metrics"
	"github.com/Rorical/indexschema/internal/opensearch"
	"github.com/Rorical/indexschema/internal/translate"
)

// Checker reconciles one catalog against the live cluster.
type Checker interface {
	Check(ctx context.Context, c *translate.Catalog) (opensearch.Outcome, error)
}

// Catalogs looks up the configured catalog for an index.
type Catalogs interface {
	Get(index string) (*translate.Catalog, bool)
}

type API struct {
	// Checker and Catalogs back /v1/indexes/{index}/check; the route answers 503 when
	// either is nil.
	Checker  Checker
	Catalogs Catalogs

	Logger *slog.Logger
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/translate", a.handleTranslate)
		r.Post("/validate", a.handleValidate)
		r.Get("/indexes/{index}/check", a.handleCheck)
	})

	h := http.Handler(r)
	h = OTel(h)
	h = RequestLogging(h)
	if a.Logger != nil {
		h = WithLogger(a.Logger)(h)
	}
	return h
}
