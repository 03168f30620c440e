package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/finsight-vn/finsight/internal/narrative"
	"github.com/finsight-vn/finsight/internal/observability"
	"github.com/finsight-vn/finsight/internal/ratio"
	"github.com/finsight-vn/finsight/internal/refdata"
	"github.com/finsight-vn/finsight/internal/statement"
	"github.com/finsight-vn/finsight/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	MetaHandler      *refdata.Handler
	StatementHandler *statement.Handler
	RatioHandler     *ratio.Handler

	// NarrativeHandler is nil when no Gemini API key is configured; the
	// commentary endpoint then simply does not exist.
	NarrativeHandler *narrative.Handler

	JobHandler *jobs.Handler
	Metrics    *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.MetaHandler != nil {
		params.MetaHandler.MountRoutes(r)
	}
	if params.StatementHandler != nil {
		params.StatementHandler.MountRoutes(r)
	}
	if params.RatioHandler != nil {
		params.RatioHandler.MountRoutes(r)
	}
	if params.NarrativeHandler != nil {
		params.NarrativeHandler.MountRoutes(r)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
