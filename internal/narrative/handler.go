package narrative

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/finsight-vn/finsight/internal/period"
	"github.com/finsight-vn/finsight/internal/platform/httpx"
	"github.com/finsight-vn/finsight/internal/statement"
)

// Handler wires the commentary endpoint.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the commentary endpoint. Model calls are expensive,
// so the route carries its own tight rate limit.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/api/narrative/{statement}", func(r chi.Router) {
		r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		r.Post("/", h.handleAnalyze)
	})
}

type analyzeRequest struct {
	Year     int            `json:"year" validate:"required,min=2000,max=2100"`
	Quarter  int            `json:"quarter" validate:"required,min=1,max=4"`
	Scope    string         `json:"scope" validate:"required,oneof='Hợp nhất' 'Công ty Mẹ'"`
	Units    []string       `json:"units"`
	Versions map[int]string `json:"versions"`
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	stmt, err := period.ParseStatement(chi.URLParam(r, "statement"))
	if err != nil {
		httpx.NotFound(w, "unknown statement type")
		return
	}

	var req analyzeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Validation(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Validation(w, err.Error())
		return
	}

	cfg := period.FilterConfig{
		Scope:        period.Scope(req.Scope),
		Year:         req.Year,
		Quarter:      period.Quarter(req.Quarter),
		UnitGroupIDs: req.Units,
	}
	if len(req.Versions) > 0 {
		cfg.Versions = make(map[period.Quarter]string, len(req.Versions))
		for q, code := range req.Versions {
			cfg.Versions[period.Quarter(q)] = code
		}
	}

	result, err := h.service.Analyze(r.Context(), cfg, stmt)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrUnsupportedStatement):
		httpx.Validation(w, err.Error())
	case errors.Is(err, statement.ErrNotReady):
		httpx.NotReady(w)
	case errors.Is(err, statement.ErrNoUnits):
		httpx.Validation(w, err.Error())
	case errors.Is(err, statement.ErrSuperseded):
		httpx.Superseded(w)
	default:
		h.logger.Error("narrative request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		httpx.Internal(w)
	}
}
