package ratio

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/finsight-vn/finsight/internal/facts"
	"github.com/finsight-vn/finsight/internal/period"
	"github.com/finsight-vn/finsight/internal/platform/httpx"
)

// Handler wires the financial-analysis endpoints.
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

// MountRoutes registers ratio endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/api/ratios", func(r chi.Router) {
		r.Get("/", h.handleAnalysis)
		r.Get("/indicators", h.handleIndicators)
		r.Get("/charts", h.handleCharts)
	})
}

type analysisParams struct {
	Year    int    `validate:"required,min=2000,max=2100"`
	Quarter int    `validate:"required,min=1,max=4"`
	Scope   string `validate:"required,oneof='Hợp nhất' 'Công ty Mẹ'"`
}

func (h *Handler) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.parseFilters(w, r)
	if !ok {
		return
	}
	analysis, err := h.service.BuildAnalysis(r.Context(), cfg)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, analysis)
}

func (h *Handler) handleIndicators(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, Indicators())
}

func (h *Handler) handleCharts(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.parseFilters(w, r)
	if !ok {
		return
	}
	key := strings.TrimSpace(r.URL.Query().Get("indicator"))
	if key == "" {
		httpx.Validation(w, "indicator is required")
		return
	}
	series, err := h.service.BuildCharts(r.Context(), cfg, key)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, series)
}

func (h *Handler) parseFilters(w http.ResponseWriter, r *http.Request) (period.FilterConfig, bool) {
	q := r.URL.Query()
	year, _ := strconv.Atoi(q.Get("year"))
	quarter, _ := strconv.Atoi(q.Get("quarter"))
	params := analysisParams{Year: year, Quarter: quarter, Scope: q.Get("scope")}
	if err := h.validate.Struct(params); err != nil {
		httpx.Validation(w, err.Error())
		return period.FilterConfig{}, false
	}

	cfg := period.FilterConfig{
		Scope:   period.Scope(params.Scope),
		Year:    params.Year,
		Quarter: period.Quarter(params.Quarter),
	}
	if units := strings.TrimSpace(q.Get("units")); units != "" {
		cfg.UnitGroupIDs = strings.Split(units, ",")
	}
	versions := make(map[period.Quarter]string)
	for i := period.Q1; i <= period.Q4; i++ {
		if code := q.Get("v" + strconv.Itoa(int(i))); code != "" {
			versions[i] = code
		}
	}
	if len(versions) > 0 {
		cfg.Versions = versions
	}
	return cfg, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotReady):
		httpx.NotReady(w)
	case errors.Is(err, ErrNoUnits), errors.Is(err, ErrUnknownIndicator):
		httpx.Validation(w, err.Error())
	case errors.Is(err, facts.ErrFetchAborted):
		httpx.Superseded(w)
	default:
		h.logger.Error("ratio request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		httpx.Internal(w)
	}
}
