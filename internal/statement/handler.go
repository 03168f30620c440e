package statement

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

// Handler wires the statement report endpoints.
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

// MountRoutes registers report endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/api/reports/{statement}", func(r chi.Router) {
		r.Get("/", h.handleReport)
		r.Get("/charts", h.handleCharts)
		r.Get("/waterfall", h.handleWaterfall)
	})
}

type reportParams struct {
	Year    int    `validate:"required,min=2000,max=2100"`
	Quarter int    `validate:"required,min=1,max=4"`
	Scope   string `validate:"required,oneof='Hợp nhất' 'Công ty Mẹ'"`
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	stmt, cfg, ok := h.parseFilters(w, r)
	if !ok {
		return
	}
	report, err := h.service.BuildReport(r.Context(), cfg, stmt)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleCharts(w http.ResponseWriter, r *http.Request) {
	stmt, cfg, ok := h.parseFilters(w, r)
	if !ok {
		return
	}
	indicator := strings.TrimSpace(r.URL.Query().Get("indicator"))
	if indicator == "" {
		httpx.Validation(w, "indicator is required")
		return
	}
	charts, err := h.service.BuildCharts(r.Context(), cfg, stmt, indicator)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, charts)
}

func (h *Handler) handleWaterfall(w http.ResponseWriter, r *http.Request) {
	stmt, cfg, ok := h.parseFilters(w, r)
	if !ok {
		return
	}
	sequenceID, err := strconv.ParseInt(r.URL.Query().Get("stt"), 10, 64)
	if err != nil {
		httpx.Validation(w, "stt must be an integer")
		return
	}
	mode := WaterfallMode(r.URL.Query().Get("mode"))
	switch mode {
	case WaterfallVsPreviousQuarter, WaterfallVsSamePeriodLastYear, WaterfallVsBeginningOfYear:
	case "":
		mode = WaterfallVsPreviousQuarter
	default:
		httpx.Validation(w, "unknown comparison mode")
		return
	}
	entries, err := h.service.BuildWaterfall(r.Context(), cfg, stmt, sequenceID, mode)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) parseFilters(w http.ResponseWriter, r *http.Request) (period.Statement, period.FilterConfig, bool) {
	stmt, err := period.ParseStatement(chi.URLParam(r, "statement"))
	if err != nil {
		httpx.NotFound(w, "unknown statement type")
		return "", period.FilterConfig{}, false
	}

	q := r.URL.Query()
	year, _ := strconv.Atoi(q.Get("year"))
	quarter, _ := strconv.Atoi(q.Get("quarter"))
	params := reportParams{Year: year, Quarter: quarter, Scope: q.Get("scope")}
	if err := h.validate.Struct(params); err != nil {
		httpx.Validation(w, err.Error())
		return "", period.FilterConfig{}, false
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
	return stmt, cfg, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotReady):
		httpx.NotReady(w)
	case errors.Is(err, ErrNoUnits):
		httpx.Validation(w, err.Error())
	case errors.Is(err, ErrSuperseded), errors.Is(err, facts.ErrFetchAborted):
		httpx.Superseded(w)
	default:
		h.logger.Error("statement request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		httpx.Internal(w)
	}
}
