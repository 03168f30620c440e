package refdata

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/finsight-vn/finsight/internal/platform/httpx"
)

// Handler serves the reference metadata the dashboard needs before it can
// render a filter bar: reporting years, version catalog and unit hierarchy.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the metadata endpoint.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/api/meta", h.handleMeta)
}

type metaResponse struct {
	Years      []int           `json:"years"`
	Versions   []versionView   `json:"versions"`
	Scopes     []scopeView     `json:"scopes"`
	UnitGroups []unitGroupView `json:"unitGroups"`
}

type versionView struct {
	Code        string `json:"code"`
	DisplayName string `json:"displayName"`
}

type scopeView struct {
	Scope     string `json:"scope"`
	PreAudit  string `json:"preAuditVersion"`
	PostAudit string `json:"postAuditVersion"`
}

type unitGroupView struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Entities []entityView `json:"entities"`
}

type entityView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) handleMeta(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	years, err := h.service.AvailableYears(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cat, err := h.service.Catalog(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	groups, err := h.service.UnitHierarchy(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := metaResponse{Years: years}
	for _, v := range cat.Versions {
		resp.Versions = append(resp.Versions, versionView{Code: v.Code, DisplayName: v.DisplayName})
	}
	for scope, sv := range cat.Scopes {
		resp.Scopes = append(resp.Scopes, scopeView{
			Scope:     string(scope),
			PreAudit:  sv.PreAudit,
			PostAudit: sv.PostAudit,
		})
	}
	sort.Slice(resp.Scopes, func(i, j int) bool { return resp.Scopes[i].Scope < resp.Scopes[j].Scope })
	for _, g := range groups {
		gv := unitGroupView{ID: g.ID, Name: g.Name}
		for _, e := range g.Entities {
			gv.Entities = append(gv.Entities, entityView{ID: e.ID, Name: e.Name})
		}
		resp.UnitGroups = append(resp.UnitGroups, gv)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("load reference metadata", slog.Any("error", err), slog.String("path", r.URL.Path))
	httpx.Internal(w)
}
