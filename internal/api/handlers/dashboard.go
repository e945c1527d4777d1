package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/snapboard/internal/dashboard"
	"github.com/wonny/snapboard/pkg/logger"
)

// DashboardService is the part of dashboard.Service the handlers need
type DashboardService interface {
	Get(ctx context.Context, refresh bool) *dashboard.Dashboard
}

// DashboardHandler serves derived dashboard sections
// ⭐ SSOT: 대시보드 API 핸들러는 이 구조체에서만
type DashboardHandler struct {
	service DashboardService
	logger  *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{service: service, logger: log}
}

// load fetches the dashboard, honoring ?refresh=true
func (h *DashboardHandler) load(r *http.Request) *dashboard.Dashboard {
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return h.service.Get(r.Context(), refresh)
}

// sectionStatus maps a section outcome to an HTTP status.
// no_data and malformed are answers about the data, not server failures.
func sectionStatus(state dashboard.SectionState) int {
	if state.Status == dashboard.StatusUnavailable {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// GetDashboard returns every section
// GET /api/dashboard?refresh=true
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d := h.load(r)
	if d.Degraded() {
		w.Header().Set("X-Dashboard-Degraded", "true")
	}
	respondJSON(w, http.StatusOK, d)
}

// GetHoldings returns the ranked latest portfolio snapshot with allocation
// GET /api/dashboard/holdings
func (h *DashboardHandler) GetHoldings(w http.ResponseWriter, r *http.Request) {
	d := h.load(r)
	respondJSON(w, sectionStatus(d.Holdings.SectionState), d.Holdings)
}

// GetSeries returns the total-value series
// GET /api/dashboard/series
func (h *DashboardHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	d := h.load(r)
	respondJSON(w, sectionStatus(d.Series.SectionState), d.Series)
}

// GetPanels returns every classified panel
// GET /api/dashboard/panels
func (h *DashboardHandler) GetPanels(w http.ResponseWriter, r *http.Request) {
	d := h.load(r)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"generated_at": d.GeneratedAt,
		"panels":       d.Panels,
	})
}

// GetPanel returns one panel by name
// GET /api/dashboard/panels/{name}
func (h *DashboardHandler) GetPanel(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	panel, ok := h.load(r).Panel(name)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown panel: "+name)
		return
	}
	respondJSON(w, sectionStatus(panel.SectionState), panel)
}

// GetEma returns the EMA comparison matrix
// GET /api/dashboard/ema
func (h *DashboardHandler) GetEma(w http.ResponseWriter, r *http.Request) {
	d := h.load(r)
	if d.Ema == nil {
		respondError(w, http.StatusNotFound, "ema matrix not configured")
		return
	}
	respondJSON(w, sectionStatus(d.Ema.SectionState), d.Ema)
}
