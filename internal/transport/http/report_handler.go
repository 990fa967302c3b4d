package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/mtorres1190/MATT-Report/internal/errors"
	"github.com/mtorres1190/MATT-Report/internal/services"
	"github.com/mtorres1190/MATT-Report/pkg/contracts/domain"
)

// ReportHandler serves the report aggregations over one cached upload.
type ReportHandler struct {
	service      *services.ReportService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a report handler.
func NewReportHandler(service *services.ReportService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the report routes, keyed by upload ID.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Route("/{uploadID}", func(r chi.Router) {
		r.Get("/dow", h.DOWSummary)
		r.Get("/weekday-trend", h.WeekdayTrend)
		r.Get("/plan-pricing", h.PlanPricing)
		r.Get("/inventory", h.Inventory)
		r.Get("/pace-vs-margin", h.PaceVsMargin)
	})

	return r
}

// DOWSummary handles GET /api/reports/{uploadID}/dow.
func (h *ReportHandler) DOWSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uploadID")
	filter, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rows, err := h.service.DOWSummary(r.Context(), id, filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"rows": rows})
}

// WeekdayTrend handles GET /api/reports/{uploadID}/weekday-trend.
func (h *ReportHandler) WeekdayTrend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uploadID")
	filter, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rows, err := h.service.WeekdayTrend(r.Context(), id, filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"rows": rows})
}

// PlanPricing handles GET /api/reports/{uploadID}/plan-pricing. The
// sale window is mandatory; group defaults to Hub.
func (h *ReportHandler) PlanPricing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uploadID")
	filter, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	q := r.URL.Query()
	from, err := requireQueryDate(q, "window_from")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	to, err := requireQueryDate(q, "window_to")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	group := q.Get("group")
	if group == "" {
		group = domain.ColHub
	}

	rows, err := h.service.PlanPricing(r.Context(), id, filter, from, to, group)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"rows": rows})
}

// Inventory handles GET /api/reports/{uploadID}/inventory: the unsold
// inventory snapshot over a COE window at a point in time.
func (h *ReportHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uploadID")
	filter, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	q := r.URL.Query()
	snapshot, err := requireQueryDate(q, "snapshot")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	coeStart, err := requireQueryDate(q, "coe_start")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	coeEnd, err := requireQueryDate(q, "coe_end")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	group := q.Get("group")
	if group == "" {
		group = domain.ColHub
	}
	label := q.Get("label")
	if label == "" {
		label = snapshot.Format("2006-01-02")
	}

	rows, err := h.service.InventorySnapshot(r.Context(), id, filter, group, snapshot, coeStart, coeEnd, label)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"rows": rows})
}

// PaceVsMargin handles GET /api/reports/{uploadID}/pace-vs-margin.
// today defaults to the current date; target is the sellout date.
func (h *ReportHandler) PaceVsMargin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uploadID")
	filter, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	q := r.URL.Query()
	today, err := parseQueryDate(q.Get("today"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if today.IsZero() {
		today = time.Now().UTC().Truncate(24 * time.Hour)
	}
	target, err := requireQueryDate(q, "target")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	coeStart, err := requireQueryDate(q, "coe_start")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	coeEnd, err := requireQueryDate(q, "coe_end")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rows, slope, err := h.service.PaceVsMargin(r.Context(), id, filter, today, target, coeStart, coeEnd)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"rows":  rows,
		"slope": slope,
	})
}
