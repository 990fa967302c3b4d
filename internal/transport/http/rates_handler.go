package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/mtorres1190/MATT-Report/internal/errors"
	"github.com/mtorres1190/MATT-Report/pkg/contracts/domain"
)

// RateSource fetches mortgage rate observations.
type RateSource interface {
	MortgageRates(ctx context.Context, from, to time.Time) ([]domain.RatePoint, error)
}

// RatesHandler serves the mortgage rate overlay data.
type RatesHandler struct {
	source       RateSource
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewRatesHandler creates a rates handler.
func NewRatesHandler(source RateSource, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *RatesHandler {
	return &RatesHandler{
		source:       source,
		logger:       logger.With(slog.String("component", "rates_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the rates routes.
func (h *RatesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/mortgage30us", h.Mortgage30US)
	return r
}

// Mortgage30US handles GET /api/rates/mortgage30us.
func (h *RatesHandler) Mortgage30US(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parseQueryDate(q.Get("from"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	to, err := parseQueryDate(q.Get("to"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	points, err := h.source.MortgageRates(r.Context(), from, to)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewNetworkError("failed to fetch mortgage rates", err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"series": "MORTGAGE30US",
		"points": points,
	})
}
