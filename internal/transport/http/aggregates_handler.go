package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "streetpulse/internal/errors"
	"streetpulse/internal/middleware"
	"streetpulse/internal/services"
	"streetpulse/pkg/contracts/domain"
)

type windowCtxKey struct{}

// AggregateResponse wraps a table of aggregate rows.
type AggregateResponse struct {
	Window domain.WindowName `json:"window,omitempty"`
	Query  string            `json:"query"`
	Count  int               `json:"count"`
	Data   interface{}       `json:"data"`
}

// Render implements render.Renderer
func (a *AggregateResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func newAggregateResponse[T any](window domain.WindowName, query string, rows []T) *AggregateResponse {
	return &AggregateResponse{Window: window, Query: query, Count: len(rows), Data: rows}
}

// LocationQuery filters location-month-time rows.
type LocationQuery struct {
	Location string `query:"location" validate:"omitempty,max=200"`
}

// PeakQuery selects the location and measure of a peak lookup.
type PeakQuery struct {
	Location string `query:"location" validate:"required,max=200"`
	Measure  string `query:"measure" validate:"omitempty,oneof=all adults children"`
}

// AggregatesHandler serves aggregate tables as JSON
type AggregatesHandler struct {
	service      AggregationServiceInterface
	binder       *middleware.QueryBinder
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAggregatesHandler creates a new aggregates handler
func NewAggregatesHandler(service AggregationServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AggregatesHandler {
	return &AggregatesHandler{
		service:      service,
		binder:       middleware.NewQueryBinder(),
		logger:       logger.With(slog.String("component", "aggregates_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the aggregate routes on a fresh router
func (h *AggregatesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes adds the aggregate routes to r, usually the /api router
func (h *AggregatesHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/windows", h.GetWindows)
		r.Route("/windows/{window}", func(r chi.Router) {
			r.Use(h.WindowCtx)
			r.Get("/months", h.GetMonths)
			r.Get("/days", h.GetDays)
			r.Get("/locations", h.GetLocations)
			r.Get("/location-names", h.GetLocationNames)
			r.Get("/location-month-time", h.GetLocationMonthTime)
			r.Get("/location-day-time", h.GetLocationDayTime)
			r.Get("/weekdays", h.GetWeekdays)
			r.Get("/peak", h.GetPeak)
		})
		r.Get("/totals", h.GetTotals)
		r.Get("/compare/months", h.GetCompareMonths)
	})
}

// WindowCtx validates the {window} parameter and stores it in the context
func (h *AggregatesHandler) WindowCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := domain.WindowName(chi.URLParam(r, "window"))
		if !name.Valid() {
			h.errorHandler.HandleError(w, r, apierrors.UnknownWindowError(string(name)))
			return
		}
		ctx := context.WithValue(r.Context(), windowCtxKey{}, name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func windowFrom(r *http.Request) domain.WindowName {
	name, _ := r.Context().Value(windowCtxKey{}).(domain.WindowName)
	return name
}

// fail maps service errors onto API errors and writes the problem.
func (h *AggregatesHandler) fail(w http.ResponseWriter, r *http.Request, err error, location string) {
	switch {
	case errors.Is(err, services.ErrUnknownWindow):
		err = apierrors.UnknownWindowError(string(windowFrom(r)))
	case errors.Is(err, services.ErrUnknownLocation):
		err = apierrors.UnknownLocationError(location)
	case errors.Is(err, services.ErrUnknownMeasure):
		err = apierrors.ErrValidation("measure", "must be one of: all adults children")
	case errors.Is(err, services.ErrDatasetNotLoaded):
		err = apierrors.DatasetUnavailableError()
	}
	h.errorHandler.HandleError(w, r, err)
}

// GetWindows handles GET /api/windows
func (h *AggregatesHandler) GetWindows(w http.ResponseWriter, r *http.Request) {
	windows, err := h.service.Windows(r.Context())
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	render.Render(w, r, newAggregateResponse("", services.QueryWindows, windows))
}

// GetMonths handles GET /api/windows/{window}/months
func (h *AggregatesHandler) GetMonths(w http.ResponseWriter, r *http.Request) {
	window := windowFrom(r)
	rows, err := h.service.CountByMonth(r.Context(), window)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	render.Render(w, r, newAggregateResponse(window, services.QueryMonths, rows))
}

// GetDays handles GET /api/windows/{window}/days
func (h *AggregatesHandler) GetDays(w http.ResponseWriter, r *http.Request) {
	window := windowFrom(r)
	rows, err := h.service.CountByDay(r.Context(), window)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	render.Render(w, r, newAggregateResponse(window, services.QueryDays, rows))
}

// GetLocations handles GET /api/windows/{window}/locations
func (h *AggregatesHandler) GetLocations(w http.ResponseWriter, r *http.Request) {
	window := windowFrom(r)
	rows, err := h.service.CountByLocation(r.Context(), window)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	render.Render(w, r, newAggregateResponse(window, services.QueryLocations, rows))
}

// GetLocationNames handles GET /api/windows/{window}/location-names
func (h *AggregatesHandler) GetLocationNames(w http.ResponseWriter, r *http.Request) {
	window := windowFrom(r)
	names, err := h.service.Locations(r.Context(), window)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	render.Render(w, r, newAggregateResponse(window, services.QueryLocationNames, names))
}

// GetLocationMonthTime handles GET /api/windows/{window}/location-month-time
func (h *AggregatesHandler) GetLocationMonthTime(w http.ResponseWriter, r *http.Request) {
	var q LocationQuery
	if err := h.binder.Bind(r, &q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	window := windowFrom(r)
	rows, err := h.service.LocationDateTime(r.Context(), window, q.Location)
	if err != nil {
		h.fail(w, r, err, q.Location)
		return
	}
	render.Render(w, r, newAggregateResponse(window, services.QueryLocationMonthTime, rows))
}

// GetLocationDayTime handles GET /api/windows/{window}/location-day-time
func (h *AggregatesHandler) GetLocationDayTime(w http.ResponseWriter, r *http.Request) {
	window := windowFrom(r)
	rows, err := h.service.LocationDayTime(r.Context(), window)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	render.Render(w, r, newAggregateResponse(window, services.QueryLocationDayTime, rows))
}

// GetWeekdays handles GET /api/windows/{window}/weekdays
func (h *AggregatesHandler) GetWeekdays(w http.ResponseWriter, r *http.Request) {
	window := windowFrom(r)
	rows, err := h.service.WeekdayDistribution(r.Context(), window)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	render.Render(w, r, newAggregateResponse(window, services.QueryWeekdays, rows))
}

// GetPeak handles GET /api/windows/{window}/peak
func (h *AggregatesHandler) GetPeak(w http.ResponseWriter, r *http.Request) {
	var q PeakQuery
	if err := h.binder.Bind(r, &q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	peak, err := h.service.PeakPeriod(r.Context(), windowFrom(r), q.Location, domain.Measure(q.Measure))
	if err != nil {
		h.fail(w, r, err, q.Location)
		return
	}
	render.JSON(w, r, peak)
}

// GetTotals handles GET /api/totals
func (h *AggregatesHandler) GetTotals(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.YearTotals(r.Context())
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	render.Render(w, r, newAggregateResponse("", services.QueryTotals, rows))
}

// GetCompareMonths handles GET /api/compare/months
func (h *AggregatesHandler) GetCompareMonths(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.CompareMonths(r.Context())
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	render.Render(w, r, newAggregateResponse("", services.QueryCompareMonths, rows))
}
