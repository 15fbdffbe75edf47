package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"hoteldash/internal/analytics"
)

// AnalyticsHandler serves the derived chart data.
type AnalyticsHandler struct {
	snapshot *analytics.Snapshot
	logger   *slog.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(snapshot *analytics.Snapshot, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		snapshot: snapshot,
		logger:   logger.With(slog.String("handler", "analytics")),
	}
}

// Routes returns the analytics routes.
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/busy-month", h.GetBusyMonth)
	r.Get("/adr", h.GetADR)

	return r
}

// GetBusyMonth handles GET /api/analytics/busy-month.
// Rows cover the 12 calendar months in calendar order; a hotel with no
// bookings in a month is absent from that row's counts.
func (h *AnalyticsHandler) GetBusyMonth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.snapshot.BusyMonth)
}

// adrResponse wraps the ADR cells for the grouped bar chart.
type adrResponse struct {
	Cells []analytics.ADRCell `json:"cells"`
}

// GetADR handles GET /api/analytics/adr.
func (h *AnalyticsHandler) GetADR(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, adrResponse{Cells: h.snapshot.ADR})
}
