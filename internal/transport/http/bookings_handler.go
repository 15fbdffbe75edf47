package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"hoteldash/internal/analytics"
	"hoteldash/internal/dataset"
	apierrors "hoteldash/internal/errors"
	"hoteldash/internal/exporter"
)

// BookingsHandler serves the filtered-bookings preview and CSV export.
type BookingsHandler struct {
	snapshot     *analytics.Snapshot
	previewRows  int
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewBookingsHandler creates a new bookings handler. previewRows is the
// default table size when the request carries no limit parameter.
func NewBookingsHandler(snapshot *analytics.Snapshot, previewRows int, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *BookingsHandler {
	if previewRows <= 0 {
		previewRows = 5
	}
	return &BookingsHandler{
		snapshot:     snapshot,
		previewRows:  previewRows,
		logger:       logger.With(slog.String("handler", "bookings")),
		errorHandler: errorHandler,
	}
}

// Routes returns the bookings routes.
func (h *BookingsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/preview", h.GetPreview)
	r.Get("/export", h.Export)

	return r
}

// previewRow is one row of the preview table with the arrival date in the
// dataset wire format.
type previewRow struct {
	Hotel       string `json:"hotel"`
	ArrivalDate string `json:"arrival_date"`
}

// previewResponse carries the preview table and the total filtered size.
type previewResponse struct {
	Columns []string     `json:"columns"`
	Rows    []previewRow `json:"rows"`
	Total   int          `json:"total"`
}

// GetPreview handles GET /api/bookings/preview?limit=N.
func (h *BookingsHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	limit := h.previewRows
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("limit", "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	bookings := h.snapshot.Preview(limit)
	rows := make([]previewRow, len(bookings))
	for i, b := range bookings {
		rows[i] = previewRow{
			Hotel:       b.Hotel,
			ArrivalDate: b.ArrivalDate.Format(dataset.DateFormat),
		}
	}

	render.JSON(w, r, previewResponse{
		Columns: exporter.BookingHeaders,
		Rows:    rows,
		Total:   len(h.snapshot.Active),
	})
}

// Export handles GET /api/bookings/export: it streams the full filtered
// dataset as a named CSV attachment. It runs only on an explicit trigger
// from the page; nothing requests it on load.
func (h *BookingsHandler) Export(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "exporting filtered bookings",
		slog.Int("booking_count", len(h.snapshot.Active)))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exporter.ExportFilename))

	if err := exporter.WriteBookings(w, h.snapshot.Active, exporter.WriteOptions{}); err != nil {
		// Headers are already out; all we can do is log.
		h.logger.ErrorContext(r.Context(), "failed to stream CSV export",
			slog.String("error", err.Error()))
	}
}
