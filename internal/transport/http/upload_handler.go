package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "hoteldash/internal/errors"
	"hoteldash/internal/upload"
)

// UploadHandler accepts one uploaded file per request and returns a
// tabular preview of its contents.
type UploadHandler struct {
	parser       *upload.Parser
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(parser *upload.Parser, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *UploadHandler {
	return &UploadHandler{
		parser:       parser,
		logger:       logger.With(slog.String("handler", "upload")),
		errorHandler: errorHandler,
	}
}

// Routes returns the upload routes.
func (h *UploadHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Upload)

	return r
}

// Upload handles POST /api/upload. Parse failures are recovered locally
// and surfaced as a user-visible message; the process keeps serving.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var req upload.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	preview, err := h.parser.Parse(r.Context(), req)
	if err != nil {
		// Unsupported kind, decode failures and parse failures all render
		// the same inline message; the cause was already logged by the
		// parser and travels in the details field.
		h.errorHandler.HandleError(w, r, apierrors.ErrUploadParse(err))
		return
	}

	render.JSON(w, r, preview)
}
