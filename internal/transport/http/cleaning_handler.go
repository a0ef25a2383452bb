package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "datacleanr/internal/errors"
	"datacleanr/internal/infrastructure"
	"datacleanr/internal/middleware"
	"datacleanr/internal/services"
	"datacleanr/internal/table"
	api "datacleanr/pkg/contracts/api/v1"
)

// CleaningHandler handles the file cleaning API with RFC 7807 errors
type CleaningHandler struct {
	service        CleaningServiceInterface
	binder         requestBinder
	maxUploadBytes int64
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewCleaningHandler creates a new cleaning handler. Uploads larger than
// maxUploadBytes are rejected with 413.
func NewCleaningHandler(service CleaningServiceInterface, validator *middleware.Validator, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *CleaningHandler {
	return &CleaningHandler{
		service:        service,
		binder:         requestBinder{validator: validator},
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "cleaning_handler")),
		errorHandler:   errorHandler,
	}
}

// Routes returns the cleaning routes, mounted under /api
func (h *CleaningHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.With(middleware.MaxBodySize(h.maxUploadBytes)).Post("/upload", h.Upload)

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeValidator(
			"application/json",
			"application/x-www-form-urlencoded",
			"multipart/form-data",
		))
		r.Post("/suggest", h.Suggest)
		r.Post("/detect-industry", h.DetectIndustry)
		r.Post("/industry-suggestions", h.IndustrySuggestions)
		r.Post("/clean", h.Clean)
		r.Post("/analyze", h.Analyze)
		r.Post("/clean-issues", h.CleanIssues)
	})

	r.Get("/download/{file_id}", h.Download)
	r.Delete("/sessions/{file_id}", h.DeleteSession)

	return r
}

// Upload handles POST /api/upload with a multipart "file" field
func (h *CleaningHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	if h.maxUploadBytes > 0 && r.ContentLength > h.maxUploadBytes {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusRequestEntityTooLarge,
			apierrors.ErrPayloadTooLarge.ErrorCode,
			apierrors.ErrPayloadTooLarge.Message,
			map[string]interface{}{"limit_bytes": h.maxUploadBytes},
		))
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.errorHandler.HandleError(w, r, h.uploadError(err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "A file must be uploaded in the 'file' field"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.uploadError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "uploading file",
		slog.String("request_id", reqID),
		slog.String("filename", header.Filename),
		slog.Int("size_bytes", len(data)),
	)

	resp, err := h.service.Upload(r.Context(), header.Filename, data)
	if err != nil {
		h.fail(w, r, "upload failed", err)
		return
	}

	render.JSON(w, r, resp)
}

// uploadError maps body read failures, recognizing oversize bodies even
// when the multipart reader does not wrap *http.MaxBytesError
func (h *CleaningHandler) uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		return apierrors.NewWithDetails(
			http.StatusRequestEntityTooLarge,
			apierrors.ErrPayloadTooLarge.ErrorCode,
			apierrors.ErrPayloadTooLarge.Message,
			map[string]interface{}{"limit_bytes": h.maxUploadBytes},
		)
	}
	return apierrors.InvalidRequestWithError(err)
}

// Suggest handles POST /api/suggest
func (h *CleaningHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req api.FileRequest
	if err := h.binder.bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.Suggest(infrastructure.WithFileID(r.Context(), req.FileID), req.FileID)
	if err != nil {
		h.fail(w, r, "suggest failed", err)
		return
	}
	render.JSON(w, r, resp)
}

// DetectIndustry handles POST /api/detect-industry
func (h *CleaningHandler) DetectIndustry(w http.ResponseWriter, r *http.Request) {
	var req api.FileRequest
	if err := h.binder.bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.DetectIndustry(infrastructure.WithFileID(r.Context(), req.FileID), req.FileID)
	if err != nil {
		h.fail(w, r, "industry detection failed", err)
		return
	}
	render.JSON(w, r, resp)
}

// IndustrySuggestions handles POST /api/industry-suggestions
func (h *CleaningHandler) IndustrySuggestions(w http.ResponseWriter, r *http.Request) {
	var req api.FileRequest
	if err := h.binder.bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.IndustrySuggestions(infrastructure.WithFileID(r.Context(), req.FileID), req.FileID)
	if err != nil {
		h.fail(w, r, "industry suggestions failed", err)
		return
	}
	render.JSON(w, r, resp)
}

// Clean handles POST /api/clean
func (h *CleaningHandler) Clean(w http.ResponseWriter, r *http.Request) {
	var req api.CleanRequest
	if err := h.binder.bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "cleaning file",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("file_id", req.FileID),
		slog.String("handle_missing", req.HandleMissing),
	)

	resp, err := h.service.Clean(infrastructure.WithFileID(r.Context(), req.FileID), &req)
	if err != nil {
		h.fail(w, r, "clean failed", err)
		return
	}
	render.JSON(w, r, resp)
}

// Analyze handles POST /api/analyze
func (h *CleaningHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req api.FileRequest
	if err := h.binder.bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.Analyze(infrastructure.WithFileID(r.Context(), req.FileID), req.FileID)
	if err != nil {
		h.fail(w, r, "analysis failed", err)
		return
	}
	render.JSON(w, r, resp)
}

// CleanIssues handles POST /api/clean-issues
func (h *CleaningHandler) CleanIssues(w http.ResponseWriter, r *http.Request) {
	var req api.CleanIssuesRequest
	if err := h.binder.bind(r, &req, "issue_ids"); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "cleaning issues",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("file_id", req.FileID),
		slog.Int("selected", len(req.IssueIDs)),
		slog.Bool("echoed_report", len(req.AnalysisReport) > 0),
	)

	resp, err := h.service.CleanIssues(infrastructure.WithFileID(r.Context(), req.FileID), &req)
	if err != nil {
		h.fail(w, r, "clean issues failed", err)
		return
	}
	render.JSON(w, r, resp)
}

// Download handles GET /api/download/{file_id}?format=csv|xlsx
func (h *CleaningHandler) Download(w http.ResponseWriter, r *http.Request) {
	req := api.DownloadRequest{
		FileID: chi.URLParam(r, "file_id"),
		Format: strings.ToLower(r.URL.Query().Get("format")),
	}
	if err := h.binder.validator.ValidateStruct(&req); err != nil {
		// a malformed id can never name a session
		h.errorHandler.HandleError(w, r, apierrors.ErrSessionNotFound)
		return
	}

	path, name, err := h.service.DownloadPath(infrastructure.WithFileID(r.Context(), req.FileID), req.FileID, req.Format)
	if err != nil {
		h.fail(w, r, "download failed", err)
		return
	}

	h.logger.InfoContext(r.Context(), "downloading file",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("file_id", req.FileID),
		slog.String("attachment", name),
	)

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Type", contentTypeFor(name))
	http.ServeFile(w, r, path)
}

func contentTypeFor(name string) string {
	if strings.HasSuffix(name, ".xlsx") {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// DeleteSession handles DELETE /api/sessions/{file_id}
func (h *CleaningHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "file_id")

	if err := h.service.DeleteSession(infrastructure.WithFileID(r.Context(), fileID), fileID); err != nil {
		h.fail(w, r, "delete session failed", err)
		return
	}

	h.logger.InfoContext(r.Context(), "session deleted",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("file_id", fileID),
	)
	w.WriteHeader(http.StatusNoContent)
}

// fail logs a service error and responds with its API mapping
func (h *CleaningHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	h.errorHandler.HandleError(w, r, mapServiceError(err))
}

// mapServiceError maps service and loader errors to API errors
func mapServiceError(err error) error {
	var formatErr *table.DataFormatError
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return apierrors.ErrSessionNotFound
	case errors.Is(err, services.ErrExportNotFound):
		return apierrors.ErrExportNotFound
	case errors.Is(err, services.ErrInvalidFormat):
		return apierrors.ErrInvalidExportFormat
	case errors.Is(err, table.ErrUnsupportedFormat):
		return apierrors.ErrUnsupportedFormat
	case errors.As(err, &formatErr):
		return apierrors.ErrDataFormat(err)
	case errors.Is(err, services.ErrNoFilename):
		return apierrors.ErrValidation("file", "The uploaded file has no name")
	case errors.Is(err, services.ErrNoIssuesSelected):
		return apierrors.ErrValidation("issue_ids", "At least one issue id is required")
	case errors.Is(err, services.ErrInvalidOptions):
		return apierrors.ErrValidation("handle_missing", fmt.Sprintf("%v", err))
	}
	return err
}
