package http

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "ordermetrics/internal/errors"
	appmiddleware "ordermetrics/internal/middleware"
	apiv1 "ordermetrics/pkg/contracts/api/v1"
)

// maxUploadRequestBytes bounds the request body, which only carries a URL
const maxUploadRequestBytes = 64 << 10

// UploadHandler handles CSV ingestion requests
type UploadHandler struct {
	service      IngestionService
	validator    *appmiddleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(service IngestionService, validator *appmiddleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *UploadHandler {
	return &UploadHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "upload_handler")),
		errorHandler: errorHandler,
	}
}

// Upload handles POST /upload. The source URL is read from the csv_url form
// field, a JSON body {"csv_url": ...} or a text/plain body.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	req, err := h.decodeRequest(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "ingesting upload",
		slog.String("request_id", reqID))

	entry, err := h.service.Ingest(ctx, req.CSVURL)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return
	}

	render.JSON(w, r, apiv1.NewUploadResponse(entry.Summary))
}

func (h *UploadHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (apiv1.UploadRequest, error) {
	var req apiv1.UploadRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadRequestBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			return req, apierrors.InvalidRequestWithError(err)
		}
	case "text/plain":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return req, apierrors.InvalidRequestWithError(err)
		}
		req.CSVURL = string(body)
	default:
		if mediaType == "multipart/form-data" {
			if err := r.ParseMultipartForm(maxUploadRequestBytes); err != nil {
				return req, apierrors.InvalidRequestWithError(err)
			}
		} else if err := r.ParseForm(); err != nil {
			return req, apierrors.InvalidRequestWithError(err)
		}
		req.CSVURL = r.PostFormValue("csv_url")
	}

	req.CSVURL = strings.TrimSpace(req.CSVURL)
	return req, nil
}
