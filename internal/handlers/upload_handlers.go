package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"todoTracker/internal/handlers/dto"
	"todoTracker/internal/logger"

	"go.uber.org/zap"
)

// multipart parts above this size spill to temp files
const multipartMemory = 8 << 20

type UploadHandler struct {
	UploadService UploadService
	MaxUploadSize int64
}

func NewUploadHandler(uploadService UploadService, maxUploadSize int64) *UploadHandler {
	return &UploadHandler{
		UploadService: uploadService,
		MaxUploadSize: maxUploadSize,
	}
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if h.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadSize)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			logger.Warn("HTTP: upload too large",
				zap.Int64("limit", h.MaxUploadSize),
				zap.String("client_ip", r.RemoteAddr))
			responseWithError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		logger.Warn("HTTP: failed to parse multipart form", zap.Error(err), zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.Warn("HTTP: file part missing", zap.Error(err), zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	result, err := h.UploadService.Store(r.Context(), file, header.Filename)
	if err != nil {
		handleServiceError(w, r, err, "upload_file")
		return
	}

	logger.Info("HTTP_OUT: file uploaded",
		zap.String("key", result.Key),
		zap.Int64("size", header.Size),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", result.Status))

	responseWithData(w, result.Status, dto.UploadResponse{FileURL: result.URL})
}

// isTooLarge also checks the text since multipart does not always wrap the cause.
func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}
