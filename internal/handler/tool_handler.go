// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"pdf-tools-server/internal/domain"
	apperrors "pdf-tools-server/pkg/errors"

	"github.com/gorilla/mux"
)

const (
	fileFormField = "file"

	// defaultMultipartMemory applies when no upload cap is configured.
	defaultMultipartMemory = 32 << 20
)

// multipartMemoryFor sizes the in-memory form buffer so that any upload
// within the cap stays in memory. A smaller buffer would let net/http spill
// file parts into os.TempDir, outside the scratch workspace.
func multipartMemoryFor(maxFileSize int64) int64 {
	if maxFileSize > 0 {
		return maxFileSize
	}
	return defaultMultipartMemory
}

// ToolHandler exposes the PDF operations over multipart HTTP.
type ToolHandler struct {
	processor   domain.PDFProcessor
	maxFileSize int64
	formMemory  int64
	logger      domain.Logger
}

// NewToolHandler creates a new tool handler
func NewToolHandler(processor domain.PDFProcessor, maxFileSize int64, logger domain.Logger) *ToolHandler {
	return &ToolHandler{
		processor:   processor,
		maxFileSize: maxFileSize,
		formMemory:  multipartMemoryFor(maxFileSize),
		logger:      logger,
	}
}

type operationsResponse struct {
	Operations []*domain.Operation `json:"operations"`
}

// ListOperations returns the catalogue of operations and their parameters
func (h *ToolHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, operationsResponse{Operations: h.processor.Operations()})
}

// Process runs the operation named in the path against the uploaded file
// and streams the resulting PDF back as an attachment.
func (h *ToolHandler) Process(w http.ResponseWriter, r *http.Request) {
	operation := mux.Vars(r)["operation"]
	requestID := GetRequestIDFromContext(r)

	upload, params, err := h.readForm(w, r)
	if r.MultipartForm != nil {
		defer func() {
			if rmErr := r.MultipartForm.RemoveAll(); rmErr != nil {
				h.logger.Warn("Failed to remove multipart temp files", "error", rmErr, "request_id", requestID)
			}
		}()
	}
	if err != nil {
		h.logger.Debug("Rejected multipart form", "operation", operation, "error", err, "request_id", requestID)
		writeAppError(w, err)
		return
	}

	result, err := h.processor.Process(r.Context(), operation, upload, params)
	if err != nil {
		if apperrors.GetStatusCode(err) >= http.StatusInternalServerError {
			h.logger.Error("Operation failed", err, "operation", operation, "request_id", requestID)
		}
		writeAppError(w, err)
		return
	}
	if result.CleanupErr != nil {
		h.logger.Warn("Operation succeeded with cleanup failure", "operation", operation, "error", result.CleanupErr, "request_id", requestID)
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": result.Filename})
	if disposition == "" {
		disposition = `attachment; filename="document.pdf"`
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		h.logger.Warn("Failed to write response", "operation", operation, "error", err, "request_id", requestID)
	}
}

// readForm parses the multipart body. A request without a file part yields a
// nil upload so the pipeline reports it as a missing upload.
func (h *ToolHandler) readForm(w http.ResponseWriter, r *http.Request) (*domain.Upload, domain.Params, error) {
	if h.maxFileSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)
	}

	if err := r.ParseMultipartForm(h.formMemory); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return nil, nil, apperrors.NewValidationError("File too large", "maximum size is "+strconv.FormatInt(maxErr.Limit, 10)+" bytes")
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			return nil, domain.Params{}, nil
		default:
			return nil, nil, apperrors.NewValidationError("Invalid multipart form", err.Error())
		}
	}

	params := make(domain.Params, len(r.MultipartForm.Value))
	for key, values := range r.MultipartForm.Value {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	file, header, err := r.FormFile(fileFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, params, nil
		}
		return nil, nil, apperrors.NewValidationError("Invalid file upload", err.Error())
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, apperrors.NewUnexpectedError("Failed to read the uploaded file", err)
	}

	return &domain.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, params, nil
}
