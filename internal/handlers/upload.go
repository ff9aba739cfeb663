package handlers

import (
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"docuchunk/internal/contextutil"
	"docuchunk/internal/service"
)

const (
	// uploadFormField is the multipart field carrying the file.
	uploadFormField = "file"
	// multipartMemory is how much of a multipart body is held in memory
	// before the rest spools to a temporary file.
	multipartMemory = 32 << 10
	// multipartSlack covers form boundaries and part headers on top of the file limit.
	multipartSlack = 64 << 10
)

// UploadHandler handles POST /api/v1/data/upload/{project_id}.
type UploadHandler struct {
	dataService  service.DataService
	maxBodyBytes int64
}

// NewUploadHandler creates a new UploadHandler. maxFileBytes bounds the request body.
func NewUploadHandler(dataService service.DataService, maxFileBytes int64) *UploadHandler {
	return &UploadHandler{
		dataService:  dataService,
		maxBodyBytes: maxFileBytes + multipartSlack,
	}
}

// ServeHTTP reads the multipart "file" field and hands it to the data service.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// A body past the limit plus slack is refused here, so it reports
	// FILE_SIZE_EXCEEDED even when its type would also be rejected.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			logger.InfoContext(ctx, "upload body too large", "limit", maxErr.Limit)
			writeJSON(w, ctx, http.StatusBadRequest, SignalResponse{Signal: service.SignalFileSizeExceeded})
			return
		}
		logger.WarnContext(ctx, "invalid multipart body", "error", err)
		writeJSON(w, ctx, http.StatusBadRequest, SignalResponse{Signal: service.SignalFileUploadFailed})
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		logger.WarnContext(ctx, "missing file field", "error", err)
		writeJSON(w, ctx, http.StatusBadRequest, SignalResponse{Signal: service.SignalFileUploadFailed})
		return
	}
	defer func() {
		_ = file.Close()
	}()

	contentType := header.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}

	resp, err := h.dataService.Upload(ctx, service.UploadRequest{
		ProjectID:   chi.URLParam(r, "project_id"),
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		handleServiceError(w, ctx, err, service.SignalFileUploadFailed)
		return
	}

	writeJSON(w, ctx, http.StatusOK, resp)
}
