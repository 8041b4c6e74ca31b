package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/complegal/comprate/internal/api/response"
	"github.com/complegal/comprate/internal/domain"
	"github.com/complegal/comprate/internal/service"
	"github.com/complegal/comprate/internal/staging"
)

// AnalyzeHandler handles report processing and session bootstrap.
type AnalyzeHandler struct {
	svc      *service.AnalyzerService
	stager   *staging.Stager
	maxBytes int64
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(svc *service.AnalyzerService, stager *staging.Stager, maxSizeMB int64) *AnalyzeHandler {
	if maxSizeMB <= 0 {
		maxSizeMB = 100
	}
	return &AnalyzeHandler{svc: svc, stager: stager, maxBytes: maxSizeMB << 20}
}

// ProcessReports accepts multipart PDF uploads, stages them locally and runs
// the upload-and-bootstrap pipeline. The request blocks for the full retry
// budget in the worst case.
func (h *AnalyzeHandler) ProcessReports(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		response.BadRequest(w, "invalid multipart request or upload too large")
		return
	}

	headers := r.MultipartForm.File["files"]
	files := make([]service.ReportFile, 0, len(headers))
	defer func() {
		for _, f := range files {
			h.stager.Remove(f.Path)
		}
	}()

	for _, header := range headers {
		if strings.ToLower(filepath.Ext(header.Filename)) != ".pdf" {
			response.BadRequest(w, "invalid file type. Allowed: .pdf")
			return
		}

		src, err := header.Open()
		if err != nil {
			response.InternalError(w, "failed to read uploaded file")
			return
		}

		path, err := h.stager.Save(src, ".pdf")
		src.Close()
		if err != nil {
			response.InternalError(w, "failed to stage uploaded file")
			return
		}

		files = append(files, service.ReportFile{Name: header.Filename, Path: path})
	}

	info, err := h.svc.UploadAndBootstrap(r.Context(), files)
	if err != nil {
		var uploadErr *domain.UploadError
		if errors.As(err, &uploadErr) {
			response.BadGateway(w, "failed to upload a medical report, please try again")
			return
		}
		response.BadGateway(w, "failed to create chat session, please try again")
		return
	}

	response.Created(w, info)
}
