package api

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/starford/arkiv/internal/blob"
	"github.com/starford/arkiv/internal/docservice"
)

const maxUploadBytes = 50 << 20 // 50 MB

// Upload handles POST /api/documents/upload and
// POST /api/documents/folders/{folderID}/upload (multipart/form-data).
//
// The multipart body carries one or more streams under the "files" field plus
// optional "name", "category", and "description" descriptor fields. Files are
// ingested independently: the response lists every stored summary and a
// per-file breakdown of failures.
//
//	@Summary		Upload one or more documents
//	@Tags			documents
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			folderID	path		string	false	"Target folder (omit for unfiled)"
//	@Param			files		formData	file	true	"File streams"
//	@Param			name		formData	string	false	"Display name override"
//	@Param			category	formData	string	false	"Category label"
//	@Param			description	formData	string	false	"Free-text description"
//	@Success		201			{object}	UploadResponse
//	@Success		207			{object}	UploadResponse	"Some files failed"
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("no files submitted"))
		return
	}

	desc := docservice.Descriptor{
		DisplayName: r.FormValue("name"),
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
	}

	uploads := make([]docservice.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("unreadable multipart file"))
			return
		}
		defer f.Close()
		uploads = append(uploads, docservice.Upload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     f,
		})
	}

	results, err := h.svc.Ingest(r.Context(), chi.URLParam(r, "folderID"), uploads, desc)
	if err != nil {
		writeServiceError(w, "upload", err)
		return
	}

	resp := UploadResponse{Files: []FileSummary{}}
	for _, res := range results {
		if res.Err != nil {
			resp.Failures = append(resp.Failures, UploadFailure{Name: res.OriginalName, Error: res.Err.Error()})
			continue
		}
		resp.Files = append(resp.Files, *res.Summary)
	}

	status := http.StatusCreated
	if len(resp.Failures) > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, resp)
}

// DownloadHandler serves raw blob bytes by storage key.
type DownloadHandler struct {
	store *blob.FS
}

// NewDownloadHandler creates a handler over the upload directory.
func NewDownloadHandler(store *blob.FS) *DownloadHandler {
	return &DownloadHandler{store: store}
}

// ServeFile handles GET /uploads/{key}. The byte transfer is a plain static
// read; everything interesting happened at ingestion time.
func (h *DownloadHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	abs, err := h.store.Abs(key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}
