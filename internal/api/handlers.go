package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/arkiv/internal/apperr"
	"github.com/starford/arkiv/internal/docservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *docservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *docservice.Service) *Handler {
	return &Handler{svc: svc}
}

// writeServiceError maps service sentinel errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrInvalidName):
		writeJSON(w, http.StatusBadRequest, errorBody("name must not be empty"))
	case errors.Is(err, apperr.ErrFolderNotEmpty):
		writeJSON(w, http.StatusConflict, errorBody("folder is not empty"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List every document plus recent items and category counts
//	@Tags			documents
//	@Produce		json
//	@Success		200	{object}	DocumentsResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.ListAllFiles(r.Context())
	if err != nil {
		writeServiceError(w, "list documents", err)
		return
	}
	recent, err := h.svc.ListRecentFiles(r.Context(), 5)
	if err != nil {
		writeServiceError(w, "list recent", err)
		return
	}
	_, cats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentsResponse{Documents: docs, Recent: recent, Categories: cats})
}

// Stats handles GET /api/documents/stats.
//
//	@Summary		Aggregate storage totals by type bucket and category
//	@Tags			documents
//	@Produce		json
//	@Success		200	{object}	StatsResponse
//	@Security		BearerAuth
//	@Router			/documents/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	storage, cats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{Storage: storage, Categories: cats})
}

// ListFolders handles GET /api/documents/folders.
//
//	@Summary		List folders with their file summaries
//	@Tags			folders
//	@Produce		json
//	@Success		200	{object}	FoldersResponse
//	@Security		BearerAuth
//	@Router			/documents/folders [get]
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.svc.ListFolders(r.Context())
	if err != nil {
		writeServiceError(w, "list folders", err)
		return
	}
	writeJSON(w, http.StatusOK, FoldersResponse{Folders: folders})
}

// CreateFolder handles POST /api/documents/folders.
//
//	@Summary		Create a folder
//	@Tags			folders
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateFolderRequest	true	"Folder to create"
//	@Success		201		{object}	FolderSummary
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/folders [post]
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req CreateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	folder, err := h.svc.CreateFolder(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, "create folder", err)
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

// RenameFolder handles PATCH /api/documents/folders/{folderID}.
//
//	@Summary		Rename a folder
//	@Tags			folders
//	@Accept			json
//	@Produce		json
//	@Param			folderID	path		string			true	"Folder identifier"
//	@Param			body		body		RenameRequest	true	"New name"
//	@Success		200			{object}	FolderSummary
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/folders/{folderID} [patch]
func (h *Handler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	folder, err := h.svc.RenameFolder(r.Context(), chi.URLParam(r, "folderID"), req.Name)
	if err != nil {
		writeServiceError(w, "rename folder", err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

// DeleteFolder handles DELETE /api/documents/folders/{folderID}.
//
//	@Summary		Delete an empty folder
//	@Tags			folders
//	@Param			folderID	path	string	true	"Folder identifier"
//	@Success		204			"Folder deleted"
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/folders/{folderID} [delete]
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteFolder(r.Context(), chi.URLParam(r, "folderID")); err != nil {
		writeServiceError(w, "delete folder", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFolderFiles handles GET /api/documents/folders/{folderID}/files.
//
//	@Summary		List one folder's files
//	@Tags			folders
//	@Produce		json
//	@Param			folderID	path		string	true	"Folder identifier"
//	@Success		200			{array}		FileSummary
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/folders/{folderID}/files [get]
func (h *Handler) ListFolderFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.svc.ListFiles(r.Context(), chi.URLParam(r, "folderID"))
	if err != nil {
		writeServiceError(w, "list folder files", err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// GetFile handles GET /api/documents/files/{fileID}.
//
//	@Summary		Get one file's metadata record
//	@Tags			files
//	@Produce		json
//	@Param			fileID	path		string	true	"File identifier"
//	@Success		200		{object}	models.File
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/files/{fileID} [get]
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.GetFile(r.Context(), chi.URLParam(r, "fileID"))
	if err != nil {
		writeServiceError(w, "get file", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// DownloadURL handles GET /api/documents/files/{fileID}/url.
//
//	@Summary		Resolve a file's retrieval locator
//	@Tags			files
//	@Produce		json
//	@Param			fileID	path		string	true	"File identifier"
//	@Success		200		{object}	DownloadURLResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/files/{fileID}/url [get]
func (h *Handler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.DownloadURL(r.Context(), chi.URLParam(r, "fileID"))
	if err != nil {
		writeServiceError(w, "download url", err)
		return
	}
	writeJSON(w, http.StatusOK, DownloadURLResponse{URL: url})
}

// RenameFile handles PATCH /api/documents/files/{fileID}.
//
//	@Summary		Rename a file, preserving its original extension
//	@Tags			files
//	@Accept			json
//	@Produce		json
//	@Param			fileID	path		string			true	"File identifier"
//	@Param			body	body		RenameRequest	true	"New display name"
//	@Success		200		{object}	FileSummary
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/files/{fileID} [patch]
func (h *Handler) RenameFile(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	sum, err := h.svc.RenameFile(r.Context(), chi.URLParam(r, "fileID"), req.Name)
	if err != nil {
		writeServiceError(w, "rename file", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// MoveFile handles POST /api/documents/files/{fileID}/move.
//
//	@Summary		Reassign a file's folder membership
//	@Tags			files
//	@Accept			json
//	@Param			fileID	path	string			true	"File identifier"
//	@Param			body	body	MoveFileRequest	true	"Source and target folders"
//	@Success		204		"File moved"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/files/{fileID}/move [post]
func (h *Handler) MoveFile(w http.ResponseWriter, r *http.Request) {
	var req MoveFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.svc.MoveFile(r.Context(), chi.URLParam(r, "fileID"), req.SourceFolderID, req.TargetFolderID); err != nil {
		writeServiceError(w, "move file", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteFile handles DELETE /api/documents/files/{fileID}.
//
//	@Summary		Delete a file's metadata record and blob
//	@Tags			files
//	@Param			fileID	path	string	true	"File identifier"
//	@Success		204		"File deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/files/{fileID} [delete]
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteFile(r.Context(), chi.URLParam(r, "fileID")); err != nil {
		writeServiceError(w, "delete file", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecentDocuments handles GET /api/documents/recent.
//
//	@Summary		List the newest documents across all folders
//	@Tags			documents
//	@Produce		json
//	@Param			limit	query		int	false	"Max results"
//	@Success		200		{array}		FileSummary
//	@Security		BearerAuth
//	@Router			/documents/recent [get]
func (h *Handler) RecentDocuments(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recent, err := h.svc.ListRecentFiles(r.Context(), limit)
	if err != nil {
		writeServiceError(w, "list recent", err)
		return
	}
	writeJSON(w, http.StatusOK, recent)
}
