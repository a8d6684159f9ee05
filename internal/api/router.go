package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/arkiv/internal/docservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *docservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Flat document views.
	r.Get("/documents", h.ListDocuments)
	r.Get("/documents/recent", h.RecentDocuments)
	r.Get("/documents/stats", h.Stats)

	// Ingestion.
	r.Post("/documents/upload", h.Upload)
	r.Post("/documents/folders/{folderID}/upload", h.Upload)

	// Folders.
	r.Get("/documents/folders", h.ListFolders)
	r.Post("/documents/folders", h.CreateFolder)
	r.Patch("/documents/folders/{folderID}", h.RenameFolder)
	r.Delete("/documents/folders/{folderID}", h.DeleteFolder)
	r.Get("/documents/folders/{folderID}/files", h.ListFolderFiles)

	// Files.
	r.Get("/documents/files/{fileID}", h.GetFile)
	r.Get("/documents/files/{fileID}/url", h.DownloadURL)
	r.Patch("/documents/files/{fileID}", h.RenameFile)
	r.Post("/documents/files/{fileID}/move", h.MoveFile)
	r.Delete("/documents/files/{fileID}", h.DeleteFile)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
