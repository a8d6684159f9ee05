package api

import (
	"github.com/starford/arkiv/internal/models"
)

// CreateFolderRequest is the request body for creating a folder.
type CreateFolderRequest struct {
	Name string `json:"name" example:"Policies" validate:"required"`
}

// RenameRequest is the request body for renaming a folder or a file.
type RenameRequest struct {
	Name string `json:"name" example:"Quarterly report" validate:"required"`
}

// MoveFileRequest is the request body for reassigning a file's folder.
// Empty identifiers address the unfiled bucket.
type MoveFileRequest struct {
	SourceFolderID string `json:"source_folder_id"`
	TargetFolderID string `json:"target_folder_id"`
}

// FileSummary is the boundary file representation (aliased from the domain layer).
type FileSummary = models.FileSummary

// FolderSummary is the boundary folder representation (aliased from the domain layer).
type FolderSummary = models.FolderSummary

// UploadFailure reports one file of a batch that could not be ingested.
type UploadFailure struct {
	Name  string `json:"name" example:"report.pdf" validate:"required"`
	Error string `json:"error" example:"storage unavailable" validate:"required"`
}

// UploadResponse is returned by the ingestion endpoints. Files holds the
// summaries of everything stored; Failures carries the per-file breakdown of
// what was rejected, so callers can tell which of N submitted files made it.
type UploadResponse struct {
	Files    []FileSummary   `json:"files" validate:"required"`
	Failures []UploadFailure `json:"failures,omitempty"`
}

// DocumentsResponse aggregates the flat document view of the repository.
type DocumentsResponse struct {
	Documents  []FileSummary          `json:"documents" validate:"required"`
	Recent     []FileSummary          `json:"recent" validate:"required"`
	Categories []models.CategoryCount `json:"categories" validate:"required"`
}

// StatsResponse wraps storage totals and category counts.
type StatsResponse struct {
	Storage    models.StorageStats    `json:"storage" validate:"required"`
	Categories []models.CategoryCount `json:"categories" validate:"required"`
}

// FoldersResponse wraps the folder listing.
type FoldersResponse struct {
	Folders []FolderSummary `json:"folders" validate:"required"`
}

// DownloadURLResponse wraps a file's retrieval locator.
type DownloadURLResponse struct {
	URL string `json:"url" example:"/uploads/3f2a...-report.pdf" validate:"required"`
}
