// Package models defines the domain types for Arkiv.
package models

import "time"

// UnfiledFolderID marks a file that belongs to no folder.
const UnfiledFolderID = ""

// File is the sidecar metadata record for one stored document.
// The raw bytes live in the blob store under StorageKey; the record and the
// blob are kept physically separate.
type File struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	ContentType string    `json:"type"`
	Size        int64     `json:"size"`
	Checksum    string    `json:"checksum"`
	StorageKey  string    `json:"-"`
	FolderID    string    `json:"folder_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Folder groups files under a user-chosen name.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// FileSummary is the boundary representation of a file: identifier, display
// name, category, human-readable size, content type, and retrieval locator.
type FileSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Size     string `json:"size"`
	Type     string `json:"type"`
	URL      string `json:"url"`
}

// FolderSummary is a folder with the summaries of its files.
type FolderSummary struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Files []FileSummary `json:"files"`
}

// CategoryCount is the number of documents carrying one category label.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// StorageStats aggregates byte totals across the store by coarse type bucket.
type StorageStats struct {
	TotalBytes int64 `json:"total_bytes"`
	PDFBytes   int64 `json:"pdf_bytes"`
	DocBytes   int64 `json:"doc_bytes"`
	SheetBytes int64 `json:"sheet_bytes"`
	OtherBytes int64 `json:"other_bytes"`
	FileCount  int   `json:"file_count"`
}
