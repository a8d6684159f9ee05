// Package docservice coordinates blob and metadata operations: it implements
// the ingestion pipeline and the folder/file operation coordinator.
package docservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/arkiv/internal/apperr"
	"github.com/starford/arkiv/internal/blob"
	"github.com/starford/arkiv/internal/metadata"
	"github.com/starford/arkiv/internal/models"
	"github.com/starford/arkiv/internal/sizefmt"
)

// DefaultCategory is assigned when an upload carries no category label.
const DefaultCategory = "General"

// downloadPrefix is the public retrieval path for stored blobs.
const downloadPrefix = "/uploads/"

// Service coordinates blob and metadata operations.
type Service struct {
	store  blob.Store
	db     *metadata.DB
	locks  *keyedLocks
	notify func(kind, id string)
}

// NewService creates a new document service.
func NewService(store blob.Store, db *metadata.DB) *Service {
	return &Service{store: store, db: db, locks: newKeyedLocks()}
}

// OnChange registers a callback invoked after every successful mutation.
// kind is one of "document.created", "document.renamed", "document.moved",
// "document.deleted", "folder.created", "folder.renamed", "folder.deleted".
func (s *Service) OnChange(fn func(kind, id string)) {
	s.notify = fn
}

func (s *Service) emit(kind, id string) {
	if s.notify != nil {
		s.notify(kind, id)
	}
}

// newFileID combines a random component and a capture timestamp so two
// same-named concurrent uploads can never collide.
func newFileID() string {
	return fmt.Sprintf("%s-%d", uuid.New().String(), time.Now().UnixMilli())
}

// summarize converts a metadata record to its boundary representation.
func summarize(f *models.File) models.FileSummary {
	return models.FileSummary{
		ID:       f.ID,
		Name:     f.Name,
		Category: f.Category,
		Size:     sizefmt.Format(f.Size),
		Type:     f.ContentType,
		URL:      downloadPrefix + f.StorageKey,
	}
}

// GetFile returns the full metadata record for one file.
func (s *Service) GetFile(_ context.Context, id string) (*models.File, error) {
	return s.db.GetFile(id)
}

// DownloadURL returns the retrieval locator for a stored file.
func (s *Service) DownloadURL(_ context.Context, id string) (string, error) {
	f, err := s.db.GetFile(id)
	if err != nil {
		return "", err
	}
	return downloadPrefix + f.StorageKey, nil
}

// RenameFile gives a file a new display name. The original extension is
// detected from the stored filename and appended when the caller omitted or
// altered it, then both the blob location and the metadata record move to the
// new name.
func (s *Service) RenameFile(_ context.Context, id, newName string) (*models.FileSummary, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, apperr.ErrInvalidName
	}

	s.locks.lock(id)
	defer s.locks.unlock(id)

	f, err := s.db.GetFile(id)
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(f.StorageKey)
	if !strings.EqualFold(filepath.Ext(newName), ext) {
		newName += ext
	}

	newKey := f.ID + "-" + sanitizeName(newName)
	if newKey != f.StorageKey {
		if err := s.store.Rename(f.StorageKey, newKey); err != nil {
			return nil, err
		}
	}
	if err := s.db.RenameFile(id, newName, newKey); err != nil {
		// Put the blob back so the record still points at real bytes.
		if newKey != f.StorageKey {
			_ = s.store.Rename(newKey, f.StorageKey)
		}
		return nil, err
	}

	f.Name = newName
	f.StorageKey = newKey
	sum := summarize(f)
	s.emit("document.renamed", id)
	return &sum, nil
}

// MoveFile reassigns a file's folder membership. Moving a file onto the
// folder it is already in is a no-op, not an error.
func (s *Service) MoveFile(_ context.Context, id, sourceFolderID, targetFolderID string) error {
	if sourceFolderID == targetFolderID {
		if _, err := s.db.GetFile(id); err != nil {
			return err
		}
		return nil
	}
	if targetFolderID != models.UnfiledFolderID {
		if _, err := s.db.GetFolder(targetFolderID); err != nil {
			return err
		}
	}
	if err := s.db.MoveFile(id, sourceFolderID, targetFolderID); err != nil {
		return err
	}
	s.emit("document.moved", id)
	return nil
}

// DeleteFile removes a file's metadata record and blob. The record goes
// first so no reader can observe it without its bytes; a second delete of
// the same identifier returns ErrNotFound.
func (s *Service) DeleteFile(_ context.Context, id string) error {
	s.locks.lock(id)
	defer s.locks.unlock(id)

	f, err := s.db.GetFile(id)
	if err != nil {
		return err
	}
	if err := s.db.DeleteFile(id); err != nil {
		return err
	}
	if err := s.store.Delete(f.StorageKey); err != nil && !errors.Is(err, os.ErrNotExist) {
		// The record is gone, so the blob is unreachable either way; the
		// startup sync sweeps it if this removal failed.
		return err
	}
	s.emit("document.deleted", id)
	return nil
}

// CreateFolder creates a folder with a non-empty trimmed name.
func (s *Service) CreateFolder(_ context.Context, name string) (*models.FolderSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.ErrInvalidName
	}
	f := models.Folder{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.CreateFolder(f); err != nil {
		return nil, err
	}
	s.emit("folder.created", f.ID)
	return &models.FolderSummary{ID: f.ID, Name: f.Name, Files: []models.FileSummary{}}, nil
}

// RenameFolder applies the same name validation as creation.
func (s *Service) RenameFolder(_ context.Context, id, name string) (*models.FolderSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.ErrInvalidName
	}
	if err := s.db.RenameFolder(id, name); err != nil {
		return nil, err
	}
	files, err := s.folderFiles(id)
	if err != nil {
		return nil, err
	}
	s.emit("folder.renamed", id)
	return &models.FolderSummary{ID: id, Name: name, Files: files}, nil
}

// DeleteFolder removes an empty folder. Folders that still own files are
// rejected with ErrFolderNotEmpty; move or delete the files first.
func (s *Service) DeleteFolder(_ context.Context, id string) error {
	if _, err := s.db.GetFolder(id); err != nil {
		return err
	}
	n, err := s.db.CountFilesInFolder(id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.ErrFolderNotEmpty
	}
	if err := s.db.DeleteFolder(id); err != nil {
		return err
	}
	s.emit("folder.deleted", id)
	return nil
}

// ListFolders returns every folder with the summaries of its files.
func (s *Service) ListFolders(_ context.Context) ([]models.FolderSummary, error) {
	folders, err := s.db.ListFolders()
	if err != nil {
		return nil, err
	}
	out := make([]models.FolderSummary, 0, len(folders))
	for _, f := range folders {
		files, err := s.folderFiles(f.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.FolderSummary{ID: f.ID, Name: f.Name, Files: files})
	}
	return out, nil
}

// ListFiles returns summaries for a folder's files, or the unfiled bucket
// when folderID is empty.
func (s *Service) ListFiles(_ context.Context, folderID string) ([]models.FileSummary, error) {
	if folderID != models.UnfiledFolderID {
		if _, err := s.db.GetFolder(folderID); err != nil {
			return nil, err
		}
	}
	return s.folderFiles(folderID)
}

// ListAllFiles returns summaries for every file in the store.
func (s *Service) ListAllFiles(_ context.Context) ([]models.FileSummary, error) {
	files, err := s.db.ListAllFiles()
	if err != nil {
		return nil, err
	}
	return summarizeAll(files), nil
}

// ListRecentFiles returns the newest limit files across all folders.
func (s *Service) ListRecentFiles(_ context.Context, limit int) ([]models.FileSummary, error) {
	files, err := s.db.ListRecentFiles(limit)
	if err != nil {
		return nil, err
	}
	return summarizeAll(files), nil
}

// Stats returns aggregate storage totals and per-category document counts.
func (s *Service) Stats(_ context.Context) (models.StorageStats, []models.CategoryCount, error) {
	stats, err := s.db.Stats()
	if err != nil {
		return stats, nil, err
	}
	cats, err := s.db.CategoryCounts()
	if err != nil {
		return stats, nil, err
	}
	return stats, cats, nil
}

func (s *Service) folderFiles(folderID string) ([]models.FileSummary, error) {
	files, err := s.db.ListFiles(folderID)
	if err != nil {
		return nil, err
	}
	return summarizeAll(files), nil
}

func summarizeAll(files []models.File) []models.FileSummary {
	out := make([]models.FileSummary, 0, len(files))
	for i := range files {
		out = append(out, summarize(&files[i]))
	}
	return out
}
