// Package mirror is the presentation layer's local view of the repository:
// an optimistic cache that applies each mutation's expected effect
// immediately, then reconciles against authoritative server state.
package mirror

import (
	"context"
	"sync"

	"github.com/starford/arkiv/internal/docservice"
	"github.com/starford/arkiv/internal/models"
)

// Backend is the narrow repository boundary the mirror talks through.
// *docservice.Service satisfies it; so would an HTTP client.
type Backend interface {
	ListFolders(ctx context.Context) ([]models.FolderSummary, error)
	CreateFolder(ctx context.Context, name string) (*models.FolderSummary, error)
	RenameFolder(ctx context.Context, id, name string) (*models.FolderSummary, error)
	DeleteFolder(ctx context.Context, id string) error
	Ingest(ctx context.Context, folderID string, uploads []docservice.Upload, desc docservice.Descriptor) ([]docservice.IngestResult, error)
	RenameFile(ctx context.Context, id, newName string) (*models.FileSummary, error)
	MoveFile(ctx context.Context, id, sourceFolderID, targetFolderID string) error
	DeleteFile(ctx context.Context, id string) error
}

// Mirror holds a snapshot of folder summaries plus the currently selected
// folder. Mutations apply an optimistic delta for responsiveness, then
// replace the whole snapshot with a refetch; the refetch result always wins,
// fields are never merged. A failed mutation reverts its optimistic guess.
type Mirror struct {
	backend Backend

	mu       sync.Mutex
	folders  []models.FolderSummary
	selected string
}

// New creates a mirror over the given backend. Call Refresh to populate it.
func New(backend Backend) *Mirror {
	return &Mirror{backend: backend}
}

// Refresh replaces the snapshot with authoritative state.
func (m *Mirror) Refresh(ctx context.Context) error {
	folders, err := m.backend.ListFolders(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.folders = folders
	m.clearDanglingSelectionLocked()
	m.mu.Unlock()
	return nil
}

// Folders returns a copy of the current snapshot.
func (m *Mirror) Folders() []models.FolderSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneFolders(m.folders)
}

// Select records the folder the presentation layer currently has open.
func (m *Mirror) Select(folderID string) {
	m.mu.Lock()
	m.selected = folderID
	m.mu.Unlock()
}

// Selected returns the currently selected folder id, or empty when none.
func (m *Mirror) Selected() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}

// mutate runs one optimistic mutation: apply the local delta, invoke the
// backend, revert the delta if the backend failed, otherwise refetch.
func (m *Mirror) mutate(ctx context.Context, optimistic func([]models.FolderSummary) []models.FolderSummary, op func(context.Context) error) error {
	m.mu.Lock()
	prev := cloneFolders(m.folders)
	if optimistic != nil {
		m.folders = optimistic(m.folders)
		m.clearDanglingSelectionLocked()
	}
	m.mu.Unlock()

	if err := op(ctx); err != nil {
		m.mu.Lock()
		m.folders = prev
		m.mu.Unlock()
		return err
	}
	return m.Refresh(ctx)
}

// CreateFolder creates a folder and reconciles. There is no optimistic guess
// for creation: the server issues the identifier.
func (m *Mirror) CreateFolder(ctx context.Context, name string) error {
	return m.mutate(ctx, nil, func(ctx context.Context) error {
		_, err := m.backend.CreateFolder(ctx, name)
		return err
	})
}

// RenameFolder renames a folder, showing the new name immediately.
func (m *Mirror) RenameFolder(ctx context.Context, id, name string) error {
	return m.mutate(ctx, func(folders []models.FolderSummary) []models.FolderSummary {
		for i := range folders {
			if folders[i].ID == id {
				folders[i].Name = name
			}
		}
		return folders
	}, func(ctx context.Context) error {
		_, err := m.backend.RenameFolder(ctx, id, name)
		return err
	})
}

// DeleteFolder removes the folder locally right away. When the deleted
// folder was the selected one, the selection is cleared.
func (m *Mirror) DeleteFolder(ctx context.Context, id string) error {
	return m.mutate(ctx, func(folders []models.FolderSummary) []models.FolderSummary {
		out := folders[:0]
		for _, f := range folders {
			if f.ID != id {
				out = append(out, f)
			}
		}
		return out
	}, func(ctx context.Context) error {
		return m.backend.DeleteFolder(ctx, id)
	})
}

// Upload ingests files into a folder and reconciles. Identifiers are
// server-issued, so there is no optimistic guess; the per-file results are
// returned so the caller can report partial failures.
func (m *Mirror) Upload(ctx context.Context, folderID string, uploads []docservice.Upload, desc docservice.Descriptor) ([]docservice.IngestResult, error) {
	results, err := m.backend.Ingest(ctx, folderID, uploads, desc)
	if err != nil {
		return nil, err
	}
	if err := m.Refresh(ctx); err != nil {
		return results, err
	}
	return results, nil
}

// RenameFile shows the new display name immediately.
func (m *Mirror) RenameFile(ctx context.Context, id, newName string) error {
	return m.mutate(ctx, func(folders []models.FolderSummary) []models.FolderSummary {
		for i := range folders {
			for j := range folders[i].Files {
				if folders[i].Files[j].ID == id {
					folders[i].Files[j].Name = newName
				}
			}
		}
		return folders
	}, func(ctx context.Context) error {
		_, err := m.backend.RenameFile(ctx, id, newName)
		return err
	})
}

// MoveFile relocates the file between folder entries immediately.
func (m *Mirror) MoveFile(ctx context.Context, id, sourceFolderID, targetFolderID string) error {
	return m.mutate(ctx, func(folders []models.FolderSummary) []models.FolderSummary {
		var moved *models.FileSummary
		for i := range folders {
			if folders[i].ID != sourceFolderID {
				continue
			}
			files := folders[i].Files[:0]
			for _, f := range folders[i].Files {
				if f.ID == id {
					fc := f
					moved = &fc
					continue
				}
				files = append(files, f)
			}
			folders[i].Files = files
		}
		if moved != nil {
			for i := range folders {
				if folders[i].ID == targetFolderID {
					folders[i].Files = append(folders[i].Files, *moved)
				}
			}
		}
		return folders
	}, func(ctx context.Context) error {
		return m.backend.MoveFile(ctx, id, sourceFolderID, targetFolderID)
	})
}

// DeleteFile removes the file from the local view right away.
func (m *Mirror) DeleteFile(ctx context.Context, id string) error {
	return m.mutate(ctx, func(folders []models.FolderSummary) []models.FolderSummary {
		for i := range folders {
			files := folders[i].Files[:0]
			for _, f := range folders[i].Files {
				if f.ID != id {
					files = append(files, f)
				}
			}
			folders[i].Files = files
		}
		return folders
	}, func(ctx context.Context) error {
		return m.backend.DeleteFile(ctx, id)
	})
}

// clearDanglingSelectionLocked drops the selection when the selected folder
// no longer exists in the snapshot. Caller holds m.mu.
func (m *Mirror) clearDanglingSelectionLocked() {
	if m.selected == "" {
		return
	}
	for _, f := range m.folders {
		if f.ID == m.selected {
			return
		}
	}
	m.selected = ""
}

func cloneFolders(folders []models.FolderSummary) []models.FolderSummary {
	out := make([]models.FolderSummary, len(folders))
	for i, f := range folders {
		out[i] = f
		out[i].Files = append([]models.FileSummary(nil), f.Files...)
	}
	return out
}
