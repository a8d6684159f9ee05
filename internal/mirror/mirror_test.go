package mirror

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/starford/arkiv/internal/docservice"
	"github.com/starford/arkiv/internal/models"
)

// fakeBackend serves canned folder snapshots and records whether each
// mutation was accepted. It stands in for the authoritative repository.
type fakeBackend struct {
	snapshot []models.FolderSummary
	fail     error
	calls    []string
}

func (b *fakeBackend) record(op string) error {
	b.calls = append(b.calls, op)
	return b.fail
}

func (b *fakeBackend) ListFolders(context.Context) ([]models.FolderSummary, error) {
	out := make([]models.FolderSummary, len(b.snapshot))
	for i, f := range b.snapshot {
		out[i] = f
		out[i].Files = append([]models.FileSummary(nil), f.Files...)
	}
	return out, nil
}

func (b *fakeBackend) CreateFolder(_ context.Context, name string) (*models.FolderSummary, error) {
	if err := b.record("create-folder"); err != nil {
		return nil, err
	}
	f := models.FolderSummary{ID: fmt.Sprintf("d%d", len(b.snapshot)+1), Name: name, Files: []models.FileSummary{}}
	b.snapshot = append(b.snapshot, f)
	return &f, nil
}

func (b *fakeBackend) RenameFolder(_ context.Context, id, name string) (*models.FolderSummary, error) {
	if err := b.record("rename-folder"); err != nil {
		return nil, err
	}
	for i := range b.snapshot {
		if b.snapshot[i].ID == id {
			b.snapshot[i].Name = name
			return &b.snapshot[i], nil
		}
	}
	return nil, errors.New("no such folder")
}

func (b *fakeBackend) DeleteFolder(_ context.Context, id string) error {
	if err := b.record("delete-folder"); err != nil {
		return err
	}
	out := b.snapshot[:0]
	for _, f := range b.snapshot {
		if f.ID != id {
			out = append(out, f)
		}
	}
	b.snapshot = out
	return nil
}

func (b *fakeBackend) Ingest(_ context.Context, folderID string, uploads []docservice.Upload, _ docservice.Descriptor) ([]docservice.IngestResult, error) {
	if err := b.record("ingest"); err != nil {
		return nil, err
	}
	var results []docservice.IngestResult
	for i, u := range uploads {
		sum := models.FileSummary{ID: fmt.Sprintf("f%d", i), Name: u.Name}
		for j := range b.snapshot {
			if b.snapshot[j].ID == folderID {
				b.snapshot[j].Files = append(b.snapshot[j].Files, sum)
			}
		}
		results = append(results, docservice.IngestResult{OriginalName: u.Name, Summary: &sum})
	}
	return results, nil
}

func (b *fakeBackend) RenameFile(_ context.Context, id, newName string) (*models.FileSummary, error) {
	if err := b.record("rename-file"); err != nil {
		return nil, err
	}
	for i := range b.snapshot {
		for j := range b.snapshot[i].Files {
			if b.snapshot[i].Files[j].ID == id {
				b.snapshot[i].Files[j].Name = newName
				return &b.snapshot[i].Files[j], nil
			}
		}
	}
	return nil, errors.New("no such file")
}

func (b *fakeBackend) MoveFile(_ context.Context, id, sourceFolderID, targetFolderID string) error {
	if err := b.record("move-file"); err != nil {
		return err
	}
	var moved *models.FileSummary
	for i := range b.snapshot {
		if b.snapshot[i].ID != sourceFolderID {
			continue
		}
		files := b.snapshot[i].Files[:0]
		for _, f := range b.snapshot[i].Files {
			if f.ID == id {
				fc := f
				moved = &fc
				continue
			}
			files = append(files, f)
		}
		b.snapshot[i].Files = files
	}
	if moved == nil {
		return errors.New("no such file")
	}
	for i := range b.snapshot {
		if b.snapshot[i].ID == targetFolderID {
			b.snapshot[i].Files = append(b.snapshot[i].Files, *moved)
		}
	}
	return nil
}

func (b *fakeBackend) DeleteFile(_ context.Context, id string) error {
	if err := b.record("delete-file"); err != nil {
		return err
	}
	for i := range b.snapshot {
		files := b.snapshot[i].Files[:0]
		for _, f := range b.snapshot[i].Files {
			if f.ID != id {
				files = append(files, f)
			}
		}
		b.snapshot[i].Files = files
	}
	return nil
}

func seededBackend() *fakeBackend {
	return &fakeBackend{snapshot: []models.FolderSummary{
		{ID: "d1", Name: "Policies", Files: []models.FileSummary{
			{ID: "f1", Name: "handbook.pdf"},
		}},
		{ID: "d2", Name: "Contracts", Files: []models.FileSummary{}},
	}}
}

func TestRefreshReplacesSnapshot(t *testing.T) {
	backend := seededBackend()
	m := New(backend)
	ctx := context.Background()

	if err := m.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	folders := m.Folders()
	if len(folders) != 2 || folders[0].Name != "Policies" {
		t.Fatalf("folders = %+v", folders)
	}

	// The server state moved on; refetch wins wholesale.
	backend.snapshot[0].Name = "Renamed Elsewhere"
	if err := m.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if got := m.Folders()[0].Name; got != "Renamed Elsewhere" {
		t.Errorf("name = %q, refetch should replace the snapshot", got)
	}
}

func TestFoldersReturnsCopy(t *testing.T) {
	m := New(seededBackend())
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	folders := m.Folders()
	folders[0].Name = "mutated"
	folders[0].Files[0].Name = "mutated.pdf"

	again := m.Folders()
	if again[0].Name != "Policies" || again[0].Files[0].Name != "handbook.pdf" {
		t.Error("caller mutation leaked into the snapshot")
	}
}

func TestDeleteFileRevertsOnFailure(t *testing.T) {
	backend := seededBackend()
	m := New(backend)
	ctx := context.Background()
	if err := m.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	backend.fail = errors.New("server unavailable")
	err := m.DeleteFile(ctx, "f1")
	if err == nil {
		t.Fatal("expected backend error")
	}

	// The optimistic removal must be undone.
	folders := m.Folders()
	if len(folders[0].Files) != 1 || folders[0].Files[0].ID != "f1" {
		t.Errorf("file not restored after failed delete: %+v", folders[0].Files)
	}
}

func TestDeleteFileReconciles(t *testing.T) {
	backend := seededBackend()
	m := New(backend)
	ctx := context.Background()
	if err := m.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	if err := m.DeleteFile(ctx, "f1"); err != nil {
		t.Fatal(err)
	}
	if files := m.Folders()[0].Files; len(files) != 0 {
		t.Errorf("files = %+v, want empty", files)
	}
}

func TestDeleteFolderClearsSelection(t *testing.T) {
	backend := seededBackend()
	backend.snapshot[0].Files = nil
	m := New(backend)
	ctx := context.Background()
	if err := m.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	m.Select("d1")
	if err := m.DeleteFolder(ctx, "d1"); err != nil {
		t.Fatal(err)
	}
	if got := m.Selected(); got != "" {
		t.Errorf("selection = %q, want cleared", got)
	}
}

func TestDeleteFolderKeepsOtherSelection(t *testing.T) {
	backend := seededBackend()
	backend.snapshot[0].Files = nil
	m := New(backend)
	ctx := context.Background()
	if err := m.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	m.Select("d2")
	if err := m.DeleteFolder(ctx, "d1"); err != nil {
		t.Fatal(err)
	}
	if got := m.Selected(); got != "d2" {
		t.Errorf("selection = %q, want d2", got)
	}
}

func TestRenameFileShowsImmediatelyThenReconciles(t *testing.T) {
	backend := seededBackend()
	m := New(backend)
	ctx := context.Background()
	if err := m.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	if err := m.RenameFile(ctx, "f1", "renamed.pdf"); err != nil {
		t.Fatal(err)
	}
	if got := m.Folders()[0].Files[0].Name; got != "renamed.pdf" {
		t.Errorf("name = %q after rename", got)
	}
}

func TestMoveFileBetweenFolders(t *testing.T) {
	backend := seededBackend()
	m := New(backend)
	ctx := context.Background()
	if err := m.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	if err := m.MoveFile(ctx, "f1", "d1", "d2"); err != nil {
		t.Fatal(err)
	}
	folders := m.Folders()
	if len(folders[0].Files) != 0 {
		t.Errorf("source folder still holds %+v", folders[0].Files)
	}
	if len(folders[1].Files) != 1 || folders[1].Files[0].ID != "f1" {
		t.Errorf("target folder = %+v", folders[1].Files)
	}
}

func TestUploadReconciles(t *testing.T) {
	backend := seededBackend()
	m := New(backend)
	ctx := context.Background()
	if err := m.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	results, err := m.Upload(ctx, "d2", []docservice.Upload{{Name: "new.pdf"}}, docservice.Descriptor{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Err != nil {
		t.Fatalf("results = %+v", results)
	}
	if files := m.Folders()[1].Files; len(files) != 1 || files[0].Name != "new.pdf" {
		t.Errorf("target folder = %+v", files)
	}
}

func TestCreateFolderReconciles(t *testing.T) {
	backend := &fakeBackend{}
	m := New(backend)
	ctx := context.Background()

	if err := m.CreateFolder(ctx, "Fresh"); err != nil {
		t.Fatal(err)
	}
	folders := m.Folders()
	if len(folders) != 1 || folders[0].Name != "Fresh" {
		t.Errorf("folders = %+v", folders)
	}
	// The identifier is server-issued, picked up by the refetch.
	if folders[0].ID == "" {
		t.Error("folder id missing after reconcile")
	}
}
