package docservice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/starford/arkiv/internal/apperr"
	"github.com/starford/arkiv/internal/blob"
	"github.com/starford/arkiv/internal/models"
	"github.com/starford/arkiv/internal/testutil"
)

func newTestService(t *testing.T) (*Service, blob.Store) {
	t.Helper()
	db := testutil.TestDB(t)
	_, store := testutil.TestStore(t)
	return NewService(store, db), store
}

func ingestOne(t *testing.T, svc *Service, folderID, name, contentType, content string) models.FileSummary {
	t.Helper()
	results, err := svc.Ingest(context.Background(), folderID, []Upload{
		{Name: name, ContentType: contentType, Content: strings.NewReader(content)},
	}, Descriptor{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Err != nil {
		t.Fatalf("ingest results: %+v", results)
	}
	return *results[0].Summary
}

func TestRenamePreservesExtension(t *testing.T) {
	svc, store := newTestService(t)
	sum := ingestOne(t, svc, "", "report.pdf", "application/pdf", "bytes")

	renamed, err := svc.RenameFile(context.Background(), sum.ID, "Quarterly")
	if err != nil {
		t.Fatal(err)
	}
	if renamed.Name != "Quarterly.pdf" {
		t.Errorf("name = %q, want Quarterly.pdf", renamed.Name)
	}

	f, err := svc.GetFile(context.Background(), sum.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(f.StorageKey, "-Quarterly.pdf") {
		t.Errorf("storage key = %q", f.StorageKey)
	}
	if _, err := store.Read(f.StorageKey); err != nil {
		t.Errorf("blob not reachable under new key: %v", err)
	}
}

func TestRenameKeepsExplicitExtension(t *testing.T) {
	svc, _ := newTestService(t)
	sum := ingestOne(t, svc, "", "report.pdf", "application/pdf", "bytes")

	renamed, err := svc.RenameFile(context.Background(), sum.ID, "q2-final.PDF")
	if err != nil {
		t.Fatal(err)
	}
	if renamed.Name != "q2-final.PDF" {
		t.Errorf("name = %q, extension should not be doubled", renamed.Name)
	}
}

func TestRenameRejectsBlankName(t *testing.T) {
	svc, _ := newTestService(t)
	sum := ingestOne(t, svc, "", "report.pdf", "application/pdf", "bytes")

	if _, err := svc.RenameFile(context.Background(), sum.ID, "   "); !errors.Is(err, apperr.ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
}

func TestDeleteFileTwiceNotFound(t *testing.T) {
	svc, store := newTestService(t)
	sum := ingestOne(t, svc, "", "report.pdf", "application/pdf", "bytes")

	f, err := svc.GetFile(context.Background(), sum.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteFile(context.Background(), sum.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Read(f.StorageKey); err == nil {
		t.Error("blob should be gone after delete")
	}
	// A repeat of an acknowledged delete surfaces as not found.
	if err := svc.DeleteFile(context.Background(), sum.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestMoveFile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	folder, err := svc.CreateFolder(ctx, "Policies")
	if err != nil {
		t.Fatal(err)
	}
	sum := ingestOne(t, svc, "", "report.pdf", "application/pdf", "bytes")

	if err := svc.MoveFile(ctx, sum.ID, models.UnfiledFolderID, folder.ID); err != nil {
		t.Fatal(err)
	}
	files, err := svc.ListFiles(ctx, folder.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].ID != sum.ID {
		t.Errorf("folder files = %+v", files)
	}

	// Moving onto the current folder is a no-op.
	if err := svc.MoveFile(ctx, sum.ID, folder.ID, folder.ID); err != nil {
		t.Errorf("same-folder move should succeed: %v", err)
	}

	// Unknown file and unknown target both fail up front.
	if err := svc.MoveFile(ctx, "absent", "", folder.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown file: expected ErrNotFound, got %v", err)
	}
	if err := svc.MoveFile(ctx, sum.ID, folder.ID, "absent"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown target: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteFolderRejectsNonEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	folder, err := svc.CreateFolder(ctx, "Policies")
	if err != nil {
		t.Fatal(err)
	}
	sum := ingestOne(t, svc, folder.ID, "report.pdf", "application/pdf", "bytes")

	if err := svc.DeleteFolder(ctx, folder.ID); !errors.Is(err, apperr.ErrFolderNotEmpty) {
		t.Fatalf("expected ErrFolderNotEmpty, got %v", err)
	}

	// Empty it out, then deletion goes through and the file is untouched
	// when it was moved rather than deleted.
	if err := svc.MoveFile(ctx, sum.ID, folder.ID, models.UnfiledFolderID); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteFolder(ctx, folder.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetFile(ctx, sum.ID); err != nil {
		t.Errorf("file should survive its former folder: %v", err)
	}
}

func TestFolderNameValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateFolder(ctx, "  "); !errors.Is(err, apperr.ErrInvalidName) {
		t.Errorf("blank create: expected ErrInvalidName, got %v", err)
	}

	folder, err := svc.CreateFolder(ctx, "  Policies  ")
	if err != nil {
		t.Fatal(err)
	}
	if folder.Name != "Policies" {
		t.Errorf("name = %q, want trimmed", folder.Name)
	}

	if _, err := svc.RenameFolder(ctx, folder.ID, ""); !errors.Is(err, apperr.ErrInvalidName) {
		t.Errorf("blank rename: expected ErrInvalidName, got %v", err)
	}
}

func TestDuplicateFolderNamesAllowed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.CreateFolder(ctx, "Policies")
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.CreateFolder(ctx, "Policies")
	if err != nil {
		t.Fatalf("second folder with same name should be allowed: %v", err)
	}
	if a.ID == b.ID {
		t.Error("folders must get distinct identifiers")
	}
}

func TestChangeNotifications(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var kinds []string
	svc.OnChange(func(kind, id string) {
		kinds = append(kinds, kind)
	})

	folder, err := svc.CreateFolder(ctx, "Policies")
	if err != nil {
		t.Fatal(err)
	}
	sum := ingestOne(t, svc, folder.ID, "report.pdf", "application/pdf", "bytes")
	if _, err := svc.RenameFile(ctx, sum.ID, "renamed"); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteFile(ctx, sum.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteFolder(ctx, folder.ID); err != nil {
		t.Fatal(err)
	}

	want := []string{"folder.created", "document.created", "document.renamed", "document.deleted", "folder.deleted"}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d] = %q, want %q", i, kinds[i], want[i])
		}
	}
}

func TestDownloadURL(t *testing.T) {
	svc, _ := newTestService(t)
	sum := ingestOne(t, svc, "", "report.pdf", "application/pdf", "bytes")

	url, err := svc.DownloadURL(context.Background(), sum.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(url, "/uploads/") || !strings.HasSuffix(url, "-report.pdf") {
		t.Errorf("url = %q", url)
	}
	if url != sum.URL {
		t.Errorf("summary URL %q != locator %q", sum.URL, url)
	}
}

func TestStats(t *testing.T) {
	svc, _ := newTestService(t)
	ingestOne(t, svc, "", "a.pdf", "application/pdf", "12345")
	ingestOne(t, svc, "", "b.png", "image/png", "123")

	stats, cats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FileCount != 2 || stats.TotalBytes != 8 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.PDFBytes != 5 || stats.OtherBytes != 3 {
		t.Errorf("buckets = %+v", stats)
	}
	if len(cats) != 1 || cats[0].Name != DefaultCategory || cats[0].Count != 2 {
		t.Errorf("categories = %+v", cats)
	}
}
