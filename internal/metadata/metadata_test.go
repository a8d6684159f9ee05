package metadata_test

import (
	"errors"
	"testing"
	"time"

	"github.com/starford/arkiv/internal/apperr"
	"github.com/starford/arkiv/internal/models"
	"github.com/starford/arkiv/internal/testutil"
)

func testFile(id, key string) models.File {
	return models.File{
		ID:          id,
		Name:        "report.pdf",
		Category:    "General",
		ContentType: "application/pdf",
		Size:        1024,
		Checksum:    "abc123",
		StorageKey:  key,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestCreateGetFile(t *testing.T) {
	db := testutil.TestDB(t)

	f := testFile("f1", "f1-report.pdf")
	f.Description = "quarterly numbers"
	if err := db.CreateFile(f); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetFile("f1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "report.pdf" || got.Category != "General" || got.Size != 1024 {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.Description != "quarterly numbers" {
		t.Errorf("description = %q", got.Description)
	}
	if got.FolderID != models.UnfiledFolderID {
		t.Errorf("new file should be unfiled, got folder %q", got.FolderID)
	}
}

func TestCreateFileIdempotent(t *testing.T) {
	db := testutil.TestDB(t)

	f := testFile("f1", "f1-report.pdf")
	if err := db.CreateFile(f); err != nil {
		t.Fatal(err)
	}
	// Retrying the same insert is a no-op, not a constraint error.
	f.Name = "changed.pdf"
	if err := db.CreateFile(f); err != nil {
		t.Fatalf("retried insert should not fail: %v", err)
	}
	got, err := db.GetFile("f1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "report.pdf" {
		t.Errorf("retry overwrote record: name = %q", got.Name)
	}
}

func TestGetFileNotFound(t *testing.T) {
	db := testutil.TestDB(t)
	_, err := db.GetFile("absent")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetFileByStorageKey(t *testing.T) {
	db := testutil.TestDB(t)
	if err := db.CreateFile(testFile("f1", "f1-report.pdf")); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetFileByStorageKey("f1-report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "f1" {
		t.Errorf("id = %q, want f1", got.ID)
	}
}

func TestMoveFile(t *testing.T) {
	db := testutil.TestDB(t)

	folder := models.Folder{ID: "d1", Name: "Policies", CreatedAt: time.Now().UTC()}
	if err := db.CreateFolder(folder); err != nil {
		t.Fatal(err)
	}
	if err := db.CreateFile(testFile("f1", "f1-report.pdf")); err != nil {
		t.Fatal(err)
	}

	// Unfiled -> folder.
	if err := db.MoveFile("f1", models.UnfiledFolderID, "d1"); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetFile("f1")
	if err != nil {
		t.Fatal(err)
	}
	if got.FolderID != "d1" {
		t.Errorf("folder = %q, want d1", got.FolderID)
	}

	// A move keyed on a stale source folder matches no row.
	err = db.MoveFile("f1", models.UnfiledFolderID, "d1")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("stale move should report ErrNotFound, got %v", err)
	}

	// Folder -> unfiled.
	if err := db.MoveFile("f1", "d1", models.UnfiledFolderID); err != nil {
		t.Fatal(err)
	}
	got, err = db.GetFile("f1")
	if err != nil {
		t.Fatal(err)
	}
	if got.FolderID != models.UnfiledFolderID {
		t.Errorf("folder = %q, want unfiled", got.FolderID)
	}
}

func TestDeleteFile(t *testing.T) {
	db := testutil.TestDB(t)
	if err := db.CreateFile(testFile("f1", "f1-report.pdf")); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteFile("f1"); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteFile("f1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete should report ErrNotFound, got %v", err)
	}
}

func TestListFilesByFolder(t *testing.T) {
	db := testutil.TestDB(t)

	if err := db.CreateFolder(models.Folder{ID: "d1", Name: "Policies", CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatal(err)
	}

	unfiled := testFile("f1", "f1-a.pdf")
	filed := testFile("f2", "f2-b.pdf")
	filed.FolderID = "d1"
	for _, f := range []models.File{unfiled, filed} {
		if err := db.CreateFile(f); err != nil {
			t.Fatal(err)
		}
	}

	inFolder, err := db.ListFiles("d1")
	if err != nil {
		t.Fatal(err)
	}
	if len(inFolder) != 1 || inFolder[0].ID != "f2" {
		t.Errorf("folder listing = %+v, want [f2]", inFolder)
	}

	loose, err := db.ListFiles(models.UnfiledFolderID)
	if err != nil {
		t.Fatal(err)
	}
	if len(loose) != 1 || loose[0].ID != "f1" {
		t.Errorf("unfiled listing = %+v, want [f1]", loose)
	}

	n, err := db.CountFilesInFolder("d1")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestListRecentFiles(t *testing.T) {
	db := testutil.TestDB(t)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		f := testFile("f"+string(rune('a'+i)), "key-"+string(rune('a'+i)))
		f.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := db.CreateFile(f); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := db.ListRecentFiles(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 5 {
		t.Fatalf("default limit should return 5 files, got %d", len(recent))
	}
	if recent[0].ID != "fg" {
		t.Errorf("newest first: got %q", recent[0].ID)
	}

	two, err := db.ListRecentFiles(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(two) != 2 {
		t.Errorf("limit 2 returned %d files", len(two))
	}
}

func TestFolderLifecycle(t *testing.T) {
	db := testutil.TestDB(t)

	now := time.Now().UTC()
	if err := db.CreateFolder(models.Folder{ID: "d1", Name: "Policies", CreatedAt: now}); err != nil {
		t.Fatal(err)
	}
	if err := db.CreateFolder(models.Folder{ID: "d2", Name: "Policies", CreatedAt: now.Add(time.Second)}); err != nil {
		t.Fatalf("duplicate folder names should be allowed: %v", err)
	}

	folders, err := db.ListFolders()
	if err != nil {
		t.Fatal(err)
	}
	if len(folders) != 2 || folders[0].ID != "d1" {
		t.Errorf("folders = %+v, want d1 first", folders)
	}

	if err := db.RenameFolder("d1", "Contracts"); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetFolder("d1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Contracts" {
		t.Errorf("name = %q, want Contracts", got.Name)
	}

	if err := db.DeleteFolder("d1"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.GetFolder("d1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := db.RenameFolder("d1", "x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("rename of missing folder should report ErrNotFound, got %v", err)
	}
}

func TestStatsBuckets(t *testing.T) {
	db := testutil.TestDB(t)

	add := func(id, contentType string, size int64) {
		t.Helper()
		f := testFile(id, id+"-key")
		f.ContentType = contentType
		f.Size = size
		if err := db.CreateFile(f); err != nil {
			t.Fatal(err)
		}
	}
	add("p", "application/pdf", 100)
	add("w", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", 200)
	add("x", "text/csv", 300)
	add("o", "image/png", 400)

	s, err := db.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if s.FileCount != 4 || s.TotalBytes != 1000 {
		t.Errorf("count=%d total=%d, want 4/1000", s.FileCount, s.TotalBytes)
	}
	if s.PDFBytes != 100 || s.DocBytes != 200 || s.SheetBytes != 300 || s.OtherBytes != 400 {
		t.Errorf("buckets = %+v", s)
	}
}

func TestCategoryCounts(t *testing.T) {
	db := testutil.TestDB(t)

	add := func(id, category string) {
		t.Helper()
		f := testFile(id, id+"-key")
		f.Category = category
		if err := db.CreateFile(f); err != nil {
			t.Fatal(err)
		}
	}
	add("a", "General")
	add("b", "General")
	add("c", "Legal")

	counts, err := db.CategoryCounts()
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 2 {
		t.Fatalf("counts = %+v", counts)
	}
	if counts[0].Name != "General" || counts[0].Count != 2 {
		t.Errorf("top category = %+v, want General/2", counts[0])
	}
}

func TestAllStorageKeys(t *testing.T) {
	db := testutil.TestDB(t)
	if err := db.CreateFile(testFile("f1", "f1-a.pdf")); err != nil {
		t.Fatal(err)
	}
	keys, err := db.AllStorageKeys()
	if err != nil {
		t.Fatal(err)
	}
	if keys["f1-a.pdf"] != "f1" {
		t.Errorf("keys = %v", keys)
	}
}
