package docservice

import (
	"context"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/starford/arkiv/internal/checksum"
	"github.com/starford/arkiv/internal/models"
)

// Upload is one incoming file stream.
type Upload struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// Descriptor carries the optional side-channel fields submitted alongside a
// batch. DisplayName and Category fall back per file when empty.
type Descriptor struct {
	DisplayName string
	Category    string
	Description string
}

// IngestResult reports the outcome for one submitted file. Exactly one of
// Summary and Err is set.
type IngestResult struct {
	OriginalName string
	Summary      *models.FileSummary
	Err          error
}

var unsafeNameRe = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// sanitizeName strips characters outside the safe storage-key alphabet.
func sanitizeName(name string) string {
	return unsafeNameRe.ReplaceAllString(name, "_")
}

// Ingest stores a batch of uploads and associates them with targetFolderID
// (or the unfiled bucket when it is empty).
//
// Each file is processed independently: a failed blob or metadata write marks
// that file failed in the returned results and the pipeline moves on, so the
// caller can tell which of N submitted files made it. A blob whose sidecar
// record could not be written is rolled back to keep the stores consistent.
// Ingest itself only errors when the target folder does not resolve, before
// any side effect.
func (s *Service) Ingest(_ context.Context, targetFolderID string, uploads []Upload, desc Descriptor) ([]IngestResult, error) {
	if targetFolderID != models.UnfiledFolderID {
		if _, err := s.db.GetFolder(targetFolderID); err != nil {
			return nil, err
		}
	}

	results := make([]IngestResult, 0, len(uploads))
	for _, u := range uploads {
		res := IngestResult{OriginalName: u.Name}

		id := newFileID()
		key := id + "-" + sanitizeName(u.Name)

		sum := checksum.NewWriter()
		size, err := s.store.Write(key, io.TeeReader(u.Content, sum))
		if err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}

		f := models.File{
			ID:          id,
			Name:        firstNonEmpty(desc.DisplayName, u.Name),
			Category:    firstNonEmpty(desc.Category, DefaultCategory),
			Description: desc.Description,
			ContentType: u.ContentType,
			Size:        size,
			Checksum:    sum.Sum(),
			StorageKey:  key,
			FolderID:    targetFolderID,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.db.CreateFile(f); err != nil {
			// No record may point at nothing and no blob may exist without a
			// record: roll the blob back.
			_ = s.store.Delete(key)
			res.Err = err
			results = append(results, res)
			continue
		}

		summary := summarize(&f)
		res.Summary = &summary
		results = append(results, res)
		s.emit("document.created", id)
	}
	return results, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
