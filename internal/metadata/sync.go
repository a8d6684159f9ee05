package metadata

import (
	"errors"
	"log/slog"

	"github.com/starford/arkiv/internal/apperr"
	"github.com/starford/arkiv/internal/blob"
)

// Sync brings the metadata store and the blob store back in line after a
// restart:
//   - records whose blob is gone are deleted (no record without bytes)
//   - blobs with no record are removed (no bytes without a record)
//
// Both directions preserve the delete-atomicity invariant when a crash
// interrupted an ingestion or deletion mid-way.
func Sync(db *DB, store blob.Store, logger *slog.Logger) error {
	keys, err := store.List()
	if err != nil {
		return err
	}

	known, err := db.AllStorageKeys()
	if err != nil {
		return err
	}

	onDisk := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		onDisk[key] = struct{}{}
		if _, ok := known[key]; ok {
			continue
		}
		if err := store.Delete(key); err != nil {
			logger.Warn("sync: orphan blob delete failed", slog.String("key", key), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed orphan blob", slog.String("key", key))
		}
	}

	// Remove stale records.
	for key, id := range known {
		if _, ok := onDisk[key]; ok {
			continue
		}
		if err := db.DeleteFile(id); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			logger.Warn("sync: stale record delete failed", slog.String("id", id), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed stale record", slog.String("id", id), slog.String("key", key))
		}
	}

	return nil
}
