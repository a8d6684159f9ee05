package metadata

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/arkiv/internal/apperr"
	"github.com/starford/arkiv/internal/blob"
)

// EventCallback is called after a watcher-driven metadata change.
// kind is "deleted"; id is the affected file identifier.
type EventCallback func(kind string, id string)

// Watch starts an fsnotify watcher on the upload root and reacts to
// out-of-band changes until ctx is cancelled. A blob removed behind the
// service's back takes its metadata record with it, so readers never see a
// record without bytes.
//
// Create events are deliberately ignored: the blob store's own temp-write and
// rename sequence fires them mid-ingestion, before the sidecar record exists.
// Foreign files dropped into the root are swept by the next startup Sync.
func Watch(ctx context.Context, db *DB, store blob.Store, uploadRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(uploadRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", uploadRoot))

	// Rename bursts are debounced into one reconciliation pass.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcileMissing(db, store, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			key := filepath.Base(ev.Name)
			if strings.HasPrefix(key, ".arkiv-tmp-") {
				continue
			}

			switch {
			case ev.Op&fsnotify.Remove != 0:
				rec, getErr := db.GetFileByStorageKey(key)
				if getErr != nil {
					continue
				}
				if delErr := db.DeleteFile(rec.ID); delErr != nil && !errors.Is(delErr, apperr.ErrNotFound) {
					logger.Warn("watcher: record delete failed", slog.String("id", rec.ID), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: removed record for deleted blob", slog.String("id", rec.ID), slog.String("key", key))
				if cb != nil {
					cb("deleted", rec.ID)
				}

			case ev.Op&fsnotify.Rename != 0:
				// The service's own renames update metadata first; anything
				// else leaves a record pointing at a missing blob.
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcileMissing drops records whose blob no longer exists on disk.
func reconcileMissing(db *DB, store blob.Store, logger *slog.Logger, cb EventCallback) {
	keys, err := store.List()
	if err != nil {
		logger.Warn("watcher: reconcile list failed", slog.String("error", err.Error()))
		return
	}
	onDisk := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		onDisk[key] = struct{}{}
	}

	known, err := db.AllStorageKeys()
	if err != nil {
		logger.Warn("watcher: reconcile failed", slog.String("error", err.Error()))
		return
	}
	for key, id := range known {
		if _, ok := onDisk[key]; ok {
			continue
		}
		if delErr := db.DeleteFile(id); delErr != nil && !errors.Is(delErr, apperr.ErrNotFound) {
			logger.Warn("watcher: reconcile delete failed", slog.String("id", id), slog.String("error", delErr.Error()))
			continue
		}
		logger.Debug("watcher: removed stale record", slog.String("id", id), slog.String("key", key))
		if cb != nil {
			cb("deleted", id)
		}
	}
}
