// Package watcher keeps the page table in sync with external edits to the
// page directory (fs storage driver only).
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/motioneffector/wiki/internal/storage"
	"github.com/motioneffector/wiki/internal/wikiservice"
)

// Watch starts an fsnotify watcher on the page directory and processes
// file change events until ctx is cancelled. Created or modified page
// documents are re-loaded into the service; removals and renames trigger a
// debounced reconciliation pass that drops table entries whose documents
// no longer exist on disk.
func Watch(ctx context.Context, svc *wikiservice.Service, store *storage.FS, root string, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	// reconcileTimer debounces remove/rename reconciliation.
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
			reconcile(svc, store, logger)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			id, valid := pageIDFromPath(ev.Name)
			if !valid {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				page, loadErr := store.Load(id)
				if loadErr != nil {
					logger.Warn("watcher: load failed",
						slog.String("id", id), slog.String("error", loadErr.Error()))
					continue
				}
				if kind := svc.ReloadExternal(page); kind != "" {
					logger.Debug("watcher: reloaded", slog.String("id", id), slog.String("op", kind))
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				scheduleReconcile()
			}

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", werr.Error()))
		}
	}
}

// pageIDFromPath maps an event path to a page id, filtering out
// directories, temp files, and non-JSON files.
func pageIDFromPath(path string) (string, bool) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
		return "", false
	}
	return strings.TrimSuffix(name, ".json"), true
}

// reconcile drops table entries whose documents vanished from disk and
// absorbs documents the table does not know about.
func reconcile(svc *wikiservice.Service, store *storage.FS, logger *slog.Logger) {
	stored, err := store.List()
	if err != nil {
		logger.Warn("watcher: reconcile list failed", slog.String("error", err.Error()))
		return
	}

	onDisk := make(map[string]struct{}, len(stored))
	for _, p := range stored {
		onDisk[p.ID] = struct{}{}
		if kind := svc.ReloadExternal(p); kind != "" {
			logger.Debug("watcher: reconciled", slog.String("id", p.ID), slog.String("op", kind))
		}
	}

	for _, id := range svc.PageIDs() {
		if _, ok := onDisk[id]; !ok {
			if svc.RemoveExternal(id) {
				logger.Debug("watcher: removed stale", slog.String("id", id))
			}
		}
	}
}
