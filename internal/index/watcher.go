package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/storage"
)

// Event kinds passed to EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventCallback is called after a watcher-driven index change.
// kind is one of EventCreated, EventUpdated, EventDeleted.
type EventCallback func(kind string, slug string)

const reconcileDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the content root and processes file
// change events until ctx is cancelled. It calls cb (if non-nil) after
// each index mutation caused by an edit made outside the service. Writes
// whose checksum is already indexed produce no callback.
//
// New directories created at runtime are automatically added to the watch
// list. Rename events trigger a reconciliation pass that removes stale
// index entries whose files no longer exist on disk.
func Watch(ctx context.Context, db *DB, store storage.Provider, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	notify := func(kind, slug string) {
		if cb != nil {
			cb(kind, slug)
		}
	}

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
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
			reconcile(db, store, logger, notify)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Lstat(absPath); statErr == nil && info.IsDir() {
					if hidden(filepath.Base(absPath)) {
						continue
					}
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					indexNewDir(db, store, root, absPath, logger, notify)
					continue
				}
			}

			if !storage.IsContentFile(filepath.Base(absPath)) {
				continue
			}

			rel, relErr := filepath.Rel(root, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if rel == models.TemplateFile {
				continue
			}
			slug := SlugOf(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := store.Read(rel)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
					continue
				}
				changed, created, idxErr := indexIfChanged(db, slug, data)
				if idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", idxErr.Error()))
					continue
				}
				if !changed {
					continue
				}
				kind := EventUpdated
				if created {
					kind = EventCreated
				}
				logger.Debug("watcher: indexed", slog.String("slug", slug), slog.String("op", kind))
				notify(kind, slug)

			case ev.Op&fsnotify.Remove != 0:
				if !wasIndexed(db, slug) {
					continue
				}
				if delErr := db.DeleteModule(slug); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("slug", slug), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("slug", slug))
				notify(EventDeleted, slug)

			case ev.Op&fsnotify.Rename != 0:
				// Rename fires on the old path only; the new path arrives
				// as a separate Create when it stays inside a watched dir.
				if wasIndexed(db, slug) {
					if delErr := db.DeleteModule(slug); delErr != nil {
						logger.Warn("watcher: rename delete failed", slog.String("slug", slug), slog.String("error", delErr.Error()))
					} else {
						logger.Debug("watcher: rename old deleted", slog.String("slug", slug))
						notify(EventDeleted, slug)
					}
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func wasIndexed(db *DB, slug string) bool {
	cs, err := db.GetChecksum(slug)
	return err == nil && cs != ""
}

// reconcile removes index entries without a file on disk and indexes
// on-disk modules that are missing or stale.
func reconcile(db *DB, store storage.Provider, logger *slog.Logger, notify EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	files, err := store.List("")
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]models.ModuleFile, len(files))
	for _, f := range files {
		if f.Path == models.TemplateFile {
			continue
		}
		disk[SlugOf(f.Path)] = f
	}

	for slug := range checksums {
		if _, ok := disk[slug]; !ok {
			if delErr := db.DeleteModule(slug); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.String("slug", slug))
				notify(EventDeleted, slug)
			}
		}
	}

	for slug, f := range disk {
		prev, known := checksums[slug]
		if prev == f.Checksum {
			continue
		}
		data, readErr := store.Read(f.Path)
		if readErr != nil {
			continue
		}
		if idxErr := indexFile(db, slug, data); idxErr == nil {
			logger.Debug("reconcile: indexed", slog.String("slug", slug))
			if known {
				notify(EventUpdated, slug)
			} else {
				notify(EventCreated, slug)
			}
		}
	}
}

// indexNewDir indexes any modules found in a newly created directory.
func indexNewDir(db *DB, store storage.Provider, root, dirPath string, logger *slog.Logger, notify EventCallback) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dirPath && hidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 || !storage.IsContentFile(d.Name()) {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		data, readErr := store.Read(rel)
		if readErr != nil {
			return nil
		}
		slug := SlugOf(rel)
		changed, _, idxErr := indexIfChanged(db, slug, data)
		if idxErr == nil && changed {
			logger.Debug("watcher: indexed from new dir", slog.String("slug", slug))
			notify(EventCreated, slug)
		}
		return nil
	})
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && hidden(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
