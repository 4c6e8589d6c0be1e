package index

import (
	"log/slog"
	"strings"

	"github.com/starford/ansuz/internal/frontmatter"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/storage"
)

// Sync walks the content root and brings the index up to date:
//   - new/changed modules are decoded and upserted
//   - modules removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	files, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(files))
	for _, f := range files {
		if f.Path == models.TemplateFile {
			continue
		}
		slug := SlugOf(f.Path)
		disk[slug] = struct{}{}

		if checksums[slug] == f.Checksum {
			continue
		}

		data, err := store.Read(f.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, slug, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", f.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("slug", slug))
		}
	}

	for slug := range checksums {
		if _, ok := disk[slug]; !ok {
			if err := db.DeleteModule(slug); err != nil {
				logger.Warn("sync: delete failed", slog.String("slug", slug), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("slug", slug))
			}
		}
	}

	return nil
}

// SlugOf maps a content-relative file path to its module slug.
func SlugOf(path string) string {
	return strings.TrimSuffix(path, ".md")
}

// indexFile decodes data and upserts it into the DB.
func indexFile(db *DB, slug string, data []byte) error {
	meta, body, err := frontmatter.Decode(data)
	if err != nil {
		return err
	}
	m := models.ModuleFromMeta(slug, meta, body)
	return db.IndexModule(m, storage.Checksum(data))
}

// indexIfChanged indexes data unless the stored checksum already matches.
// It reports whether the index changed and whether the module was new.
func indexIfChanged(db *DB, slug string, data []byte) (changed, created bool, err error) {
	prev, err := db.GetChecksum(slug)
	if err != nil {
		return false, false, err
	}
	if prev == storage.Checksum(data) {
		return false, false, nil
	}
	if err := indexFile(db, slug, data); err != nil {
		return false, false, err
	}
	return true, prev == "", nil
}
