// Package modulestore manages modules: markdown files with a metadata block
// stored below the content root.
package modulestore

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/frontmatter"
	"github.com/starford/ansuz/internal/markdown"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/storage"
)

// Indexer receives module changes made through the store.
type Indexer interface {
	IndexModule(m models.Module, checksum string) error
	DeleteModule(slug string) error
}

// Store reads and writes modules through a storage.Provider.
type Store struct {
	fs     storage.Provider
	logger *slog.Logger
	index  Indexer
	now    func() time.Time

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex

	createMu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithIndexer keeps an index in step with saves and deletes.
func WithIndexer(ix Indexer) Option {
	return func(s *Store) { s.index = ix }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a module store.
func New(fsys storage.Provider, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		fs:     fsys,
		logger: logger,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListAll returns every module under the content root sorted by kapitel and
// unterkapitel. Files that fail to decode are logged and skipped.
func (s *Store) ListAll() ([]models.Module, error) {
	files, err := s.fs.List("")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.Module{}, nil
		}
		return nil, fmt.Errorf("modulestore: list: %w", err)
	}
	mods := make([]models.Module, 0, len(files))
	for _, f := range files {
		if f.Path == models.TemplateFile {
			continue
		}
		slug := strings.TrimSuffix(f.Path, ".md")
		m, err := s.load(slug)
		if err != nil {
			s.logger.Warn("skipping module",
				slog.String("path", f.Path),
				slog.String("error", err.Error()))
			continue
		}
		mods = append(mods, m)
	}
	sortModules(mods)
	return mods, nil
}

// List returns all modules, restricted to one status when status is non-empty.
// Status aliases such as "draft" are accepted.
func (s *Store) List(status string) ([]models.Module, error) {
	mods, err := s.ListAll()
	if err != nil || status == "" {
		return mods, err
	}
	want := models.NormalizeStatus(status)
	out := make([]models.Module, 0, len(mods))
	for _, m := range mods {
		if m.Status == want {
			out = append(out, m)
		}
	}
	return out, nil
}

// Get returns one module including its rendered HTML.
func (s *Store) Get(slug string) (*models.Module, error) {
	if err := validSlug(slug); err != nil {
		return nil, err
	}
	m, err := s.load(slug)
	if err != nil {
		return nil, err
	}
	htmlContent, err := markdown.Render(m.Content)
	if err != nil {
		return nil, err
	}
	m.HTMLContent = htmlContent
	return &m, nil
}

// Save merges patch into the module's metadata, replaces its body and writes
// it atomically. A missing module is created. Saves of one slug never interleave.
func (s *Store) Save(slug, body string, patch models.Patch) (*models.Module, error) {
	if err := validSlug(slug); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}

	lock := s.moduleLock(slug)
	lock.Lock()
	defer lock.Unlock()

	now := s.now()
	file := slug + ".md"
	meta := models.InitialMeta(slug, now)
	data, err := s.fs.Read(file)
	switch {
	case err == nil:
		meta, _, err = frontmatter.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("modulestore: decode %s: %w", file, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	if err := patch.Apply(meta); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	meta["updated"] = now.Format(models.DateLayout)

	out, err := frontmatter.Encode(meta, body)
	if err != nil {
		return nil, err
	}
	if err := s.fs.Write(file, out); err != nil {
		return nil, err
	}

	m := models.ModuleFromMeta(slug, meta, body)
	if s.index != nil {
		if err := s.index.IndexModule(m, storage.Checksum(out)); err != nil {
			s.logger.Warn("index update failed", slog.String("slug", slug), slog.String("error", err.Error()))
		}
	}
	return &m, nil
}

// Create derives a slug from title and saves a new module under it. A taken
// or reserved slug gets a timestamp suffix instead of being overwritten.
func (s *Store) Create(title, body string, patch models.Patch) (*models.Module, error) {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	slug, err := s.freeSlug(Slugify(title))
	if err != nil {
		return nil, err
	}
	if !patch.Title.Set && title != "" {
		patch.Title = models.Field[string]{Set: true, Value: title}
	}
	return s.Save(slug, body, patch)
}

// freeSlug returns base when it is usable and unused, otherwise the first free
// of base-<millis>, base-<millis>-2, ... Callers hold createMu.
func (s *Store) freeSlug(base string) (string, error) {
	stamp := strconv.FormatInt(s.now().UnixMilli(), 10)
	if base == "" {
		base = "untitled"
	} else if validSlug(base) == nil {
		taken, err := s.fs.Exists(base + ".md")
		if err != nil {
			return "", err
		}
		if !taken {
			return base, nil
		}
	}
	slug := base + "-" + stamp
	for n := 2; ; n++ {
		taken, err := s.fs.Exists(slug + ".md")
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = base + "-" + stamp + "-" + strconv.Itoa(n)
	}
}

// Delete removes a module file and its parent directory once that is empty.
func (s *Store) Delete(slug string) error {
	if err := validSlug(slug); err != nil {
		return err
	}
	lock := s.moduleLock(slug)
	lock.Lock()
	defer lock.Unlock()

	file := slug + ".md"
	if err := s.fs.Delete(file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	if dir := path.Dir(slug); dir != "." {
		if err := s.fs.RemoveEmptyDir(dir); err != nil {
			s.logger.Warn("directory cleanup failed", slog.String("dir", dir), slog.String("error", err.Error()))
		}
	}
	if s.index != nil {
		if err := s.index.DeleteModule(slug); err != nil {
			s.logger.Warn("index delete failed", slog.String("slug", slug), slog.String("error", err.Error()))
		}
	}
	return nil
}

func (s *Store) load(slug string) (models.Module, error) {
	data, err := s.fs.Read(slug + ".md")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.Module{}, apperr.ErrNotFound
		}
		return models.Module{}, err
	}
	meta, body, err := frontmatter.Decode(data)
	if err != nil {
		return models.Module{}, fmt.Errorf("modulestore: decode %s.md: %w", slug, err)
	}
	return models.ModuleFromMeta(slug, meta, body), nil
}

func (s *Store) moduleLock(slug string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.locks[slug]
	if ok {
		return lock
	}
	lock = &sync.Mutex{}
	s.locks[slug] = lock
	return lock
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases title and collapses every run of other characters to "-".
func Slugify(title string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(title), "-"), "-")
}

// validSlug rejects empty slugs, hidden segments and traversal.
func validSlug(slug string) error {
	if slug == "" || strings.HasSuffix(slug, "/") || strings.HasPrefix(slug, "/") {
		return fmt.Errorf("%w: invalid slug %q", apperr.ErrInvalidInput, slug)
	}
	for _, seg := range strings.Split(slug, "/") {
		if seg == "" || strings.HasPrefix(seg, ".") {
			return fmt.Errorf("%w: invalid slug %q", apperr.ErrInvalidInput, slug)
		}
	}
	if slug == strings.TrimSuffix(models.TemplateFile, ".md") {
		return fmt.Errorf("%w: %q is reserved", apperr.ErrInvalidInput, slug)
	}
	return nil
}
