package index

import "github.com/starford/ansuz/internal/models"

// ModuleIndex defines the index operations used by the rest of the service.
// Consumers depend on this interface rather than on *DB.
type ModuleIndex interface {
	IndexModule(m models.Module, checksum string) error
	DeleteModule(slug string) error
	GetChecksum(slug string) (string, error)
	AllChecksums() (map[string]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Graph() (*Graph, error)
	Close() error
}

// Verify *DB satisfies ModuleIndex at compile time.
var _ ModuleIndex = (*DB)(nil)
