// Package storage defines the content file-system abstraction.
package storage

import "github.com/starford/ansuz/internal/models"

// Provider is the interface for content file operations. All paths are
// relative to the content root.
type Provider interface {
	// List returns metadata for every .md file under dir.
	List(dir string) ([]models.ModuleFile, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Exists reports whether a regular file exists at path.
	Exists(path string) (bool, error)
	// RemoveEmptyDir removes dir if it is empty and is not the root itself.
	RemoveEmptyDir(dir string) error
	// Root returns the absolute content root.
	Root() string
}
