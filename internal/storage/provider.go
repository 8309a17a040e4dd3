// Package storage defines the content and output file-system abstraction.
package storage

import "github.com/coursekit/coursekit/internal/models"

// Reader lists and reads content files.
type Reader interface {
	// List returns metadata for every .md file under dir (relative to root).
	List(dir string) ([]models.ContentMetadata, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
}

// Writer persists build artifacts.
type Writer interface {
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
}

// Provider is a Reader and a Writer over one root directory.
type Provider interface {
	Reader
	Writer
	Root() string
}
