// Package storage defines the file-system abstraction used for Markdown
// export and inbox import.
package storage

import "time"

// FileInfo describes one file under a provider root.
type FileInfo struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for directory file operations.
type Provider interface {
	// List returns metadata for every file under dir (relative to root) whose
	// root-relative, slash-separated path matches the doublestar pattern.
	List(dir, pattern string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to root).
	Delete(path string) error
	// Move renames oldPath to newPath (both relative to root).
	Move(oldPath, newPath string) error
	// Root returns the absolute root directory.
	Root() string
}
