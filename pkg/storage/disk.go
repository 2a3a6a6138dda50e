// Package storage stores generated report artifacts.
//
// Two drivers are available:
//   - "local"  — local filesystem (default)
//   - "s3"     — S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// Quick start:
//
//	// boot once at startup:
//	storage.Connect()
//
//	// default disk
//	storage.Put("2025-11-25/orders.pdf", data)
//
//	// named disk
//	d, err := storage.Use("s3")
//	...
//	d.Put("2025-11-25/orders.pdf", data)
package storage

import (
	"io"
	"time"
)

// Disk is the artifact store driver interface.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(path string, content []byte) error

	// PutStream writes from r to path.
	PutStream(path string, r io.Reader) error

	// Get returns the full content of the file at path.
	Get(path string) ([]byte, error)

	// Exists reports whether a file exists at path.
	Exists(path string) bool

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(path string) error

	// URL returns where the stored artifact can be reached: a filesystem
	// path for the local disk, an object URL for S3.
	URL(path string) string

	// Files lists the filenames directly inside directory.
	Files(directory string) ([]string, error)

	// LastModified returns the file's last-modified time.
	LastModified(path string) (time.Time, error)
}
