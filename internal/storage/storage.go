package storage

import "context"

// ArchiveOptions conveys the archive destination.
type ArchiveOptions struct {
	Bucket    string
	KeyPrefix string
}

// Archiver keeps copies of exported CSV files in remote object storage.
type Archiver interface {
	// Archive stores body under the configured prefix and returns the
	// location of the stored object.
	Archive(ctx context.Context, name, contentType string, body []byte, opts ArchiveOptions) (string, error)
}
