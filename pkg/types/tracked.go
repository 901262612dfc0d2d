package types

import (
	"errors"
	"path/filepath"
	"time"
)

// FileStatus represents the indexing state of a tracked file
type FileStatus string

const (
	StatusPending FileStatus = "pending"
	StatusIndexed FileStatus = "indexed"
	StatusFailed  FileStatus = "failed"
)

// TrackedFile is the durable record of one path the sync engine has seen.
// Fingerprint and ChunkIDs always move together: both are replaced only by a
// successful full index cycle, so a failed cycle leaves the last good state
// retrievable.
type TrackedFile struct {
	// Path is the canonical absolute path; unique key in the tracker
	Path string

	// Fingerprint is the hex-encoded SHA-256 of the file content at the
	// time of the last successful index
	Fingerprint string

	SizeBytes int64
	ModTime   time.Time

	Status FileStatus

	// FailReason holds a human-readable diagnostic when Status is failed
	FailReason string

	// ChunkIDs are the vector-store entry IDs derived from this file,
	// in chunk order; empty until the first successful index
	ChunkIDs []string

	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks structural invariants of a tracked file record
func (f *TrackedFile) Validate() error {
	if f.Path == "" {
		return errors.New("tracked file path cannot be empty")
	}
	if !filepath.IsAbs(f.Path) {
		return errors.New("tracked file path must be absolute")
	}
	switch f.Status {
	case StatusPending, StatusIndexed, StatusFailed:
	default:
		return errors.New("invalid file status")
	}
	if f.Status == StatusIndexed && f.Fingerprint == "" {
		return errors.New("indexed file must have a fingerprint")
	}
	return nil
}

// NormalizePath converts a path to its canonical absolute form.
// All tracker and syncer keys go through this so a path never appears twice
// under different spellings.
func NormalizePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
