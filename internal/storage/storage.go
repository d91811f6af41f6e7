// Package storage provides file spooling for uploaded videos and optional
// archival of finished analysis reports.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrArchiveNotConfigured is returned when report archival is attempted
// without S3 configuration.
var ErrArchiveNotConfigured = errors.New("storage: report archive is not configured")

// Storage defines the interface for upload spooling and report archival.
type Storage interface {
	// SaveTemp spools data to a temporary file and returns the file path.
	// The name parameter is used as a hint for the filename.
	SaveTemp(ctx context.Context, name string, data io.Reader) (path string, err error)

	// CleanupTemp removes the specified temporary files.
	// It continues cleanup even if some files fail to delete.
	CleanupTemp(ctx context.Context, paths []string) error

	// ArchiveReport persists a finished analysis report under key and
	// returns its URL. Returns ErrArchiveNotConfigured when no archive
	// backend is configured.
	ArchiveReport(ctx context.Context, key, text string) (url string, err error)
}
