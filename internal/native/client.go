// Package native defines the contract with the underlying primitive layer
// that performs actual disk and network I/O. The service core never touches
// the filesystem directly; it validates and rewrites paths, then delegates
// to a Client over already-resolved paths.
package native

import (
	"context"
	"time"
)

// DirEntry is one raw directory listing entry.
type DirEntry struct {
	Name  string
	Size  int64
	IsDir bool
}

// FileStat is the raw metadata reported for one path.
type FileStat struct {
	Size  int64
	Mode  uint32
	CTime time.Time
	MTime time.Time
	IsDir bool
}

// WriteOptions tunes a write primitive call.
type WriteOptions struct {
	Append bool
}

// DownloadRequest describes one transfer. The collaborator publishes begin
// and progress events for the job id while the transfer runs.
type DownloadRequest struct {
	JobID   int64
	URL     string
	Dest    string
	Headers map[string]string

	// ProgressDivider throttles progress events to every N percent when
	// greater than zero; zero reports every chunk.
	ProgressDivider int
}

// DownloadResult is the settlement value of a completed transfer.
type DownloadResult struct {
	JobID        int64
	StatusCode   int
	BytesWritten int64
	ContentType  string
}

// Client is the external collaborator providing primitive file operations.
// Mkdir must be idempotent: creating an existing directory succeeds silently.
type Client interface {
	ReadDir(ctx context.Context, path string) ([]DirEntry, error)
	Stat(ctx context.Context, path string) (*FileStat, error)
	Exists(ctx context.Context, path string) (bool, error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte, opts WriteOptions) error
	MoveFile(ctx context.Context, src, dest string) error
	Unlink(ctx context.Context, path string) error
	Mkdir(ctx context.Context, path string, excludeFromBackup bool) error
	Download(ctx context.Context, req DownloadRequest) (*DownloadResult, error)

	// StopDownload signals the transfer for the job to abort. It does not
	// settle the pending download; the transfer reports its own outcome.
	StopDownload(jobID int64)
}
