package fs

import (
	"time"

	"github.com/getsiphon/siphonfs/internal/events"
	"github.com/getsiphon/siphonfs/internal/native"
)

// EntryType classifies a directory entry or stat target.
type EntryType int

const (
	TypeOther EntryType = iota
	TypeFile
	TypeDirectory
)

// IsFile reports whether the entry is a regular file.
func (t EntryType) IsFile() bool { return t == TypeFile }

// IsDirectory reports whether the entry is a directory.
func (t EntryType) IsDirectory() bool { return t == TypeDirectory }

func (t EntryType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDirectory:
		return "directory"
	default:
		return "other"
	}
}

// Entry is one directory listing result.
type Entry struct {
	Name string    `json:"name"`
	Path string    `json:"path"`
	Size int64     `json:"size"`
	Type EntryType `json:"type"`
}

// Stat is the metadata result for one path.
type Stat struct {
	CTime time.Time `json:"ctime"`
	MTime time.Time `json:"mtime"`
	Size  int64     `json:"size"`
	Mode  uint32    `json:"mode"`
	Type  EntryType `json:"type"`
}

// WriteOptions tunes WriteFile.
type WriteOptions struct {
	Append bool `json:"append"`
}

// DownloadRequest describes one DownloadFile call. Callbacks are optional;
// a missing begin callback gets a default diagnostic logger.
type DownloadRequest struct {
	URL             string
	ToFile          string
	Headers         map[string]string
	ProgressDivider int
	OnBegin         events.Handler
	OnProgress      events.Handler
}

// DownloadResult is the settled outcome of a download job.
type DownloadResult struct {
	JobID        int64 `json:"jobId"`
	StatusCode   int   `json:"statusCode"`
	BytesWritten int64 `json:"bytesWritten"`
}

func entryType(isDir bool) EntryType {
	if isDir {
		return TypeDirectory
	}
	return TypeFile
}

func fromNativeStat(raw *native.FileStat) *Stat {
	return &Stat{
		CTime: raw.CTime,
		MTime: raw.MTime,
		Size:  raw.Size,
		Mode:  raw.Mode,
		Type:  entryType(raw.IsDir),
	}
}
