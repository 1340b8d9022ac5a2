// Package local is the default native collaborator: plain os primitives for
// disk operations and a resty HTTP client for downloads. Mobile embeddings
// replace it with their platform bridge; the service core only sees the
// native.Client contract.
package local

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/getsiphon/siphonfs/internal/events"
	"github.com/getsiphon/siphonfs/internal/logging"
	"github.com/getsiphon/siphonfs/internal/native"
)

// Options tunes the download client.
type Options struct {
	Timeout    time.Duration // zero means no timeout
	RetryCount int
}

// Client implements native.Client over the local filesystem.
type Client struct {
	http   *resty.Client
	events events.Publisher
	log    *logging.Logger

	mu      sync.Mutex
	cancels map[int64]context.CancelFunc
}

var _ native.Client = (*Client)(nil)

// New creates a local collaborator. Download events for each job are
// published on the given publisher.
func New(publisher events.Publisher, log *logging.Logger, opts Options) *Client {
	if log == nil {
		log = logging.Nop()
	}

	httpClient := resty.New().
		SetRetryCount(opts.RetryCount).
		SetDoNotParseResponse(true)
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}

	return &Client{
		http:    httpClient,
		events:  publisher,
		log:     log,
		cancels: make(map[int64]context.CancelFunc),
	}
}

func (c *Client) ReadDir(ctx context.Context, path string) ([]native.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	entries := make([]native.DirEntry, 0, len(raw))
	for _, item := range raw {
		entry := native.DirEntry{Name: item.Name(), IsDir: item.IsDir()}
		if info, err := item.Info(); err == nil {
			entry.Size = info.Size()
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (c *Client) Stat(ctx context.Context, path string) (*native.FileStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	return &native.FileStat{
		Size: info.Size(),
		Mode: uint32(info.Mode()),
		// Portable hosts have no separate creation time.
		CTime: info.ModTime(),
		MTime: info.ModTime(),
		IsDir: info.IsDir(),
	}, nil
}

func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Client) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (c *Client) WriteFile(ctx context.Context, path string, data []byte, opts native.WriteOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if opts.Append {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Client) MoveFile(ctx context.Context, src, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.Rename(src, dest)
}

func (c *Client) Unlink(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.Remove(path)
}

func (c *Client) Mkdir(ctx context.Context, path string, excludeFromBackup bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// MkdirAll succeeds silently on an existing directory, which is the
	// idempotence the guard phase relies on.
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}

	if excludeFromBackup {
		// Backup exclusion is a mobile platform attribute; the local host
		// has nowhere to record it.
		c.log.Debug("backup exclusion not supported on local host", zap.String("path", path))
	}
	return nil
}
