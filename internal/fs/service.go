package fs

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/getsiphon/siphonfs/internal/fserr"
	"github.com/getsiphon/siphonfs/internal/infrastructure/monitoring"
	"github.com/getsiphon/siphonfs/internal/jobs"
	"github.com/getsiphon/siphonfs/internal/logging"
	"github.com/getsiphon/siphonfs/internal/native"
	"github.com/getsiphon/siphonfs/internal/sandbox"
	"github.com/getsiphon/siphonfs/internal/shared/encoding"
	"github.com/getsiphon/siphonfs/internal/shared/paths"
)

// Service is the sandboxed filesystem operation facade.
type Service struct {
	policy  *paths.Policy
	native  native.Client
	guard   *sandbox.Guarantor
	jobs    *jobs.Registry
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewService creates the facade. metrics may be nil to run unmetered.
func NewService(policy *paths.Policy, client native.Client, registry *jobs.Registry, log *logging.Logger, metrics *monitoring.Metrics) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{
		policy:  policy,
		native:  client,
		guard:   sandbox.NewGuarantor(policy, client),
		jobs:    registry,
		log:     log,
		metrics: metrics,
	}
}

// CachesDirectoryPath returns the sandboxed caches root.
func (s *Service) CachesDirectoryPath() string {
	root, _ := s.policy.Root(paths.KindCaches)
	return root.Path
}

// DocumentDirectoryPath returns the sandboxed documents root.
func (s *Service) DocumentDirectoryPath() string {
	root, _ := s.policy.Root(paths.KindDocuments)
	return root.Path
}

// LibraryDirectoryPath returns the sandboxed library root on platforms that
// have one.
func (s *Service) LibraryDirectoryPath() (string, bool) {
	root, ok := s.policy.Root(paths.KindLibrary)
	return root.Path, ok
}

// ReadDir lists a directory with per-entry metadata.
func (s *Service) ReadDir(ctx context.Context, dirPath string) ([]Entry, error) {
	start := time.Now()

	if _, err := s.guard.Ensure(ctx, dirPath); err != nil {
		return nil, s.settle("readDir", start, err)
	}

	raw, err := s.native.ReadDir(ctx, dirPath)
	if err != nil {
		return nil, s.settle("readDir", start, fserr.FromNative(err))
	}

	entries := make([]Entry, len(raw))
	for i, item := range raw {
		entries[i] = Entry{
			Name: item.Name,
			Path: joinPath(dirPath, item.Name),
			Size: item.Size,
			Type: entryType(item.IsDir),
		}
	}
	s.settle("readDir", start, nil)
	return entries, nil
}

// Readdir lists a directory as bare entry names.
func (s *Service) Readdir(ctx context.Context, dirPath string) ([]string, error) {
	start := time.Now()

	if _, err := s.guard.Ensure(ctx, dirPath); err != nil {
		return nil, s.settle("readdir", start, err)
	}

	raw, err := s.native.ReadDir(ctx, dirPath)
	if err != nil {
		return nil, s.settle("readdir", start, fserr.FromNative(err))
	}

	names := make([]string, len(raw))
	for i, item := range raw {
		names[i] = item.Name
	}
	s.settle("readdir", start, nil)
	return names, nil
}

// Stat returns metadata for a path.
func (s *Service) Stat(ctx context.Context, path string) (*Stat, error) {
	start := time.Now()

	if _, err := s.guard.Ensure(ctx, path); err != nil {
		return nil, s.settle("stat", start, err)
	}

	raw, err := s.native.Stat(ctx, path)
	if err != nil {
		return nil, s.settle("stat", start, fserr.FromNative(err))
	}
	s.settle("stat", start, nil)
	return fromNativeStat(raw), nil
}

// Exists reports whether a path exists.
func (s *Service) Exists(ctx context.Context, path string) (bool, error) {
	start := time.Now()

	if _, err := s.guard.Ensure(ctx, path); err != nil {
		return false, s.settle("exists", start, err)
	}

	ok, err := s.native.Exists(ctx, path)
	if err != nil {
		return false, s.settle("exists", start, fserr.FromNative(err))
	}
	s.settle("exists", start, nil)
	return ok, nil
}

// ReadFile reads a file and decodes it per the requested encoding ("utf8"
// by default, "ascii", or "base64"). Unknown encodings fail before any I/O.
func (s *Service) ReadFile(ctx context.Context, path, encodingName string) (string, error) {
	start := time.Now()

	enc, err := encoding.Parse(encodingName)
	if err != nil {
		return "", s.settle("readFile", start, err)
	}

	if _, err := s.guard.Ensure(ctx, path); err != nil {
		return "", s.settle("readFile", start, err)
	}

	raw, err := s.native.ReadFile(ctx, path)
	if err != nil {
		return "", s.settle("readFile", start, fserr.FromNative(err))
	}

	content, err := encoding.Decode(enc, raw)
	if err != nil {
		return "", s.settle("readFile", start, err)
	}
	s.settle("readFile", start, nil)
	return content, nil
}

// WriteFile encodes contents per the requested encoding and writes them.
func (s *Service) WriteFile(ctx context.Context, path, contents, encodingName string, opts *WriteOptions) error {
	start := time.Now()

	enc, err := encoding.Parse(encodingName)
	if err != nil {
		return s.settle("writeFile", start, err)
	}
	raw, err := encoding.Encode(enc, contents)
	if err != nil {
		return s.settle("writeFile", start, err)
	}

	if _, err := s.guard.Ensure(ctx, path); err != nil {
		return s.settle("writeFile", start, err)
	}

	var nativeOpts native.WriteOptions
	if opts != nil {
		nativeOpts.Append = opts.Append
	}
	if err := s.native.WriteFile(ctx, path, raw, nativeOpts); err != nil {
		return s.settle("writeFile", start, fserr.FromNative(err))
	}
	return s.settle("writeFile", start, nil)
}

// MoveFile renames srcPath to destPath. The guard runs on the source path.
func (s *Service) MoveFile(ctx context.Context, srcPath, destPath string) error {
	start := time.Now()

	if _, err := s.guard.Ensure(ctx, srcPath); err != nil {
		return s.settle("moveFile", start, err)
	}

	if err := s.native.MoveFile(ctx, srcPath, destPath); err != nil {
		return s.settle("moveFile", start, fserr.FromNative(err))
	}
	return s.settle("moveFile", start, nil)
}

// Unlink removes a file.
func (s *Service) Unlink(ctx context.Context, path string) error {
	start := time.Now()

	if _, err := s.guard.Ensure(ctx, path); err != nil {
		return s.settle("unlink", start, err)
	}

	if err := s.native.Unlink(ctx, path); err != nil {
		return s.settle("unlink", start, fserr.FromNative(err))
	}
	return s.settle("unlink", start, nil)
}

// Mkdir creates a directory. excludeFromBackup marks it for platform backup
// exclusion; it is independent of the flag the guard computes for the
// owning root itself.
func (s *Service) Mkdir(ctx context.Context, path string, excludeFromBackup bool) error {
	start := time.Now()

	if _, err := s.guard.Ensure(ctx, path); err != nil {
		return s.settle("mkdir", start, err)
	}

	if err := s.native.Mkdir(ctx, path, excludeFromBackup); err != nil {
		return s.settle("mkdir", start, fserr.FromNative(err))
	}
	return s.settle("mkdir", start, nil)
}

// PathForBundle is disabled: bundle loading is not part of this service.
func (s *Service) PathForBundle(name string) string {
	s.log.Warn("pathForBundle is not supported", zap.String("bundle", name))
	return ""
}

// settle records the operation outcome and passes err through.
func (s *Service) settle(op string, start time.Time, err error) error {
	code := "ok"
	if err != nil {
		code = fserr.CodeOf(err)
		s.log.Debug("operation failed", zap.String("op", op), zap.Error(err))
	}
	s.metrics.RecordOp(op, code, time.Since(start))
	return err
}

func joinPath(dir, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}
