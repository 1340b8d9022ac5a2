package fs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/getsiphon/siphonfs/internal/events"
	"github.com/getsiphon/siphonfs/internal/fserr"
	"github.com/getsiphon/siphonfs/internal/jobs"
	"github.com/getsiphon/siphonfs/internal/native"
)

// DownloadFile transfers a URL to a sandboxed destination path. The guard
// runs on the destination. A job id is allocated before the transfer starts
// and callback subscriptions are attached to it; they are released exactly
// once when the transfer settles, successfully or not.
func (s *Service) DownloadFile(ctx context.Context, req DownloadRequest) (*DownloadResult, error) {
	start := time.Now()

	if _, err := s.guard.Ensure(ctx, req.ToFile); err != nil {
		return nil, s.settle("downloadFile", start, err)
	}

	id := s.jobs.Begin()

	var held []events.Subscription
	if sub := s.jobs.SubscribeBegin(id, req.OnBegin); sub != nil {
		held = append(held, sub)
	}
	if req.OnProgress != nil {
		held = append(held, s.jobs.Subscribe(id, jobs.KindProgress, req.OnProgress))
	}

	var releaseOnce sync.Once
	release := func() {
		releaseOnce.Do(func() { s.jobs.Release(held...) })
	}
	defer release()

	s.metrics.DownloadStarted()
	s.log.Info("download starting",
		zap.Int64("job_id", id),
		zap.String("url", req.URL),
		zap.String("to_file", req.ToFile),
	)

	res, err := s.native.Download(ctx, native.DownloadRequest{
		JobID:           id,
		URL:             req.URL,
		Dest:            req.ToFile,
		Headers:         req.Headers,
		ProgressDivider: req.ProgressDivider,
	})
	release()

	if err != nil {
		s.metrics.DownloadFinished("error", 0)
		return nil, s.settle("downloadFile", start, fserr.FromNative(err))
	}

	s.metrics.DownloadFinished("ok", res.BytesWritten)
	s.settle("downloadFile", start, nil)
	return &DownloadResult{
		JobID:        id,
		StatusCode:   res.StatusCode,
		BytesWritten: res.BytesWritten,
	}, nil
}

// StopDownload signals the transfer for jobID to abort. No path is involved
// so no guard runs. Cancellation does not release the job's subscriptions;
// the pending DownloadFile call settles when the transfer reports back, and
// releases them then.
func (s *Service) StopDownload(jobID int64) {
	s.native.StopDownload(jobID)
}
