package local

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/getsiphon/siphonfs/internal/events"
	"github.com/getsiphon/siphonfs/internal/jobs"
	"github.com/getsiphon/siphonfs/internal/native"
)

const progressChunkSize = 32 * 1024

// Download streams a URL to req.Dest, publishing begin and progress events
// for the job while the transfer runs. A partial file is removed on failure.
func (c *Client) Download(ctx context.Context, req native.DownloadRequest) (*native.DownloadResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	c.trackJob(req.JobID, cancel)
	defer c.untrackJob(req.JobID)

	httpReq := c.http.R().SetContext(ctx)
	for key, value := range req.Headers {
		httpReq.SetHeader(key, value)
	}

	resp, err := httpReq.Get(req.URL)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	contentLength := resp.RawResponse.ContentLength
	c.publish(jobs.KindBegin, req.JobID, events.Payload{
		"jobId":         req.JobID,
		"statusCode":    resp.StatusCode(),
		"contentLength": contentLength,
		"headers":       flattenHeaders(resp),
	})

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("download failed: HTTP %d", resp.StatusCode())
	}

	out, err := os.Create(req.Dest)
	if err != nil {
		return nil, err
	}

	written, err := c.copyWithProgress(ctx, out, body, req, contentLength)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(req.Dest)
		return nil, fmt.Errorf("download failed: %w", err)
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		if detected, err := mimetype.DetectFile(req.Dest); err == nil {
			contentType = detected.String()
		}
	}

	c.log.Info("download complete",
		zap.Int64("job_id", req.JobID),
		zap.Int64("bytes", written),
		zap.Int("status", resp.StatusCode()),
	)

	return &native.DownloadResult{
		JobID:        req.JobID,
		StatusCode:   resp.StatusCode(),
		BytesWritten: written,
		ContentType:  contentType,
	}, nil
}

// StopDownload cancels the in-flight transfer for the job, if any. The
// pending Download call settles with the cancellation error.
func (c *Client) StopDownload(jobID int64) {
	c.mu.Lock()
	cancel, ok := c.cancels[jobID]
	c.mu.Unlock()

	if ok {
		cancel()
	}
}

func (c *Client) copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, req native.DownloadRequest, contentLength int64) (int64, error) {
	var written int64
	lastReported := -1
	buf := make([]byte, progressChunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return written, err
			}
			written += int64(n)
			lastReported = c.reportProgress(req, written, contentLength, lastReported)
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}

// reportProgress publishes a progress event, throttled to every
// ProgressDivider percent when a divider is set and the total size is known.
func (c *Client) reportProgress(req native.DownloadRequest, written, contentLength int64, lastReported int) int {
	if req.ProgressDivider > 0 && contentLength > 0 {
		percent := int(written * 100 / contentLength)
		if percent/req.ProgressDivider == lastReported/req.ProgressDivider && lastReported >= 0 {
			return lastReported
		}
		lastReported = percent
	}

	c.publish(jobs.KindProgress, req.JobID, events.Payload{
		"jobId":         req.JobID,
		"contentLength": contentLength,
		"bytesWritten":  written,
	})
	return lastReported
}

func (c *Client) publish(kind jobs.Kind, jobID int64, payload events.Payload) {
	if c.events != nil {
		c.events.Publish(jobs.Channel(kind, jobID), payload)
	}
}

func (c *Client) trackJob(jobID int64, cancel context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancels[jobID] = cancel
}

func (c *Client) untrackJob(jobID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cancels, jobID)
}

func flattenHeaders(resp *resty.Response) map[string]string {
	headers := make(map[string]string, len(resp.Header()))
	for key := range resp.Header() {
		headers[key] = resp.Header().Get(key)
	}
	return headers
}
