package fs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/getsiphon/siphonfs/internal/events"
	"github.com/getsiphon/siphonfs/internal/fserr"
	"github.com/getsiphon/siphonfs/internal/jobs"
	"github.com/getsiphon/siphonfs/internal/native"
)

func TestDownloadFileHappyPath(t *testing.T) {
	f := newFixture(t)
	dest := f.svc.CachesDirectoryPath() + "/pkg.zip"

	f.client.On("Mkdir", mock.Anything, f.svc.CachesDirectoryPath(), true).
		Return(nil).Once()

	var begin, progress []events.Payload
	f.client.On("Download", mock.Anything, mock.MatchedBy(func(req native.DownloadRequest) bool {
		return req.URL == "https://example.com/pkg.zip" && req.Dest == dest && req.JobID == 1
	})).Run(func(args mock.Arguments) {
		// The collaborator reports job events while transferring.
		req := args.Get(1).(native.DownloadRequest)
		f.bus.Publish(jobs.Channel(jobs.KindBegin, req.JobID), events.Payload{"statusCode": 200})
		f.bus.Publish(jobs.Channel(jobs.KindProgress, req.JobID), events.Payload{"bytesWritten": int64(512)})
	}).Return(&native.DownloadResult{StatusCode: 200, BytesWritten: 1024}, nil).Once()

	res, err := f.svc.DownloadFile(context.Background(), DownloadRequest{
		URL:        "https://example.com/pkg.zip",
		ToFile:     dest,
		OnBegin:    func(p events.Payload) { begin = append(begin, p) },
		OnProgress: func(p events.Payload) { progress = append(progress, p) },
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.JobID)
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, int64(1024), res.BytesWritten)

	require.Len(t, begin, 1)
	require.Len(t, progress, 1)
	assert.Equal(t, int64(512), progress[0]["bytesWritten"])
}

func TestDownloadFileJobIDsIncrease(t *testing.T) {
	f := newFixture(t)
	dest := f.svc.CachesDirectoryPath() + "/a"

	f.client.On("Mkdir", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.client.On("Download", mock.Anything, mock.Anything).
		Return(&native.DownloadResult{StatusCode: 200}, nil)

	first, err := f.svc.DownloadFile(context.Background(), DownloadRequest{URL: "u", ToFile: dest})
	require.NoError(t, err)
	second, err := f.svc.DownloadFile(context.Background(), DownloadRequest{URL: "u", ToFile: dest})
	require.NoError(t, err)

	assert.Greater(t, second.JobID, first.JobID)
}

func TestDownloadFileReleasesSubscriptionsOnSettlement(t *testing.T) {
	f := newFixture(t)
	dest := f.svc.CachesDirectoryPath() + "/a"

	f.client.On("Mkdir", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.client.On("Download", mock.Anything, mock.Anything).
		Return(&native.DownloadResult{StatusCode: 200}, nil).Once()

	calls := 0
	res, err := f.svc.DownloadFile(context.Background(), DownloadRequest{
		URL:        "u",
		ToFile:     dest,
		OnProgress: func(events.Payload) { calls++ },
	})
	require.NoError(t, err)

	// Events after settlement must not reach the released callback.
	f.bus.Publish(jobs.Channel(jobs.KindProgress, res.JobID), events.Payload{})
	assert.Equal(t, 0, calls)
}

func TestDownloadFileReleasesOnError(t *testing.T) {
	f := newFixture(t)
	dest := f.svc.CachesDirectoryPath() + "/a"

	f.client.On("Mkdir", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.client.On("Download", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset")).Once()

	calls := 0
	_, err := f.svc.DownloadFile(context.Background(), DownloadRequest{
		URL:        "u",
		ToFile:     dest,
		OnProgress: func(events.Payload) { calls++ },
	})
	require.Error(t, err)
	assert.Equal(t, fserr.CodeUnspecified, fserr.CodeOf(err))

	f.bus.Publish(jobs.Channel(jobs.KindProgress, 1), events.Payload{})
	assert.Equal(t, 0, calls)
}

func TestDownloadFileGuardFailureNoJobAllocated(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.DownloadFile(context.Background(), DownloadRequest{
		URL:    "u",
		ToFile: "/outside/sandbox",
	})
	require.Error(t, err)
	assert.Equal(t, fserr.CodeInvalidRoot, fserr.CodeOf(err))
	f.client.AssertNotCalled(t, "Download", mock.Anything, mock.Anything)

	// The failed call must not have consumed a job id.
	f.client.On("Mkdir", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.client.On("Download", mock.Anything, mock.Anything).
		Return(&native.DownloadResult{StatusCode: 200}, nil).Once()
	res, err := f.svc.DownloadFile(context.Background(), DownloadRequest{
		URL:    "u",
		ToFile: f.svc.CachesDirectoryPath() + "/a",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.JobID)
}

func TestStopDownloadBypassesGuard(t *testing.T) {
	f := newFixture(t)

	f.client.On("StopDownload", int64(9)).Return().Once()
	f.svc.StopDownload(9)

	f.client.AssertExpectations(t)
	f.client.AssertNotCalled(t, "Mkdir", mock.Anything, mock.Anything, mock.Anything)
}
