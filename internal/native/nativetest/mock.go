// Package nativetest provides a testify mock of the native collaborator.
package nativetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/getsiphon/siphonfs/internal/native"
)

// MockClient is a mock implementation of native.Client.
type MockClient struct {
	mock.Mock
}

var _ native.Client = (*MockClient)(nil)

func (m *MockClient) ReadDir(ctx context.Context, path string) ([]native.DirEntry, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]native.DirEntry), args.Error(1)
}

func (m *MockClient) Stat(ctx context.Context, path string) (*native.FileStat, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*native.FileStat), args.Error(1)
}

func (m *MockClient) Exists(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

func (m *MockClient) ReadFile(ctx context.Context, path string) ([]byte, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockClient) WriteFile(ctx context.Context, path string, data []byte, opts native.WriteOptions) error {
	args := m.Called(ctx, path, data, opts)
	return args.Error(0)
}

func (m *MockClient) MoveFile(ctx context.Context, src, dest string) error {
	args := m.Called(ctx, src, dest)
	return args.Error(0)
}

func (m *MockClient) Unlink(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockClient) Mkdir(ctx context.Context, path string, excludeFromBackup bool) error {
	args := m.Called(ctx, path, excludeFromBackup)
	return args.Error(0)
}

func (m *MockClient) Download(ctx context.Context, req native.DownloadRequest) (*native.DownloadResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*native.DownloadResult), args.Error(1)
}

func (m *MockClient) StopDownload(jobID int64) {
	m.Called(jobID)
}

// NewMockClient creates a mock whose Mkdir succeeds by default, matching the
// idempotent directory-creation contract most tests rely on.
func NewMockClient(t *testing.T) *MockClient {
	t.Helper()
	m := new(MockClient)

	m.On("Mkdir", mock.Anything, mock.Anything, mock.Anything).
		Return(nil).
		Maybe()

	return m
}
