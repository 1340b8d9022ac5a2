package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getsiphon/siphonfs/internal/config"
	"github.com/getsiphon/siphonfs/internal/fserr"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	base := t.TempDir()
	t.Setenv("SIPHON_APP_ID", "com.example.test")
	t.Setenv("SIPHON_PLATFORM", "ios")
	t.Setenv("SIPHON_CACHES_DIR", base+"/caches")
	t.Setenv("SIPHON_DOCUMENTS_DIR", base+"/documents")
	t.Setenv("SIPHON_LIBRARY_DIR", base+"/library")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	srv, err := NewServer(cfg)
	require.NoError(t, err)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestNewServerRequiresAppID(t *testing.T) {
	t.Setenv("SIPHON_APP_ID", "")
	cfg, err := config.Load()
	require.NoError(t, err)

	_, err = NewServer(cfg)
	require.Error(t, err)
	assert.Equal(t, fserr.CodeConfiguration, fserr.CodeOf(err))
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestRoots(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/v1/roots", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	roots := decode(t, rec)
	assert.Contains(t, roots["caches"], "siphon-data-com.example.test")
	assert.Contains(t, roots, "library")
}

func TestWriteReadListRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	docs := srv.svc.DocumentDirectoryPath()

	rec := doJSON(t, srv, http.MethodPut, "/v1/fs/file", map[string]interface{}{
		"path":     docs + "/note.txt",
		"contents": "hello world",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/v1/fs/file?path="+docs+"/note.txt", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello world", decode(t, rec)["contents"])

	rec = doJSON(t, srv, http.MethodGet, "/v1/fs/dir?path="+docs, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decode(t, rec)["entries"].([]interface{})
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]interface{})
	assert.Equal(t, "note.txt", entry["name"])

	rec = doJSON(t, srv, http.MethodGet, "/v1/fs/names?path="+docs, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	names := decode(t, rec)["names"].([]interface{})
	assert.Equal(t, "note.txt", names[0])
}

func TestStatAndExists(t *testing.T) {
	srv := newTestServer(t)
	docs := srv.svc.DocumentDirectoryPath()

	doJSON(t, srv, http.MethodPut, "/v1/fs/file", map[string]interface{}{
		"path": docs + "/a.txt", "contents": "12345",
	})

	rec := doJSON(t, srv, http.MethodGet, "/v1/fs/stat?path="+docs+"/a.txt", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode(t, rec)
	assert.Equal(t, float64(5), st["size"])
	assert.Equal(t, true, st["is_file"])

	rec = doJSON(t, srv, http.MethodGet, "/v1/fs/exists?path="+docs+"/a.txt", nil)
	assert.Equal(t, true, decode(t, rec)["exists"])

	rec = doJSON(t, srv, http.MethodGet, "/v1/fs/exists?path="+docs+"/missing", nil)
	assert.Equal(t, false, decode(t, rec)["exists"])
}

func TestMoveAndUnlink(t *testing.T) {
	srv := newTestServer(t)
	caches := srv.svc.CachesDirectoryPath()
	docs := srv.svc.DocumentDirectoryPath()

	doJSON(t, srv, http.MethodPut, "/v1/fs/file", map[string]interface{}{
		"path": caches + "/tmp.txt", "contents": "x",
	})

	// Moving across roots needs the destination root to exist already.
	doJSON(t, srv, http.MethodPost, "/v1/fs/mkdir", map[string]interface{}{
		"path": docs,
	})

	rec := doJSON(t, srv, http.MethodPost, "/v1/fs/move", map[string]interface{}{
		"src_path": caches + "/tmp.txt", "dest_path": docs + "/kept.txt",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodDelete, "/v1/fs/file?path="+docs+"/kept.txt", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/v1/fs/exists?path="+docs+"/kept.txt", nil)
	assert.Equal(t, false, decode(t, rec)["exists"])
}

func TestOutsideSandboxForbidden(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/v1/fs/file?path=/etc/passwd", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, fserr.CodeInvalidRoot, decode(t, rec)["code"])
}

func TestUnknownEncodingBadRequest(t *testing.T) {
	srv := newTestServer(t)
	docs := srv.svc.DocumentDirectoryPath()

	rec := doJSON(t, srv, http.MethodGet, "/v1/fs/file?path="+docs+"/a&encoding=utf16", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, fserr.CodeInvalidArgument, decode(t, rec)["code"])
}

func TestMissingFileNotFound(t *testing.T) {
	srv := newTestServer(t)
	docs := srv.svc.DocumentDirectoryPath()

	rec := doJSON(t, srv, http.MethodGet, "/v1/fs/file?path="+docs+"/missing.txt", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, fserr.CodeNotFound, decode(t, rec)["code"])
}

func TestDownloadEndToEnd(t *testing.T) {
	payload := "downloaded content"
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, payload)
	}))
	defer upstream.Close()

	srv := newTestServer(t)
	dest := srv.svc.CachesDirectoryPath() + "/file.bin"

	rec := doJSON(t, srv, http.MethodPost, "/v1/downloads", map[string]interface{}{
		"url": upstream.URL, "to_file": dest,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode(t, rec)
	assert.Equal(t, float64(200), res["statusCode"])
	assert.Equal(t, float64(len(payload)), res["bytesWritten"])
	assert.Equal(t, float64(1), res["jobId"])

	rec = doJSON(t, srv, http.MethodGet, "/v1/fs/file?path="+dest, nil)
	assert.Equal(t, payload, decode(t, rec)["contents"])
}

func TestStopDownloadAccepted(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodDelete, "/v1/downloads/41", nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/v1/downloads/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
