package gdrive

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/couchcryptid/snowfall-setup/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey    = "test-api-key"
	rootFolder = "1S-PpChJEROZI-1h_r_4MyEClS-qdvZyV"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), testKey, srv.URL+"/", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return c
}

func TestClient_ListChildren_Paginates(t *testing.T) {
	mux := http.NewServeMux()
	var calls atomic.Int32
	mux.HandleFunc("GET /files", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "'"+rootFolder+"' in parents and trashed=false", q.Get("q"))
		assert.Equal(t, testKey, q.Get("key"))
		assert.Contains(t, q.Get("fields"), "files(id, name, mimeType, size)")

		w.Header().Set("Content-Type", "application/json")
		if q.Get("pageToken") == "" {
			_, _ = io.WriteString(w, `{"nextPageToken":"p2","files":[
				{"id":"f1","name":"Data","mimeType":"application/vnd.google-apps.folder"}
			]}`)
			return
		}
		assert.Equal(t, "p2", q.Get("pageToken"))
		_, _ = io.WriteString(w, `{"files":[
			{"id":"f2","name":"AK_PRISM_DEM.tif","mimeType":"image/tiff","size":"2048"}
		]}`)
	})
	c := newTestClient(t, mux)

	items, err := c.ListChildren(context.Background(), rootFolder)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []domain.DriveItem{
		{ID: "f1", Name: "Data", MimeType: domain.FolderMimeType},
		{ID: "f2", Name: "AK_PRISM_DEM.tif", MimeType: "image/tiff", Size: 2048},
	}, items)
}

func TestClient_ListChildren_Error(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /files", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"API key not valid"}}`)
	})
	c := newTestClient(t, mux)

	_, err := c.ListChildren(context.Background(), rootFolder)
	require.Error(t, err)
	assert.Contains(t, err.Error(), rootFolder)
}

func TestClient_Download(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /files/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "f2", r.PathValue("id"))
		assert.Equal(t, "media", r.URL.Query().Get("alt"))
		_, _ = io.WriteString(w, "raster-bytes")
	})
	c := newTestClient(t, mux)

	dir := t.TempDir()
	dest := filepath.Join(dir, "AK_PRISM_DEM.tif")
	n, err := c.Download(context.Background(), "f2", dest)
	require.NoError(t, err)

	assert.Equal(t, int64(len("raster-bytes")), n)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "raster-bytes", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp file left behind")
}

func TestClient_Download_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /files/{id}", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	c := newTestClient(t, mux)

	dir := t.TempDir()
	_, err := c.Download(context.Background(), "missing", filepath.Join(dir, "x.csv"))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClient_Download_TruncatedBodyLeavesNoFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /files/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "1000")
		_, _ = io.WriteString(w, "parti")
	})
	c := newTestClient(t, mux)

	dir := t.TempDir()
	dest := filepath.Join(dir, "AK_PRISM_DEM.tif")
	_, err := c.Download(context.Background(), "f2", dest)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "neither the destination nor the temp file remains")
}

func TestChildrenQuery_Escapes(t *testing.T) {
	assert.Equal(t, `'a\'b' in parents and trashed=false`, childrenQuery("a'b"))
}
