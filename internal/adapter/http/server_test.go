package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/snowfall-setup/internal/adapter/http"
	"github.com/couchcryptid/snowfall-setup/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPipeline struct {
	err  error
	last *domain.RunSummary
}

func (m *mockPipeline) CheckReadiness(_ context.Context) error { return m.err }

func (m *mockPipeline) LastRun() (domain.RunSummary, bool) {
	if m.last == nil {
		return domain.RunSummary{}, false
	}
	return *m.last, true
}

func newTestServer(m *mockPipeline) *httpadapter.Server {
	return httpadapter.NewServer(":0", m, m, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func get(srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(newTestServer(&mockPipeline{}), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(newTestServer(&mockPipeline{}), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(newTestServer(&mockPipeline{err: errors.New("no successful setup run yet")}), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLastRunReturns404BeforeFirstRun(t *testing.T) {
	rec := get(newTestServer(&mockPipeline{}), "/runs/last")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLastRunReturnsSummary(t *testing.T) {
	started := time.Date(2026, 1, 15, 6, 0, 0, 0, time.UTC)
	m := &mockPipeline{last: &domain.RunSummary{
		RunID:      "run-1",
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Downloaded: 12,
		Shapefiles: 30,
		Failed:     1,
		Error:      "shapefiles: 1 items failed",
	}}

	rec := get(newTestServer(m), "/runs/last")
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, *m.last, got)
	assert.False(t, got.OK())
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(newTestServer(&mockPipeline{}), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
