package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mdiasanta/req-hunter/internal/config"
	"github.com/mdiasanta/req-hunter/internal/domain"
	"github.com/mdiasanta/req-hunter/internal/metrics"
	"github.com/mdiasanta/req-hunter/internal/repository"
	"github.com/mdiasanta/req-hunter/internal/scheduler"
	"github.com/mdiasanta/req-hunter/internal/scraper"
	"github.com/mdiasanta/req-hunter/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticStrategy returns one posting per source.
type staticStrategy struct{ src *domain.Source }

func (s staticStrategy) Kind() scraper.Kind             { return scraper.KindHeuristic }
func (s staticStrategy) Open(ctx context.Context) error { return nil }
func (s staticStrategy) Close() error                   { return nil }
func (s staticStrategy) Scrape(ctx context.Context) ([]scraper.Candidate, error) {
	return []scraper.Candidate{{
		Title:   "Go Engineer",
		Company: s.src.Name,
		URL:     s.src.BaseURL + "/jobs/1",
		Source:  s.src.Name,
	}}, nil
}

type staticFactory struct{}

func (staticFactory) ForSource(src *domain.Source) scraper.Strategy {
	return staticStrategy{src: src}
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	logFile string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        ":memory:",
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	reg := prometheus.NewRegistry()
	collector := metrics.New(reg)
	hooks := service.Hooks{Metrics: collector}

	sourceRepo := repository.NewSourceRepository(db)
	jobRepo := repository.NewJobRepository(db)
	dispatcher := service.NewDispatcher(sourceRepo, jobRepo, staticFactory{}, hooks)
	scrapeService := service.NewScrapeService(sourceRepo, dispatcher, hooks)

	logFile := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(logFile, []byte("one\ntwo\nthree\n"), 0o644))

	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: "test", CORS: config.CORSConfig{AllowAllOrigins: true}},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	router := SetupRouter(Deps{
		DB:        db,
		Sources:   service.NewSourceService(sourceRepo),
		Jobs:      service.NewJobService(jobRepo),
		Scrape:    scrapeService,
		Scheduler: scheduler.New(repository.NewScheduleRepository(db), scrapeService, time.Second, collector),
		LogFile:   logFile,
		Gatherer:  reg,
	}, cfg)
	return &testServer{t: t, handler: router, logFile: logFile}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSourceLifecycleAndScrape(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/sources", map[string]interface{}{
		"name":     "acme",
		"base_url": "https://acme.example.com",
		"keyword":  "go",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var src domain.Source
	decode(t, w, &src)
	assert.True(t, src.IsActive)
	assert.Equal(t, "q", src.QueryParam)

	w = s.do(http.MethodPost, "/api/sources", map[string]interface{}{
		"name": "acme", "base_url": "https://acme.example.com", "keyword": "go",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/sources", map[string]interface{}{
		"name": "bad", "base_url": "not a url", "keyword": "go",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/scrape/run", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result domain.ScrapeResult
	decode(t, w, &result)
	assert.Equal(t, 1, result.SourcesProcessed)
	assert.Equal(t, 1, result.JobsNew)
	assert.Contains(t, w.Body.String(), `"errors":[]`)

	w = s.do(http.MethodPost, "/api/scrape/run", nil)
	decode(t, w, &result)
	assert.Equal(t, 0, result.JobsNew)

	w = s.do(http.MethodPost, "/api/sources/1/block", map[string]string{"reason": "captcha"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &src)
	assert.True(t, src.IsBlocked)
	assert.False(t, src.IsActive)

	w = s.do(http.MethodPost, "/api/scrape/run/1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/scrape/run/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPatch, "/api/sources/1", map[string]interface{}{"clear_blocked": true})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &src)
	assert.False(t, src.IsBlocked)
	assert.True(t, src.IsActive)

	w = s.do(http.MethodDelete, "/api/sources/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(http.MethodGet, "/api/sources/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodGet, "/api/sources/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reqhunter_scrape_runs_total")
}

func TestJobEndpoints(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/sources", map[string]interface{}{
		"name": "acme", "base_url": "https://acme.example.com", "keyword": "go",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(http.MethodPost, "/api/scrape/run", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list service.JobList
	w = s.do(http.MethodGet, "/api/jobs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	require.Equal(t, int64(1), list.Total)
	assert.Equal(t, domain.JobStatusNew, list.Items[0].Status)

	for _, bad := range []string{"/api/jobs?limit=0", "/api/jobs?limit=201", "/api/jobs?offset=-1", "/api/jobs?status=archived"} {
		w = s.do(http.MethodGet, bad, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}

	w = s.do(http.MethodPatch, "/api/jobs/1", map[string]string{"status": "applied"})
	require.Equal(t, http.StatusOK, w.Code)
	var job domain.Job
	decode(t, w, &job)
	assert.Equal(t, domain.JobStatusApplied, job.Status)

	w = s.do(http.MethodPatch, "/api/jobs/1", map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/jobs/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/jobs?status=applied&source=acme", nil)
	decode(t, w, &list)
	assert.Equal(t, int64(1), list.Total)
}

func TestScheduleEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/schedule", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sched domain.ScrapeSchedule
	decode(t, w, &sched)
	assert.False(t, sched.IsEnabled)
	assert.Equal(t, 60, sched.IntervalMinutes)
	assert.Nil(t, sched.NextRunAt)

	w = s.do(http.MethodPatch, "/api/schedule", map[string]interface{}{"is_enabled": true, "interval_minutes": 2})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &sched)
	assert.True(t, sched.IsEnabled)
	assert.Equal(t, 5, sched.IntervalMinutes)
	require.NotNil(t, sched.NextRunAt)
	assert.True(t, sched.NextRunAt.After(time.Now()))

	w = s.do(http.MethodPatch, "/api/schedule", map[string]interface{}{"interval_minutes": "soon"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogsEndpoint(t *testing.T) {
	s := newTestServer(t)

	var body struct {
		Total int      `json:"total"`
		Items []string `json:"items"`
	}
	w := s.do(http.MethodGet, "/api/logs?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &body)
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, []string{"two", "three"}, body.Items)

	w = s.do(http.MethodGet, "/api/logs?limit=2001", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
