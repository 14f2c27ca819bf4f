package workday

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mdiasanta/req-hunter/internal/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchServer struct {
	mu      sync.Mutex
	offsets []int
	bodies  []searchRequest
	headers []http.Header
	paths   []string
	times   []time.Time
	respond func(offset int) (int, interface{})
}

func (s *searchServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	s.offsets = append(s.offsets, req.Offset)
	s.bodies = append(s.bodies, req)
	s.headers = append(s.headers, r.Header.Clone())
	s.paths = append(s.paths, r.URL.Path)
	s.times = append(s.times, time.Now())
	s.mu.Unlock()

	status, body := s.respond(req.Offset)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func postings(from, n int) []map[string]string {
	out := make([]map[string]string, 0, n)
	for i := from; i < from+n; i++ {
		out = append(out, map[string]string{
			"title":         fmt.Sprintf("Engineer %d", i),
			"externalPath":  fmt.Sprintf("/job/Remote/Engineer_R%d", i),
			"locationsText": "Remote",
		})
	}
	return out
}

func newTestScraper(boardURL string) *Scraper {
	return New(Config{SourceName: "Acme", BoardURL: boardURL, Keyword: "engineer"})
}

func TestScrapeSinglePageWhenTotalReached(t *testing.T) {
	srv := &searchServer{respond: func(offset int) (int, interface{}) {
		return http.StatusOK, map[string]interface{}{"total": 20, "jobPostings": postings(0, 20)}
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	board := ts.URL + "/en-US/External"
	got, err := scraper.Run(context.Background(), newTestScraper(board))
	require.NoError(t, err)

	assert.Len(t, got, 20)
	assert.Equal(t, []int{0}, srv.offsets)

	target, err := ParseBoardURL(board)
	require.NoError(t, err)
	assert.Equal(t, "/wday/cxs/"+target.Tenant+"/External/jobs", srv.paths[0])

	assert.Equal(t, 20, srv.bodies[0].Limit)
	assert.Equal(t, "engineer", srv.bodies[0].SearchText)
	assert.NotNil(t, srv.bodies[0].AppliedFacets)
	assert.Equal(t, board, srv.headers[0].Get("Referer"))
	assert.Equal(t, scraper.DefaultUserAgent, srv.headers[0].Get("User-Agent"))

	assert.Equal(t, scraper.Candidate{
		Title:    "Engineer 0",
		Company:  "Acme",
		Location: "Remote",
		URL:      ts.URL + "/job/Remote/Engineer_R0",
		Source:   "Acme",
	}, got[0])
}

func TestScrapeMultiplePages(t *testing.T) {
	srv := &searchServer{respond: func(offset int) (int, interface{}) {
		n := 20
		if offset == 40 {
			n = 5
		}
		return http.StatusOK, map[string]interface{}{"total": 45, "jobPostings": postings(offset, n)}
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	got, err := scraper.Run(context.Background(), newTestScraper(ts.URL+"/External"))
	require.NoError(t, err)
	assert.Len(t, got, 45)
	assert.Equal(t, []int{0, 20, 40}, srv.offsets)
}

func TestScrapeStopsOnEmptyPostings(t *testing.T) {
	srv := &searchServer{respond: func(offset int) (int, interface{}) {
		if offset == 0 {
			return http.StatusOK, map[string]interface{}{"total": 100, "jobPostings": postings(0, 20)}
		}
		return http.StatusOK, map[string]interface{}{"total": 100, "jobPostings": []interface{}{}}
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	got, err := scraper.Run(context.Background(), newTestScraper(ts.URL+"/External"))
	require.NoError(t, err)
	assert.Len(t, got, 20)
	assert.Equal(t, []int{0, 20}, srv.offsets)
}

func TestScrapeNonSuccessStatus(t *testing.T) {
	srv := &searchServer{respond: func(int) (int, interface{}) {
		return http.StatusForbidden, map[string]string{"error": "nope"}
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	got, err := scraper.Run(context.Background(), newTestScraper(ts.URL+"/External"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Nil(t, got)
}

func TestScrapeMissingTitle(t *testing.T) {
	srv := &searchServer{respond: func(int) (int, interface{}) {
		return http.StatusOK, map[string]interface{}{
			"total":       1,
			"jobPostings": []map[string]string{{"externalPath": "/job/x"}},
		}
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	got, err := scraper.Run(context.Background(), newTestScraper(ts.URL))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Unknown", got[0].Title)
	assert.Empty(t, got[0].Location)
}

func TestScrapeDelaysBetweenPagesOnly(t *testing.T) {
	const delay = 150 * time.Millisecond
	srv := &searchServer{respond: func(offset int) (int, interface{}) {
		n := 20
		if offset == 20 {
			n = 5
		}
		return http.StatusOK, map[string]interface{}{"total": 25, "jobPostings": postings(offset, n)}
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	s := New(Config{SourceName: "Acme", BoardURL: ts.URL + "/External", Keyword: "engineer", Delay: delay})
	start := time.Now()
	got, err := scraper.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Len(t, got, 25)

	require.Len(t, srv.times, 2)
	assert.Less(t, srv.times[0].Sub(start), delay, "first page must not wait")
	assert.GreaterOrEqual(t, srv.times[1].Sub(srv.times[0]), delay)
}
