package heuristic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/mdiasanta/req-hunter/internal/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeView struct {
	url   string
	title string
	body  string
	links []Link
	next  NextState
	token string
}

// fakePage serves a fixed sequence of views; ClickNext advances unless inert.
type fakePage struct {
	views     []fakeView
	idx       int
	inert     bool
	navigated string
	clicks    int
	closed    bool
	// navigatedAt records when Navigate was called
	navigatedAt time.Time
	tokenErr    error
	// generate builds views on demand for unbounded pagination
	generate func(i int) fakeView
}

func (f *fakePage) view() fakeView {
	if f.generate != nil {
		return f.generate(f.idx)
	}
	return f.views[f.idx]
}

func (f *fakePage) Navigate(url string) error {
	f.navigated = url
	f.navigatedAt = time.Now()
	return nil
}
func (f *fakePage) WaitSettled(time.Duration) error { return errors.New("still loading") }
func (f *fakePage) URL() (string, error)            { return f.view().url, nil }
func (f *fakePage) Title() (string, error)          { return f.view().title, nil }
func (f *fakePage) BodyText() (string, error)       { return f.view().body, nil }
func (f *fakePage) Links() ([]Link, error)          { return f.view().links, nil }
func (f *fakePage) Next() (NextState, error)        { return f.view().next, nil }
func (f *fakePage) ActiveToken() (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return f.view().token, nil
}
func (f *fakePage) Screenshot() ([]byte, error) { return []byte("png"), nil }
func (f *fakePage) Close() error                { f.closed = true; return nil }
func (f *fakePage) ClickNext() error {
	f.clicks++
	if !f.inert && (f.generate != nil || f.idx < len(f.views)-1) {
		f.idx++
	}
	return nil
}

type fakeBrowser struct {
	page *fakePage
	err  error
}

func (b *fakeBrowser) NewSession(context.Context) (Page, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.page, nil
}

type memSnapshots struct {
	keys []string
}

func (m *memSnapshots) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if _, err := io.ReadAll(r); err != nil {
		return err
	}
	m.keys = append(m.keys, key)
	return nil
}

func (m *memSnapshots) GetURL(key string) string { return "mem://" + key }

func testConfig() Config {
	return Config{
		SourceName: "Acme",
		BaseURL:    "https://acme.com/careers",
		Keyword:    "engineer",
		QueryParam: "q",
	}
}

func run(t *testing.T, cfg Config, page *fakePage, snaps SnapshotStore) ([]scraper.Candidate, error) {
	t.Helper()
	s := New(cfg, &fakeBrowser{page: page}, snaps)
	return scraper.Run(context.Background(), s)
}

func TestScrapeSinglePage(t *testing.T) {
	page := &fakePage{views: []fakeView{{
		url:   "https://acme.com/careers?q=engineer",
		title: "Careers",
		links: []Link{
			{Href: "/jobs/1", Text: "  Backend Engineer  "},
			{Href: "/jobs/1", Text: "Backend Engineer"},
			{Href: "/jobs/2", Text: "Eng"},
			{Href: "/about", Text: "About the company"},
			{Href: "https://acme.com/positions/3", Text: "Platform Engineer"},
		},
		next: NextAbsent,
	}}}

	got, err := run(t, testConfig(), page, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://acme.com/careers?q=engineer", page.navigated)
	assert.True(t, page.closed)
	require.Len(t, got, 2)
	assert.Equal(t, scraper.Candidate{
		Title:   "Backend Engineer",
		Company: "Acme",
		URL:     "https://acme.com/jobs/1",
		Source:  "Acme",
	}, got[0])
	assert.Equal(t, "https://acme.com/positions/3", got[1].URL)
	assert.Zero(t, page.clicks)
}

func TestScrapePathFilter(t *testing.T) {
	cfg := testConfig()
	cfg.PathFilter = "/REQ/"
	page := &fakePage{views: []fakeView{{
		url: "https://acme.com/careers",
		links: []Link{
			{Href: "/jobs/1", Text: "Backend Engineer"},
			{Href: "/req/55", Text: "Data Engineer"},
		},
	}}}

	got, err := run(t, cfg, page, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://acme.com/req/55", got[0].URL)
}

func TestScrapeFollowsPagination(t *testing.T) {
	page := &fakePage{views: []fakeView{
		{url: "https://acme.com/c?page=1", links: []Link{{Href: "/jobs/1", Text: "Role number one"}}, next: NextEnabled, token: "1"},
		{url: "https://acme.com/c?page=2", links: []Link{{Href: "/jobs/2", Text: "Role number two"}}, next: NextEnabled, token: "2"},
		{url: "https://acme.com/c?page=3", links: []Link{{Href: "/jobs/3", Text: "Role number three"}}, next: NextDisabled, token: "3"},
	}}

	got, err := run(t, testConfig(), page, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 2, page.clicks)
}

func TestScrapeStopsOnInertNext(t *testing.T) {
	// Next is always enabled but never advances and the links never change
	page := &fakePage{
		inert: true,
		views: []fakeView{{
			url:   "https://acme.com/c",
			links: []Link{{Href: "/jobs/1", Text: "Role number one"}},
			next:  NextEnabled,
			token: "1",
		}},
	}

	got, err := run(t, testConfig(), page, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.LessOrEqual(t, page.clicks, 30)
	assert.Equal(t, 2, page.clicks)
}

func TestScrapeStopsOnEmptyPagesThatAdvance(t *testing.T) {
	page := &fakePage{generate: func(i int) fakeView {
		v := fakeView{url: fmt.Sprintf("https://acme.com/c?p=%d", i), next: NextEnabled, token: fmt.Sprint(i)}
		if i == 0 {
			v.links = []Link{{Href: "/jobs/1", Text: "Role number one"}}
		}
		return v
	}}

	got, err := run(t, testConfig(), page, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 3, page.clicks)
}

func TestScrapePageCap(t *testing.T) {
	page := &fakePage{generate: func(i int) fakeView {
		return fakeView{
			url:   fmt.Sprintf("https://acme.com/c?p=%d", i),
			links: []Link{{Href: fmt.Sprintf("/jobs/%d", i), Text: fmt.Sprintf("Role number %d", i)}},
			next:  NextEnabled,
			token: fmt.Sprint(i),
		}
	}}

	got, err := run(t, testConfig(), page, nil)
	require.NoError(t, err)
	assert.Len(t, got, 30)
	assert.Equal(t, 30, page.clicks)
}

func TestScrapeBlocked(t *testing.T) {
	page := &fakePage{views: []fakeView{{
		url:   "https://acme.com/careers",
		title: "Just a moment...",
		links: []Link{{Href: "/jobs/1", Text: "Role number one"}},
	}}}
	snaps := &memSnapshots{}

	got, err := run(t, testConfig(), page, snaps)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBlocked))
	assert.Contains(t, err.Error(), "blocked by anti-bot challenge")
	assert.Nil(t, got)
	assert.True(t, page.closed)
	require.Len(t, snaps.keys, 1)
	assert.Contains(t, snaps.keys[0], "snapshots/acme/")
}

func TestScrapeSessionFailure(t *testing.T) {
	s := New(testConfig(), &fakeBrowser{err: errors.New("no chromium")}, nil)
	_, err := scraper.Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no chromium")
}

func TestScrapeWaitsBeforeNavigating(t *testing.T) {
	cfg := testConfig()
	cfg.Delay = 150 * time.Millisecond
	page := &fakePage{views: []fakeView{{url: "https://acme.com/careers"}}}

	start := time.Now()
	_, err := run(t, cfg, page, nil)
	require.NoError(t, err)
	require.False(t, page.navigatedAt.IsZero())
	assert.GreaterOrEqual(t, page.navigatedAt.Sub(start), cfg.Delay)
}

func TestScrapeDelayHonoursCancellation(t *testing.T) {
	cfg := testConfig()
	cfg.Delay = time.Hour
	page := &fakePage{views: []fakeView{{url: "https://acme.com/careers"}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := scraper.Run(ctx, New(cfg, &fakeBrowser{page: page}, nil))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, page.navigated)
}

func TestScrapeUnreadableActiveTokenCountsAsStale(t *testing.T) {
	// links stop changing after the first page and the marker cannot be read
	page := &fakePage{
		tokenErr: errors.New("execution context destroyed"),
		generate: func(i int) fakeView {
			return fakeView{
				url:   fmt.Sprintf("https://acme.com/c?p=%d", i),
				links: []Link{{Href: "/jobs/1", Text: "Role number one"}},
				next:  NextEnabled,
				token: fmt.Sprint(i),
			}
		},
	}

	got, err := run(t, testConfig(), page, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 2, page.clicks)
}
