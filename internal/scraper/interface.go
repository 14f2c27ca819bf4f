package scraper

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/mdiasanta/req-hunter/internal/logger"
)

// Candidate is one posting extracted from a source, before deduplication.
type Candidate struct {
	Title       string
	Company     string
	Location    string // empty when unknown
	URL         string // absolute
	Description string // empty when unknown
	Source      string
}

// Strategy extracts candidate postings for one source.
// Open acquires the strategy's session (browser or HTTP client), Scrape uses
// it, and Close releases it. Close must be safe to call after a failed Open.
type Strategy interface {
	// Kind names the strategy for logs and metrics.
	Kind() Kind

	// Open acquires the network or rendering session.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	// Returns:
	//   - error: non-nil if the session cannot be created.
	Open(ctx context.Context) error

	// Scrape extracts all candidates reachable from the source.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	// Returns:
	//   - []Candidate: unique candidates in discovery order.
	//   - error: non-nil when the source could not be scraped.
	Scrape(ctx context.Context) ([]Candidate, error)

	// Close releases the session.
	Close() error
}

// Run opens s, scrapes it and always closes it, whatever the outcome.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - s: strategy to execute.
//
// Returns:
//   - []Candidate: extracted candidates.
//   - error: the Open or Scrape error, if any.
func Run(ctx context.Context, s Strategy) ([]Candidate, error) {
	defer func() {
		if err := s.Close(); err != nil {
			logger.CtxWarn(ctx, "Failed to release %s session: %v", s.Kind(), err)
		}
	}()

	if err := s.Open(ctx); err != nil {
		return nil, err
	}
	return s.Scrape(ctx)
}

// Kind tags the two extraction strategies.
type Kind string

const (
	KindHeuristic Kind = "heuristic"
	KindWorkday   Kind = "workday"
)

// workdayHostSuffix identifies boards hosted on the Workday ATS.
const workdayHostSuffix = "myworkdayjobs.com"

// KindFor picks the strategy for a source from its base URL alone.
func KindFor(baseURL string) Kind {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return KindHeuristic
	}
	host := strings.ToLower(u.Hostname())
	if host == workdayHostSuffix || strings.HasSuffix(host, "."+workdayHostSuffix) {
		return KindWorkday
	}
	return KindHeuristic
}

// Settings are the process-wide scraper inputs shared by both strategies.
type Settings struct {
	Timeout       time.Duration // navigation / request timeout
	Delay         time.Duration // politeness delay
	Headless      bool
	MaxPages      int
	SettleTimeout time.Duration
	UserAgent     string
	BrowserBin    string
}

// DefaultUserAgent is sent by both strategies unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
