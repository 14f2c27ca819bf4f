package heuristic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mdiasanta/req-hunter/internal/logger"
	"github.com/mdiasanta/req-hunter/internal/scraper"
)

// ErrBlocked is returned when the page shows an anti-bot challenge.
var ErrBlocked = errors.New("blocked by anti-bot challenge")

const (
	defaultMaxPages      = 30
	defaultSettleTimeout = 10 * time.Second
	// consecutive pages without progress before pagination is abandoned
	staleLimit = 2
)

// Config describes one source for the heuristic scraper.
type Config struct {
	SourceName    string
	BaseURL       string
	Keyword       string
	QueryParam    string
	PathFilter    string
	Delay         time.Duration
	SettleTimeout time.Duration
	MaxPages      int
}

// Scraper extracts job links from an arbitrary board by rendering it and
// following its "Next" control.
type Scraper struct {
	cfg       Config
	browser   Browser
	snapshots SnapshotStore
	page      Page
}

// New creates a heuristic scraper.
// Parameters:
//   - cfg: source-specific settings; zero MaxPages/SettleTimeout use defaults.
//   - browser: rendering session factory.
//   - snapshots: optional store for blocked-page screenshots (nil disables).
//
// Returns:
//   - *Scraper: scraper ready for scraper.Run.
func New(cfg Config, browser Browser, snapshots SnapshotStore) *Scraper {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}
	if cfg.SettleTimeout <= 0 {
		cfg.SettleTimeout = defaultSettleTimeout
	}
	if cfg.QueryParam == "" {
		cfg.QueryParam = "q"
	}
	return &Scraper{cfg: cfg, browser: browser, snapshots: snapshots}
}

// Kind implements scraper.Strategy.
func (s *Scraper) Kind() scraper.Kind {
	return scraper.KindHeuristic
}

// Open starts an isolated rendering session.
func (s *Scraper) Open(ctx context.Context) error {
	page, err := s.browser.NewSession(ctx)
	if err != nil {
		return fmt.Errorf("start browser session: %w", err)
	}
	s.page = page
	return nil
}

// Close tears the rendering session down. Safe to call more than once.
func (s *Scraper) Close() error {
	if s.page == nil {
		return nil
	}
	err := s.page.Close()
	s.page = nil
	return err
}

// Scrape walks the search results page by page and returns every unique job link.
func (s *Scraper) Scrape(ctx context.Context) ([]scraper.Candidate, error) {
	if s.page == nil {
		return nil, errors.New("heuristic scraper used without an open session")
	}

	target := BuildSearchURL(s.cfg.BaseURL, s.cfg.QueryParam, s.cfg.Keyword)
	if err := scraper.Sleep(ctx, s.cfg.Delay); err != nil {
		return nil, err
	}
	logger.CtxDebug(ctx, "Navigating to %s", target)
	if err := s.page.Navigate(target); err != nil {
		return nil, fmt.Errorf("navigate to %s: %w", target, err)
	}
	s.settle(ctx)

	seen := make(map[string]struct{})
	var candidates []scraper.Candidate
	stale := 0

	for pageNum := 1; pageNum <= s.cfg.MaxPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := s.checkBlocked(ctx); err != nil {
			return nil, err
		}

		found, err := s.collect(seen)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, found...)
		logger.With(logger.Fields{
			logger.FieldPage:  pageNum,
			logger.FieldCount: len(found),
		}).Debug(ctx, "Collected job links")

		if len(found) == 0 {
			stale++
		} else {
			stale = 0
		}

		next, err := s.page.Next()
		if err != nil || next != NextEnabled {
			break
		}

		before := s.activeToken(ctx)
		if err := s.page.ClickNext(); err != nil {
			logger.CtxWarn(ctx, "Next control did not accept a click on page %d: %v", pageNum, err)
			break
		}
		s.settle(ctx)
		after := s.activeToken(ctx)
		if after == before {
			stale++
		}

		if stale >= staleLimit {
			logger.CtxInfo(ctx, "Pagination stalled after page %d, stopping", pageNum)
			break
		}
	}

	return candidates, nil
}

// activeToken reads the pagination marker; a failed read yields "" and
// therefore counts as no progress.
func (s *Scraper) activeToken(ctx context.Context) string {
	token, err := s.page.ActiveToken()
	if err != nil {
		logger.CtxDebug(ctx, "Failed to read active page marker: %v", err)
		return ""
	}
	return token
}

// settle waits for network quiescence; a timeout only gets logged.
func (s *Scraper) settle(ctx context.Context) {
	if err := s.page.WaitSettled(s.cfg.SettleTimeout); err != nil {
		logger.CtxDebug(ctx, "Page did not settle within %s: %v", s.cfg.SettleTimeout, err)
	}
}

func (s *Scraper) checkBlocked(ctx context.Context) error {
	title, err := s.page.Title()
	if err != nil {
		return fmt.Errorf("read page title: %w", err)
	}
	body, err := s.page.BodyText()
	if err != nil {
		return fmt.Errorf("read page text: %w", err)
	}
	marker, blocked := DetectBlock(title, body)
	if !blocked {
		return nil
	}
	s.saveSnapshot(ctx)
	return fmt.Errorf("%w (matched %q)", ErrBlocked, marker)
}

// collect returns the candidates on the current page not yet in seen.
func (s *Scraper) collect(seen map[string]struct{}) ([]scraper.Candidate, error) {
	pageURL, err := s.page.URL()
	if err != nil {
		return nil, fmt.Errorf("read page url: %w", err)
	}
	links, err := s.page.Links()
	if err != nil {
		return nil, fmt.Errorf("read links: %w", err)
	}

	var found []scraper.Candidate
	for _, link := range links {
		if !IsJobLink(link.Href, s.cfg.PathFilter) {
			continue
		}
		title := strings.TrimSpace(link.Text)
		if !AcceptTitle(title) {
			continue
		}
		abs, ok := ResolveURL(pageURL, link.Href)
		if !ok {
			continue
		}
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		found = append(found, scraper.Candidate{
			Title:   title,
			Company: s.cfg.SourceName,
			URL:     abs,
			Source:  s.cfg.SourceName,
		})
	}
	return found, nil
}

func (s *Scraper) saveSnapshot(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	shot, err := s.page.Screenshot()
	if err != nil {
		logger.CtxWarn(ctx, "Failed to capture blocked page: %v", err)
		return
	}
	key := fmt.Sprintf("snapshots/%s/%d.png", slug(s.cfg.SourceName), time.Now().Unix())
	if err := s.snapshots.Upload(ctx, key, bytes.NewReader(shot), int64(len(shot)), "image/png"); err != nil {
		logger.CtxWarn(ctx, "Failed to upload blocked page snapshot: %v", err)
		return
	}
	logger.CtxInfo(ctx, "Blocked page snapshot stored at %s", s.snapshots.GetURL(key))
}

func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
