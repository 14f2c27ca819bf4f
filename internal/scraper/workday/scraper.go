package workday

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mdiasanta/req-hunter/internal/logger"
	"github.com/mdiasanta/req-hunter/internal/scraper"
)

const pageSize = 20

// Config describes one Workday-hosted source.
type Config struct {
	SourceName string
	BoardURL   string
	Keyword    string
	Timeout    time.Duration
	Delay      time.Duration
	UserAgent  string
}

// Scraper reads a Workday board through its JSON search API. No browser involved.
type Scraper struct {
	cfg    Config
	target Target
	client *resty.Client
}

type searchRequest struct {
	AppliedFacets map[string]interface{} `json:"appliedFacets"`
	Limit         int                    `json:"limit"`
	Offset        int                    `json:"offset"`
	SearchText    string                 `json:"searchText"`
}

type searchResponse struct {
	Total       int       `json:"total"`
	JobPostings []posting `json:"jobPostings"`
}

type posting struct {
	Title         string `json:"title"`
	ExternalPath  string `json:"externalPath"`
	LocationsText string `json:"locationsText"`
}

// New creates a Workday scraper.
func New(cfg Config) *Scraper {
	if cfg.UserAgent == "" {
		cfg.UserAgent = scraper.DefaultUserAgent
	}
	return &Scraper{cfg: cfg}
}

// Kind implements scraper.Strategy.
func (s *Scraper) Kind() scraper.Kind {
	return scraper.KindWorkday
}

// Open resolves the API endpoint and builds the HTTP client.
func (s *Scraper) Open(ctx context.Context) error {
	target, err := ParseBoardURL(s.cfg.BoardURL)
	if err != nil {
		return err
	}
	s.target = target

	s.client = resty.New().
		SetTimeout(s.cfg.Timeout).
		SetHeaders(map[string]string{
			"User-Agent":   s.cfg.UserAgent,
			"Accept":       "application/json",
			"Content-Type": "application/json",
			// same Referer the board's own frontend sends
			"Referer": s.cfg.BoardURL,
		})
	return nil
}

// Close releases pooled connections. Safe to call more than once.
func (s *Scraper) Close() error {
	if s.client == nil {
		return nil
	}
	s.client.GetClient().CloseIdleConnections()
	s.client = nil
	return nil
}

// Scrape pages through the search results until total is reached.
func (s *Scraper) Scrape(ctx context.Context) ([]scraper.Candidate, error) {
	if s.client == nil {
		return nil, errors.New("workday scraper used without an open session")
	}

	endpoint := s.target.Endpoint()
	var candidates []scraper.Candidate
	offset := 0

	for {
		var page searchResponse
		resp, err := s.client.R().
			SetContext(ctx).
			SetBody(searchRequest{
				AppliedFacets: map[string]interface{}{},
				Limit:         pageSize,
				Offset:        offset,
				SearchText:    s.cfg.Keyword,
			}).
			SetResult(&page).
			ForceContentType("application/json").
			Post(endpoint)
		if err != nil {
			return nil, fmt.Errorf("workday search request: %w", err)
		}
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("workday search returned %s for %s", resp.Status(), endpoint)
		}

		if len(page.JobPostings) == 0 {
			break
		}
		for _, p := range page.JobPostings {
			candidates = append(candidates, s.toCandidate(p))
		}
		logger.With(logger.Fields{
			logger.FieldCount: len(page.JobPostings),
			"offset":          offset,
			"total":           page.Total,
		}).Debug(ctx, "Fetched Workday page")

		offset += pageSize
		if offset >= page.Total {
			break
		}

		if err := scraper.Sleep(ctx, s.cfg.Delay); err != nil {
			return nil, err
		}
	}

	return candidates, nil
}

func (s *Scraper) toCandidate(p posting) scraper.Candidate {
	title := p.Title
	if title == "" {
		title = "Unknown"
	}
	return scraper.Candidate{
		Title:    title,
		Company:  s.cfg.SourceName,
		Location: p.LocationsText,
		URL:      s.target.APIBase + p.ExternalPath,
		Source:   s.cfg.SourceName,
	}
}
