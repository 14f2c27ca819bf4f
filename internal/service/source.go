package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mdiasanta/req-hunter/internal/domain"
	"github.com/mdiasanta/req-hunter/internal/repository"
)

// SourceInput is the payload for creating a source.
type SourceInput struct {
	Name          string  `json:"name"`
	BaseURL       string  `json:"base_url"`
	Keyword       string  `json:"keyword"`
	QueryParam    string  `json:"query_param"`
	URLPathFilter *string `json:"url_path_filter"`
	IsActive      *bool   `json:"is_active"`
}

// SourceUpdate is a partial source update. Nil fields are left unchanged.
// An empty URLPathFilter clears the filter.
type SourceUpdate struct {
	Name          *string `json:"name"`
	BaseURL       *string `json:"base_url"`
	Keyword       *string `json:"keyword"`
	QueryParam    *string `json:"query_param"`
	URLPathFilter *string `json:"url_path_filter"`
	IsActive      *bool   `json:"is_active"`
	ClearBlocked  bool    `json:"clear_blocked"`
}

// SourceService manages scrape source configuration.
type SourceService struct {
	repo *repository.SourceRepository
	now  func() time.Time
}

// NewSourceService creates a new SourceService.
func NewSourceService(repo *repository.SourceRepository) *SourceService {
	return &SourceService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// List returns all sources ordered by id.
func (s *SourceService) List(ctx context.Context) ([]domain.Source, error) {
	return s.repo.List(ctx)
}

// Get returns the source with id.
func (s *SourceService) Get(ctx context.Context, id uint) (*domain.Source, error) {
	src, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSourceNotFound
		}
		return nil, err
	}
	return src, nil
}

// Create validates in and stores a new source. Sources start active.
func (s *SourceService) Create(ctx context.Context, in SourceInput) (*domain.Source, error) {
	src := &domain.Source{
		Name:          strings.TrimSpace(in.Name),
		BaseURL:       strings.TrimSpace(in.BaseURL),
		Keyword:       strings.TrimSpace(in.Keyword),
		QueryParam:    strings.TrimSpace(in.QueryParam),
		URLPathFilter: normalizeFilter(in.URLPathFilter),
		IsActive:      true,
		CreatedAt:     s.now(),
	}
	if in.IsActive != nil {
		src.IsActive = *in.IsActive
	}
	if src.QueryParam == "" {
		src.QueryParam = domain.DefaultQueryParam
	}
	if err := validateSource(src); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, src); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrSourceExists
		}
		return nil, fmt.Errorf("create source: %w", err)
	}
	return src, nil
}

// Update applies a partial update. ClearBlocked resets the blocked and
// error state and re-activates the source before IsActive is applied.
func (s *SourceService) Update(ctx context.Context, id uint, in SourceUpdate) (*domain.Source, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		src.Name = strings.TrimSpace(*in.Name)
	}
	if in.BaseURL != nil {
		src.BaseURL = strings.TrimSpace(*in.BaseURL)
	}
	if in.Keyword != nil {
		src.Keyword = strings.TrimSpace(*in.Keyword)
	}
	if in.QueryParam != nil {
		src.QueryParam = strings.TrimSpace(*in.QueryParam)
		if src.QueryParam == "" {
			src.QueryParam = domain.DefaultQueryParam
		}
	}
	if in.URLPathFilter != nil {
		src.URLPathFilter = normalizeFilter(in.URLPathFilter)
	}
	if in.ClearBlocked {
		src.ClearBlocked()
	}
	if in.IsActive != nil {
		src.IsActive = *in.IsActive
	}
	if err := validateSource(src); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, src); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrSourceExists
		}
		return nil, fmt.Errorf("update source: %w", err)
	}
	return src, nil
}

// Block marks a source blocked by an operator and deactivates it.
func (s *SourceService) Block(ctx context.Context, id uint, reason string) (*domain.Source, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, invalid("reason", "is required")
	}
	src, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	src.Block(reason, s.now())
	if err := s.repo.Update(ctx, src); err != nil {
		return nil, fmt.Errorf("block source: %w", err)
	}
	return src, nil
}

// Delete removes a source. Jobs it produced are kept.
func (s *SourceService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrSourceNotFound
		}
		return err
	}
	return nil
}

func validateSource(src *domain.Source) error {
	if src.Name == "" {
		return invalid("name", "is required")
	}
	if src.Keyword == "" {
		return invalid("keyword", "is required")
	}
	u, err := url.Parse(src.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("base_url", "must be an absolute http(s) URL")
	}
	return nil
}

func normalizeFilter(f *string) *string {
	if f == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*f)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
