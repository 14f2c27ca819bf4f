package domain

import "time"

// DefaultQueryParam is the search query parameter used when a source does not set one.
const DefaultQueryParam = "q"

// Source represents a site scraped for job postings.
type Source struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	BaseURL       string     `gorm:"type:varchar(2048);not null" json:"base_url"`
	Keyword       string     `gorm:"type:varchar(255);not null" json:"keyword"`
	QueryParam    string     `gorm:"type:varchar(64);not null;default:q" json:"query_param"`
	URLPathFilter *string    `gorm:"type:varchar(512)" json:"url_path_filter"`
	IsActive      bool       `gorm:"not null" json:"is_active"`
	IsBlocked     bool       `gorm:"not null" json:"is_blocked"`
	BlockedReason *string    `gorm:"type:text" json:"blocked_reason"`
	BlockedAt     *time.Time `json:"blocked_at"`
	LastError     *string    `gorm:"type:text" json:"last_error"`
	LastScrapedAt *time.Time `json:"last_scraped_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// TableName returns the database table name for Source.
func (Source) TableName() string {
	return "sources"
}

// PathFilter returns the configured URL path filter, or "" when unset.
func (s *Source) PathFilter() string {
	if s.URLPathFilter == nil {
		return ""
	}
	return *s.URLPathFilter
}

// EffectiveQueryParam returns the query parameter name, defaulting to "q".
func (s *Source) EffectiveQueryParam() string {
	if s.QueryParam == "" {
		return DefaultQueryParam
	}
	return s.QueryParam
}

// Block marks the source blocked with reason and deactivates it.
func (s *Source) Block(reason string, at time.Time) {
	s.IsBlocked = true
	s.IsActive = false
	s.BlockedReason = &reason
	s.BlockedAt = &at
}

// ClearBlocked resets blocked and error state and re-activates the source.
func (s *Source) ClearBlocked() {
	s.IsBlocked = false
	s.BlockedReason = nil
	s.BlockedAt = nil
	s.LastError = nil
	s.IsActive = true
}
