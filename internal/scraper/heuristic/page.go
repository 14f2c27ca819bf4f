package heuristic

import (
	"context"
	"io"
	"time"
)

// Browser starts rendering sessions. Every call returns a page in a fresh,
// isolated browser context so no cookies or storage leak between sources.
type Browser interface {
	NewSession(ctx context.Context) (Page, error)
}

// Link is an anchor as rendered: raw href attribute and visible text.
type Link struct {
	Href string
	Text string
}

// NextState describes the pagination "Next" control on the current page.
type NextState int

const (
	NextAbsent NextState = iota
	NextDisabled
	NextEnabled
)

func (s NextState) String() string {
	switch s {
	case NextDisabled:
		return "disabled"
	case NextEnabled:
		return "enabled"
	default:
		return "absent"
	}
}

// Page is the subset of browser automation the scraper needs.
// Close tears down the whole session, not only the tab.
type Page interface {
	Navigate(url string) error
	// WaitSettled waits for network quiescence, at most timeout.
	WaitSettled(timeout time.Duration) error
	URL() (string, error)
	Title() (string, error)
	BodyText() (string, error)
	Links() ([]Link, error)
	Next() (NextState, error)
	ClickNext() error
	// ActiveToken identifies the active pagination page, e.g. its indicator text.
	ActiveToken() (string, error)
	Screenshot() ([]byte, error)
	Close() error
}

// SnapshotStore receives screenshots of pages that were blocked.
type SnapshotStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	GetURL(key string) string
}
