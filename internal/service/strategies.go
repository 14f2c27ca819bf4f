package service

import (
	"github.com/mdiasanta/req-hunter/internal/domain"
	"github.com/mdiasanta/req-hunter/internal/scraper"
	"github.com/mdiasanta/req-hunter/internal/scraper/heuristic"
	"github.com/mdiasanta/req-hunter/internal/scraper/workday"
)

// StrategyFactory builds a fresh extraction strategy for a source.
type StrategyFactory interface {
	ForSource(src *domain.Source) scraper.Strategy
}

// DefaultStrategyFactory picks Workday or heuristic by the source URL.
type DefaultStrategyFactory struct {
	settings  scraper.Settings
	browser   heuristic.Browser
	snapshots heuristic.SnapshotStore
}

// NewStrategyFactory creates the production strategy factory.
// Parameters:
//   - settings: timeouts, delays and browser options shared by all sources.
//   - browser: rendering session factory for the heuristic strategy.
//   - snapshots: optional store for blocked-page screenshots, may be nil.
//
// Returns:
//   - *DefaultStrategyFactory: factory for the dispatcher.
func NewStrategyFactory(settings scraper.Settings, browser heuristic.Browser, snapshots heuristic.SnapshotStore) *DefaultStrategyFactory {
	return &DefaultStrategyFactory{settings: settings, browser: browser, snapshots: snapshots}
}

// ForSource implements StrategyFactory.
func (f *DefaultStrategyFactory) ForSource(src *domain.Source) scraper.Strategy {
	if scraper.KindFor(src.BaseURL) == scraper.KindWorkday {
		return workday.New(workday.Config{
			SourceName: src.Name,
			BoardURL:   src.BaseURL,
			Keyword:    src.Keyword,
			Timeout:    f.settings.Timeout,
			Delay:      f.settings.Delay,
			UserAgent:  f.settings.UserAgent,
		})
	}
	return heuristic.New(heuristic.Config{
		SourceName:    src.Name,
		BaseURL:       src.BaseURL,
		Keyword:       src.Keyword,
		QueryParam:    src.EffectiveQueryParam(),
		PathFilter:    src.PathFilter(),
		Delay:         f.settings.Delay,
		SettleTimeout: f.settings.SettleTimeout,
		MaxPages:      f.settings.MaxPages,
	}, f.browser, f.snapshots)
}
