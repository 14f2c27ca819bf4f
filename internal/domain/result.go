package domain

import "fmt"

// ScrapeResult is the outcome of one run. It is returned to the caller, never stored.
type ScrapeResult struct {
	SourcesProcessed int      `json:"sources_processed"`
	JobsFound        int      `json:"jobs_found"`
	JobsNew          int      `json:"jobs_new"`
	Errors           []string `json:"errors"`
}

// NewScrapeResult returns an empty result with a non-nil error list.
func NewScrapeResult() *ScrapeResult {
	return &ScrapeResult{Errors: []string{}}
}

// AddError records a source-scoped failure as "[source] message".
func (r *ScrapeResult) AddError(sourceName string, err error) {
	r.Errors = append(r.Errors, FormatSourceError(sourceName, err))
}

// FormatSourceError renders a per-source failure for operators.
func FormatSourceError(sourceName string, err error) string {
	return fmt.Sprintf("[%s] %s", sourceName, err.Error())
}
