package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// ============================================
// Tracing fields (propagated through context)
// ============================================

const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldRunID identifies one scrape run across all of its sources
	FieldRunID = "run_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldSource is the source name being scraped
	FieldSource = "source"

	// FieldStrategy is the extraction strategy (heuristic, workday)
	FieldStrategy = "strategy"

	// FieldTrigger tells what started a run (schedule, api, cli)
	FieldTrigger = "trigger"
)

// ============================================
// Metric fields (Entry level)
// ============================================

const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldPage       = "page"
	FieldStatus     = "status"
	FieldSize       = "size"
)
