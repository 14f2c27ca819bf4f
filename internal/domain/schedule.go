package domain

import "time"

// ScheduleID is the primary key of the singleton schedule row.
const ScheduleID uint = 1

// DefaultIntervalMinutes is the interval of a freshly created schedule.
const DefaultIntervalMinutes = 60

// ScrapeSchedule is the singleton control record for automatic runs.
type ScrapeSchedule struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	IsEnabled       bool       `gorm:"not null" json:"is_enabled"`
	IntervalMinutes int        `gorm:"not null;default:60" json:"interval_minutes"`
	LastRunAt       *time.Time `json:"last_run_at"`
	NextRunAt       *time.Time `json:"next_run_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName returns the database table name for ScrapeSchedule.
func (ScrapeSchedule) TableName() string {
	return "scrape_schedule"
}
