package domain

import (
	"errors"
	"fmt"
	"time"
)

// JobStatus is the operator-facing state of a scraped posting.
type JobStatus string

const (
	JobStatusNew      JobStatus = "new"
	JobStatusSeen     JobStatus = "seen"
	JobStatusApplied  JobStatus = "applied"
	JobStatusRejected JobStatus = "rejected"
	JobStatusIgnored  JobStatus = "ignored"
)

// ErrInvalidJobStatus is returned by ParseJobStatus for unknown values.
var ErrInvalidJobStatus = errors.New("invalid job status")

// ParseJobStatus validates s as a JobStatus.
func ParseJobStatus(s string) (JobStatus, error) {
	switch st := JobStatus(s); st {
	case JobStatusNew, JobStatusSeen, JobStatusApplied, JobStatusRejected, JobStatusIgnored:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidJobStatus, s)
	}
}

// Job is a deduplicated scraped posting. URL is the sole dedup key.
type Job struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(512);not null" json:"title"`
	Company     string    `gorm:"type:varchar(255);not null" json:"company"`
	Location    *string   `gorm:"type:varchar(255)" json:"location"`
	URL         string    `gorm:"type:varchar(2048);not null;uniqueIndex" json:"url"`
	Description *string   `gorm:"type:text" json:"description"`
	Source      string    `gorm:"type:varchar(255);not null;index" json:"source"`
	Status      JobStatus `gorm:"type:varchar(32);not null;default:new;index" json:"status"`
	ScrapedAt   time.Time `gorm:"not null" json:"scraped_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Job.
func (Job) TableName() string {
	return "jobs"
}
