package repository

import (
	"context"

	"github.com/mdiasanta/req-hunter/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScheduleRepository owns the singleton scrape_schedule row.
type ScheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Get returns the schedule row, creating it disabled with a 60 minute
// interval on first access.
func (r *ScheduleRepository) Get(ctx context.Context) (*domain.ScrapeSchedule, error) {
	return getOrCreateSchedule(r.db.WithContext(ctx))
}

// Mutate reads the schedule, lets fn change it and saves it, all in one
// transaction. fn returns false to skip the write.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - fn: callback that edits the row in place and reports whether it changed.
//
// Returns:
//   - *domain.ScrapeSchedule: the row as committed (or as read when unchanged).
//   - error: non-nil if the transaction fails.
func (r *ScheduleRepository) Mutate(ctx context.Context, fn func(s *domain.ScrapeSchedule) bool) (*domain.ScrapeSchedule, error) {
	var out *domain.ScrapeSchedule
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sched, err := getOrCreateSchedule(tx)
		if err != nil {
			return err
		}
		if fn(sched) {
			if err := tx.Save(sched).Error; err != nil {
				return err
			}
		}
		out = sched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func getOrCreateSchedule(db *gorm.DB) (*domain.ScrapeSchedule, error) {
	var sched domain.ScrapeSchedule
	err := db.First(&sched, domain.ScheduleID).Error
	if err == nil {
		return &sched, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	sched = domain.ScrapeSchedule{
		ID:              domain.ScheduleID,
		IsEnabled:       false,
		IntervalMinutes: domain.DefaultIntervalMinutes,
	}
	// another caller may have created it in the meantime
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&sched).Error; err != nil {
		return nil, err
	}
	if err := db.First(&sched, domain.ScheduleID).Error; err != nil {
		return nil, err
	}
	return &sched, nil
}
