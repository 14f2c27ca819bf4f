package repository

import (
	"context"
	"time"

	"github.com/mdiasanta/req-hunter/internal/domain"
	"gorm.io/gorm"
)

// JobFilter narrows a job listing.
type JobFilter struct {
	Status *domain.JobStatus
	Source string
	Limit  int
	Offset int
}

// JobRepository handles job data operations.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
// Parameters:
//   - db: GORM database handle used for queries.
//
// Returns:
//   - *JobRepository: repository instance bound to db.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job record.
// A URL that is already stored fails with a unique violation, see IsUniqueViolation.
func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// ExistsByURL checks if a job with exactly this URL is stored.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - url: canonical job URL.
//
// Returns:
//   - bool: true if a record exists.
//   - error: non-nil if the lookup fails.
func (r *JobRepository) ExistsByURL(ctx context.Context, url string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Job{}).Where("url = ?", url).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByID retrieves a job by its ID.
func (r *JobRepository) GetByID(ctx context.Context, id uint) (*domain.Job, error) {
	var job domain.Job
	if err := r.db.WithContext(ctx).First(&job, id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// List returns jobs newest first, filtered and paginated.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - filter: optional status/source filter plus limit and offset.
//
// Returns:
//   - []domain.Job: matching jobs.
//   - int64: total matches ignoring limit/offset.
//   - error: non-nil if the query fails.
func (r *JobRepository) List(ctx context.Context, filter JobFilter) ([]domain.Job, int64, error) {
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&domain.Job{})
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.Source != "" {
			query = query.Where("source = ?", filter.Source)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []domain.Job
	err := scoped().
		Order("scraped_at DESC").
		Order("id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// UpdateStatus changes the status of one job.
func (r *JobRepository) UpdateStatus(ctx context.Context, id uint, status domain.JobStatus) (*domain.Job, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

// Count returns the number of stored jobs.
func (r *JobRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Job{}).Count(&count).Error
	return count, err
}
