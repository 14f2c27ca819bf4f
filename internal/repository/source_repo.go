package repository

import (
	"context"
	"time"

	"github.com/mdiasanta/req-hunter/internal/domain"
	"gorm.io/gorm"
)

// SourceRepository handles source data operations.
type SourceRepository struct {
	db *gorm.DB
}

// NewSourceRepository creates a new SourceRepository.
// Parameters:
//   - db: GORM database handle used for queries.
//
// Returns:
//   - *SourceRepository: repository instance bound to db.
func NewSourceRepository(db *gorm.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// Create inserts a new source record.
func (r *SourceRepository) Create(ctx context.Context, src *domain.Source) error {
	return r.db.WithContext(ctx).Create(src).Error
}

// Update saves every column of an existing source.
func (r *SourceRepository) Update(ctx context.Context, src *domain.Source) error {
	return r.db.WithContext(ctx).Save(src).Error
}

// Delete removes a source by ID. Jobs already scraped from it are kept.
func (r *SourceRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Source{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetByID retrieves a source by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: source ID.
//
// Returns:
//   - *domain.Source: source record if found.
//   - error: gorm.ErrRecordNotFound when missing, other errors on failure.
func (r *SourceRepository) GetByID(ctx context.Context, id uint) (*domain.Source, error) {
	var src domain.Source
	if err := r.db.WithContext(ctx).First(&src, id).Error; err != nil {
		return nil, err
	}
	return &src, nil
}

// List returns all sources ordered by ID.
func (r *SourceRepository) List(ctx context.Context) ([]domain.Source, error) {
	var sources []domain.Source
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&sources).Error; err != nil {
		return nil, err
	}
	return sources, nil
}

// ListRunnable returns active, unblocked sources in stable ID order.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//
// Returns:
//   - []domain.Source: sources eligible for a run.
//   - error: non-nil if the query fails.
func (r *SourceRepository) ListRunnable(ctx context.Context) ([]domain.Source, error) {
	var sources []domain.Source
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND is_blocked = ?", true, false).
		Order("id ASC").
		Find(&sources).Error
	if err != nil {
		return nil, err
	}
	return sources, nil
}

// MarkScraped sets last_scraped_at without touching any other column.
func (r *SourceRepository) MarkScraped(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.Source{}).
		Where("id = ?", id).
		Update("last_scraped_at", at).Error
}
