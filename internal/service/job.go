package service

import (
	"context"

	"github.com/mdiasanta/req-hunter/internal/domain"
	"github.com/mdiasanta/req-hunter/internal/repository"
)

const (
	DefaultJobListLimit = 50
	MaxJobListLimit     = 200
)

// JobQuery filters the job list. Empty strings match everything.
type JobQuery struct {
	Status string
	Source string
	Limit  int
	Offset int
}

// JobList is one page of jobs with the unpaged total.
type JobList struct {
	Total  int64        `json:"total"`
	Items  []domain.Job `json:"items"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// JobService serves stored postings to operators.
type JobService struct {
	repo *repository.JobRepository
}

// NewJobService creates a new JobService.
func NewJobService(repo *repository.JobRepository) *JobService {
	return &JobService{repo: repo}
}

// List returns jobs matching q, newest first.
func (s *JobService) List(ctx context.Context, q JobQuery) (*JobList, error) {
	if q.Limit == 0 {
		q.Limit = DefaultJobListLimit
	}
	if q.Limit < 1 || q.Limit > MaxJobListLimit {
		return nil, invalid("limit", "must be between 1 and %d", MaxJobListLimit)
	}
	if q.Offset < 0 {
		return nil, invalid("offset", "must not be negative")
	}

	filter := repository.JobFilter{Source: q.Source, Limit: q.Limit, Offset: q.Offset}
	if q.Status != "" {
		st, err := domain.ParseJobStatus(q.Status)
		if err != nil {
			return nil, invalid("status", "unknown status %q", q.Status)
		}
		filter.Status = &st
	}

	jobs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}
	return &JobList{Total: total, Items: jobs, Limit: q.Limit, Offset: q.Offset}, nil
}

// Get returns the job with id.
func (s *JobService) Get(ctx context.Context, id uint) (*domain.Job, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// UpdateStatus moves a job to status.
func (s *JobService) UpdateStatus(ctx context.Context, id uint, status string) (*domain.Job, error) {
	st, err := domain.ParseJobStatus(status)
	if err != nil {
		return nil, invalid("status", "unknown status %q", status)
	}
	job, err := s.repo.UpdateStatus(ctx, id, st)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}
