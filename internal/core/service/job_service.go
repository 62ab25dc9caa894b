package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/talentdesk/ats-system/internal/core/domain"
	"github.com/talentdesk/ats-system/internal/core/ports"
)

const defaultJobPageLimit = 6

// JobService implements posting management and the public job board.
type JobService struct {
	jobs   ports.JobRepository
	apps   ports.ApplicationRepository
	logger zerolog.Logger
}

func NewJobService(jobs ports.JobRepository, apps ports.ApplicationRepository, logger zerolog.Logger) *JobService {
	return &JobService{jobs: jobs, apps: apps, logger: logger}
}

// NormalizeSkills accepts skills either as a list or as one comma-separated
// string and returns a trimmed list with empties dropped.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		for _, part := range strings.Split(s, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

func (s *JobService) Create(ctx context.Context, input ports.CreateJobInput) (*domain.Job, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if input.Description == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrValidation)
	}
	if input.Location == "" {
		return nil, fmt.Errorf("%w: location is required", domain.ErrValidation)
	}
	if !domain.ValidJobType(input.Type) {
		return nil, fmt.Errorf("%w: type must be Internship or Job", domain.ErrValidation)
	}
	skills := NormalizeSkills(input.Skills)
	if len(skills) == 0 {
		return nil, fmt.Errorf("%w: at least one skill is required", domain.ErrValidation)
	}

	now := time.Now().UTC()
	job := &domain.Job{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Skills:      skills,
		Type:        domain.JobType(input.Type),
		Location:    input.Location,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.jobs.Create(ctx, job)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("job_id", created.ID).Str("title", created.Title).Msg("job created")
	return created, nil
}

// Get returns a posting. Public callers do not see deactivated postings;
// admins pass includeInactive.
func (s *JobService) Get(ctx context.Context, id string, includeInactive bool) (*domain.Job, error) {
	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !job.IsActive && !includeInactive {
		return nil, domain.ErrJobNotFound
	}
	return job, nil
}

// List returns one page of postings, newest first.
func (s *JobService) List(ctx context.Context, input ports.ListJobsInput) (*ports.ListJobsResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultJobPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	jobs, total, err := s.jobs.List(ctx, ports.ListJobsFilter{
		Type:       input.Type,
		Location:   input.Location,
		Search:     input.Search,
		OnlyActive: !input.IncludeAll,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListJobsResult{
		Jobs:       jobs,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}

func (s *JobService) Update(ctx context.Context, id string, input ports.UpdateJobInput) (*domain.Job, error) {
	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		job.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		job.Description = *input.Description
	}
	if input.Skills != nil {
		job.Skills = NormalizeSkills(input.Skills)
	}
	if input.Type != nil {
		if !domain.ValidJobType(*input.Type) {
			return nil, fmt.Errorf("%w: type must be Internship or Job", domain.ErrValidation)
		}
		job.Type = domain.JobType(*input.Type)
	}
	if input.Location != nil {
		job.Location = *input.Location
	}
	if input.IsActive != nil {
		job.IsActive = *input.IsActive
	}
	job.UpdatedAt = time.Now().UTC()

	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Delete removes a posting and every application referencing it. The cascade
// keeps the applications collection free of dangling job references; the
// removed count is logged and returned rather than silently ignored.
func (s *JobService) Delete(ctx context.Context, id string) (int64, error) {
	if _, err := s.jobs.FindByID(ctx, id); err != nil {
		return 0, err
	}
	if err := s.jobs.Delete(ctx, id); err != nil {
		return 0, err
	}

	removed, err := s.apps.DeleteByJob(ctx, id)
	if err != nil {
		// The posting is gone but its applications are not: surface the
		// inconsistency instead of masking it.
		s.logger.Error().Err(err).Str("job_id", id).Msg("cascade delete of applications failed")
		return 0, err
	}

	s.logger.Info().Str("job_id", id).Int64("applications_removed", removed).Msg("job deleted")
	return removed, nil
}
