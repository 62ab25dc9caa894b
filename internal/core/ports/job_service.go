package ports

import (
	"context"

	"github.com/talentdesk/ats-system/internal/core/domain"
)

// CreateJobInput carries the admin-supplied fields for a new posting.
type CreateJobInput struct {
	Title       string
	Description string
	Skills      []string
	Type        string
	Location    string
}

// UpdateJobInput carries optional posting edits; nil pointers mean "leave
// unchanged" so a partial update does not clobber existing fields.
type UpdateJobInput struct {
	Title       *string
	Description *string
	Skills      []string
	Type        *string
	Location    *string
	IsActive    *bool
}

// ListJobsInput carries the public job-board query parameters.
type ListJobsInput struct {
	Type        string
	Location    string
	Search      string
	IncludeAll  bool // admin listing includes inactive postings
	Page        int
	Limit       int
}

// ListJobsResult is the paginated job-board page.
type ListJobsResult struct {
	Jobs       []*domain.Job
	Total      int64
	Page       int
	Limit      int
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// JobService defines use-case operations for job postings.
type JobService interface {
	Create(ctx context.Context, input CreateJobInput) (*domain.Job, error)
	Get(ctx context.Context, id string, includeInactive bool) (*domain.Job, error)
	List(ctx context.Context, input ListJobsInput) (*ListJobsResult, error)
	Update(ctx context.Context, id string, input UpdateJobInput) (*domain.Job, error)
	// Delete removes a posting and cascades to its applications; the number
	// of removed applications is returned so the caller can surface it.
	Delete(ctx context.Context, id string) (int64, error)
}
