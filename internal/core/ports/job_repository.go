package ports

import (
	"context"

	"github.com/talentdesk/ats-system/internal/core/domain"
)

// ListJobsFilter carries the query parameters for the public job board.
type ListJobsFilter struct {
	Type       string // optional: exact match, case-insensitive
	Location   string // optional: substring match, case-insensitive
	Search     string // optional: substring match on title or description
	OnlyActive bool   // public listing hides deactivated postings
	Page       int    // 1-based
	Limit      int    // capped by the service layer
}

// JobRepository defines persistence operations for job postings.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) (*domain.Job, error)
	FindByID(ctx context.Context, id string) (*domain.Job, error)
	// FindIDsByType returns the ids of all jobs whose type matches. Used by
	// the application query engine to resolve a job-type filter.
	FindIDsByType(ctx context.Context, jobType string) ([]string, error)
	// FindSummaries resolves job ids to lightweight summaries for joining
	// onto application views and exports. Unknown ids are simply absent.
	FindSummaries(ctx context.Context, ids []string) (map[string]JobSummary, error)
	List(ctx context.Context, filter ListJobsFilter) ([]*domain.Job, int64, error)
	Update(ctx context.Context, job *domain.Job) error
	Delete(ctx context.Context, id string) error
}

// JobSummary is the subset of posting data joined onto application views.
type JobSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Location string `json:"location"`
}
