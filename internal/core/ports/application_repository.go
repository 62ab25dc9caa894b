package ports

import (
	"context"
	"time"

	"github.com/talentdesk/ats-system/internal/core/domain"
)

// ListApplicationsFilter carries all query parameters for the admin listing.
// JobIDs is the resolved id set for a job-type filter; a non-nil empty slice
// means the type matched no jobs and the result page must be empty.
type ListApplicationsFilter struct {
	Status   string
	JobID    string
	Search   string // case-insensitive substring on applicant name, email, skills
	JobIDs   []string
	DateFrom time.Time // inclusive bound on applied_at
	DateTo   time.Time // inclusive bound on applied_at
	Page     int       // 1-based, already normalized by the service
	Limit    int       // already clamped by the service
}

// JobApplicationCount is one analytics row: a job with at least one application.
type JobApplicationCount struct {
	JobID             string `json:"job_id" bson:"_id"`
	JobTitle          string `json:"job_title" bson:"job_title"`
	TotalApplications int64  `json:"total_applications" bson:"total_applications"`
}

// ApplicationRepository defines persistence operations for applications.
type ApplicationRepository interface {
	// Create inserts the application. A (user_id, job_id) uniqueness
	// violation is reported as domain.ErrDuplicateApplication; the unique
	// index makes concurrent duplicate submissions race-safe.
	Create(ctx context.Context, app *domain.Application) (*domain.Application, error)
	FindByID(ctx context.Context, id string) (*domain.Application, error)
	// FindByUser returns all of one user's applications, most recent first.
	FindByUser(ctx context.Context, userID string) ([]*domain.Application, error)
	// List returns one result page plus the total match count. Ordering is
	// applied_at descending with id as the deterministic tie-breaker.
	List(ctx context.Context, filter ListApplicationsFilter) ([]*domain.Application, int64, error)
	// UpdateStatus atomically sets the status field and appends the matching
	// history entry in a single document write, returning the updated doc.
	UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus, at time.Time) (*domain.Application, error)
	// CountPerJob groups applications by job and joins the job title. Jobs
	// with zero applications are absent. Rows are ordered by count
	// descending, then job id, so the output is deterministic.
	CountPerJob(ctx context.Context) ([]JobApplicationCount, error)
	// FindAll returns every application for the CSV export, most recent first.
	FindAll(ctx context.Context) ([]*domain.Application, error)
	// DeleteByJob removes all applications referencing a job and reports how
	// many were removed. Called when a posting is hard-deleted.
	DeleteByJob(ctx context.Context, jobID string) (int64, error)
}
