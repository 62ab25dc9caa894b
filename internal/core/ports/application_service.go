package ports

import (
	"context"
	"io"
	"time"

	"github.com/talentdesk/ats-system/internal/core/domain"
)

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	UserID string
	Role   string
}

// SubmitApplicationInput carries everything needed to apply to a job. The
// resume must already be persisted in the artifact store; only its opaque
// reference travels through the service.
type SubmitApplicationInput struct {
	UserID     string
	JobID      string
	ResumeRef  string
	Name       string
	Email      string
	Phone      string
	Education  string
	Experience string
	Skills     string
	CoverNote  string
}

// ApplicationView is an application joined with its posting summary.
type ApplicationView struct {
	Application *domain.Application
	Job         *JobSummary
}

// ListApplicationsInput carries the raw (unclamped) admin listing parameters.
type ListApplicationsInput struct {
	Status   string
	JobID    string
	Search   string
	JobType  string
	DateFrom time.Time
	DateTo   time.Time
	Page     int
	Limit    int
}

// ListApplicationsResult is one bounded, deterministic result page.
type ListApplicationsResult struct {
	Items      []ApplicationView
	Page       int
	Limit      int
	TotalCount int64
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// ResumeDownload is a streamed resume plus the metadata needed to serve it.
// The caller must Close the Content.
type ResumeDownload struct {
	Content     io.ReadCloser
	ContentType string
	Filename    string
	Size        int64 // -1 when unknown
}

// ApplicationService defines the application lifecycle use-cases.
type ApplicationService interface {
	Submit(ctx context.Context, input SubmitApplicationInput) (*domain.Application, error)
	// Transition sets a new status and appends the history entry. Only an
	// admin actor may transition; the role is re-checked here as a
	// defense-in-depth invariant even though routing already enforces it.
	Transition(ctx context.Context, applicationID, newStatus string, actor Actor) (*domain.Application, error)
	ListMine(ctx context.Context, userID string) ([]ApplicationView, error)
	List(ctx context.Context, input ListApplicationsInput) (*ListApplicationsResult, error)
	ApplicationsPerJob(ctx context.Context) ([]JobApplicationCount, error)
	// ExportCSV writes the full applicant list as CSV. Columns: name, email,
	// phone, education, experience, skills, job title, status, applied at.
	ExportCSV(ctx context.Context, w io.Writer) (int, error)
	// DownloadResume streams the stored resume after checking that the actor
	// owns the application or is an admin.
	DownloadResume(ctx context.Context, applicationID string, actor Actor) (*ResumeDownload, error)
}
