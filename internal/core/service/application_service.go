package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/talentdesk/ats-system/internal/api/metrics"
	"github.com/talentdesk/ats-system/internal/core/domain"
	"github.com/talentdesk/ats-system/internal/core/ports"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// ApplicationService implements the application lifecycle: submission,
// status transitions with history, filtered listings, analytics, and export.
type ApplicationService struct {
	apps         ports.ApplicationRepository
	jobs         ports.JobRepository
	resumes      ports.ResumeStore
	publisher    ports.StatusChangePublisher
	lockTerminal bool
	logger       zerolog.Logger
}

func NewApplicationService(
	apps ports.ApplicationRepository,
	jobs ports.JobRepository,
	resumes ports.ResumeStore,
	publisher ports.StatusChangePublisher,
	lockTerminal bool,
	logger zerolog.Logger,
) *ApplicationService {
	return &ApplicationService{
		apps:         apps,
		jobs:         jobs,
		resumes:      resumes,
		publisher:    publisher,
		lockTerminal: lockTerminal,
		logger:       logger,
	}
}

// Submit validates and creates a new application with status Applied and a
// single-entry history. The (user, job) uniqueness invariant is enforced by
// the repository's unique index, so a concurrent duplicate loses cleanly
// with domain.ErrDuplicateApplication.
func (s *ApplicationService) Submit(ctx context.Context, input ports.SubmitApplicationInput) (*domain.Application, error) {
	if err := validateSnapshot(input); err != nil {
		return nil, err
	}
	if input.ResumeRef == "" {
		return nil, fmt.Errorf("%w: resume is required", domain.ErrValidation)
	}

	job, err := s.jobs.FindByID(ctx, input.JobID)
	if err != nil {
		return nil, err
	}
	if !job.IsActive {
		return nil, domain.ErrJobClosed
	}

	now := time.Now().UTC()
	app := &domain.Application{
		UserID:    input.UserID,
		JobID:     input.JobID,
		ResumeRef: input.ResumeRef,
		Applicant: domain.ApplicantSnapshot{
			Name:       input.Name,
			Email:      input.Email,
			Phone:      input.Phone,
			Education:  input.Education,
			Experience: input.Experience,
			Skills:     input.Skills,
			CoverNote:  input.CoverNote,
		},
		Status:        domain.StatusApplied,
		StatusHistory: []domain.StatusHistoryEntry{{Status: domain.StatusApplied, ChangedAt: now}},
		AppliedAt:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.apps.Create(ctx, app)
	if err != nil {
		return nil, err
	}

	metrics.ApplicationsSubmittedTotal.WithLabelValues(string(job.Type)).Inc()

	s.logger.Info().
		Str("application_id", created.ID).
		Str("user_id", created.UserID).
		Str("job_id", created.JobID).
		Msg("application submitted")

	return created, nil
}

func validateSnapshot(in ports.SubmitApplicationInput) error {
	required := []struct {
		field, value string
	}{
		{"name", in.Name},
		{"email", in.Email},
		{"phone", in.Phone},
		{"education", in.Education},
		{"experience", in.Experience},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("%w: %s is required", domain.ErrValidation, f.field)
		}
	}
	return nil
}

// Transition sets a new status and appends the matching history entry in one
// atomic document write, then emits a post-commit status-change event. The
// notification is best-effort: the transition is durable before the event is
// published and a delivery failure never rolls it back.
func (s *ApplicationService) Transition(ctx context.Context, applicationID, newStatus string, actor ports.Actor) (*domain.Application, error) {
	// Routing already restricts this to admins; re-check here so a wiring
	// mistake cannot silently open the operation up.
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if !domain.ValidStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, newStatus)
	}
	next := domain.ApplicationStatus(newStatus)

	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !app.Status.CanTransitionTo(next, s.lockTerminal) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, app.Status, next)
	}

	updated, err := s.apps.UpdateStatus(ctx, applicationID, next, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	metrics.StatusTransitionsTotal.WithLabelValues(string(next)).Inc()

	s.logger.Info().
		Str("application_id", updated.ID).
		Str("status", string(next)).
		Str("actor_id", actor.UserID).
		Msg("application status updated")

	s.publishStatusChange(ctx, updated, next)

	return updated, nil
}

func (s *ApplicationService) publishStatusChange(ctx context.Context, app *domain.Application, status domain.ApplicationStatus) {
	if s.publisher == nil {
		return
	}

	jobTitle := ""
	if job, err := s.jobs.FindByID(ctx, app.JobID); err == nil {
		jobTitle = job.Title
	} else {
		s.logger.Warn().Err(err).Str("job_id", app.JobID).Msg("job title lookup failed for notification")
	}

	s.publisher.Publish(domain.StatusChange{
		ApplicationID:  app.ID,
		RecipientEmail: app.Applicant.Email,
		JobTitle:       jobTitle,
		NewStatus:      status,
		ChangedAt:      app.UpdatedAt,
	})
}

// ListMine returns the caller's applications, most recent first, each joined
// with its posting summary.
func (s *ApplicationService) ListMine(ctx context.Context, userID string) ([]ports.ApplicationView, error) {
	apps, err := s.apps.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.joinJobs(ctx, apps)
}

// List translates the raw filter parameters into one bounded, deterministic
// result page. Limit is clamped to [1,100] (default 10), page floors at 1,
// and a page past the end yields an empty items slice with accurate
// metadata rather than an error.
func (s *ApplicationService) List(ctx context.Context, input ports.ListApplicationsInput) (*ports.ListApplicationsResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	filter := ports.ListApplicationsFilter{
		Status:   input.Status,
		JobID:    input.JobID,
		Search:   input.Search,
		DateFrom: input.DateFrom,
		DateTo:   input.DateTo,
		Page:     page,
		Limit:    limit,
	}

	if input.JobType != "" {
		ids, err := s.jobs.FindIDsByType(ctx, input.JobType)
		if err != nil {
			return nil, err
		}
		if ids == nil {
			ids = []string{}
		}
		// An empty id set is a valid filter: the type matched no jobs, so
		// the page is empty, not an error.
		filter.JobIDs = ids
	}

	apps, total, err := s.apps.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items, err := s.joinJobs(ctx, apps)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListApplicationsResult{
		Items:      items,
		Page:       page,
		Limit:      limit,
		TotalCount: total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}

func (s *ApplicationService) joinJobs(ctx context.Context, apps []*domain.Application) ([]ports.ApplicationView, error) {
	ids := make([]string, 0, len(apps))
	seen := make(map[string]struct{}, len(apps))
	for _, a := range apps {
		if _, ok := seen[a.JobID]; !ok {
			seen[a.JobID] = struct{}{}
			ids = append(ids, a.JobID)
		}
	}

	summaries := map[string]ports.JobSummary{}
	if len(ids) > 0 {
		var err error
		summaries, err = s.jobs.FindSummaries(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	views := make([]ports.ApplicationView, len(apps))
	for i, a := range apps {
		views[i] = ports.ApplicationView{Application: a}
		if js, ok := summaries[a.JobID]; ok {
			jsCopy := js
			views[i].Job = &jsCopy
		}
	}
	return views, nil
}

// ApplicationsPerJob returns application counts grouped by job with the job
// title joined in. Jobs with zero applications are absent; ordering is count
// descending with job id as the tie-breaker.
func (s *ApplicationService) ApplicationsPerJob(ctx context.Context) ([]ports.JobApplicationCount, error) {
	return s.apps.CountPerJob(ctx)
}

var csvHeader = []string{"name", "email", "phone", "education", "experience", "skills", "job_title", "status", "applied_at"}

// ExportCSV writes the full applicant list to w and returns the number of
// data rows written.
func (s *ApplicationService) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	apps, err := s.apps.FindAll(ctx)
	if err != nil {
		return 0, err
	}

	views, err := s.joinJobs(ctx, apps)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, err
	}

	rows := 0
	for _, v := range views {
		a := v.Application
		jobTitle := ""
		if v.Job != nil {
			jobTitle = v.Job.Title
		}
		record := []string{
			a.Applicant.Name,
			a.Applicant.Email,
			a.Applicant.Phone,
			a.Applicant.Education,
			a.Applicant.Experience,
			a.Applicant.Skills,
			jobTitle,
			string(a.Status),
			a.AppliedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return rows, err
		}
		rows++
	}

	cw.Flush()
	return rows, cw.Error()
}

// DownloadResume streams the stored resume for an application. Only the
// owning user or an admin may retrieve it; the artifact store itself does
// not enforce access control.
func (s *ApplicationService) DownloadResume(ctx context.Context, applicationID string, actor ports.Actor) (*ports.ResumeDownload, error) {
	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && actor.UserID != app.UserID {
		return nil, domain.ErrForbidden
	}

	content, err := s.resumes.Retrieve(ctx, app.ResumeRef)
	if err != nil {
		return nil, err
	}

	return &ports.ResumeDownload{
		Content:     content.Body,
		ContentType: content.ContentType,
		Filename:    content.Filename,
		Size:        content.Size,
	}, nil
}
