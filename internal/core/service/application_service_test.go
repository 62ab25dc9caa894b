package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/talentdesk/ats-system/internal/core/domain"
	"github.com/talentdesk/ats-system/internal/core/ports"
)

// --- Stubs ---

type stubAppRepo struct {
	apps       []*domain.Application
	nextID     int
	lastFilter *ports.ListApplicationsFilter
}

func newStubAppRepo() *stubAppRepo {
	return &stubAppRepo{nextID: 1}
}

func (r *stubAppRepo) Create(_ context.Context, app *domain.Application) (*domain.Application, error) {
	for _, existing := range r.apps {
		if existing.UserID == app.UserID && existing.JobID == app.JobID {
			return nil, domain.ErrDuplicateApplication
		}
	}
	clone := *app
	clone.ID = fmt.Sprintf("app_%d", r.nextID)
	r.nextID++
	r.apps = append(r.apps, &clone)
	copy := clone
	return &copy, nil
}

func (r *stubAppRepo) FindByID(_ context.Context, id string) (*domain.Application, error) {
	for _, a := range r.apps {
		if a.ID == id {
			copy := *a
			return &copy, nil
		}
	}
	return nil, domain.ErrApplicationNotFound
}

func (r *stubAppRepo) FindByUser(_ context.Context, userID string) ([]*domain.Application, error) {
	var out []*domain.Application
	for _, a := range r.apps {
		if a.UserID == userID {
			copy := *a
			out = append(out, &copy)
		}
	}
	sortByAppliedAtDesc(out)
	return out, nil
}

func (r *stubAppRepo) List(_ context.Context, filter ports.ListApplicationsFilter) ([]*domain.Application, int64, error) {
	f := filter
	r.lastFilter = &f

	var matched []*domain.Application
	for _, a := range r.apps {
		if filter.Status != "" && string(a.Status) != filter.Status {
			continue
		}
		if filter.JobID != "" && a.JobID != filter.JobID {
			continue
		}
		if filter.JobIDs != nil && !containsString(filter.JobIDs, a.JobID) {
			continue
		}
		copy := *a
		matched = append(matched, &copy)
	}
	sortByAppliedAtDesc(matched)

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *stubAppRepo) UpdateStatus(_ context.Context, id string, status domain.ApplicationStatus, at time.Time) (*domain.Application, error) {
	for _, a := range r.apps {
		if a.ID == id {
			a.Status = status
			a.StatusHistory = append(a.StatusHistory, domain.StatusHistoryEntry{Status: status, ChangedAt: at})
			a.UpdatedAt = at
			copy := *a
			return &copy, nil
		}
	}
	return nil, domain.ErrApplicationNotFound
}

func (r *stubAppRepo) CountPerJob(_ context.Context) ([]ports.JobApplicationCount, error) {
	counts := map[string]int64{}
	for _, a := range r.apps {
		counts[a.JobID]++
	}
	var out []ports.JobApplicationCount
	for jobID, n := range counts {
		out = append(out, ports.JobApplicationCount{JobID: jobID, TotalApplications: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalApplications != out[j].TotalApplications {
			return out[i].TotalApplications > out[j].TotalApplications
		}
		return out[i].JobID < out[j].JobID
	})
	return out, nil
}

func (r *stubAppRepo) FindAll(_ context.Context) ([]*domain.Application, error) {
	out := make([]*domain.Application, 0, len(r.apps))
	for _, a := range r.apps {
		copy := *a
		out = append(out, &copy)
	}
	sortByAppliedAtDesc(out)
	return out, nil
}

func (r *stubAppRepo) DeleteByJob(_ context.Context, jobID string) (int64, error) {
	var kept []*domain.Application
	var removed int64
	for _, a := range r.apps {
		if a.JobID == jobID {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	r.apps = kept
	return removed, nil
}

func sortByAppliedAtDesc(apps []*domain.Application) {
	sort.Slice(apps, func(i, j int) bool {
		if !apps[i].AppliedAt.Equal(apps[j].AppliedAt) {
			return apps[i].AppliedAt.After(apps[j].AppliedAt)
		}
		return apps[i].ID > apps[j].ID
	})
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type stubJobRepo struct {
	jobs map[string]*domain.Job
}

func newStubJobRepo() *stubJobRepo {
	return &stubJobRepo{jobs: make(map[string]*domain.Job)}
}

func (r *stubJobRepo) addJob(id, title string, jobType domain.JobType, active bool) {
	r.jobs[id] = &domain.Job{
		ID:       id,
		Title:    title,
		Type:     jobType,
		Location: "Remote",
		IsActive: active,
	}
}

func (r *stubJobRepo) Create(_ context.Context, job *domain.Job) (*domain.Job, error) {
	clone := *job
	clone.ID = fmt.Sprintf("job_%d", len(r.jobs)+1)
	r.jobs[clone.ID] = &clone
	copy := clone
	return &copy, nil
}

func (r *stubJobRepo) FindByID(_ context.Context, id string) (*domain.Job, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	copy := *job
	return &copy, nil
}

func (r *stubJobRepo) FindIDsByType(_ context.Context, jobType string) ([]string, error) {
	var ids []string
	for id, job := range r.jobs {
		if strings.EqualFold(string(job.Type), jobType) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *stubJobRepo) FindSummaries(_ context.Context, ids []string) (map[string]ports.JobSummary, error) {
	out := make(map[string]ports.JobSummary)
	for _, id := range ids {
		if job, ok := r.jobs[id]; ok {
			out[id] = ports.JobSummary{ID: id, Title: job.Title, Type: string(job.Type), Location: job.Location}
		}
	}
	return out, nil
}

func (r *stubJobRepo) List(_ context.Context, filter ports.ListJobsFilter) ([]*domain.Job, int64, error) {
	var out []*domain.Job
	for _, job := range r.jobs {
		if filter.OnlyActive && !job.IsActive {
			continue
		}
		copy := *job
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *stubJobRepo) Update(_ context.Context, job *domain.Job) error {
	if _, ok := r.jobs[job.ID]; !ok {
		return domain.ErrJobNotFound
	}
	clone := *job
	r.jobs[job.ID] = &clone
	return nil
}

func (r *stubJobRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.jobs[id]; !ok {
		return domain.ErrJobNotFound
	}
	delete(r.jobs, id)
	return nil
}

type stubResumeStore struct {
	content map[string][]byte
}

func newStubResumeStore() *stubResumeStore {
	return &stubResumeStore{content: make(map[string][]byte)}
}

func (s *stubResumeStore) Store(_ context.Context, r io.Reader, _ int64, filename, _ string) (*ports.StoredResume, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	ref := "ref_" + filename
	s.content[ref] = data
	return &ports.StoredResume{Ref: ref, Filename: filename}, nil
}

func (s *stubResumeStore) Retrieve(_ context.Context, ref string) (*ports.ResumeContent, error) {
	data, ok := s.content[ref]
	if !ok {
		return nil, domain.ErrResumeNotFound
	}
	return &ports.ResumeContent{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: ports.ResumeContentType,
		Filename:    strings.TrimPrefix(ref, "ref_"),
		Size:        int64(len(data)),
	}, nil
}

type capturingPublisher struct {
	changes []domain.StatusChange
}

func (p *capturingPublisher) Publish(change domain.StatusChange) {
	p.changes = append(p.changes, change)
}

// --- Fixtures ---

func newTestAppService(apps *stubAppRepo, jobs *stubJobRepo) (*ApplicationService, *capturingPublisher) {
	pub := &capturingPublisher{}
	svc := NewApplicationService(apps, jobs, newStubResumeStore(), pub, false, zerolog.Nop())
	return svc, pub
}

func validSubmitInput(userID, jobID string) ports.SubmitApplicationInput {
	return ports.SubmitApplicationInput{
		UserID:     userID,
		JobID:      jobID,
		ResumeRef:  "ref_resume.pdf",
		Name:       "Alice Doe",
		Email:      "alice@example.com",
		Phone:      "+1-555-0100",
		Education:  "BSc Computer Science",
		Experience: "2 years backend",
		Skills:     "Go, MongoDB",
	}
}

func seedApplication(t *testing.T, svc *ApplicationService, userID, jobID string) *domain.Application {
	t.Helper()
	app, err := svc.Submit(context.Background(), validSubmitInput(userID, jobID))
	if err != nil {
		t.Fatalf("Submit(%s, %s) returned error: %v", userID, jobID, err)
	}
	return app
}

// --- Submit ---

func TestApplicationService_Submit_Success(t *testing.T) {
	jobs := newStubJobRepo()
	jobs.addJob("job_1", "Backend Engineer", domain.JobTypeJob, true)
	svc, _ := newTestAppService(newStubAppRepo(), jobs)

	app, err := svc.Submit(context.Background(), validSubmitInput("user_1", "job_1"))
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if app.Status != domain.StatusApplied {
		t.Fatalf("expected status Applied, got %s", app.Status)
	}
	if len(app.StatusHistory) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(app.StatusHistory))
	}
	if app.StatusHistory[0].Status != domain.StatusApplied {
		t.Fatalf("expected initial history entry Applied, got %s", app.StatusHistory[0].Status)
	}
	if app.AppliedAt.IsZero() {
		t.Fatalf("expected applied_at to be set")
	}
}

func TestApplicationService_Submit_MissingFields(t *testing.T) {
	jobs := newStubJobRepo()
	jobs.addJob("job_1", "Backend Engineer", domain.JobTypeJob, true)
	svc, _ := newTestAppService(newStubAppRepo(), jobs)

	cases := []struct {
		field  string
		mutate func(*ports.SubmitApplicationInput)
	}{
		{"name", func(in *ports.SubmitApplicationInput) { in.Name = "" }},
		{"email", func(in *ports.SubmitApplicationInput) { in.Email = "" }},
		{"phone", func(in *ports.SubmitApplicationInput) { in.Phone = "" }},
		{"education", func(in *ports.SubmitApplicationInput) { in.Education = "" }},
		{"experience", func(in *ports.SubmitApplicationInput) { in.Experience = "" }},
	}

	for _, tc := range cases {
		input := validSubmitInput("user_1", "job_1")
		tc.mutate(&input)

		_, err := svc.Submit(context.Background(), input)
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("field %s: expected ErrValidation, got %v", tc.field, err)
		}
		if !strings.Contains(err.Error(), tc.field) {
			t.Fatalf("expected error to name field %s, got %q", tc.field, err.Error())
		}
	}
}

func TestApplicationService_Submit_MissingResume(t *testing.T) {
	jobs := newStubJobRepo()
	jobs.addJob("job_1", "Backend Engineer", domain.JobTypeJob, true)
	svc, _ := newTestAppService(newStubAppRepo(), jobs)

	input := validSubmitInput("user_1", "job_1")
	input.ResumeRef = ""

	if _, err := svc.Submit(context.Background(), input); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing resume, got %v", err)
	}
}

func TestApplicationService_Submit_JobNotFound(t *testing.T) {
	svc, _ := newTestAppService(newStubAppRepo(), newStubJobRepo())

	if _, err := svc.Submit(context.Background(), validSubmitInput("user_1", "missing")); !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestApplicationService_Submit_JobClosed(t *testing.T) {
	jobs := newStubJobRepo()
	jobs.addJob("job_1", "Backend Engineer", domain.JobTypeJob, false)
	svc, _ := newTestAppService(newStubAppRepo(), jobs)

	if _, err := svc.Submit(context.Background(), validSubmitInput("user_1", "job_1")); !errors.Is(err, domain.ErrJobClosed) {
		t.Fatalf("expected ErrJobClosed, got %v", err)
	}
}

func TestApplicationService_Submit_Duplicate(t *testing.T) {
	jobs := newStubJobRepo()
	jobs.addJob("job_1", "Backend Engineer", domain.JobTypeJob, true)
	svc, _ := newTestAppService(newStubAppRepo(), jobs)

	seedApplication(t, svc, "user_1", "job_1")

	if _, err := svc.Submit(context.Background(), validSubmitInput("user_1", "job_1")); !errors.Is(err, domain.ErrDuplicateApplication) {
		t.Fatalf("expected ErrDuplicateApplication, got %v", err)
	}
}

// --- Transition ---

func TestApplicationService_Transition_Success(t *testing.T) {
	jobs := newStubJobRepo()
	jobs.addJob("job_1", "Backend Engineer", domain.JobTypeJob, true)
	svc, pub := newTestAppService(newStubAppRepo(), jobs)
	app := seedApplication(t, svc, "user_1", "job_1")

	admin := ports.Actor{UserID: "admin_1", Role: domain.RoleAdmin}
	updated, err := svc.Transition(context.Background(), app.ID, "Shortlisted", admin)
	if err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if updated.Status != domain.StatusShortlisted {
		t.Fatalf("expected status Shortlisted, got %s", updated.Status)
	}
	if len(updated.StatusHistory) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(updated.StatusHistory))
	}
	last := updated.StatusHistory[len(updated.StatusHistory)-1]
	if last.Status != updated.Status {
		t.Fatalf("last history entry %s does not match status %s", last.Status, updated.Status)
	}

	if len(pub.changes) != 1 {
		t.Fatalf("expected 1 published change, got %d", len(pub.changes))
	}
	change := pub.changes[0]
	if change.ApplicationID != app.ID || change.NewStatus != domain.StatusShortlisted {
		t.Fatalf("unexpected published change: %+v", change)
	}
	if change.RecipientEmail != "alice@example.com" {
		t.Fatalf("unexpected recipient: %s", change.RecipientEmail)
	}
	if change.JobTitle != "Backend Engineer" {
		t.Fatalf("unexpected job title: %s", change.JobTitle)
	}
}

func TestApplicationService_Transition_NonAdminForbidden(t *testing.T) {
	jobs := newStubJobRepo()
	jobs.addJob("job_1", "Backend Engineer", domain.JobTypeJob, true)
	apps := newStubAppRepo()
	svc, pub := newTestAppService(apps, jobs)
	app := seedApplication(t, svc, "user_1", "job_1")

	owner := ports.Actor{UserID: "user_1", Role: domain.RoleUser}
	if _, err := svc.Transition(context.Background(), app.ID, "Selected", owner); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	stored, _ := apps.FindByID(context.Background(), app.ID)
	if stored.Status != domain.StatusApplied {
		t.Fatalf("status changed despite forbidden call: %s", stored.Status)
	}
	if len(pub.changes) != 0 {
		t.Fatalf("expected no published changes, got %d", len(pub.changes))
	}
}

func TestApplicationService_Transition_UnknownStatus(t *testing.T) {
	jobs := newStubJobRepo()
	jobs.addJob("job_1", "Backend Engineer", domain.JobTypeJob, true)
	svc, _ := newTestAppService(newStubAppRepo(), jobs)
	app := seedApplication(t, svc, "user_1", "job_1")

	admin := ports.Actor{UserID: "admin_1", Role: domain.RoleAdmin}
	if _, err := svc.Transition(context.Background(), app.ID, "Hired", admin); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}
}

func TestApplicationService_Transition_TerminalLock(t *testing.T) {
	jobs := newStubJobRepo()
	jobs.addJob("job_1", "Backend Engineer", domain.JobTypeJob, true)
	apps := newStubAppRepo()
	pub := &capturingPublisher{}
	svc := NewApplicationService(apps, jobs, newStubResumeStore(), pub, true, zerolog.Nop())

	app, err := svc.Submit(context.Background(), validSubmitInput("user_1", "job_1"))
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	admin := ports.Actor{UserID: "admin_1", Role: domain.RoleAdmin}
	if _, err := svc.Transition(context.Background(), app.ID, "Rejected", admin); err != nil {
		t.Fatalf("Transition to Rejected returned error: %v", err)
	}
	if _, err := svc.Transition(context.Background(), app.ID, "Shortlisted", admin); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition out of terminal status, got %v", err)
	}
}

func TestApplicationService_Transition_TerminalAllowedWhenUnlocked(t *testing.T) {
	jobs := newStubJobRepo()
	jobs.addJob("job_1", "Backend Engineer", domain.JobTypeJob, true)
	svc, _ := newTestAppService(newStubAppRepo(), jobs)
	app := seedApplication(t, svc, "user_1", "job_1")

	admin := ports.Actor{UserID: "admin_1", Role: domain.RoleAdmin}
	if _, err := svc.Transition(context.Background(), app.ID, "Rejected", admin); err != nil {
		t.Fatalf("Transition to Rejected returned error: %v", err)
	}
	updated, err := svc.Transition(context.Background(), app.ID, "Shortlisted", admin)
	if err != nil {
		t.Fatalf("Transition out of Rejected returned error: %v", err)
	}
	if len(updated.StatusHistory) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(updated.StatusHistory))
	}
}

func TestApplicationService_Transition_NotFound(t *testing.T) {
	svc, _ := newTestAppService(newStubAppRepo(), newStubJobRepo())

	admin := ports.Actor{UserID: "admin_1", Role: domain.RoleAdmin}
	if _, err := svc.Transition(context.Background(), "missing", "Selected", admin); !errors.Is(err, domain.ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
}

// --- List ---

func seedManyApplications(t *testing.T, svc *ApplicationService, jobs *stubJobRepo, n int) {
	t.Helper()
	jobs.addJob("job_1", "Backend Engineer", domain.JobTypeJob, true)
	for i := 0; i < n; i++ {
		input := validSubmitInput(fmt.Sprintf("user_%03d", i), "job_1")
		if _, err := svc.Submit(context.Background(), input); err != nil {
			t.Fatalf("seeding application %d: %v", i, err)
		}
	}
}

func TestApplicationService_List_LimitClamping(t *testing.T) {
	jobs := newStubJobRepo()
	apps := newStubAppRepo()
	svc, _ := newTestAppService(apps, jobs)
	seedManyApplications(t, svc, jobs, 3)

	cases := []struct {
		in   int
		want int
	}{
		{0, 10},
		{-5, 10},
		{1, 1},
		{100, 100},
		{101, 100},
	}
	for _, tc := range cases {
		result, err := svc.List(context.Background(), ports.ListApplicationsInput{Limit: tc.in})
		if err != nil {
			t.Fatalf("List(limit=%d) returned error: %v", tc.in, err)
		}
		if result.Limit != tc.want {
			t.Fatalf("List(limit=%d): expected effective limit %d, got %d", tc.in, tc.want, result.Limit)
		}
	}
}

func TestApplicationService_List_PageFloor(t *testing.T) {
	jobs := newStubJobRepo()
	svc, _ := newTestAppService(newStubAppRepo(), jobs)
	seedManyApplications(t, svc, jobs, 3)

	result, err := svc.List(context.Background(), ports.ListApplicationsInput{Page: -2})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if result.Page != 1 {
		t.Fatalf("expected page floored to 1, got %d", result.Page)
	}
	if result.HasPrev {
		t.Fatalf("first page must not report has_prev")
	}
}

func TestApplicationService_List_PagePastEnd(t *testing.T) {
	jobs := newStubJobRepo()
	svc, _ := newTestAppService(newStubAppRepo(), jobs)
	seedManyApplications(t, svc, jobs, 3)

	result, err := svc.List(context.Background(), ports.ListApplicationsInput{Page: 9999, Limit: 10})
	if err != nil {
		t.Fatalf("expected empty page, got error: %v", err)
	}
	if len(result.Items) != 0 {
		t.Fatalf("expected no items, got %d", len(result.Items))
	}
	if result.TotalCount != 3 {
		t.Fatalf("expected total 3, got %d", result.TotalCount)
	}
	if result.HasNext {
		t.Fatalf("page past the end must not report has_next")
	}
	if !result.HasPrev {
		t.Fatalf("page past the end must report has_prev")
	}
}

func TestApplicationService_List_Pagination(t *testing.T) {
	jobs := newStubJobRepo()
	svc, _ := newTestAppService(newStubAppRepo(), jobs)
	seedManyApplications(t, svc, jobs, 25)

	page1, err := svc.List(context.Background(), ports.ListApplicationsInput{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(page1.Items) != 10 || page1.TotalPages != 3 || !page1.HasNext || page1.HasPrev {
		t.Fatalf("unexpected page 1 metadata: %+v", page1)
	}

	page3, err := svc.List(context.Background(), ports.ListApplicationsInput{Page: 3, Limit: 10})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(page3.Items) != 5 || page3.HasNext || !page3.HasPrev {
		t.Fatalf("unexpected page 3 metadata: %+v", page3)
	}
}

func TestApplicationService_List_JobTypeResolvesToIDSet(t *testing.T) {
	jobs := newStubJobRepo()
	jobs.addJob("job_1", "Backend Engineer", domain.JobTypeJob, true)
	jobs.addJob("job_2", "Summer Intern", domain.JobTypeInternship, true)
	apps := newStubAppRepo()
	svc, _ := newTestAppService(apps, jobs)

	seedApplication(t, svc, "user_1", "job_1")
	seedApplication(t, svc, "user_2", "job_2")

	result, err := svc.List(context.Background(), ports.ListApplicationsInput{JobType: "Internship"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 internship application, got %d", len(result.Items))
	}
	if result.Items[0].Application.JobID != "job_2" {
		t.Fatalf("expected application for job_2, got %s", result.Items[0].Application.JobID)
	}
}

func TestApplicationService_List_JobTypeWithNoJobsYieldsEmptyPage(t *testing.T) {
	jobs := newStubJobRepo()
	jobs.addJob("job_1", "Backend Engineer", domain.JobTypeJob, true)
	apps := newStubAppRepo()
	svc, _ := newTestAppService(apps, jobs)
	seedApplication(t, svc, "user_1", "job_1")

	result, err := svc.List(context.Background(), ports.ListApplicationsInput{JobType: "Internship"})
	if err != nil {
		t.Fatalf("expected empty page, got error: %v", err)
	}
	if len(result.Items) != 0 || result.TotalCount != 0 {
		t.Fatalf("expected empty result, got %d items / total %d", len(result.Items), result.TotalCount)
	}
	if apps.lastFilter == nil || apps.lastFilter.JobIDs == nil {
		t.Fatalf("expected a non-nil resolved id set on the repository filter")
	}
	if len(apps.lastFilter.JobIDs) != 0 {
		t.Fatalf("expected empty id set, got %v", apps.lastFilter.JobIDs)
	}
}

func TestApplicationService_List_JoinsJobSummaries(t *testing.T) {
	jobs := newStubJobRepo()
	jobs.addJob("job_1", "Backend Engineer", domain.JobTypeJob, true)
	svc, _ := newTestAppService(newStubAppRepo(), jobs)
	seedApplication(t, svc, "user_1", "job_1")

	result, err := svc.List(context.Background(), ports.ListApplicationsInput{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	job := result.Items[0].Job
	if job == nil || job.Title != "Backend Engineer" {
		t.Fatalf("expected joined job summary, got %+v", job)
	}
}

// --- Analytics ---

func TestApplicationService_ApplicationsPerJob(t *testing.T) {
	jobs := newStubJobRepo()
	jobs.addJob("job_a", "Job A", domain.JobTypeJob, true)
	jobs.addJob("job_b", "Job B", domain.JobTypeJob, true)
	jobs.addJob("job_c", "Job C", domain.JobTypeJob, true)
	svc, _ := newTestAppService(newStubAppRepo(), jobs)

	for i := 0; i < 3; i++ {
		seedApplication(t, svc, fmt.Sprintf("user_a%d", i), "job_a")
	}
	seedApplication(t, svc, "user_c0", "job_c")

	rows, err := svc.ApplicationsPerJob(context.Background())
	if err != nil {
		t.Fatalf("ApplicationsPerJob returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (job without applications omitted), got %d", len(rows))
	}
	if rows[0].JobID != "job_a" || rows[0].TotalApplications != 3 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].JobID != "job_c" || rows[1].TotalApplications != 1 {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}

// --- CSV export ---

func TestApplicationService_ExportCSV(t *testing.T) {
	jobs := newStubJobRepo()
	jobs.addJob("job_1", "Backend Engineer", domain.JobTypeJob, true)
	svc, _ := newTestAppService(newStubAppRepo(), jobs)
	seedApplication(t, svc, "user_1", "job_1")
	seedApplication(t, svc, "user_2", "job_1")

	var buf bytes.Buffer
	rows, err := svc.ExportCSV(context.Background(), &buf)
	if err != nil {
		t.Fatalf("ExportCSV returned error: %v", err)
	}
	if rows != 2 {
		t.Fatalf("expected 2 data rows, got %d", rows)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parsing exported CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}

	wantHeader := []string{"name", "email", "phone", "education", "experience", "skills", "job_title", "status", "applied_at"}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Fatalf("header column %d: expected %q, got %q", i, col, records[0][i])
		}
	}
	if records[1][6] != "Backend Engineer" {
		t.Fatalf("expected job title joined into row, got %q", records[1][6])
	}
	if records[1][7] != "Applied" {
		t.Fatalf("expected status Applied, got %q", records[1][7])
	}
}

func TestApplicationService_ExportCSV_Empty(t *testing.T) {
	svc, _ := newTestAppService(newStubAppRepo(), newStubJobRepo())

	var buf bytes.Buffer
	rows, err := svc.ExportCSV(context.Background(), &buf)
	if err != nil {
		t.Fatalf("ExportCSV returned error: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected 0 rows, got %d", rows)
	}
	if !strings.HasPrefix(buf.String(), "name,email,phone") {
		t.Fatalf("expected header row even when empty, got %q", buf.String())
	}
}

// --- Resume download ---

func TestApplicationService_DownloadResume_OwnerAndAdmin(t *testing.T) {
	jobs := newStubJobRepo()
	jobs.addJob("job_1", "Backend Engineer", domain.JobTypeJob, true)
	apps := newStubAppRepo()
	store := newStubResumeStore()
	svc := NewApplicationService(apps, jobs, store, &capturingPublisher{}, false, zerolog.Nop())

	stored, err := store.Store(context.Background(), strings.NewReader("%PDF-1.4 data"), 13, "resume.pdf", ports.ResumeContentType)
	if err != nil {
		t.Fatalf("storing fixture resume: %v", err)
	}
	input := validSubmitInput("user_1", "job_1")
	input.ResumeRef = stored.Ref
	app, err := svc.Submit(context.Background(), input)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	for _, actor := range []ports.Actor{
		{UserID: "user_1", Role: domain.RoleUser},
		{UserID: "admin_1", Role: domain.RoleAdmin},
	} {
		download, err := svc.DownloadResume(context.Background(), app.ID, actor)
		if err != nil {
			t.Fatalf("DownloadResume as %s returned error: %v", actor.Role, err)
		}
		data, _ := io.ReadAll(download.Content)
		download.Content.Close()
		if string(data) != "%PDF-1.4 data" {
			t.Fatalf("resume bytes corrupted: %q", data)
		}
		if download.ContentType != ports.ResumeContentType {
			t.Fatalf("unexpected content type: %s", download.ContentType)
		}
	}
}

func TestApplicationService_DownloadResume_StrangerForbidden(t *testing.T) {
	jobs := newStubJobRepo()
	jobs.addJob("job_1", "Backend Engineer", domain.JobTypeJob, true)
	svc, _ := newTestAppService(newStubAppRepo(), jobs)
	app := seedApplication(t, svc, "user_1", "job_1")

	stranger := ports.Actor{UserID: "user_2", Role: domain.RoleUser}
	if _, err := svc.DownloadResume(context.Background(), app.ID, stranger); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
