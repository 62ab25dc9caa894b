package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/talentdesk/ats-system/internal/api/metrics"
	"github.com/talentdesk/ats-system/internal/core/domain"
	"github.com/talentdesk/ats-system/internal/core/ports"
)

// ApplicationHandler handles HTTP requests for the application lifecycle:
// submission with resume upload, listings, status transitions, analytics,
// CSV export, and resume download.
type ApplicationHandler struct {
	service ports.ApplicationService
	resumes ports.ResumeStore
}

func NewApplicationHandler(service ports.ApplicationService, resumes ports.ResumeStore) *ApplicationHandler {
	return &ApplicationHandler{service: service, resumes: resumes}
}

// Submit handles POST /v1/applications: a multipart form carrying the
// applicant snapshot fields plus the resume file under the "resume" key.
// The resume is persisted first; only its opaque reference reaches the
// service layer.
//
// @Summary      Submit a job application
// @Tags         applications
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        job_id      formData  string  true   "Job posting ID"
// @Param        name        formData  string  true   "Applicant full name"
// @Param        email       formData  string  true   "Applicant email"
// @Param        phone       formData  string  true   "Applicant phone"
// @Param        education   formData  string  true   "Education summary"
// @Param        experience  formData  string  true   "Experience summary"
// @Param        skills      formData  string  false  "Comma-separated skills"
// @Param        cover_note  formData  string  false  "Cover note"
// @Param        resume      formData  file    true   "Resume (PDF, max 5 MiB)"
// @Success      201  {object}  applicationResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      413  {object}  map[string]string
// @Router       /v1/applications [post]
func (h *ApplicationHandler) Submit(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("resume")
	if err != nil {
		return fmt.Errorf("%w: resume file is required", domain.ErrValidation)
	}
	if fh.Size > ports.MaxResumeSize {
		metrics.ResumeOperationsTotal.WithLabelValues("store", "rejected").Inc()
		return domain.ErrPayloadTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("%w: resume file is unreadable", domain.ErrValidation)
	}
	defer src.Close()

	stored, err := h.resumes.Store(c.Request().Context(), src, fh.Size, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedMediaType) || errors.Is(err, domain.ErrPayloadTooLarge) {
			metrics.ResumeOperationsTotal.WithLabelValues("store", "rejected").Inc()
		} else {
			metrics.ResumeOperationsTotal.WithLabelValues("store", "error").Inc()
		}
		return err
	}
	metrics.ResumeOperationsTotal.WithLabelValues("store", "ok").Inc()

	app, err := h.service.Submit(c.Request().Context(), ports.SubmitApplicationInput{
		UserID:     actor.UserID,
		JobID:      c.FormValue("job_id"),
		ResumeRef:  stored.Ref,
		Name:       c.FormValue("name"),
		Email:      c.FormValue("email"),
		Phone:      c.FormValue("phone"),
		Education:  c.FormValue("education"),
		Experience: c.FormValue("experience"),
		Skills:     c.FormValue("skills"),
		CoverNote:  c.FormValue("cover_note"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toApplicationResponse(ports.ApplicationView{Application: app}))
}

// ListMine handles GET /v1/applications/me: the caller's applications, each
// joined with its posting summary.
//
// @Summary      List own applications
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   applicationResponse
// @Failure      401  {object}  map[string]string
// @Router       /v1/applications/me [get]
func (h *ApplicationHandler) ListMine(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	views, err := h.service.ListMine(c.Request().Context(), actor.UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toApplicationResponses(views))
}

// List handles GET /v1/applications: the admin listing with filters and
// pagination. Out-of-range page and limit values are clamped, never errors.
//
// @Summary      List applications (admin)
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        status     query     string  false  "Filter by status"
// @Param        job_id     query     string  false  "Filter by job posting"
// @Param        job_type   query     string  false  "Filter by posting type (Internship or Job)"
// @Param        search     query     string  false  "Search applicant name, email, skills"
// @Param        date_from  query     string  false  "Applied on or after (RFC 3339 or YYYY-MM-DD)"
// @Param        date_to    query     string  false  "Applied on or before (RFC 3339 or YYYY-MM-DD)"
// @Param        page       query     int     false  "Page number (1-based)"
// @Param        limit      query     int     false  "Page size (max 100)"
// @Success      200  {object}  listApplicationsResponse
// @Failure      403  {object}  map[string]string
// @Router       /v1/applications [get]
func (h *ApplicationHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	dateFrom, err := parseQueryTime(c.QueryParam("date_from"))
	if err != nil {
		return fmt.Errorf("%w: date_from must be RFC 3339 or YYYY-MM-DD", domain.ErrValidation)
	}
	dateTo, err := parseQueryTime(c.QueryParam("date_to"))
	if err != nil {
		return fmt.Errorf("%w: date_to must be RFC 3339 or YYYY-MM-DD", domain.ErrValidation)
	}

	result, err := h.service.List(c.Request().Context(), ports.ListApplicationsInput{
		Status:   c.QueryParam("status"),
		JobID:    c.QueryParam("job_id"),
		Search:   c.QueryParam("search"),
		JobType:  c.QueryParam("job_type"),
		DateFrom: dateFrom,
		DateTo:   dateTo,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listApplicationsResponse{
		Applications: toApplicationResponses(result.Items),
		Page:         result.Page,
		Limit:        result.Limit,
		TotalCount:   result.TotalCount,
		TotalPages:   result.TotalPages,
		HasNext:      result.HasNext,
		HasPrev:      result.HasPrev,
	})
}

// UpdateStatus handles PUT /v1/applications/:id/status. Admin only; the
// transition is committed before the notification email is queued, so a
// delivery failure never loses the status change.
//
// @Summary      Transition an application's status
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Application ID"
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      200   {object}  applicationResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/applications/{id}/status [put]
func (h *ApplicationHandler) UpdateStatus(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	app, err := h.service.Transition(c.Request().Context(), c.Param("id"), req.Status, actor)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toApplicationResponse(ports.ApplicationView{Application: app}))
}

// Analytics handles GET /v1/applications/analytics/jobs: per-job application
// counts, busiest postings first. Postings without applications are omitted.
//
// @Summary      Applications per job (admin)
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  analyticsResponse
// @Failure      403  {object}  map[string]string
// @Router       /v1/applications/analytics/jobs [get]
func (h *ApplicationHandler) Analytics(c echo.Context) error {
	counts, err := h.service.ApplicationsPerJob(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, analyticsResponse{Jobs: counts})
}

// ExportCSV handles GET /v1/applications/export/csv: streams every
// application as a CSV attachment.
//
// @Summary      Export all applications as CSV (admin)
// @Tags         applications
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200  {string}  string  "CSV payload"
// @Failure      403  {object}  map[string]string
// @Router       /v1/applications/export/csv [get]
func (h *ApplicationHandler) ExportCSV(c echo.Context) error {
	filename := "applications_" + time.Now().UTC().Format("2006-01-02") + ".csv"

	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Response().WriteHeader(http.StatusOK)

	// After the first write the status is committed; an export error past
	// this point can only truncate the stream.
	_, err := h.service.ExportCSV(c.Request().Context(), c.Response())
	return err
}

// DownloadResume handles GET /v1/applications/:id/resume: streams the stored
// resume to the application's owner or to an admin.
//
// @Summary      Download an application's resume
// @Tags         applications
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path      string  true  "Application ID"
// @Success      200  {file}    file
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /v1/applications/{id}/resume [get]
func (h *ApplicationHandler) DownloadResume(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	timer := prometheus.NewTimer(metrics.ResumeDownloadDuration)
	defer timer.ObserveDuration()

	download, err := h.service.DownloadResume(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		if errors.Is(err, domain.ErrResumeNotFound) || errors.Is(err, domain.ErrUpstreamUnavailable) {
			metrics.ResumeOperationsTotal.WithLabelValues("retrieve", "error").Inc()
		}
		return err
	}
	defer download.Content.Close()
	metrics.ResumeOperationsTotal.WithLabelValues("retrieve", "ok").Inc()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+download.Filename+`"`)
	if download.Size >= 0 {
		c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(download.Size, 10))
	}

	return c.Stream(http.StatusOK, download.ContentType, download.Content)
}

// parseQueryTime accepts RFC 3339 timestamps or bare dates; the zero value
// means the bound is unset.
func parseQueryTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
