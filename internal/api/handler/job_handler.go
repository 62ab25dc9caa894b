package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/talentdesk/ats-system/internal/core/domain"
	"github.com/talentdesk/ats-system/internal/core/ports"
)

// JobHandler handles HTTP requests for job postings.
type JobHandler struct {
	service ports.JobService
}

func NewJobHandler(service ports.JobService) *JobHandler {
	return &JobHandler{service: service}
}

// skillsField accepts either a JSON array of strings or a single
// comma-separated string, since clients send both shapes.
type skillsField []string

func (s *skillsField) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = strings.Split(raw, ",")
	return nil
}

type createJobRequest struct {
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description" validate:"required"`
	Skills      skillsField `json:"skills"`
	Type        string      `json:"type" validate:"required,oneof=Internship Job"`
	Location    string      `json:"location" validate:"required"`
}

type updateJobRequest struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Skills      skillsField `json:"skills"`
	Type        *string     `json:"type" validate:"omitempty,oneof=Internship Job"`
	Location    *string     `json:"location"`
	IsActive    *bool       `json:"is_active"`
}

type listJobsResponse struct {
	Jobs       []*domain.Job `json:"jobs"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalCount int64         `json:"total_count"`
	TotalPages int           `json:"total_pages"`
	HasNext    bool          `json:"has_next"`
	HasPrev    bool          `json:"has_prev"`
}

type deleteJobResponse struct {
	Deleted             bool  `json:"deleted"`
	ApplicationsRemoved int64 `json:"applications_removed"`
}

// List handles GET /v1/jobs: the public job board, active postings only.
//
// @Summary      List job postings
// @Tags         jobs
// @Produce      json
// @Param        type      query     string  false  "Filter by type (Internship or Job)"
// @Param        location  query     string  false  "Filter by location substring"
// @Param        search    query     string  false  "Search in title and description"
// @Param        page      query     int     false  "Page number (1-based)"
// @Param        limit     query     int     false  "Page size"
// @Success      200       {object}  listJobsResponse
// @Router       /v1/jobs [get]
func (h *JobHandler) List(c echo.Context) error {
	return h.list(c, false)
}

// AdminList handles GET /v1/jobs/admin/all: every posting, inactive included.
//
// @Summary      List all job postings including inactive
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (1-based)"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  listJobsResponse
// @Failure      403    {object}  map[string]string
// @Router       /v1/jobs/admin/all [get]
func (h *JobHandler) AdminList(c echo.Context) error {
	return h.list(c, true)
}

func (h *JobHandler) list(c echo.Context, includeAll bool) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.List(c.Request().Context(), ports.ListJobsInput{
		Type:       c.QueryParam("type"),
		Location:   c.QueryParam("location"),
		Search:     c.QueryParam("search"),
		IncludeAll: includeAll,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listJobsResponse{
		Jobs:       result.Jobs,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalCount: result.Total,
		TotalPages: result.TotalPages,
		HasNext:    result.HasNext,
		HasPrev:    result.HasPrev,
	})
}

// Get handles GET /v1/jobs/:id. Inactive postings are visible to admins only.
//
// @Summary      Get a job posting
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  domain.Job
// @Failure      404  {object}  map[string]string
// @Router       /v1/jobs/{id} [get]
func (h *JobHandler) Get(c echo.Context) error {
	role, _ := c.Get("role").(string)

	job, err := h.service.Get(c.Request().Context(), c.Param("id"), role == domain.RoleAdmin)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, job)
}

// Create handles POST /v1/jobs. Admin only.
//
// @Summary      Create a job posting
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createJobRequest  true  "Posting details"
// @Success      201   {object}  domain.Job
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /v1/jobs [post]
func (h *JobHandler) Create(c echo.Context) error {
	var req createJobRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	job, err := h.service.Create(c.Request().Context(), ports.CreateJobInput{
		Title:       req.Title,
		Description: req.Description,
		Skills:      req.Skills,
		Type:        req.Type,
		Location:    req.Location,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, job)
}

// Update handles PUT /v1/jobs/:id. Admin only; omitted fields are left
// unchanged.
//
// @Summary      Update a job posting
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Job ID"
// @Param        body  body      updateJobRequest  true  "Fields to change"
// @Success      200   {object}  domain.Job
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/jobs/{id} [put]
func (h *JobHandler) Update(c echo.Context) error {
	var req updateJobRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	job, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.UpdateJobInput{
		Title:       req.Title,
		Description: req.Description,
		Skills:      req.Skills,
		Type:        req.Type,
		Location:    req.Location,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, job)
}

// Delete handles DELETE /v1/jobs/:id. Admin only; removes the posting and
// every application submitted to it.
//
// @Summary      Delete a job posting and its applications
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  deleteJobResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/jobs/{id} [delete]
func (h *JobHandler) Delete(c echo.Context) error {
	removed, err := h.service.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, deleteJobResponse{Deleted: true, ApplicationsRemoved: removed})
}
