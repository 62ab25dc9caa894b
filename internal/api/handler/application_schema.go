package handler

import (
	"github.com/talentdesk/ats-system/internal/core/domain"
	"github.com/talentdesk/ats-system/internal/core/ports"
)

// --- Response types ---

type jobSummaryResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Location string `json:"location"`
}

type applicationResponse struct {
	ID            string                      `json:"id"`
	JobID         string                      `json:"job_id"`
	Job           *jobSummaryResponse         `json:"job,omitempty"`
	Applicant     domain.ApplicantSnapshot    `json:"applicant"`
	Status        string                      `json:"status"`
	StatusHistory []domain.StatusHistoryEntry `json:"status_history"`
	AppliedAt     string                      `json:"applied_at"`
	ResumeURL     string                      `json:"resume_url"`
}

type listApplicationsResponse struct {
	Applications []applicationResponse `json:"applications"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
	TotalCount   int64                 `json:"total_count"`
	TotalPages   int                   `json:"total_pages"`
	HasNext      bool                  `json:"has_next"`
	HasPrev      bool                  `json:"has_prev"`
}

type analyticsResponse struct {
	Jobs []ports.JobApplicationCount `json:"jobs"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Applied Shortlisted Selected Rejected"`
}
