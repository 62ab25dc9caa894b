package handler

import (
	"time"

	"github.com/talentdesk/ats-system/internal/core/ports"
)

// toApplicationResponse flattens a joined application for the wire. The
// resume itself is never embedded; clients follow resume_url to stream it.
func toApplicationResponse(view ports.ApplicationView) applicationResponse {
	app := view.Application

	resp := applicationResponse{
		ID:            app.ID,
		JobID:         app.JobID,
		Applicant:     app.Applicant,
		Status:        string(app.Status),
		StatusHistory: app.StatusHistory,
		AppliedAt:     app.AppliedAt.UTC().Format(time.RFC3339),
		ResumeURL:     "/v1/applications/" + app.ID + "/resume",
	}

	if view.Job != nil {
		resp.Job = &jobSummaryResponse{
			ID:       view.Job.ID,
			Title:    view.Job.Title,
			Type:     view.Job.Type,
			Location: view.Job.Location,
		}
	}

	return resp
}

func toApplicationResponses(views []ports.ApplicationView) []applicationResponse {
	out := make([]applicationResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toApplicationResponse(v))
	}
	return out
}
