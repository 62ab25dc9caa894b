package domain

import "time"

// ApplicationStatus represents the review state of an application.
type ApplicationStatus string

const (
	StatusApplied     ApplicationStatus = "Applied"
	StatusShortlisted ApplicationStatus = "Shortlisted"
	StatusSelected    ApplicationStatus = "Selected"
	StatusRejected    ApplicationStatus = "Rejected"
)

// ValidStatus reports whether s is a recognized application status.
func ValidStatus(s string) bool {
	switch ApplicationStatus(s) {
	case StatusApplied, StatusShortlisted, StatusSelected, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the status conventionally ends the review flow.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusSelected || s == StatusRejected
}

// CanTransitionTo reports whether a transition from s to next is allowed.
// The review flow is deliberately permissive: admins may move an application
// to any status. When lockTerminal is set, Selected and Rejected become
// final and refuse further transitions.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus, lockTerminal bool) bool {
	if !ValidStatus(string(next)) {
		return false
	}
	if lockTerminal && s.IsTerminal() {
		return false
	}
	return true
}

// StatusHistoryEntry records a single status change. The history is
// append-only; its last entry always matches the application's status field.
type StatusHistoryEntry struct {
	Status    ApplicationStatus `json:"status" bson:"status"`
	ChangedAt time.Time         `json:"changed_at" bson:"changed_at"`
}

// ApplicantSnapshot is the applicant's contact and background data copied at
// submission time. It is a point-in-time value, not a live User reference:
// later profile edits must not retroactively alter submitted applications.
type ApplicantSnapshot struct {
	Name       string `json:"name" bson:"name"`
	Email      string `json:"email" bson:"email"`
	Phone      string `json:"phone" bson:"phone"`
	Education  string `json:"education" bson:"education"`
	Experience string `json:"experience" bson:"experience"`
	Skills     string `json:"skills,omitempty" bson:"skills,omitempty"`
	CoverNote  string `json:"cover_note,omitempty" bson:"cover_note,omitempty"`
}

// Application is the central aggregate: one user's submission to one job.
// At most one application may exist per (UserID, JobID) pair, enforced by a
// unique index so concurrent submissions cannot both succeed.
type Application struct {
	ID            string               `json:"id"`
	UserID        string               `json:"user_id"`
	JobID         string               `json:"job_id"`
	ResumeRef     string               `json:"resume_ref"`
	Applicant     ApplicantSnapshot    `json:"applicant"`
	Status        ApplicationStatus    `json:"status"`
	StatusHistory []StatusHistoryEntry `json:"status_history"`
	AppliedAt     time.Time            `json:"applied_at"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// StatusChange is the event emitted after a status transition commits. It is
// consumed asynchronously by the notification dispatcher; delivery failures
// never roll back the transition.
type StatusChange struct {
	ApplicationID  string
	RecipientEmail string
	JobTitle       string
	NewStatus      ApplicationStatus
	ChangedAt      time.Time
}
