package domain

import "time"

// JobType distinguishes internships from full positions.
type JobType string

const (
	JobTypeInternship JobType = "Internship"
	JobTypeJob        JobType = "Job"
)

// ValidJobType reports whether s is a recognized posting type.
func ValidJobType(s string) bool {
	return JobType(s) == JobTypeInternship || JobType(s) == JobTypeJob
}

// Job is a posting applicants can apply to. Postings are deactivated rather
// than deleted while applications reference them; an explicit delete cascades
// to the referencing applications (never silently orphans them).
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Skills      []string  `json:"skills"`
	Type        JobType   `json:"type"`
	Location    string    `json:"location"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
