package ports

import (
	"context"

	"github.com/talentdesk/ats-system/internal/core/domain"
)

// StatusNotifier delivers a status-change message to the applicant.
// Implementations may fail; failures are logged and never propagated back
// into the transition that triggered them.
type StatusNotifier interface {
	NotifyStatusChange(ctx context.Context, recipientEmail, jobTitle string, status domain.ApplicationStatus) error
}

// StatusChangePublisher is the post-commit hook the lifecycle service emits
// status changes to. The dispatcher implementation fans events out to worker
// goroutines; Publish never blocks the committing request beyond a buffered
// channel send.
type StatusChangePublisher interface {
	Publish(change domain.StatusChange)
}
