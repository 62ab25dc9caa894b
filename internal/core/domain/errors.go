package domain

import "errors"

// Sentinel errors shared across services and mapped to HTTP status codes by
// the transport layer. Handlers and repositories wrap these with context via
// fmt.Errorf("...: %w", err) and callers test with errors.Is.
var (
	ErrValidation           = errors.New("validation failed")
	ErrJobNotFound          = errors.New("job not found")
	ErrJobClosed            = errors.New("job is no longer accepting applications")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrForbidden            = errors.New("access forbidden")
	ErrDuplicateApplication = errors.New("already applied to this job")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrLastAdmin            = errors.New("cannot demote the last admin")
	ErrResumeNotFound       = errors.New("resume not found")
	ErrUnsupportedMediaType = errors.New("only PDF resumes are accepted")
	ErrPayloadTooLarge      = errors.New("resume exceeds the maximum allowed size")
	ErrUpstreamUnavailable  = errors.New("resume storage backend unavailable")
)
