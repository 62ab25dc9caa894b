package ports

import (
	"context"

	"github.com/talentdesk/ats-system/internal/core/domain"
)

// UpdateProfileInput carries optional profile fields; empty strings mean
// "leave unchanged".
type UpdateProfileInput struct {
	Name      string
	Email     string
	Phone     string
	AvatarURL string
}

// AuthService handles account registration, login, and profile management.
type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error)
	// SetRole changes a user's role. Demoting the last remaining admin is
	// rejected with domain.ErrLastAdmin.
	SetRole(ctx context.Context, userID, role string) (*domain.User, error)
}
