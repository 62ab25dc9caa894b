package ports

import (
	"context"

	"github.com/talentdesk/ats-system/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// CountByRole returns the number of accounts holding the given role.
	// Used to enforce the last-admin invariant before a demotion.
	CountByRole(ctx context.Context, role string) (int64, error)
}
