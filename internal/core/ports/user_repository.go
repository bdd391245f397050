package ports

import (
	"context"

	"github.com/bookhaven/book-review-api/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Insert persists a new user and sets its generated ID. A duplicate on
	// the unique email index is returned as domain.ErrEmailTaken.
	Insert(ctx context.Context, user *domain.User) error
	// FindByEmail expects an already-normalised (lowercase, trimmed) email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByIDs returns the matching users keyed by id; unknown ids are
	// simply absent. Used for decorating books and reviews with author info.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
}
