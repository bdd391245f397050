package ports

import (
	"context"

	"github.com/bookhaven/book-review-api/internal/core/domain"
)

// AuthService implements signup and login. Both return a signed JWT alongside
// the public user so clients can authenticate immediately.
type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
