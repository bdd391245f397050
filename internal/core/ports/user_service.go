package ports

import (
	"context"

	"github.com/bookhaven/book-review-api/internal/core/domain"
)

// BookRef is the compact book summary attached to a profile review.
type BookRef struct {
	ID     string
	Title  string
	Author string
	Genre  string
	Year   int
}

// ProfileReview is one of the caller's reviews joined with its book.
type ProfileReview struct {
	ReviewView
	Book BookRef
}

// ProfileResult is the authenticated user's dashboard view.
type ProfileResult struct {
	User    *domain.User
	Books   []BookSummary
	Reviews []ProfileReview
}

// UserService serves account-centric read models.
type UserService interface {
	Profile(ctx context.Context, userID string) (*ProfileResult, error)
}
