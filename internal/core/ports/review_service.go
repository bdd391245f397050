package ports

import (
	"context"
	"time"

	"github.com/bookhaven/book-review-api/internal/core/domain"
)

// ReviewAuthor is the public identity attached to a review.
type ReviewAuthor struct {
	ID   string
	Name string
}

// ReviewView is a review decorated with its author's display name.
type ReviewView struct {
	ID         string
	BookID     string
	Author     ReviewAuthor
	Rating     int
	ReviewText string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ReviewPatch carries a partial review update. Rating is untyped so numeric
// strings coerce the same way they do on creation; nil means "leave as is".
type ReviewPatch struct {
	Rating any
	Text   *string
}

// ReviewWithStats pairs a review with the book's freshly recomputed stats.
type ReviewWithStats struct {
	Review ReviewView
	Stats  domain.RatingStats
}

// BookReviews is the full review listing for one book.
type BookReviews struct {
	Stats   domain.RatingStats
	Reviews []ReviewView
}

// ReviewService manages the review lifecycle for a (book, user) pair and
// recomputes the book's statistics after every mutation.
type ReviewService interface {
	Add(ctx context.Context, bookID, userID string, rating any, text string) (*ReviewWithStats, error)
	Update(ctx context.Context, bookID, reviewID, userID string, patch ReviewPatch) (*ReviewWithStats, error)
	Delete(ctx context.Context, bookID, reviewID, userID string) (domain.RatingStats, error)
	ListForBook(ctx context.Context, bookID string) (*BookReviews, error)
}
