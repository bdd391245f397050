package ports

import (
	"context"

	"github.com/bookhaven/book-review-api/internal/core/domain"
)

// ReviewRepository defines persistence and aggregation operations for reviews.
type ReviewRepository interface {
	// Insert persists a new review and sets its generated ID. A store-level
	// duplicate on the (bookId, userId) unique index is returned as
	// domain.ErrDuplicateReview. This, not any pre-check, is the guarantee
	// that a user reviews a book at most once.
	Insert(ctx context.Context, review *domain.Review) error
	// FindOwned looks up a review by {_id, bookId, userId} in a single
	// predicate. An id owned by another user is indistinguishable from a
	// missing one: both return domain.ErrReviewNotFound.
	FindOwned(ctx context.Context, reviewID, bookID, userID string) (*domain.Review, error)
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, id string) error
	// ListByBook returns all reviews for a book, newest first.
	ListByBook(ctx context.Context, bookID string) ([]*domain.Review, error)
	// ListByUser returns all reviews written by a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Review, error)
	// DeleteByBook removes every review of a book and reports how many were
	// deleted. Used by the book deletion cascade.
	DeleteByBook(ctx context.Context, bookID string) (int64, error)
	// StatsForBook aggregates average, count, and the 1..5 histogram over all
	// reviews of one book.
	StatsForBook(ctx context.Context, bookID string) (domain.RatingStats, error)
	// StatsForBooks aggregates average and count per book in one grouped pass.
	// Books without reviews are absent from the result map.
	StatsForBooks(ctx context.Context, bookIDs []string) (map[string]domain.RatingSummary, error)
}
