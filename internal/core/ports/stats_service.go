package ports

import (
	"context"

	"github.com/bookhaven/book-review-api/internal/core/domain"
)

// StatsService computes aggregate rating statistics on demand. Statistics are
// never cached: every call reflects the review set at the time of the query.
type StatsService interface {
	StatsForBook(ctx context.Context, bookID string) (domain.RatingStats, error)
	// StatsForBooks is the bulk form used by listing pages; it returns an
	// empty map for an empty id set without querying the store.
	StatsForBooks(ctx context.Context, bookIDs []string) (map[string]domain.RatingSummary, error)
}
