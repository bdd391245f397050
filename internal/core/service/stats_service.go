package service

import (
	"context"

	"github.com/bookhaven/book-review-api/internal/core/domain"
	"github.com/bookhaven/book-review-api/internal/core/ports"
)

// StatsService computes rating statistics straight from the review store on
// every call. There is no cache: a read always reflects the current review
// set, at the cost of one aggregation query per request.
type StatsService struct {
	reviews ports.ReviewRepository
}

func NewStatsService(reviews ports.ReviewRepository) *StatsService {
	return &StatsService{reviews: reviews}
}

func (s *StatsService) StatsForBook(ctx context.Context, bookID string) (domain.RatingStats, error) {
	return s.reviews.StatsForBook(ctx, bookID)
}

// StatsForBooks short-circuits an empty id set so rendering an empty listing
// page never touches the store.
func (s *StatsService) StatsForBooks(ctx context.Context, bookIDs []string) (map[string]domain.RatingSummary, error) {
	if len(bookIDs) == 0 {
		return map[string]domain.RatingSummary{}, nil
	}
	return s.reviews.StatsForBooks(ctx, bookIDs)
}
