package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookhaven/book-review-api/internal/core/domain"
	"github.com/bookhaven/book-review-api/internal/core/ports"
)

// ReviewService manages review creation, update, and deletion for a
// (book, user) pair and recomputes the book's statistics after each mutation.
type ReviewService struct {
	books   ports.BookRepository
	reviews ports.ReviewRepository
	users   ports.UserRepository
	stats   ports.StatsService
	logger  zerolog.Logger
}

func NewReviewService(
	books ports.BookRepository,
	reviews ports.ReviewRepository,
	users ports.UserRepository,
	stats ports.StatsService,
	logger zerolog.Logger,
) *ReviewService {
	return &ReviewService{books: books, reviews: reviews, users: users, stats: stats, logger: logger}
}

// Add creates the caller's review of a book. The store's unique
// (bookId, userId) index is the real duplicate guard: two concurrent identical
// requests both pass any application-level check, and the index rejects the
// loser, surfacing as domain.ErrDuplicateReview.
func (s *ReviewService) Add(ctx context.Context, bookID, userID string, rating any, text string) (*ports.ReviewWithStats, error) {
	if _, err := s.books.FindByID(ctx, bookID); err != nil {
		return nil, err
	}

	parsed, err := coerceRating(rating)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	review := &domain.Review{
		BookID:     bookID,
		UserID:     userID,
		Rating:     parsed,
		ReviewText: text,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.reviews.Insert(ctx, review); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("book_id", bookID).
		Str("user_id", userID).
		Int("rating", parsed).
		Msg("review created")

	return s.reviewWithStats(ctx, review)
}

// Update applies a partial patch to the caller's own review. Ownership is
// enforced by the lookup predicate itself: a review id belonging to another
// user yields the same not-found error as a nonexistent one, so the error type
// never discloses whether someone else reviewed the book.
func (s *ReviewService) Update(ctx context.Context, bookID, reviewID, userID string, patch ports.ReviewPatch) (*ports.ReviewWithStats, error) {
	review, err := s.reviews.FindOwned(ctx, reviewID, bookID, userID)
	if err != nil {
		return nil, err
	}

	if patch.Rating != nil {
		parsed, err := coerceRating(patch.Rating)
		if err != nil {
			return nil, err
		}
		review.Rating = parsed
	}
	if patch.Text != nil {
		review.ReviewText = *patch.Text
	}
	review.UpdatedAt = time.Now().UTC()

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}

	return s.reviewWithStats(ctx, review)
}

// Delete removes the caller's own review (same ownership predicate as Update)
// and returns the book's recomputed statistics.
func (s *ReviewService) Delete(ctx context.Context, bookID, reviewID, userID string) (domain.RatingStats, error) {
	review, err := s.reviews.FindOwned(ctx, reviewID, bookID, userID)
	if err != nil {
		return domain.RatingStats{}, err
	}
	if err := s.reviews.Delete(ctx, review.ID); err != nil {
		return domain.RatingStats{}, err
	}

	s.logger.Info().
		Str("book_id", bookID).
		Str("review_id", reviewID).
		Msg("review deleted")

	return s.stats.StatsForBook(ctx, bookID)
}

// ListForBook returns all reviews of a book newest first, decorated with
// author names, alongside the book's statistics. The two reads have no
// ordering dependency and run concurrently.
func (s *ReviewService) ListForBook(ctx context.Context, bookID string) (*ports.BookReviews, error) {
	if _, err := s.books.FindByID(ctx, bookID); err != nil {
		return nil, err
	}

	statsCh := make(chan statsResult, 1)
	go func() {
		st, err := s.stats.StatsForBook(ctx, bookID)
		statsCh <- statsResult{stats: st, err: err}
	}()

	reviews, err := s.reviews.ListByBook(ctx, bookID)
	if err != nil {
		<-statsCh
		return nil, err
	}

	res := <-statsCh
	if res.err != nil {
		return nil, res.err
	}

	views, err := decorateReviews(ctx, s.users, reviews)
	if err != nil {
		return nil, err
	}

	return &ports.BookReviews{Stats: res.stats, Reviews: views}, nil
}

type statsResult struct {
	stats domain.RatingStats
	err   error
}

func (s *ReviewService) reviewWithStats(ctx context.Context, review *domain.Review) (*ports.ReviewWithStats, error) {
	// An author deleted mid-flight degrades to the bare id; any other lookup
	// failure is a real store error and fails the request.
	author := ports.ReviewAuthor{ID: review.UserID}
	user, err := s.users.FindByID(ctx, review.UserID)
	switch {
	case err == nil:
		author.Name = user.Name
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	stats, err := s.stats.StatsForBook(ctx, review.BookID)
	if err != nil {
		return nil, err
	}

	return &ports.ReviewWithStats{
		Review: toReviewView(review, author),
		Stats:  stats,
	}, nil
}

// decorateReviews attaches author display names via a single bulk lookup.
// Shared by the review listing and the single-book detail view.
func decorateReviews(ctx context.Context, users ports.UserRepository, reviews []*domain.Review) ([]ports.ReviewView, error) {
	ids := make([]string, 0, len(reviews))
	seen := make(map[string]struct{}, len(reviews))
	for _, r := range reviews {
		if _, ok := seen[r.UserID]; !ok {
			seen[r.UserID] = struct{}{}
			ids = append(ids, r.UserID)
		}
	}

	var authors map[string]*domain.User
	if len(ids) > 0 {
		var err error
		authors, err = users.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	views := make([]ports.ReviewView, 0, len(reviews))
	for _, r := range reviews {
		author := ports.ReviewAuthor{ID: r.UserID}
		if user, ok := authors[r.UserID]; ok {
			author.Name = user.Name
		}
		views = append(views, toReviewView(r, author))
	}
	return views, nil
}

func toReviewView(r *domain.Review, author ports.ReviewAuthor) ports.ReviewView {
	return ports.ReviewView{
		ID:         r.ID,
		BookID:     r.BookID,
		Author:     author,
		Rating:     r.Rating,
		ReviewText: r.ReviewText,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// coerceRating accepts the numeric forms a JSON client may send (number,
// numeric string) and range-checks the result. Fractional values are not
// ratings.
func coerceRating(raw any) (int, error) {
	var parsed int
	switch v := raw.(type) {
	case int:
		parsed = v
	case int64:
		parsed = int(v)
	case float64:
		if v != float64(int(v)) {
			return 0, domain.ErrInvalidRating
		}
		parsed = int(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, domain.ErrInvalidRating
		}
		parsed = int(n)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, domain.ErrInvalidRating
		}
		parsed = n
	default:
		return 0, domain.ErrInvalidRating
	}

	if !domain.ValidRating(parsed) {
		return 0, domain.ErrInvalidRating
	}
	return parsed, nil
}
