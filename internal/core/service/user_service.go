package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bookhaven/book-review-api/internal/core/domain"
	"github.com/bookhaven/book-review-api/internal/core/ports"
)

// UserService serves the authenticated user's profile view: their books with
// rating stats and their reviews joined with book summaries.
type UserService struct {
	books   ports.BookRepository
	reviews ports.ReviewRepository
	stats   ports.StatsService
	users   ports.UserRepository
	logger  zerolog.Logger
}

func NewUserService(
	books ports.BookRepository,
	reviews ports.ReviewRepository,
	users ports.UserRepository,
	stats ports.StatsService,
	logger zerolog.Logger,
) *UserService {
	return &UserService{books: books, reviews: reviews, users: users, stats: stats, logger: logger}
}

// Profile loads the caller's books and reviews concurrently (independent
// reads), then decorates books with bulk stats and reviews with their books.
func (s *UserService) Profile(ctx context.Context, userID string) (*ports.ProfileResult, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	type reviewsResult struct {
		reviews []*domain.Review
		err     error
	}
	reviewsCh := make(chan reviewsResult, 1)
	go func() {
		reviews, reviewsErr := s.reviews.ListByUser(ctx, userID)
		reviewsCh <- reviewsResult{reviews: reviews, err: reviewsErr}
	}()

	books, err := s.books.ListByOwner(ctx, userID)
	if err != nil {
		<-reviewsCh
		return nil, err
	}
	rres := <-reviewsCh
	if rres.err != nil {
		return nil, rres.err
	}

	bookIDs := make([]string, 0, len(books))
	for _, b := range books {
		bookIDs = append(bookIDs, b.ID)
	}
	statsMap, err := s.stats.StatsForBooks(ctx, bookIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]ports.BookSummary, 0, len(books))
	for _, b := range books {
		var avg *float64
		var count int64
		if st, ok := statsMap[b.ID]; ok {
			avg = st.AverageRating
			count = st.ReviewCount
		}
		summary := toBookSummary(b, avg, count)
		summary.AddedBy = ports.OwnerRef{ID: user.ID, Name: user.Name, Email: user.Email}
		summaries = append(summaries, summary)
	}

	profileReviews, err := s.joinReviewBooks(ctx, user, rres.reviews)
	if err != nil {
		return nil, err
	}

	return &ports.ProfileResult{
		User:    user,
		Books:   summaries,
		Reviews: profileReviews,
	}, nil
}

func (s *UserService) joinReviewBooks(ctx context.Context, author *domain.User, reviews []*domain.Review) ([]ports.ProfileReview, error) {
	out := make([]ports.ProfileReview, 0, len(reviews))
	for _, r := range reviews {
		view := toReviewView(r, ports.ReviewAuthor{ID: author.ID, Name: author.Name})
		pr := ports.ProfileReview{ReviewView: view}
		if book, err := s.books.FindByID(ctx, r.BookID); err == nil {
			pr.Book = ports.BookRef{
				ID:     book.ID,
				Title:  book.Title,
				Author: book.Author,
				Genre:  book.Genre,
				Year:   book.Year,
			}
		}
		out = append(out, pr)
	}
	return out, nil
}
