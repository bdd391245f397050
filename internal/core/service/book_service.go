package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookhaven/book-review-api/internal/core/domain"
	"github.com/bookhaven/book-review-api/internal/core/ports"
)

const (
	defaultPageSize = 5
	maxPageSize     = 20
)

// BookService covers the book lifecycle and the listing query engine.
type BookService struct {
	books   ports.BookRepository
	reviews ports.ReviewRepository
	users   ports.UserRepository
	stats   ports.StatsService
	logger  zerolog.Logger
}

func NewBookService(
	books ports.BookRepository,
	reviews ports.ReviewRepository,
	users ports.UserRepository,
	stats ports.StatsService,
	logger zerolog.Logger,
) *BookService {
	return &BookService{books: books, reviews: reviews, users: users, stats: stats, logger: logger}
}

// Add creates a book owned by ownerID. Only whitelisted fields are accepted;
// any client-supplied owner is ignored.
func (s *BookService) Add(ctx context.Context, input ports.CreateBookInput, ownerID string) (*domain.Book, error) {
	if input.Title == "" {
		return nil, domain.ErrTitleRequired
	}

	now := time.Now().UTC()
	book := &domain.Book{
		Title:       input.Title,
		Author:      input.Author,
		Description: input.Description,
		Genre:       input.Genre,
		AddedBy:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if year, ok := coerceYear(input.Year); ok {
		book.Year = year
	}

	if err := s.books.Insert(ctx, book); err != nil {
		s.logger.Error().Err(err).Msg("failed to create book")
		return nil, err
	}

	s.logger.Info().Str("book_id", book.ID).Str("owner_id", ownerID).Msg("book created")
	return book, nil
}

// List executes a filtered, sorted, paginated listing. Filtering, pagination,
// and persisted-field sorts are pushed to the store; sorting by average rating
// cannot be, because the rating is derived. In that case the fetched page is
// re-sorted in memory after decoration, so rating order holds within each page
// rather than globally. That page-local scope is intentional.
func (s *BookService) List(ctx context.Context, input ports.ListBooksInput) (*ports.ListBooksResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	asc := input.Order == "asc"
	sortField := ports.BookSortCreatedAt
	switch input.SortBy {
	case "year":
		sortField = ports.BookSortYear
	case "title":
		sortField = ports.BookSortTitle
	case "rating":
		// store-side sort stays at newest-first; re-sorted below
	default:
	}

	books, total, err := s.books.List(ctx, ports.ListBooksFilter{
		Search:    input.Search,
		Genre:     input.Genre,
		SortField: sortField,
		SortAsc:   asc && (input.SortBy == "year" || input.SortBy == "title"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	data, err := s.decorate(ctx, books)
	if err != nil {
		return nil, err
	}

	if input.SortBy == "rating" {
		sort.SliceStable(data, func(i, j int) bool {
			a, b := ratingOrZero(data[i].AverageRating), ratingOrZero(data[j].AverageRating)
			if asc {
				return a < b
			}
			return a > b
		})
	}

	return &ports.ListBooksResult{
		Data: data,
		Meta: ports.ListMeta{
			Total:       total,
			Page:        page,
			Limit:       limit,
			TotalPages:  totalPages(total, limit),
			HasNextPage: int64(page*limit) < total,
			HasPrevPage: page > 1,
		},
	}, nil
}

// GetByID returns the book joined with its owner, full statistics including
// the histogram, and the complete newest-first review list. Statistics and
// reviews are independent reads and run concurrently.
func (s *BookService) GetByID(ctx context.Context, id string) (*ports.BookDetail, error) {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	statsCh := make(chan statsResult, 1)
	go func() {
		st, statsErr := s.stats.StatsForBook(ctx, book.ID)
		statsCh <- statsResult{stats: st, err: statsErr}
	}()

	reviews, err := s.reviews.ListByBook(ctx, book.ID)
	if err != nil {
		<-statsCh
		return nil, err
	}
	res := <-statsCh
	if res.err != nil {
		return nil, res.err
	}

	summary := toBookSummary(book, res.stats.AverageRating, res.stats.ReviewCount)
	// A deleted owner degrades to the bare id; any other lookup failure is a
	// real store error and fails the request.
	owner, ownerErr := s.users.FindByID(ctx, book.AddedBy)
	switch {
	case ownerErr == nil:
		summary.AddedBy = ports.OwnerRef{ID: owner.ID, Name: owner.Name, Email: owner.Email}
	case !errors.Is(ownerErr, domain.ErrUserNotFound):
		return nil, ownerErr
	}

	views, err := decorateReviews(ctx, s.users, reviews)
	if err != nil {
		return nil, err
	}

	return &ports.BookDetail{
		BookSummary:  summary,
		Distribution: res.stats.Distribution,
		Reviews:      views,
	}, nil
}

// Update merges whitelisted fields into the existing book. Fields absent from
// the input stay untouched; only the owner may update.
func (s *BookService) Update(ctx context.Context, id string, input ports.UpdateBookInput, requesterID string) (*domain.Book, error) {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if book.AddedBy != requesterID {
		return nil, domain.ErrNotBookOwner
	}

	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Author != nil {
		book.Author = *input.Author
	}
	if input.Description != nil {
		book.Description = *input.Description
	}
	if input.Genre != nil {
		book.Genre = *input.Genre
	}
	if year, ok := coerceYear(input.Year); ok {
		book.Year = year
	}
	book.UpdatedAt = time.Now().UTC()

	if err := s.books.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// Delete removes a book and cascades to its reviews. The review deletion runs
// first so a failure never leaves orphaned reviews pointing at a missing book;
// the two steps are sequential, not transactional, and a crash between them is
// a known risk window.
func (s *BookService) Delete(ctx context.Context, id string, requesterID string) (int64, error) {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if book.AddedBy != requesterID {
		return 0, domain.ErrNotBookOwner
	}

	removed, err := s.reviews.DeleteByBook(ctx, book.ID)
	if err != nil {
		return 0, fmt.Errorf("cascade reviews: %w", err)
	}
	if err := s.books.Delete(ctx, book.ID); err != nil {
		return 0, fmt.Errorf("delete book after removing %d reviews: %w", removed, err)
	}

	s.logger.Info().
		Str("book_id", id).
		Int64("removed_reviews", removed).
		Msg("book deleted")

	return removed, nil
}

// decorate joins owners and bulk stats into book summaries.
func (s *BookService) decorate(ctx context.Context, books []*domain.Book) ([]ports.BookSummary, error) {
	bookIDs := make([]string, 0, len(books))
	ownerIDs := make([]string, 0, len(books))
	seen := make(map[string]struct{}, len(books))
	for _, b := range books {
		bookIDs = append(bookIDs, b.ID)
		if _, ok := seen[b.AddedBy]; !ok {
			seen[b.AddedBy] = struct{}{}
			ownerIDs = append(ownerIDs, b.AddedBy)
		}
	}

	statsMap, err := s.stats.StatsForBooks(ctx, bookIDs)
	if err != nil {
		return nil, err
	}

	var owners map[string]*domain.User
	if len(ownerIDs) > 0 {
		owners, err = s.users.FindByIDs(ctx, ownerIDs)
		if err != nil {
			return nil, err
		}
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
		if owner, ok := owners[b.AddedBy]; ok {
			summary.AddedBy = ports.OwnerRef{ID: owner.ID, Name: owner.Name, Email: owner.Email}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func toBookSummary(b *domain.Book, avg *float64, count int64) ports.BookSummary {
	return ports.BookSummary{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Description:   b.Description,
		Genre:         b.Genre,
		Year:          b.Year,
		AddedBy:       ports.OwnerRef{ID: b.AddedBy},
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
		AverageRating: avg,
		ReviewCount:   count,
	}
}

func ratingOrZero(avg *float64) float64 {
	if avg == nil {
		return 0
	}
	return *avg
}

func totalPages(total int64, limit int) int {
	pages := int(math.Ceil(float64(total) / float64(limit)))
	if pages < 1 {
		return 1
	}
	return pages
}

// coerceYear accepts the numeric forms a JSON client may send. A value that
// cannot be coerced is dropped rather than rejected.
func coerceYear(raw any) (int, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
