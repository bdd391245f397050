package service

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/bookhaven/book-review-api/internal/core/domain"
	"github.com/bookhaven/book-review-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubBookRepo struct {
	books   map[string]*domain.Book
	nextID  int
	listErr error
}

func newStubBookRepo() *stubBookRepo {
	return &stubBookRepo{books: make(map[string]*domain.Book)}
}

func (r *stubBookRepo) Insert(_ context.Context, b *domain.Book) error {
	r.nextID++
	b.ID = "book" + strconv.Itoa(r.nextID)
	clone := *b
	r.books[b.ID] = &clone
	return nil
}

func (r *stubBookRepo) FindByID(_ context.Context, id string) (*domain.Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *stubBookRepo) Update(_ context.Context, b *domain.Book) error {
	if _, ok := r.books[b.ID]; !ok {
		return domain.ErrBookNotFound
	}
	clone := *b
	r.books[b.ID] = &clone
	return nil
}

func (r *stubBookRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.books[id]; !ok {
		return domain.ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

// List mirrors the real Mongo query: filter, sort, count, then paginate.
func (r *stubBookRepo) List(_ context.Context, f ports.ListBooksFilter) ([]*domain.Book, int64, error) {
	if r.listErr != nil {
		return nil, 0, r.listErr
	}

	var matched []*domain.Book
	for _, b := range r.books {
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			titleMatch := strings.Contains(strings.ToLower(b.Title), needle)
			authorMatch := strings.Contains(strings.ToLower(b.Author), needle)
			if !titleMatch && !authorMatch {
				continue
			}
		}
		if f.Genre != "" && !strings.EqualFold(b.Genre, f.Genre) {
			continue
		}
		clone := *b
		matched = append(matched, &clone)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		var less bool
		switch f.SortField {
		case ports.BookSortYear:
			less = matched[i].Year < matched[j].Year
		case ports.BookSortTitle:
			less = matched[i].Title < matched[j].Title
		default:
			less = matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		if f.SortAsc {
			return less
		}
		return !less
	})

	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip >= len(matched) {
		return nil, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r *stubBookRepo) ListByOwner(_ context.Context, ownerID string) ([]*domain.Book, error) {
	var out []*domain.Book
	for _, b := range r.books {
		if b.AddedBy == ownerID {
			clone := *b
			out = append(out, &clone)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type stubReviewRepo struct {
	reviews   map[string]*domain.Review
	nextID    int
	insertErr error
	statsErr  error
}

func newStubReviewRepo() *stubReviewRepo {
	return &stubReviewRepo{reviews: make(map[string]*domain.Review)}
}

// Insert enforces the same (bookId, userId) uniqueness the real compound
// index does.
func (r *stubReviewRepo) Insert(_ context.Context, rev *domain.Review) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	for _, existing := range r.reviews {
		if existing.BookID == rev.BookID && existing.UserID == rev.UserID {
			return domain.ErrDuplicateReview
		}
	}
	r.nextID++
	rev.ID = "review" + strconv.Itoa(r.nextID)
	clone := *rev
	r.reviews[rev.ID] = &clone
	return nil
}

func (r *stubReviewRepo) FindOwned(_ context.Context, reviewID, bookID, userID string) (*domain.Review, error) {
	rev, ok := r.reviews[reviewID]
	if !ok || rev.BookID != bookID || rev.UserID != userID {
		return nil, domain.ErrReviewNotFound
	}
	clone := *rev
	return &clone, nil
}

func (r *stubReviewRepo) Update(_ context.Context, rev *domain.Review) error {
	if _, ok := r.reviews[rev.ID]; !ok {
		return domain.ErrReviewNotFound
	}
	clone := *rev
	r.reviews[rev.ID] = &clone
	return nil
}

func (r *stubReviewRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.reviews[id]; !ok {
		return domain.ErrReviewNotFound
	}
	delete(r.reviews, id)
	return nil
}

func (r *stubReviewRepo) ListByBook(_ context.Context, bookID string) ([]*domain.Review, error) {
	var out []*domain.Review
	for _, rev := range r.reviews {
		if rev.BookID == bookID {
			clone := *rev
			out = append(out, &clone)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubReviewRepo) ListByUser(_ context.Context, userID string) ([]*domain.Review, error) {
	var out []*domain.Review
	for _, rev := range r.reviews {
		if rev.UserID == userID {
			clone := *rev
			out = append(out, &clone)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubReviewRepo) DeleteByBook(_ context.Context, bookID string) (int64, error) {
	var removed int64
	for id, rev := range r.reviews {
		if rev.BookID == bookID {
			delete(r.reviews, id)
			removed++
		}
	}
	return removed, nil
}

// StatsForBook recomputes from stored reviews, like the real aggregation.
func (r *stubReviewRepo) StatsForBook(_ context.Context, bookID string) (domain.RatingStats, error) {
	if r.statsErr != nil {
		return domain.RatingStats{}, r.statsErr
	}
	var sum, count int64
	buckets := make(map[int]int64)
	for _, rev := range r.reviews {
		if rev.BookID != bookID {
			continue
		}
		sum += int64(rev.Rating)
		count++
		buckets[rev.Rating]++
	}
	var avg float64
	if count > 0 {
		avg = float64(sum) / float64(count)
	}
	return domain.NewRatingStats(avg, count, buckets), nil
}

func (r *stubReviewRepo) StatsForBooks(_ context.Context, bookIDs []string) (map[string]domain.RatingSummary, error) {
	if r.statsErr != nil {
		return nil, r.statsErr
	}
	type acc struct {
		sum   int64
		count int64
	}
	accs := make(map[string]*acc)
	for _, id := range bookIDs {
		accs[id] = &acc{}
	}
	for _, rev := range r.reviews {
		a, ok := accs[rev.BookID]
		if !ok {
			continue
		}
		a.sum += int64(rev.Rating)
		a.count++
	}
	out := make(map[string]domain.RatingSummary)
	for id, a := range accs {
		if a.count == 0 {
			continue
		}
		out[id] = domain.NewRatingSummary(float64(a.sum)/float64(a.count), a.count)
	}
	return out, nil
}

type stubUserRepo struct {
	users   map[string]*domain.User
	nextID  int
	findErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Insert(_ context.Context, u *domain.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	r.nextID++
	u.ID = "user" + strconv.Itoa(r.nextID)
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.User, error) {
	out := make(map[string]*domain.User)
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			clone := *u
			out[id] = &clone
		}
	}
	return out, nil
}

// stubLimiter counts failures in memory; blocked flips TooManyAttempts.
type stubLimiter struct {
	failures map[string]int
	blocked  bool
	resets   int
}

func newStubLimiter() *stubLimiter {
	return &stubLimiter{failures: make(map[string]int)}
}

func (l *stubLimiter) TooManyAttempts(_ context.Context, _ string) (bool, error) {
	return l.blocked, nil
}

func (l *stubLimiter) RecordFailure(_ context.Context, email string) error {
	l.failures[email]++
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, email string) error {
	l.resets++
	delete(l.failures, email)
	return nil
}
