package ports

import (
	"context"

	"github.com/bookhaven/book-review-api/internal/core/domain"
)

// Store-side sort fields for book listings. Average rating is derived and
// cannot be sorted by the store; the service layer handles it in memory.
const (
	BookSortCreatedAt = "createdAt"
	BookSortYear      = "year"
	BookSortTitle     = "title"
)

// ListBooksFilter carries the store-side portion of a listing query. Page and
// Limit arrive already normalised by the service layer.
type ListBooksFilter struct {
	Search    string // optional: case-insensitive substring on title OR author
	Genre     string // optional: case-insensitive exact match
	SortField string // one of the BookSort* constants
	SortAsc   bool
	Page      int // 1-based
	Limit     int
}

// BookRepository defines persistence operations for books.
type BookRepository interface {
	// Insert persists a new book and sets its generated ID.
	Insert(ctx context.Context, book *domain.Book) error
	// FindByID returns domain.ErrInvalidID for a malformed identifier and
	// domain.ErrBookNotFound when no document matches.
	FindByID(ctx context.Context, id string) (*domain.Book, error)
	// Update persists the book's mutable fields and refreshes UpdatedAt.
	Update(ctx context.Context, book *domain.Book) error
	Delete(ctx context.Context, id string) error
	// List returns one page of books matching filter plus the total count of
	// matches ignoring pagination.
	List(ctx context.Context, filter ListBooksFilter) ([]*domain.Book, int64, error)
	// ListByOwner returns all books added by a user, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Book, error)
}
