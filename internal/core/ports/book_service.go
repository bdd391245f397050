package ports

import (
	"context"
	"time"

	"github.com/bookhaven/book-review-api/internal/core/domain"
)

// CreateBookInput carries the whitelisted creation fields. Year is untyped
// because clients may send it as a number or a numeric string; a value that
// cannot be coerced is silently dropped, matching the permissive write policy.
type CreateBookInput struct {
	Title       string
	Author      string
	Description string
	Genre       string
	Year        any
}

// UpdateBookInput distinguishes absent fields (nil) from explicit values so a
// partial update leaves untouched fields as they are.
type UpdateBookInput struct {
	Title       *string
	Author      *string
	Description *string
	Genre       *string
	Year        any
}

// OwnerRef is the public identity of the user who added a book.
type OwnerRef struct {
	ID    string
	Name  string
	Email string
}

// BookSummary is a book decorated with its owner and bulk rating stats.
type BookSummary struct {
	ID            string
	Title         string
	Author        string
	Description   string
	Genre         string
	Year          int
	AddedBy       OwnerRef
	CreatedAt     time.Time
	UpdatedAt     time.Time
	AverageRating *float64 // nil when the book has no reviews
	ReviewCount   int64
}

// ListBooksInput carries the raw listing query parameters. The service
// normalises paging and resolves the sort key.
type ListBooksInput struct {
	Page   int
	Limit  int
	Search string
	Genre  string
	SortBy string // "year", "title", "rating"; anything else = newest first
	Order  string // "asc" ascending, anything else descending
}

// ListMeta is the pagination envelope returned with every listing page.
type ListMeta struct {
	Total       int64
	Page        int
	Limit       int
	TotalPages  int
	HasNextPage bool
	HasPrevPage bool
}

// ListBooksResult is one page of decorated books plus pagination metadata.
type ListBooksResult struct {
	Data []BookSummary
	Meta ListMeta
}

// BookDetail is the full single-book view: summary, rating histogram, and the
// complete newest-first review list.
type BookDetail struct {
	BookSummary
	Distribution map[int]int64
	Reviews      []ReviewView
}

// BookService covers the book lifecycle (create, owner-gated update/delete
// with review cascade) and the listing query engine.
type BookService interface {
	Add(ctx context.Context, input CreateBookInput, ownerID string) (*domain.Book, error)
	GetByID(ctx context.Context, id string) (*BookDetail, error)
	List(ctx context.Context, input ListBooksInput) (*ListBooksResult, error)
	Update(ctx context.Context, id string, input UpdateBookInput, requesterID string) (*domain.Book, error)
	// Delete cascades: all reviews of the book are removed first, then the
	// book itself. Returns the number of removed reviews.
	Delete(ctx context.Context, id string, requesterID string) (int64, error)
}
