package handler

import (
	"time"

	"github.com/bookhaven/book-review-api/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type createBookRequest struct {
	Title       string `json:"title"       validate:"required"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
	// Year is untyped: clients send numbers or numeric strings, and a value
	// that cannot be coerced is dropped rather than rejected.
	Year any `json:"year"`
}

type updateBookRequest struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Description *string `json:"description"`
	Genre       *string `json:"genre"`
	Year        any     `json:"year"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract is not coupled to
// internal service changes. Field names are part of the public contract.

type ownerResponse struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// bookCreatedResponse is the undecorated book returned by create and update;
// addedBy is the raw owner id there, not a join.
type bookCreatedResponse struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Author      string    `json:"author,omitempty"`
	Description string    `json:"description,omitempty"`
	Genre       string    `json:"genre,omitempty"`
	Year        int       `json:"year,omitempty"`
	AddedBy     string    `json:"addedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// bookResponse is a listing item: book joined with owner identity and stats.
type bookResponse struct {
	ID            string        `json:"_id"`
	Title         string        `json:"title"`
	Author        string        `json:"author,omitempty"`
	Description   string        `json:"description,omitempty"`
	Genre         string        `json:"genre,omitempty"`
	Year          int           `json:"year,omitempty"`
	AddedBy       ownerResponse `json:"addedBy"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	AverageRating *float64      `json:"averageRating"`
	ReviewCount   int64         `json:"reviewCount"`
}

type metaResponse struct {
	Total       int64 `json:"total"`
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

type listBooksResponse struct {
	Data []bookResponse `json:"data"`
	Meta metaResponse   `json:"meta"`
}

// getBookResponse is the full detail view: decorated book, rating histogram,
// and the complete newest-first review list.
type getBookResponse struct {
	bookResponse
	RatingDistribution map[int]int64    `json:"ratingDistribution"`
	Reviews            []reviewResponse `json:"reviews"`
}

type deleteBookResponse struct {
	Message        string `json:"message"`
	RemovedReviews int64  `json:"removedReviews"`
}

// --- Mapping helpers ---

func toBookResponse(b ports.BookSummary) bookResponse {
	return bookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Genre:       b.Genre,
		Year:        b.Year,
		AddedBy: ownerResponse{
			ID:    b.AddedBy.ID,
			Name:  b.AddedBy.Name,
			Email: b.AddedBy.Email,
		},
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
		AverageRating: b.AverageRating,
		ReviewCount:   b.ReviewCount,
	}
}
