package handler

import (
	"time"

	"github.com/bookhaven/book-review-api/internal/core/domain"
	"github.com/bookhaven/book-review-api/internal/core/ports"
)

// --- Request types ---

type addReviewRequest struct {
	// Rating is untyped so numeric strings coerce: "3" is accepted and stored
	// as 3, "six" is rejected.
	Rating     any    `json:"rating"     validate:"required"`
	ReviewText string `json:"reviewText" validate:"omitempty,max=1000"`
}

type updateReviewRequest struct {
	Rating     any     `json:"rating"`
	ReviewText *string `json:"reviewText" validate:"omitempty,max=1000"`
}

// --- Response types ---

type reviewAuthorResponse struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type reviewResponse struct {
	ID         string               `json:"_id"`
	BookID     string               `json:"bookId"`
	Author     reviewAuthorResponse `json:"userId"`
	Rating     int                  `json:"rating"`
	ReviewText string               `json:"reviewText,omitempty"`
	CreatedAt  time.Time            `json:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt"`
}

type reviewWithStatsResponse struct {
	Review reviewResponse     `json:"review"`
	Stats  domain.RatingStats `json:"stats"`
}

// listReviewsResponse flattens the stats alongside the review list, matching
// the public contract of GET /reviews/:bookId.
type listReviewsResponse struct {
	AverageRating *float64         `json:"averageRating"`
	ReviewCount   int64            `json:"reviewCount"`
	Distribution  map[int]int64    `json:"distribution"`
	Reviews       []reviewResponse `json:"reviews"`
}

type deleteReviewResponse struct {
	Message string             `json:"message"`
	Stats   domain.RatingStats `json:"stats"`
}

// --- Mapping helpers ---

func toReviewResponse(v ports.ReviewView) reviewResponse {
	return reviewResponse{
		ID:     v.ID,
		BookID: v.BookID,
		Author: reviewAuthorResponse{
			ID:   v.Author.ID,
			Name: v.Author.Name,
		},
		Rating:     v.Rating,
		ReviewText: v.ReviewText,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
}

func toReviewResponses(views []ports.ReviewView) []reviewResponse {
	out := make([]reviewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toReviewResponse(v))
	}
	return out
}
