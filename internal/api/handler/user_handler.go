package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bookhaven/book-review-api/internal/core/domain"
	"github.com/bookhaven/book-review-api/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type profileBookRef struct {
	ID     string `json:"_id"`
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
	Genre  string `json:"genre,omitempty"`
	Year   int    `json:"year,omitempty"`
}

type profileReviewResponse struct {
	ID         string         `json:"_id"`
	Book       profileBookRef `json:"bookId"`
	Rating     int            `json:"rating"`
	ReviewText string         `json:"reviewText,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

type profileResponse struct {
	User    *domain.User            `json:"user"`
	Books   []bookResponse          `json:"books"`
	Reviews []profileReviewResponse `json:"reviews"`
}

// Me returns the caller's account plus everything they contributed.
//
// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	result, err := h.service.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	books := make([]bookResponse, 0, len(result.Books))
	for _, b := range result.Books {
		books = append(books, toBookResponse(b))
	}

	reviews := make([]profileReviewResponse, 0, len(result.Reviews))
	for _, r := range result.Reviews {
		reviews = append(reviews, profileReviewResponse{
			ID: r.ID,
			Book: profileBookRef{
				ID:     r.Book.ID,
				Title:  r.Book.Title,
				Author: r.Book.Author,
				Genre:  r.Book.Genre,
				Year:   r.Book.Year,
			},
			Rating:     r.Rating,
			ReviewText: r.ReviewText,
			CreatedAt:  r.CreatedAt,
			UpdatedAt:  r.UpdatedAt,
		})
	}

	return c.JSON(http.StatusOK, profileResponse{
		User:    result.User,
		Books:   books,
		Reviews: reviews,
	})
}
