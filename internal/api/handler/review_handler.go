package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bookhaven/book-review-api/internal/api/metrics"
	"github.com/bookhaven/book-review-api/internal/core/domain"
	"github.com/bookhaven/book-review-api/internal/core/ports"
)

// ReviewHandler handles HTTP requests for review operations.
type ReviewHandler struct {
	service ports.ReviewService
}

func NewReviewHandler(service ports.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// Create handles POST /reviews/:bookId.
//
// @Summary      Review a book (one review per user per book)
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bookId  path      string            true  "Book id"
// @Param        body    body      addReviewRequest  true  "Rating 1-5 and optional text"
// @Success      201     {object}  reviewWithStatsResponse
// @Failure      400     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /reviews/{bookId} [post]
func (h *ReviewHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req addReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Add(c.Request().Context(), c.Param("bookId"), userID, req.Rating, req.ReviewText)
	if err != nil {
		countRejection(err)
		return err
	}

	metrics.ReviewsCreatedTotal.WithLabelValues(strconv.Itoa(result.Review.Rating)).Inc()
	return c.JSON(http.StatusCreated, reviewWithStatsResponse{
		Review: toReviewResponse(result.Review),
		Stats:  result.Stats,
	})
}

// List handles GET /reviews/:bookId.
//
// @Summary      List a book's reviews with statistics
// @Tags         reviews
// @Produce      json
// @Param        bookId  path      string  true  "Book id"
// @Success      200     {object}  listReviewsResponse
// @Failure      404     {object}  errorResponse
// @Router       /reviews/{bookId} [get]
func (h *ReviewHandler) List(c echo.Context) error {
	result, err := h.service.ListForBook(c.Request().Context(), c.Param("bookId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listReviewsResponse{
		AverageRating: result.Stats.AverageRating,
		ReviewCount:   result.Stats.ReviewCount,
		Distribution:  result.Stats.Distribution,
		Reviews:       toReviewResponses(result.Reviews),
	})
}

// Update handles PUT /reviews/:bookId/:reviewId.
//
// @Summary      Update your review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bookId    path      string               true  "Book id"
// @Param        reviewId  path      string               true  "Review id"
// @Param        body      body      updateReviewRequest  true  "Fields to change"
// @Success      200       {object}  reviewWithStatsResponse
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /reviews/{bookId}/{reviewId} [put]
func (h *ReviewHandler) Update(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Update(c.Request().Context(), c.Param("bookId"), c.Param("reviewId"), userID, ports.ReviewPatch{
		Rating: req.Rating,
		Text:   req.ReviewText,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reviewWithStatsResponse{
		Review: toReviewResponse(result.Review),
		Stats:  result.Stats,
	})
}

// Delete handles DELETE /reviews/:bookId/:reviewId.
//
// @Summary      Delete your review
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        bookId    path      string  true  "Book id"
// @Param        reviewId  path      string  true  "Review id"
// @Success      200       {object}  deleteReviewResponse
// @Failure      404       {object}  errorResponse
// @Router       /reviews/{bookId}/{reviewId} [delete]
func (h *ReviewHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	stats, err := h.service.Delete(c.Request().Context(), c.Param("bookId"), c.Param("reviewId"), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, deleteReviewResponse{
		Message: "Review deleted",
		Stats:   stats,
	})
}

func countRejection(err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRating):
		metrics.ReviewsRejectedTotal.WithLabelValues("invalid_rating").Inc()
	case errors.Is(err, domain.ErrDuplicateReview):
		metrics.ReviewsRejectedTotal.WithLabelValues("duplicate").Inc()
	case errors.Is(err, domain.ErrBookNotFound):
		metrics.ReviewsRejectedTotal.WithLabelValues("book_not_found").Inc()
	}
}
