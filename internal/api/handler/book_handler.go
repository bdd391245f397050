package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bookhaven/book-review-api/internal/api/metrics"
	"github.com/bookhaven/book-review-api/internal/core/domain"
	"github.com/bookhaven/book-review-api/internal/core/ports"
)

// BookHandler handles HTTP requests for book operations.
type BookHandler struct {
	service ports.BookService
}

func NewBookHandler(service ports.BookService) *BookHandler {
	return &BookHandler{service: service}
}

// List handles GET /books.
//
// @Summary      List books with filters, sorting, and pagination
// @Tags         books
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Page size (default 5, max 20)"
// @Param        search  query     string  false  "Substring match on title or author"
// @Param        genre   query     string  false  "Exact genre match, case-insensitive"
// @Param        sortBy  query     string  false  "year | title | rating (default: newest first)"
// @Param        order   query     string  false  "asc | desc (default desc)"
// @Success      200     {object}  listBooksResponse
// @Failure      500     {object}  errorResponse
// @Router       /books [get]
func (h *BookHandler) List(c echo.Context) error {
	input := ports.ListBooksInput{
		Search: c.QueryParam("search"),
		Genre:  c.QueryParam("genre"),
		SortBy: c.QueryParam("sortBy"),
		Order:  c.QueryParam("order"),
	}
	input.Page, _ = strconv.Atoi(c.QueryParam("page"))
	input.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	sortLabel := input.SortBy
	switch sortLabel {
	case "year", "title", "rating":
	default:
		sortLabel = "default"
	}
	timer := time.Now()

	result, err := h.service.List(c.Request().Context(), input)
	if err != nil {
		return err
	}
	metrics.BookListDuration.WithLabelValues(sortLabel).Observe(time.Since(timer).Seconds())

	data := make([]bookResponse, 0, len(result.Data))
	for _, b := range result.Data {
		data = append(data, toBookResponse(b))
	}

	return c.JSON(http.StatusOK, listBooksResponse{
		Data: data,
		Meta: metaResponse{
			Total:       result.Meta.Total,
			Page:        result.Meta.Page,
			Limit:       result.Meta.Limit,
			TotalPages:  result.Meta.TotalPages,
			HasNextPage: result.Meta.HasNextPage,
			HasPrevPage: result.Meta.HasPrevPage,
		},
	})
}

// Get handles GET /books/:id.
//
// @Summary      Get a book with statistics and reviews
// @Tags         books
// @Produce      json
// @Param        id   path      string  true  "Book id"
// @Success      200  {object}  getBookResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /books/{id} [get]
func (h *BookHandler) Get(c echo.Context) error {
	detail, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, getBookResponse{
		bookResponse:       toBookResponse(detail.BookSummary),
		RatingDistribution: detail.Distribution,
		Reviews:            toReviewResponses(detail.Reviews),
	})
}

// Create handles POST /books.
//
// @Summary      Add a book to the catalogue
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createBookRequest  true  "Book fields"
// @Success      201   {object}  bookCreatedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /books [post]
func (h *BookHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req createBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	book, err := h.service.Add(c.Request().Context(), ports.CreateBookInput{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		Genre:       req.Genre,
		Year:        req.Year,
	}, userID)
	if err != nil {
		return err
	}

	metrics.BooksCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toBookCreatedResponse(book))
}

// Update handles PUT /books/:id.
//
// @Summary      Update a book (owner only)
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Book id"
// @Param        body  body      updateBookRequest  true  "Fields to change"
// @Success      200   {object}  bookCreatedResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /books/{id} [put]
func (h *BookHandler) Update(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	book, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.UpdateBookInput{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		Genre:       req.Genre,
		Year:        req.Year,
	}, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toBookCreatedResponse(book))
}

// Delete handles DELETE /books/:id, cascading to the book's reviews.
//
// @Summary      Delete a book and its reviews (owner only)
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Book id"
// @Success      200  {object}  deleteBookResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /books/{id} [delete]
func (h *BookHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	removed, err := h.service.Delete(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}

	metrics.CascadeRemovedReviews.Add(float64(removed))
	return c.JSON(http.StatusOK, deleteBookResponse{
		Message:        "Book deleted",
		RemovedReviews: removed,
	})
}

func toBookCreatedResponse(b *domain.Book) bookCreatedResponse {
	return bookCreatedResponse{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Genre:       b.Genre,
		Year:        b.Year,
		AddedBy:     b.AddedBy,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
