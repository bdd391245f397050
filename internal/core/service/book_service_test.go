package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookhaven/book-review-api/internal/core/domain"
	"github.com/bookhaven/book-review-api/internal/core/ports"
)

func newBookFixture(t *testing.T) (*BookService, *stubBookRepo, *stubReviewRepo, *stubUserRepo) {
	t.Helper()
	books := newStubBookRepo()
	reviews := newStubReviewRepo()
	users := newStubUserRepo()
	stats := NewStatsService(reviews)
	svc := NewBookService(books, reviews, users, stats, zerolog.Nop())
	return svc, books, reviews, users
}

func TestBookService_Add(t *testing.T) {
	svc, _, _, _ := newBookFixture(t)

	book, err := svc.Add(context.Background(), ports.CreateBookInput{
		Title: "Dune",
		Genre: "Sci-Fi",
		Year:  1965,
	}, "owner1")
	if err != nil {
		t.Fatalf("add book: %v", err)
	}
	if book.ID == "" {
		t.Fatalf("expected generated id")
	}
	if book.AddedBy != "owner1" {
		t.Fatalf("expected owner from caller, got %q", book.AddedBy)
	}
	if book.Year != 1965 {
		t.Fatalf("expected year 1965, got %d", book.Year)
	}
}

func TestBookService_Add_TitleRequired(t *testing.T) {
	svc, _, _, _ := newBookFixture(t)

	_, err := svc.Add(context.Background(), ports.CreateBookInput{Author: "Herbert"}, "owner1")
	if !errors.Is(err, domain.ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
}

func TestBookService_Add_YearCoercion(t *testing.T) {
	svc, _, _, _ := newBookFixture(t)

	cases := []struct {
		in   any
		want int
	}{
		{1965, 1965},
		{float64(2001), 2001},
		{"1984", 1984},
		{"next year", 0}, // uncoercible years are dropped, not rejected
		{nil, 0},
	}
	for _, tc := range cases {
		book, err := svc.Add(context.Background(), ports.CreateBookInput{Title: "t", Year: tc.in}, "owner1")
		if err != nil {
			t.Fatalf("add with year %v: %v", tc.in, err)
		}
		if book.Year != tc.want {
			t.Fatalf("year %v: got %d, want %d", tc.in, book.Year, tc.want)
		}
	}
}

func seedBooksWithRatings(t *testing.T, books *stubBookRepo, reviews *stubReviewRepo) {
	t.Helper()
	base := time.Now().UTC()
	seed := []struct {
		title   string
		genre   string
		year    int
		ratings []int
	}{
		{"Dune", "Sci-Fi", 1965, []int{5, 4}},
		{"Neuromancer", "Sci-Fi", 1984, []int{3}},
		{"Emma", "Romance", 1815, nil},
	}
	for i, s := range seed {
		b := &domain.Book{
			Title:     s.title,
			Author:    "Author " + s.title,
			Genre:     s.genre,
			Year:      s.year,
			AddedBy:   "owner1",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := books.Insert(context.Background(), b); err != nil {
			t.Fatalf("seed book: %v", err)
		}
		for j, rating := range s.ratings {
			rev := &domain.Review{
				BookID:    b.ID,
				UserID:    "reader" + string(rune('a'+j)),
				Rating:    rating,
				CreatedAt: base,
			}
			if err := reviews.Insert(context.Background(), rev); err != nil {
				t.Fatalf("seed review: %v", err)
			}
		}
	}
}

func TestBookService_List_DefaultsAndMeta(t *testing.T) {
	svc, books, reviews, _ := newBookFixture(t)
	seedBooksWithRatings(t, books, reviews)

	result, err := svc.List(context.Background(), ports.ListBooksInput{Page: 0, Limit: 0})
	if err != nil {
		t.Fatalf("list books: %v", err)
	}

	if result.Meta.Page != 1 || result.Meta.Limit != 5 {
		t.Fatalf("expected normalised page=1 limit=5, got %+v", result.Meta)
	}
	if result.Meta.Total != 3 || result.Meta.TotalPages != 1 {
		t.Fatalf("unexpected meta: %+v", result.Meta)
	}
	if result.Meta.HasNextPage || result.Meta.HasPrevPage {
		t.Fatalf("single page should have no neighbours: %+v", result.Meta)
	}
}

func TestBookService_List_LimitClamped(t *testing.T) {
	svc, books, reviews, _ := newBookFixture(t)
	seedBooksWithRatings(t, books, reviews)

	result, err := svc.List(context.Background(), ports.ListBooksInput{Limit: 100})
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	if result.Meta.Limit != 20 {
		t.Fatalf("expected limit clamped to 20, got %d", result.Meta.Limit)
	}
}

func TestBookService_List_Pagination(t *testing.T) {
	svc, books, reviews, _ := newBookFixture(t)
	seedBooksWithRatings(t, books, reviews)

	result, err := svc.List(context.Background(), ports.ListBooksInput{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if len(result.Data) != 2 || result.Meta.TotalPages != 2 {
		t.Fatalf("unexpected page 1: %d items, meta %+v", len(result.Data), result.Meta)
	}
	if !result.Meta.HasNextPage || result.Meta.HasPrevPage {
		t.Fatalf("page 1 of 2 should only have a next page: %+v", result.Meta)
	}

	result, err = svc.List(context.Background(), ports.ListBooksInput{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(result.Data) != 1 {
		t.Fatalf("expected 1 item on page 2, got %d", len(result.Data))
	}
	if result.Meta.HasNextPage || !result.Meta.HasPrevPage {
		t.Fatalf("page 2 of 2 should only have a prev page: %+v", result.Meta)
	}
}

func TestBookService_List_PastEndIsEmptyNotError(t *testing.T) {
	svc, books, reviews, _ := newBookFixture(t)
	seedBooksWithRatings(t, books, reviews)

	result, err := svc.List(context.Background(), ports.ListBooksInput{Page: 9, Limit: 5})
	if err != nil {
		t.Fatalf("list past end: %v", err)
	}
	if len(result.Data) != 0 {
		t.Fatalf("expected empty page, got %d items", len(result.Data))
	}
	if result.Meta.Total != 3 {
		t.Fatalf("total should still reflect all matches, got %d", result.Meta.Total)
	}
}

func TestBookService_List_GenreFilter(t *testing.T) {
	svc, books, reviews, _ := newBookFixture(t)
	seedBooksWithRatings(t, books, reviews)

	result, err := svc.List(context.Background(), ports.ListBooksInput{Genre: "sci-fi"})
	if err != nil {
		t.Fatalf("list by genre: %v", err)
	}
	if result.Meta.Total != 2 {
		t.Fatalf("expected 2 sci-fi books, got %d", result.Meta.Total)
	}
}

func TestBookService_List_DecoratesStats(t *testing.T) {
	svc, books, reviews, _ := newBookFixture(t)
	seedBooksWithRatings(t, books, reviews)

	result, err := svc.List(context.Background(), ports.ListBooksInput{})
	if err != nil {
		t.Fatalf("list books: %v", err)
	}

	byTitle := make(map[string]ports.BookSummary)
	for _, b := range result.Data {
		byTitle[b.Title] = b
	}

	dune := byTitle["Dune"]
	if dune.AverageRating == nil || *dune.AverageRating != 4.5 || dune.ReviewCount != 2 {
		t.Fatalf("unexpected Dune stats: avg=%v count=%d", dune.AverageRating, dune.ReviewCount)
	}
	emma := byTitle["Emma"]
	if emma.AverageRating != nil || emma.ReviewCount != 0 {
		t.Fatalf("book without reviews should have nil average: %+v", emma)
	}
}

func TestBookService_List_SortByRatingPageLocal(t *testing.T) {
	svc, books, reviews, _ := newBookFixture(t)
	seedBooksWithRatings(t, books, reviews)

	result, err := svc.List(context.Background(), ports.ListBooksInput{SortBy: "rating"})
	if err != nil {
		t.Fatalf("list sorted by rating: %v", err)
	}

	// Descending by default; unrated books sort as zero.
	want := []string{"Dune", "Neuromancer", "Emma"}
	for i, title := range want {
		if result.Data[i].Title != title {
			t.Fatalf("position %d: got %q, want %q", i, result.Data[i].Title, title)
		}
	}

	result, err = svc.List(context.Background(), ports.ListBooksInput{SortBy: "rating", Order: "asc"})
	if err != nil {
		t.Fatalf("list sorted ascending: %v", err)
	}
	if result.Data[0].Title != "Emma" {
		t.Fatalf("ascending should start with unrated book, got %q", result.Data[0].Title)
	}
}

func TestBookService_List_RatingSortScopedToPage(t *testing.T) {
	svc, books, reviews, _ := newBookFixture(t)

	base := time.Now().UTC()
	seed := []struct {
		title  string
		rating int
	}{
		{"Solaris", 3}, // oldest
		{"Dune", 5},
		{"Emma", 2}, // newest
	}
	for i, s := range seed {
		b := &domain.Book{Title: s.title, AddedBy: "owner1", CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := books.Insert(context.Background(), b); err != nil {
			t.Fatalf("seed book: %v", err)
		}
		rev := &domain.Review{BookID: b.ID, UserID: "reader", Rating: s.rating, CreatedAt: base}
		if err := reviews.Insert(context.Background(), rev); err != nil {
			t.Fatalf("seed review: %v", err)
		}
	}

	// The store pages newest first, so page 1 holds Emma and Dune. Rating
	// order applies within that page only: a global sort would pair Dune with
	// Solaris, but Solaris lives on page 2.
	result, err := svc.List(context.Background(), ports.ListBooksInput{SortBy: "rating", Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	want := []string{"Dune", "Emma"}
	if len(result.Data) != 2 {
		t.Fatalf("expected 2 items on page 1, got %d", len(result.Data))
	}
	for i, title := range want {
		if result.Data[i].Title != title {
			t.Fatalf("page 1 position %d: got %q, want %q", i, result.Data[i].Title, title)
		}
	}

	result, err = svc.List(context.Background(), ports.ListBooksInput{SortBy: "rating", Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(result.Data) != 1 || result.Data[0].Title != "Solaris" {
		t.Fatalf("expected Solaris alone on page 2, got %+v", result.Data)
	}
}

func TestBookService_List_SortByYear(t *testing.T) {
	svc, books, reviews, _ := newBookFixture(t)
	seedBooksWithRatings(t, books, reviews)

	result, err := svc.List(context.Background(), ports.ListBooksInput{SortBy: "year", Order: "asc"})
	if err != nil {
		t.Fatalf("list sorted by year: %v", err)
	}
	want := []string{"Emma", "Dune", "Neuromancer"}
	for i, title := range want {
		if result.Data[i].Title != title {
			t.Fatalf("position %d: got %q, want %q", i, result.Data[i].Title, title)
		}
	}
}

func TestBookService_GetByID(t *testing.T) {
	svc, books, reviews, users := newBookFixture(t)
	owner := seedUser(t, users, "Olive", "olive@example.com")
	book := seedBook(t, books, "Dune", owner.ID)

	rev := &domain.Review{BookID: book.ID, UserID: owner.ID, Rating: 5, CreatedAt: time.Now().UTC()}
	if err := reviews.Insert(context.Background(), rev); err != nil {
		t.Fatalf("seed review: %v", err)
	}

	detail, err := svc.GetByID(context.Background(), book.ID)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if detail.AddedBy.Name != "Olive" || detail.AddedBy.Email != "olive@example.com" {
		t.Fatalf("owner not joined: %+v", detail.AddedBy)
	}
	if detail.AverageRating == nil || *detail.AverageRating != 5 {
		t.Fatalf("unexpected average: %v", detail.AverageRating)
	}
	if detail.Distribution[5] != 1 {
		t.Fatalf("unexpected distribution: %v", detail.Distribution)
	}
	if len(detail.Reviews) != 1 {
		t.Fatalf("expected 1 review, got %d", len(detail.Reviews))
	}
}

func TestBookService_GetByID_DeletedOwnerDegrades(t *testing.T) {
	svc, books, _, _ := newBookFixture(t)
	book := seedBook(t, books, "Dune", "ghost")

	detail, err := svc.GetByID(context.Background(), book.ID)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if detail.AddedBy.ID != "ghost" || detail.AddedBy.Name != "" {
		t.Fatalf("expected bare owner id for deleted owner, got %+v", detail.AddedBy)
	}
}

func TestBookService_GetByID_OwnerLookupFailure(t *testing.T) {
	svc, books, _, users := newBookFixture(t)
	owner := seedUser(t, users, "Olive", "olive@example.com")
	book := seedBook(t, books, "Dune", owner.ID)

	users.findErr = errors.New("connection reset")
	_, err := svc.GetByID(context.Background(), book.ID)
	if !errors.Is(err, users.findErr) {
		t.Fatalf("owner store failure must propagate, got %v", err)
	}
}

func TestBookService_GetByID_NotFound(t *testing.T) {
	svc, _, _, _ := newBookFixture(t)

	_, err := svc.GetByID(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}

func TestBookService_Update_OwnerOnly(t *testing.T) {
	svc, books, _, _ := newBookFixture(t)
	book := seedBook(t, books, "Dune", "owner1")

	title := "Dune Messiah"
	_, err := svc.Update(context.Background(), book.ID, ports.UpdateBookInput{Title: &title}, "intruder")
	if !errors.Is(err, domain.ErrNotBookOwner) {
		t.Fatalf("expected ErrNotBookOwner, got %v", err)
	}

	updated, err := svc.Update(context.Background(), book.ID, ports.UpdateBookInput{Title: &title}, "owner1")
	if err != nil {
		t.Fatalf("update as owner: %v", err)
	}
	if updated.Title != "Dune Messiah" {
		t.Fatalf("title not updated: %q", updated.Title)
	}
}

func TestBookService_Update_AbsentFieldsUntouched(t *testing.T) {
	svc, books, _, _ := newBookFixture(t)
	book := seedBook(t, books, "Dune", "owner1")
	book.Genre = "Sci-Fi"
	if err := books.Update(context.Background(), book); err != nil {
		t.Fatalf("seed update: %v", err)
	}

	author := "Frank Herbert"
	updated, err := svc.Update(context.Background(), book.ID, ports.UpdateBookInput{Author: &author}, "owner1")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Dune" || updated.Genre != "Sci-Fi" {
		t.Fatalf("absent fields must not change: %+v", updated)
	}
	if updated.Author != "Frank Herbert" {
		t.Fatalf("author not updated: %q", updated.Author)
	}
}

func TestBookService_Delete_CascadesReviews(t *testing.T) {
	svc, books, reviews, _ := newBookFixture(t)
	book := seedBook(t, books, "Dune", "owner1")
	other := seedBook(t, books, "Emma", "owner1")

	for i, bookID := range []string{book.ID, book.ID, other.ID} {
		rev := &domain.Review{BookID: bookID, UserID: "reader" + string(rune('a'+i)), Rating: 4}
		if err := reviews.Insert(context.Background(), rev); err != nil {
			t.Fatalf("seed review: %v", err)
		}
	}

	removed, err := svc.Delete(context.Background(), book.ID, "owner1")
	if err != nil {
		t.Fatalf("delete book: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 cascaded reviews, got %d", removed)
	}
	if _, err := books.FindByID(context.Background(), book.ID); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("book should be gone, got %v", err)
	}
	// The other book's review survives.
	left, err := reviews.ListByBook(context.Background(), other.ID)
	if err != nil || len(left) != 1 {
		t.Fatalf("unrelated reviews must survive: %v, %d", err, len(left))
	}
}

func TestBookService_Delete_NotOwner(t *testing.T) {
	svc, books, _, _ := newBookFixture(t)
	book := seedBook(t, books, "Dune", "owner1")

	_, err := svc.Delete(context.Background(), book.ID, "intruder")
	if !errors.Is(err, domain.ErrNotBookOwner) {
		t.Fatalf("expected ErrNotBookOwner, got %v", err)
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 5, 1},
		{1, 5, 1},
		{5, 5, 1},
		{6, 5, 2},
		{41, 20, 3},
	}
	for _, tc := range cases {
		if got := totalPages(tc.total, tc.limit); got != tc.want {
			t.Fatalf("totalPages(%d, %d) = %d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}
