// Package metrics defines all custom Prometheus metrics for the book review
// API. It is the single source of truth for metric names, labels, and help
// strings; registration happens via promauto at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bookreview"

// --- Review metrics ---

// ReviewsCreatedTotal counts reviews successfully created.
// Label:
//   - rating: the submitted rating value ("1".."5")
var ReviewsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reviews_created_total",
		Help:      "Total number of reviews successfully created, by rating.",
	},
	[]string{"rating"},
)

// ReviewsRejectedTotal counts review submissions rejected before persistence.
// Label:
//   - reason: "invalid_rating", "duplicate", or "book_not_found"
var ReviewsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reviews_rejected_total",
		Help:      "Total number of rejected review submissions, by reason.",
	},
	[]string{"reason"},
)

// --- Book metrics ---

// BooksCreatedTotal counts newly created books.
var BooksCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "books_created_total",
		Help:      "Total number of books created.",
	},
)

// CascadeRemovedReviews counts reviews removed by book-deletion cascades.
var CascadeRemovedReviews = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascade_removed_reviews_total",
		Help:      "Total number of reviews removed because their book was deleted.",
	},
)

// BookListDuration measures how long a listing query takes end-to-end,
// including stats decoration and any in-memory rating sort.
// Label:
//   - sort_by: the requested sort key ("year", "title", "rating", "default")
var BookListDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "book_list_duration_seconds",
		Help:      "Duration of book listing queries from parse to response mapping.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"sort_by"},
)
