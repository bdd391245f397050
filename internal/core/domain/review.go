package domain

import (
	"math"
	"time"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxReviewTextLen = 1000
)

// Review is a single user's opinion on a book. The store enforces at most one
// review per (BookID, UserID) pair via a unique compound index.
type Review struct {
	ID         string
	BookID     string
	UserID     string
	Rating     int
	ReviewText string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RatingStats aggregates all reviews of one book. AverageRating is nil when
// the book has no reviews. Distribution always carries every key 1..5, even
// for empty buckets.
type RatingStats struct {
	AverageRating *float64      `json:"averageRating"`
	ReviewCount   int64         `json:"reviewCount"`
	Distribution  map[int]int64 `json:"distribution"`
}

// RatingSummary is the bulk-listing form of RatingStats, without the histogram.
type RatingSummary struct {
	AverageRating *float64
	ReviewCount   int64
}

// NewRatingStats builds stats from a raw average and per-rating counts. The
// average is rounded to two decimals; counts for out-of-range ratings are
// ignored.
func NewRatingStats(avg float64, count int64, buckets map[int]int64) RatingStats {
	stats := RatingStats{
		ReviewCount:  count,
		Distribution: emptyDistribution(),
	}
	for rating, n := range buckets {
		if _, ok := stats.Distribution[rating]; ok {
			stats.Distribution[rating] = n
		}
	}
	if count > 0 {
		rounded := RoundAverage(avg)
		stats.AverageRating = &rounded
	}
	return stats
}

// NewRatingSummary rounds the average; nil average when there are no reviews.
func NewRatingSummary(avg float64, count int64) RatingSummary {
	summary := RatingSummary{ReviewCount: count}
	if count > 0 {
		rounded := RoundAverage(avg)
		summary.AverageRating = &rounded
	}
	return summary
}

// RoundAverage rounds an average rating to two decimal places.
func RoundAverage(avg float64) float64 {
	return math.Round(avg*100) / 100
}

// ValidRating reports whether r is an acceptable rating value.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

func emptyDistribution() map[int]int64 {
	d := make(map[int]int64, MaxRating)
	for r := MinRating; r <= MaxRating; r++ {
		d[r] = 0
	}
	return d
}
