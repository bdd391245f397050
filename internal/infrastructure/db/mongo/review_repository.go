package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bookhaven/book-review-api/internal/core/domain"
)

const collectionReviews = "reviews"

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection(collectionReviews)}
}

type reviewDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	BookID     primitive.ObjectID `bson:"bookId"`
	UserID     primitive.ObjectID `bson:"userId"`
	Rating     int                `bson:"rating"`
	ReviewText string             `bson:"reviewText,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func (d *reviewDoc) toDomain() *domain.Review {
	return &domain.Review{
		ID:         d.ID.Hex(),
		BookID:     d.BookID.Hex(),
		UserID:     d.UserID.Hex(),
		Rating:     d.Rating,
		ReviewText: d.ReviewText,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// Insert persists a new review. The unique (bookId, userId) index turns a
// concurrent double-submit into a duplicate-key error, reported as
// domain.ErrDuplicateReview.
func (r *ReviewRepository) Insert(ctx context.Context, review *domain.Review) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	bookID, err := parseID(review.BookID)
	if err != nil {
		return err
	}
	userID, err := parseID(review.UserID)
	if err != nil {
		return err
	}

	doc := reviewDoc{
		BookID:     bookID,
		UserID:     userID,
		Rating:     review.Rating,
		ReviewText: review.ReviewText,
		CreatedAt:  review.CreatedAt,
		UpdatedAt:  review.UpdatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateReview
		}
		return err
	}
	review.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

// FindOwned looks up a review through the full {_id, bookId, userId}
// predicate. Another user's review id matches nothing, so ownership mismatch
// and absence are indistinguishable by design.
func (r *ReviewRepository) FindOwned(ctx context.Context, reviewID, bookID, userID string) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rid, err := parseID(reviewID)
	if err != nil {
		return nil, err
	}
	bid, err := parseID(bookID)
	if err != nil {
		return nil, err
	}
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}

	var doc reviewDoc
	err = r.col.FindOne(ctx, bson.M{"_id": rid, "bookId": bid, "userId": uid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := parseID(review.ID)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"rating":     review.Rating,
		"reviewText": review.ReviewText,
		"updatedAt":  review.UpdatedAt,
	}}
	res, err := r.col.UpdateByID(ctx, oid, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) ListByBook(ctx context.Context, bookID string) ([]*domain.Review, error) {
	bid, err := parseID(bookID)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, bson.M{"bookId": bid})
}

func (r *ReviewRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Review, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, bson.M{"userId": uid})
}

func (r *ReviewRepository) list(ctx context.Context, filter bson.M) ([]*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var reviews []*domain.Review
	for cur.Next(ctx) {
		var doc reviewDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		reviews = append(reviews, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

// DeleteByBook removes every review of a book; used by the deletion cascade.
func (r *ReviewRepository) DeleteByBook(ctx context.Context, bookID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	bid, err := parseID(bookID)
	if err != nil {
		return 0, err
	}
	res, err := r.col.DeleteMany(ctx, bson.M{"bookId": bid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// StatsForBook runs one $match + $facet aggregation: a summary branch for the
// average and count, a distribution branch grouped by rating value.
func (r *ReviewRepository) StatsForBook(ctx context.Context, bookID string) (domain.RatingStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	bid, err := parseID(bookID)
	if err != nil {
		return domain.RatingStats{}, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"bookId": bid}}},
		{{Key: "$facet", Value: bson.M{
			"summary": bson.A{
				bson.M{"$group": bson.M{
					"_id":           nil,
					"averageRating": bson.M{"$avg": "$rating"},
					"reviewCount":   bson.M{"$sum": 1},
				}},
			},
			"distribution": bson.A{
				bson.M{"$group": bson.M{
					"_id":   "$rating",
					"count": bson.M{"$sum": 1},
				}},
			},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.RatingStats{}, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Summary []struct {
			AverageRating float64 `bson:"averageRating"`
			ReviewCount   int64   `bson:"reviewCount"`
		} `bson:"summary"`
		Distribution []struct {
			Rating int   `bson:"_id"`
			Count  int64 `bson:"count"`
		} `bson:"distribution"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return domain.RatingStats{}, err
	}

	var avg float64
	var count int64
	buckets := make(map[int]int64)
	if len(rows) > 0 {
		if len(rows[0].Summary) > 0 {
			avg = rows[0].Summary[0].AverageRating
			count = rows[0].Summary[0].ReviewCount
		}
		for _, row := range rows[0].Distribution {
			buckets[row.Rating] = row.Count
		}
	}
	return domain.NewRatingStats(avg, count, buckets), nil
}

// StatsForBooks groups one pass over all reviews whose bookId is in the set.
// Books without reviews are simply absent from the result.
func (r *ReviewRepository) StatsForBooks(ctx context.Context, bookIDs []string) (map[string]domain.RatingSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ids := make([]primitive.ObjectID, 0, len(bookIDs))
	for _, id := range bookIDs {
		oid, err := parseID(id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, oid)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"bookId": bson.M{"$in": ids}}}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$bookId",
			"averageRating": bson.M{"$avg": "$rating"},
			"reviewCount":   bson.M{"$sum": 1},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		BookID        primitive.ObjectID `bson:"_id"`
		AverageRating float64            `bson:"averageRating"`
		ReviewCount   int64              `bson:"reviewCount"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make(map[string]domain.RatingSummary, len(rows))
	for _, row := range rows {
		out[row.BookID.Hex()] = domain.NewRatingSummary(row.AverageRating, row.ReviewCount)
	}
	return out, nil
}

// EnsureIndexes creates the compound unique index that enforces the
// one-review-per-user-per-book invariant, plus the listing index.
func (r *ReviewRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "bookId", Value: 1}, {Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "bookId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
