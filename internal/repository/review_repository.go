package repository

import (
	"context"
	"errors"
	"time"

	"github.com/givehopebz/givehope-api/internal/models"
	"github.com/givehopebz/givehope-api/pkg/apperr"
	"github.com/givehopebz/givehope-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReviewRepository stores campaign submissions while they await moderation.
type ReviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository creates a new instance of ReviewRepository.
func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{
		collection: db.Collection("campaign_reviews"),
	}
}

// CreateReview inserts a new submission in pending state.
func (r *ReviewRepository) CreateReview(ctx context.Context, review *models.CampaignReview) (*models.CampaignReview, error) {
	review.Status = models.ReviewStatusPending
	review.SubmittedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert campaign review")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted review ID")
		return nil, errors.New("failed to cast inserted ID")
	}
	review.ID = insertedID

	logger.Log.WithField("review_id", review.ID.Hex()).Info("Campaign review created")
	return review, nil
}

// GetReviewByID fetches a review by its ID.
func (r *ReviewRepository) GetReviewByID(ctx context.Context, id primitive.ObjectID) (*models.CampaignReview, error) {
	var review models.CampaignReview
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.New(apperr.KindNotFound, "campaign review not found")
	}
	if err != nil {
		logger.Log.WithError(err).WithField("review_id", id.Hex()).Error("Failed to find review")
		return nil, err
	}
	return &review, nil
}

// ListByStatus fetches reviews in the given status, newest first.
func (r *ReviewRepository) ListByStatus(ctx context.Context, status string) ([]models.CampaignReview, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"status": status}, findOptions)
	if err != nil {
		logger.Log.WithError(err).WithField("status", status).Error("Failed to fetch reviews")
		return nil, err
	}
	defer cursor.Close(ctx)

	var reviews []models.CampaignReview
	for cursor.Next(ctx) {
		var review models.CampaignReview
		if err := cursor.Decode(&review); err != nil {
			logger.Log.WithError(err).Error("Failed to decode review")
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, cursor.Err()
}

// ListByCreator fetches all submissions by one creator, newest first.
func (r *ReviewRepository) ListByCreator(ctx context.Context, creatorID primitive.ObjectID) ([]models.CampaignReview, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"creator_id": creatorID}, findOptions)
	if err != nil {
		logger.Log.WithError(err).WithField("creator_id", creatorID.Hex()).Error("Failed to fetch creator reviews")
		return nil, err
	}
	defer cursor.Close(ctx)

	var reviews []models.CampaignReview
	for cursor.Next(ctx) {
		var review models.CampaignReview
		if err := cursor.Decode(&review); err != nil {
			logger.Log.WithError(err).Error("Failed to decode review")
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, cursor.Err()
}

// MarkRejected flips a pending review to rejected. The conditional filter
// makes a double rejection surface as a conflict instead of a silent no-op.
func (r *ReviewRepository) MarkRejected(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.ReviewStatusPending},
		bson.M{"$set": bson.M{"status": models.ReviewStatusRejected}},
	)
	if err != nil {
		logger.Log.WithError(err).WithField("review_id", id.Hex()).Error("Failed to reject review")
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.KindConflict, "review is not pending")
	}

	logger.Log.WithField("review_id", id.Hex()).Info("Campaign review rejected")
	return nil
}

// DeleteReview removes a review record.
func (r *ReviewRepository) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Log.WithError(err).WithField("review_id", id.Hex()).Error("Failed to delete review")
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.New(apperr.KindNotFound, "campaign review not found")
	}

	logger.Log.WithField("review_id", id.Hex()).Info("Campaign review deleted")
	return nil
}
