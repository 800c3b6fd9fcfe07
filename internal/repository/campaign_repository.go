package repository

import (
	"context"
	"errors"
	"time"

	"github.com/givehopebz/givehope-api/internal/database"
	"github.com/givehopebz/givehope-api/internal/models"
	"github.com/givehopebz/givehope-api/pkg/apperr"
	"github.com/givehopebz/givehope-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CampaignRepository stores published campaigns. It also holds the review
// collection because the approval transition moves a document between the
// two inside one transaction.
type CampaignRepository struct {
	db        *mongo.Database
	campaigns *mongo.Collection
	reviews   *mongo.Collection
}

// NewCampaignRepository creates a new instance of CampaignRepository.
func NewCampaignRepository(db *mongo.Database) *CampaignRepository {
	return &CampaignRepository{
		db:        db,
		campaigns: db.Collection("campaigns"),
		reviews:   db.Collection("campaign_reviews"),
	}
}

// CreateCampaign inserts a campaign directly, used by the admin create path
// that skips moderation. Aggregates always start at zero.
func (r *CampaignRepository) CreateCampaign(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error) {
	campaign.RaisedCents = 0
	campaign.Backers = 0
	campaign.CreatedAt = time.Now()

	result, err := r.campaigns.InsertOne(ctx, campaign)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert campaign")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted campaign ID")
		return nil, errors.New("failed to cast inserted ID")
	}
	campaign.ID = insertedID

	logger.Log.WithField("campaign_id", campaign.ID.Hex()).Info("Campaign created")
	return campaign, nil
}

// PromoteReview turns an approved review into a live campaign: the campaign
// insert and the review delete commit together or not at all, so a logical
// campaign never exists in both collections.
func (r *CampaignRepository) PromoteReview(ctx context.Context, review *models.CampaignReview) (*models.Campaign, error) {
	campaign := &models.Campaign{
		Title:           review.Title,
		Description:     review.Description,
		FullDescription: review.FullDescription,
		GoalCents:       review.GoalCents,
		Category:        review.Category,
		CreatorID:       review.CreatorID,
		CreatorName:     review.CreatorName,
		CreatorEmail:    review.CreatorEmail,
		Images:          review.Images,
		RaisedCents:     0,
		Backers:         0,
		OnHold:          false,
		CreatedAt:       time.Now(),
	}

	err := database.WithTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		result, err := r.campaigns.InsertOne(sc, campaign)
		if err != nil {
			return err
		}
		insertedID, ok := result.InsertedID.(primitive.ObjectID)
		if !ok {
			return errors.New("failed to cast inserted ID")
		}
		campaign.ID = insertedID

		del, err := r.reviews.DeleteOne(sc, bson.M{"_id": review.ID, "status": models.ReviewStatusPending})
		if err != nil {
			return err
		}
		if del.DeletedCount == 0 {
			// Someone else approved or rejected it first; abort the insert.
			return apperr.New(apperr.KindConflict, "review is no longer pending")
		}
		return nil
	})
	if err != nil {
		logger.Log.WithError(err).WithField("review_id", review.ID.Hex()).Error("Failed to promote review")
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"review_id":   review.ID.Hex(),
		"campaign_id": campaign.ID.Hex(),
	}).Info("Review promoted to live campaign")
	return campaign, nil
}

// GetCampaignByID fetches a campaign by ID, including soft-deleted ones so
// callers can distinguish closed from missing.
func (r *CampaignRepository) GetCampaignByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.campaigns.FindOne(ctx, bson.M{"_id": id}).Decode(&campaign)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.New(apperr.KindNotFound, "campaign not found")
	}
	if err != nil {
		logger.Log.WithError(err).WithField("campaign_id", id.Hex()).Error("Failed to find campaign")
		return nil, err
	}
	return &campaign, nil
}

// ListCampaigns fetches live campaigns with an optional category filter,
// newest first.
func (r *CampaignRepository) ListCampaigns(ctx context.Context, category string, limit int64) ([]models.Campaign, error) {
	filter := bson.M{"deleted": false}
	if category != "" {
		filter["category"] = category
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.campaigns.Find(ctx, filter, findOptions)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch campaigns")
		return nil, err
	}
	defer cursor.Close(ctx)

	var campaigns []models.Campaign
	for cursor.Next(ctx) {
		var campaign models.Campaign
		if err := cursor.Decode(&campaign); err != nil {
			logger.Log.WithError(err).Error("Failed to decode campaign")
			return nil, err
		}
		campaigns = append(campaigns, campaign)
	}
	return campaigns, cursor.Err()
}

// ListAllIDs returns the IDs of every non-deleted campaign, for the
// reconciliation sweep.
func (r *CampaignRepository) ListAllIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	cursor, err := r.campaigns.Find(ctx, bson.M{"deleted": false},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ids []primitive.ObjectID
	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cursor.Err()
}

// UpdateText edits the display fields in place. Goal and aggregates are
// deliberately unreachable from here.
func (r *CampaignRepository) UpdateText(ctx context.Context, id primitive.ObjectID, title, description, fullDescription string) error {
	set := bson.M{}
	if title != "" {
		set["title"] = title
	}
	if description != "" {
		set["description"] = description
	}
	if fullDescription != "" {
		set["full_description"] = fullDescription
	}
	if len(set) == 0 {
		return apperr.New(apperr.KindValidation, "no fields to update")
	}

	res, err := r.campaigns.UpdateOne(ctx, bson.M{"_id": id, "deleted": false}, bson.M{"$set": set})
	if err != nil {
		logger.Log.WithError(err).WithField("campaign_id", id.Hex()).Error("Failed to update campaign text")
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.KindNotFound, "campaign not found")
	}
	return nil
}

// SetOnHold flips the hold flag.
func (r *CampaignRepository) SetOnHold(ctx context.Context, id primitive.ObjectID, onHold bool) error {
	res, err := r.campaigns.UpdateOne(ctx, bson.M{"_id": id, "deleted": false}, bson.M{
		"$set": bson.M{"on_hold": onHold},
	})
	if err != nil {
		logger.Log.WithError(err).WithField("campaign_id", id.Hex()).Error("Failed to set campaign hold")
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.KindNotFound, "campaign not found")
	}

	logger.Log.WithFields(map[string]interface{}{
		"campaign_id": id.Hex(),
		"on_hold":     onHold,
	}).Info("Campaign hold flag updated")
	return nil
}

// SoftDelete marks a campaign deleted. Donation history stays in the ledger;
// every acceptance path treats deleted as terminal.
func (r *CampaignRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.campaigns.UpdateOne(ctx, bson.M{"_id": id, "deleted": false}, bson.M{
		"$set": bson.M{"deleted": true},
	})
	if err != nil {
		logger.Log.WithError(err).WithField("campaign_id", id.Hex()).Error("Failed to delete campaign")
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.KindNotFound, "campaign not found")
	}

	logger.Log.WithField("campaign_id", id.Hex()).Info("Campaign deleted")
	return nil
}

// OverwriteAggregates replaces the denormalized totals with values recomputed
// from the ledger. Only the reconciliation repair calls this.
func (r *CampaignRepository) OverwriteAggregates(ctx context.Context, id primitive.ObjectID, raisedCents, backers int64) error {
	res, err := r.campaigns.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"raised_cents": raisedCents, "backers": backers},
	})
	if err != nil {
		logger.Log.WithError(err).WithField("campaign_id", id.Hex()).Error("Failed to overwrite aggregates")
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.KindNotFound, "campaign not found")
	}
	return nil
}

// Stats reduces all live campaigns to site-wide totals. An empty campaign
// set yields zeros.
func (r *CampaignRepository) Stats(ctx context.Context) (models.SiteStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"deleted": false}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"raised":  bson.M{"$sum": "$raised_cents"},
			"backers": bson.M{"$sum": "$backers"},
			"count":   bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.campaigns.Aggregate(ctx, pipeline)
	if err != nil {
		return models.SiteStats{}, err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return models.SiteStats{}, cursor.Err()
	}

	var doc struct {
		Raised  int64 `bson:"raised"`
		Backers int64 `bson:"backers"`
		Count   int64 `bson:"count"`
	}
	if err := cursor.Decode(&doc); err != nil {
		return models.SiteStats{}, err
	}
	return models.SiteStats{
		TotalRaisedCents: doc.Raised,
		CampaignCount:    doc.Count,
		Supporters:       doc.Backers,
	}, nil
}
