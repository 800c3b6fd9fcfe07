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

// DonationRepository is the append-only donation ledger. It holds the
// campaign collection as well because completing a donation flips its status
// and bumps the campaign aggregates in one transaction.
type DonationRepository struct {
	db        *mongo.Database
	donations *mongo.Collection
	campaigns *mongo.Collection
}

// NewDonationRepository creates a new instance of DonationRepository.
func NewDonationRepository(db *mongo.Database) *DonationRepository {
	return &DonationRepository{
		db:        db,
		donations: db.Collection("donations"),
		campaigns: db.Collection("campaigns"),
	}
}

// CreateDonation appends a donation in pending state. Aggregates are not
// touched here.
func (r *DonationRepository) CreateDonation(ctx context.Context, donation *models.Donation) (*models.Donation, error) {
	donation.Status = models.DonationStatusPending
	donation.CreatedAt = time.Now()

	result, err := r.donations.InsertOne(ctx, donation)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert donation")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted donation ID")
		return nil, errors.New("failed to cast inserted ID")
	}
	donation.ID = insertedID

	logger.Log.WithFields(map[string]interface{}{
		"donation_id": donation.ID.Hex(),
		"campaign_id": donation.CampaignID.Hex(),
	}).Info("Donation recorded as pending")
	return donation, nil
}

// CreateCompletedDonation appends an instantly-confirmed donation and applies
// it to the campaign aggregates in the same transaction, so no pending state
// is ever observable.
func (r *DonationRepository) CreateCompletedDonation(ctx context.Context, donation *models.Donation) (*models.Donation, error) {
	donation.Status = models.DonationStatusCompleted
	donation.CreatedAt = time.Now()

	err := database.WithTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		result, err := r.donations.InsertOne(sc, donation)
		if err != nil {
			return err
		}
		insertedID, ok := result.InsertedID.(primitive.ObjectID)
		if !ok {
			return errors.New("failed to cast inserted ID")
		}
		donation.ID = insertedID

		return r.applyToCampaign(sc, donation.CampaignID, donation.AmountCents)
	})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to record completed donation")
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"donation_id": donation.ID.Hex(),
		"campaign_id": donation.CampaignID.Hex(),
	}).Info("Donation recorded and completed")
	return donation, nil
}

// CompleteDonation flips a pending donation to completed and bumps the
// campaign aggregates as one atomic unit. The status filter on the update is
// the idempotency guard: a donation that lost the race to another approval
// matches nothing and the whole transaction aborts, so nothing is ever
// counted twice. The aggregate bump is a $inc, never a read-modify-write.
func (r *DonationRepository) CompleteDonation(ctx context.Context, donationID, campaignID primitive.ObjectID, amountCents int64) error {
	err := database.WithTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		res, err := r.donations.UpdateOne(
			sc,
			bson.M{"_id": donationID, "status": models.DonationStatusPending},
			bson.M{"$set": bson.M{"status": models.DonationStatusCompleted}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return apperr.New(apperr.KindConflict, "donation already completed")
		}

		return r.applyToCampaign(sc, campaignID, amountCents)
	})
	if err != nil {
		logger.Log.WithError(err).WithField("donation_id", donationID.Hex()).Warn("Donation completion failed")
		return err
	}

	logger.Log.WithFields(map[string]interface{}{
		"donation_id": donationID.Hex(),
		"campaign_id": campaignID.Hex(),
	}).Info("Donation completed and applied to campaign")
	return nil
}

func (r *DonationRepository) applyToCampaign(sc mongo.SessionContext, campaignID primitive.ObjectID, amountCents int64) error {
	res, err := r.campaigns.UpdateOne(
		sc,
		bson.M{"_id": campaignID, "deleted": false, "on_hold": false},
		bson.M{"$inc": bson.M{"raised_cents": amountCents, "backers": 1}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Campaign went on hold or was deleted since the pre-checks; re-fetch
		// to report which, since the two carry different kinds.
		var campaign models.Campaign
		if err := r.campaigns.FindOne(sc, bson.M{"_id": campaignID}).Decode(&campaign); err == nil && campaign.Deleted {
			return apperr.New(apperr.KindClosed, "campaign is closed")
		}
		return apperr.New(apperr.KindOnHold, "campaign is not accepting donations")
	}
	return nil
}

// MarkFailed flips a pending donation to failed. Completed donations are
// immutable, so the filter only matches pending ones.
func (r *DonationRepository) MarkFailed(ctx context.Context, donationID primitive.ObjectID) error {
	res, err := r.donations.UpdateOne(
		ctx,
		bson.M{"_id": donationID, "status": models.DonationStatusPending},
		bson.M{"$set": bson.M{"status": models.DonationStatusFailed}},
	)
	if err != nil {
		logger.Log.WithError(err).WithField("donation_id", donationID.Hex()).Error("Failed to mark donation failed")
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.KindConflict, "donation is not pending")
	}
	return nil
}

// GetDonationByID fetches a donation by ID.
func (r *DonationRepository) GetDonationByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error) {
	var donation models.Donation
	err := r.donations.FindOne(ctx, bson.M{"_id": id}).Decode(&donation)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.New(apperr.KindNotFound, "donation not found")
	}
	if err != nil {
		logger.Log.WithError(err).WithField("donation_id", id.Hex()).Error("Failed to find donation")
		return nil, err
	}
	return &donation, nil
}

// ListCompletedByCampaign fetches the public donor list for a campaign,
// completed donations only, newest first.
func (r *DonationRepository) ListCompletedByCampaign(ctx context.Context, campaignID primitive.ObjectID) ([]models.Donation, error) {
	filter := bson.M{"campaign_id": campaignID, "status": models.DonationStatusCompleted}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.donations.Find(ctx, filter, findOptions)
	if err != nil {
		logger.Log.WithError(err).WithField("campaign_id", campaignID.Hex()).Error("Failed to fetch donations")
		return nil, err
	}
	defer cursor.Close(ctx)

	var donations []models.Donation
	for cursor.Next(ctx) {
		var donation models.Donation
		if err := cursor.Decode(&donation); err != nil {
			logger.Log.WithError(err).Error("Failed to decode donation")
			return nil, err
		}
		donations = append(donations, donation)
	}
	return donations, cursor.Err()
}

// ListByStatus fetches donations in a given status for the admin approval
// queue, newest first.
func (r *DonationRepository) ListByStatus(ctx context.Context, status string, limit int64) ([]models.Donation, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.donations.Find(ctx, bson.M{"status": status}, findOptions)
	if err != nil {
		logger.Log.WithError(err).WithField("status", status).Error("Failed to fetch donations by status")
		return nil, err
	}
	defer cursor.Close(ctx)

	var donations []models.Donation
	for cursor.Next(ctx) {
		var donation models.Donation
		if err := cursor.Decode(&donation); err != nil {
			logger.Log.WithError(err).Error("Failed to decode donation")
			return nil, err
		}
		donations = append(donations, donation)
	}
	return donations, cursor.Err()
}

// SumCompleted recomputes the ledger truth for one campaign: the exact sum
// and count of its completed donations.
func (r *DonationRepository) SumCompleted(ctx context.Context, campaignID primitive.ObjectID) (raisedCents int64, backers int64, err error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"campaign_id": campaignID,
			"status":      models.DonationStatusCompleted,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":    nil,
			"raised": bson.M{"$sum": "$amount_cents"},
			"count":  bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.donations.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return 0, 0, cursor.Err()
	}

	var doc struct {
		Raised int64 `bson:"raised"`
		Count  int64 `bson:"count"`
	}
	if err := cursor.Decode(&doc); err != nil {
		return 0, 0, err
	}
	return doc.Raised, doc.Count, nil
}
