package services

import (
	"context"

	"github.com/givehopebz/givehope-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The services accept these store interfaces so the engine's invariants can
// be tested against in-memory implementations; the mongo repositories in
// internal/repository satisfy them in production.

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, username string) error
	SetPhoneVerified(ctx context.Context, id primitive.ObjectID, verified bool) error
	SetIDVerified(ctx context.Context, id primitive.ObjectID, verified bool) error
	SetAddressVerified(ctx context.Context, id primitive.ObjectID, verified bool) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) error
	UpdateLastSeen(ctx context.Context, id primitive.ObjectID) error
	GetAllUsers(ctx context.Context) ([]models.User, error)
}

type ReviewStore interface {
	CreateReview(ctx context.Context, review *models.CampaignReview) (*models.CampaignReview, error)
	GetReviewByID(ctx context.Context, id primitive.ObjectID) (*models.CampaignReview, error)
	ListByStatus(ctx context.Context, status string) ([]models.CampaignReview, error)
	ListByCreator(ctx context.Context, creatorID primitive.ObjectID) ([]models.CampaignReview, error)
	MarkRejected(ctx context.Context, id primitive.ObjectID) error
	DeleteReview(ctx context.Context, id primitive.ObjectID) error
}

type CampaignStore interface {
	CreateCampaign(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error)
	PromoteReview(ctx context.Context, review *models.CampaignReview) (*models.Campaign, error)
	GetCampaignByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error)
	ListCampaigns(ctx context.Context, category string, limit int64) ([]models.Campaign, error)
	ListAllIDs(ctx context.Context) ([]primitive.ObjectID, error)
	UpdateText(ctx context.Context, id primitive.ObjectID, title, description, fullDescription string) error
	SetOnHold(ctx context.Context, id primitive.ObjectID, onHold bool) error
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
	OverwriteAggregates(ctx context.Context, id primitive.ObjectID, raisedCents, backers int64) error
	Stats(ctx context.Context) (models.SiteStats, error)
}

type DonationStore interface {
	CreateDonation(ctx context.Context, donation *models.Donation) (*models.Donation, error)
	CreateCompletedDonation(ctx context.Context, donation *models.Donation) (*models.Donation, error)
	CompleteDonation(ctx context.Context, donationID, campaignID primitive.ObjectID, amountCents int64) error
	MarkFailed(ctx context.Context, donationID primitive.ObjectID) error
	GetDonationByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error)
	ListCompletedByCampaign(ctx context.Context, campaignID primitive.ObjectID) ([]models.Donation, error)
	ListByStatus(ctx context.Context, status string, limit int64) ([]models.Donation, error)
	SumCompleted(ctx context.Context, campaignID primitive.ObjectID) (raisedCents int64, backers int64, err error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, notifID, userID primitive.ObjectID) error
	DeleteExpired(ctx context.Context) error
}
