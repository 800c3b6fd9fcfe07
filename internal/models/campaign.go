package models

import (
	"encoding/json"
	"time"

	"github.com/givehopebz/givehope-api/pkg/money"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ReviewStatusPending  = "pending"
	ReviewStatusRejected = "rejected"
)

// CampaignReview is a submitted campaign awaiting moderation. A logical
// campaign lives in exactly one of the review and campaign collections:
// approval creates the Campaign and removes the review in the same
// transaction.
type CampaignReview struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description" json:"description"`
	FullDescription string             `bson:"full_description" json:"full_description"`
	GoalCents       int64              `bson:"goal_cents" json:"-"`
	Category        string             `bson:"category" json:"category"`
	CreatorID       primitive.ObjectID `bson:"creator_id" json:"creator_id"`
	CreatorName     string             `bson:"creator_name" json:"creator_name"`
	CreatorEmail    string             `bson:"creator_email,omitempty" json:"-"`
	Images          []string           `bson:"images" json:"images"`
	Status          string             `bson:"status" json:"status"`
	SubmittedAt     time.Time          `bson:"submitted_at" json:"submitted_at"`
}

func (r CampaignReview) MarshalJSON() ([]byte, error) {
	type alias CampaignReview
	return json.Marshal(struct {
		alias
		Goal string `json:"goal"`
	}{alias(r), money.Format(r.GoalCents)})
}

// Campaign is the published, fundable entity. RaisedCents and Backers are a
// denormalized cache over the donation ledger; the only writers are the
// donation completion transaction and the reconciliation repair.
type Campaign struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description" json:"description"`
	FullDescription string             `bson:"full_description" json:"full_description"`
	GoalCents       int64              `bson:"goal_cents" json:"-"`
	Category        string             `bson:"category" json:"category"`
	CreatorID       primitive.ObjectID `bson:"creator_id" json:"creator_id"`
	CreatorName     string             `bson:"creator_name" json:"creator_name"`
	CreatorEmail    string             `bson:"creator_email,omitempty" json:"-"`
	Images          []string           `bson:"images" json:"images"`
	RaisedCents     int64              `bson:"raised_cents" json:"-"`
	Backers         int64              `bson:"backers" json:"backers"`
	OnHold          bool               `bson:"on_hold" json:"on_hold"`
	Deleted         bool               `bson:"deleted" json:"-"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

func (c Campaign) MarshalJSON() ([]byte, error) {
	type alias Campaign
	return json.Marshal(struct {
		alias
		Goal   string `json:"goal"`
		Raised string `json:"raised"`
	}{alias(c), money.Format(c.GoalCents), money.Format(c.RaisedCents)})
}

// AcceptsDonations reports whether new donations may be completed against
// the campaign. Deleted is terminal; on hold blocks completion the same way.
func (c *Campaign) AcceptsDonations() bool {
	return !c.Deleted && !c.OnHold
}

// CampaignState is the lifecycle position of one logical campaign: exactly
// one of Review and Campaign is set. Lookups that may hit either collection
// (delete, status pages) branch on it so the transition handling stays
// exhaustive.
type CampaignState struct {
	Review   *CampaignReview
	Campaign *Campaign
}

// CreatorID returns the creator of whichever representation is present.
func (s CampaignState) CreatorID() primitive.ObjectID {
	if s.Review != nil {
		return s.Review.CreatorID
	}
	if s.Campaign != nil {
		return s.Campaign.CreatorID
	}
	return primitive.NilObjectID
}

// SiteStats is the site-wide reduction over all live campaigns.
type SiteStats struct {
	TotalRaisedCents int64 `json:"-"`
	CampaignCount    int64 `json:"campaign_count"`
	Supporters       int64 `json:"supporters"`
}

func (s SiteStats) MarshalJSON() ([]byte, error) {
	type alias SiteStats
	return json.Marshal(struct {
		alias
		TotalRaised string `json:"total_raised"`
	}{alias(s), money.Format(s.TotalRaisedCents)})
}
