package models

import (
	"encoding/json"
	"time"

	"github.com/givehopebz/givehope-api/pkg/money"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DonationStatusPending   = "pending"
	DonationStatusCompleted = "completed"
	DonationStatusFailed    = "failed"

	MethodBank       = "bank"
	MethodDigiWallet = "digiwallet"
	MethodEKyash     = "ekyash"

	// MaxNoteLength bounds the donor note.
	MaxNoteLength = 100
)

// Donation is one append-only ledger entry tied to exactly one campaign.
// CampaignTitle is a display snapshot taken at write time and never
// re-validated against the campaign. Once completed a donation is immutable.
type Donation struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CampaignID      primitive.ObjectID `bson:"campaign_id" json:"campaign_id"`
	CampaignTitle   string             `bson:"campaign_title" json:"campaign_title"`
	AmountCents     int64              `bson:"amount_cents" json:"-"`
	DonorEmail      string             `bson:"donor_email,omitempty" json:"donor_email,omitempty"`
	DonorName       string             `bson:"donor_name,omitempty" json:"donor_name,omitempty"`
	Anonymous       bool               `bson:"anonymous" json:"anonymous"`
	Method          string             `bson:"method" json:"method"`
	Status          string             `bson:"status" json:"status"`
	ReferenceNumber string             `bson:"reference_number,omitempty" json:"reference_number,omitempty"`
	Note            string             `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

func (d Donation) MarshalJSON() ([]byte, error) {
	type alias Donation
	return json.Marshal(struct {
		alias
		Amount string `json:"amount"`
	}{alias(d), money.Format(d.AmountCents)})
}

// Public returns the donor-list shape: anonymous donors lose their name and
// email, and the payment reference is never shown.
func (d Donation) Public() Donation {
	out := d
	out.DonorEmail = ""
	out.ReferenceNumber = ""
	if out.Anonymous {
		out.DonorName = "Anonymous"
	}
	return out
}

// ValidMethod reports whether m is a supported payment method.
func ValidMethod(m string) bool {
	switch m {
	case MethodBank, MethodDigiWallet, MethodEKyash:
		return true
	}
	return false
}

// InstantMethod reports whether donations via m are confirmed at creation
// time and skip the pending queue.
func InstantMethod(m string) bool {
	switch m {
	case MethodDigiWallet, MethodEKyash:
		return true
	}
	return false
}
