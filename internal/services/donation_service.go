package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/givehopebz/givehope-api/internal/models"
	"github.com/givehopebz/givehope-api/pkg/apperr"
	"github.com/givehopebz/givehope-api/pkg/authz"
	"github.com/givehopebz/givehope-api/pkg/logger"
	"github.com/givehopebz/givehope-api/pkg/money"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DonationService owns the donation ledger and the reconciliation protocol.
// The campaign aggregates are a cache over this ledger; the ledger is always
// the source of truth.
type DonationService struct {
	donations DonationStore
	campaigns CampaignStore
	policy    *authz.Policy
}

// NewDonationService creates a new instance of DonationService.
func NewDonationService(donations DonationStore, campaigns CampaignStore, policy *authz.Policy) *DonationService {
	return &DonationService{
		donations: donations,
		campaigns: campaigns,
		policy:    policy,
	}
}

// DonationInput is a donor-facing donation payload.
type DonationInput struct {
	CampaignID      string `json:"campaign_id"`
	Amount          string `json:"amount"`
	DonorEmail      string `json:"donor_email"`
	DonorName       string `json:"donor_name"`
	Anonymous       bool   `json:"anonymous"`
	Method          string `json:"method"`
	ReferenceNumber string `json:"reference_number"`
	Note            string `json:"note"`
}

// validate checks the payload and resolves the target campaign. Deleted
// campaigns are terminal for acceptance.
func (s *DonationService) validate(ctx context.Context, input DonationInput) (*models.Donation, *models.Campaign, error) {
	campaignID, err := primitive.ObjectIDFromHex(input.CampaignID)
	if err != nil {
		return nil, nil, apperr.New(apperr.KindValidation, "invalid campaign ID")
	}
	amountCents, err := money.Parse(input.Amount)
	if err != nil || amountCents <= 0 {
		return nil, nil, apperr.New(apperr.KindValidation, "amount must be a positive value")
	}
	if !models.ValidMethod(input.Method) {
		return nil, nil, apperr.Newf(apperr.KindValidation, "unknown payment method %q", input.Method)
	}
	if len(input.Note) > models.MaxNoteLength {
		return nil, nil, apperr.Newf(apperr.KindValidation, "note must be at most %d characters", models.MaxNoteLength)
	}

	campaign, err := s.campaigns.GetCampaignByID(ctx, campaignID)
	if err != nil {
		return nil, nil, err
	}
	if campaign.Deleted {
		return nil, nil, apperr.New(apperr.KindClosed, "campaign is closed")
	}

	donation := &models.Donation{
		CampaignID:      campaign.ID,
		CampaignTitle:   campaign.Title, // display snapshot, never re-validated
		AmountCents:     amountCents,
		DonorEmail:      strings.TrimSpace(input.DonorEmail),
		DonorName:       strings.TrimSpace(input.DonorName),
		Anonymous:       input.Anonymous,
		Method:          input.Method,
		ReferenceNumber: strings.TrimSpace(input.ReferenceNumber),
		Note:            input.Note,
	}
	return donation, campaign, nil
}

// RecordPending appends a donation awaiting external confirmation. Campaign
// aggregates are untouched until an admin approves it.
func (s *DonationService) RecordPending(ctx context.Context, input DonationInput) (*models.Donation, error) {
	donation, _, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.donations.CreateDonation(ctx, donation)
}

// RecordAndComplete records an instantly-confirmed donation and applies it
// to the campaign in one step, with no observable pending state.
func (s *DonationService) RecordAndComplete(ctx context.Context, input DonationInput) (*models.Donation, error) {
	donation, campaign, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}
	if campaign.OnHold {
		return nil, apperr.New(apperr.KindOnHold, "campaign is on hold")
	}
	return s.donations.CreateCompletedDonation(ctx, donation)
}

// Complete is the admin approval path: it flips one pending donation to
// completed and applies exactly one aggregate increment. Conflicts are
// detected before the increment is issued, and the store's conditional
// update closes the remaining race window, so a donation can never be
// counted twice.
func (s *DonationService) Complete(ctx context.Context, actor authz.Identity, donationID string) error {
	if !s.policy.IsAdmin(actor) {
		return apperr.New(apperr.KindForbidden, "only admins can approve donations")
	}
	objID, err := primitive.ObjectIDFromHex(donationID)
	if err != nil {
		return apperr.New(apperr.KindValidation, "invalid donation ID")
	}

	donation, err := s.donations.GetDonationByID(ctx, objID)
	if err != nil {
		return err
	}
	switch donation.Status {
	case models.DonationStatusCompleted:
		return apperr.New(apperr.KindConflict, "donation already completed")
	case models.DonationStatusFailed:
		return apperr.New(apperr.KindConflict, "donation has failed")
	}
	if donation.CampaignID.IsZero() || donation.AmountCents <= 0 {
		return apperr.New(apperr.KindValidation, "donation record is invalid")
	}

	campaign, err := s.campaigns.GetCampaignByID(ctx, donation.CampaignID)
	if err != nil {
		return err
	}
	if campaign.Deleted {
		return apperr.New(apperr.KindClosed, "campaign is closed")
	}
	if campaign.OnHold {
		return apperr.New(apperr.KindOnHold, "campaign is on hold")
	}

	if err := s.donations.CompleteDonation(ctx, objID, donation.CampaignID, donation.AmountCents); err != nil {
		return err
	}

	logger.Log.WithFields(map[string]interface{}{
		"donation_id": donationID,
		"campaign_id": donation.CampaignID.Hex(),
		"admin_id":    actor.UserID,
	}).Info("Donation approved")
	return nil
}

// MarkFailed flips a pending donation to failed. Completed donations are
// immutable.
func (s *DonationService) MarkFailed(ctx context.Context, actor authz.Identity, donationID string) error {
	if !s.policy.IsAdmin(actor) {
		return apperr.New(apperr.KindForbidden, "only admins can update donations")
	}
	objID, err := primitive.ObjectIDFromHex(donationID)
	if err != nil {
		return apperr.New(apperr.KindValidation, "invalid donation ID")
	}
	return s.donations.MarkFailed(ctx, objID)
}

// ListCompleted returns a campaign's public donor list, newest first.
func (s *DonationService) ListCompleted(ctx context.Context, campaignID string) ([]models.Donation, error) {
	objID, err := primitive.ObjectIDFromHex(campaignID)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid campaign ID")
	}
	return s.donations.ListCompletedByCampaign(ctx, objID)
}

// ListByStatus returns the admin queue for a given status.
func (s *DonationService) ListByStatus(ctx context.Context, actor authz.Identity, status string, limit int64) ([]models.Donation, error) {
	if !s.policy.IsAdmin(actor) {
		return nil, apperr.New(apperr.KindForbidden, "only admins can list donations")
	}
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	return s.donations.ListByStatus(ctx, status, limit)
}

// AuditReport compares a campaign's stored aggregates with the values
// recomputed from its ledger.
type AuditReport struct {
	CampaignID    string `json:"campaign_id"`
	StoredRaised  string `json:"stored_raised"`
	StoredBackers int64  `json:"stored_backers"`
	LedgerRaised  string `json:"ledger_raised"`
	LedgerBackers int64  `json:"ledger_backers"`
	Consistent    bool   `json:"consistent"`
	Repaired      bool   `json:"repaired"`
}

func (s *DonationService) audit(ctx context.Context, campaignID primitive.ObjectID) (*AuditReport, int64, int64, error) {
	campaign, err := s.campaigns.GetCampaignByID(ctx, campaignID)
	if err != nil {
		return nil, 0, 0, err
	}
	raisedCents, backers, err := s.donations.SumCompleted(ctx, campaignID)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to sum ledger: %v", err)
	}

	report := &AuditReport{
		CampaignID:    campaignID.Hex(),
		StoredRaised:  money.Format(campaign.RaisedCents),
		StoredBackers: campaign.Backers,
		LedgerRaised:  money.Format(raisedCents),
		LedgerBackers: backers,
		Consistent:    campaign.RaisedCents == raisedCents && campaign.Backers == backers,
	}
	return report, raisedCents, backers, nil
}

// Audit is the read-only diagnostic for one campaign.
func (s *DonationService) Audit(ctx context.Context, campaignID string) (*AuditReport, error) {
	objID, err := primitive.ObjectIDFromHex(campaignID)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid campaign ID")
	}
	report, _, _, err := s.audit(ctx, objID)
	return report, err
}

// Reconcile recomputes a campaign's aggregates from the ledger and
// overwrites the stored values if they drifted.
func (s *DonationService) Reconcile(ctx context.Context, campaignID string) (*AuditReport, error) {
	objID, err := primitive.ObjectIDFromHex(campaignID)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid campaign ID")
	}

	report, raisedCents, backers, err := s.audit(ctx, objID)
	if err != nil {
		return nil, err
	}
	if report.Consistent {
		return report, nil
	}

	if err := s.campaigns.OverwriteAggregates(ctx, objID, raisedCents, backers); err != nil {
		return nil, err
	}
	report.Repaired = true

	logger.Log.WithFields(map[string]interface{}{
		"campaign_id":    report.CampaignID,
		"stored_raised":  report.StoredRaised,
		"ledger_raised":  report.LedgerRaised,
		"stored_backers": report.StoredBackers,
		"ledger_backers": report.LedgerBackers,
	}).Warn("Campaign aggregates repaired from ledger")
	return report, nil
}

// ReconcileAll sweeps every live campaign and repairs any drifted
// aggregates. Returns the number of campaigns repaired.
func (s *DonationService) ReconcileAll(ctx context.Context) (int, error) {
	ids, err := s.campaigns.ListAllIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list campaigns: %v", err)
	}

	repaired := 0
	for _, id := range ids {
		report, err := s.Reconcile(ctx, id.Hex())
		if err != nil {
			logger.Log.WithError(err).WithField("campaign_id", id.Hex()).Error("Reconcile failed")
			continue
		}
		if report.Repaired {
			repaired++
		}
	}
	return repaired, nil
}
