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

// ModerationService runs the campaign lifecycle state machine: submissions
// enter review, admins approve or reject, and live campaigns can be held,
// edited or deleted.
type ModerationService struct {
	reviews   ReviewStore
	campaigns CampaignStore
	notifier  *NotificationService
	policy    *authz.Policy
}

// NewModerationService creates a new instance of ModerationService.
func NewModerationService(reviews ReviewStore, campaigns CampaignStore, notifier *NotificationService, policy *authz.Policy) *ModerationService {
	return &ModerationService{
		reviews:   reviews,
		campaigns: campaigns,
		notifier:  notifier,
		policy:    policy,
	}
}

// SubmitInput is a campaign proposal payload.
type SubmitInput struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	FullDescription string   `json:"full_description"`
	Goal            string   `json:"goal"`
	Category        string   `json:"category"`
	Images          []string `json:"images"`
}

func (in *SubmitInput) validate() (goalCents int64, err error) {
	if strings.TrimSpace(in.Title) == "" {
		return 0, apperr.New(apperr.KindValidation, "title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return 0, apperr.New(apperr.KindValidation, "description is required")
	}
	if len(in.Images) == 0 {
		return 0, apperr.New(apperr.KindValidation, "at least one image is required")
	}
	goalCents, perr := money.Parse(in.Goal)
	if perr != nil || goalCents <= 0 {
		return 0, apperr.New(apperr.KindValidation, "goal must be a positive amount")
	}
	return goalCents, nil
}

// Submit creates a review record in pending state. Any authenticated user
// may submit; the phone-verification gate applies at publish time, not here.
func (s *ModerationService) Submit(ctx context.Context, creator *models.User, input SubmitInput) (*models.CampaignReview, error) {
	goalCents, err := input.validate()
	if err != nil {
		return nil, err
	}

	review := &models.CampaignReview{
		Title:           strings.TrimSpace(input.Title),
		Description:     strings.TrimSpace(input.Description),
		FullDescription: input.FullDescription,
		GoalCents:       goalCents,
		Category:        input.Category,
		CreatorID:       creator.ID,
		CreatorName:     creator.Username,
		CreatorEmail:    creator.Email,
		Images:          input.Images,
	}

	created, err := s.reviews.CreateReview(ctx, review)
	if err != nil {
		return nil, fmt.Errorf("failed to submit campaign: %v", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"review_id":  created.ID.Hex(),
		"creator_id": creator.ID.Hex(),
	}).Info("Campaign submitted for review")
	return created, nil
}

// Approve promotes a pending review into a live campaign. The campaign
// insert and review delete commit as one unit; if anything fails the review
// stays pending with no campaign created.
func (s *ModerationService) Approve(ctx context.Context, actor authz.Identity, reviewID string) (*models.Campaign, error) {
	if !s.policy.IsAdmin(actor) {
		return nil, apperr.New(apperr.KindForbidden, "only admins can approve campaigns")
	}
	objID, err := primitive.ObjectIDFromHex(reviewID)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid review ID")
	}

	review, err := s.reviews.GetReviewByID(ctx, objID)
	if err != nil {
		return nil, err
	}
	if review.Status != models.ReviewStatusPending {
		return nil, apperr.New(apperr.KindConflict, "review is not pending")
	}

	campaign, err := s.campaigns.PromoteReview(ctx, review)
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(review.CreatorID, "Campaign approved",
		fmt.Sprintf("Your campaign %q is now live and accepting donations.", campaign.Title),
		&campaign.ID, campaign.CreatorEmail)

	logger.Log.WithFields(map[string]interface{}{
		"review_id":   reviewID,
		"campaign_id": campaign.ID.Hex(),
		"admin_id":    actor.UserID,
	}).Info("Campaign approved")
	return campaign, nil
}

// Reject marks a pending review rejected and notifies the creator.
func (s *ModerationService) Reject(ctx context.Context, actor authz.Identity, reviewID string) error {
	if !s.policy.IsAdmin(actor) {
		return apperr.New(apperr.KindForbidden, "only admins can reject campaigns")
	}
	objID, err := primitive.ObjectIDFromHex(reviewID)
	if err != nil {
		return apperr.New(apperr.KindValidation, "invalid review ID")
	}

	review, err := s.reviews.GetReviewByID(ctx, objID)
	if err != nil {
		return err
	}
	if err := s.reviews.MarkRejected(ctx, objID); err != nil {
		return err
	}

	s.notifier.Dispatch(review.CreatorID, "Campaign rejected",
		fmt.Sprintf("Your campaign %q was not approved.", review.Title),
		nil, review.CreatorEmail)

	logger.Log.WithFields(map[string]interface{}{
		"review_id": reviewID,
		"admin_id":  actor.UserID,
	}).Info("Campaign rejected")
	return nil
}

// SetOnHold flips a live campaign's hold flag. While held, the donation
// completion path rejects new completions.
func (s *ModerationService) SetOnHold(ctx context.Context, actor authz.Identity, campaignID string, onHold bool) error {
	if !s.policy.IsAdmin(actor) {
		return apperr.New(apperr.KindForbidden, "only admins can hold campaigns")
	}
	objID, err := primitive.ObjectIDFromHex(campaignID)
	if err != nil {
		return apperr.New(apperr.KindValidation, "invalid campaign ID")
	}

	campaign, err := s.campaigns.GetCampaignByID(ctx, objID)
	if err != nil {
		return err
	}
	if campaign.Deleted {
		return apperr.New(apperr.KindNotFound, "campaign not found")
	}
	if err := s.campaigns.SetOnHold(ctx, objID, onHold); err != nil {
		return err
	}

	if onHold {
		s.notifier.Dispatch(campaign.CreatorID, "Campaign on hold",
			fmt.Sprintf("Your campaign %q has been placed on hold.", campaign.Title),
			&campaign.ID, campaign.CreatorEmail)
	}
	return nil
}

// EditText updates a campaign's display text in place. The goal and the
// aggregates are immutable after publish and unreachable from this path.
func (s *ModerationService) EditText(ctx context.Context, actor authz.Identity, campaignID, title, description, fullDescription string) error {
	if !s.policy.IsAdmin(actor) {
		return apperr.New(apperr.KindForbidden, "only admins can edit campaigns")
	}
	objID, err := primitive.ObjectIDFromHex(campaignID)
	if err != nil {
		return apperr.New(apperr.KindValidation, "invalid campaign ID")
	}
	return s.campaigns.UpdateText(ctx, objID, title, description, fullDescription)
}

// DirectCreate publishes a campaign immediately, skipping moderation.
// Admin-only; this is the single exception to approval-only creation.
func (s *ModerationService) DirectCreate(ctx context.Context, actor authz.Identity, creator *models.User, input SubmitInput) (*models.Campaign, error) {
	if !s.policy.IsAdmin(actor) {
		return nil, apperr.New(apperr.KindForbidden, "only admins can create campaigns directly")
	}
	goalCents, err := input.validate()
	if err != nil {
		return nil, err
	}

	campaign := &models.Campaign{
		Title:           strings.TrimSpace(input.Title),
		Description:     strings.TrimSpace(input.Description),
		FullDescription: input.FullDescription,
		GoalCents:       goalCents,
		Category:        input.Category,
		CreatorID:       creator.ID,
		CreatorName:     creator.Username,
		CreatorEmail:    creator.Email,
		Images:          input.Images,
	}
	return s.campaigns.CreateCampaign(ctx, campaign)
}

// getState finds whichever representation holds the given ID. Exactly one of
// the two can exist for a logical campaign.
func (s *ModerationService) getState(ctx context.Context, id primitive.ObjectID) (models.CampaignState, error) {
	campaign, err := s.campaigns.GetCampaignByID(ctx, id)
	if err == nil {
		return models.CampaignState{Campaign: campaign}, nil
	}
	if apperr.KindOf(err) != apperr.KindNotFound {
		return models.CampaignState{}, err
	}

	review, err := s.reviews.GetReviewByID(ctx, id)
	if err != nil {
		return models.CampaignState{}, err
	}
	return models.CampaignState{Review: review}, nil
}

// Delete removes a campaign or review. Admins may delete anything; creators
// only their own records. Campaigns are soft-deleted so the donation ledger
// beneath them survives; reviews are removed outright.
func (s *ModerationService) Delete(ctx context.Context, actor authz.Identity, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.New(apperr.KindValidation, "invalid ID")
	}

	state, err := s.getState(ctx, objID)
	if err != nil {
		return err
	}
	if !s.policy.CanManage(actor, state.CreatorID().Hex()) {
		return apperr.New(apperr.KindForbidden, "only the creator or an admin can delete this")
	}

	switch {
	case state.Campaign != nil:
		if state.Campaign.Deleted {
			return apperr.New(apperr.KindNotFound, "campaign not found")
		}
		return s.campaigns.SoftDelete(ctx, objID)
	case state.Review != nil:
		return s.reviews.DeleteReview(ctx, objID)
	default:
		return apperr.New(apperr.KindNotFound, "campaign not found")
	}
}

// ListPendingReviews returns the moderation queue.
func (s *ModerationService) ListPendingReviews(ctx context.Context) ([]models.CampaignReview, error) {
	return s.reviews.ListByStatus(ctx, models.ReviewStatusPending)
}

// ListMyReviews returns a creator's own submissions.
func (s *ModerationService) ListMyReviews(ctx context.Context, creatorID string) ([]models.CampaignReview, error) {
	objID, err := primitive.ObjectIDFromHex(creatorID)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid user ID")
	}
	return s.reviews.ListByCreator(ctx, objID)
}

// GetCampaign fetches one live campaign for the public detail page.
func (s *ModerationService) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid campaign ID")
	}
	campaign, err := s.campaigns.GetCampaignByID(ctx, objID)
	if err != nil {
		return nil, err
	}
	if campaign.Deleted {
		return nil, apperr.New(apperr.KindNotFound, "campaign not found")
	}
	return campaign, nil
}

// ListCampaigns returns live campaigns for the public listing.
func (s *ModerationService) ListCampaigns(ctx context.Context, category string, limit int64) ([]models.Campaign, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.campaigns.ListCampaigns(ctx, category, limit)
}
