package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/givehopebz/givehope-api/internal/models"
	"github.com/givehopebz/givehope-api/pkg/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStore is an in-memory implementation of every store interface, with a
// single mutex standing in for the database's transactional guarantees.
type fakeStore struct {
	mu        sync.Mutex
	users     map[primitive.ObjectID]*models.User
	reviews   map[primitive.ObjectID]*models.CampaignReview
	campaigns map[primitive.ObjectID]*models.Campaign
	donations map[primitive.ObjectID]*models.Donation
	notifs    []models.Notification

	// failPromote forces PromoteReview to fail without side effects, to
	// exercise the all-or-nothing approval contract.
	failPromote bool
	// failStats forces Stats to error, to exercise the degrade-to-zeros read.
	failStats bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[primitive.ObjectID]*models.User),
		reviews:   make(map[primitive.ObjectID]*models.CampaignReview),
		campaigns: make(map[primitive.ObjectID]*models.Campaign),
		donations: make(map[primitive.ObjectID]*models.Donation),
	}
}

// --- UserStore ---

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	cp := *user
	f.users[user.ID] = &cp
	return user, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "user not found")
}

func (f *fakeStore) UpdateProfile(_ context.Context, id primitive.ObjectID, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	u.Username = username
	return nil
}

func (f *fakeStore) setUserField(id primitive.ObjectID, set func(*models.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	set(u)
	return nil
}

func (f *fakeStore) SetPhoneVerified(_ context.Context, id primitive.ObjectID, v bool) error {
	return f.setUserField(id, func(u *models.User) { u.PhoneVerified = v })
}

func (f *fakeStore) SetIDVerified(_ context.Context, id primitive.ObjectID, v bool) error {
	return f.setUserField(id, func(u *models.User) { u.IDVerified = v })
}

func (f *fakeStore) SetAddressVerified(_ context.Context, id primitive.ObjectID, v bool) error {
	return f.setUserField(id, func(u *models.User) { u.AddressVerified = v })
}

func (f *fakeStore) SetStatus(_ context.Context, id primitive.ObjectID, status string) error {
	return f.setUserField(id, func(u *models.User) { u.Status = status })
}

func (f *fakeStore) UpdateLastSeen(_ context.Context, id primitive.ObjectID) error {
	return f.setUserField(id, func(u *models.User) { u.LastSeenAt = time.Now() })
}

func (f *fakeStore) GetAllUsers(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []models.User
	for _, u := range f.users {
		users = append(users, *u)
	}
	return users, nil
}

// --- ReviewStore ---

func (f *fakeStore) CreateReview(_ context.Context, review *models.CampaignReview) (*models.CampaignReview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	review.ID = primitive.NewObjectID()
	review.Status = models.ReviewStatusPending
	review.SubmittedAt = time.Now()
	cp := *review
	f.reviews[review.ID] = &cp
	return review, nil
}

func (f *fakeStore) GetReviewByID(_ context.Context, id primitive.ObjectID) (*models.CampaignReview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "campaign review not found")
	}
	cp := *r
	return &cp, nil
}

// fakeReviewStore wraps fakeStore because ReviewStore and DonationStore
// both declare ListByStatus with different signatures.
type fakeReviewStore struct {
	*fakeStore
}

func (f fakeReviewStore) ListByStatus(_ context.Context, status string) ([]models.CampaignReview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var reviews []models.CampaignReview
	for _, r := range f.reviews {
		if r.Status == status {
			reviews = append(reviews, *r)
		}
	}
	return reviews, nil
}

func (f *fakeStore) ListByCreator(_ context.Context, creatorID primitive.ObjectID) ([]models.CampaignReview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var reviews []models.CampaignReview
	for _, r := range f.reviews {
		if r.CreatorID == creatorID {
			reviews = append(reviews, *r)
		}
	}
	return reviews, nil
}

func (f *fakeStore) MarkRejected(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok || r.Status != models.ReviewStatusPending {
		return apperr.New(apperr.KindConflict, "review is not pending")
	}
	r.Status = models.ReviewStatusRejected
	return nil
}

func (f *fakeStore) DeleteReview(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[id]; !ok {
		return apperr.New(apperr.KindNotFound, "campaign review not found")
	}
	delete(f.reviews, id)
	return nil
}

// --- CampaignStore ---

func (f *fakeStore) CreateCampaign(_ context.Context, campaign *models.Campaign) (*models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	campaign.ID = primitive.NewObjectID()
	campaign.RaisedCents = 0
	campaign.Backers = 0
	campaign.CreatedAt = time.Now()
	cp := *campaign
	f.campaigns[campaign.ID] = &cp
	return campaign, nil
}

func (f *fakeStore) PromoteReview(_ context.Context, review *models.CampaignReview) (*models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPromote {
		return nil, errors.New("simulated storage failure")
	}
	stored, ok := f.reviews[review.ID]
	if !ok || stored.Status != models.ReviewStatusPending {
		return nil, apperr.New(apperr.KindConflict, "review is no longer pending")
	}

	campaign := &models.Campaign{
		ID:              primitive.NewObjectID(),
		Title:           review.Title,
		Description:     review.Description,
		FullDescription: review.FullDescription,
		GoalCents:       review.GoalCents,
		Category:        review.Category,
		CreatorID:       review.CreatorID,
		CreatorName:     review.CreatorName,
		CreatorEmail:    review.CreatorEmail,
		Images:          review.Images,
		CreatedAt:       time.Now(),
	}
	f.campaigns[campaign.ID] = campaign
	delete(f.reviews, review.ID)
	cp := *campaign
	return &cp, nil
}

func (f *fakeStore) GetCampaignByID(_ context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "campaign not found")
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) ListCampaigns(_ context.Context, category string, _ int64) ([]models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var campaigns []models.Campaign
	for _, c := range f.campaigns {
		if c.Deleted {
			continue
		}
		if category != "" && c.Category != category {
			continue
		}
		campaigns = append(campaigns, *c)
	}
	sort.Slice(campaigns, func(i, j int) bool {
		return campaigns[i].CreatedAt.After(campaigns[j].CreatedAt)
	})
	return campaigns, nil
}

func (f *fakeStore) ListAllIDs(_ context.Context) ([]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []primitive.ObjectID
	for id, c := range f.campaigns {
		if !c.Deleted {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeStore) UpdateText(_ context.Context, id primitive.ObjectID, title, description, fullDescription string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok || c.Deleted {
		return apperr.New(apperr.KindNotFound, "campaign not found")
	}
	if title != "" {
		c.Title = title
	}
	if description != "" {
		c.Description = description
	}
	if fullDescription != "" {
		c.FullDescription = fullDescription
	}
	return nil
}

func (f *fakeStore) SetOnHold(_ context.Context, id primitive.ObjectID, onHold bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok || c.Deleted {
		return apperr.New(apperr.KindNotFound, "campaign not found")
	}
	c.OnHold = onHold
	return nil
}

func (f *fakeStore) SoftDelete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok || c.Deleted {
		return apperr.New(apperr.KindNotFound, "campaign not found")
	}
	c.Deleted = true
	return nil
}

func (f *fakeStore) OverwriteAggregates(_ context.Context, id primitive.ObjectID, raisedCents, backers int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok {
		return apperr.New(apperr.KindNotFound, "campaign not found")
	}
	c.RaisedCents = raisedCents
	c.Backers = backers
	return nil
}

func (f *fakeStore) Stats(_ context.Context) (models.SiteStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failStats {
		return models.SiteStats{}, errors.New("simulated storage failure")
	}
	var stats models.SiteStats
	for _, c := range f.campaigns {
		if c.Deleted {
			continue
		}
		stats.TotalRaisedCents += c.RaisedCents
		stats.Supporters += c.Backers
		stats.CampaignCount++
	}
	return stats, nil
}

// --- DonationStore ---

func (f *fakeStore) CreateDonation(_ context.Context, donation *models.Donation) (*models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	donation.ID = primitive.NewObjectID()
	donation.Status = models.DonationStatusPending
	donation.CreatedAt = time.Now()
	cp := *donation
	f.donations[donation.ID] = &cp
	return donation, nil
}

func (f *fakeStore) CreateCompletedDonation(_ context.Context, donation *models.Donation) (*models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[donation.CampaignID]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "campaign not found")
	}
	if c.Deleted {
		return nil, apperr.New(apperr.KindClosed, "campaign is closed")
	}
	if c.OnHold {
		return nil, apperr.New(apperr.KindOnHold, "campaign is not accepting donations")
	}
	donation.ID = primitive.NewObjectID()
	donation.Status = models.DonationStatusCompleted
	donation.CreatedAt = time.Now()
	cp := *donation
	f.donations[donation.ID] = &cp
	c.RaisedCents += donation.AmountCents
	c.Backers++
	return donation, nil
}

func (f *fakeStore) CompleteDonation(_ context.Context, donationID, campaignID primitive.ObjectID, amountCents int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.donations[donationID]
	if !ok {
		return apperr.New(apperr.KindNotFound, "donation not found")
	}
	if d.Status != models.DonationStatusPending {
		return apperr.New(apperr.KindConflict, "donation already completed")
	}
	c, ok := f.campaigns[campaignID]
	if !ok {
		return apperr.New(apperr.KindNotFound, "campaign not found")
	}
	if c.Deleted {
		return apperr.New(apperr.KindClosed, "campaign is closed")
	}
	if c.OnHold {
		return apperr.New(apperr.KindOnHold, "campaign is not accepting donations")
	}
	d.Status = models.DonationStatusCompleted
	c.RaisedCents += amountCents
	c.Backers++
	return nil
}

func (f *fakeStore) MarkFailed(_ context.Context, donationID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.donations[donationID]
	if !ok || d.Status != models.DonationStatusPending {
		return apperr.New(apperr.KindConflict, "donation is not pending")
	}
	d.Status = models.DonationStatusFailed
	return nil
}

func (f *fakeStore) GetDonationByID(_ context.Context, id primitive.ObjectID) (*models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.donations[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "donation not found")
	}
	cp := *d
	return &cp, nil
}

func (f *fakeStore) ListCompletedByCampaign(_ context.Context, campaignID primitive.ObjectID) ([]models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var donations []models.Donation
	for _, d := range f.donations {
		if d.CampaignID == campaignID && d.Status == models.DonationStatusCompleted {
			donations = append(donations, *d)
		}
	}
	sort.Slice(donations, func(i, j int) bool {
		return donations[i].CreatedAt.After(donations[j].CreatedAt)
	})
	return donations, nil
}

func (f *fakeStore) ListByStatus(_ context.Context, status string, _ int64) ([]models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var donations []models.Donation
	for _, d := range f.donations {
		if d.Status == status {
			donations = append(donations, *d)
		}
	}
	return donations, nil
}

func (f *fakeStore) SumCompleted(_ context.Context, campaignID primitive.ObjectID) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var raised, count int64
	for _, d := range f.donations {
		if d.CampaignID == campaignID && d.Status == models.DonationStatusCompleted {
			raised += d.AmountCents
			count++
		}
	}
	return raised, count, nil
}

// --- NotificationStore ---

func (f *fakeStore) CreateNotification(_ context.Context, notif *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	notif.ID = primitive.NewObjectID()
	notif.CreatedAt = time.Now()
	f.notifs = append(f.notifs, *notif)
	return nil
}

func (f *fakeStore) GetUserNotifications(_ context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var notifs []models.Notification
	for _, n := range f.notifs {
		if n.UserID == userID {
			notifs = append(notifs, n)
		}
	}
	return notifs, nil
}

func (f *fakeStore) MarkAsRead(_ context.Context, notifID, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifs {
		if f.notifs[i].ID == notifID && f.notifs[i].UserID == userID {
			f.notifs[i].Read = true
			return nil
		}
	}
	return apperr.New(apperr.KindNotFound, "notification not found")
}

func (f *fakeStore) DeleteExpired(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.notifs[:0]
	for _, n := range f.notifs {
		if n.ExpiresAt.IsZero() || n.ExpiresAt.After(time.Now()) {
			kept = append(kept, n)
		}
	}
	f.notifs = kept
	return nil
}

var (
	_ UserStore         = (*fakeStore)(nil)
	_ ReviewStore       = fakeReviewStore{}
	_ CampaignStore     = (*fakeStore)(nil)
	_ DonationStore     = (*fakeStore)(nil)
	_ NotificationStore = (*fakeStore)(nil)
)
