package services

import (
	"context"
	"time"

	"github.com/givehopebz/givehope-api/internal/models"
	"github.com/givehopebz/givehope-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService is the consumer-facing sink for moderation and ledger
// events. Delivery is fire-and-forget: a failed notification never rolls
// back the state transition that produced it.
type NotificationService struct {
	repo NotificationStore

	// SendEmail, when set, additionally delivers the notification by mail.
	SendEmail func(to, subject, body string) error
}

func NewNotificationService(repo NotificationStore) *NotificationService {
	return &NotificationService{repo: repo}
}

// Create persists a notification for a user.
func (s *NotificationService) Create(ctx context.Context, userID primitive.ObjectID, title, message string, campaignID *primitive.ObjectID) error {
	notif := &models.Notification{
		UserID:     userID,
		Title:      title,
		Message:    message,
		CampaignID: campaignID,
		Read:       false,
	}
	return s.repo.CreateNotification(ctx, notif)
}

// Dispatch delivers a notification asynchronously, detached from the
// caller's request context.
func (s *NotificationService) Dispatch(userID primitive.ObjectID, title, message string, campaignID *primitive.ObjectID, emailAddr string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.Create(ctx, userID, title, message, campaignID); err != nil {
			logger.Log.WithError(err).WithField("user_id", userID.Hex()).Warn("Failed to persist notification")
		}
		if s.SendEmail != nil && emailAddr != "" {
			if err := s.SendEmail(emailAddr, title, message); err != nil {
				logger.Log.WithError(err).WithField("email", emailAddr).Warn("Failed to send notification email")
			}
		}
	}()
}

// GetUserNotifications returns all notifications for a user.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	return s.repo.GetUserNotifications(ctx, userID)
}

// MarkAsRead flips the read flag on one of the caller's notifications.
func (s *NotificationService) MarkAsRead(ctx context.Context, notifID, userID primitive.ObjectID) error {
	return s.repo.MarkAsRead(ctx, notifID, userID)
}

// DeleteExpired is called periodically by the scheduler to prune old
// notifications.
func (s *NotificationService) DeleteExpired(ctx context.Context) error {
	return s.repo.DeleteExpired(ctx)
}
