package repository

import (
	"context"
	"time"

	"github.com/givehopebz/givehope-api/internal/models"
	"github.com/givehopebz/givehope-api/pkg/apperr"
	"github.com/givehopebz/givehope-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
	}
}

// CreateNotification inserts a notification for a user.
func (r *NotificationRepository) CreateNotification(ctx context.Context, notif *models.Notification) error {
	notif.CreatedAt = time.Now()
	notif.ExpiresAt = time.Now().Add(30 * 24 * time.Hour)

	_, err := r.collection.InsertOne(ctx, notif)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert notification")
		return err
	}
	return nil
}

// GetUserNotifications returns all notifications for a user, newest first.
func (r *NotificationRepository) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch notifications")
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifs []models.Notification
	for cursor.Next(ctx) {
		var notif models.Notification
		if err := cursor.Decode(&notif); err != nil {
			logger.Log.WithError(err).Error("Failed to decode notification")
			return nil, err
		}
		notifs = append(notifs, notif)
	}
	return notifs, cursor.Err()
}

// MarkAsRead flips the read flag. The user filter keeps owners from flipping
// each other's notifications.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, notifID, userID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": notifID, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		logger.Log.WithError(err).WithField("notification_id", notifID.Hex()).Error("Failed to mark notification read")
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.KindNotFound, "notification not found")
	}
	return nil
}

// DeleteExpired removes notifications past their expiry.
func (r *NotificationRepository) DeleteExpired(ctx context.Context) error {
	res, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": time.Now()}})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to delete expired notifications")
		return err
	}
	if res.DeletedCount > 0 {
		logger.Log.WithField("count", res.DeletedCount).Info("Expired notifications deleted")
	}
	return nil
}
