package repository

import (
	"context"
	"errors"
	"time"

	"github.com/givehopebz/givehope-api/internal/models"
	"github.com/givehopebz/givehope-api/pkg/apperr"
	"github.com/givehopebz/givehope-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository handles database operations related to users.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// CreateUser inserts a new user into the database.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert user")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted user ID")
		return nil, errors.New("failed to cast inserted ID")
	}
	user.ID = insertedID

	logger.Log.WithField("user_id", user.ID.Hex()).Info("User created successfully")
	return user, nil
}

// GetUserByID fetches a user by ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", id.Hex()).Error("Failed to find user by ID")
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail fetches a user by email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}
	if err != nil {
		logger.Log.WithError(err).WithField("email", email).Error("Failed to find user by email")
		return nil, err
	}
	return &user, nil
}

// UpdateProfile updates the user-mutable profile fields only. Role, status
// and verification flags have their own admin setters.
func (r *UserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, username string) error {
	update := bson.M{"$set": bson.M{
		"username":   username,
		"updated_at": time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", id.Hex()).Error("Failed to update user profile")
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	return nil
}

// setField flips a single admin-controlled field. Setting the same value
// again matches the document without modifying it, which is the idempotent
// no-op success the verification gate requires.
func (r *UserRepository) setField(ctx context.Context, id primitive.ObjectID, field string, value interface{}) error {
	update := bson.M{"$set": bson.M{
		field:        value,
		"updated_at": time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"user_id": id.Hex(),
			"field":   field,
		}).Error("Failed to set user field")
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	return nil
}

func (r *UserRepository) SetPhoneVerified(ctx context.Context, id primitive.ObjectID, verified bool) error {
	return r.setField(ctx, id, "phone_verified", verified)
}

func (r *UserRepository) SetIDVerified(ctx context.Context, id primitive.ObjectID, verified bool) error {
	return r.setField(ctx, id, "id_verified", verified)
}

func (r *UserRepository) SetAddressVerified(ctx context.Context, id primitive.ObjectID, verified bool) error {
	return r.setField(ctx, id, "address_verified", verified)
}

func (r *UserRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	return r.setField(ctx, id, "status", status)
}

// UpdateLastSeen stamps the user's last activity time.
func (r *UserRepository) UpdateLastSeen(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"last_seen_at": time.Now()},
	})
	return err
}

// GetAllUsers fetches every user, for the admin listing.
func (r *UserRepository) GetAllUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch all users")
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			logger.Log.WithError(err).Error("Failed to decode user")
			return nil, err
		}
		users = append(users, user)
	}
	return users, cursor.Err()
}
