package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	UserStatusActive  = "active"
	UserStatusOnHold  = "on_hold"
	UserStatusDeleted = "deleted"
)

// User represents an account on the platform. Verification flags and account
// status are admin-mutated only; the role is never self-assigned.
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username        string             `bson:"username" json:"username"`
	Email           string             `bson:"email" json:"email"`
	HashedPassword  string             `bson:"hashed_password" json:"-"`
	Role            string             `bson:"role" json:"role"`
	Status          string             `bson:"status" json:"status"`
	PhoneVerified   bool               `bson:"phone_verified" json:"phone_verified"`
	IDVerified      bool               `bson:"id_verified" json:"id_verified"`
	AddressVerified bool               `bson:"address_verified" json:"address_verified"`
	LastSeenAt      time.Time          `bson:"last_seen_at,omitempty" json:"-"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"-"`
}

// PublicUser is the profile shape exposed to other users.
type PublicUser struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
}

// ValidUserStatus reports whether s is one of the known account statuses.
func ValidUserStatus(s string) bool {
	switch s {
	case UserStatusActive, UserStatusOnHold, UserStatusDeleted:
		return true
	}
	return false
}
