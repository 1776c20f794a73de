package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a gym member.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"` // Unique
	Email        string             `bson:"email" json:"email"`       // Unique
	PasswordHash string             `bson:"passwordHash" json:"-"`    // Never expose this via JSON
	FirstName    string             `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName     string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Bio          string             `bson:"bio,omitempty" json:"bio,omitempty"`
	// ProfileImageKey is the object key in the image store, not a URL.
	ProfileImageKey string `bson:"profileImageKey,omitempty" json:"-"`

	// CurrentWorkoutID points at the user's active workout, if any.
	CurrentWorkoutID *primitive.ObjectID `bson:"currentWorkout,omitempty" json:"currentWorkout,omitempty"`
	// SavedWorkoutIDs lists ended workouts, oldest first.
	SavedWorkoutIDs []primitive.ObjectID `bson:"savedWorkouts" json:"savedWorkouts"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasActiveWorkout reports whether the user is in the middle of a workout.
func (u *User) HasActiveWorkout() bool {
	return u.CurrentWorkoutID != nil && *u.CurrentWorkoutID != primitive.NilObjectID
}

// UserUpdate carries a partial profile update. Nil fields are left untouched.
type UserUpdate struct {
	Username        *string
	Email           *string
	FirstName       *string
	LastName        *string
	Bio             *string
	ProfileImageKey *string
}

// IsEmpty reports whether the update changes nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.Email == nil && u.FirstName == nil &&
		u.LastName == nil && u.Bio == nil && u.ProfileImageKey == nil
}
