package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise is a named activity logged inside a workout that is not tied to a
// tracked machine, e.g. "Push-ups" or "Outdoor run".
type Exercise struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutID primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	Name      string             `bson:"name" json:"name"`
	Category  MachineCategory    `bson:"category" json:"category"`

	// Strength exercises
	Sets []StrengthSet `bson:"sets,omitempty" json:"sets,omitempty"`

	// Cardio exercises; Time in seconds
	Distance float64 `bson:"distance,omitempty" json:"distance,omitempty"`
	Time     int     `bson:"time,omitempty" json:"time,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
