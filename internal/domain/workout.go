package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutStatus only ever moves from active to ended.
type WorkoutStatus string

const (
	WorkoutActive WorkoutStatus = "active"
	WorkoutEnded  WorkoutStatus = "ended"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Workout is a single tracked session belonging to one user.
type Workout struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID   `bson:"userId" json:"userId"`
	Name        string               `bson:"name,omitempty" json:"name,omitempty"`
	Status      WorkoutStatus        `bson:"status" json:"status"`
	Rating      *int                 `bson:"rating,omitempty" json:"rating,omitempty"`
	Machines    []MachineEntry       `bson:"machines" json:"machines"`
	ExerciseIDs []primitive.ObjectID `bson:"exercises" json:"exercises"`
	StartedAt   time.Time            `bson:"startedAt" json:"startedAt"`
	EndedAt     *time.Time           `bson:"endedAt,omitempty" json:"endedAt,omitempty"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (w *Workout) IsEnded() bool {
	return w.Status == WorkoutEnded
}

// Entry returns the usage entry for machineID, or nil.
func (w *Workout) Entry(machineID primitive.ObjectID) *MachineEntry {
	for i := range w.Machines {
		if w.Machines[i].MachineID == machineID {
			return &w.Machines[i]
		}
	}
	return nil
}

// MachineEntry records the use of one machine during a workout.
// Cardio machines collect Cardio stats, strength machines collect Sets.
type MachineEntry struct {
	MachineID primitive.ObjectID `bson:"machineId" json:"machineId"`
	Name      string             `bson:"name" json:"name"`
	Category  MachineCategory    `bson:"category" json:"category"`
	Cardio    []CardioStat       `bson:"cardio" json:"cardio"`
	Sets      []StrengthSet      `bson:"sets" json:"sets"`
	AddedAt   time.Time          `bson:"addedAt" json:"addedAt"`
}

// CardioStat is one bout on a cardio machine. Time is in seconds.
type CardioStat struct {
	Distance   float64   `bson:"distance" json:"distance"`
	Time       int       `bson:"time" json:"time"`
	RecordedAt time.Time `bson:"recordedAt" json:"recordedAt"`
}

// StrengthSet is one set on a strength machine.
type StrengthSet struct {
	Weight     float64   `bson:"weight" json:"weight"`
	Reps       int       `bson:"reps" json:"reps"`
	RecordedAt time.Time `bson:"recordedAt" json:"recordedAt"`
}

// NewMachineEntry starts an empty usage entry for m.
func NewMachineEntry(m *Machine, at time.Time) MachineEntry {
	return MachineEntry{
		MachineID: m.ID,
		Name:      m.Name,
		Category:  m.Category,
		Cardio:    []CardioStat{},
		Sets:      []StrengthSet{},
		AddedAt:   at,
	}
}
