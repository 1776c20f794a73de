package repository

import (
	"alcyxob/gym-tracker/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
	// ErrConditionFailed means the document exists but did not satisfy the
	// update's guard (e.g. workout already ended, machine already in use).
	ErrConditionFailed = RepositoryError("condition failed")
	// ErrTimeout wraps driver errors caused by a deadline or server timeout.
	ErrTimeout = RepositoryError("timeout")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// Update applies only the non-nil fields of update.
	Update(ctx context.Context, id primitive.ObjectID, update domain.UserUpdate) (*domain.User, error)
	// SetCurrentWorkout succeeds only if the user has no active workout.
	SetCurrentWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error
	// SaveWorkout clears the current workout and appends workoutID to the saved list.
	SaveWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error
}

// MachineRepository defines the interface for the gym's machine catalogue.
type MachineRepository interface {
	Create(ctx context.Context, machine *domain.Machine) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Machine, error)
	List(ctx context.Context, filter domain.MachineFilter) ([]domain.Machine, error)
	// UpdateStatus sets status. When exclusive is true the write only happens
	// if the machine does not already hold that status.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.MachineStatus, exclusive bool) (*domain.Machine, error)
}

// WorkoutRepository defines the interface for interacting with workout data.
// Every mutation is guarded on status=active except SetRating, which is
// guarded on status=ended.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	AddMachine(ctx context.Context, workoutID primitive.ObjectID, entry domain.MachineEntry) (*domain.Workout, error)
	// AddCardio appends stat to the entry for entry.MachineID, creating the entry if absent.
	AddCardio(ctx context.Context, workoutID primitive.ObjectID, entry domain.MachineEntry, stat domain.CardioStat) (*domain.Workout, error)
	// AddSet appends set to the entry for entry.MachineID, creating the entry if absent.
	AddSet(ctx context.Context, workoutID primitive.ObjectID, entry domain.MachineEntry, set domain.StrengthSet) (*domain.Workout, error)
	AddExercise(ctx context.Context, workoutID, exerciseID primitive.ObjectID) (*domain.Workout, error)
	End(ctx context.Context, workoutID primitive.ObjectID, endedAt time.Time) (*domain.Workout, error)
	SetRating(ctx context.Context, workoutID primitive.ObjectID, rating int) (*domain.Workout, error)
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.Exercise, error)
}

// SessionRepository tracks issued session tokens.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// Revoke marks the session revoked. Revoking an unknown or already
	// revoked session is not an error.
	Revoke(ctx context.Context, id string, at time.Time) error
}

// RequestRepository stores request tracker records.
type RequestRepository interface {
	Insert(ctx context.Context, record domain.RequestRecord) error
}
