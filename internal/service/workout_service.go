package service

import (
	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AddExerciseInput describes a free-form exercise logged into a workout.
type AddExerciseInput struct {
	WorkoutID primitive.ObjectID
	Name      string
	Category  domain.MachineCategory
	Sets      []domain.StrengthSet
	Distance  float64
	Time      int
}

// WorkoutDetails is a workout with its exercise documents resolved.
type WorkoutDetails struct {
	Workout   *domain.Workout
	Exercises []domain.Exercise
}

// UserWorkouts is everything a user has logged.
type UserWorkouts struct {
	Current  *domain.Workout
	Workouts []domain.Workout // newest first, includes Current
}

type WorkoutService interface {
	CreateWorkout(ctx context.Context, actorID, userID primitive.ObjectID, name string) (*domain.Workout, error)
	GetWorkout(ctx context.Context, actorID, workoutID primitive.ObjectID) (*WorkoutDetails, error)
	GetUserWorkouts(ctx context.Context, actorID, userID primitive.ObjectID) (*UserWorkouts, error)
	AddMachine(ctx context.Context, actorID, workoutID, machineID primitive.ObjectID) (*domain.Workout, error)
	AddCardio(ctx context.Context, actorID, workoutID, machineID primitive.ObjectID, distance float64, seconds int) (*domain.Workout, error)
	AddSet(ctx context.Context, actorID, workoutID, machineID primitive.ObjectID, weight float64, reps int) (*domain.Workout, error)
	AddExercise(ctx context.Context, actorID primitive.ObjectID, input AddExerciseInput) (*domain.Exercise, *domain.Workout, error)
	EndWorkout(ctx context.Context, actorID, workoutID primitive.ObjectID) (*domain.Workout, error)
	RateWorkout(ctx context.Context, actorID, workoutID primitive.ObjectID, rating int) (*domain.Workout, error)
}

type workoutService struct {
	workoutRepo  repository.WorkoutRepository
	userRepo     repository.UserRepository
	machineRepo  repository.MachineRepository
	exerciseRepo repository.ExerciseRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(
	workoutRepo repository.WorkoutRepository,
	userRepo repository.UserRepository,
	machineRepo repository.MachineRepository,
	exerciseRepo repository.ExerciseRepository,
	logger *zap.Logger,
) WorkoutService {
	return &workoutService{
		workoutRepo:  workoutRepo,
		userRepo:     userRepo,
		machineRepo:  machineRepo,
		exerciseRepo: exerciseRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateWorkout starts a new active workout and makes it the user's current one.
func (s *workoutService) CreateWorkout(ctx context.Context, actorID, userID primitive.ObjectID, name string) (*domain.Workout, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, lookup(err, ErrUserNotFound, "load user")
	}
	if actorID != userID {
		return nil, ErrNotOwner
	}
	if user.HasActiveWorkout() {
		return nil, ErrActiveWorkoutExists
	}

	workout := &domain.Workout{
		UserID: userID,
		Name:   strings.TrimSpace(name),
	}
	id, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, downstream(err, "create workout")
	}
	workout.ID = id

	if err := s.userRepo.SetCurrentWorkout(ctx, userID, id); err != nil {
		// Another request started a workout first; retire ours so the
		// user is never left with two active workouts.
		if _, endErr := s.workoutRepo.End(ctx, id, s.now().UTC()); endErr != nil {
			s.logger.Warn("failed to retire orphaned workout", zap.String("workoutId", id.Hex()), zap.Error(endErr))
		}
		if errors.Is(err, repository.ErrConditionFailed) {
			return nil, ErrActiveWorkoutExists
		}
		return nil, lookup(err, ErrUserNotFound, "set current workout")
	}
	return workout, nil
}

// GetWorkout returns a single workout owned by the actor.
func (s *workoutService) GetWorkout(ctx context.Context, actorID, workoutID primitive.ObjectID) (*WorkoutDetails, error) {
	workout, err := s.owned(ctx, actorID, workoutID)
	if err != nil {
		return nil, err
	}
	exercises, err := s.exerciseRepo.GetByWorkoutID(ctx, workoutID)
	if err != nil {
		return nil, downstream(err, "load exercises")
	}
	return &WorkoutDetails{Workout: workout, Exercises: exercises}, nil
}

// GetUserWorkouts returns the user's current workout and every workout they own.
func (s *workoutService) GetUserWorkouts(ctx context.Context, actorID, userID primitive.ObjectID) (*UserWorkouts, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, lookup(err, ErrUserNotFound, "load user")
	}
	if actorID != userID {
		return nil, ErrNotOwner
	}
	workouts, err := s.workoutRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, downstream(err, "list workouts")
	}
	if workouts == nil {
		workouts = []domain.Workout{}
	}

	result := &UserWorkouts{Workouts: workouts}
	if user.HasActiveWorkout() {
		for i := range workouts {
			if workouts[i].ID == *user.CurrentWorkoutID {
				result.Current = &workouts[i]
				break
			}
		}
	}
	return result, nil
}

// AddMachine appends a usage entry for a machine to an active workout.
func (s *workoutService) AddMachine(ctx context.Context, actorID, workoutID, machineID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.active(ctx, actorID, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.Entry(machineID) != nil {
		return nil, ErrMachineAlreadyAdded
	}
	machine, err := s.machine(ctx, machineID)
	if err != nil {
		return nil, err
	}

	updated, err := s.workoutRepo.AddMachine(ctx, workoutID, domain.NewMachineEntry(machine, s.now().UTC()))
	if errors.Is(err, repository.ErrConditionFailed) {
		// Lost a race: either the workout ended or the machine was added.
		return nil, s.explainMiss(ctx, workoutID, ErrMachineAlreadyAdded)
	}
	return updated, lookup(err, ErrWorkoutNotFound, "add machine")
}

// AddCardio records distance and time on a cardio machine.
func (s *workoutService) AddCardio(ctx context.Context, actorID, workoutID, machineID primitive.ObjectID, distance float64, seconds int) (*domain.Workout, error) {
	if distance < 0 {
		return nil, Validation("distance cannot be negative")
	}
	if seconds <= 0 {
		return nil, Validation("time must be a positive number of seconds")
	}
	if _, err := s.active(ctx, actorID, workoutID); err != nil {
		return nil, err
	}
	machine, err := s.machine(ctx, machineID)
	if err != nil {
		return nil, err
	}
	if machine.Category != domain.CategoryCardio {
		return nil, Validation("machine is not a cardio machine")
	}

	now := s.now().UTC()
	stat := domain.CardioStat{Distance: distance, Time: seconds, RecordedAt: now}
	updated, err := s.workoutRepo.AddCardio(ctx, workoutID, domain.NewMachineEntry(machine, now), stat)
	if errors.Is(err, repository.ErrConditionFailed) {
		return nil, ErrWorkoutAlreadyEnded
	}
	return updated, lookup(err, ErrWorkoutNotFound, "add cardio stats")
}

// AddSet records a weighted set on a strength machine.
func (s *workoutService) AddSet(ctx context.Context, actorID, workoutID, machineID primitive.ObjectID, weight float64, reps int) (*domain.Workout, error) {
	if weight < 0 {
		return nil, Validation("weight cannot be negative")
	}
	if reps < 1 {
		return nil, Validation("reps must be at least 1")
	}
	if _, err := s.active(ctx, actorID, workoutID); err != nil {
		return nil, err
	}
	machine, err := s.machine(ctx, machineID)
	if err != nil {
		return nil, err
	}
	if machine.Category != domain.CategoryStrength {
		return nil, Validation("machine is not a strength machine")
	}

	now := s.now().UTC()
	set := domain.StrengthSet{Weight: weight, Reps: reps, RecordedAt: now}
	updated, err := s.workoutRepo.AddSet(ctx, workoutID, domain.NewMachineEntry(machine, now), set)
	if errors.Is(err, repository.ErrConditionFailed) {
		return nil, ErrWorkoutAlreadyEnded
	}
	return updated, lookup(err, ErrWorkoutNotFound, "add set")
}

// AddExercise stores an exercise document and links it into the workout.
func (s *workoutService) AddExercise(ctx context.Context, actorID primitive.ObjectID, input AddExerciseInput) (*domain.Exercise, *domain.Workout, error) {
	exercise, err := newExercise(input)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.active(ctx, actorID, input.WorkoutID); err != nil {
		return nil, nil, err
	}

	id, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, nil, downstream(err, "create exercise")
	}
	exercise.ID = id

	updated, err := s.workoutRepo.AddExercise(ctx, input.WorkoutID, id)
	if errors.Is(err, repository.ErrConditionFailed) {
		return nil, nil, ErrWorkoutAlreadyEnded
	}
	if err != nil {
		return nil, nil, lookup(err, ErrWorkoutNotFound, "link exercise")
	}
	return exercise, updated, nil
}

func newExercise(input AddExerciseInput) (*domain.Exercise, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, Validation("exercise name is required")
	}
	exercise := &domain.Exercise{
		WorkoutID: input.WorkoutID,
		Name:      name,
		Category:  input.Category,
	}

	switch input.Category {
	case domain.CategoryStrength:
		for _, set := range input.Sets {
			if set.Weight < 0 || set.Reps < 1 {
				return nil, Validation("each set needs a non-negative weight and at least 1 rep")
			}
		}
		exercise.Sets = input.Sets
	case domain.CategoryCardio:
		if input.Distance < 0 || input.Time < 0 {
			return nil, Validation("distance and time cannot be negative")
		}
		exercise.Distance = input.Distance
		exercise.Time = input.Time
	default:
		return nil, Validation("category must be cardio or strength")
	}
	return exercise, nil
}

// EndWorkout moves the workout to ended and files it under the user's saved workouts.
func (s *workoutService) EndWorkout(ctx context.Context, actorID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	if _, err := s.active(ctx, actorID, workoutID); err != nil {
		return nil, err
	}

	ended, err := s.workoutRepo.End(ctx, workoutID, s.now().UTC())
	if errors.Is(err, repository.ErrConditionFailed) {
		return nil, ErrWorkoutAlreadyEnded
	}
	if err != nil {
		return nil, lookup(err, ErrWorkoutNotFound, "end workout")
	}

	if err := s.userRepo.SaveWorkout(ctx, ended.UserID, ended.ID); err != nil {
		// The workout is ended either way; the user document catches up on
		// the next successful end.
		s.logger.Error("failed to file ended workout on user",
			zap.String("userId", ended.UserID.Hex()), zap.String("workoutId", ended.ID.Hex()), zap.Error(err))
	}
	return ended, nil
}

// RateWorkout stores a 1-5 rating on an ended workout.
func (s *workoutService) RateWorkout(ctx context.Context, actorID, workoutID primitive.ObjectID, rating int) (*domain.Workout, error) {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return nil, Validation("rating must be between 1 and 5")
	}
	workout, err := s.owned(ctx, actorID, workoutID)
	if err != nil {
		return nil, err
	}
	if !workout.IsEnded() {
		return nil, ErrWorkoutNotEnded
	}

	rated, err := s.workoutRepo.SetRating(ctx, workoutID, rating)
	if errors.Is(err, repository.ErrConditionFailed) {
		return nil, ErrWorkoutNotEnded
	}
	if err != nil {
		return nil, lookup(err, ErrWorkoutNotFound, "rate workout")
	}
	return rated, nil
}

// --- helpers ---

// owned loads a workout and checks that actorID owns it.
func (s *workoutService) owned(ctx context.Context, actorID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		return nil, lookup(err, ErrWorkoutNotFound, "load workout")
	}
	if workout.UserID != actorID {
		return nil, ErrNotOwner
	}
	return workout, nil
}

// active is owned plus a check that the workout has not ended.
func (s *workoutService) active(ctx context.Context, actorID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.owned(ctx, actorID, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.IsEnded() {
		return nil, ErrWorkoutAlreadyEnded
	}
	return workout, nil
}

func (s *workoutService) machine(ctx context.Context, machineID primitive.ObjectID) (*domain.Machine, error) {
	machine, err := s.machineRepo.GetByID(ctx, machineID)
	if err != nil {
		return nil, lookup(err, ErrMachineNotFound, "load machine")
	}
	return machine, nil
}

// explainMiss picks the right conflict after a guarded update matched nothing.
func (s *workoutService) explainMiss(ctx context.Context, workoutID primitive.ObjectID, otherwise error) error {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		return lookup(err, ErrWorkoutNotFound, "load workout")
	}
	if workout.IsEnded() {
		return ErrWorkoutAlreadyEnded
	}
	return otherwise
}
