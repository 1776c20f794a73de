package service

import (
	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository/memory"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type workoutFixture struct {
	store     *memory.Store
	svc       WorkoutService
	user      *domain.User
	treadmill *domain.Machine
	bench     *domain.Machine
}

func newWorkoutFixture(t *testing.T) *workoutFixture {
	t.Helper()
	store := memory.NewStore()
	f := &workoutFixture{
		store: store,
		svc:   NewWorkoutService(store.Workouts(), store.Users(), store.Machines(), store.Exercises(), zap.NewNop()),
		user:  seedUser(t, store, "ada", "ada@example.com"),
	}
	machines := NewMachineService(store.Machines())
	var err error
	f.treadmill, err = machines.CreateMachine(context.Background(), CreateMachineInput{Name: "Treadmill", Category: domain.CategoryCardio})
	require.NoError(t, err)
	f.bench, err = machines.CreateMachine(context.Background(), CreateMachineInput{Name: "Bench Press", Category: domain.CategoryStrength})
	require.NoError(t, err)
	return f
}

func (f *workoutFixture) start(t *testing.T) *domain.Workout {
	t.Helper()
	w, err := f.svc.CreateWorkout(context.Background(), f.user.ID, f.user.ID, "Leg day")
	require.NoError(t, err)
	return w
}

func TestCreateWorkout(t *testing.T) {
	f := newWorkoutFixture(t)
	ctx := context.Background()

	w := f.start(t)
	assert.Equal(t, domain.WorkoutActive, w.Status)
	assert.Equal(t, "Leg day", w.Name)
	assert.Empty(t, w.Machines)

	user, err := f.store.Users().GetByID(ctx, f.user.ID)
	require.NoError(t, err)
	require.NotNil(t, user.CurrentWorkoutID)
	assert.Equal(t, w.ID, *user.CurrentWorkoutID)

	_, err = f.svc.CreateWorkout(ctx, f.user.ID, f.user.ID, "Second")
	assert.ErrorIs(t, err, ErrActiveWorkoutExists)

	_, err = f.svc.CreateWorkout(ctx, primitive.NewObjectID(), f.user.ID, "Not mine")
	assert.ErrorIs(t, err, ErrNotOwner)

	ghost := primitive.NewObjectID()
	_, err = f.svc.CreateWorkout(ctx, f.user.ID, ghost, "Nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAddCardio_AppendsInOrder(t *testing.T) {
	f := newWorkoutFixture(t)
	ctx := context.Background()
	w := f.start(t)

	after1, err := f.svc.AddCardio(ctx, f.user.ID, w.ID, f.treadmill.ID, 5, 1800)
	require.NoError(t, err)
	require.Len(t, after1.Machines, 1)
	assert.Equal(t, "Treadmill", after1.Machines[0].Name)
	require.Len(t, after1.Machines[0].Cardio, 1)

	after2, err := f.svc.AddCardio(ctx, f.user.ID, w.ID, f.treadmill.ID, 2.5, 600)
	require.NoError(t, err)
	require.Len(t, after2.Machines, 1)
	cardio := after2.Machines[0].Cardio
	require.Len(t, cardio, 2)
	assert.Equal(t, 5.0, cardio[0].Distance)
	assert.Equal(t, 1800, cardio[0].Time)
	assert.Equal(t, 2.5, cardio[1].Distance)
	assert.Equal(t, 600, cardio[1].Time)
}

func TestAddCardio_Validation(t *testing.T) {
	f := newWorkoutFixture(t)
	ctx := context.Background()
	w := f.start(t)

	_, err := f.svc.AddCardio(ctx, f.user.ID, w.ID, f.treadmill.ID, -1, 60)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.svc.AddCardio(ctx, f.user.ID, w.ID, f.treadmill.ID, 1, 0)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.svc.AddCardio(ctx, f.user.ID, w.ID, f.bench.ID, 1, 60)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.svc.AddCardio(ctx, f.user.ID, w.ID, primitive.NewObjectID(), 1, 60)
	assert.ErrorIs(t, err, ErrMachineNotFound)

	_, err = f.svc.AddCardio(ctx, f.user.ID, primitive.NewObjectID(), f.treadmill.ID, 1, 60)
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestAddSet(t *testing.T) {
	f := newWorkoutFixture(t)
	ctx := context.Background()
	w := f.start(t)

	_, err := f.svc.AddSet(ctx, f.user.ID, w.ID, f.bench.ID, 60, 10)
	require.NoError(t, err)
	updated, err := f.svc.AddSet(ctx, f.user.ID, w.ID, f.bench.ID, 70, 8)
	require.NoError(t, err)

	entry := updated.Entry(f.bench.ID)
	require.NotNil(t, entry)
	require.Len(t, entry.Sets, 2)
	assert.Equal(t, 60.0, entry.Sets[0].Weight)
	assert.Equal(t, 8, entry.Sets[1].Reps)
	assert.Empty(t, entry.Cardio)

	_, err = f.svc.AddSet(ctx, f.user.ID, w.ID, f.bench.ID, 60, 0)
	assert.Equal(t, KindValidation, KindOf(err))
	_, err = f.svc.AddSet(ctx, f.user.ID, w.ID, f.treadmill.ID, 60, 5)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestAddMachine(t *testing.T) {
	f := newWorkoutFixture(t)
	ctx := context.Background()
	w := f.start(t)

	updated, err := f.svc.AddMachine(ctx, f.user.ID, w.ID, f.bench.ID)
	require.NoError(t, err)
	require.Len(t, updated.Machines, 1)
	assert.Empty(t, updated.Machines[0].Sets)

	_, err = f.svc.AddMachine(ctx, f.user.ID, w.ID, f.bench.ID)
	assert.ErrorIs(t, err, ErrMachineAlreadyAdded)

	_, err = f.svc.AddMachine(ctx, primitive.NewObjectID(), w.ID, f.treadmill.ID)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestAddExercise(t *testing.T) {
	f := newWorkoutFixture(t)
	ctx := context.Background()
	w := f.start(t)

	exercise, updated, err := f.svc.AddExercise(ctx, f.user.ID, AddExerciseInput{
		WorkoutID: w.ID,
		Name:      "Push-ups",
		Category:  domain.CategoryStrength,
		Sets:      []domain.StrengthSet{{Weight: 0, Reps: 20}},
	})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{exercise.ID}, updated.ExerciseIDs)

	details, err := f.svc.GetWorkout(ctx, f.user.ID, w.ID)
	require.NoError(t, err)
	require.Len(t, details.Exercises, 1)
	assert.Equal(t, "Push-ups", details.Exercises[0].Name)

	_, _, err = f.svc.AddExercise(ctx, f.user.ID, AddExerciseInput{WorkoutID: w.ID, Name: "Swim", Category: "water"})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestEndWorkout(t *testing.T) {
	f := newWorkoutFixture(t)
	ctx := context.Background()
	w := f.start(t)

	ended, err := f.svc.EndWorkout(ctx, f.user.ID, w.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkoutEnded, ended.Status)
	assert.NotNil(t, ended.EndedAt)

	_, err = f.svc.EndWorkout(ctx, f.user.ID, w.ID)
	assert.ErrorIs(t, err, ErrWorkoutAlreadyEnded)
	assert.Equal(t, KindConflict, KindOf(err))

	user, err := f.store.Users().GetByID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.False(t, user.HasActiveWorkout())
	assert.Equal(t, []primitive.ObjectID{w.ID}, user.SavedWorkoutIDs)

	// Ended workouts are frozen.
	_, err = f.svc.AddCardio(ctx, f.user.ID, w.ID, f.treadmill.ID, 1, 60)
	assert.ErrorIs(t, err, ErrWorkoutAlreadyEnded)

	// A new workout can start once the previous one ended.
	next, err := f.svc.CreateWorkout(ctx, f.user.ID, f.user.ID, "")
	require.NoError(t, err)
	assert.NotEqual(t, w.ID, next.ID)
}

func TestRateWorkout(t *testing.T) {
	f := newWorkoutFixture(t)
	ctx := context.Background()
	w := f.start(t)

	_, err := f.svc.RateWorkout(ctx, f.user.ID, w.ID, 4)
	assert.ErrorIs(t, err, ErrWorkoutNotEnded)

	_, err = f.svc.AddCardio(ctx, f.user.ID, w.ID, f.treadmill.ID, 5, 1800)
	require.NoError(t, err)
	_, err = f.svc.EndWorkout(ctx, f.user.ID, w.ID)
	require.NoError(t, err)

	_, err = f.svc.RateWorkout(ctx, f.user.ID, w.ID, 0)
	assert.Equal(t, KindValidation, KindOf(err))
	_, err = f.svc.RateWorkout(ctx, f.user.ID, w.ID, 6)
	assert.Equal(t, KindValidation, KindOf(err))

	rated, err := f.svc.RateWorkout(ctx, f.user.ID, w.ID, 4)
	require.NoError(t, err)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, 4, *rated.Rating)
	require.Len(t, rated.Machines, 1)
	assert.Len(t, rated.Machines[0].Cardio, 1)

	rerated, err := f.svc.RateWorkout(ctx, f.user.ID, w.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, *rerated.Rating)
}

func TestGetUserWorkouts(t *testing.T) {
	f := newWorkoutFixture(t)
	ctx := context.Background()

	empty, err := f.svc.GetUserWorkouts(ctx, f.user.ID, f.user.ID)
	require.NoError(t, err)
	assert.Nil(t, empty.Current)
	assert.Empty(t, empty.Workouts)

	first := f.start(t)
	_, err = f.svc.EndWorkout(ctx, f.user.ID, first.ID)
	require.NoError(t, err)
	second := f.start(t)

	all, err := f.svc.GetUserWorkouts(ctx, f.user.ID, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, all.Workouts, 2)
	require.NotNil(t, all.Current)
	assert.Equal(t, second.ID, all.Current.ID)

	_, err = f.svc.GetUserWorkouts(ctx, primitive.NewObjectID(), f.user.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = f.svc.GetUserWorkouts(ctx, f.user.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetWorkout_Ownership(t *testing.T) {
	f := newWorkoutFixture(t)
	ctx := context.Background()
	w := f.start(t)

	_, err := f.svc.GetWorkout(ctx, primitive.NewObjectID(), w.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = f.svc.GetWorkout(ctx, f.user.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}
