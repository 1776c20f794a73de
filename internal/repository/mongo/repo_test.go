package mongo

import (
	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(mongo.ErrNoDocuments), repository.ErrNotFound)
	assert.ErrorIs(t, translateError(context.DeadlineExceeded), repository.ErrTimeout)

	other := errors.New("socket closed")
	assert.Same(t, other, translateError(other))
}

func TestUserRepository(t *testing.T) {
	mt := newMock(t)

	mt.Run("get by id not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "gym.users", mtest.FirstBatch))
		repo := NewMongoUserRepository(mt.DB)

		_, err := repo.GetByID(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("get by email", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "gym.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "username", Value: "ada"},
			{Key: "email", Value: "ada@example.com"},
			{Key: "passwordHash", Value: "hash"},
			{Key: "savedWorkouts", Value: bson.A{}},
		}))
		repo := NewMongoUserRepository(mt.DB)

		user, err := repo.GetByEmail(context.Background(), "ada@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, id, user.ID)
		assert.Equal(mt, "ada", user.Username)
		assert.False(mt, user.HasActiveWorkout())
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))
		repo := NewMongoUserRepository(mt.DB)

		_, err := repo.Create(context.Background(), &domain.User{Username: "ada", Email: "ada@example.com", PasswordHash: "hash"})
		assert.ErrorIs(mt, err, repository.ErrDuplicate)
	})

	mt.Run("create success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewMongoUserRepository(mt.DB)

		user := &domain.User{Username: "ada", Email: "ada@example.com", PasswordHash: "hash"}
		id, err := repo.Create(context.Background(), user)
		require.NoError(mt, err)
		assert.Equal(mt, user.ID, id)
		assert.NotNil(mt, user.SavedWorkoutIDs)
	})

	mt.Run("set current workout when one is active", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, "gym.users", mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
		)
		repo := NewMongoUserRepository(mt.DB)

		err := repo.SetCurrentWorkout(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, repository.ErrConditionFailed)
	})

	mt.Run("save workout for missing user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		repo := NewMongoUserRepository(mt.DB)

		err := repo.SaveWorkout(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}

func TestWorkoutRepository(t *testing.T) {
	mt := newMock(t)

	mt.Run("end already ended workout", func(mt *mtest.T) {
		mt.AddMockResponses(
			// findAndModify matched nothing
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			// countDocuments finds the workout
			mtest.CreateCursorResponse(0, "gym.workouts", mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
		)
		repo := NewMongoWorkoutRepository(mt.DB)

		_, err := repo.End(context.Background(), primitive.NewObjectID(), time.Now())
		assert.ErrorIs(mt, err, repository.ErrConditionFailed)
	})

	mt.Run("rate missing workout", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, "gym.workouts", mtest.FirstBatch),
		)
		repo := NewMongoWorkoutRepository(mt.DB)

		_, err := repo.SetRating(context.Background(), primitive.NewObjectID(), 4)
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("end active workout", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		endedAt := time.Now().UTC().Truncate(time.Millisecond)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "userId", Value: primitive.NewObjectID()},
			{Key: "status", Value: "ended"},
			{Key: "machines", Value: bson.A{}},
			{Key: "exercises", Value: bson.A{}},
			{Key: "endedAt", Value: endedAt},
		}}))
		repo := NewMongoWorkoutRepository(mt.DB)

		w, err := repo.End(context.Background(), id, endedAt)
		require.NoError(mt, err)
		assert.True(mt, w.IsEnded())
		require.NotNil(mt, w.EndedAt)
		assert.True(mt, endedAt.Equal(*w.EndedAt))
	})
}

func TestMachineRepository(t *testing.T) {
	mt := newMock(t)

	mt.Run("exclusive in-use conflict", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, "gym.machines", mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
		)
		repo := NewMongoMachineRepository(mt.DB)

		_, err := repo.UpdateStatus(context.Background(), primitive.NewObjectID(), domain.MachineInUse, true)
		assert.ErrorIs(mt, err, repository.ErrConditionFailed)
	})

	mt.Run("list empty", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "gym.machines", mtest.FirstBatch))
		repo := NewMongoMachineRepository(mt.DB)

		machines, err := repo.List(context.Background(), domain.MachineFilter{Category: domain.CategoryCardio})
		require.NoError(mt, err)
		assert.NotNil(mt, machines)
		assert.Empty(mt, machines)
	})
}
