package mongo

import (
	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// Create inserts a new exercise into the database.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" || exercise.WorkoutID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise name and workout ID are required")
	}

	exercise.ID = primitive.NewObjectID()
	exercise.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, exercise)
	if err != nil {
		return primitive.NilObjectID, translateError(err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByWorkoutID retrieves the exercises logged in a workout, in insertion order.
func (r *mongoExerciseRepository) GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.Exercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"workoutId": workoutID}, findOptions)
	if err != nil {
		return nil, translateError(err)
	}
	defer cursor.Close(ctx)

	exercises := []domain.Exercise{}
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, translateError(err)
	}
	return exercises, nil
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutId", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := db.Collection(exerciseCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
