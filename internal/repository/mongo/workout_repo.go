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

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout in the active state.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout requires userId")
	}
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.Status = domain.WorkoutActive
	workout.StartedAt = now
	workout.UpdatedAt = now
	workout.EndedAt = nil
	workout.Rating = nil
	// $push on a null field fails, so always store arrays.
	if workout.Machines == nil {
		workout.Machines = []domain.MachineEntry{}
	}
	if workout.ExerciseIDs == nil {
		workout.ExerciseIDs = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, translateError(err)
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&workout); err != nil {
		return nil, translateError(err)
	}
	return &workout, nil
}

// GetByUserID retrieves all workouts owned by a user, newest first.
func (r *mongoWorkoutRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, translateError(err)
	}
	defer cursor.Close(ctx)

	workouts := []domain.Workout{}
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, translateError(err)
	}
	return workouts, nil
}

// AddMachine appends a new machine entry. A machine appears at most once per workout.
func (r *mongoWorkoutRepository) AddMachine(ctx context.Context, workoutID primitive.ObjectID, entry domain.MachineEntry) (*domain.Workout, error) {
	filter := bson.M{
		"_id":               workoutID,
		"status":            domain.WorkoutActive,
		"machines.machineId": bson.M{"$ne": entry.MachineID},
	}
	return r.modify(ctx, workoutID, filter, bson.M{"$push": bson.M{"machines": entry}})
}

// AddCardio appends a cardio stat to the machine's entry.
func (r *mongoWorkoutRepository) AddCardio(ctx context.Context, workoutID primitive.ObjectID, entry domain.MachineEntry, stat domain.CardioStat) (*domain.Workout, error) {
	entry.Cardio = []domain.CardioStat{stat}
	return r.appendToEntry(ctx, workoutID, entry, "cardio", stat)
}

// AddSet appends a strength set to the machine's entry.
func (r *mongoWorkoutRepository) AddSet(ctx context.Context, workoutID primitive.ObjectID, entry domain.MachineEntry, set domain.StrengthSet) (*domain.Workout, error) {
	entry.Sets = []domain.StrengthSet{set}
	return r.appendToEntry(ctx, workoutID, entry, "sets", set)
}

// appendToEntry pushes value onto machines.$.<field> for the entry's machine.
// If the workout has no entry for the machine yet, entry (already carrying
// value) is appended instead. Each attempt is a single atomic update; the
// loop only repeats when a concurrent request created the entry in between.
func (r *mongoWorkoutRepository) appendToEntry(ctx context.Context, workoutID primitive.ObjectID, entry domain.MachineEntry, field string, value interface{}) (*domain.Workout, error) {
	now := time.Now().UTC()
	for attempt := 0; attempt < 2; attempt++ {
		existing := bson.M{
			"_id":               workoutID,
			"status":            domain.WorkoutActive,
			"machines.machineId": entry.MachineID,
		}
		push := bson.M{
			"$push": bson.M{"machines.$." + field: value},
			"$set":  bson.M{"updatedAt": now},
		}
		workout, err := r.findOneAndUpdate(ctx, existing, push)
		if err == nil || !errors.Is(err, repository.ErrNotFound) {
			return workout, err
		}

		missing := bson.M{
			"_id":               workoutID,
			"status":            domain.WorkoutActive,
			"machines.machineId": bson.M{"$ne": entry.MachineID},
		}
		create := bson.M{
			"$push": bson.M{"machines": entry},
			"$set":  bson.M{"updatedAt": now},
		}
		workout, err = r.findOneAndUpdate(ctx, missing, create)
		if err == nil || !errors.Is(err, repository.ErrNotFound) {
			return workout, err
		}
	}
	return nil, r.diagnose(ctx, workoutID)
}

// AddExercise appends an exercise reference to an active workout.
func (r *mongoWorkoutRepository) AddExercise(ctx context.Context, workoutID, exerciseID primitive.ObjectID) (*domain.Workout, error) {
	filter := bson.M{"_id": workoutID, "status": domain.WorkoutActive}
	return r.modify(ctx, workoutID, filter, bson.M{"$push": bson.M{"exercises": exerciseID}})
}

// End moves an active workout to ended. It is the only status transition.
func (r *mongoWorkoutRepository) End(ctx context.Context, workoutID primitive.ObjectID, endedAt time.Time) (*domain.Workout, error) {
	filter := bson.M{"_id": workoutID, "status": domain.WorkoutActive}
	update := bson.M{"$set": bson.M{
		"status":  domain.WorkoutEnded,
		"endedAt": endedAt,
	}}
	return r.modify(ctx, workoutID, filter, update)
}

// SetRating records a rating on an ended workout.
func (r *mongoWorkoutRepository) SetRating(ctx context.Context, workoutID primitive.ObjectID, rating int) (*domain.Workout, error) {
	filter := bson.M{"_id": workoutID, "status": domain.WorkoutEnded}
	return r.modify(ctx, workoutID, filter, bson.M{"$set": bson.M{"rating": rating}})
}

// modify runs a guarded update, stamping updatedAt, and explains a miss.
func (r *mongoWorkoutRepository) modify(ctx context.Context, workoutID primitive.ObjectID, filter, update bson.M) (*domain.Workout, error) {
	if set, ok := update["$set"].(bson.M); ok {
		set["updatedAt"] = time.Now().UTC()
	} else {
		update["$set"] = bson.M{"updatedAt": time.Now().UTC()}
	}

	workout, err := r.findOneAndUpdate(ctx, filter, update)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, r.diagnose(ctx, workoutID)
	}
	if err != nil {
		return nil, err
	}
	return workout, nil
}

func (r *mongoWorkoutRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.Workout, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var workout domain.Workout
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&workout); err != nil {
		return nil, translateError(err)
	}
	return &workout, nil
}

// diagnose tells a missing workout apart from a failed guard.
func (r *mongoWorkoutRepository) diagnose(ctx context.Context, workoutID primitive.ObjectID) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": workoutID})
	if err != nil {
		return translateError(err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrConditionFailed
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			// Listing a user's workouts, newest first
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "startedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := db.Collection(workoutCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
