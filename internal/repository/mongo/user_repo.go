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

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Username == "" || user.Email == "" || user.PasswordHash == "" {
		return primitive.NilObjectID, errors.New("user username, email, and password hash are required")
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.SavedWorkoutIDs == nil {
		// $addToSet on a null field fails, so always store an array.
		user.SavedWorkoutIDs = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return primitive.NilObjectID, translateError(err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// GetByID retrieves a user by their MongoDB ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail retrieves a user by their email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByUsername retrieves a user by their username.
func (r *mongoUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// Update applies a partial update and returns the document after the change.
func (r *mongoUserRepository) Update(ctx context.Context, id primitive.ObjectID, update domain.UserUpdate) (*domain.User, error) {
	if update.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Username != nil {
		set["username"] = *update.Username
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.FirstName != nil {
		set["firstName"] = *update.FirstName
	}
	if update.LastName != nil {
		set["lastName"] = *update.LastName
	}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}
	if update.ProfileImageKey != nil {
		set["profileImageKey"] = *update.ProfileImageKey
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user domain.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// SetCurrentWorkout links workoutID as the user's active workout, but only if
// the user has none.
func (r *mongoUserRepository) SetCurrentWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error {
	filter := bson.M{
		"_id":            userID,
		"currentWorkout": bson.M{"$in": bson.A{nil, primitive.NilObjectID}},
	}
	update := bson.M{
		"$set": bson.M{
			"currentWorkout": workoutID,
			"updatedAt":      time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return translateError(err)
	}
	if result.MatchedCount == 0 {
		return r.diagnose(ctx, userID)
	}
	return nil
}

// SaveWorkout clears the active workout and records workoutID as saved.
func (r *mongoUserRepository) SaveWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error {
	update := bson.M{
		"$unset":    bson.M{"currentWorkout": ""},
		"$addToSet": bson.M{"savedWorkouts": workoutID}, // $addToSet keeps retries idempotent
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return translateError(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// diagnose tells a missing user apart from a failed guard.
func (r *mongoUserRepository) diagnose(ctx context.Context, userID primitive.ObjectID) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": userID})
	if err != nil {
		return translateError(err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrConditionFailed
}

// EnsureUserIndexes creates necessary indexes for the users collection.
func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := db.Collection(userCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
