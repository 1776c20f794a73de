package mongo

import (
	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollectionName = "sessions"

// mongoSessionRepository implements repository.SessionRepository
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new Session repository backed by MongoDB.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// Create stores a newly issued session.
func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if session.ID == "" {
		return errors.New("session id is required")
	}
	_, err := r.collection.InsertOne(ctx, session)
	return translateError(err)
}

// GetByID retrieves a session by its token id.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session); err != nil {
		return nil, translateError(err)
	}
	return &session, nil
}

// Revoke stamps revokedAt once; later calls leave the first timestamp.
func (r *mongoSessionRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	filter := bson.M{"_id": id, "revokedAt": bson.M{"$exists": false}}
	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"revokedAt": at}})
	return translateError(err)
}

// EnsureSessionIndexes lets MongoDB expire sessions once expiresAt passes.
func EnsureSessionIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := db.Collection(sessionCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
