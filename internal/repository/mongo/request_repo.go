package mongo

import (
	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const requestCollectionName = "requests"

// requestRetention bounds how long tracked requests are kept.
const requestRetention = 30 * 24 * 60 * 60 // seconds

type mongoRequestRepository struct {
	collection *mongo.Collection
}

// NewMongoRequestRepository creates a repository for request tracker records.
func NewMongoRequestRepository(db *mongo.Database) repository.RequestRepository {
	return &mongoRequestRepository{
		collection: db.Collection(requestCollectionName),
	}
}

func (r *mongoRequestRepository) Insert(ctx context.Context, record domain.RequestRecord) error {
	_, err := r.collection.InsertOne(ctx, record)
	return translateError(err)
}

// EnsureRequestIndexes expires request records after the retention window.
func EnsureRequestIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "receivedAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(requestRetention),
		},
	}
	_, err := db.Collection(requestCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
