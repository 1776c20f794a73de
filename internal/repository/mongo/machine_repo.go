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

const machineCollectionName = "machines"

// mongoMachineRepository implements repository.MachineRepository
type mongoMachineRepository struct {
	collection *mongo.Collection
}

// NewMongoMachineRepository creates a new Machine repository backed by MongoDB.
func NewMongoMachineRepository(db *mongo.Database) repository.MachineRepository {
	return &mongoMachineRepository{
		collection: db.Collection(machineCollectionName),
	}
}

// Create inserts a new machine into the catalogue.
func (r *mongoMachineRepository) Create(ctx context.Context, machine *domain.Machine) (primitive.ObjectID, error) {
	if machine.Name == "" || !machine.Category.Valid() {
		return primitive.NilObjectID, errors.New("machine name and a valid category are required")
	}

	machine.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	machine.CreatedAt = now
	machine.UpdatedAt = now
	if machine.Status == "" {
		machine.Status = domain.MachineAvailable
	}

	result, err := r.collection.InsertOne(ctx, machine)
	if err != nil {
		return primitive.NilObjectID, translateError(err)
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted machine ID")
	}
	return insertedID, nil
}

// GetByID retrieves a machine by its ID.
func (r *mongoMachineRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Machine, error) {
	var machine domain.Machine
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&machine); err != nil {
		return nil, translateError(err)
	}
	return &machine, nil
}

// List returns machines matching filter, sorted by name.
func (r *mongoMachineRepository) List(ctx context.Context, filter domain.MachineFilter) ([]domain.Machine, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, translateError(err)
	}
	defer cursor.Close(ctx)

	machines := []domain.Machine{}
	if err = cursor.All(ctx, &machines); err != nil {
		return nil, translateError(err)
	}
	return machines, nil
}

// UpdateStatus sets the machine status and returns the updated machine.
func (r *mongoMachineRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.MachineStatus, exclusive bool) (*domain.Machine, error) {
	filter := bson.M{"_id": id}
	if exclusive {
		filter["status"] = bson.M{"$ne": status}
	}
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now().UTC(),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var machine domain.Machine
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&machine)
	if err == nil {
		return &machine, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) || !exclusive {
		return nil, translateError(err)
	}

	// Guarded update missed: either no such machine or it already holds status.
	n, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if countErr != nil {
		return nil, translateError(countErr)
	}
	if n == 0 {
		return nil, repository.ErrNotFound
	}
	return nil, repository.ErrConditionFailed
}

// EnsureMachineIndexes creates necessary indexes for the machines collection.
func EnsureMachineIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := db.Collection(machineCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
