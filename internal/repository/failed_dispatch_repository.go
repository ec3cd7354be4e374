package repository

import (
	"context"
	"time"

	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const failedDispatchesCollection = "failed_dispatches"

// FailedDispatchRepository handles dead-lettered dispatch data operations
type FailedDispatchRepository struct {
	client *mongodb.MongoClient
}

// NewFailedDispatchRepository creates a new failed dispatch repository
func NewFailedDispatchRepository(client *mongodb.MongoClient) *FailedDispatchRepository {
	return &FailedDispatchRepository{client: client}
}

// EnsureIndexes creates necessary indexes for optimal query performance
func (r *FailedDispatchRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "failed_at", Value: -1}},
			Options: options.Index().SetName("failed_at_idx"),
		},
		{
			Keys: bson.D{
				{Key: "owner_id", Value: 1},
				{Key: "failed_at", Value: -1},
			},
			Options: options.Index().SetName("owner_failed_at_idx"),
		},
	}

	return r.client.CreateIndexes(ctx, failedDispatchesCollection, indexes)
}

// Create creates a new failed dispatch record
func (r *FailedDispatchRepository) Create(ctx context.Context, failed *domain.FailedDispatch) error {
	failed.ID = primitive.NewObjectID()
	failed.CreatedAt = time.Now()

	_, err := r.client.Collection(failedDispatchesCollection).InsertOne(ctx, failed)
	return err
}

// FindByID finds a failed dispatch by ID
func (r *FailedDispatchRepository) FindByID(ctx context.Context, id string) (*domain.FailedDispatch, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var failed domain.FailedDispatch
	err = r.client.Collection(failedDispatchesCollection).FindOne(ctx, bson.M{"_id": objectID}).Decode(&failed)
	if err != nil {
		return nil, err
	}

	return &failed, nil
}

// FindAll retrieves failed dispatches with pagination, newest failures first
func (r *FailedDispatchRepository) FindAll(ctx context.Context, page, pageSize int) ([]*domain.FailedDispatch, int64, error) {
	skip := (page - 1) * pageSize

	// Count and page in a single aggregation
	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"metadata": bson.A{bson.M{"$count": "total"}},
			"data": bson.A{
				bson.M{"$sort": bson.M{"failed_at": -1}},
				bson.M{"$skip": skip},
				bson.M{"$limit": pageSize},
			},
		}}},
	}

	cursor, err := r.client.Collection(failedDispatchesCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	type Result struct {
		Metadata []struct {
			Total int64 `bson:"total"`
		} `bson:"metadata"`
		Data []*domain.FailedDispatch `bson:"data"`
	}

	var results []Result
	if err = cursor.All(ctx, &results); err != nil {
		return nil, 0, err
	}

	if len(results) == 0 || len(results[0].Data) == 0 {
		return []*domain.FailedDispatch{}, 0, nil
	}

	total := int64(0)
	if len(results[0].Metadata) > 0 {
		total = results[0].Metadata[0].Total
	}

	return results[0].Data, total, nil
}

// Delete removes a failed dispatch by ID, used after a successful replay
func (r *FailedDispatchRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.client.Collection(failedDispatchesCollection).DeleteOne(ctx, bson.M{"_id": objectID})
	return err
}
