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

const dispatchCollection = "dispatch_log"

// DispatchRepository handles dispatch record data operations. Records with
// the inapp channel also serve as the user's in-app notification feed.
type DispatchRepository struct {
	client *mongodb.MongoClient
}

// NewDispatchRepository creates a new dispatch repository
func NewDispatchRepository(client *mongodb.MongoClient) *DispatchRepository {
	return &DispatchRepository{client: client}
}

// EnsureIndexes creates necessary indexes for feed and history queries
func (r *DispatchRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "owner_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("owner_created_idx"),
		},
		{
			Keys: bson.D{
				{Key: "reminder_id", Value: 1},
				{Key: "channel", Value: 1},
			},
			Options: options.Index().SetName("reminder_channel_idx"),
		},
	}

	return r.client.CreateIndexes(ctx, dispatchCollection, indexes)
}

// Create creates a new dispatch record
func (r *DispatchRepository) Create(ctx context.Context, record *domain.DispatchRecord) error {
	record.ID = primitive.NewObjectID()
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	record.DeletedAt = nil

	_, err := r.client.Collection(dispatchCollection).InsertOne(ctx, record)
	return err
}

// FindByID finds a dispatch record by ID
func (r *DispatchRepository) FindByID(ctx context.Context, id string) (*domain.DispatchRecord, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var record domain.DispatchRecord
	filter := bson.M{"_id": objectID, "deleted_at": nil}
	err = r.client.Collection(dispatchCollection).FindOne(ctx, filter).Decode(&record)
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// FindByOwner finds a user's dispatch records with pagination, newest first
func (r *DispatchRepository) FindByOwner(ctx context.Context, ownerID string, channel domain.NotificationMethod, status domain.DispatchStatus, page, pageSize int) ([]*domain.DispatchRecord, int64, error) {
	filter := bson.M{"owner_id": ownerID, "deleted_at": nil}
	if channel != "" {
		filter["channel"] = channel
	}
	if status != "" {
		filter["status"] = status
	}

	total, err := r.client.Collection(dispatchCollection).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := (page - 1) * pageSize
	opts := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(pageSize)).
		SetSort(bson.M{"created_at": -1})

	cursor, err := r.client.Collection(dispatchCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var records []*domain.DispatchRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// UpdateStatus updates the delivery status of a dispatch record
func (r *DispatchRepository) UpdateStatus(ctx context.Context, id string, status domain.DispatchStatus, errorMsg string, sentAt *time.Time) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	set := bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}
	if errorMsg != "" {
		set["error"] = errorMsg
	}
	if sentAt != nil {
		set["sent_at"] = sentAt
	}

	filter := bson.M{"_id": objectID}
	_, err = r.client.Collection(dispatchCollection).UpdateOne(ctx, filter, bson.M{"$set": set})
	return err
}

// IncrementRetryCount increments the retry count of a dispatch record
func (r *DispatchRepository) IncrementRetryCount(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": objectID}
	update := bson.M{
		"$inc": bson.M{"retry_count": 1},
		"$set": bson.M{"updated_at": time.Now()},
	}

	_, err = r.client.Collection(dispatchCollection).UpdateOne(ctx, filter, update)
	return err
}

// MarkRead stamps an in-app record as read by its owner
func (r *DispatchRepository) MarkRead(ctx context.Context, id, ownerID string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	now := time.Now()
	filter := bson.M{"_id": objectID, "owner_id": ownerID, "deleted_at": nil}
	update := bson.M{"$set": bson.M{"read_at": now, "updated_at": now}}

	_, err = r.client.Collection(dispatchCollection).UpdateOne(ctx, filter, update)
	return err
}

// SoftDelete hides a record from the feed without removing it
func (r *DispatchRepository) SoftDelete(ctx context.Context, id, ownerID string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	now := time.Now()
	filter := bson.M{"_id": objectID, "owner_id": ownerID, "deleted_at": nil}
	update := bson.M{"$set": bson.M{"deleted_at": now, "updated_at": now}}

	_, err = r.client.Collection(dispatchCollection).UpdateOne(ctx, filter, update)
	return err
}

// CountByStatus aggregates dispatch counts per status for the stats endpoint
func (r *DispatchRepository) CountByStatus(ctx context.Context, since time.Time) (map[domain.DispatchStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": since}, "deleted_at": nil}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.client.Collection(dispatchCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status domain.DispatchStatus `bson:"_id"`
		Count  int64                 `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[domain.DispatchStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}
