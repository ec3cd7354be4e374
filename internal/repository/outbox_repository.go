package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const outboxEventsCollection = "outbox_events"

// OutboxRepository handles outbox event data operations for the
// transactional outbox pattern
type OutboxRepository struct {
	client *mongodb.MongoClient
}

// NewOutboxRepository creates a new outbox event repository
func NewOutboxRepository(client *mongodb.MongoClient) *OutboxRepository {
	return &OutboxRepository{client: client}
}

// EnsureIndexes creates necessary indexes for optimal query performance
func (r *OutboxRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "created_at", Value: 1},
			},
			Options: options.Index().SetName("status_created_idx"),
		},
		{
			Keys: bson.D{
				{Key: "aggregate_type", Value: 1},
				{Key: "aggregate_id", Value: 1},
			},
			Options: options.Index().SetName("aggregate_idx"),
		},
		{
			Keys:    bson.D{{Key: "processed_at", Value: 1}},
			Options: options.Index().SetName("processed_at_idx").SetSparse(true),
		},
	}

	return r.client.CreateIndexes(ctx, outboxEventsCollection, indexes)
}

// Create records a new outbox event
func (r *OutboxRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	event.ID = primitive.NewObjectID()
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	if event.Status == "" {
		event.Status = domain.OutboxEventStatusPending
	}

	_, err := r.client.Collection(outboxEventsCollection).InsertOne(ctx, event)
	return err
}

// FindUnprocessed retrieves pending events for relay, oldest first
func (r *OutboxRepository) FindUnprocessed(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	filter := bson.M{"status": domain.OutboxEventStatusPending}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.client.Collection(outboxEventsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*domain.OutboxEvent
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	return events, nil
}

// MarkProcessed marks an outbox event as relayed
func (r *OutboxRepository) MarkProcessed(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"status":       domain.OutboxEventStatusProcessed,
			"processed_at": now,
			"updated_at":   now,
		},
	}

	result, err := r.client.Collection(outboxEventsCollection).UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("outbox event not found")
	}

	return nil
}

// MarkFailed marks an outbox event as failed
func (r *OutboxRepository) MarkFailed(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"status":     domain.OutboxEventStatusFailed,
			"updated_at": time.Now(),
		},
	}

	result, err := r.client.Collection(outboxEventsCollection).UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("outbox event not found")
	}

	return nil
}

// FindByAggregateID finds all events for a specific aggregate, oldest first
func (r *OutboxRepository) FindByAggregateID(ctx context.Context, aggregateType, aggregateID string) ([]*domain.OutboxEvent, error) {
	filter := bson.M{
		"aggregate_type": aggregateType,
		"aggregate_id":   aggregateID,
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.client.Collection(outboxEventsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*domain.OutboxEvent
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	return events, nil
}

// DeleteOldProcessedEvents cleans up relayed events past the retention window
func (r *OutboxRepository) DeleteOldProcessedEvents(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	filter := bson.M{
		"status":       domain.OutboxEventStatusProcessed,
		"processed_at": bson.M{"$lt": cutoff},
	}

	result, err := r.client.Collection(outboxEventsCollection).DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}
