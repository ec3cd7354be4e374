package repository

import (
	"context"
	"time"

	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const suppressionsCollection = "alert_suppressions"

// SuppressionRepository persists dismiss/snooze markers keyed by the
// deterministic alert id, so dismissals survive alert regeneration
type SuppressionRepository struct {
	client *mongodb.MongoClient
}

// NewSuppressionRepository creates a new suppression repository
func NewSuppressionRepository(client *mongodb.MongoClient) *SuppressionRepository {
	return &SuppressionRepository{client: client}
}

// EnsureIndexes creates necessary indexes
func (r *SuppressionRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "alert_id", Value: 1}},
			Options: options.Index().SetName("alert_id_unique_idx").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "suppressed_until", Value: 1}},
			Options: options.Index().SetName("suppressed_until_idx").SetSparse(true),
		},
	}

	return r.client.CreateIndexes(ctx, suppressionsCollection, indexes)
}

// Upsert records or replaces the suppression for an alert id
func (r *SuppressionRepository) Upsert(ctx context.Context, s *domain.AlertSuppression) error {
	filter := bson.M{"alert_id": s.AlertID}
	update := bson.M{
		"$set": bson.M{
			"reason":           s.Reason,
			"last_activity":    s.LastActivity,
			"suppressed_until": s.SuppressedUntil,
			"actor_id":         s.ActorID,
		},
		"$setOnInsert": bson.M{
			"alert_id":   s.AlertID,
			"created_at": time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.client.Collection(suppressionsCollection).UpdateOne(ctx, filter, update, opts)
	return err
}

// FindAll retrieves every suppression marker
func (r *SuppressionRepository) FindAll(ctx context.Context) ([]*domain.AlertSuppression, error) {
	cursor, err := r.client.Collection(suppressionsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var suppressions []*domain.AlertSuppression
	if err = cursor.All(ctx, &suppressions); err != nil {
		return nil, err
	}

	return suppressions, nil
}

// DeleteExpired removes snooze markers whose window has passed. Dismissal
// markers have no expiry and stay until their alert condition changes.
func (r *SuppressionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"reason":           domain.SuppressionSnoozed,
		"suppressed_until": bson.M{"$lte": now},
	}

	result, err := r.client.Collection(suppressionsCollection).DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}
