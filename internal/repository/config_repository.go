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

const configsCollection = "automation_configs"

// ConfigRepository handles automation config data operations
type ConfigRepository struct {
	client *mongodb.MongoClient
}

// NewConfigRepository creates a new config repository
func NewConfigRepository(client *mongodb.MongoClient) *ConfigRepository {
	return &ConfigRepository{client: client}
}

// EnsureIndexes creates necessary indexes. The unique index on type enforces
// the one-config-per-type invariant.
func (r *ConfigRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "type", Value: 1}},
			Options: options.Index().SetName("type_unique_idx").SetUnique(true),
		},
	}

	return r.client.CreateIndexes(ctx, configsCollection, indexes)
}

// FindAll retrieves every automation config
func (r *ConfigRepository) FindAll(ctx context.Context) ([]*domain.AutomationConfig, error) {
	cursor, err := r.client.Collection(configsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var configs []*domain.AutomationConfig
	if err = cursor.All(ctx, &configs); err != nil {
		return nil, err
	}

	return configs, nil
}

// FindByType retrieves the config for one alert type
func (r *ConfigRepository) FindByType(ctx context.Context, alertType domain.AlertType) (*domain.AutomationConfig, error) {
	var cfg domain.AutomationConfig
	err := r.client.Collection(configsCollection).FindOne(ctx, bson.M{"type": alertType}).Decode(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// UpsertByType creates or updates the single config for an alert type.
// Configs are never deleted, only disabled.
func (r *ConfigRepository) UpsertByType(ctx context.Context, alertType domain.AlertType, daysThreshold int, enabled bool, actorID string) (*domain.AutomationConfig, error) {
	now := time.Now()

	filter := bson.M{"type": alertType}
	update := bson.M{
		"$set": bson.M{
			"days_threshold": daysThreshold,
			"enabled":        enabled,
			"updated_at":     now,
		},
		"$setOnInsert": bson.M{
			"type":       alertType,
			"created_by": actorID,
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var cfg domain.AutomationConfig
	err := r.client.Collection(configsCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
