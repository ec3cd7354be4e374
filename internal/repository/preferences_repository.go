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

const preferencesCollection = "notification_preferences"

// PreferencesRepository handles notification preferences data operations
type PreferencesRepository struct {
	client *mongodb.MongoClient
}

// NewPreferencesRepository creates a new preferences repository
func NewPreferencesRepository(client *mongodb.MongoClient) *PreferencesRepository {
	return &PreferencesRepository{client: client}
}

// EnsureIndexes creates necessary indexes
func (r *PreferencesRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("user_idx").SetUnique(true),
		},
	}

	return r.client.CreateIndexes(ctx, preferencesCollection, indexes)
}

// GetByUserID retrieves preferences for a specific user. Users without a
// stored document get all channels enabled and no quiet hours.
func (r *PreferencesRepository) GetByUserID(ctx context.Context, userID string) (*domain.NotificationPreferences, error) {
	var prefs domain.NotificationPreferences
	filter := bson.M{"user_id": userID}
	err := r.client.Collection(preferencesCollection).FindOne(ctx, filter).Decode(&prefs)

	if err == mongo.ErrNoDocuments {
		return &domain.NotificationPreferences{
			UserID:          userID,
			InAppEnabled:    true,
			EmailEnabled:    true,
			WhatsAppEnabled: true,
			Timezone:        "UTC",
		}, nil
	}

	return &prefs, err
}

// Upsert creates or replaces a user's preferences
func (r *PreferencesRepository) Upsert(ctx context.Context, prefs *domain.NotificationPreferences) error {
	now := time.Now()
	prefs.UpdatedAt = now
	if prefs.ID.IsZero() {
		prefs.ID = primitive.NewObjectID()
		prefs.CreatedAt = now
	}

	filter := bson.M{"user_id": prefs.UserID}
	update := bson.M{"$set": prefs}
	opts := options.Update().SetUpsert(true)

	_, err := r.client.Collection(preferencesCollection).UpdateOne(ctx, filter, update, opts)
	return err
}
