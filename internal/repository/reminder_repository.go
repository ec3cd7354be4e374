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

const remindersCollection = "reminders"

// ReminderRepository handles reminder data operations. Reminders are soft
// deleted: every read filters on deleted_at.
type ReminderRepository struct {
	client *mongodb.MongoClient
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(client *mongodb.MongoClient) *ReminderRepository {
	return &ReminderRepository{client: client}
}

// EnsureIndexes creates necessary indexes for sweep and listing queries
func (r *ReminderRepository) EnsureIndexes(ctx context.Context) error {
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
				{Key: "status", Value: 1},
				{Key: "reminder_time", Value: 1},
			},
			Options: options.Index().SetName("status_reminder_time_idx"),
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "snooze_until", Value: 1},
			},
			Options: options.Index().SetName("status_snooze_until_idx").SetSparse(true),
		},
	}

	return r.client.CreateIndexes(ctx, remindersCollection, indexes)
}

// Create creates a new reminder
func (r *ReminderRepository) Create(ctx context.Context, reminder *domain.Reminder) error {
	reminder.ID = primitive.NewObjectID()
	reminder.CreatedAt = time.Now()
	reminder.UpdatedAt = reminder.CreatedAt
	reminder.DeletedAt = nil

	_, err := r.client.Collection(remindersCollection).InsertOne(ctx, reminder)
	return err
}

// FindByID finds a reminder by ID, excluding archived ones
func (r *ReminderRepository) FindByID(ctx context.Context, id string) (*domain.Reminder, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var reminder domain.Reminder
	filter := bson.M{"_id": objectID, "deleted_at": nil}
	err = r.client.Collection(remindersCollection).FindOne(ctx, filter).Decode(&reminder)
	if err != nil {
		return nil, err
	}

	return &reminder, nil
}

// FindByOwner finds a user's reminders with pagination, newest first
func (r *ReminderRepository) FindByOwner(ctx context.Context, ownerID string, status domain.ReminderStatus, page, pageSize int) ([]*domain.Reminder, int64, error) {
	filter := bson.M{"owner_id": ownerID, "deleted_at": nil}
	if status != "" {
		filter["status"] = status
	}

	skip := (page - 1) * pageSize

	// Single round trip for count + page
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$facet", Value: bson.M{
			"metadata": bson.A{bson.M{"$count": "total"}},
			"data": bson.A{
				bson.M{"$sort": bson.M{"created_at": -1}},
				bson.M{"$skip": skip},
				bson.M{"$limit": pageSize},
			},
		}}},
	}

	cursor, err := r.client.Collection(remindersCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	type Result struct {
		Metadata []struct {
			Total int64 `bson:"total"`
		} `bson:"metadata"`
		Data []*domain.Reminder `bson:"data"`
	}

	var results []Result
	if err = cursor.All(ctx, &results); err != nil {
		return nil, 0, err
	}

	if len(results) == 0 || len(results[0].Data) == 0 {
		return []*domain.Reminder{}, 0, nil
	}

	total := int64(0)
	if len(results[0].Metadata) > 0 {
		total = results[0].Metadata[0].Total
	}

	return results[0].Data, total, nil
}

// FindSweepCandidates finds reminders that may be due at time now: active
// ones whose trigger time has passed and snoozed ones whose snooze expired
func (r *ReminderRepository) FindSweepCandidates(ctx context.Context, now time.Time) ([]*domain.Reminder, error) {
	filter := bson.M{
		"deleted_at": nil,
		"$or": bson.A{
			bson.M{"status": domain.ReminderStatusActive, "reminder_time": bson.M{"$lte": now}},
			bson.M{"status": domain.ReminderStatusSnoozed, "snooze_until": bson.M{"$lte": now}},
		},
	}

	cursor, err := r.client.Collection(remindersCollection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reminders []*domain.Reminder
	if err = cursor.All(ctx, &reminders); err != nil {
		return nil, err
	}

	return reminders, nil
}

// FindUpcoming finds a user's active reminders triggering within (now, now+24h]
func (r *ReminderRepository) FindUpcoming(ctx context.Context, ownerID string, now time.Time) ([]*domain.Reminder, error) {
	filter := bson.M{
		"owner_id":   ownerID,
		"deleted_at": nil,
		"status":     domain.ReminderStatusActive,
		"reminder_time": bson.M{
			"$gt":  now,
			"$lte": now.Add(24 * time.Hour),
		},
	}

	opts := options.Find().SetSort(bson.M{"reminder_time": 1})
	cursor, err := r.client.Collection(remindersCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reminders []*domain.Reminder
	if err = cursor.All(ctx, &reminders); err != nil {
		return nil, err
	}

	return reminders, nil
}

// Update replaces a reminder document, refreshing updated_at
func (r *ReminderRepository) Update(ctx context.Context, reminder *domain.Reminder) error {
	reminder.UpdatedAt = time.Now()

	filter := bson.M{"_id": reminder.ID, "deleted_at": nil}
	update := bson.M{"$set": reminder}

	_, err := r.client.Collection(remindersCollection).UpdateOne(ctx, filter, update)
	return err
}

// SetStatus updates the status and related fields of a reminder. A nil
// snoozeUntil removes any stored snooze expiry, so a reactivated or
// completed reminder carries no stale snooze stamp.
func (r *ReminderRepository) SetStatus(ctx context.Context, id string, status domain.ReminderStatus, snoozeUntil *time.Time) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	set := bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}
	update := bson.M{"$set": set}
	if snoozeUntil != nil {
		set["snooze_until"] = snoozeUntil
	} else {
		update["$unset"] = bson.M{"snooze_until": ""}
	}

	filter := bson.M{"_id": objectID, "deleted_at": nil}
	_, err = r.client.Collection(remindersCollection).UpdateOne(ctx, filter, update)
	return err
}

// MarkNotified stamps last_notified_at after a dispatch, so the sweep does
// not re-send while the reminder stays due
func (r *ReminderRepository) MarkNotified(ctx context.Context, id string, at time.Time) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": objectID}
	update := bson.M{"$set": bson.M{"last_notified_at": at, "updated_at": time.Now()}}

	_, err = r.client.Collection(remindersCollection).UpdateOne(ctx, filter, update)
	return err
}

// Archive soft deletes a reminder. Archived reminders are invisible to every
// other query but remain in the collection.
func (r *ReminderRepository) Archive(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	now := time.Now()
	filter := bson.M{"_id": objectID, "deleted_at": nil}
	update := bson.M{"$set": bson.M{"deleted_at": now, "updated_at": now}}

	_, err = r.client.Collection(remindersCollection).UpdateOne(ctx, filter, update)
	return err
}
