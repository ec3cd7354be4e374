package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OutboxEventStatus represents the processing status of an outbox event
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// OutboxEventType represents the type of domain event
type OutboxEventType string

const (
	// Reminder events
	EventReminderCreated   OutboxEventType = "reminder.created"
	EventReminderUpdated   OutboxEventType = "reminder.updated"
	EventReminderSnoozed   OutboxEventType = "reminder.snoozed"
	EventReminderCompleted OutboxEventType = "reminder.completed"
	EventReminderDismissed OutboxEventType = "reminder.dismissed"
	EventReminderArchived  OutboxEventType = "reminder.archived"

	// Alert events
	EventAlertDismissed OutboxEventType = "alert.dismissed"
	EventAlertSnoozed   OutboxEventType = "alert.snoozed"

	// Config events
	EventConfigUpdated OutboxEventType = "automation_config.updated"
)

// OutboxEvent records a lifecycle change in the same database as the entity
// write, for pickup by the platform's CDC pipeline
type OutboxEvent struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AggregateType string             `json:"aggregate_type" bson:"aggregate_type"` // "reminder", "alert", "automation_config"
	AggregateID   string             `json:"aggregate_id" bson:"aggregate_id"`
	EventType     OutboxEventType    `json:"event_type" bson:"event_type"`
	Payload       interface{}        `json:"payload,omitempty" bson:"payload,omitempty"`
	Status        OutboxEventStatus  `json:"status" bson:"status"`
	ProcessedAt   *time.Time         `json:"processed_at,omitempty" bson:"processed_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}
