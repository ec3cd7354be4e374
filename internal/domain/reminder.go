package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReminderStatus represents the lifecycle state of a reminder
type ReminderStatus string

const (
	ReminderStatusActive    ReminderStatus = "active"
	ReminderStatusSnoozed   ReminderStatus = "snoozed"
	ReminderStatusCompleted ReminderStatus = "completed"
	ReminderStatusDismissed ReminderStatus = "dismissed"
)

// IsTerminal reports whether no further transitions are allowed
func (s ReminderStatus) IsTerminal() bool {
	return s == ReminderStatusCompleted || s == ReminderStatusDismissed
}

// ReminderType represents the kind of reminder
type ReminderType string

const (
	ReminderTypeTask     ReminderType = "task"
	ReminderTypeMeeting  ReminderType = "meeting"
	ReminderTypeFollowUp ReminderType = "follow-up"
	ReminderTypeDeadline ReminderType = "deadline"
	ReminderTypeCustom   ReminderType = "custom"
)

// Recurrence represents the repeat cadence of a reminder
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// Next advances a trigger time by one recurrence period
func (r Recurrence) Next(t time.Time) time.Time {
	switch r {
	case RecurrenceDaily:
		return t.AddDate(0, 0, 1)
	case RecurrenceWeekly:
		return t.AddDate(0, 0, 7)
	case RecurrenceMonthly:
		return t.AddDate(0, 1, 0)
	}
	return t
}

// NotificationMethod represents a delivery channel for reminder notifications
type NotificationMethod string

const (
	MethodInApp    NotificationMethod = "inapp"
	MethodEmail    NotificationMethod = "email"
	MethodWhatsApp NotificationMethod = "whatsapp"
)

// IsValid reports whether the method is a known channel
func (m NotificationMethod) IsValid() bool {
	switch m {
	case MethodInApp, MethodEmail, MethodWhatsApp:
		return true
	}
	return false
}

// Reminder is a user-authored, time-triggered note with its own lifecycle,
// distinct from system-derived alerts. Reminders are archived (soft deleted),
// never removed.
type Reminder struct {
	ID              primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	OwnerID         string               `json:"owner_id" bson:"owner_id"`
	Title           string               `json:"title" bson:"title"`
	Description     string               `json:"description,omitempty" bson:"description,omitempty"`
	ReminderTime    time.Time            `json:"reminder_time" bson:"reminder_time"`
	Type            ReminderType         `json:"type" bson:"type"`
	Priority        Priority             `json:"priority" bson:"priority"`
	Status          ReminderStatus       `json:"status" bson:"status"`
	Recurring       Recurrence           `json:"recurring" bson:"recurring"`
	Methods         []NotificationMethod `json:"notification_methods" bson:"notification_methods"`
	LeadID          string               `json:"lead_id,omitempty" bson:"lead_id,omitempty"`
	LeadCompanyName string               `json:"lead_company_name,omitempty" bson:"lead_company_name,omitempty"`
	LeadContactName string               `json:"lead_contact_name,omitempty" bson:"lead_contact_name,omitempty"`
	TaskID          string               `json:"task_id,omitempty" bson:"task_id,omitempty"`
	SnoozeUntil     *time.Time           `json:"snooze_until,omitempty" bson:"snooze_until,omitempty"`
	LastNotifiedAt  *time.Time           `json:"last_notified_at,omitempty" bson:"last_notified_at,omitempty"`
	DeletedAt       *time.Time           `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
	CreatedAt       time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at" bson:"updated_at"`
}

// DueAt returns the effective trigger time: the snooze expiry while snoozed,
// the reminder time otherwise
func (r *Reminder) DueAt() time.Time {
	if r.Status == ReminderStatusSnoozed && r.SnoozeUntil != nil {
		return *r.SnoozeUntil
	}
	return r.ReminderTime
}

// IsDueNow reports whether the reminder should fire at time now
func (r *Reminder) IsDueNow(now time.Time) bool {
	switch r.Status {
	case ReminderStatusCompleted, ReminderStatusDismissed:
		return false
	case ReminderStatusSnoozed:
		return r.SnoozeUntil != nil && !now.Before(*r.SnoozeUntil)
	case ReminderStatusActive:
		return !now.Before(r.ReminderTime)
	}
	return false
}

// IsUpcoming reports whether the reminder triggers strictly within (now, now+24h]
func (r *Reminder) IsUpcoming(now time.Time) bool {
	if r.Status != ReminderStatusActive {
		return false
	}
	return r.ReminderTime.After(now) && !r.ReminderTime.After(now.Add(24*time.Hour))
}

// NeedsDispatch reports whether a due reminder has not yet been notified for
// the current due crossing. Once dispatched, LastNotifiedAt moves past DueAt
// and repeated sweep ticks stay quiet until a snooze or recurrence resets it.
func (r *Reminder) NeedsDispatch(now time.Time) bool {
	if !r.IsDueNow(now) {
		return false
	}
	return r.LastNotifiedAt == nil || r.LastNotifiedAt.Before(r.DueAt())
}
