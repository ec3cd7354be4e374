package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DispatchStatus represents the delivery status of a dispatch record
type DispatchStatus string

const (
	DispatchStatusPending DispatchStatus = "pending"
	DispatchStatusSent    DispatchStatus = "sent"
	DispatchStatusFailed  DispatchStatus = "failed"
)

// DispatchRecord is one per-channel delivery attempt for a due reminder.
// Records with channel "inapp" double as the user's in-app notification feed.
type DispatchRecord struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID    string             `json:"owner_id" bson:"owner_id"`
	ReminderID string             `json:"reminder_id" bson:"reminder_id"`
	Channel    NotificationMethod `json:"channel" bson:"channel"`
	Status     DispatchStatus     `json:"status" bson:"status"`
	Recipient  string             `json:"recipient,omitempty" bson:"recipient,omitempty"`
	Subject    string             `json:"subject,omitempty" bson:"subject,omitempty"`
	Body       string             `json:"body,omitempty" bson:"body,omitempty"`
	Error      string             `json:"error,omitempty" bson:"error,omitempty"`
	RetryCount int                `json:"retry_count" bson:"retry_count"`
	ReadAt     *time.Time         `json:"read_at,omitempty" bson:"read_at,omitempty"`
	SentAt     *time.Time         `json:"sent_at,omitempty" bson:"sent_at,omitempty"`
	DeletedAt  *time.Time         `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

// FailedDispatch is a dead-letter entry for a dispatch that failed after all retries
type FailedDispatch struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OriginalID primitive.ObjectID `json:"original_id" bson:"original_id"`
	OwnerID    string             `json:"owner_id" bson:"owner_id"`
	ReminderID string             `json:"reminder_id" bson:"reminder_id"`
	Channel    NotificationMethod `json:"channel" bson:"channel"`
	Recipient  string             `json:"recipient,omitempty" bson:"recipient,omitempty"`
	Subject    string             `json:"subject,omitempty" bson:"subject,omitempty"`
	Body       string             `json:"body,omitempty" bson:"body,omitempty"`
	Error      string             `json:"error" bson:"error"`
	FailedAt   time.Time          `json:"failed_at" bson:"failed_at"`
	RetryCount int                `json:"retry_count" bson:"retry_count"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

// MessageTemplate is a reusable subject/body pair with {{variable}} placeholders
// used by the email channel
type MessageTemplate struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Subject   string             `json:"subject" bson:"subject"`
	Body      string             `json:"body" bson:"body"`
	IsHTML    bool               `json:"is_html" bson:"is_html"`
	Variables []string           `json:"variables,omitempty" bson:"variables,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// NotificationPreferences holds a user's channel opt-outs and quiet hours.
// The in-app channel ignores quiet hours, only email and WhatsApp defer.
type NotificationPreferences struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID          string             `json:"user_id" bson:"user_id"`
	InAppEnabled    bool               `json:"inapp_enabled" bson:"inapp_enabled"`
	EmailEnabled    bool               `json:"email_enabled" bson:"email_enabled"`
	WhatsAppEnabled bool               `json:"whatsapp_enabled" bson:"whatsapp_enabled"`
	EmailAddress    string             `json:"email_address,omitempty" bson:"email_address,omitempty"`
	WhatsAppNumber  string             `json:"whatsapp_number,omitempty" bson:"whatsapp_number,omitempty"`
	QuietHoursStart string             `json:"quiet_hours_start,omitempty" bson:"quiet_hours_start,omitempty"` // "22:00"
	QuietHoursEnd   string             `json:"quiet_hours_end,omitempty" bson:"quiet_hours_end,omitempty"`     // "08:00"
	Timezone        string             `json:"timezone" bson:"timezone"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// AllowsChannel reports whether the user has the channel enabled
func (p *NotificationPreferences) AllowsChannel(method NotificationMethod) bool {
	switch method {
	case MethodInApp:
		return p.InAppEnabled
	case MethodEmail:
		return p.EmailEnabled
	case MethodWhatsApp:
		return p.WhatsAppEnabled
	}
	return false
}

// InQuietHours reports whether now falls inside the user's quiet window.
// An unset or malformed window means no quiet hours.
func (p *NotificationPreferences) InQuietHours(now time.Time) bool {
	if p.QuietHoursStart == "" || p.QuietHoursEnd == "" {
		return false
	}

	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)

	start, err1 := time.ParseInLocation("15:04", p.QuietHoursStart, loc)
	end, err2 := time.ParseInLocation("15:04", p.QuietHoursEnd, loc)
	if err1 != nil || err2 != nil {
		return false
	}

	minutes := local.Hour()*60 + local.Minute()
	startMin := start.Hour()*60 + start.Minute()
	endMin := end.Hour()*60 + end.Minute()

	if startMin <= endMin {
		return minutes >= startMin && minutes < endMin
	}
	// Window spans midnight, e.g. 22:00 - 08:00
	return minutes >= startMin || minutes < endMin
}

// EmailBounce represents an email bounce record from a provider webhook
type EmailBounce struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	Type      string             `json:"type" bson:"type"` // hard, soft, complaint
	Reason    string             `json:"reason" bson:"reason"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
