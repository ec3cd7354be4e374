package domain

import "time"

// CreateReminderRequest represents a request to create a reminder
type CreateReminderRequest struct {
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description"`
	ReminderTime time.Time  `json:"reminder_time" binding:"required"`
	Type         string     `json:"type"`
	Priority     string     `json:"priority"`
	Recurring    string     `json:"recurring"`
	Methods      []string   `json:"notification_methods" binding:"required,min=1"`
	LeadID       string     `json:"lead_id"`
	TaskID       string     `json:"task_id"`
}

// UpdateReminderRequest represents a partial update to a reminder.
// Nil fields are left untouched.
type UpdateReminderRequest struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	ReminderTime *time.Time `json:"reminder_time,omitempty"`
	Type         *string    `json:"type,omitempty"`
	Priority     *string    `json:"priority,omitempty"`
	Recurring    *string    `json:"recurring,omitempty"`
	Methods      []string   `json:"notification_methods,omitempty"`
}

// SnoozeReminderRequest represents a request to snooze a reminder
type SnoozeReminderRequest struct {
	Minutes int `json:"minutes" binding:"required,gt=0"`
}

// SnoozeAlertRequest represents a request to snooze an alert
type SnoozeAlertRequest struct {
	Hours int `json:"hours" binding:"required,gt=0"`
}

// UpsertConfigRequest represents a request to create or update an automation
// config. An omitted enabled flag means enabled.
type UpsertConfigRequest struct {
	DaysThreshold int   `json:"days_threshold" binding:"required,min=1"`
	Enabled       *bool `json:"enabled"`
}

// ListAlertsRequest filters the current alert set
type ListAlertsRequest struct {
	Type       string `form:"type"`
	AssigneeID string `form:"assignee_id"`
	Urgent     bool   `form:"urgent"`
}

// ListRemindersRequest paginates a user's reminders
type ListRemindersRequest struct {
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// UpdatePreferencesRequest represents a preferences upsert
type UpdatePreferencesRequest struct {
	InAppEnabled    *bool  `json:"inapp_enabled"`
	EmailEnabled    *bool  `json:"email_enabled"`
	WhatsAppEnabled *bool  `json:"whatsapp_enabled"`
	EmailAddress    string `json:"email_address"`
	WhatsAppNumber  string `json:"whatsapp_number"`
	QuietHoursStart string `json:"quiet_hours_start"`
	QuietHoursEnd   string `json:"quiet_hours_end"`
	Timezone        string `json:"timezone"`
}
