package service

import (
	"testing"

	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
	apperrors "github.com/vhvplatform/go-crm-automation-service/internal/shared/errors"
)

func TestParseMethods(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		want    []domain.NotificationMethod
		wantErr bool
	}{
		{
			name: "all channels",
			raw:  []string{"inapp", "email", "whatsapp"},
			want: []domain.NotificationMethod{domain.MethodInApp, domain.MethodEmail, domain.MethodWhatsApp},
		},
		{
			name: "duplicates collapsed",
			raw:  []string{"email", "email", "inapp"},
			want: []domain.NotificationMethod{domain.MethodEmail, domain.MethodInApp},
		},
		{
			name:    "empty list rejected",
			raw:     []string{},
			wantErr: true,
		},
		{
			name:    "unknown method rejected",
			raw:     []string{"email", "carrier-pigeon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMethods(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseMethods() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !apperrors.IsCode(err, "VALIDATION_ERROR") {
					t.Errorf("Expected VALIDATION_ERROR, got %v", err)
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseMethods() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parseMethods()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPriorityOrDefault(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.Priority
	}{
		{"low", domain.PriorityLow},
		{"urgent", domain.PriorityUrgent},
		{"", domain.PriorityMedium},
		{"critical", domain.PriorityMedium},
	}

	for _, tt := range tests {
		if got := priorityOrDefault(tt.raw); got != tt.want {
			t.Errorf("priorityOrDefault(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestRecurrenceOrDefault(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.Recurrence
	}{
		{"daily", domain.RecurrenceDaily},
		{"weekly", domain.RecurrenceWeekly},
		{"monthly", domain.RecurrenceMonthly},
		{"", domain.RecurrenceNone},
		{"fortnightly", domain.RecurrenceNone},
	}

	for _, tt := range tests {
		if got := recurrenceOrDefault(tt.raw); got != tt.want {
			t.Errorf("recurrenceOrDefault(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestReminderTypeOrDefault(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.ReminderType
	}{
		{"meeting", domain.ReminderTypeMeeting},
		{"task", domain.ReminderTypeTask},
		{"", domain.ReminderTypeCustom},
		{"bogus", domain.ReminderTypeCustom},
	}

	for _, tt := range tests {
		if got := reminderTypeOrDefault(tt.raw); got != tt.want {
			t.Errorf("reminderTypeOrDefault(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
