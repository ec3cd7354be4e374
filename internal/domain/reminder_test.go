package domain

import (
	"testing"
	"time"
)

func TestReminderIsDueNow(t *testing.T) {
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	snoozeUntil := base.Add(30 * time.Minute)

	tests := []struct {
		name   string
		status ReminderStatus
		snooze *time.Time
		now    time.Time
		want   bool
	}{
		{"active before trigger", ReminderStatusActive, nil, base.Add(-time.Minute), false},
		{"active at trigger", ReminderStatusActive, nil, base, true},
		{"active after trigger", ReminderStatusActive, nil, base.Add(time.Hour), true},
		{"snoozed before expiry", ReminderStatusSnoozed, &snoozeUntil, base.Add(10 * time.Minute), false},
		{"snoozed at expiry", ReminderStatusSnoozed, &snoozeUntil, snoozeUntil, true},
		{"snoozed after expiry", ReminderStatusSnoozed, &snoozeUntil, snoozeUntil.Add(time.Minute), true},
		{"snoozed without expiry never fires", ReminderStatusSnoozed, nil, base.Add(time.Hour), false},
		{"completed never fires", ReminderStatusCompleted, nil, base.Add(time.Hour), false},
		{"dismissed never fires", ReminderStatusDismissed, nil, base.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Reminder{
				Status:       tt.status,
				ReminderTime: base,
				SnoozeUntil:  tt.snooze,
			}
			if got := r.IsDueNow(tt.now); got != tt.want {
				t.Errorf("IsDueNow() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReminderIsUpcoming(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		status  ReminderStatus
		trigger time.Time
		want    bool
	}{
		{"within the next day", ReminderStatusActive, now.Add(2 * time.Hour), true},
		{"exactly 24h out", ReminderStatusActive, now.Add(24 * time.Hour), true},
		{"beyond 24h", ReminderStatusActive, now.Add(24*time.Hour + time.Second), false},
		{"at now is not upcoming", ReminderStatusActive, now, false},
		{"already past", ReminderStatusActive, now.Add(-time.Minute), false},
		{"snoozed excluded", ReminderStatusSnoozed, now.Add(2 * time.Hour), false},
		{"completed excluded", ReminderStatusCompleted, now.Add(2 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Reminder{Status: tt.status, ReminderTime: tt.trigger}
			if got := r.IsUpcoming(now); got != tt.want {
				t.Errorf("IsUpcoming() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestReminderNeedsDispatch covers the de-dup stamp: a reminder fires once
// per due crossing and stays quiet while it remains due.
func TestReminderNeedsDispatch(t *testing.T) {
	trigger := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	afterTrigger := trigger.Add(5 * time.Minute)

	r := &Reminder{
		Status:       ReminderStatusActive,
		ReminderTime: trigger,
	}

	if r.NeedsDispatch(trigger.Add(-time.Minute)) {
		t.Error("Reminder should not dispatch before its trigger time")
	}
	if !r.NeedsDispatch(trigger) {
		t.Error("Reminder should dispatch at its trigger time")
	}

	// Once notified, repeated sweeps over the same crossing stay quiet
	r.LastNotifiedAt = &afterTrigger
	if r.NeedsDispatch(afterTrigger.Add(time.Hour)) {
		t.Error("Reminder should not re-dispatch while still due")
	}

	// A snooze resets the stamp; expiry is a fresh crossing
	snoozeUntil := afterTrigger.Add(time.Hour)
	r.Status = ReminderStatusSnoozed
	r.SnoozeUntil = &snoozeUntil
	r.LastNotifiedAt = nil

	if r.NeedsDispatch(snoozeUntil.Add(-time.Minute)) {
		t.Error("Snoozed reminder should not dispatch before its snooze expires")
	}
	if !r.NeedsDispatch(snoozeUntil) {
		t.Error("Snoozed reminder should dispatch once its snooze expires")
	}

	// Terminal states never dispatch
	r.Status = ReminderStatusCompleted
	if r.NeedsDispatch(snoozeUntil.Add(time.Hour)) {
		t.Error("Completed reminder should never dispatch")
	}
}
