package alerts

import (
	"testing"
	"time"

	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
)

func testAlerts() []*domain.AutomationAlert {
	return []*domain.AutomationAlert{
		{ID: "followup-l1", Type: domain.AlertTypeFollowUp, AssigneeID: "user-1", Priority: domain.PriorityUrgent},
		{ID: "followup-l2", Type: domain.AlertTypeFollowUp, AssigneeID: "user-2", Priority: domain.PriorityMedium},
		{ID: "proposal-p1", Type: domain.AlertTypeProposal, AssigneeID: "user-1", Priority: domain.PriorityHigh},
	}
}

// TestSet_DismissIdempotent verifies dismissing twice equals dismissing once,
// and that unknown ids are a no-op
func TestSet_DismissIdempotent(t *testing.T) {
	s := NewSet()
	s.Replace(testAlerts())

	s.Dismiss("followup-l1")
	after1 := s.Len(now)

	s.Dismiss("followup-l1")
	after2 := s.Len(now)

	if after1 != 2 || after2 != 2 {
		t.Errorf("Len after dismiss = %d, %d, want 2, 2", after1, after2)
	}

	s.Dismiss("no-such-alert")
	if s.Len(now) != 2 {
		t.Errorf("dismissing unknown id changed the set")
	}
}

// TestSet_Snooze verifies snoozed alerts hide until expiry
func TestSet_Snooze(t *testing.T) {
	s := NewSet()
	s.Replace(testAlerts())

	s.Snooze("proposal-p1", 2, now)

	if got := s.Len(now); got != 2 {
		t.Errorf("Len during snooze = %d, want 2", got)
	}
	if got := s.Len(now.Add(3 * time.Hour)); got != 3 {
		t.Errorf("Len after snooze expiry = %d, want 3", got)
	}
}

// TestSet_SnoozeRejectsNonPositive verifies invalid durations are ignored
func TestSet_SnoozeRejectsNonPositive(t *testing.T) {
	s := NewSet()
	s.Replace(testAlerts())

	s.Snooze("followup-l1", 0, now)
	s.Snooze("followup-l1", -5, now)

	if got := s.Len(now); got != 3 {
		t.Errorf("Len = %d, want 3 (non-positive snooze should be a no-op)", got)
	}
}

// TestSet_Filters verifies the pure read filters
func TestSet_Filters(t *testing.T) {
	s := NewSet()
	s.Replace(testAlerts())

	if got := len(s.ByType(domain.AlertTypeFollowUp, now)); got != 2 {
		t.Errorf("ByType(followUp) = %d, want 2", got)
	}
	if got := len(s.ByAssignee("user-1", now)); got != 2 {
		t.Errorf("ByAssignee(user-1) = %d, want 2", got)
	}
	if got := len(s.UrgentOnly(now)); got != 1 {
		t.Errorf("UrgentOnly() = %d, want 1", got)
	}
}

// TestSet_VisibleTo verifies role-based visibility
func TestSet_VisibleTo(t *testing.T) {
	s := NewSet()
	s.Replace(testAlerts())

	tests := []struct {
		name  string
		actor domain.Actor
		want  int
	}{
		{"admin sees all", domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}, 3},
		{"manager sees all", domain.Actor{ID: "mgr-1", Role: domain.RoleManager}, 3},
		{"sales sees own", domain.Actor{ID: "user-1", Role: domain.RoleSales}, 2},
		{"sales with none", domain.Actor{ID: "user-9", Role: domain.RoleSales}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(s.VisibleTo(tt.actor, now)); got != tt.want {
				t.Errorf("VisibleTo() = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestSet_ReplaceClearsSessionState verifies a refresh resets local dismissals
func TestSet_ReplaceClearsSessionState(t *testing.T) {
	s := NewSet()
	s.Replace(testAlerts())
	s.Dismiss("followup-l1")

	s.Replace(testAlerts())
	if got := s.Len(now); got != 3 {
		t.Errorf("Len after Replace = %d, want 3", got)
	}
}

// TestSet_Get verifies lookup honors visibility
func TestSet_Get(t *testing.T) {
	s := NewSet()
	s.Replace(testAlerts())

	if got := s.Get("followup-l1", now); got == nil {
		t.Fatal("Get() returned nil for a visible alert")
	}

	s.Dismiss("followup-l1")
	if got := s.Get("followup-l1", now); got != nil {
		t.Error("Get() returned a dismissed alert")
	}
}
