package alerts

import (
	"sync"
	"time"

	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
)

// Set is the working set of live alerts produced by the last generation.
// Dismiss and Snooze mutate visibility only; the underlying alerts are
// recomputed on every refresh.
type Set struct {
	mu       sync.RWMutex
	alerts   []*domain.AutomationAlert
	hidden   map[string]bool
	snoozeAt map[string]time.Time
}

// NewSet creates an empty alert set
func NewSet() *Set {
	return &Set{
		hidden:   make(map[string]bool),
		snoozeAt: make(map[string]time.Time),
	}
}

// Replace swaps in a freshly generated alert list and clears session-local
// visibility state. Durable suppression is applied by the caller before
// Replace, so anything hidden across refreshes never reaches the set.
func (s *Set) Replace(alerts []*domain.AutomationAlert) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerts = alerts
	s.hidden = make(map[string]bool)
	s.snoozeAt = make(map[string]time.Time)
}

// Dismiss removes an alert from the visible set. Dismissing an unknown or
// already dismissed id is a no-op.
func (s *Set) Dismiss(alertID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hidden[alertID] = true
}

// Snooze hides an alert for the given number of hours. Non-positive
// durations are ignored.
func (s *Set) Snooze(alertID string, durationHours int, now time.Time) {
	if durationHours <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snoozeAt[alertID] = now.Add(time.Duration(durationHours) * time.Hour)
}

// visible reports whether an alert is currently shown
func (s *Set) visible(a *domain.AutomationAlert, now time.Time) bool {
	if s.hidden[a.ID] {
		return false
	}
	if until, ok := s.snoozeAt[a.ID]; ok && now.Before(until) {
		return false
	}
	return true
}

// All returns the visible alerts
func (s *Set) All(now time.Time) []*domain.AutomationAlert {
	return s.filter(now, func(*domain.AutomationAlert) bool { return true })
}

// ByType returns visible alerts of one type
func (s *Set) ByType(alertType domain.AlertType, now time.Time) []*domain.AutomationAlert {
	return s.filter(now, func(a *domain.AutomationAlert) bool {
		return a.Type == alertType
	})
}

// ByAssignee returns visible alerts assigned to one user
func (s *Set) ByAssignee(userID string, now time.Time) []*domain.AutomationAlert {
	return s.filter(now, func(a *domain.AutomationAlert) bool {
		return a.AssigneeID == userID
	})
}

// UrgentOnly returns visible urgent alerts
func (s *Set) UrgentOnly(now time.Time) []*domain.AutomationAlert {
	return s.filter(now, func(a *domain.AutomationAlert) bool {
		return a.Priority == domain.PriorityUrgent
	})
}

// VisibleTo applies role-based visibility: restricted roles see only their
// own assignee's alerts, elevated roles see everything
func (s *Set) VisibleTo(actor domain.Actor, now time.Time) []*domain.AutomationAlert {
	if actor.Role.Elevated() {
		return s.All(now)
	}
	return s.ByAssignee(actor.ID, now)
}

// Get returns a visible alert by id, or nil
func (s *Set) Get(alertID string, now time.Time) *domain.AutomationAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.alerts {
		if a.ID == alertID && s.visible(a, now) {
			return a
		}
	}
	return nil
}

// Len returns the number of visible alerts
func (s *Set) Len(now time.Time) int {
	return len(s.All(now))
}

func (s *Set) filter(now time.Time, keep func(*domain.AutomationAlert) bool) []*domain.AutomationAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.AutomationAlert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if s.visible(a, now) && keep(a) {
			out = append(out, a)
		}
	}
	return out
}
