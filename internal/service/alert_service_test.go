package service

import (
	"context"
	"testing"
	"time"

	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
	apperrors "github.com/vhvplatform/go-crm-automation-service/internal/shared/errors"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/logger"
)

func newTestAlertService() *AlertService {
	return NewAlertService(nil, nil, nil, nil, logger.NewLogger())
}

func TestAlertServiceDismissAbsentAlert(t *testing.T) {
	svc := newTestAlertService()
	actor := domain.Actor{ID: "user-1", Role: domain.RoleSales}

	// Dismissing an id that is not in the current set is a no-op
	if err := svc.Dismiss(context.Background(), actor, "followup-gone"); err != nil {
		t.Fatalf("Dismiss of absent alert returned error: %v", err)
	}

	// Twice in a row stays a no-op
	if err := svc.Dismiss(context.Background(), actor, "followup-gone"); err != nil {
		t.Fatalf("Repeated dismiss of absent alert returned error: %v", err)
	}
}

func TestAlertServiceSnoozeAbsentAlert(t *testing.T) {
	svc := newTestAlertService()
	actor := domain.Actor{ID: "user-1", Role: domain.RoleSales}

	if err := svc.Snooze(context.Background(), actor, "proposal-gone", 4); err != nil {
		t.Fatalf("Snooze of absent alert returned error: %v", err)
	}
}

func TestAlertServiceSnoozeRejectsInvalidHours(t *testing.T) {
	svc := newTestAlertService()
	actor := domain.Actor{ID: "user-1", Role: domain.RoleSales}

	for _, hours := range []int{0, -3} {
		err := svc.Snooze(context.Background(), actor, "followup-lead-1", hours)
		if !apperrors.IsCode(err, apperrors.CodeValidation) {
			t.Errorf("Snooze(%d hours) = %v, want validation error", hours, err)
		}
	}
}

func TestAlertServiceUpsertConfigValidation(t *testing.T) {
	svc := newTestAlertService()
	admin := domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}
	sales := domain.Actor{ID: "user-1", Role: domain.RoleSales}

	_, err := svc.UpsertConfig(context.Background(), sales, domain.AlertTypeFollowUp,
		&domain.UpsertConfigRequest{DaysThreshold: 3})
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("Sales config change = %v, want forbidden error", err)
	}

	_, err = svc.UpsertConfig(context.Background(), admin, domain.AlertType("bogus"),
		&domain.UpsertConfigRequest{DaysThreshold: 3})
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("Unknown alert type = %v, want validation error", err)
	}

	_, err = svc.UpsertConfig(context.Background(), admin, domain.AlertTypeFollowUp,
		&domain.UpsertConfigRequest{DaysThreshold: 0})
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("Zero threshold = %v, want validation error", err)
	}
}

func TestAlertServiceDismissOtherAssigneeForbidden(t *testing.T) {
	svc := newTestAlertService()
	now := time.Now()
	svc.set.Replace([]*domain.AutomationAlert{
		{
			ID:           domain.FollowUpAlertID("lead-1"),
			Type:         domain.AlertTypeFollowUp,
			EntityID:     "lead-1",
			AssigneeID:   "user-2",
			LastActivity: now.Add(-96 * time.Hour),
			GeneratedAt:  now,
		},
	})

	sales := domain.Actor{ID: "user-1", Role: domain.RoleSales}
	err := svc.Dismiss(context.Background(), sales, domain.FollowUpAlertID("lead-1"))
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("Dismiss of another assignee's alert = %v, want forbidden error", err)
	}
}
