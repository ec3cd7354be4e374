package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vhvplatform/go-crm-automation-service/internal/alerts"
	"github.com/vhvplatform/go-crm-automation-service/internal/datasource"
	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
	"github.com/vhvplatform/go-crm-automation-service/internal/metrics"
	"github.com/vhvplatform/go-crm-automation-service/internal/repository"
	apperrors "github.com/vhvplatform/go-crm-automation-service/internal/shared/errors"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/logger"
)

// AlertService derives staleness alerts from CRM data and manages their
// dismiss/snooze lifecycle. Alerts are never stored; only suppression
// markers are, keyed by the deterministic alert id.
type AlertService struct {
	source          datasource.Source
	configRepo      *repository.ConfigRepository
	suppressionRepo *repository.SuppressionRepository
	outboxRepo      *repository.OutboxRepository
	set             *alerts.Set
	log             *logger.Logger
}

// NewAlertService creates a new alert service
func NewAlertService(
	source datasource.Source,
	configRepo *repository.ConfigRepository,
	suppressionRepo *repository.SuppressionRepository,
	outboxRepo *repository.OutboxRepository,
	log *logger.Logger,
) *AlertService {
	return &AlertService{
		source:          source,
		configRepo:      configRepo,
		suppressionRepo: suppressionRepo,
		outboxRepo:      outboxRepo,
		set:             alerts.NewSet(),
		log:             log,
	}
}

// Refresh regenerates the alert set from current CRM data, applying stored
// suppressions so prior dismissals and live snoozes survive the rebuild
func (s *AlertService) Refresh(ctx context.Context) error {
	now := time.Now()

	configs, err := s.configRepo.FindAll(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to load automation configs", err)
	}

	leads, err := s.source.Leads(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to load leads", err)
	}

	proposals, err := s.source.Proposals(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to load proposals", err)
	}

	generated := alerts.Generate(configs, leads, proposals, now)

	suppressions, err := s.suppressionRepo.FindAll(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to load alert suppressions", err)
	}

	visible := generated[:0]
	for _, alert := range generated {
		suppressed := false
		for _, marker := range suppressions {
			if marker.Suppresses(alert, now) {
				suppressed = true
				break
			}
		}
		if !suppressed {
			visible = append(visible, alert)
		}
	}

	s.set.Replace(visible)
	metrics.AlertsActive.Set(float64(len(visible)))
	s.log.Debug("Alert set refreshed", "generated", len(generated), "visible", len(visible))

	// Expired snoozes are dead weight once the alert is visible again
	if _, err := s.suppressionRepo.DeleteExpired(ctx, now); err != nil {
		s.log.Warn("Failed to clean up expired snoozes", "error", err)
	}

	return nil
}

// List returns the alerts visible to the actor, optionally filtered
func (s *AlertService) List(actor domain.Actor, req *domain.ListAlertsRequest) []*domain.AutomationAlert {
	now := time.Now()

	visible := s.set.VisibleTo(actor, now)
	if req == nil {
		return visible
	}

	out := make([]*domain.AutomationAlert, 0, len(visible))
	for _, a := range visible {
		if req.Type != "" && a.Type != domain.AlertType(req.Type) {
			continue
		}
		if req.AssigneeID != "" && a.AssigneeID != req.AssigneeID {
			continue
		}
		if req.Urgent && a.Priority != domain.PriorityUrgent {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Dismiss hides an alert until new activity occurs on the underlying
// lead or proposal. Dismissing an unknown alert is not an error.
func (s *AlertService) Dismiss(ctx context.Context, actor domain.Actor, alertID string) error {
	now := time.Now()

	alert := s.set.Get(alertID, now)
	if alert == nil {
		s.log.Debug("Dismiss of absent alert ignored", "alert_id", alertID)
		return nil
	}
	if !actor.Role.Elevated() && alert.AssigneeID != actor.ID {
		return apperrors.NewForbiddenError("alert belongs to another assignee", nil)
	}

	marker := &domain.AlertSuppression{
		AlertID:      alertID,
		Reason:       domain.SuppressionDismissed,
		LastActivity: alert.LastActivity,
		ActorID:      actor.ID,
	}
	if err := s.suppressionRepo.Upsert(ctx, marker); err != nil {
		return apperrors.NewInternalError("failed to persist dismissal", err)
	}

	s.set.Dismiss(alertID)
	metrics.AlertsDismissed.Inc()

	s.recordEvent(ctx, "alert", alertID, domain.EventAlertDismissed, marker)
	s.log.Info("Alert dismissed", "alert_id", alertID, "actor", actor.ID)
	return nil
}

// Snooze hides an alert for the given number of hours
func (s *AlertService) Snooze(ctx context.Context, actor domain.Actor, alertID string, hours int) error {
	if hours <= 0 {
		return apperrors.NewValidationError("snooze hours must be positive", nil)
	}

	now := time.Now()
	alert := s.set.Get(alertID, now)
	if alert == nil {
		s.log.Debug("Snooze of absent alert ignored", "alert_id", alertID)
		return nil
	}
	if !actor.Role.Elevated() && alert.AssigneeID != actor.ID {
		return apperrors.NewForbiddenError("alert belongs to another assignee", nil)
	}

	until := now.Add(time.Duration(hours) * time.Hour)
	marker := &domain.AlertSuppression{
		AlertID:         alertID,
		Reason:          domain.SuppressionSnoozed,
		LastActivity:    alert.LastActivity,
		SuppressedUntil: &until,
		ActorID:         actor.ID,
	}
	if err := s.suppressionRepo.Upsert(ctx, marker); err != nil {
		return apperrors.NewInternalError("failed to persist snooze", err)
	}

	s.set.Snooze(alertID, hours, now)
	metrics.AlertsSnoozed.Inc()

	s.recordEvent(ctx, "alert", alertID, domain.EventAlertSnoozed, marker)
	s.log.Info("Alert snoozed", "alert_id", alertID, "hours", hours, "actor", actor.ID)
	return nil
}

// ListConfigs returns all automation configs
func (s *AlertService) ListConfigs(ctx context.Context) ([]*domain.AutomationConfig, error) {
	configs, err := s.configRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load automation configs", err)
	}
	return configs, nil
}

// GetConfig returns the config for one alert type
func (s *AlertService) GetConfig(ctx context.Context, alertType domain.AlertType) (*domain.AutomationConfig, error) {
	if alertType != domain.AlertTypeFollowUp && alertType != domain.AlertTypeProposal {
		return nil, apperrors.NewValidationError("unknown alert type", nil)
	}

	cfg, err := s.configRepo.FindByType(ctx, alertType)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFoundError("no config for alert type", err)
		}
		return nil, apperrors.NewInternalError("failed to load automation config", err)
	}
	return cfg, nil
}

// UpsertConfig creates or updates the threshold config for one alert type.
// Only elevated roles may change configs; the alert set is rebuilt so the
// new threshold takes effect immediately.
func (s *AlertService) UpsertConfig(ctx context.Context, actor domain.Actor, alertType domain.AlertType, req *domain.UpsertConfigRequest) (*domain.AutomationConfig, error) {
	if !actor.Role.Elevated() {
		return nil, apperrors.NewForbiddenError("only admins and managers may change automation configs", nil)
	}
	if alertType != domain.AlertTypeFollowUp && alertType != domain.AlertTypeProposal {
		return nil, apperrors.NewValidationError("unknown alert type", nil)
	}
	if req.DaysThreshold < 1 {
		return nil, apperrors.NewValidationError("days threshold must be at least 1", nil)
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	cfg, err := s.configRepo.UpsertByType(ctx, alertType, req.DaysThreshold, enabled, actor.ID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to save automation config", err)
	}

	s.recordEvent(ctx, "automation_config", string(alertType), domain.EventConfigUpdated, cfg)

	if err := s.Refresh(ctx); err != nil {
		s.log.Warn("Alert refresh after config change failed", "error", err)
	}

	return cfg, nil
}

// Stats summarizes the visible alert set for the dashboard endpoint
func (s *AlertService) Stats(actor domain.Actor) map[string]int {
	now := time.Now()
	visible := s.set.VisibleTo(actor, now)

	stats := map[string]int{
		"total":    len(visible),
		"urgent":   0,
		"followUp": 0,
		"proposal": 0,
	}
	for _, a := range visible {
		if a.Priority == domain.PriorityUrgent {
			stats["urgent"]++
		}
		switch a.Type {
		case domain.AlertTypeFollowUp:
			stats["followUp"]++
		case domain.AlertTypeProposal:
			stats["proposal"]++
		}
	}
	return stats
}

// recordEvent writes a lifecycle event to the outbox, logging on failure
// rather than failing the user action
func (s *AlertService) recordEvent(ctx context.Context, aggregateType, aggregateID string, eventType domain.OutboxEventType, payload interface{}) {
	event := &domain.OutboxEvent{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		s.log.Warn("Failed to record outbox event", "event_type", eventType, "error", err)
	}
}
