package service

import (
	"context"
	"time"

	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
	"github.com/vhvplatform/go-crm-automation-service/internal/repository"
	apperrors "github.com/vhvplatform/go-crm-automation-service/internal/shared/errors"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/logger"
)

// ReminderService manages user-authored reminders and their lifecycle
type ReminderService struct {
	reminderRepo *repository.ReminderRepository
	crmRepo      *repository.CRMRepository
	outboxRepo   *repository.OutboxRepository
	log          *logger.Logger
}

// NewReminderService creates a new reminder service
func NewReminderService(
	reminderRepo *repository.ReminderRepository,
	crmRepo *repository.CRMRepository,
	outboxRepo *repository.OutboxRepository,
	log *logger.Logger,
) *ReminderService {
	return &ReminderService{
		reminderRepo: reminderRepo,
		crmRepo:      crmRepo,
		outboxRepo:   outboxRepo,
		log:          log,
	}
}

// Create creates a reminder owned by the actor. A linked lead, when present,
// is resolved once and its display fields denormalized onto the reminder.
func (s *ReminderService) Create(ctx context.Context, actor domain.Actor, req *domain.CreateReminderRequest) (*domain.Reminder, error) {
	methods, err := parseMethods(req.Methods)
	if err != nil {
		return nil, err
	}

	reminder := &domain.Reminder{
		OwnerID:      actor.ID,
		Title:        req.Title,
		Description:  req.Description,
		ReminderTime: req.ReminderTime,
		Type:         reminderTypeOrDefault(req.Type),
		Priority:     priorityOrDefault(req.Priority),
		Status:       domain.ReminderStatusActive,
		Recurring:    recurrenceOrDefault(req.Recurring),
		Methods:      methods,
		LeadID:       req.LeadID,
		TaskID:       req.TaskID,
	}

	if req.LeadID != "" && s.crmRepo != nil {
		if lead, err := s.crmRepo.FindLeadByID(ctx, req.LeadID); err == nil {
			reminder.LeadCompanyName = lead.CompanyName
			reminder.LeadContactName = lead.ContactName
		} else {
			s.log.Warn("Linked lead not found, keeping bare reference", "lead_id", req.LeadID)
		}
	}

	if err := s.reminderRepo.Create(ctx, reminder); err != nil {
		return nil, apperrors.NewInternalError("failed to create reminder", err)
	}

	s.recordEvent(ctx, reminder, domain.EventReminderCreated)
	s.log.Info("Reminder created", "id", reminder.ID.Hex(), "owner", actor.ID)
	return reminder, nil
}

// Get returns a reminder visible to the actor
func (s *ReminderService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Reminder, error) {
	reminder, err := s.reminderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewNotFoundError("reminder not found", err)
	}
	if err := s.authorize(actor, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

// List returns the actor's reminders with pagination
func (s *ReminderService) List(ctx context.Context, actor domain.Actor, req *domain.ListRemindersRequest) ([]*domain.Reminder, int64, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	status := domain.ReminderStatus(req.Status)
	reminders, total, err := s.reminderRepo.FindByOwner(ctx, actor.ID, status, req.Page, req.PageSize)
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to list reminders", err)
	}
	return reminders, total, nil
}

// Upcoming returns the actor's reminders triggering within the next 24 hours
func (s *ReminderService) Upcoming(ctx context.Context, actor domain.Actor) ([]*domain.Reminder, error) {
	reminders, err := s.reminderRepo.FindUpcoming(ctx, actor.ID, time.Now())
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list upcoming reminders", err)
	}
	return reminders, nil
}

// Update applies a partial update to a non-terminal reminder. Moving the
// trigger time clears the notified stamp so the new time fires again.
func (s *ReminderService) Update(ctx context.Context, actor domain.Actor, id string, req *domain.UpdateReminderRequest) (*domain.Reminder, error) {
	reminder, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if reminder.Status.IsTerminal() {
		return nil, apperrors.NewValidationError("completed and dismissed reminders cannot be updated", nil)
	}

	if req.Title != nil {
		reminder.Title = *req.Title
	}
	if req.Description != nil {
		reminder.Description = *req.Description
	}
	if req.ReminderTime != nil {
		reminder.ReminderTime = *req.ReminderTime
		reminder.LastNotifiedAt = nil
		if reminder.Status == domain.ReminderStatusSnoozed {
			reminder.Status = domain.ReminderStatusActive
			reminder.SnoozeUntil = nil
		}
	}
	if req.Type != nil {
		reminder.Type = reminderTypeOrDefault(*req.Type)
	}
	if req.Priority != nil {
		reminder.Priority = priorityOrDefault(*req.Priority)
	}
	if req.Recurring != nil {
		reminder.Recurring = recurrenceOrDefault(*req.Recurring)
	}
	if req.Methods != nil {
		methods, err := parseMethods(req.Methods)
		if err != nil {
			return nil, err
		}
		reminder.Methods = methods
	}

	if err := s.reminderRepo.Update(ctx, reminder); err != nil {
		return nil, apperrors.NewInternalError("failed to update reminder", err)
	}

	s.recordEvent(ctx, reminder, domain.EventReminderUpdated)
	return reminder, nil
}

// getForTransition loads a reminder for a lifecycle action. An unknown id
// yields no reminder and no error: callers treat the action as a no-op
// instead of forcing an existence check first.
func (s *ReminderService) getForTransition(ctx context.Context, actor domain.Actor, id string) (*domain.Reminder, error) {
	reminder, err := s.Get(ctx, actor, id)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return reminder, nil
}

// Snooze defers a reminder by the given number of minutes from now and
// resets the notified stamp so the snooze expiry triggers a fresh dispatch
func (s *ReminderService) Snooze(ctx context.Context, actor domain.Actor, id string, minutes int) (*domain.Reminder, error) {
	if minutes <= 0 {
		return nil, apperrors.NewValidationError("snooze minutes must be positive", nil)
	}

	reminder, err := s.getForTransition(ctx, actor, id)
	if err != nil || reminder == nil {
		return nil, err
	}
	if reminder.Status.IsTerminal() {
		return nil, apperrors.NewValidationError("completed and dismissed reminders cannot be snoozed", nil)
	}

	until := time.Now().Add(time.Duration(minutes) * time.Minute)
	reminder.Status = domain.ReminderStatusSnoozed
	reminder.SnoozeUntil = &until
	reminder.LastNotifiedAt = nil

	if err := s.reminderRepo.Update(ctx, reminder); err != nil {
		return nil, apperrors.NewInternalError("failed to snooze reminder", err)
	}

	s.recordEvent(ctx, reminder, domain.EventReminderSnoozed)
	s.log.Info("Reminder snoozed", "id", id, "minutes", minutes)
	return reminder, nil
}

// Complete marks a reminder done. A recurring reminder spawns its successor
// one cadence past the completed trigger time. Completing an unknown id or
// an already-terminal reminder is a no-op.
func (s *ReminderService) Complete(ctx context.Context, actor domain.Actor, id string) (*domain.Reminder, error) {
	reminder, err := s.getForTransition(ctx, actor, id)
	if err != nil || reminder == nil {
		return nil, err
	}
	if reminder.Status.IsTerminal() {
		return reminder, nil
	}

	reminder.Status = domain.ReminderStatusCompleted
	reminder.SnoozeUntil = nil
	if err := s.reminderRepo.Update(ctx, reminder); err != nil {
		return nil, apperrors.NewInternalError("failed to complete reminder", err)
	}
	s.recordEvent(ctx, reminder, domain.EventReminderCompleted)

	if reminder.Recurring != "" && reminder.Recurring != domain.RecurrenceNone {
		successor := &domain.Reminder{
			OwnerID:         reminder.OwnerID,
			Title:           reminder.Title,
			Description:     reminder.Description,
			ReminderTime:    reminder.Recurring.Next(reminder.ReminderTime),
			Type:            reminder.Type,
			Priority:        reminder.Priority,
			Status:          domain.ReminderStatusActive,
			Recurring:       reminder.Recurring,
			Methods:         reminder.Methods,
			LeadID:          reminder.LeadID,
			LeadCompanyName: reminder.LeadCompanyName,
			LeadContactName: reminder.LeadContactName,
			TaskID:          reminder.TaskID,
		}
		if err := s.reminderRepo.Create(ctx, successor); err != nil {
			s.log.Error("Failed to create recurring successor", "id", id, "error", err)
		} else {
			s.recordEvent(ctx, successor, domain.EventReminderCreated)
			s.log.Info("Recurring reminder rolled forward", "id", id, "next", successor.ReminderTime)
		}
	}

	return reminder, nil
}

// Dismiss marks a reminder dismissed without spawning a successor.
// Dismissing an unknown id or an already-terminal reminder is a no-op.
func (s *ReminderService) Dismiss(ctx context.Context, actor domain.Actor, id string) (*domain.Reminder, error) {
	reminder, err := s.getForTransition(ctx, actor, id)
	if err != nil || reminder == nil {
		return nil, err
	}
	if reminder.Status.IsTerminal() {
		return reminder, nil
	}

	reminder.Status = domain.ReminderStatusDismissed
	reminder.SnoozeUntil = nil
	if err := s.reminderRepo.Update(ctx, reminder); err != nil {
		return nil, apperrors.NewInternalError("failed to dismiss reminder", err)
	}

	s.recordEvent(ctx, reminder, domain.EventReminderDismissed)
	return reminder, nil
}

// Archive soft deletes a reminder
func (s *ReminderService) Archive(ctx context.Context, actor domain.Actor, id string) error {
	reminder, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.reminderRepo.Archive(ctx, reminder.ID.Hex()); err != nil {
		return apperrors.NewInternalError("failed to archive reminder", err)
	}

	s.recordEvent(ctx, reminder, domain.EventReminderArchived)
	s.log.Info("Reminder archived", "id", id)
	return nil
}

// authorize enforces owner-only access, with elevated roles allowed through
func (s *ReminderService) authorize(actor domain.Actor, reminder *domain.Reminder) error {
	if reminder.OwnerID == actor.ID || actor.Role.Elevated() {
		return nil
	}
	return apperrors.NewForbiddenError("reminder belongs to another user", nil)
}

func (s *ReminderService) recordEvent(ctx context.Context, reminder *domain.Reminder, eventType domain.OutboxEventType) {
	event := &domain.OutboxEvent{
		AggregateType: "reminder",
		AggregateID:   reminder.ID.Hex(),
		EventType:     eventType,
		Payload:       reminder,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		s.log.Warn("Failed to record outbox event", "event_type", eventType, "error", err)
	}
}

func parseMethods(raw []string) ([]domain.NotificationMethod, error) {
	if len(raw) == 0 {
		return nil, apperrors.NewValidationError("at least one notification method is required", nil)
	}

	methods := make([]domain.NotificationMethod, 0, len(raw))
	seen := make(map[domain.NotificationMethod]bool, len(raw))
	for _, m := range raw {
		method := domain.NotificationMethod(m)
		if !method.IsValid() {
			return nil, apperrors.NewValidationError("unknown notification method: "+m, nil)
		}
		if !seen[method] {
			seen[method] = true
			methods = append(methods, method)
		}
	}
	return methods, nil
}

func reminderTypeOrDefault(raw string) domain.ReminderType {
	switch t := domain.ReminderType(raw); t {
	case domain.ReminderTypeTask, domain.ReminderTypeMeeting, domain.ReminderTypeFollowUp, domain.ReminderTypeDeadline, domain.ReminderTypeCustom:
		return t
	}
	return domain.ReminderTypeCustom
}

func priorityOrDefault(raw string) domain.Priority {
	switch p := domain.Priority(raw); p {
	case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh, domain.PriorityUrgent:
		return p
	}
	return domain.PriorityMedium
}

func recurrenceOrDefault(raw string) domain.Recurrence {
	switch r := domain.Recurrence(raw); r {
	case domain.RecurrenceDaily, domain.RecurrenceWeekly, domain.RecurrenceMonthly:
		return r
	}
	return domain.RecurrenceNone
}
