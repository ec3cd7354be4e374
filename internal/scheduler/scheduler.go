package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
	"github.com/vhvplatform/go-crm-automation-service/internal/metrics"
	"github.com/vhvplatform/go-crm-automation-service/internal/repository"
	"github.com/vhvplatform/go-crm-automation-service/internal/service"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/logger"
)

// AlertRefresher rebuilds the alert set from current CRM data
type AlertRefresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler drives the periodic work: the reminder due-evaluation sweep,
// the alert refresh, and nightly outbox retention cleanup
type Scheduler struct {
	cron          *cron.Cron
	reminderRepo  *repository.ReminderRepository
	outboxRepo    *repository.OutboxRepository
	dispatcher    *service.Dispatcher
	alerts        AlertRefresher
	sweepInterval time.Duration
	log           *logger.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(
	reminderRepo *repository.ReminderRepository,
	outboxRepo *repository.OutboxRepository,
	dispatcher *service.Dispatcher,
	alerts AlertRefresher,
	sweepInterval time.Duration,
	log *logger.Logger,
) *Scheduler {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}

	return &Scheduler{
		cron:          cron.New(),
		reminderRepo:  reminderRepo,
		outboxRepo:    outboxRepo,
		dispatcher:    dispatcher,
		alerts:        alerts,
		sweepInterval: sweepInterval,
		log:           log,
	}
}

// Start registers the periodic jobs and starts the cron loop
func (s *Scheduler) Start() error {
	s.log.Info("Starting scheduler", "sweep_interval", s.sweepInterval)

	spec := fmt.Sprintf("@every %s", s.sweepInterval)
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return fmt.Errorf("failed to register reminder sweep: %w", err)
	}

	// Alerts drift with wall-clock time even without CRM writes, so the set
	// is rebuilt every 5 minutes in addition to event-driven refreshes
	if _, err := s.cron.AddFunc("@every 5m", s.refreshAlerts); err != nil {
		return fmt.Errorf("failed to register alert refresh: %w", err)
	}

	if _, err := s.cron.AddFunc("@daily", s.cleanupOutbox); err != nil {
		return fmt.Errorf("failed to register outbox cleanup: %w", err)
	}

	s.cron.Start()

	// One immediate pass so a restart does not wait a full interval
	go s.sweep()
	go s.refreshAlerts()

	return nil
}

// Stop halts the cron loop, waiting for running jobs to finish
func (s *Scheduler) Stop() {
	s.log.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

// sweep finds due reminders and hands them to the dispatcher. Snoozed
// reminders whose snooze expired reactivate before dispatch, so their
// status reflects what the user sees.
func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.sweepInterval)
	defer cancel()

	start := time.Now()
	now := start

	candidates, err := s.reminderRepo.FindSweepCandidates(ctx, now)
	if err != nil {
		s.log.Error("Reminder sweep query failed", "error", err)
		return
	}

	dispatched := 0
	for _, reminder := range candidates {
		if reminder.Status == domain.ReminderStatusSnoozed && reminder.IsDueNow(now) {
			if err := s.reminderRepo.SetStatus(ctx, reminder.ID.Hex(), domain.ReminderStatusActive, nil); err != nil {
				s.log.Error("Failed to reactivate snoozed reminder", "id", reminder.ID.Hex(), "error", err)
				continue
			}
			reminder.Status = domain.ReminderStatusActive
			reminder.SnoozeUntil = nil
		}

		if !reminder.NeedsDispatch(now) {
			continue
		}

		s.dispatcher.EnqueueReminder(ctx, reminder, now)
		dispatched++
	}

	metrics.SweepDuration.Observe(time.Since(start).Seconds())
	if dispatched > 0 {
		s.log.Info("Reminder sweep complete", "candidates", len(candidates), "dispatched", dispatched)
	} else {
		s.log.Debug("Reminder sweep complete", "candidates", len(candidates))
	}
}

// refreshAlerts rebuilds the staleness alert set
func (s *Scheduler) refreshAlerts() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.alerts.Refresh(ctx); err != nil {
		s.log.Error("Scheduled alert refresh failed", "error", err)
	}
}

// cleanupOutbox drops processed outbox events older than the retention window
func (s *Scheduler) cleanupOutbox() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.outboxRepo.DeleteOldProcessedEvents(ctx, 30)
	if err != nil {
		s.log.Error("Outbox cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		s.log.Info("Outbox cleanup complete", "deleted", deleted)
	}
}
