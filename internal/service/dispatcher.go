package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vhvplatform/go-crm-automation-service/internal/dlq"
	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
	"github.com/vhvplatform/go-crm-automation-service/internal/metrics"
	"github.com/vhvplatform/go-crm-automation-service/internal/queue"
	"github.com/vhvplatform/go-crm-automation-service/internal/repository"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/logger"
	"golang.org/x/time/rate"
)

// email template used when one exists in the store; otherwise a plain
// message is composed inline
const reminderEmailTemplate = "reminder-due"

// Dispatcher fans due reminders out to their channels through a fixed worker
// pool fed by a priority queue. Urgent reminders jump the line.
type Dispatcher struct {
	queue        *queue.PriorityQueue
	workers      int
	dispatchRepo *repository.DispatchRepository
	reminderRepo *repository.ReminderRepository
	prefsRepo    *repository.PreferencesRepository
	email        *EmailService
	whatsapp     *WhatsAppService
	deadLetters  *dlq.DeadLetterQueue
	waLimiter    *rate.Limiter
	log          *logger.Logger
	wg           sync.WaitGroup
}

// NewDispatcher creates a dispatcher with the given worker count
func NewDispatcher(
	workers int,
	dispatchRepo *repository.DispatchRepository,
	reminderRepo *repository.ReminderRepository,
	prefsRepo *repository.PreferencesRepository,
	email *EmailService,
	whatsapp *WhatsAppService,
	deadLetters *dlq.DeadLetterQueue,
	log *logger.Logger,
) *Dispatcher {
	if workers <= 0 {
		workers = 4
	}

	return &Dispatcher{
		queue:        queue.NewPriorityQueue(),
		workers:      workers,
		dispatchRepo: dispatchRepo,
		reminderRepo: reminderRepo,
		prefsRepo:    prefsRepo,
		email:        email,
		whatsapp:     whatsapp,
		deadLetters:  deadLetters,
		// WhatsApp Cloud API allows bursts but sustained sends get throttled
		waLimiter: rate.NewLimiter(rate.Limit(10), 20),
		log:       log,
	}
}

// Start launches the worker pool
func (d *Dispatcher) Start() {
	d.log.Info("Starting dispatch workers", "workers", d.workers)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
}

// Stop closes the queue and waits for in-flight jobs to finish
func (d *Dispatcher) Stop() {
	d.queue.Close()
	d.wg.Wait()
	d.log.Info("Dispatch workers stopped")
}

// EnqueueReminder queues one job per enabled channel of a due reminder and
// stamps it notified, so the next sweep tick skips it
func (d *Dispatcher) EnqueueReminder(ctx context.Context, reminder *domain.Reminder, now time.Time) {
	for _, method := range reminder.Methods {
		d.queue.Push(&queue.DispatchJob{
			ID:       uuid.New().String(),
			Priority: reminder.Priority,
			Channel:  method,
			Reminder: reminder,
			DueAt:    reminder.DueAt(),
		})
	}
	metrics.DispatchQueueSize.Set(float64(d.queue.Len()))

	if err := d.reminderRepo.MarkNotified(ctx, reminder.ID.Hex(), now); err != nil {
		d.log.Error("Failed to stamp reminder as notified", "id", reminder.ID.Hex(), "error", err)
	}
}

// worker processes jobs until the queue closes
func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	d.log.Debug("Dispatch worker started", "worker_id", id)

	for {
		job := d.queue.Pop()
		if job == nil {
			d.log.Debug("Dispatch worker stopping", "worker_id", id)
			return
		}
		metrics.DispatchQueueSize.Set(float64(d.queue.Len()))

		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		d.process(ctx, job)
		cancel()

		metrics.DispatchDuration.WithLabelValues(string(job.Channel)).Observe(time.Since(start).Seconds())
	}
}

// process delivers one channel of one reminder, honoring the owner's
// channel opt-outs and quiet hours
func (d *Dispatcher) process(ctx context.Context, job *queue.DispatchJob) {
	reminder := job.Reminder
	now := time.Now()

	prefs, err := d.prefsRepo.GetByUserID(ctx, reminder.OwnerID)
	if err != nil {
		d.log.Error("Failed to load preferences, sending with defaults", "owner", reminder.OwnerID, "error", err)
		prefs = &domain.NotificationPreferences{
			UserID: reminder.OwnerID, InAppEnabled: true, EmailEnabled: true, WhatsAppEnabled: true, Timezone: "UTC",
		}
	}

	if !prefs.AllowsChannel(job.Channel) {
		d.log.Debug("Channel disabled by preferences", "owner", reminder.OwnerID, "channel", job.Channel)
		metrics.RemindersDispatched.WithLabelValues(string(job.Channel), "skipped").Inc()
		return
	}

	// Quiet hours hold back the outward channels, never the in-app feed
	if job.Channel != domain.MethodInApp && prefs.InQuietHours(now) {
		d.log.Debug("Dispatch deferred by quiet hours", "owner", reminder.OwnerID, "channel", job.Channel)
		metrics.RemindersDispatched.WithLabelValues(string(job.Channel), "deferred").Inc()
		return
	}

	record := &domain.DispatchRecord{
		OwnerID:    reminder.OwnerID,
		ReminderID: reminder.ID.Hex(),
		Channel:    job.Channel,
		Status:     domain.DispatchStatusPending,
		Recipient:  d.recipientFor(job.Channel, prefs),
		Subject:    d.subjectFor(reminder),
		Body:       d.bodyFor(reminder),
	}
	if err := d.dispatchRepo.Create(ctx, record); err != nil {
		d.log.Error("Failed to create dispatch record", "reminder", record.ReminderID, "error", err)
		return
	}

	var lastErr error
	for attempt := 0; attempt < dlq.MaxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff between attempts
			backoff := time.Duration(attempt*attempt) * time.Second
			d.log.Info("Retrying dispatch", "id", record.ID.Hex(), "attempt", attempt+1, "backoff", backoff)
			time.Sleep(backoff)
			if err := d.dispatchRepo.IncrementRetryCount(ctx, record.ID.Hex()); err != nil {
				d.log.Warn("Failed to bump retry count", "id", record.ID.Hex(), "error", err)
			}
			record.RetryCount++
		}

		if lastErr = d.send(ctx, job.Channel, record); lastErr == nil {
			sentAt := time.Now()
			if err := d.dispatchRepo.UpdateStatus(ctx, record.ID.Hex(), domain.DispatchStatusSent, "", &sentAt); err != nil {
				d.log.Warn("Failed to mark dispatch sent", "id", record.ID.Hex(), "error", err)
			}
			metrics.RemindersDispatched.WithLabelValues(string(job.Channel), "sent").Inc()
			return
		}

		d.log.Error("Dispatch attempt failed", "id", record.ID.Hex(), "channel", job.Channel, "attempt", attempt+1, "error", lastErr)
	}

	if err := d.dispatchRepo.UpdateStatus(ctx, record.ID.Hex(), domain.DispatchStatusFailed, lastErr.Error(), nil); err != nil {
		d.log.Warn("Failed to mark dispatch failed", "id", record.ID.Hex(), "error", err)
	}
	metrics.RemindersDispatched.WithLabelValues(string(job.Channel), "failed").Inc()

	record.RetryCount = dlq.MaxRetries
	if err := d.deadLetters.Add(ctx, record, lastErr); err != nil {
		d.log.Error("Failed to dead-letter dispatch", "id", record.ID.Hex(), "error", err)
	}
}

// send delivers the composed record on one channel. The in-app channel is
// the dispatch record itself showing up in the owner's feed.
func (d *Dispatcher) send(ctx context.Context, channel domain.NotificationMethod, record *domain.DispatchRecord) error {
	switch channel {
	case domain.MethodInApp:
		return nil
	case domain.MethodEmail:
		if record.Recipient == "" {
			return fmt.Errorf("owner %s has no email address on file", record.OwnerID)
		}
		if err := d.email.SendTemplate(ctx, record.Recipient, reminderEmailTemplate, d.templateVars(record)); err == nil {
			return nil
		}
		// Fall back to the inline composition when no template exists
		return d.email.Send(ctx, record.Recipient, record.Subject, record.Body, false)
	case domain.MethodWhatsApp:
		if record.Recipient == "" {
			return fmt.Errorf("owner %s has no WhatsApp number on file", record.OwnerID)
		}
		if err := d.waLimiter.Wait(ctx); err != nil {
			return err
		}
		return d.whatsapp.Send(ctx, record.Recipient, record.Subject+"\n"+record.Body)
	}
	return fmt.Errorf("unknown channel: %s", channel)
}

// Redeliver replays a dead-lettered dispatch on its original channel
func (d *Dispatcher) Redeliver(ctx context.Context, failed *domain.FailedDispatch) error {
	switch failed.Channel {
	case domain.MethodInApp:
		record := &domain.DispatchRecord{
			OwnerID:    failed.OwnerID,
			ReminderID: failed.ReminderID,
			Channel:    domain.MethodInApp,
			Status:     domain.DispatchStatusSent,
			Subject:    failed.Subject,
			Body:       failed.Body,
		}
		return d.dispatchRepo.Create(ctx, record)
	case domain.MethodEmail:
		return d.email.Send(ctx, failed.Recipient, failed.Subject, failed.Body, false)
	case domain.MethodWhatsApp:
		return d.whatsapp.Send(ctx, failed.Recipient, failed.Subject+"\n"+failed.Body)
	}
	return fmt.Errorf("unknown channel: %s", failed.Channel)
}

func (d *Dispatcher) recipientFor(channel domain.NotificationMethod, prefs *domain.NotificationPreferences) string {
	switch channel {
	case domain.MethodEmail:
		return prefs.EmailAddress
	case domain.MethodWhatsApp:
		return prefs.WhatsAppNumber
	}
	return ""
}

func (d *Dispatcher) subjectFor(reminder *domain.Reminder) string {
	return fmt.Sprintf("Reminder: %s", reminder.Title)
}

func (d *Dispatcher) bodyFor(reminder *domain.Reminder) string {
	body := reminder.Title
	if reminder.Description != "" {
		body += "\n" + reminder.Description
	}
	if reminder.LeadCompanyName != "" {
		body += fmt.Sprintf("\nLead: %s (%s)", reminder.LeadCompanyName, reminder.LeadContactName)
	}
	body += fmt.Sprintf("\nDue: %s", reminder.ReminderTime.Format(time.RFC1123))
	return body
}

func (d *Dispatcher) templateVars(record *domain.DispatchRecord) map[string]string {
	return map[string]string{
		"title": record.Subject,
		"body":  record.Body,
	}
}
