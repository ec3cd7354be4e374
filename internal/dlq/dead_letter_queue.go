package dlq

import (
	"context"
	"fmt"
	"time"

	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
	"github.com/vhvplatform/go-crm-automation-service/internal/metrics"
	"github.com/vhvplatform/go-crm-automation-service/internal/repository"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/logger"
)

// MaxRetries is the delivery attempt ceiling before a dispatch dead-letters
const MaxRetries = 3

// Redeliverer resends a dead-lettered dispatch on its original channel
type Redeliverer interface {
	Redeliver(ctx context.Context, failed *domain.FailedDispatch) error
}

// DeadLetterQueue parks dispatches that failed all delivery attempts so an
// operator can inspect and replay them
type DeadLetterQueue struct {
	repo *repository.FailedDispatchRepository
	log  *logger.Logger
}

// NewDeadLetterQueue creates a new dead letter queue
func NewDeadLetterQueue(repo *repository.FailedDispatchRepository, log *logger.Logger) *DeadLetterQueue {
	return &DeadLetterQueue{
		repo: repo,
		log:  log,
	}
}

// Add parks a failed dispatch record
func (dlq *DeadLetterQueue) Add(ctx context.Context, record *domain.DispatchRecord, cause error) error {
	dlq.log.Warn("Adding dispatch to DLQ", "id", record.ID.Hex(), "channel", record.Channel, "error", cause)

	failed := &domain.FailedDispatch{
		OriginalID: record.ID,
		OwnerID:    record.OwnerID,
		ReminderID: record.ReminderID,
		Channel:    record.Channel,
		Recipient:  record.Recipient,
		Subject:    record.Subject,
		Body:       record.Body,
		Error:      cause.Error(),
		FailedAt:   time.Now(),
		RetryCount: record.RetryCount,
	}

	if err := dlq.repo.Create(ctx, failed); err != nil {
		return err
	}
	metrics.DLQSize.Inc()
	return nil
}

// GetAll retrieves parked dispatches with pagination
func (dlq *DeadLetterQueue) GetAll(ctx context.Context, page, pageSize int) ([]*domain.FailedDispatch, int64, error) {
	return dlq.repo.FindAll(ctx, page, pageSize)
}

// Retry replays one parked dispatch and removes it on success
func (dlq *DeadLetterQueue) Retry(ctx context.Context, id string, sender Redeliverer) error {
	failed, err := dlq.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find dispatch: %w", err)
	}

	dlq.log.Info("Retrying dead-lettered dispatch", "id", id, "channel", failed.Channel)

	if err := sender.Redeliver(ctx, failed); err != nil {
		return fmt.Errorf("retry failed: %w", err)
	}

	if err := dlq.repo.Delete(ctx, id); err != nil {
		return err
	}
	metrics.DLQSize.Dec()
	return nil
}

// ShouldDeadLetter reports whether a record has exhausted its retries
func ShouldDeadLetter(record *domain.DispatchRecord) bool {
	return record.RetryCount >= MaxRetries
}
