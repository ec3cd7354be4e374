package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
	"github.com/vhvplatform/go-crm-automation-service/internal/metrics"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/logger"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/rabbitmq"
)

const (
	crmExchange   = "crm.events"
	crmQueue      = "crm_automation_events"
	crmRoutingKey = "crm.#"
)

// AlertRefresher rebuilds the alert set from current CRM data
type AlertRefresher interface {
	Refresh(ctx context.Context) error
}

// EventConsumer listens for CRM change events and invalidates the alert
// snapshot, so dismiss/snooze state and thresholds react to fresh activity
// without waiting for the next scheduled refresh
type EventConsumer struct {
	client *rabbitmq.RabbitMQClient
	alerts AlertRefresher
	log    *logger.Logger
}

// NewEventConsumer creates a new event consumer
func NewEventConsumer(client *rabbitmq.RabbitMQClient, alerts AlertRefresher, log *logger.Logger) *EventConsumer {
	return &EventConsumer{
		client: client,
		alerts: alerts,
		log:    log,
	}
}

// Start starts consuming CRM events. Blocks until the channel closes.
func (c *EventConsumer) Start() error {
	c.log.Info("Starting CRM event consumer", "queue", crmQueue)

	if err := c.client.DeclareExchange(crmExchange, "topic"); err != nil {
		c.log.Error("Failed to declare exchange", "error", err)
		return err
	}

	if err := c.client.DeclareQueue(crmQueue); err != nil {
		c.log.Error("Failed to declare queue", "error", err)
		return err
	}

	if err := c.client.BindQueue(crmQueue, crmRoutingKey, crmExchange); err != nil {
		c.log.Error("Failed to bind queue", "error", err)
		return err
	}

	messages, err := c.client.Consume(crmQueue, "crm-automation")
	if err != nil {
		c.log.Error("Failed to start consuming", "error", err)
		return err
	}

	for msg := range messages {
		var event domain.CRMEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			c.log.Error("Failed to unmarshal CRM event", "error", err)
			msg.Nack(false, false) // Don't requeue invalid messages
			continue
		}

		if err := c.handle(&event); err != nil {
			c.log.Error("Failed to process CRM event", "error", err, "type", event.Type)
			msg.Nack(false, true) // Requeue for retry
			continue
		}

		msg.Ack(false)
		c.log.Debug("CRM event processed", "type", event.Type, "lead_id", event.LeadID)
	}

	return nil
}

// handle reacts to one CRM event. Every event type invalidates the derived
// alerts; the distinction only matters for logging.
func (c *EventConsumer) handle(event *domain.CRMEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch event.Type {
	case domain.EventLeadCreated, domain.EventLeadUpdated, domain.EventLeadStageChanged:
		c.log.Info("Lead activity, refreshing alerts", "type", event.Type, "lead_id", event.LeadID)
	case domain.EventProposalSent, domain.EventProposalUpdated:
		c.log.Info("Proposal activity, refreshing alerts", "type", event.Type, "proposal_id", event.ProposalID)
	case domain.EventConfigChanged:
		c.log.Info("Config changed upstream, refreshing alerts")
	default:
		c.log.Warn("Ignoring unknown CRM event type", "type", event.Type)
		return nil
	}

	return c.alerts.Refresh(ctx)
}

// StartWithRetry keeps the consumer alive across broker hiccups
func (c *EventConsumer) StartWithRetry(stop <-chan struct{}) {
	for {
		err := c.Start()
		select {
		case <-stop:
			return
		default:
		}

		metrics.ConsumerRestarts.Inc()
		c.log.Warn("Event consumer stopped, restarting in 5s", "error", err)
		time.Sleep(5 * time.Second)
	}
}
