package workflow

import (
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/qs-lzh/troupe/internal/mq"
)

// NotificationWorkflow turns casting events into member notifications.
type NotificationWorkflow struct {
	logger *zap.Logger
}

func NewNotificationWorkflow(logger *zap.Logger) *NotificationWorkflow {
	return &NotificationWorkflow{
		logger: logger,
	}
}

func (w *NotificationWorkflow) Start(mqConn *amqp.Connection) error {
	return w.ConsumeCastingEvents(mqConn)
}

func (w *NotificationWorkflow) ConsumeCastingEvents(conn *amqp.Connection) error {
	ch, err := mq.NewChannel(conn)
	if err != nil {
		return err
	}

	msgs, err := ch.Consume(mq.CastingEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			if err := w.handleCastingEvent(msg); err != nil {
				w.logger.Warn("failed to handle casting event", zap.Error(err))
			}
		}
	}()

	return nil
}

func (w *NotificationWorkflow) handleCastingEvent(msg amqp.Delivery) error {
	var event mq.CastingEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		msg.Nack(false, false)
		return err
	}

	fields := []zap.Field{
		zap.String("type", string(event.Type)),
		zap.Uint("performance_id", event.PerformanceID),
		zap.Uint("role_id", event.RoleID),
		zap.Uint("application_id", event.ApplicationID),
		zap.Time("occurred_at", event.OccurredAt),
	}
	switch event.Type {
	case mq.EventApplicationApproved:
		w.logger.Info("notify applicant: role assigned", append(fields, zap.String("to", event.Username))...)
	case mq.EventApplicationRejected:
		w.logger.Info("notify applicant: application declined", append(fields, zap.String("to", event.Username))...)
	case mq.EventApplicationSubmitted:
		w.logger.Info("notify organizers: new application", append(fields, zap.String("from", event.Username))...)
	case mq.EventRoleDeleted, mq.EventPerformanceDeleted:
		if event.Warning != "" {
			w.logger.Info("notify members: assignment dropped", append(fields, zap.String("warning", event.Warning))...)
		}
	default:
		w.logger.Debug("ignoring unknown casting event", fields...)
	}

	msg.Ack(false)
	return nil
}
