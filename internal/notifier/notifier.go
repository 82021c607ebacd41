// Package notifier publishes status-change events after a mutation has been
// committed. Delivery is best effort: a failed publish is logged and the
// caller's request still succeeds.
package notifier

import (
	"context"
	"reservations/pkg/kafka"
	"reservations/pkg/logger"
	"reservations/pkg/middleware"
	"reservations/pkg/model"
	"time"
)

const schemaVersion = "1"

type Notifier interface {
	Notify(ctx context.Context, event model.StatusChangedEvent)
}

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaNotifier struct {
	publisher Publisher
	source    string
	log       *logger.Logger
}

func NewKafkaNotifier(publisher Publisher, source string, log *logger.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		publisher: publisher,
		source:    source,
		log:       log,
	}
}

// Notify keys the message by resource id so events for one room or ride
// stay ordered on a single partition.
func (n *KafkaNotifier) Notify(ctx context.Context, event model.StatusChangedEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	msg, err := kafka.NewMessage().
		WithKey(event.ResourceID).
		WithValue(event).
		WithEventType(event.Type).
		WithCorrelationID(middleware.RequestIDFrom(ctx)).
		WithSchemaVersion(schemaVersion).
		WithSource(n.source).
		Build()
	if err != nil {
		n.log.Error("Failed to build status event", "type", event.Type, "entity_id", event.EntityID, "error", err)
		return
	}

	if err := n.publisher.Publish(ctx, msg); err != nil {
		n.log.Warn("Status event not delivered",
			"type", event.Type,
			"resource_id", event.ResourceID,
			"entity_id", event.EntityID,
			"error", err,
		)
	}
}

// LogNotifier records events in the service log only. Used when the event
// stream is disabled.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, event model.StatusChangedEvent) {
	n.log.Info("Status changed",
		"type", event.Type,
		"resource_id", event.ResourceID,
		"entity_id", event.EntityID,
		"actor_id", event.ActorID,
		"from", event.From,
		"to", event.To,
	)
}
