package sink

import (
	"context"
	"strconv"
	"time"

	"pushrender/internal/broker"
	"pushrender/internal/logger"
	"pushrender/pkg/metrics"
	"pushrender/pkg/models"
)

// Kafka publishes rendered notifications to the output topic, keyed by
// notification id so a later display for the same id compacts away the
// earlier one. Cancels go to their own topic.
type Kafka struct {
	producer    broker.Producer
	outputTopic string
	cancelTopic string
	logger      logger.Logger
}

func NewKafka(producer broker.Producer, outputTopic, cancelTopic string, log logger.Logger) *Kafka {
	return &Kafka{
		producer:    producer,
		outputTopic: outputTopic,
		cancelTopic: cancelTopic,
		logger:      log,
	}
}

func (k *Kafka) Display(ctx context.Context, n models.Notification) error {
	env := toDisplayEnvelope(n)

	if err := k.producer.Publish(ctx, k.outputTopic, strconv.Itoa(int(n.ID)), env); err != nil {
		return err
	}

	metrics.SinkDisplaysTotal.WithLabelValues(env.Style).Inc()
	k.logger.InfowCtx(ctx, "Notification displayed",
		"notification_id", int32(n.ID),
		"style", env.Style,
		"actions", len(n.Actions),
	)
	return nil
}

func (k *Kafka) Cancel(ctx context.Context, id models.NotificationID) error {
	env := cancelEnvelope{
		ID:         int32(id),
		CanceledAt: time.Now(),
	}

	if err := k.producer.Publish(ctx, k.cancelTopic, strconv.Itoa(int(id)), env); err != nil {
		return err
	}

	metrics.SinkCancelsTotal.Inc()
	k.logger.InfowCtx(ctx, "Notification canceled",
		"notification_id", int32(id),
	)
	return nil
}
