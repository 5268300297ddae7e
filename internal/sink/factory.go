package sink

import (
	"fmt"

	"pushrender/internal/broker"
	"pushrender/internal/config"
	"pushrender/internal/constants"
	"pushrender/internal/logger"
)

func New(cfg *config.Config, producer broker.Producer, log logger.Logger) (Sink, error) {
	switch cfg.Sink.Type {
	case "", "kafka":
		outputTopic := cfg.Broker.Kafka.OutputTopic
		if outputTopic == "" {
			outputTopic = constants.DefaultOutputTopic
		}
		cancelTopic := cfg.Broker.Kafka.CancelTopic
		if cancelTopic == "" {
			cancelTopic = constants.DefaultCancelTopic
		}
		return NewKafka(producer, outputTopic, cancelTopic, log), nil
	case "webhook":
		return NewWebhook(cfg.Sink.Webhook, log), nil
	default:
		return nil, fmt.Errorf("unknown sink type: %s", cfg.Sink.Type)
	}
}
