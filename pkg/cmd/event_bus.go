package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/textflow/pkg/channels/gochannel"
	"github.com/dukex/textflow/pkg/channels/kafka"
	"github.com/dukex/textflow/pkg/eventbus"
)

// NewEventBus creates the change-notification bus. gochannel keeps events in
// process; kafka publishes them to the configured brokers.
func NewEventBus(cfg Config, logger *slog.Logger) (eventbus.EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger.With("module", "event_bus"))

	switch cfg.EventBus {
	case "", "gochannel":
		pub, sub, err := gochannel.CreateChannel(wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-process pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	case "kafka":
		pub, sub, err := kafka.CreateChannel(wmLogger, kafka.Config{
			Brokers:       kafka.ParseBrokers(cfg.KafkaBrokers),
			ConsumerGroup: "cg-textflow",
			Tracing:       cfg.Tracing,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", cfg.EventBus)
	}
}
