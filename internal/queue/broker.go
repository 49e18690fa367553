package queue

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iliyamo/lab-equipment-booking/internal/config"
)

// New builds the publisher and, for external brokers, the consumer feeding
// h. The consumer is nil for the inline broker.
func New(cfg config.Events, h Handler, log *zap.Logger) (Publisher, Consumer, error) {
	switch cfg.Broker {
	case "", "none", "inline":
		return NewInlinePublisher(h), nil, nil
	case "rabbitmq":
		return NewRabbitPublisher(cfg.RabbitURL, cfg.Queue),
			NewRabbitConsumer(cfg.RabbitURL, cfg.Queue, h, log), nil
	case "kafka":
		if len(cfg.KafkaBrokers) == 0 {
			return nil, nil, errors.New("KAFKA_BROKERS is empty")
		}
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic),
			NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.KafkaTopic, h, log), nil
	}
	return nil, nil, errors.Errorf("unsupported EVENTS_BROKER %q", cfg.Broker)
}
