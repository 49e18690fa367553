package queue

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaPublisher writes events keyed by booking id, so every event of a
// booking lands on the same partition in order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev BookingEvent) error {
	body, err := encode(ev)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(ev.BookingID),
		Value: body,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	}
	return errors.Wrap(p.writer.WriteMessages(ctx, msg), "kafka write")
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// KafkaConsumer reads the topic as part of a consumer group and commits
// each message after it is handled. Failed messages are logged and
// committed so they do not block the partition.
type KafkaConsumer struct {
	reader  *kafka.Reader
	handler Handler
	log     *zap.Logger
}

func NewKafkaConsumer(brokers []string, groupID, topic string, h Handler, log *zap.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		handler: h,
		log:     log.Named("kafka"),
	}
}

func (c *KafkaConsumer) Run(ctx context.Context) error {
	defer func() { _ = c.reader.Close() }()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "kafka fetch")
		}
		if err := dispatch(ctx, msg.Value, c.handler); err != nil {
			c.log.Error("handle message failed",
				zap.Error(err), zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset))
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			return errors.Wrap(err, "kafka commit")
		}
	}
}
