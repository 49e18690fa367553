package queue

import (
	"context"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RabbitPublisher dials the broker per publish and declares the durable
// queue before sending a persistent message on the default exchange.
type RabbitPublisher struct {
	url   string
	queue string
}

func NewRabbitPublisher(url, queue string) *RabbitPublisher {
	return &RabbitPublisher{url: url, queue: queue}
}

func (p *RabbitPublisher) Publish(ctx context.Context, ev BookingEvent) error {
	body, err := encode(ev)
	if err != nil {
		return err
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return errors.Wrap(err, "rabbitmq dial")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "rabbitmq channel")
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "rabbitmq queue declare")
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         string(ev.Type),
		Body:         body,
	}
	return errors.Wrap(ch.PublishWithContext(ctx, "", p.queue, false, false, pub), "rabbitmq publish")
}

func (p *RabbitPublisher) Close() error { return nil }

// RabbitConsumer reads the queue with manual acks, reconnecting with
// exponential backoff when the connection drops.
type RabbitConsumer struct {
	url     string
	queue   string
	handler Handler
	log     *zap.Logger
}

func NewRabbitConsumer(url, queue string, h Handler, log *zap.Logger) *RabbitConsumer {
	return &RabbitConsumer{url: url, queue: queue, handler: h, log: log.Named("rabbitmq")}
}

func (c *RabbitConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return nil
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		c.log.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return nil
		}
	}
}

func (c *RabbitConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "channel open")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("set qos failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "queue declare")
	}
	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "queue consume")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := dispatch(ctx, d.Body, c.handler); err != nil {
				c.log.Error("handle message failed", zap.Error(err))
				// no requeue, a poison message would loop forever
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// sleep waits for d or until ctx ends, reporting whether the full wait
// elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
