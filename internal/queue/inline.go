package queue

import "context"

// InlinePublisher hands events straight to the handler in the caller's
// goroutine. It is used when no broker is configured.
type InlinePublisher struct {
	handler Handler
}

func NewInlinePublisher(h Handler) *InlinePublisher { return &InlinePublisher{handler: h} }

func (p *InlinePublisher) Publish(ctx context.Context, ev BookingEvent) error {
	return p.handler(ctx, ev)
}

func (p *InlinePublisher) Close() error { return nil }
