package services

import (
	"context"

	"datacleanr/pkg/contracts/events"
)

// EventPublisher delivers session events to interested clients
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

// NoopPublisher drops every event
type NoopPublisher struct{}

// Publish implements EventPublisher
func (NoopPublisher) Publish(context.Context, events.Event) {}
