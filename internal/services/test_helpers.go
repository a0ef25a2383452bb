package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"datacleanr/pkg/contracts/events"
)

// MockEventPublisher is a mock for the EventPublisher interface
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}
