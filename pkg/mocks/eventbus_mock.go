package mocks

import (
	"context"

	"github.com/dukex/textflow/pkg/eventbus"
	"github.com/stretchr/testify/mock"
)

// MockPublisher records published change notifications.
type MockPublisher struct {
	mock.Mock
}

var _ eventbus.EventPublisher = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(ctx context.Context, key string, event eventbus.Event) error {
	args := m.Called(ctx, key, event)

	return args.Error(0)
}

// Published returns the events passed to Publish, in call order.
func (m *MockPublisher) Published() []eventbus.Event {
	published := make([]eventbus.Event, 0, len(m.Calls))

	for _, call := range m.Calls {
		if call.Method == "Publish" {
			published = append(published, call.Arguments.Get(2).(eventbus.Event))
		}
	}

	return published
}
