// Package notification provides the notification manager for broadcasting events.
package notification

import (
	"sync"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

// DefaultBufferSize is the per-subscriber queue length.
const DefaultBufferSize = 256

// Subscription is a subscriber's ordered event queue.
type Subscription struct {
	ID string
	C  <-chan Event

	ch      chan Event
	dropped uint64
}

// Manager manages notification subscriptions and broadcasting.
// Events are delivered to every subscriber in broadcast order.
type Manager struct {
	mu            sync.Mutex
	subscriptions map[string]*Subscription
	sequenceNo    uint64
	bufferSize    int
}

// NewManager creates a new notification manager.
func NewManager() *Manager {
	return NewManagerWithBuffer(DefaultBufferSize)
}

// NewManagerWithBuffer creates a manager with the given per-subscriber buffer.
func NewManagerWithBuffer(size int) *Manager {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Manager{
		subscriptions: make(map[string]*Subscription),
		bufferSize:    size,
	}
}

// Subscribe adds a new subscription.
func (m *Manager) Subscribe() *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan Event, m.bufferSize)
	sub := &Subscription{
		ID: uuid.New().String(),
		C:  ch,
		ch: ch,
	}
	m.subscriptions[sub.ID] = sub
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sub, ok := m.subscriptions[subscriptionID]; ok {
		delete(m.subscriptions, subscriptionID)
		close(sub.ch)
	}
}

// CurrentSequenceNo returns the sequence number of the last broadcast event.
func (m *Manager) CurrentSequenceNo() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sequenceNo
}

// Broadcast stamps the event with the next sequence number and queues it for
// every subscriber. It never blocks: a subscriber whose queue is full loses
// the event.
func (m *Manager) Broadcast(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sequenceNo++
	event.SequenceNo = m.sequenceNo

	for _, sub := range m.subscriptions {
		select {
		case sub.ch <- event:
		default:
			sub.dropped++
			zlog.Warn().Msgf("notification dropped: subscription_id=%s kind=%s sequence_no=%d dropped_total=%d",
				sub.ID, event.Kind, event.SequenceNo, sub.dropped)
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscriptions)
}

// Close removes all subscriptions and closes their channels.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, sub := range m.subscriptions {
		close(sub.ch)
		delete(m.subscriptions, id)
	}
}
