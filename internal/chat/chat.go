// Package chat defines the boundary with chat-platform clients.
//
// A backend constructs one Client per room through a Dialer. Handlers are
// bound at construction time, before Connect is invoked, so no event can be
// missed between subscription and connection.
package chat

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrClosed is returned by Connect on a client that was already closed.
var ErrClosed = errors.New("chat client closed")

// Message is a chat message as reported by the platform.
type Message struct {
	Comment      string    // Message text
	Username     string    // Sender display name
	UserID       string    // Sender ID
	ReceivedTime time.Time // Receive time reported by the client
}

// Handlers receives the four upstream event kinds.
// Nil handlers are ignored.
type Handlers struct {
	OnConnect    func(receivedTime time.Time)
	OnEnterRoom  func(receivedTime time.Time)
	OnChat       func(msg Message)
	OnDisconnect func(receivedTime time.Time)
}

// Client is a connection to one chat room.
type Client interface {
	// Connect performs the connect action and may block for the lifetime of
	// the connection. It returns the failure that prevented connecting, or
	// nil (or ErrClosed) when the connection ended after being established
	// or closed. Losses after OnConnect are reported through OnDisconnect.
	Connect(ctx context.Context) error
	// Close releases the connection. Safe to call more than once and
	// from within a handler; it must not wait for running handlers.
	Close() error
}

// Dialer constructs clients bound to one room.
type Dialer interface {
	Dial(streamerID string, h Handlers) (Client, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(streamerID string, h Handlers) (Client, error)

// Dial calls f.
func (f DialerFunc) Dial(streamerID string, h Handlers) (Client, error) {
	return f(streamerID, h)
}

// Connected invokes OnConnect if set.
func (h Handlers) Connected(at time.Time) {
	if h.OnConnect != nil {
		h.OnConnect(at)
	}
}

// EnteredRoom invokes OnEnterRoom if set.
func (h Handlers) EnteredRoom(at time.Time) {
	if h.OnEnterRoom != nil {
		h.OnEnterRoom(at)
	}
}

// Chat invokes OnChat if set.
func (h Handlers) Chat(msg Message) {
	if h.OnChat != nil {
		h.OnChat(msg)
	}
}

// Disconnected invokes OnDisconnect if set.
func (h Handlers) Disconnected(at time.Time) {
	if h.OnDisconnect != nil {
		h.OnDisconnect(at)
	}
}
