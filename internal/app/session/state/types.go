// Package state provides connection state management.
package state

// State represents the connection lifecycle state.
type State int

const (
	StateIdle         State = iota // No config, no client
	StateConnecting                // Connect action in flight
	StateConnected                 // Upstream accepted the connection
	StateEnteredRoom               // Chat room joined
	StateDisconnected              // Attempt ended (stream ended or error), reconnect pending
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateEnteredRoom:
		return "entered_room"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// IsConnected returns true if the state counts as connected.
func (s State) IsConnected() bool {
	return s == StateConnected || s == StateEnteredRoom
}

// Config is the connection target held while a session is active or
// pending reconnect.
type Config struct {
	StreamerID string
	Prefix     string
}
