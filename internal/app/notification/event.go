package notification

import (
	"time"

	"github.com/osa030/djeve/internal/domain/request"
)

// Kind represents a notification kind.
type Kind string

const (
	KindConnected    Kind = "connected"    // Upstream accepted the connection
	KindEntered      Kind = "entered"      // Chat room joined
	KindDisconnected Kind = "disconnected" // Stream ended or explicit disconnect
	KindError        Kind = "error"        // Connect action failed
	KindReconnecting Kind = "reconnecting" // Reconnect scheduled
	KindSongRequest  Kind = "song-request" // Accepted song request
)

// IsStatus returns true for connection-status kinds.
func (k Kind) IsStatus() bool {
	switch k {
	case KindConnected, KindEntered, KindDisconnected, KindError, KindReconnecting:
		return true
	default:
		return false
	}
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Event is a notification delivered to subscribers.
// Request is set only for KindSongRequest.
type Event struct {
	SequenceNo uint64
	Kind       Kind
	Message    string
	Timestamp  time.Time
	Request    *request.SongRequest
}

// Status builds a connection-status event.
func Status(kind Kind, message string, at time.Time) Event {
	return Event{
		Kind:      kind,
		Message:   message,
		Timestamp: at,
	}
}

// SongRequest builds a song-request event.
func SongRequest(req request.SongRequest) Event {
	return Event{
		Kind:      KindSongRequest,
		Timestamp: req.Timestamp,
		Request:   &req,
	}
}
