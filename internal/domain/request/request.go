// Package request provides the SongRequest domain entity and its parser.
package request

import "time"

// SongRequest represents a song request accepted from chat.
// Values are immutable once created; copy them freely.
type SongRequest struct {
	Timestamp   time.Time // Receive time reported by the chat client
	Username    string    // Sender name as reported upstream
	UserID      string    // Sender ID as reported upstream
	RawComment  string    // Full original message text
	RequestText string    // Message text without the prefix, trimmed
	Artist      string    // Artist part of "<artist> - <title>" (empty when not matched)
	SongTitle   string    // Title part, or the whole RequestText when no separator was found
}

// HasArtist returns true if the request was split into artist and title.
func (r SongRequest) HasArtist() bool {
	return r.Artist != ""
}

// WithSender returns a copy of the request stamped with sender identity and receive time.
func (r SongRequest) WithSender(receivedAt time.Time, username, userID string) SongRequest {
	r.Timestamp = receivedAt
	r.Username = username
	r.UserID = userID
	return r
}
