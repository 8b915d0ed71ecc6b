// Package djv1 defines the messages of the djeve.v1 RPC API.
//
// Messages are plain Go structs encoded as JSON on the wire.
package djv1

import "time"

// NotificationType identifies the payload of a Notification.
type NotificationType string

const (
	NotificationTypeInitialState     NotificationType = "initial-state"
	NotificationTypeConnectionStatus NotificationType = "connection-status"
	NotificationTypeSongRequest      NotificationType = "song-request"
)

type ConnectRequest struct {
	StreamerID string `json:"streamer_id"`
	Prefix     string `json:"prefix"`
}

type ConnectResponse struct {
	Success bool `json:"success"`
}

type DisconnectRequest struct{}

type DisconnectResponse struct {
	Success bool `json:"success"`
}

type GetStatusRequest struct{}

type GetStatusResponse struct {
	IsConnected bool   `json:"is_connected"`
	State       string `json:"state"`
	StreamerID  string `json:"streamer_id,omitempty"`
	Prefix      string `json:"prefix,omitempty"`
}

type SubscribeRequest struct{}

// SearchTracksRequest looks up catalog tracks for a parsed request.
type SearchTracksRequest struct {
	RequestText string `json:"request_text"`
	Artist      string `json:"artist,omitempty"`
	SongTitle   string `json:"song_title"`
}

type SearchTracksResponse struct {
	Tracks []*Track `json:"tracks"`
}

// Track is a catalog track.
type Track struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	Album       string   `json:"album,omitempty"`
	AlbumArtURL string   `json:"album_art_url,omitempty"`
	DurationMs  int64    `json:"duration_ms"`
	URL         string   `json:"url,omitempty"`
	Explicit    bool     `json:"explicit,omitempty"`
}

// ConnectionStatus is a connection lifecycle notification.
// Kind is one of connected, entered, disconnected, error, reconnecting.
type ConnectionStatus struct {
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// SongRequest is a parsed song request from chat.
type SongRequest struct {
	Timestamp   time.Time `json:"timestamp"`
	Username    string    `json:"username"`
	UserID      string    `json:"user_id"`
	RawComment  string    `json:"raw_comment"`
	RequestText string    `json:"request_text"`
	Artist      string    `json:"artist,omitempty"`
	SongTitle   string    `json:"song_title"`
}

// Notification is one message of the Subscribe stream.
// Exactly one payload field is set, matching Type.
type Notification struct {
	Type         NotificationType   `json:"type"`
	SequenceNo   uint64             `json:"sequence_no"`
	InitialState *GetStatusResponse `json:"initial_state,omitempty"`
	Status       *ConnectionStatus  `json:"status,omitempty"`
	Request      *SongRequest       `json:"request,omitempty"`
}
