// Package wschat provides a chat backend that reads events from a websocket relay.
//
// The relay sends one JSON frame per event:
//
//	{"type":"chat","comment":"!신청 아이유 - 좋은날","username":"viewer","user_id":"42","received_time":"2025-03-01T20:00:00Z"}
//
// Frame types are connect, enter, chat and disconnect.
package wschat

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/djeve/internal/chat"
)

// Frame types.
const (
	FrameConnect    = "connect"
	FrameEnter      = "enter"
	FrameChat       = "chat"
	FrameDisconnect = "disconnect"
)

// Frame is one relay event.
type Frame struct {
	Type         string    `json:"type"`
	Comment      string    `json:"comment,omitempty"`
	Username     string    `json:"username,omitempty"`
	UserID       string    `json:"user_id,omitempty"`
	ReceivedTime time.Time `json:"received_time"`
}

// Dialer creates relay clients.
type Dialer struct {
	baseURL          string
	handshakeTimeout time.Duration
}

// NewDialer creates a new Dialer for the relay at rawURL.
func NewDialer(rawURL string, handshakeTimeout time.Duration) *Dialer {
	return &Dialer{
		baseURL:          rawURL,
		handshakeTimeout: handshakeTimeout,
	}
}

// Dial creates a client for streamerID. The room is passed to the relay
// as the streamer_id query parameter.
func (d *Dialer) Dial(streamerID string, h chat.Handlers) (chat.Client, error) {
	u, err := url.Parse(d.baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid relay url")
	}
	q := u.Query()
	q.Set("streamer_id", strings.TrimSpace(streamerID))
	u.RawQuery = q.Encode()

	return &Client{
		url:      u.String(),
		handlers: h,
		dialer: websocket.Dialer{
			HandshakeTimeout: d.handshakeTimeout,
		},
		now: time.Now,
	}, nil
}

// Client is a connection to a relay room.
type Client struct {
	url      string
	handlers chat.Handlers
	dialer   websocket.Dialer
	now      func() time.Time

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// Connect dials the relay and reads frames until the connection ends.
func (c *Client) Connect(ctx context.Context) error {
	if c.isClosed() {
		return chat.ErrClosed
	}

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		if c.isClosed() {
			return chat.ErrClosed
		}
		return errors.Wrapf(err, "failed to dial relay %s", c.url)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return chat.ErrClosed
	}
	c.conn = conn
	c.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	return c.readLoop(conn)
}

func (c *Client) readLoop(conn *websocket.Conn) error {
	connected := false
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.isClosed() {
				return chat.ErrClosed
			}
			if connected {
				zlog.Warn().Msgf("wschat: relay connection lost: error=%v", err)
				c.handlers.Disconnected(c.now())
				return nil
			}
			return errors.Wrap(err, "relay closed before connect")
		}

		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			zlog.Debug().Msgf("wschat: skipping malformed frame: error=%v", err)
			continue
		}

		at := f.ReceivedTime
		if at.IsZero() {
			at = c.now()
		}

		switch f.Type {
		case FrameConnect:
			connected = true
			c.handlers.Connected(at)
		case FrameEnter:
			c.handlers.EnteredRoom(at)
		case FrameChat:
			c.handlers.Chat(chat.Message{
				Comment:      f.Comment,
				Username:     f.Username,
				UserID:       f.UserID,
				ReceivedTime: at,
			})
		case FrameDisconnect:
			c.handlers.Disconnected(at)
			_ = c.Close()
			return nil
		default:
			zlog.Debug().Msgf("wschat: skipping unknown frame: type=%s", f.Type)
		}
	}
}

// Close closes the relay connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.conn == nil {
		return nil
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
