// Package twitch provides a Twitch IRC chat backend.
package twitch

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	twitchirc "github.com/gempir/go-twitch-irc/v4"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/djeve/internal/chat"
	"github.com/osa030/djeve/internal/infra/config"
)

// ircConn is the subset of *twitchirc.Client used by Client.
type ircConn interface {
	OnConnect(callback func())
	OnSelfJoinMessage(callback func(message twitchirc.UserJoinMessage))
	OnPrivateMessage(callback func(message twitchirc.PrivateMessage))
	Join(channels ...string)
	Connect() error
	Disconnect() error
}

// Dialer creates Twitch clients. Without an OAuth token clients join anonymously.
type Dialer struct {
	username   string
	oauthToken string
}

// NewDialer creates a new Dialer.
func NewDialer(cfg config.TwitchConfig) *Dialer {
	return &Dialer{
		username:   cfg.Username,
		oauthToken: cfg.OAuthToken,
	}
}

// Dial creates a client bound to the channel of streamerID.
func (d *Dialer) Dial(streamerID string, h chat.Handlers) (chat.Client, error) {
	channel := normalizeChannel(streamerID)
	if channel == "" {
		return nil, errors.New("twitch channel is empty")
	}

	var irc *twitchirc.Client
	if d.oauthToken == "" {
		irc = twitchirc.NewAnonymousClient()
	} else {
		irc = twitchirc.NewClient(d.username, d.oauthToken)
	}
	return newClient(irc, channel, h), nil
}

// Client is a connection to one Twitch channel.
type Client struct {
	irc      ircConn
	channel  string
	handlers chat.Handlers
	now      func() time.Time

	connected atomic.Bool
	closed    atomic.Bool
}

func newClient(irc ircConn, channel string, h chat.Handlers) *Client {
	c := &Client{
		irc:      irc,
		channel:  channel,
		handlers: h,
		now:      time.Now,
	}

	irc.OnConnect(func() {
		if c.closed.Load() {
			_ = c.irc.Disconnect()
			return
		}
		c.connected.Store(true)
		zlog.Info().Msgf("twitch: connected, joining channel: channel=%s", c.channel)
		c.irc.Join(c.channel)
		c.handlers.Connected(c.now())
	})

	irc.OnSelfJoinMessage(func(m twitchirc.UserJoinMessage) {
		if !strings.EqualFold(normalizeChannel(m.Channel), c.channel) {
			return
		}
		c.handlers.EnteredRoom(c.now())
	})

	irc.OnPrivateMessage(func(m twitchirc.PrivateMessage) {
		c.handlers.Chat(toMessage(m, c.now))
	})

	return c
}

// Connect connects to Twitch and blocks until the connection ends.
func (c *Client) Connect(ctx context.Context) error {
	if c.closed.Load() {
		return chat.ErrClosed
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.irc.Connect()
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		_ = c.Close()
		return chat.ErrClosed
	}

	if c.closed.Load() || errors.Is(err, twitchirc.ErrClientDisconnected) {
		return chat.ErrClosed
	}
	if c.connected.Load() {
		zlog.Warn().Msgf("twitch: connection lost: channel=%s error=%v", c.channel, err)
		c.handlers.Disconnected(c.now())
		return nil
	}
	if err == nil {
		err = errors.New("connection closed before it was established")
	}
	return errors.Wrap(err, "twitch connect failed")
}

// Close disconnects from Twitch.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	if err := c.irc.Disconnect(); err != nil {
		zlog.Debug().Msgf("twitch: disconnect: %v", err)
	}
	return nil
}

func toMessage(m twitchirc.PrivateMessage, now func() time.Time) chat.Message {
	username := m.User.DisplayName
	if username == "" {
		username = m.User.Name
	}

	receivedAt := m.Time
	if receivedAt.IsZero() {
		receivedAt = now()
	}

	return chat.Message{
		Comment:      m.Message,
		Username:     username,
		UserID:       m.User.ID,
		ReceivedTime: receivedAt,
	}
}

func normalizeChannel(ch string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ch), "#"))
}
