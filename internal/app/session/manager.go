// Package session provides the chat connection session manager.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/djeve/internal/app/filter"
	"github.com/osa030/djeve/internal/app/notification"
	"github.com/osa030/djeve/internal/app/session/state"
	"github.com/osa030/djeve/internal/chat"
	"github.com/osa030/djeve/internal/domain/request"
)

var (
	ErrInvalidConfig = errors.New("invalid connection config")
	ErrClosed        = errors.New("session manager is closed")
)

// DefaultReconnectDelay is the fixed wait before an automatic reconnect.
const DefaultReconnectDelay = 5 * time.Second

// Config configures a Manager.
type Config struct {
	ReconnectDelay time.Duration
	Messages       Messages
}

// Broadcaster receives the notifications emitted by the session.
type Broadcaster interface {
	Broadcast(event notification.Event)
}

// Option configures optional Manager dependencies.
type Option func(*Manager)

// WithClock replaces the wall clock used for timers and failure timestamps.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) {
		m.clock = c
	}
}

// WithFilterChain makes the manager drop song requests the chain rejects.
func WithFilterChain(c *filter.Chain) Option {
	return func(m *Manager) {
		m.filterChain = c
	}
}

// Manager manages the lifecycle of one chat room connection.
//
// All transitions run under mu, including notification emission, so
// notifications leave in the order their transitions happened. Events from
// a client whose attempt is no longer current are discarded.
type Manager struct {
	mu sync.Mutex

	config      Config
	dialer      chat.Dialer
	notifier    Broadcaster
	clock       clock.Clock
	filterChain *filter.Chain
	stateMgr    *state.Manager

	client        chat.Client
	cancelConnect context.CancelFunc

	reconnectTimer *clock.Timer
	timerSeq       uint64

	// detached holds clients released under mu, closed by unlock.
	detached []chat.Client
	closed   bool
}

// Status is a snapshot of the session for callers outside the manager.
type Status struct {
	Connected  bool
	State      state.State
	StreamerID string
	Prefix     string
}

// NewManager creates a new session manager in StateIdle.
func NewManager(cfg Config, dialer chat.Dialer, notifier Broadcaster, opts ...Option) *Manager {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	cfg.Messages = cfg.Messages.withDefaults()

	m := &Manager{
		config:   cfg,
		dialer:   dialer,
		notifier: notifier,
		clock:    clock.New(),
		stateMgr: state.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Connect starts a session with the given room and request prefix.
// Any existing session is torn down first. Connection progress and failures
// are reported asynchronously through notifications.
func (m *Manager) Connect(streamerID, prefix string) error {
	streamerID = strings.TrimSpace(streamerID)
	prefix = strings.TrimSpace(prefix)
	if streamerID == "" {
		return errors.Wrap(ErrInvalidConfig, "streamer ID is empty")
	}
	if prefix == "" {
		return errors.Wrap(ErrInvalidConfig, "request prefix is empty")
	}

	m.mu.Lock()
	defer m.unlock()

	if m.closed {
		return ErrClosed
	}

	zlog.Info().Msgf("connect requested: streamer_id=%s prefix=%s", streamerID, prefix)
	m.connectLocked(state.Config{StreamerID: streamerID, Prefix: prefix})
	return nil
}

// Disconnect ends the session and cancels any pending reconnect.
// It always succeeds and always emits a disconnected notification.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.unlock()

	if m.closed {
		return
	}

	m.teardownLocked()
	m.stateMgr.ClearConfig()
	m.setStateLocked(state.StateIdle)
	zlog.Info().Msg("disconnected by user")
	m.emitStatus(notification.KindDisconnected, m.config.Messages.Disconnected, m.clock.Now())
}

// GetStatus returns the current session status.
func (m *Manager) GetStatus() Status {
	snap := m.stateMgr.Snapshot()
	return Status{
		Connected:  snap.State.IsConnected(),
		State:      snap.State,
		StreamerID: snap.StreamerID,
		Prefix:     snap.Prefix,
	}
}

// IsConnected reports whether the session is in Connected or EnteredRoom.
func (m *Manager) IsConnected() bool {
	return m.stateMgr.IsConnected()
}

// Close tears down the session without notifications. Connect fails
// with ErrClosed afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.unlock()

	if m.closed {
		return
	}
	m.closed = true
	m.teardownLocked()
	m.stateMgr.ClearConfig()
	m.setStateLocked(state.StateIdle)
}

// connectLocked replaces the current client with a new attempt for cfg.
func (m *Manager) connectLocked(cfg state.Config) {
	m.teardownLocked()
	m.stateMgr.SetConfig(cfg)
	attempt := m.stateMgr.NextAttempt()
	m.setStateLocked(state.StateConnecting)

	client, err := m.dialer.Dial(cfg.StreamerID, m.handlers(attempt))
	if err != nil {
		m.failLocked(errors.Wrap(err, "failed to create chat client"))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.client = client
	m.cancelConnect = cancel
	go m.runConnect(ctx, attempt, client)
}

// runConnect performs the connect action of one attempt.
func (m *Manager) runConnect(ctx context.Context, attempt uint64, client chat.Client) {
	err := client.Connect(ctx)
	if err == nil || errors.Is(err, chat.ErrClosed) {
		return
	}

	m.mu.Lock()
	defer m.unlock()

	if !m.isCurrentLocked(attempt) {
		zlog.Debug().Msgf("ignoring connect failure of stale attempt: attempt=%d error=%v", attempt, err)
		return
	}
	m.failLocked(err)
}

// failLocked handles an upstream connect failure or error.
func (m *Manager) failLocked(err error) {
	zlog.Warn().Msgf("chat connection failed: error=%v", err)
	m.releaseClientLocked()
	m.setStateLocked(state.StateDisconnected)
	m.emitStatus(notification.KindError, m.config.Messages.connectError(err), m.clock.Now())
	m.scheduleReconnectLocked()
}

// scheduleReconnectLocked arms the reconnect timer.
// It is a no-op while a timer is pending or when no config is held.
func (m *Manager) scheduleReconnectLocked() {
	if m.reconnectTimer != nil || !m.stateMgr.HasConfig() {
		return
	}

	delay := m.config.ReconnectDelay
	m.emitStatus(notification.KindReconnecting, m.config.Messages.reconnecting(delay), m.clock.Now())

	m.timerSeq++
	seq := m.timerSeq
	m.reconnectTimer = m.clock.AfterFunc(delay, func() {
		m.onReconnectTimer(seq)
	})
	zlog.Info().Msgf("reconnect scheduled: delay=%v", delay)
}

func (m *Manager) onReconnectTimer(seq uint64) {
	m.mu.Lock()
	defer m.unlock()

	if m.reconnectTimer == nil || seq != m.timerSeq {
		return
	}
	m.reconnectTimer = nil

	if m.closed {
		return
	}
	cfg := m.stateMgr.GetConfig()
	if cfg == nil {
		return
	}
	zlog.Info().Msgf("reconnecting: streamer_id=%s", cfg.StreamerID)
	m.connectLocked(*cfg)
}

// teardownLocked cancels the reconnect timer, releases the client and
// invalidates the current attempt. It emits nothing.
func (m *Manager) teardownLocked() {
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
	m.releaseClientLocked()
}

// releaseClientLocked detaches the current client and invalidates its attempt.
func (m *Manager) releaseClientLocked() {
	if m.cancelConnect != nil {
		m.cancelConnect()
		m.cancelConnect = nil
	}
	if m.client != nil {
		m.detached = append(m.detached, m.client)
		m.client = nil
	}
	m.stateMgr.NextAttempt()
}

// unlock releases mu and then closes the clients detached while it was held.
func (m *Manager) unlock() {
	detached := m.detached
	m.detached = nil
	m.mu.Unlock()

	for _, c := range detached {
		if err := c.Close(); err != nil {
			zlog.Debug().Msgf("failed to close chat client: error=%v", err)
		}
	}
}

func (m *Manager) isCurrentLocked(attempt uint64) bool {
	return !m.closed && m.stateMgr.IsCurrentAttempt(attempt)
}

func (m *Manager) setStateLocked(s state.State) {
	prev := m.stateMgr.GetState()
	m.stateMgr.SetState(s)
	if prev != s {
		zlog.Debug().Msgf("session state changed: from=%s to=%s", prev, s)
	}
}

func (m *Manager) emitStatus(kind notification.Kind, message string, at time.Time) {
	m.notifier.Broadcast(notification.Status(kind, message, at))
}

// handlers binds the upstream callbacks to one attempt.
func (m *Manager) handlers(attempt uint64) chat.Handlers {
	return chat.Handlers{
		OnConnect: func(at time.Time) {
			m.onConnected(attempt, at)
		},
		OnEnterRoom: func(at time.Time) {
			m.onEnteredRoom(attempt, at)
		},
		OnChat: func(msg chat.Message) {
			m.onChat(attempt, msg)
		},
		OnDisconnect: func(at time.Time) {
			m.onStreamEnded(attempt, at)
		},
	}
}

func (m *Manager) onConnected(attempt uint64, at time.Time) {
	m.mu.Lock()
	defer m.unlock()

	if !m.isCurrentLocked(attempt) {
		return
	}
	cfg := m.stateMgr.GetConfig()
	if cfg == nil {
		return
	}
	zlog.Info().Msgf("connected: streamer_id=%s", cfg.StreamerID)
	m.setStateLocked(state.StateConnected)
	m.emitStatus(notification.KindConnected, m.config.Messages.connected(cfg.StreamerID), at)
}

func (m *Manager) onEnteredRoom(attempt uint64, at time.Time) {
	m.mu.Lock()
	defer m.unlock()

	if !m.isCurrentLocked(attempt) {
		return
	}
	zlog.Info().Msg("entered room")
	m.setStateLocked(state.StateEnteredRoom)
	m.emitStatus(notification.KindEntered, m.config.Messages.Entered, at)
}

func (m *Manager) onChat(attempt uint64, msg chat.Message) {
	m.mu.Lock()
	defer m.unlock()

	if !m.isCurrentLocked(attempt) {
		return
	}
	cfg := m.stateMgr.GetConfig()
	if cfg == nil {
		return
	}

	parsed, ok := request.Parse(msg.Comment, cfg.Prefix)
	if !ok {
		return
	}
	req := parsed.WithSender(msg.ReceivedTime, msg.Username, msg.UserID)

	if m.filterChain != nil {
		if result := m.filterChain.Execute(context.Background(), req); !result.Accepted {
			zlog.Info().Msgf("song request rejected: user=%s request=%q code=%s", req.Username, req.RequestText, result.Code)
			return
		}
	}

	zlog.Info().Msgf("song request received: user=%s request=%q", req.Username, req.RequestText)
	m.notifier.Broadcast(notification.SongRequest(req))
}

func (m *Manager) onStreamEnded(attempt uint64, at time.Time) {
	m.mu.Lock()
	defer m.unlock()

	if !m.isCurrentLocked(attempt) {
		return
	}
	zlog.Info().Msg("stream ended")
	m.releaseClientLocked()
	m.setStateLocked(state.StateDisconnected)
	m.emitStatus(notification.KindDisconnected, m.config.Messages.StreamEnded, at)
	m.scheduleReconnectLocked()
}
