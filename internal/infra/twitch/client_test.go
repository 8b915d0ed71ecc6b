package twitch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	twitchirc "github.com/gempir/go-twitch-irc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/djeve/internal/chat"
	"github.com/osa030/djeve/internal/infra/config"
)

type fakeIRC struct {
	onConnect  func()
	onSelfJoin func(twitchirc.UserJoinMessage)
	onPrivate  func(twitchirc.PrivateMessage)

	mu     sync.Mutex
	joined []string

	result      chan error
	disconnects atomic.Int32
}

func newFakeIRC() *fakeIRC {
	return &fakeIRC{result: make(chan error, 1)}
}

func (f *fakeIRC) OnConnect(cb func())                                 { f.onConnect = cb }
func (f *fakeIRC) OnSelfJoinMessage(cb func(twitchirc.UserJoinMessage)) { f.onSelfJoin = cb }
func (f *fakeIRC) OnPrivateMessage(cb func(twitchirc.PrivateMessage))   { f.onPrivate = cb }

func (f *fakeIRC) Join(channels ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joined = append(f.joined, channels...)
}

func (f *fakeIRC) Connect() error {
	return <-f.result
}

func (f *fakeIRC) Disconnect() error {
	f.disconnects.Add(1)
	select {
	case f.result <- twitchirc.ErrClientDisconnected:
	default:
	}
	return nil
}

type events struct {
	mu    sync.Mutex
	kinds []string
	chats []chat.Message
}

func (e *events) add(kind string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.kinds = append(e.kinds, kind)
}

func (e *events) get() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.kinds...)
}

func (e *events) handlers() chat.Handlers {
	return chat.Handlers{
		OnConnect:   func(time.Time) { e.add("connect") },
		OnEnterRoom: func(time.Time) { e.add("enter") },
		OnChat: func(m chat.Message) {
			e.mu.Lock()
			e.chats = append(e.chats, m)
			e.mu.Unlock()
			e.add("chat")
		},
		OnDisconnect: func(time.Time) { e.add("disconnect") },
	}
}

func TestClient_Events(t *testing.T) {
	irc := newFakeIRC()
	ev := &events{}
	c := newClient(irc, "streamer1", ev.handlers())

	done := make(chan error, 1)
	go func() { done <- c.Connect(context.Background()) }()

	irc.onConnect()
	assert.Equal(t, []string{"streamer1"}, irc.joined)

	irc.onSelfJoin(twitchirc.UserJoinMessage{Channel: "other", User: "justinfan1"})
	irc.onSelfJoin(twitchirc.UserJoinMessage{Channel: "streamer1", User: "justinfan1"})

	sent := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	irc.onPrivate(twitchirc.PrivateMessage{
		User:    twitchirc.User{ID: "42", Name: "viewer", DisplayName: "Viewer"},
		Message: "!신청 아이유 - 좋은날",
		Channel: "streamer1",
		Time:    sent,
	})
	irc.onPrivate(twitchirc.PrivateMessage{
		User:    twitchirc.User{ID: "43", Name: "plain"},
		Message: "hi",
	})

	irc.result <- errors.New("read tcp: connection reset")
	require.NoError(t, <-done)

	assert.Equal(t, []string{"connect", "enter", "chat", "chat", "disconnect"}, ev.get())
	require.Len(t, ev.chats, 2)
	assert.Equal(t, chat.Message{Comment: "!신청 아이유 - 좋은날", Username: "Viewer", UserID: "42", ReceivedTime: sent}, ev.chats[0])
	assert.Equal(t, "plain", ev.chats[1].Username)
	assert.False(t, ev.chats[1].ReceivedTime.IsZero())
}

func TestClient_ConnectFailure(t *testing.T) {
	irc := newFakeIRC()
	ev := &events{}
	c := newClient(irc, "streamer1", ev.handlers())

	irc.result <- errors.New("dial tcp: no such host")
	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such host")
	assert.Empty(t, ev.get())
}

func TestClient_Close(t *testing.T) {
	irc := newFakeIRC()
	ev := &events{}
	c := newClient(irc, "streamer1", ev.handlers())

	done := make(chan error, 1)
	go func() { done <- c.Connect(context.Background()) }()
	irc.onConnect()

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, int32(1), irc.disconnects.Load())

	err := <-done
	assert.True(t, errors.Is(err, chat.ErrClosed))
	assert.Equal(t, []string{"connect"}, ev.get())

	assert.True(t, errors.Is(c.Connect(context.Background()), chat.ErrClosed))
}

func TestClient_ContextCancel(t *testing.T) {
	irc := newFakeIRC()
	c := newClient(irc, "streamer1", chat.Handlers{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Connect(ctx) }()
	cancel()

	assert.True(t, errors.Is(<-done, chat.ErrClosed))
	assert.Equal(t, int32(1), irc.disconnects.Load())
}

func TestClient_ConnectAfterClose(t *testing.T) {
	irc := newFakeIRC()
	ev := &events{}
	c := newClient(irc, "streamer1", ev.handlers())
	require.NoError(t, c.Close())

	irc.onConnect()
	assert.Empty(t, ev.get())
	assert.Empty(t, irc.joined)
}

func TestDialer_Dial(t *testing.T) {
	d := NewDialer(config.TwitchConfig{})

	client, err := d.Dial(" #Streamer1 ", chat.Handlers{})
	require.NoError(t, err)
	assert.Equal(t, "streamer1", client.(*Client).channel)

	_, err = d.Dial("  ", chat.Handlers{})
	assert.Error(t, err)
}
