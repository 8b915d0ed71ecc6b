package wschat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/djeve/internal/chat"
)

var upgrader = websocket.Upgrader{}

// relay starts a test relay that records the requested room and runs serve.
func relay(t *testing.T, serve func(conn *websocket.Conn)) (wsURL string, room func() string) {
	t.Helper()

	var (
		mu      sync.Mutex
		gotRoom string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotRoom = r.URL.Query().Get("streamer_id")
		mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		serve(conn)
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), func() string {
		mu.Lock()
		defer mu.Unlock()
		return gotRoom
	}
}

type recorder struct {
	mu     sync.Mutex
	kinds  []string
	chats  []chat.Message
	enters []time.Time
}

func (r *recorder) handlers() chat.Handlers {
	return chat.Handlers{
		OnConnect: func(time.Time) { r.add("connect") },
		OnEnterRoom: func(at time.Time) {
			r.mu.Lock()
			r.enters = append(r.enters, at)
			r.mu.Unlock()
			r.add("enter")
		},
		OnChat: func(m chat.Message) {
			r.mu.Lock()
			r.chats = append(r.chats, m)
			r.mu.Unlock()
			r.add("chat")
		},
		OnDisconnect: func(time.Time) { r.add("disconnect") },
	}
}

func (r *recorder) add(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.kinds...)
}

func TestClient_Frames(t *testing.T) {
	entered := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	url, room := relay(t, func(conn *websocket.Conn) {
		_ = conn.WriteJSON(Frame{Type: FrameConnect})
		_ = conn.WriteJSON(Frame{Type: FrameEnter, ReceivedTime: entered})
		_ = conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		_ = conn.WriteJSON(Frame{Type: "gift"})
		_ = conn.WriteJSON(Frame{Type: FrameChat, Comment: "!신청 아이유 - 좋은날", Username: "viewer", UserID: "42", ReceivedTime: entered})
	})

	rec := &recorder{}
	client, err := NewDialer(url, time.Second).Dial("streamer1", rec.handlers())
	require.NoError(t, err)

	require.NoError(t, client.Connect(context.Background()))
	assert.Equal(t, "streamer1", room())
	assert.Equal(t, []string{"connect", "enter", "chat", "disconnect"}, rec.get())
	assert.Equal(t, []time.Time{entered}, rec.enters)
	require.Len(t, rec.chats, 1)
	assert.Equal(t, chat.Message{Comment: "!신청 아이유 - 좋은날", Username: "viewer", UserID: "42", ReceivedTime: entered}, rec.chats[0])
}

func TestClient_DisconnectFrame(t *testing.T) {
	url, _ := relay(t, func(conn *websocket.Conn) {
		_ = conn.WriteJSON(Frame{Type: FrameConnect})
		_ = conn.WriteJSON(Frame{Type: FrameDisconnect})
		// keep the socket open; the client must stop on its own
		_, _, _ = conn.ReadMessage()
	})

	rec := &recorder{}
	client, err := NewDialer(url, time.Second).Dial("streamer1", rec.handlers())
	require.NoError(t, err)

	require.NoError(t, client.Connect(context.Background()))
	assert.Equal(t, []string{"connect", "disconnect"}, rec.get())
	assert.True(t, errors.Is(client.Connect(context.Background()), chat.ErrClosed))
}

func TestClient_ClosedBeforeConnectFrame(t *testing.T) {
	url, _ := relay(t, func(conn *websocket.Conn) {})

	rec := &recorder{}
	client, err := NewDialer(url, time.Second).Dial("streamer1", rec.handlers())
	require.NoError(t, err)

	err = client.Connect(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, chat.ErrClosed))
	assert.Empty(t, rec.get())
}

func TestClient_HandshakeFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	client, err := NewDialer("ws"+strings.TrimPrefix(srv.URL, "http"), time.Second).Dial("streamer1", chat.Handlers{})
	require.NoError(t, err)

	err = client.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to dial relay")
}

func TestClient_Close(t *testing.T) {
	url, _ := relay(t, func(conn *websocket.Conn) {
		_ = conn.WriteJSON(Frame{Type: FrameConnect})
		_, _, _ = conn.ReadMessage()
	})

	connected := make(chan struct{})
	rec := &recorder{}
	h := rec.handlers()
	h.OnConnect = func(time.Time) { close(connected) }
	client, err := NewDialer(url, time.Second).Dial("streamer1", h)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- client.Connect(context.Background()) }()

	<-connected
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	assert.True(t, errors.Is(<-done, chat.ErrClosed))
	assert.Empty(t, rec.get())
}

func TestClient_ContextCancel(t *testing.T) {
	url, _ := relay(t, func(conn *websocket.Conn) {
		_ = conn.WriteJSON(Frame{Type: FrameConnect})
		_, _, _ = conn.ReadMessage()
	})

	connected := make(chan struct{})
	client, err := NewDialer(url, time.Second).Dial("streamer1", chat.Handlers{
		OnConnect: func(time.Time) { close(connected) },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Connect(ctx) }()

	<-connected
	cancel()
	assert.True(t, errors.Is(<-done, chat.ErrClosed))
}

func TestDialer_InvalidURL(t *testing.T) {
	_, err := NewDialer("://bad", time.Second).Dial("streamer1", chat.Handlers{})
	assert.Error(t, err)
}
