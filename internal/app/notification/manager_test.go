package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/djeve/internal/domain/request"
)

func TestManager_BroadcastOrder(t *testing.T) {
	m := NewManager()
	a := m.Subscribe()
	b := m.Subscribe()
	require.Equal(t, 2, m.SubscriberCount())

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m.Broadcast(Status(KindConnected, "connected", at))
	m.Broadcast(Status(KindEntered, "entered", at))
	parsed, _ := request.Parse("!req A - B", "!req")
	m.Broadcast(SongRequest(parsed.WithSender(at, "viewer", "u1")))

	for _, sub := range []*Subscription{a, b} {
		got := []Kind{}
		seq := []uint64{}
		for i := 0; i < 3; i++ {
			ev := <-sub.C
			got = append(got, ev.Kind)
			seq = append(seq, ev.SequenceNo)
		}
		assert.Equal(t, []Kind{KindConnected, KindEntered, KindSongRequest}, got)
		assert.Equal(t, []uint64{1, 2, 3}, seq)
	}
	assert.Equal(t, uint64(3), m.CurrentSequenceNo())
}

func TestManager_SlowSubscriberDoesNotBlock(t *testing.T) {
	m := NewManagerWithBuffer(1)
	sub := m.Subscribe()

	m.Broadcast(Status(KindConnected, "first", time.Time{}))
	m.Broadcast(Status(KindEntered, "second", time.Time{}))

	ev := <-sub.C
	assert.Equal(t, "first", ev.Message)
	select {
	case ev := <-sub.C:
		t.Fatalf("unexpected event: %+v", ev)
	default:
	}
}

func TestManager_Unsubscribe(t *testing.T) {
	m := NewManager()
	sub := m.Subscribe()
	m.Unsubscribe(sub.ID)
	m.Unsubscribe(sub.ID)

	_, open := <-sub.C
	assert.False(t, open)
	assert.Equal(t, 0, m.SubscriberCount())

	m.Broadcast(Status(KindDisconnected, "nobody listening", time.Time{}))
}

func TestManager_Close(t *testing.T) {
	m := NewManager()
	a := m.Subscribe()
	b := m.Subscribe()
	m.Close()

	_, openA := <-a.C
	_, openB := <-b.C
	assert.False(t, openA)
	assert.False(t, openB)
	assert.Equal(t, 0, m.SubscriberCount())
}

func TestKind_IsStatus(t *testing.T) {
	for _, k := range []Kind{KindConnected, KindEntered, KindDisconnected, KindError, KindReconnecting} {
		assert.True(t, k.IsStatus(), k)
	}
	assert.False(t, KindSongRequest.IsStatus())
}

func TestSongRequest_CopiesRequest(t *testing.T) {
	parsed, _ := request.Parse("!req A - B", "!req")
	ev := SongRequest(parsed)
	parsed.Artist = "changed"
	require.NotNil(t, ev.Request)
	assert.Equal(t, "A", ev.Request.Artist)
}
