package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_IsConnected(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateIdle, false},
		{StateConnecting, false},
		{StateConnected, true},
		{StateEnteredRoom, true},
		{StateDisconnected, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.IsConnected())
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "entered_room", StateEnteredRoom.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestManager_Config(t *testing.T) {
	m := New()
	assert.Equal(t, StateIdle, m.GetState())
	assert.False(t, m.HasConfig())
	assert.Nil(t, m.GetConfig())

	m.SetConfig(Config{StreamerID: "streamer1", Prefix: "!req"})
	require.True(t, m.HasConfig())

	c := m.GetConfig()
	c.Prefix = "mutated"
	assert.Equal(t, "!req", m.GetConfig().Prefix)

	m.SetState(StateEnteredRoom)
	assert.Equal(t, Snapshot{State: StateEnteredRoom, StreamerID: "streamer1", Prefix: "!req"}, m.Snapshot())
	assert.True(t, m.IsConnected())

	m.ClearConfig()
	assert.Equal(t, Snapshot{State: StateEnteredRoom}, m.Snapshot())
}

func TestManager_Attempt(t *testing.T) {
	m := New()
	first := m.NextAttempt()
	assert.True(t, m.IsCurrentAttempt(first))

	second := m.NextAttempt()
	assert.False(t, m.IsCurrentAttempt(first))
	assert.True(t, m.IsCurrentAttempt(second))
	assert.Greater(t, second, first)
}
