package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv keeps host environment from leaking into parsed configs.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"TWITCH_USERNAME", "TWITCH_OAUTH_TOKEN", "SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "DJEVE_TOKEN"} {
		t.Setenv(k, "")
	}
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, BackendTwitch, cfg.Chat.Backend)
	assert.Equal(t, "!신청", cfg.Session.Prefix)
	assert.Equal(t, 5*time.Second, cfg.ReconnectDelay())
	assert.Equal(t, 10*time.Second, cfg.HandshakeTimeout())
	assert.Equal(t, "JP", cfg.Spotify.Market)
	assert.Equal(t, "%s 채팅방에 연결됨", cfg.Messages.Connected)
	assert.Equal(t, "%d초 후 재연결 시도...", cfg.Messages.Reconnecting)
	assert.False(t, cfg.SpotifyEnabled())
	assert.Empty(t, cfg.Server.Token)
}

func TestParse_Values(t *testing.T) {
	clearEnv(t)

	data := `
server:
  addr: ":9090"
  token: secret
  hooks:
    on_started: ["echo started"]
chat:
  backend: websocket
  websocket:
    url: ws://localhost:7000/chat
    handshake_timeout_ms: 2000
session:
  streamer_id: streamer1
  prefix: "!req"
  reconnect_delay_ms: 1500
filters:
  blocked_user_filter:
    enabled: true
    settings:
      users: [troll]
  length_limit_filter:
    enabled: false
messages:
  entered: joined
spotify:
  client_id: id
  client_secret: secret
  market: US
`
	cfg, err := Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "secret", cfg.Server.Token)
	assert.Equal(t, []string{"echo started"}, cfg.Server.Hooks.OnStarted)
	assert.Equal(t, BackendWebSocket, cfg.Chat.Backend)
	assert.Equal(t, "ws://localhost:7000/chat", cfg.Chat.WebSocket.URL)
	assert.Equal(t, 2*time.Second, cfg.HandshakeTimeout())
	assert.Equal(t, "streamer1", cfg.Session.StreamerID)
	assert.Equal(t, "!req", cfg.Session.Prefix)
	assert.Equal(t, 1500*time.Millisecond, cfg.ReconnectDelay())
	assert.Equal(t, "joined", cfg.Messages.Entered)
	assert.Equal(t, "연결 해제됨", cfg.Messages.Disconnected)
	assert.True(t, cfg.SpotifyEnabled())
	assert.Equal(t, "US", cfg.Spotify.Market)

	assert.True(t, cfg.IsFilterEnabled("blocked_user_filter"))
	assert.False(t, cfg.IsFilterEnabled("length_limit_filter"))
	assert.False(t, cfg.IsFilterEnabled("unknown"))
	assert.Equal(t, []any{"troll"}, cfg.GetFilterSettings("blocked_user_filter")["users"])
	assert.Nil(t, cfg.GetFilterSettings("unknown"))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		errMsg string
	}{
		{
			name:   "unknown backend",
			data:   "chat:\n  backend: irc\n",
			errMsg: "Backend",
		},
		{
			name:   "websocket without url",
			data:   "chat:\n  backend: websocket\n",
			errMsg: "chat.websocket.url",
		},
		{
			name:   "twitch token without username",
			data:   "chat:\n  twitch:\n    oauth_token: oauth:abc\n",
			errMsg: "Username",
		},
		{
			name:   "negative reconnect delay",
			data:   "session:\n  reconnect_delay_ms: -1\n",
			errMsg: "ReconnectDelayMs",
		},
		{
			name:   "spotify secret without id",
			data:   "spotify:\n  client_secret: secret\n",
			errMsg: "ClientID",
		},
		{
			name:   "bad market",
			data:   "spotify:\n  market: JPN\n",
			errMsg: "Market",
		},
		{
			name:   "malformed yaml",
			data:   "server: [",
			errMsg: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParse_EnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("TWITCH_USERNAME", "djbot")
	t.Setenv("TWITCH_OAUTH_TOKEN", "oauth:from-env")
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")
	t.Setenv("DJEVE_TOKEN", "env-token")

	cfg, err := Parse([]byte("server:\n  token: file-token\n"))
	require.NoError(t, err)

	assert.Equal(t, "djbot", cfg.Chat.Twitch.Username)
	assert.Equal(t, "oauth:from-env", cfg.Chat.Twitch.OAuthToken)
	assert.Equal(t, "env-token", cfg.Server.Token)
	assert.True(t, cfg.SpotifyEnabled())
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  streamer_id: streamer1\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "streamer1", cfg.Session.StreamerID)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
