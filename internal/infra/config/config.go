// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Chat backends.
const (
	BackendTwitch    = "twitch"
	BackendWebSocket = "websocket"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig            `yaml:"server"`
	Chat     ChatConfig              `yaml:"chat"`
	Session  SessionConfig           `yaml:"session"`
	Filters  map[string]FilterConfig `yaml:"filters"`
	Messages MessagesConfig          `yaml:"messages"`
	Spotify  SpotifyConfig           `yaml:"spotify"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr  string      `yaml:"addr" default:":8080"`
	Token string      `yaml:"token"`
	Hooks HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// ChatConfig selects and configures the chat backend.
type ChatConfig struct {
	Backend   string          `yaml:"backend" default:"twitch" validate:"oneof=twitch websocket"`
	Twitch    TwitchConfig    `yaml:"twitch"`
	WebSocket WebSocketConfig `yaml:"websocket"`
}

// TwitchConfig represents Twitch IRC credentials.
// Without an OAuth token the client joins anonymously.
type TwitchConfig struct {
	Username   string `yaml:"username" validate:"required_with=OAuthToken"`
	OAuthToken string `yaml:"oauth_token"`
}

// WebSocketConfig represents the websocket relay backend.
type WebSocketConfig struct {
	URL                string `yaml:"url" validate:"omitempty,url"`
	HandshakeTimeoutMs int    `yaml:"handshake_timeout_ms" default:"10000" validate:"gte=0,lte=120000"`
}

// SessionConfig represents the chat session configuration.
type SessionConfig struct {
	StreamerID       string `yaml:"streamer_id"`
	Prefix           string `yaml:"prefix" default:"!신청"`
	ReconnectDelayMs int    `yaml:"reconnect_delay_ms" default:"5000" validate:"gt=0,lte=600000"`
}

// FilterConfig represents a filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// MessagesConfig represents connection status texts.
type MessagesConfig struct {
	Connected    string `yaml:"connected" default:"%s 채팅방에 연결됨"`
	Entered      string `yaml:"entered" default:"채팅방 입장 완료"`
	StreamEnded  string `yaml:"stream_ended" default:"방송이 종료되었습니다"`
	ConnectError string `yaml:"connect_error" default:"연결 오류: %s"`
	Reconnecting string `yaml:"reconnecting" default:"%d초 후 재연결 시도..."`
	Disconnected string `yaml:"disconnected" default:"연결 해제됨"`
}

// SpotifyConfig represents Spotify API configuration.
// Catalog lookup is enabled when both client credentials are set.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id" validate:"required_with=ClientSecret"`
	ClientSecret string `yaml:"client_secret" validate:"required_with=ClientID"`
	Market       string `yaml:"market" validate:"omitempty,len=2" default:"JP"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse parses configuration from YAML data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("TWITCH_USERNAME"); v != "" {
		c.Chat.Twitch.Username = v
	}
	if v := os.Getenv("TWITCH_OAUTH_TOKEN"); v != "" {
		c.Chat.Twitch.OAuthToken = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("DJEVE_TOKEN"); v != "" {
		c.Server.Token = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if c.Chat.Backend == BackendWebSocket && c.Chat.WebSocket.URL == "" {
		return errors.New("chat.websocket.url is required for the websocket backend")
	}

	return nil
}

// ReconnectDelay returns the automatic reconnect delay.
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.Session.ReconnectDelayMs) * time.Millisecond
}

// HandshakeTimeout returns the websocket handshake timeout.
func (c *Config) HandshakeTimeout() time.Duration {
	return time.Duration(c.Chat.WebSocket.HandshakeTimeoutMs) * time.Millisecond
}

// SpotifyEnabled reports whether catalog lookup credentials are configured.
func (c *Config) SpotifyEnabled() bool {
	return c.Spotify.ClientID != "" && c.Spotify.ClientSecret != ""
}

// IsFilterEnabled checks if a filter is enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return false
}

// GetFilterSettings returns the settings for a filter.
func (c *Config) GetFilterSettings(filterName string) map[string]any {
	if f, ok := c.Filters[filterName]; ok {
		return f.Settings
	}
	return nil
}
