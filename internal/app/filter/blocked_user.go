package filter

import (
	"context"
	"strings"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/djeve/internal/domain/request"
)

// BlockedUserConfig represents the configuration for BlockedUserFilter.
type BlockedUserConfig struct {
	Users []string `yaml:"users" mapstructure:"users"`
}

// BlockedUserFilter rejects requests from listed users.
// Entries match either the user ID or the username, case-insensitively.
type BlockedUserFilter struct {
	blocked map[string]struct{}
}

func (f *BlockedUserFilter) Name() string {
	return "blocked_user_filter"
}

func (f *BlockedUserFilter) Description() string {
	return "Rejects requests from blocked users"
}

func (f *BlockedUserFilter) ReturnCodes() []string {
	return []string{"blocked_user"}
}

func (f *BlockedUserFilter) ValidateConfig(settings map[string]any) error {
	var config BlockedUserConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}

	f.blocked = make(map[string]struct{}, len(config.Users))
	for _, u := range config.Users {
		u = strings.ToLower(strings.TrimSpace(u))
		if u != "" {
			f.blocked[u] = struct{}{}
		}
	}
	zlog.Info().Msgf("blocked user filter config: users=%d", len(f.blocked))
	return nil
}

func (f *BlockedUserFilter) Check(ctx context.Context, req request.SongRequest) Result {
	if _, ok := f.blocked[strings.ToLower(req.UserID)]; ok {
		return Reject("blocked_user")
	}
	if _, ok := f.blocked[strings.ToLower(req.Username)]; ok {
		return Reject("blocked_user")
	}
	return Accept()
}

func init() {
	Register("blocked_user_filter", func() Filter {
		return &BlockedUserFilter{}
	})
}
