package filter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/djeve/internal/domain/request"
)

func songRequest(t *testing.T, comment, username, userID string) request.SongRequest {
	t.Helper()
	parsed, ok := request.Parse(comment, "!req")
	require.True(t, ok)
	return parsed.WithSender(time.Now(), username, userID)
}

func TestBlockedUserFilter_Check(t *testing.T) {
	tests := []struct {
		name         string
		blocked      []any
		username     string
		userID       string
		wantAccepted bool
		wantCode     string
	}{
		{
			name:         "not blocked",
			blocked:      []any{"troll"},
			username:     "viewer",
			userID:       "u1",
			wantAccepted: true,
		},
		{
			name:         "blocked by username",
			blocked:      []any{"Troll"},
			username:     "troll",
			userID:       "u2",
			wantAccepted: false,
			wantCode:     "blocked_user",
		},
		{
			name:         "blocked by user id",
			blocked:      []any{"u3"},
			username:     "someone",
			userID:       "u3",
			wantAccepted: false,
			wantCode:     "blocked_user",
		},
		{
			name:         "empty block list",
			blocked:      []any{},
			username:     "viewer",
			userID:       "u1",
			wantAccepted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &BlockedUserFilter{}
			require.NoError(t, f.ValidateConfig(map[string]any{"users": tt.blocked}))

			result := f.Check(context.Background(), songRequest(t, "!req A - B", tt.username, tt.userID))

			assert.Equal(t, tt.wantAccepted, result.Accepted)
			if !tt.wantAccepted {
				assert.Equal(t, tt.wantCode, result.Code)
			}
		})
	}
}

func TestLengthLimitFilter_Check(t *testing.T) {
	tests := []struct {
		name         string
		settings     map[string]any
		comment      string
		shouldReject bool
	}{
		{
			name:     "within limits",
			settings: map[string]any{"min_chars": 2, "max_chars": 10},
			comment:  "!req 좋은날",
		},
		{
			name:         "empty request rejected by default min",
			settings:     map[string]any{},
			comment:      "!req",
			shouldReject: true,
		},
		{
			name:         "too long",
			settings:     map[string]any{"max_chars": 5},
			comment:      "!req 아이유 - 좋은날",
			shouldReject: true,
		},
		{
			name:     "multi-byte counted as characters",
			settings: map[string]any{"max_chars": 3},
			comment:  "!req 좋은날",
		},
		{
			name:     "no upper limit",
			settings: map[string]any{"max_chars": 0},
			comment:  "!req a very long request text that goes on",
		},
		{
			name:     "string settings are decoded",
			settings: map[string]any{"max_chars": "3"},
			comment:  "!req abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewLengthLimitFilter()
			require.NoError(t, f.ValidateConfig(tt.settings))

			result := f.Check(context.Background(), songRequest(t, tt.comment, "viewer", "u1"))
			assert.Equal(t, !tt.shouldReject, result.Accepted)
			if tt.shouldReject {
				assert.Equal(t, "length_limit_exceeded", result.Code)
			}
		})
	}
}

func TestLengthLimitFilter_ValidateConfig(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		wantErr  bool
	}{
		{name: "defaults", settings: nil},
		{name: "valid range", settings: map[string]any{"min_chars": 1, "max_chars": 50}},
		{name: "min greater than max", settings: map[string]any{"min_chars": 10, "max_chars": 5}, wantErr: true},
		{name: "negative max", settings: map[string]any{"max_chars": -1}, wantErr: true},
		{name: "not a number", settings: map[string]any{"max_chars": "lots"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewLengthLimitFilter().ValidateConfig(tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLengthLimitFilter_Unconfigured(t *testing.T) {
	result := NewLengthLimitFilter().Check(context.Background(), songRequest(t, "!req", "viewer", "u1"))
	assert.True(t, result.Accepted)
}

func TestDuplicateRequestFilter(t *testing.T) {
	tests := []struct {
		name         string
		previous     string
		comment      string
		shouldReject bool
	}{
		{
			name:         "same artist and title",
			previous:     "!req 아이유 - 좋은날",
			comment:      "!req 아이유 - 좋은날",
			shouldReject: true,
		},
		{
			name:         "case and spacing differ",
			previous:     "!req Queen - Bohemian Rhapsody",
			comment:      "!req queen -  bohemian   rhapsody",
			shouldReject: true,
		},
		{
			name:         "live version of same song",
			previous:     "!req Queen - Bohemian Rhapsody",
			comment:      "!req Queen - Bohemian Rhapsody (Live)",
			shouldReject: true,
		},
		{
			name:         "title only matches earlier artist request",
			previous:     "!req 아이유 - 좋은날",
			comment:      "!req 좋은날",
			shouldReject: true,
		},
		{
			name:     "cover by another artist",
			previous: "!req Jeff Buckley - Hallelujah",
			comment:  "!req Leonard Cohen - Hallelujah",
		},
		{
			name:     "different song",
			previous: "!req 아이유 - 좋은날",
			comment:  "!req 아이유 - 밤편지",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := NewChain()
			chain.Add(NewDuplicateRequestFilter())

			first := chain.Execute(context.Background(), songRequest(t, tt.previous, "a", "1"))
			require.True(t, first.Accepted)

			result := chain.Execute(context.Background(), songRequest(t, tt.comment, "b", "2"))
			assert.Equal(t, !tt.shouldReject, result.Accepted)
			if tt.shouldReject {
				assert.Equal(t, "duplicate_request", result.Code)
			}
		})
	}
}

func TestDuplicateRequestFilter_Window(t *testing.T) {
	f := NewDuplicateRequestFilter()
	require.NoError(t, f.ValidateConfig(map[string]any{"window": 2}))

	chain := NewChain()
	chain.Add(f)
	ctx := context.Background()

	require.True(t, chain.Execute(ctx, songRequest(t, "!req A - one", "a", "1")).Accepted)
	require.True(t, chain.Execute(ctx, songRequest(t, "!req A - two", "a", "1")).Accepted)
	require.True(t, chain.Execute(ctx, songRequest(t, "!req A - three", "a", "1")).Accepted)

	// "one" fell out of the window
	assert.True(t, chain.Execute(ctx, songRequest(t, "!req A - one", "a", "1")).Accepted)
	assert.False(t, chain.Execute(ctx, songRequest(t, "!req A - three", "a", "1")).Accepted)
}

func TestChain_RejectedRequestIsNotRecorded(t *testing.T) {
	blocked := &BlockedUserFilter{}
	require.NoError(t, blocked.ValidateConfig(map[string]any{"users": []any{"troll"}}))

	chain := NewChain()
	chain.Add(blocked)
	chain.Add(NewDuplicateRequestFilter())
	ctx := context.Background()

	result := chain.Execute(ctx, songRequest(t, "!req A - B", "troll", "t"))
	assert.False(t, result.Accepted)
	assert.Equal(t, "blocked_user", result.Code)

	assert.True(t, chain.Execute(ctx, songRequest(t, "!req A - B", "viewer", "v")).Accepted)
	assert.Equal(t, 2, chain.Len())
}

func TestChain_Empty(t *testing.T) {
	result := NewChain().Execute(context.Background(), songRequest(t, "!req A - B", "viewer", "v"))
	assert.True(t, result.Accepted)
}

func TestRegistry(t *testing.T) {
	registered := GetRegistered()
	for _, name := range []string{"blocked_user_filter", "length_limit_filter", "duplicate_request_filter"} {
		factory, ok := registered[name]
		require.True(t, ok, name)
		f := factory()
		assert.Equal(t, name, f.Name())
		assert.NotEmpty(t, f.ReturnCodes())
		assert.NotEmpty(t, f.Description())
	}
}
