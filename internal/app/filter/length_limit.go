package filter

import (
	"context"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/djeve/internal/domain/request"
)

// LengthLimitConfig represents the configuration for LengthLimitFilter.
type LengthLimitConfig struct {
	MinChars int `yaml:"min_chars" mapstructure:"min_chars" default:"1" validate:"gte=0"`
	MaxChars int `yaml:"max_chars" mapstructure:"max_chars" validate:"gte=0"`
}

// LengthLimitFilter checks that the request text length is within limits.
// Lengths are counted in characters, not bytes.
type LengthLimitFilter struct {
	config *LengthLimitConfig
}

// NewLengthLimitFilter creates a new length limit filter.
func NewLengthLimitFilter() *LengthLimitFilter {
	return &LengthLimitFilter{}
}

func (f *LengthLimitFilter) Name() string {
	return "length_limit_filter"
}

func (f *LengthLimitFilter) Description() string {
	return "Checks if request text length is within allowed limits"
}

func (f *LengthLimitFilter) ReturnCodes() []string {
	return []string{"length_limit_exceeded"}
}

func (f *LengthLimitFilter) ValidateConfig(settings map[string]any) error {
	var config LengthLimitConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}

	// max_chars of 0 means no upper limit
	if config.MaxChars > 0 && config.MinChars > config.MaxChars {
		return errors.New("min_chars cannot be greater than max_chars")
	}
	f.config = &config
	zlog.Info().Msgf("length limit filter config: %+v", config)
	return nil
}

func (f *LengthLimitFilter) Check(ctx context.Context, req request.SongRequest) Result {
	if f.config == nil {
		return Accept()
	}

	n := utf8.RuneCountInString(req.RequestText)
	if n < f.config.MinChars {
		return Reject("length_limit_exceeded")
	}
	if f.config.MaxChars > 0 && n > f.config.MaxChars {
		return Reject("length_limit_exceeded")
	}
	return Accept()
}

func init() {
	Register("length_limit_filter", func() Filter {
		return &LengthLimitFilter{}
	})
}
