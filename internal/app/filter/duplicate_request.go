package filter

import (
	"context"
	"regexp"
	"strings"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/djeve/internal/domain/request"
)

// DuplicateRequestConfig represents the configuration for DuplicateRequestFilter.
type DuplicateRequestConfig struct {
	Window int `yaml:"window" mapstructure:"window" default:"20" validate:"gte=1,lte=1000"`
}

// DuplicateRequestFilter rejects a request whose song was among the last
// Window accepted requests.
// Detects:
// - Same normalized title and artist
// - Same normalized title when either side has no artist
// Excludes:
// - Covers (same title, different artists)
type DuplicateRequestFilter struct {
	mu     sync.Mutex
	window int
	recent []songKey
}

type songKey struct {
	artist string
	title  string
}

// NewDuplicateRequestFilter creates a new duplicate request filter.
func NewDuplicateRequestFilter() *DuplicateRequestFilter {
	return &DuplicateRequestFilter{window: 20}
}

// Name returns the filter name.
func (f *DuplicateRequestFilter) Name() string {
	return "duplicate_request_filter"
}

// Description returns the filter description.
func (f *DuplicateRequestFilter) Description() string {
	return "Rejects a song already requested recently (live/remaster variants included); covers allowed"
}

// ReturnCodes returns possible return codes.
func (f *DuplicateRequestFilter) ReturnCodes() []string {
	return []string{"duplicate_request"}
}

// ValidateConfig validates the filter configuration.
func (f *DuplicateRequestFilter) ValidateConfig(settings map[string]any) error {
	var config DuplicateRequestConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}

	f.mu.Lock()
	f.window = config.Window
	f.mu.Unlock()
	zlog.Info().Msgf("duplicate request filter config: %+v", config)
	return nil
}

// Check checks if the request duplicates a recent one.
func (f *DuplicateRequestFilter) Check(ctx context.Context, req request.SongRequest) Result {
	key := keyOf(req)
	if key.title == "" {
		return Accept()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, k := range f.recent {
		if k.title != key.title {
			continue
		}
		if k.artist == "" || key.artist == "" || k.artist == key.artist {
			return Reject("duplicate_request")
		}
	}
	return Accept()
}

// Record remembers an accepted request.
func (f *DuplicateRequestFilter) Record(req request.SongRequest) {
	key := keyOf(req)
	if key.title == "" {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.recent = append(f.recent, key)
	if len(f.recent) > f.window {
		f.recent = f.recent[len(f.recent)-f.window:]
	}
}

func keyOf(req request.SongRequest) songKey {
	return songKey{
		artist: normalizeName(req.Artist),
		title:  normalizeTitle(req.SongTitle),
	}
}

var (
	versionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\s*\(.*?remaster.*?\)`), // "(Remastered 2023)"
		regexp.MustCompile(`\s*\[.*?remaster.*?\]`), // "[Remastered]"
		regexp.MustCompile(`\s*\(.*?version\)`),     // "(Single Version)"
		regexp.MustCompile(`\s*\(.*?edit\)`),        // "(Radio Edit)"
		regexp.MustCompile(`\s*\(live\)`),           // "(Live)"
		regexp.MustCompile(`\s*\(mr\)`),             // "(MR)"
	}
	spacePattern = regexp.MustCompile(`\s+`)
)

// normalizeTitle removes version details from a song title.
func normalizeTitle(title string) string {
	normalized := strings.ToLower(title)
	for _, pattern := range versionPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}
	return normalizeName(normalized)
}

// normalizeName lowercases and collapses whitespace.
func normalizeName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = spacePattern.ReplaceAllString(normalized, " ")
	return strings.TrimRight(normalized, " -")
}

func init() {
	Register("duplicate_request_filter", func() Filter {
		return NewDuplicateRequestFilter()
	})
}
