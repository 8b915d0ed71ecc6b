// Package filter provides the filter chain for song request validation.
package filter

import (
	"context"

	"github.com/osa030/djeve/internal/domain/request"
)

// Result represents the result of a filter check.
type Result struct {
	Accepted bool
	Code     string // e.g., "blocked_user", "length_limit_exceeded", "duplicate_request"
}

// Accept returns an accepted result.
func Accept() Result {
	return Result{Accepted: true}
}

// Reject returns a rejected result with the given code.
func Reject(code string) Result {
	return Result{Accepted: false, Code: code}
}

// Filter is the interface for song request filters.
type Filter interface {
	// Name returns the filter name (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// ReturnCodes returns the codes this filter can return.
	ReturnCodes() []string
	// ValidateConfig validates and applies the filter configuration.
	ValidateConfig(settings map[string]any) error
	// Check performs the filter check.
	Check(ctx context.Context, req request.SongRequest) Result
}

// Recorder is implemented by filters that keep state about accepted requests.
type Recorder interface {
	Record(req request.SongRequest)
}

// registry holds registered filter factories.
var registry = make(map[string]func() Filter)

// Register registers a filter factory.
func Register(name string, factory func() Filter) {
	registry[name] = factory
}

// GetRegistered returns all registered filter factories.
func GetRegistered() map[string]func() Filter {
	return registry
}
