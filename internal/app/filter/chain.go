package filter

import (
	"context"
	"sync"

	"github.com/osa030/djeve/internal/domain/request"
)

// Chain executes filters in sequence.
type Chain struct {
	mu      sync.Mutex
	filters []Filter
}

// NewChain creates a new filter chain.
func NewChain() *Chain {
	return &Chain{
		filters: make([]Filter, 0),
	}
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = append(c.filters, f)
}

// Execute runs all filters in sequence.
// Returns immediately if any filter rejects the request. When every filter
// accepts, filters implementing Recorder are told about the request.
func (c *Chain) Execute(ctx context.Context, req request.SongRequest) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, f := range c.filters {
		result := f.Check(ctx, req)
		if !result.Accepted {
			return result
		}
	}

	for _, f := range c.filters {
		if r, ok := f.(Recorder); ok {
			r.Record(req)
		}
	}
	return Accept()
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Filter, len(c.filters))
	copy(out, c.filters)
	return out
}

// Len returns the number of filters in the chain.
func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.filters)
}
