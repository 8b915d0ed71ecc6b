// Package requestlist provides the ordered list of accepted song requests
// owned by the display layer.
package requestlist

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/djeve/internal/domain/request"
)

// ErrIndexOutOfRange is returned by RemoveAt for a position outside the list.
var ErrIndexOutOfRange = errors.New("index out of range")

// TimestampLayout is the layout used for timestamps in ToDisplayText.
const TimestampLayout = time.RFC3339

// List is an ordered, insertion-order list of song requests.
// It is safe for concurrent use.
type List struct {
	mu    sync.RWMutex
	items []request.SongRequest
}

// New creates an empty list.
func New() *List {
	return &List{
		items: make([]request.SongRequest, 0),
	}
}

// Append adds a request at the end of the list.
func (l *List) Append(req request.SongRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, req)
}

// RemoveAt removes the request at the given 0-based position.
// The order of the remaining requests is preserved.
func (l *List) RemoveAt(index int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.items) {
		return errors.Wrapf(ErrIndexOutOfRange, "remove %d of %d", index, len(l.items))
	}
	l.items = append(l.items[:index], l.items[index+1:]...)
	return nil
}

// Clear removes all requests.
func (l *List) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = make([]request.SongRequest, 0)
}

// Len returns the number of requests.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Items returns a copy of the requests in list order.
func (l *List) Items() []request.SongRequest {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]request.SongRequest, len(l.items))
	copy(out, l.items)
	return out
}

// At returns the request at the given 0-based position.
func (l *List) At(index int) (request.SongRequest, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index < 0 || index >= len(l.items) {
		return request.SongRequest{}, errors.Wrapf(ErrIndexOutOfRange, "get %d of %d", index, len(l.items))
	}
	return l.items[index], nil
}

// ToDisplayText renders one line per request in list order:
//
//	1. [2025-03-01T12:00:00Z] viewer: 아이유 - 좋은날
func (l *List) ToDisplayText() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	lines := make([]string, len(l.items))
	for i, req := range l.items {
		lines[i] = FormatLine(i+1, req)
	}
	return strings.Join(lines, "\n")
}

// FormatLine renders a single request at the given 1-based position.
func FormatLine(position int, req request.SongRequest) string {
	return fmt.Sprintf("%d. [%s] %s: %s", position, req.Timestamp.Format(TimestampLayout), req.Username, req.RequestText)
}
