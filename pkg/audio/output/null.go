// ABOUTME: Sink that discards audio
// ABOUTME: Used when no audio device is wanted, counting what would have played
package output

import (
	"sync"
	"time"

	"github.com/jamradio/jamradio-go/pkg/audio"
)

// Null discards every buffer it receives
type Null struct {
	mu       sync.Mutex
	buffers  int
	duration time.Duration
	closed   bool
}

// NewNull creates a discarding sink
func NewNull() *Null {
	return &Null{}
}

// Enqueue records buf and drops it
func (n *Null) Enqueue(buf audio.Buffer) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return ErrSinkClosed
	}
	n.buffers++
	n.duration += buf.Duration()
	return nil
}

// Close marks the sink closed
func (n *Null) Close() error {
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()
	return nil
}

// Stats returns how many buffers and how much audio were discarded
func (n *Null) Stats() (int, time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.buffers, n.duration
}
