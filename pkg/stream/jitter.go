// ABOUTME: Jitter buffer holding received chunks until a fill threshold is met
// ABOUTME: Supports a fixed threshold and one that adapts to arrival jitter
package stream

import (
	"math"
	"sync"
	"time"
)

// DefaultThreshold is the minimum fill before chunks are released
const DefaultThreshold = 2

// ThresholdPolicy decides how many chunks must be buffered before the
// front one is released
type ThresholdPolicy interface {
	Threshold() int
	Observe(at time.Time)
}

// FixedThreshold always requires the same fill
type FixedThreshold int

// Threshold returns the fixed fill, never less than one
func (f FixedThreshold) Threshold() int {
	if f < 1 {
		return 1
	}
	return int(f)
}

// Observe is a no-op
func (FixedThreshold) Observe(time.Time) {}

// AdaptiveThreshold raises the fill threshold when chunk arrivals become
// irregular. It tracks a smoothed mean inter-arrival interval and a smoothed
// deviation from it, and asks for enough extra chunks to cover twice the
// deviation.
type AdaptiveThreshold struct {
	Min int
	Max int

	mu        sync.Mutex
	last      time.Time
	mean      float64 // seconds
	deviation float64 // seconds
	samples   int
}

// NewAdaptiveThreshold creates a policy bounded by min and max
func NewAdaptiveThreshold(min, max int) *AdaptiveThreshold {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	return &AdaptiveThreshold{Min: min, Max: max}
}

// smoothing weights of the running estimates
const (
	meanGain      = 1.0 / 8
	deviationGain = 1.0 / 16
)

// Observe records a chunk arrival
func (a *AdaptiveThreshold) Observe(at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.last.IsZero() {
		a.last = at
		return
	}
	interval := at.Sub(a.last).Seconds()
	a.last = at
	a.samples++

	if a.samples == 1 {
		a.mean = interval
		return
	}
	diff := math.Abs(interval - a.mean)
	a.mean += (interval - a.mean) * meanGain
	a.deviation += (diff - a.deviation) * deviationGain
}

// Threshold returns the current fill threshold within [Min, Max]
func (a *AdaptiveThreshold) Threshold() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	t := a.Min
	if a.mean > 0 {
		t += int(math.Ceil(2 * a.deviation / a.mean))
	}
	if t > a.Max {
		t = a.Max
	}
	return t
}

// JitterBuffer is a FIFO of chunks released only while its length is at
// least the policy's threshold. It is used by a single consumer.
type JitterBuffer struct {
	policy ThresholdPolicy
	queue  [][]byte
	now    func() time.Time
}

// NewJitterBuffer creates a buffer. A nil policy means
// FixedThreshold(DefaultThreshold).
func NewJitterBuffer(policy ThresholdPolicy) *JitterBuffer {
	if policy == nil {
		policy = FixedThreshold(DefaultThreshold)
	}
	return &JitterBuffer{policy: policy, now: time.Now}
}

// Push appends a chunk at the back
func (b *JitterBuffer) Push(chunk []byte) {
	b.policy.Observe(b.now())
	b.queue = append(b.queue, chunk)
}

// Pop removes and returns the front chunk if the buffer holds at least
// Threshold chunks
func (b *JitterBuffer) Pop() ([]byte, bool) {
	if len(b.queue) == 0 || len(b.queue) < b.policy.Threshold() {
		return nil, false
	}
	chunk := b.queue[0]
	b.queue[0] = nil
	b.queue = b.queue[1:]
	return chunk, true
}

// Len returns the number of buffered chunks
func (b *JitterBuffer) Len() int {
	return len(b.queue)
}

// Threshold returns the current fill threshold
func (b *JitterBuffer) Threshold() int {
	return b.policy.Threshold()
}
