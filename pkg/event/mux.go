// ABOUTME: Event multiplexer racing the ticker, terminal input and control socket
// ABOUTME: Delivers events in order through a bounded channel with a tick-drop policy
package event

import (
	"context"
	"errors"
	"io"
	"log"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jamradio/jamradio-go/pkg/conn"
)

const (
	// DefaultTickRate is the interval between Tick events
	DefaultTickRate = 250 * time.Millisecond

	// DefaultCapacity bounds the number of undelivered events
	DefaultCapacity = 64

	// probeBackoff spaces out probes after a hard read error
	probeBackoff = 50 * time.Millisecond
)

// ErrClosed is returned by Next once the multiplexer has shut down and
// every emitted event has been consumed
var ErrClosed = errors.New("event multiplexer closed")

// Prober is the readiness probe on the control connection. *conn.Handle
// satisfies it.
type Prober interface {
	TryRead(p []byte) (int, error)
}

// State of the multiplexer
type State int32

const (
	Running State = iota
	ShuttingDown
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "shutting_down"
}

// Config holds multiplexer settings. Zero values take defaults.
type Config struct {
	TickRate time.Duration
	Capacity int

	// Optional callbacks, invoked from the multiplexer goroutine
	OnEmit func(Kind)
	OnDrop func(Kind)
}

// Multiplexer merges its sources into one ordered event stream
type Multiplexer struct {
	config Config
	probe  Prober
	input  <-chan tea.Msg

	events  chan Event
	state   atomic.Int32
	dropped atomic.Int64
}

// NewMultiplexer creates a multiplexer. probe and input may be nil, in
// which case that source never fires.
func NewMultiplexer(config Config, probe Prober, input <-chan tea.Msg) *Multiplexer {
	if config.TickRate <= 0 {
		config.TickRate = DefaultTickRate
	}
	if config.Capacity <= 0 {
		config.Capacity = DefaultCapacity
	}
	return &Multiplexer{
		config: config,
		probe:  probe,
		input:  input,
		events: make(chan Event, config.Capacity),
	}
}

// Run drives the multiplexer until ctx is cancelled. The event channel is
// closed on return so Next observes shutdown.
func (m *Multiplexer) Run(ctx context.Context) error {
	defer close(m.events)
	defer m.state.Store(int32(ShuttingDown))

	ticker := time.NewTicker(m.config.TickRate)
	defer ticker.Stop()

	var netCh chan Event
	if m.probe != nil {
		netCh = make(chan Event)
		done := make(chan struct{})
		defer func() { <-done }()
		go func() {
			defer close(done)
			m.probeLoop(ctx, netCh)
		}()
	}

	input := m.input
	for {
		// Cancellation wins over any source that is also ready
		if ctx.Err() != nil {
			return nil
		}

		var ev Event
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			ev = Event{Kind: Tick}

		case ev = <-netCh:

		case msg, ok := <-input:
			if !ok {
				input = nil
				continue
			}
			var keep bool
			if ev, keep = fromTerminal(msg); !keep {
				continue
			}
		}

		if !m.emit(ctx, ev) {
			return nil
		}
	}
}

// emit delivers ev, applying the overflow policy. It returns false when ctx
// was cancelled first.
func (m *Multiplexer) emit(ctx context.Context, ev Event) bool {
	if ev.Kind == Tick {
		select {
		case m.events <- ev:
			m.emitted(ev.Kind)
		default:
			m.dropped.Add(1)
			if m.config.OnDrop != nil {
				m.config.OnDrop(ev.Kind)
			}
		}
		return true
	}

	select {
	case <-ctx.Done():
		return false
	case m.events <- ev:
		m.emitted(ev.Kind)
		return true
	}
}

func (m *Multiplexer) emitted(k Kind) {
	if m.config.OnEmit != nil {
		m.config.OnEmit(k)
	}
}

// probeLoop polls the control connection and forwards data as
// NetworkUpdate events. It stops when the connection is closed at either
// end or ctx is cancelled.
func (m *Multiplexer) probeLoop(ctx context.Context, out chan<- Event) {
	for ctx.Err() == nil {
		ev := Event{Kind: NetworkUpdate}
		n, err := m.probe.TryRead(ev.Payload[:])

		switch {
		case err == nil && n == 0:
			// Spurious wakeup
			continue

		case err == nil:
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}

		case errors.Is(err, conn.ErrWouldBlock):
			continue

		case errors.Is(err, conn.ErrConnectionClosed):
			return

		case errors.Is(err, io.EOF):
			log.Printf("Control connection closed by server, no further updates")
			return

		default:
			log.Printf("Control socket read failed: %v", err)
			select {
			case <-time.After(probeBackoff):
			case <-ctx.Done():
				return
			}
		}
	}
}

// Next returns the next event in emission order. It blocks until an event
// is available, ctx is done, or the multiplexer has shut down and drained.
func (m *Multiplexer) Next(ctx context.Context) (Event, error) {
	select {
	case <-ctx.Done():
		return Event{}, ctx.Err()
	case ev, ok := <-m.events:
		if !ok {
			return Event{}, ErrClosed
		}
		return ev, nil
	}
}

// State reports the current lifecycle state
func (m *Multiplexer) State() State {
	return State(m.state.Load())
}

// Dropped returns how many Tick events were discarded on overflow
func (m *Multiplexer) Dropped() int64 {
	return m.dropped.Load()
}
