// ABOUTME: Mutex-guarded socket handle shared by the multiplexer and control loop
// ABOUTME: Provides atomic writes, single reads, readiness probes and shutdown
package conn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"
)

// DefaultProbeWindow bounds how long TryRead waits for readiness
const DefaultProbeWindow = 10 * time.Millisecond

var (
	// ErrConnectionClosed is returned by every operation after Shutdown
	ErrConnectionClosed = errors.New("connection closed")

	// ErrWouldBlock means no data was ready within the probe window
	ErrWouldBlock = errors.New("operation would block")
)

// Handle is a shareable wrapper around one socket. Copies of the pointer
// share the same lock and transport.
type Handle struct {
	conn        net.Conn
	mu          sync.Mutex
	probeWindow time.Duration

	closeOnce sync.Once
	closed    chan struct{}
}

// New wraps an established connection
func New(c net.Conn) *Handle {
	return &Handle{
		conn:        c,
		probeWindow: DefaultProbeWindow,
		closed:      make(chan struct{}),
	}
}

// Dial connects to addr over TCP and wraps the connection
func Dial(ctx context.Context, addr string) (*Handle, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s failed: %w", addr, err)
	}
	return New(c), nil
}

// SetProbeWindow changes how long TryRead waits for data
func (h *Handle) SetProbeWindow(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if d <= 0 {
		d = DefaultProbeWindow
	}
	h.probeWindow = d
}

// Acquire takes exclusive access to the handle. The returned func releases
// it and is safe to defer.
func (h *Handle) Acquire() (release func()) {
	h.mu.Lock()
	var once sync.Once
	return func() { once.Do(h.mu.Unlock) }
}

// WriteAll writes p in full. Concurrent writers are serialised, so the
// bytes of one call are contiguous on the wire.
func (h *Handle) WriteAll(p []byte) error {
	release := h.Acquire()
	defer release()

	if h.isClosed() {
		return ErrConnectionClosed
	}

	for len(p) > 0 {
		n, err := h.conn.Write(p)
		if err != nil {
			return h.wrapErr("write", err)
		}
		p = p[n:]
	}
	return nil
}

// ReadOnce performs a single blocking read
func (h *Handle) ReadOnce(p []byte) (int, error) {
	release := h.Acquire()
	defer release()

	if h.isClosed() {
		return 0, ErrConnectionClosed
	}

	n, err := h.conn.Read(p)
	if err != nil && n == 0 {
		return 0, h.wrapErr("read", err)
	}
	return n, nil
}

// TryRead waits at most the probe window for data. It returns ErrWouldBlock
// when nothing arrived, io.EOF when the peer closed the stream, and
// ErrConnectionClosed after Shutdown.
func (h *Handle) TryRead(p []byte) (int, error) {
	release := h.Acquire()
	defer release()

	if h.isClosed() {
		return 0, ErrConnectionClosed
	}

	if err := h.conn.SetReadDeadline(time.Now().Add(h.probeWindow)); err != nil {
		return 0, h.wrapErr("set deadline", err)
	}
	defer h.conn.SetReadDeadline(time.Time{})

	n, err := h.conn.Read(p)
	if n > 0 {
		return n, nil
	}
	if err == nil {
		return 0, nil
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return 0, ErrWouldBlock
	}
	if errors.Is(err, io.EOF) {
		return 0, io.EOF
	}
	return 0, h.wrapErr("read", err)
}

// Shutdown closes the transport. It is idempotent; pending and future
// operations fail with ErrConnectionClosed.
func (h *Handle) Shutdown() error {
	var err error
	h.closeOnce.Do(func() {
		close(h.closed)
		err = h.conn.Close()
		log.Printf("Connection to %s shut down", h.conn.RemoteAddr())
	})
	return err
}

// RemoteAddr returns the peer address for logging
func (h *Handle) RemoteAddr() string {
	return h.conn.RemoteAddr().String()
}

func (h *Handle) isClosed() bool {
	select {
	case <-h.closed:
		return true
	default:
		return false
	}
}

// wrapErr maps transport failures after Shutdown onto ErrConnectionClosed
func (h *Handle) wrapErr(op string, err error) error {
	if h.isClosed() || errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("%s: %w", op, ErrConnectionClosed)
	}
	return fmt.Errorf("%s: %w", op, err)
}
