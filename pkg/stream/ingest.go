// ABOUTME: Audio ingest task reading the audio socket
// ABOUTME: Sends each received chunk on a bounded channel with back-pressure
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
)

const (
	// DefaultChunkSize matches the server's send size
	DefaultChunkSize = 10000

	// DefaultQueueDepth is the capacity of the chunk channel
	DefaultQueueDepth = 32
)

// Ingest reads the audio connection and forwards chunks to Out. It owns
// Conn: when Conn is an io.Closer it is closed on cancellation so a
// blocked read returns.
type Ingest struct {
	Conn      io.Reader
	Out       chan<- []byte
	ChunkSize int
	Observer  Observer
}

// Run reads until the stream ends, ctx is cancelled or a read fails. Out is
// closed on return. End of stream and cancellation return nil.
func (in *Ingest) Run(ctx context.Context) error {
	defer close(in.Out)

	if c, ok := in.Conn.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { c.Close() })
		defer stop()
	}

	size := in.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	obs := observerOrNop(in.Observer)
	buf := make([]byte, size)

	for {
		n, err := in.Conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			obs.ChunkReceived(n)

			select {
			case in.Out <- chunk:
			case <-ctx.Done():
				return nil
			}
		}

		switch {
		case err == nil && n == 0:
			log.Printf("Audio stream closed")
			return nil

		case err == nil:
			continue

		case ctx.Err() != nil:
			return nil

		case errors.Is(err, io.EOF):
			log.Printf("Audio stream closed")
			return nil
		}

		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			continue
		}

		log.Printf("Audio stream read failed: %v", err)
		return fmt.Errorf("audio stream read: %w", err)
	}
}
