// ABOUTME: Playback consumer draining the chunk channel
// ABOUTME: Buffers, decodes and enqueues audio; decode failures skip the chunk
package stream

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jamradio/jamradio-go/pkg/audio/decode"
	"github.com/jamradio/jamradio-go/pkg/audio/output"
)

// Playback consumes chunks from In in order and plays them
type Playback struct {
	In       <-chan []byte
	Decoder  decode.Decoder
	Sink     output.Sink
	Buffer   *JitterBuffer
	Observer Observer
}

// Run plays chunks until In is closed or ctx is cancelled. Chunks still
// buffered when In closes are not played. A sink failure other than the
// sink being closed is returned.
func (p *Playback) Run(ctx context.Context) error {
	if p.Buffer == nil {
		p.Buffer = NewJitterBuffer(nil)
	}
	obs := observerOrNop(p.Observer)

	for {
		select {
		case <-ctx.Done():
			return nil

		case chunk, ok := <-p.In:
			if !ok {
				log.Printf("Audio channel closed, playback stopped")
				return nil
			}

			p.Buffer.Push(chunk)
			obs.BufferDepth(p.Buffer.Len(), p.Buffer.Threshold())

			for {
				next, ready := p.Buffer.Pop()
				if !ready {
					break
				}
				err := p.play(next, obs)
				switch {
				case err == nil:
				case ctx.Err() != nil:
					return nil
				case errors.Is(err, output.ErrSinkClosed):
					log.Printf("Playback sink closed, playback stopped")
					return nil
				default:
					return err
				}
			}
		}
	}
}

func (p *Playback) play(chunk []byte, obs Observer) error {
	buf, err := p.Decoder.Decode(chunk)
	if err != nil {
		obs.DecodeFailed()
		log.Printf("Failed to decode audio chunk: %v", err)
		return nil
	}
	if len(buf.Samples) == 0 {
		return nil
	}
	obs.ChunkDecoded(buf)

	if err := p.Sink.Enqueue(buf); err != nil {
		return fmt.Errorf("playback sink: %w", err)
	}
	return nil
}
