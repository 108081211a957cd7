// ABOUTME: Pipeline observation hooks
// ABOUTME: Lets callers count chunks, decode failures and buffer depth
package stream

import "github.com/jamradio/jamradio-go/pkg/audio"

// Observer receives pipeline events. Implementations must be safe for use
// from the ingest and playback goroutines at once.
type Observer interface {
	ChunkReceived(bytes int)
	ChunkDecoded(buf audio.Buffer)
	DecodeFailed()
	BufferDepth(chunks, threshold int)
}

type nopObserver struct{}

func (nopObserver) ChunkReceived(int)         {}
func (nopObserver) ChunkDecoded(audio.Buffer) {}
func (nopObserver) DecodeFailed()             {}
func (nopObserver) BufferDepth(int, int)      {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
