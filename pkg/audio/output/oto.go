// ABOUTME: Oto-based playback sink
// ABOUTME: Streams converted PCM through a persistent oto player with software volume
package output

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
	"github.com/jamradio/jamradio-go/pkg/audio"
)

// ErrSinkClosed is returned by Enqueue after Close
var ErrSinkClosed = errors.New("playback sink closed")

// Oto plays audio through the oto library. The device is opened on the
// first Enqueue unless a format was fixed up front; later buffers with a
// different rate are resampled since oto allows one context per process.
type Oto struct {
	mu         sync.Mutex
	otoCtx     *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	conv       converter
	ready      bool
	closed     bool

	// Device format; zero means take it from the first buffer
	sampleRate int
	channels   int

	volume atomic.Int32
	muted  atomic.Bool
}

// NewOto creates an oto sink. Zero sampleRate or channels defer the choice
// to the first enqueued buffer.
func NewOto(sampleRate, channels int) *Oto {
	o := &Oto{
		sampleRate: sampleRate,
		channels:   channels,
	}
	o.volume.Store(100)
	return o
}

// Open initializes the output device
func (o *Oto) Open(sampleRate, channels int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.openLocked(sampleRate, channels)
}

func (o *Oto) openLocked(sampleRate, channels int) error {
	if o.closed {
		return ErrSinkClosed
	}

	// If already initialized, keep the existing context
	if o.otoCtx != nil {
		if o.sampleRate != sampleRate || o.channels != channels {
			log.Printf("Audio device stays at %dHz %dch, converting from %dHz %dch",
				o.sampleRate, o.channels, sampleRate, channels)
		}
		return nil
	}

	if channels > 2 {
		channels = 2
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.sampleRate = sampleRate
	o.channels = channels
	o.conv = converter{rate: sampleRate, channels: channels}

	// Persistent player fed by a pipe keeps playback gapless
	o.pipeReader, o.pipeWriter = io.Pipe()
	o.player = o.otoCtx.NewPlayer(o.pipeReader)
	o.player.Play()

	o.ready = true

	log.Printf("Audio output initialized: %dHz, %d channels", sampleRate, channels)

	return nil
}

// Enqueue converts buf to the device format and writes it to the player.
// It blocks until the player has taken the bytes.
func (o *Oto) Enqueue(buf audio.Buffer) error {
	if len(buf.Samples) == 0 {
		return nil
	}

	o.mu.Lock()
	if !o.ready {
		rate, channels := o.sampleRate, o.channels
		if rate == 0 {
			rate = buf.Format.SampleRate
		}
		if channels == 0 {
			channels = buf.Format.Channels
		}
		if err := o.openLocked(rate, channels); err != nil {
			o.mu.Unlock()
			return err
		}
	}
	if o.closed {
		o.mu.Unlock()
		return ErrSinkClosed
	}
	pcm := o.conv.convert(buf, int(o.volume.Load()), o.muted.Load())
	w := o.pipeWriter
	o.mu.Unlock()

	// Written outside the lock so Close can interrupt it
	if _, err := w.Write(pcm); err != nil {
		if errors.Is(err, io.ErrClosedPipe) {
			return ErrSinkClosed
		}
		return fmt.Errorf("pipe write failed: %w", err)
	}

	return nil
}

// Close releases output resources
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true

	if o.pipeWriter != nil {
		o.pipeWriter.Close()
	}
	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
	if o.pipeReader != nil {
		o.pipeReader.Close()
	}
	if o.otoCtx != nil {
		o.otoCtx.Suspend()
	}
	o.ready = false
	return nil
}

// SetVolume sets the volume (0-100)
func (o *Oto) SetVolume(volume int) {
	volume = clampVolume(volume)
	o.volume.Store(int32(volume))
	log.Printf("Volume set to %d", volume)
}

// Volume returns current volume
func (o *Oto) Volume() int {
	return int(o.volume.Load())
}

// SetMuted sets mute state
func (o *Oto) SetMuted(muted bool) {
	o.muted.Store(muted)
	log.Printf("Muted: %v", muted)
}

// Muted returns mute state
func (o *Oto) Muted() bool {
	return o.muted.Load()
}
