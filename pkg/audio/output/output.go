// ABOUTME: Playback sink interface definition
// ABOUTME: Shared conversion from decoded buffers to device-ready PCM bytes
package output

import (
	"encoding/binary"

	"github.com/jamradio/jamradio-go/pkg/audio"
	"github.com/jamradio/jamradio-go/pkg/audio/resample"
)

// Sink accepts decoded audio for playback
type Sink interface {
	// Enqueue queues buf behind previously enqueued audio. It may block
	// while the device catches up.
	Enqueue(buf audio.Buffer) error

	// Close releases output resources and unblocks a pending Enqueue
	Close() error
}

// VolumeControl is implemented by sinks with software volume
type VolumeControl interface {
	SetVolume(volume int)
	Volume() int
	SetMuted(muted bool)
	Muted() bool
}

// converter maps decoded buffers onto a fixed device format
type converter struct {
	rate      int
	channels  int
	resampler *resample.Resampler
}

// convert returns 16-bit little-endian PCM at the device rate and channel
// count with volume applied
func (c *converter) convert(buf audio.Buffer, volume int, muted bool) []byte {
	samples := remapChannels(buf.Samples, buf.Format.Channels, c.channels)

	if rate := buf.Format.SampleRate; rate > 0 && rate != c.rate {
		if c.resampler == nil || c.resampler.InputRate() != rate {
			c.resampler = resample.New(rate, c.rate, c.channels)
		}
		samples = c.resampler.Resample(samples)
	} else {
		c.resampler = nil
	}

	samples = applyVolume(samples, volume, muted)

	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(audio.SampleToInt16(s)))
	}
	return out
}

// remapChannels duplicates mono into every output channel and drops
// channels the device does not have
func remapChannels(samples []int32, from, to int) []int32 {
	if from <= 0 || from == to {
		return samples
	}

	frames := len(samples) / from
	out := make([]int32, frames*to)
	for f := 0; f < frames; f++ {
		for ch := 0; ch < to; ch++ {
			src := ch
			if src >= from {
				src = from - 1
			}
			if from == 1 {
				src = 0
			}
			out[f*to+ch] = samples[f*from+src]
		}
	}
	return out
}

// applyVolume applies volume and mute to samples with clipping protection
func applyVolume(samples []int32, volume int, muted bool) []int32 {
	multiplier := getVolumeMultiplier(volume, muted)
	if multiplier == 1.0 {
		return samples
	}

	result := make([]int32, len(samples))
	for i, sample := range samples {
		scaled := int64(float64(sample) * multiplier)

		// Clamp to 24-bit range to prevent overflow
		if scaled > audio.Max24Bit {
			scaled = audio.Max24Bit
		} else if scaled < audio.Min24Bit {
			scaled = audio.Min24Bit
		}

		result[i] = int32(scaled)
	}

	return result
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}

func clampVolume(volume int) int {
	if volume < 0 {
		return 0
	}
	if volume > 100 {
		return 100
	}
	return volume
}
