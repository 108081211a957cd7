// ABOUTME: PCM audio decoder
// ABOUTME: Decodes 16-bit and 24-bit little-endian PCM to int32 samples
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/jamradio/jamradio-go/pkg/audio"
)

// PCMDecoder decodes raw PCM. A partial sample frame at the end of a chunk
// is held back and completed by the next chunk.
type PCMDecoder struct {
	format     audio.Format
	frameBytes int
	pending    []byte
}

// NewPCM creates a new PCM decoder
func NewPCM(format audio.Format) (Decoder, error) {
	if format.Codec != audio.CodecPCM {
		return nil, fmt.Errorf("invalid codec for PCM decoder: %s", format.Codec)
	}

	if format.BitDepth != 16 && format.BitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", format.BitDepth)
	}

	if format.Channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", format.Channels)
	}

	return &PCMDecoder{
		format:     format,
		frameBytes: format.BitDepth / 8 * format.Channels,
	}, nil
}

// Decode converts PCM bytes to int32 samples
func (d *PCMDecoder) Decode(data []byte) (audio.Buffer, error) {
	if len(d.pending) > 0 {
		data = append(d.pending, data...)
		d.pending = nil
	}

	usable := len(data) - len(data)%d.frameBytes
	if rest := data[usable:]; len(rest) > 0 {
		d.pending = append([]byte(nil), rest...)
	}
	data = data[:usable]

	var samples []int32
	if d.format.BitDepth == 24 {
		samples = make([]int32, len(data)/3)
		for i := range samples {
			samples[i] = audio.SampleFrom24Bit([3]byte{data[i*3], data[i*3+1], data[i*3+2]})
		}
	} else {
		samples = make([]int32, len(data)/2)
		for i := range samples {
			samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(data[i*2:])))
		}
	}

	return audio.Buffer{Samples: samples, Format: d.format}, nil
}

// Close releases resources
func (d *PCMDecoder) Close() error {
	d.pending = nil
	return nil
}
