// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes each MP3 chunk independently to int32 samples
package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/jamradio/jamradio-go/pkg/audio"
)

var errNoFrames = errors.New("no complete frames in chunk")

// MP3Decoder decodes MP3 chunks. Each chunk is decoded on its own: the
// decoder resynchronises on the first frame header and a trailing partial
// frame is discarded.
type MP3Decoder struct{}

// NewMP3 creates a new MP3 decoder
func NewMP3() Decoder {
	return &MP3Decoder{}
}

// Decode converts MP3 bytes to int32 samples
func (d *MP3Decoder) Decode(data []byte) (audio.Buffer, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return audio.Buffer{}, decodeErr(audio.CodecMP3, err)
	}

	// go-mp3 always produces 16-bit little-endian stereo
	pcm, err := io.ReadAll(decoder)
	if len(pcm) < 4 {
		if err == nil {
			err = errNoFrames
		}
		return audio.Buffer{}, decodeErr(audio.CodecMP3, err)
	}

	samples := make([]int32, len(pcm)/2)
	for i := range samples {
		samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}

	return audio.Buffer{
		Samples: samples,
		Format: audio.Format{
			Codec:      audio.CodecMP3,
			SampleRate: decoder.SampleRate(),
			Channels:   2,
			BitDepth:   16,
		},
	}, nil
}

// Close releases decoder resources
func (d *MP3Decoder) Close() error {
	return nil
}
