// ABOUTME: Decoder interface definition
// ABOUTME: Common interface and error type for all audio decoders
package decode

import (
	"errors"
	"fmt"

	"github.com/jamradio/jamradio-go/pkg/audio"
)

// ErrDecode is wrapped by every decoding failure
var ErrDecode = errors.New("audio decode failed")

// Decoder turns chunks of encoded audio into PCM. Decoders may keep state
// between calls; a call that only buffers input returns an empty Buffer
// and no error.
type Decoder interface {
	// Decode converts one chunk of encoded audio to PCM samples
	Decode(data []byte) (audio.Buffer, error)

	// Close releases decoder resources
	Close() error
}

// New returns the decoder for a codec name
func New(codec string) (Decoder, error) {
	switch codec {
	case audio.CodecAuto, "":
		return NewAuto(), nil
	case audio.CodecMP3:
		return NewMP3(), nil
	case audio.CodecFLAC:
		return NewFLAC(), nil
	case audio.CodecPCM:
		return NewPCM(audio.RawPCM)
	default:
		return nil, fmt.Errorf("unsupported codec: %s", codec)
	}
}

func decodeErr(codec string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDecode, codec, err)
}
