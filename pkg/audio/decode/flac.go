// ABOUTME: FLAC audio decoder
// ABOUTME: Reassembles FLAC frames split across chunks and decodes them to int32 samples
package decode

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"log"

	"github.com/jamradio/jamradio-go/pkg/audio"
	"github.com/mewkiz/flac"
)

const (
	// maxFLACHeader bounds the signature plus metadata blocks, which may
	// carry embedded artwork
	maxFLACHeader = 16 << 20

	// maxFLACBacklog bounds undecodable bytes held while waiting for the
	// rest of a frame
	maxFLACBacklog = 1 << 20
)

var (
	flacSignature = []byte("fLaC")

	errNoSignature = errors.New("missing fLaC signature")
	errBadHeader   = errors.New("metadata header too large")
	errDesync      = errors.New("lost frame sync")
)

// FLACDecoder decodes a FLAC stream delivered in arbitrary chunks. The
// stream header is kept so each call can resume at the next frame; bytes of
// a frame that is not yet complete are carried into the next call.
type FLACDecoder struct {
	header  []byte
	pending []byte
	format  audio.Format
}

// NewFLAC creates a new FLAC decoder
func NewFLAC() Decoder {
	return &FLACDecoder{}
}

// Decode converts FLAC bytes to int32 samples
func (d *FLACDecoder) Decode(data []byte) (audio.Buffer, error) {
	d.pending = append(d.pending, data...)

	if d.header == nil {
		ready, err := d.readHeader()
		if err != nil || !ready {
			return audio.Buffer{}, err
		}
	}

	return d.decodeFrames()
}

// readHeader splits the signature and metadata blocks off the pending
// bytes once all of them have arrived
func (d *FLACDecoder) readHeader() (bool, error) {
	if len(d.pending) < len(flacSignature) {
		return false, nil
	}
	if !bytes.HasPrefix(d.pending, flacSignature) {
		d.pending = nil
		return false, decodeErr(audio.CodecFLAC, errNoSignature)
	}

	size, complete := metadataSize(d.pending)
	if !complete {
		if len(d.pending) > maxFLACHeader {
			d.pending = nil
			return false, decodeErr(audio.CodecFLAC, errBadHeader)
		}
		return false, nil
	}

	stream, err := flac.New(bytes.NewReader(d.pending[:size]))
	if err != nil {
		d.pending = nil
		return false, decodeErr(audio.CodecFLAC, err)
	}
	info := stream.Info
	stream.Close()

	d.header = append([]byte(nil), d.pending[:size]...)
	d.pending = append([]byte(nil), d.pending[size:]...)
	d.format = audio.Format{
		Codec:      audio.CodecFLAC,
		SampleRate: int(info.SampleRate),
		Channels:   int(info.NChannels),
		BitDepth:   int(info.BitsPerSample),
	}

	log.Printf("FLAC stream: %d Hz, %d channels, %d bit",
		d.format.SampleRate, d.format.Channels, d.format.BitDepth)
	return true, nil
}

// metadataSize walks the metadata block headers and returns the offset of
// the first audio frame, or false when the header is still incomplete
func metadataSize(b []byte) (int, bool) {
	off := len(flacSignature)
	for {
		if len(b) < off+4 {
			return 0, false
		}
		last := b[off]&0x80 != 0
		length := int(b[off+1])<<16 | int(b[off+2])<<8 | int(b[off+3])
		off += 4 + length
		if len(b) < off {
			return 0, false
		}
		if last {
			return off, true
		}
	}
}

// decodeFrames parses every complete frame in the pending bytes
func (d *FLACDecoder) decodeFrames() (audio.Buffer, error) {
	if len(d.pending) == 0 {
		return audio.Buffer{Format: d.format}, nil
	}

	counter := &countingReader{r: bytes.NewReader(d.pending)}
	br := bufio.NewReader(io.MultiReader(bytes.NewReader(d.header), counter))

	stream, err := flac.New(br)
	if err != nil {
		d.reset()
		return audio.Buffer{}, decodeErr(audio.CodecFLAC, err)
	}
	defer stream.Close()

	var samples []int32
	consumed := 0
	for {
		frame, err := stream.ParseNext()
		if err != nil {
			break
		}
		channels := d.format.Channels
		if len(frame.Subframes) < channels {
			channels = len(frame.Subframes)
		}
		for i := 0; i < int(frame.BlockSize); i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, audio.ScaleTo24Bit(frame.Subframes[ch].Samples[i], d.format.BitDepth))
			}
		}
		consumed = counter.n - br.Buffered()
	}

	rest := d.pending[consumed:]
	buf := audio.Buffer{Samples: samples, Format: d.format}

	switch {
	case bytes.HasPrefix(rest, flacSignature):
		// The next song started right after the last frame. Its samples
		// have a different format, so they go out in a later buffer.
		d.header = nil
		d.pending = append([]byte(nil), rest...)
		if len(samples) > 0 {
			return buf, nil
		}
		return d.Decode(nil)

	case len(rest) > maxFLACBacklog:
		d.pending = nil
		if len(samples) > 0 {
			return buf, nil
		}
		return audio.Buffer{}, decodeErr(audio.CodecFLAC, errDesync)

	default:
		d.pending = append([]byte(nil), rest...)
		return buf, nil
	}
}

func (d *FLACDecoder) reset() {
	d.header = nil
	d.pending = nil
	d.format = audio.Format{}
}

// Close releases decoder resources
func (d *FLACDecoder) Close() error {
	d.reset()
	return nil
}

// countingReader reports how many bytes have been read from r
type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}
