// ABOUTME: Codec-sniffing decoder
// ABOUTME: Picks FLAC or MP3 from stream signatures and delegates to it
package decode

import (
	"bytes"
	"log"

	"github.com/jamradio/jamradio-go/pkg/audio"
)

var id3Signature = []byte("ID3")

// AutoDecoder delegates to a FLAC or MP3 decoder. It switches codec when a
// chunk opens with a container signature and otherwise stays with the
// current one. MP3 is assumed when nothing can be sniffed.
type AutoDecoder struct {
	codec  string
	active Decoder
}

// NewAuto creates a codec-sniffing decoder
func NewAuto() Decoder {
	return &AutoDecoder{}
}

// Sniff reports the codec announced at the start of data, or "" when the
// bytes carry no recognisable signature
func Sniff(data []byte) string {
	switch {
	case bytes.HasPrefix(data, flacSignature):
		return audio.CodecFLAC
	case bytes.HasPrefix(data, id3Signature):
		return audio.CodecMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0 && data[1] != 0xF8 && data[1] != 0xF9:
		// MPEG frame sync; 0xFFF8 and 0xFFF9 are FLAC frame sync codes
		return audio.CodecMP3
	default:
		return ""
	}
}

// Decode sniffs data and hands it to the matching decoder
func (d *AutoDecoder) Decode(data []byte) (audio.Buffer, error) {
	codec := Sniff(data)
	if d.active == nil && codec == "" {
		codec = audio.CodecMP3
	}

	// Bare frame sync is too weak to switch away from an established codec
	strong := bytes.HasPrefix(data, flacSignature) || bytes.HasPrefix(data, id3Signature)
	if codec != "" && codec != d.codec && (d.active == nil || strong) {
		d.switchTo(codec)
	}

	return d.active.Decode(data)
}

func (d *AutoDecoder) switchTo(codec string) {
	if d.active != nil {
		d.active.Close()
	}
	if codec == audio.CodecFLAC {
		d.active = NewFLAC()
	} else {
		d.active = NewMP3()
	}
	log.Printf("Audio stream codec: %s", codec)
	d.codec = codec
}

// Close releases the active decoder
func (d *AutoDecoder) Close() error {
	if d.active == nil {
		return nil
	}
	err := d.active.Close()
	d.active = nil
	d.codec = ""
	return err
}
