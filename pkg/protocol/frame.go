// ABOUTME: Song transfer and queue request frame codec
// ABOUTME: Encodes and decodes signature-tagged, length-prefixed frames
package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// SignatureSongTransfer tags a song upload frame ('f')
	SignatureSongTransfer byte = 'f'

	// SignatureQueueRequest tags a request to enqueue a library song ('q')
	SignatureQueueRequest byte = 'q'

	// LengthFieldSize is the size of each big-endian length prefix
	LengthFieldSize = 4

	// SongTransferOverhead is the fixed part of a song transfer frame
	SongTransferOverhead = 1 + LengthFieldSize + LengthFieldSize
)

// EncodeSongTransfer builds a song transfer frame for name and payload.
// The result is exactly SongTransferOverhead+len(name)+len(payload) bytes.
func EncodeSongTransfer(name string, payload []byte) []byte {
	frame := make([]byte, 0, SongTransferOverhead+len(name)+len(payload))
	frame = append(frame, SignatureSongTransfer)
	frame = binary.BigEndian.AppendUint32(frame, uint32(len(name)))
	frame = append(frame, name...)
	frame = binary.BigEndian.AppendUint32(frame, uint32(len(payload)))
	frame = append(frame, payload...)
	return frame
}

// EncodeQueueRequest builds a queue request frame for a library song name
func EncodeQueueRequest(name string) []byte {
	frame := make([]byte, 0, 1+LengthFieldSize+len(name))
	frame = append(frame, SignatureQueueRequest)
	frame = binary.BigEndian.AppendUint32(frame, uint32(len(name)))
	frame = append(frame, name...)
	return frame
}

// Decoder reads frames from a stream. Zero limits mean no ceiling.
type Decoder struct {
	// MaxName bounds the declared name length
	MaxName uint32

	// MaxPayload bounds the declared payload length
	MaxPayload uint32
}

// DecodeSongTransfer reads one song transfer frame from r.
// Exactly the declared number of bytes is consumed, leaving r positioned
// at the next frame.
func (d Decoder) DecodeSongTransfer(r io.Reader) (string, []byte, error) {
	if err := readSignature(r, SignatureSongTransfer); err != nil {
		return "", nil, err
	}

	name, err := d.readField(r, d.MaxName, "name")
	if err != nil {
		return "", nil, err
	}

	payload, err := d.readField(r, d.MaxPayload, "payload")
	if err != nil {
		return "", nil, err
	}

	return string(name), payload, nil
}

// DecodeQueueRequest reads one queue request frame from r
func (d Decoder) DecodeQueueRequest(r io.Reader) (string, error) {
	if err := readSignature(r, SignatureQueueRequest); err != nil {
		return "", err
	}

	name, err := d.readField(r, d.MaxName, "name")
	if err != nil {
		return "", err
	}
	return string(name), nil
}

// DecodeSongTransfer reads a song transfer frame with no size ceiling
func DecodeSongTransfer(r io.Reader) (string, []byte, error) {
	return Decoder{}.DecodeSongTransfer(r)
}

func readSignature(r io.Reader, want byte) error {
	var sig [1]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return truncated("signature", err)
	}
	if sig[0] != want {
		return fmt.Errorf("%w: got 0x%02x, want 0x%02x", ErrBadSignature, sig[0], want)
	}
	return nil
}

// readField reads a u32 length prefix followed by that many bytes
func (d Decoder) readField(r io.Reader, limit uint32, field string) ([]byte, error) {
	var lenBuf [LengthFieldSize]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, truncated(field+" length", err)
	}

	n := binary.BigEndian.Uint32(lenBuf[:])
	if limit > 0 && n > limit {
		return nil, fmt.Errorf("%w: %s length %d > %d", ErrFrameTooLarge, field, n, limit)
	}

	// Grow with the bytes that actually arrive rather than trusting n up front
	var body bytes.Buffer
	if _, err := io.CopyN(&body, r, int64(n)); err != nil {
		return nil, truncated(field, err)
	}
	return body.Bytes(), nil
}

func truncated(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: reading %s", ErrTruncated, what)
	}
	return fmt.Errorf("reading %s: %w", what, err)
}
