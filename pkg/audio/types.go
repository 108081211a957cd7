// ABOUTME: Audio type definitions
// ABOUTME: Defines audio formats, decoded buffers and sample conversions
package audio

import "time"

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Codec names understood by the decoders
const (
	CodecAuto = "auto"
	CodecMP3  = "mp3"
	CodecFLAC = "flac"
	CodecPCM  = "pcm"
)

// Format describes audio stream format
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// RawPCM is the layout of the server's raw audio mode: 16-bit little
// endian, interleaved stereo, 44.1 kHz
var RawPCM = Format{
	Codec:      CodecPCM,
	SampleRate: 44100,
	Channels:   2,
	BitDepth:   16,
}

// Buffer represents decoded PCM audio
type Buffer struct {
	Samples []int32 // interleaved, left-justified in 24-bit range
	Format  Format
}

// Frames returns the number of sample frames in the buffer
func (b Buffer) Frames() int {
	if b.Format.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Format.Channels
}

// Duration returns the playback length of the buffer
func (b Buffer) Duration() time.Duration {
	if b.Format.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.Format.SampleRate)
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	return int32(sample) << 8
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return val
}

// ScaleTo24Bit moves a sample of the given bit depth into the 24-bit range
func ScaleTo24Bit(sample int32, bitDepth int) int32 {
	switch {
	case bitDepth == 24 || bitDepth <= 0:
		return sample
	case bitDepth < 24:
		return sample << (24 - bitDepth)
	default:
		return sample >> (bitDepth - 24)
	}
}
