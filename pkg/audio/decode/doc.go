// ABOUTME: Audio decoder package for multiple codec support
// ABOUTME: Provides Decoder interface and implementations for MP3, FLAC and PCM
// Package decode turns chunks of a streamed audio file into PCM buffers.
//
// Supports: MP3 (go-mp3), FLAC (mewkiz/flac), raw PCM (16-bit and 24-bit)
// and an auto decoder that sniffs the container signature.
//
// All decoders output int32 samples in 24-bit range. Failures wrap
// ErrDecode so callers can log and drop the chunk.
//
// Example:
//
//	decoder, err := decode.New("auto")
//	buf, err := decoder.Decode(chunk)
package decode
