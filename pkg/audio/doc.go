// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Buffer types and sample conversion functions
// Package audio provides the types shared by the streaming pipeline:
//   - Format: codec, sample rate, channels and bit depth of a stream
//   - Buffer: decoded interleaved PCM with its Format
//
// Samples are carried as int32 left-justified in the 24-bit range so that
// 16-bit and 24-bit sources share one representation.
//
// Example:
//
//	buf := audio.Buffer{Samples: samples, Format: audio.RawPCM}
//	log.Printf("decoded %v of audio", buf.Duration())
package audio
