// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides the Sink interface with oto and discarding implementations
// Package output provides playback sinks.
//
// Oto plays through the system audio device, resampling buffers whose rate
// differs from the device and applying software volume. Null discards
// audio for headless runs.
//
// Example:
//
//	sink := output.NewOto(0, 0)
//	defer sink.Close()
//	err := sink.Enqueue(buf)
package output
