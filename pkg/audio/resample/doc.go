// ABOUTME: Sample rate conversion package
// ABOUTME: Provides a streaming linear resampler for interleaved int32 audio
// Package resample converts interleaved int32 audio between sample rates.
//
// The playback sink opens the device once; chunks whose rate differs from
// the device rate go through a Resampler first.
//
// Example:
//
//	r := resample.New(48000, 44100, 2)
//	out := r.Resample(samples)
package resample
