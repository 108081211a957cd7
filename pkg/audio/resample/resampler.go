// ABOUTME: Linear resampler for converting audio sample rates
// ABOUTME: Keeps the last input frame so interpolation is continuous across chunks
package resample

import "math"

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64
	lastFrame  []int32 // one sample per channel
	primed     bool
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
		lastFrame:  make([]int32, channels),
	}
}

// InputRate returns the rate the resampler converts from
func (r *Resampler) InputRate() int {
	return r.inputRate
}

// Resample converts interleaved samples at the input rate into interleaved
// samples at the output rate. The final input frame is held back and used
// to interpolate into the next chunk.
func (r *Resampler) Resample(input []int32) []int32 {
	inputFrames := len(input) / r.channels
	if inputFrames == 0 {
		return nil
	}

	// Frame i of the virtual stream is lastFrame when primed, then input
	frame := func(i, ch int) int32 {
		if r.primed {
			if i == 0 {
				return r.lastFrame[ch]
			}
			i--
		}
		return input[i*r.channels+ch]
	}
	total := inputFrames
	if r.primed {
		total++
	}

	output := make([]int32, 0, r.OutputSamplesNeeded(len(input))+r.channels)
	for r.position < float64(total-1) {
		idx := int(r.position)
		frac := r.position - float64(idx)

		for ch := 0; ch < r.channels; ch++ {
			s1 := float64(frame(idx, ch))
			s2 := float64(frame(idx+1, ch))
			output = append(output, int32(math.Round(s1*(1.0-frac)+s2*frac)))
		}
		r.position += r.ratio
	}

	r.position -= float64(total - 1)
	copy(r.lastFrame, input[(inputFrames-1)*r.channels:inputFrames*r.channels])
	r.primed = true

	return output
}

// OutputSamplesNeeded estimates how many output samples input samples produce
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(float64(inputFrames) / r.ratio)
	return outputFrames * r.channels
}
