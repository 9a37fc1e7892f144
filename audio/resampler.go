package audio

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Resampler converts mono PCM between sample rates using linear
// interpolation. Interpolation quality is sufficient for voice analysis:
// the features downstream are statistics over long analysis frames, not
// waveform-exact reconstructions.
type Resampler struct {
	inputRate  int
	outputRate int
}

// NewResampler creates a resampler converting from inputRate to outputRate.
func NewResampler(inputRate, outputRate int) (*Resampler, error) {
	if inputRate <= 0 || outputRate <= 0 {
		logrus.WithFields(logrus.Fields{
			"function":    "NewResampler",
			"input_rate":  inputRate,
			"output_rate": outputRate,
			"error":       "invalid sample rates",
		}).Error("Sample rate validation failed")
		return nil, fmt.Errorf("invalid sample rates: input=%d, output=%d", inputRate, outputRate)
	}

	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
	}, nil
}

// InputRate returns the configured input sample rate.
func (r *Resampler) InputRate() int { return r.inputRate }

// OutputRate returns the configured output sample rate.
func (r *Resampler) OutputRate() int { return r.outputRate }

// Resample converts the samples to the output rate. When the rates match,
// the input slice is returned unchanged.
func (r *Resampler) Resample(samples []float64) []float64 {
	if r.inputRate == r.outputRate || len(samples) == 0 {
		return samples
	}

	ratio := float64(r.inputRate) / float64(r.outputRate)
	outLen := int(float64(len(samples)) / ratio)
	if outLen == 0 {
		outLen = 1
	}

	out := make([]float64, outLen)
	for j := 0; j < outLen; j++ {
		pos := float64(j) * ratio
		i := int(pos)
		if i >= len(samples)-1 {
			out[j] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(i)
		out[j] = samples[i]*(1.0-frac) + samples[i+1]*frac
	}

	logrus.WithFields(logrus.Fields{
		"function":    "Resampler.Resample",
		"input_rate":  r.inputRate,
		"output_rate": r.outputRate,
		"input_size":  len(samples),
		"output_size": len(out),
	}).Debug("Resampling completed")

	return out
}
