package audio

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voicedetect/dsp"
)

// NoiseReducer attenuates steady background noise using spectral
// subtraction before feature extraction.
//
// The algorithm operates on overlapping Hanning-windowed frames: the noise
// floor spectrum is estimated from the first frames of the signal, then
// subtracted from each frame's magnitude spectrum with an over-subtraction
// factor. A spectral floor prevents over-suppression from producing
// musical noise.
type NoiseReducer struct {
	suppressionLevel float64   // suppression strength (0.0 to 1.0)
	frameSize        int       // FFT frame size, power of two
	overlapSize      int       // 50% of frame size
	window           []float64 // Hanning window
	noiseFloor       []float64 // estimated noise floor spectrum
	spectrum         []complex128
	initialized      bool
	frameCount       int
}

const noiseEstimationFrames = 10

// NewNoiseReducer creates a noise reducer with the given suppression
// strength (0.0 = none, 1.0 = maximum) and FFT frame size, which must be a
// power of two between 64 and 4096.
func NewNoiseReducer(suppressionLevel float64, frameSize int) (*NoiseReducer, error) {
	if suppressionLevel < 0.0 || suppressionLevel > 1.0 {
		logrus.WithFields(logrus.Fields{
			"function":          "NewNoiseReducer",
			"suppression_level": suppressionLevel,
			"error":             "suppression level must be between 0.0 and 1.0",
		}).Error("Suppression level validation failed")
		return nil, fmt.Errorf("suppression level must be between 0.0 and 1.0: %f", suppressionLevel)
	}
	if frameSize < 64 || frameSize > 4096 || !dsp.IsPow2(frameSize) {
		logrus.WithFields(logrus.Fields{
			"function":   "NewNoiseReducer",
			"frame_size": frameSize,
			"error":      "frame size must be power of 2 between 64 and 4096",
		}).Error("Frame size validation failed")
		return nil, fmt.Errorf("frame size must be power of 2 between 64 and 4096: %d", frameSize)
	}

	logrus.WithFields(logrus.Fields{
		"function":          "NewNoiseReducer",
		"suppression_level": suppressionLevel,
		"frame_size":        frameSize,
	}).Info("Noise reducer created")

	return &NoiseReducer{
		suppressionLevel: suppressionLevel,
		frameSize:        frameSize,
		overlapSize:      frameSize / 2,
		window:           dsp.Hanning(frameSize),
		noiseFloor:       make([]float64, frameSize/2+1),
		spectrum:         make([]complex128, frameSize),
	}, nil
}

// Process applies spectral subtraction to the signal's samples and returns
// a new sample slice. The input is left unmodified.
func (nr *NoiseReducer) Process(samples []float64) ([]float64, error) {
	if len(samples) == 0 {
		return samples, nil
	}

	logrus.WithFields(logrus.Fields{
		"function":     "NoiseReducer.Process",
		"sample_count": len(samples),
		"initialized":  nr.initialized,
	}).Debug("Applying noise reduction")

	output := make([]float64, len(samples))
	hopSize := nr.frameSize - nr.overlapSize

	for pos := 0; pos < len(samples); pos += hopSize {
		frameEnd := pos + nr.frameSize
		if frameEnd > len(samples) {
			frameEnd = len(samples)
		}

		frame := make([]float64, nr.frameSize)
		copy(frame, samples[pos:frameEnd])

		processed, err := nr.processFrame(frame)
		if err != nil {
			return nil, fmt.Errorf("noise reduction frame at %d: %w", pos, err)
		}

		// Overlap-add into output
		for i, val := range processed {
			outPos := pos + i
			if outPos < len(output) {
				output[outPos] += val
			}
		}
	}

	return output, nil
}

func (nr *NoiseReducer) processFrame(frame []float64) ([]float64, error) {
	// Window and load into the complex working buffer
	for i := range nr.spectrum {
		if i < len(frame) {
			nr.spectrum[i] = complex(frame[i]*nr.window[i], 0)
		} else {
			nr.spectrum[i] = 0
		}
	}

	if err := dsp.FFT(nr.spectrum); err != nil {
		return nil, err
	}

	magnitude := make([]float64, nr.frameSize/2+1)
	for i := range magnitude {
		re := real(nr.spectrum[i])
		im := imag(nr.spectrum[i])
		magnitude[i] = math.Sqrt(re*re + im*im)
	}

	nr.updateNoiseFloor(magnitude)
	nr.subtractNoise(magnitude)

	if err := dsp.IFFT(nr.spectrum); err != nil {
		return nil, err
	}

	// Window again for smooth overlap-add
	result := make([]float64, nr.frameSize)
	for i := range result {
		result[i] = real(nr.spectrum[i]) * nr.window[i]
	}
	return result, nil
}

// updateNoiseFloor refines the noise floor estimate during the learning
// phase at the start of the signal.
func (nr *NoiseReducer) updateNoiseFloor(magnitude []float64) {
	if nr.frameCount >= noiseEstimationFrames {
		return
	}

	alpha := 0.8
	for i := range nr.noiseFloor {
		if nr.frameCount == 0 {
			nr.noiseFloor[i] = magnitude[i]
		} else {
			nr.noiseFloor[i] = alpha*nr.noiseFloor[i] + (1-alpha)*magnitude[i]
		}
	}
	nr.frameCount++
	if nr.frameCount >= noiseEstimationFrames {
		nr.initialized = true
		logrus.WithFields(logrus.Fields{
			"function": "NoiseReducer.updateNoiseFloor",
		}).Debug("Noise floor estimation completed")
	}
}

// subtractNoise scales the spectrum by the suppression ratio computed from
// the estimated noise floor.
func (nr *NoiseReducer) subtractNoise(magnitude []float64) {
	if !nr.initialized {
		return
	}

	const overSubtraction = 2.0
	for i := range magnitude {
		subtracted := magnitude[i] - overSubtraction*nr.suppressionLevel*nr.noiseFloor[i]

		spectralFloor := 0.1 * magnitude[i]
		if subtracted < spectralFloor {
			subtracted = spectralFloor
		}

		if magnitude[i] > 0 {
			ratio := subtracted / magnitude[i]
			nr.spectrum[i] = complex(real(nr.spectrum[i])*ratio, imag(nr.spectrum[i])*ratio)
			// Mirror for negative frequencies
			if i > 0 && i < nr.frameSize/2 {
				mirror := nr.frameSize - i
				nr.spectrum[mirror] = complex(real(nr.spectrum[mirror])*ratio, imag(nr.spectrum[mirror])*ratio)
			}
		}
	}
}
