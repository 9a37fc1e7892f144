package dsp

import "fmt"

// STFT analysis defaults. A 2048-point window with a 512-sample hop gives
// roughly 93 ms frames with 75% overlap at 22050 Hz, the standard analysis
// geometry for voice feature extraction.
const (
	DefaultNFFT = 2048
	DefaultHop  = 512
)

// NumFrames returns the number of full analysis frames available for a
// signal of n samples with the given frame length and hop size. Returns 0
// when the signal is shorter than one frame.
func NumFrames(n, frameLen, hop int) int {
	if n < frameLen || frameLen <= 0 || hop <= 0 {
		return 0
	}
	return 1 + (n-frameLen)/hop
}

// Spectrogram computes the single-sided magnitude spectrogram of a signal
// using overlapping windowed frames. The window length defines the frame
// length and must not exceed nfft; nfft must be a power of two.
// The result is [numFrames][nfft/2+1].
func Spectrogram(samples, window []float64, nfft, hop int) ([][]float64, error) {
	frameLen := len(window)
	if frameLen == 0 || frameLen > nfft {
		return nil, fmt.Errorf("invalid window length %d for nfft %d", frameLen, nfft)
	}
	if !IsPow2(nfft) {
		return nil, fmt.Errorf("nfft must be a power of two: %d", nfft)
	}

	numFrames := NumFrames(len(samples), frameLen, hop)
	if numFrames == 0 {
		return nil, fmt.Errorf("signal too short for analysis: %d samples, frame %d", len(samples), frameLen)
	}

	spec := make([][]float64, numFrames)
	frame := make([]float64, frameLen)

	for t := 0; t < numFrames; t++ {
		start := t * hop
		for i := 0; i < frameLen; i++ {
			frame[i] = samples[start+i] * window[i]
		}
		mag, err := MagnitudeSpectrum(frame, nfft)
		if err != nil {
			return nil, err
		}
		spec[t] = mag
	}
	return spec, nil
}

// BinFrequencies returns the center frequency in Hz of each spectrogram bin
// for the given FFT size and sample rate.
func BinFrequencies(nfft, sampleRate int) []float64 {
	half := nfft/2 + 1
	freqs := make([]float64, half)
	for i := range freqs {
		freqs[i] = float64(i) * float64(sampleRate) / float64(nfft)
	}
	return freqs
}
