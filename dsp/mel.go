package dsp

import "math"

// HzToMel converts a frequency in Hz to the mel scale.
func HzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

// MelToHz converts a mel-scale frequency back to Hz.
func MelToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// MelFilterBank creates a triangular mel filterbank matrix.
// Returns [numMels][nfft/2+1] filter weights. Each filter spans three
// consecutive mel-spaced points with a triangular response.
func MelFilterBank(numMels, nfft, sampleRate int, lowFreq, highFreq float64) [][]float64 {
	halfFFT := nfft/2 + 1
	lowMel := HzToMel(lowFreq)
	highMel := HzToMel(highFreq)

	// numMels + 2 equally spaced mel points
	melPoints := make([]float64, numMels+2)
	step := (highMel - lowMel) / float64(numMels+1)
	for i := range melPoints {
		melPoints[i] = lowMel + float64(i)*step
	}

	// Convert mel points to FFT bin indices
	bins := make([]int, numMels+2)
	for i, m := range melPoints {
		hz := MelToHz(m)
		bin := int(math.Round(hz * float64(nfft) / float64(sampleRate)))
		if bin >= halfFFT {
			bin = halfFFT - 1
		}
		bins[i] = bin
	}

	// Ensure each filter has at least one bin of width
	for i := 1; i < len(bins); i++ {
		if bins[i] <= bins[i-1] {
			bins[i] = bins[i-1] + 1
		}
	}

	bank := make([][]float64, numMels)
	for m := 0; m < numMels; m++ {
		filter := make([]float64, halfFFT)
		left := bins[m]
		center := bins[m+1]
		right := bins[m+2]

		for k := left; k < center && k < halfFFT; k++ {
			if center != left {
				filter[k] = float64(k-left) / float64(center-left)
			}
		}
		for k := center; k <= right && k < halfFFT; k++ {
			if right != center {
				filter[k] = float64(right-k) / float64(right-center)
			}
		}
		bank[m] = filter
	}
	return bank
}

// PowerToDB converts a power value to decibels referenced to ref.
// Values are floored at -80 dB relative to the reference, matching the
// dynamic range used for log-mel spectrograms.
func PowerToDB(power, ref float64) float64 {
	const amin = 1e-10
	const topDB = 80.0

	if power < amin {
		power = amin
	}
	if ref < amin {
		ref = amin
	}
	db := 10.0 * (math.Log10(power) - math.Log10(ref))
	if db < -topDB {
		db = -topDB
	}
	return db
}
