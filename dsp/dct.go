package dsp

import "math"

// DCT2 computes the orthonormal DCT-II of the input and returns the first
// numCoeffs coefficients. This is the transform applied to log mel energies
// to produce cepstral coefficients.
func DCT2(input []float64, numCoeffs int) []float64 {
	n := len(input)
	if numCoeffs > n {
		numCoeffs = n
	}
	out := make([]float64, numCoeffs)
	if n == 0 {
		return out
	}

	scale0 := math.Sqrt(1.0 / float64(n))
	scale := math.Sqrt(2.0 / float64(n))

	for k := 0; k < numCoeffs; k++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += input[i] * math.Cos(math.Pi*float64(k)*(2.0*float64(i)+1.0)/(2.0*float64(n)))
		}
		if k == 0 {
			out[k] = sum * scale0
		} else {
			out[k] = sum * scale
		}
	}
	return out
}
