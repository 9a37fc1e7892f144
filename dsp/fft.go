package dsp

import (
	"fmt"
	"math"
)

// NextPow2 returns the smallest power of two greater than or equal to n.
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// IsPow2 reports whether n is a positive power of two.
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// FFT performs an in-place radix-2 Cooley-Tukey fast Fourier transform.
// The length of data must be a power of two.
func FFT(data []complex128) error {
	n := len(data)
	if !IsPow2(n) {
		return fmt.Errorf("fft length must be a power of two: %d", n)
	}
	if n <= 1 {
		return nil
	}

	// Bit-reverse ordering
	for i, j := 0, 0; i < n; i++ {
		if j > i {
			data[i], data[j] = data[j], data[i]
		}
		bit := n >> 1
		for j&bit != 0 {
			j ^= bit
			bit >>= 1
		}
		j ^= bit
	}

	// Butterfly passes
	for size := 2; size <= n; size <<= 1 {
		halfSize := size >> 1
		step := 2 * math.Pi / float64(size)
		for i := 0; i < n; i += size {
			for j := 0; j < halfSize; j++ {
				u := data[i+j]
				v := data[i+j+halfSize] * complex(math.Cos(float64(j)*step), -math.Sin(float64(j)*step))
				data[i+j] = u + v
				data[i+j+halfSize] = u - v
			}
		}
	}
	return nil
}

// IFFT performs an in-place inverse FFT using the conjugate trick.
// The length of data must be a power of two.
func IFFT(data []complex128) error {
	n := len(data)

	for i := range data {
		data[i] = complex(real(data[i]), -imag(data[i]))
	}

	if err := FFT(data); err != nil {
		return err
	}

	scale := 1.0 / float64(n)
	for i := range data {
		data[i] = complex(real(data[i])*scale, -imag(data[i])*scale)
	}
	return nil
}

// MagnitudeSpectrum computes the single-sided magnitude spectrum of a real
// frame. The frame is zero-padded to nfft, which must be a power of two.
// The result has nfft/2+1 bins.
func MagnitudeSpectrum(frame []float64, nfft int) ([]float64, error) {
	if !IsPow2(nfft) {
		return nil, fmt.Errorf("nfft must be a power of two: %d", nfft)
	}
	if len(frame) > nfft {
		return nil, fmt.Errorf("frame length %d exceeds nfft %d", len(frame), nfft)
	}

	buf := make([]complex128, nfft)
	for i, s := range frame {
		buf[i] = complex(s, 0)
	}
	if err := FFT(buf); err != nil {
		return nil, err
	}

	mag := make([]float64, nfft/2+1)
	for i := range mag {
		mag[i] = math.Hypot(real(buf[i]), imag(buf[i]))
	}
	return mag, nil
}
