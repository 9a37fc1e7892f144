// Package dsp provides the signal-processing primitives used by the
// voice classification pipeline.
//
// It implements the transforms the feature extractor is built on:
//
//   - FFT: in-place radix-2 Cooley-Tukey forward and inverse transforms
//   - Windows: Hanning and Hamming window generation
//   - STFT: overlapping-frame short-time Fourier analysis producing
//     magnitude and power spectrograms
//   - Mel: mel-scale conversion and triangular mel filterbanks
//   - DCT: orthonormal DCT-II used to derive cepstral coefficients
//
// All functions are deterministic and allocation patterns are kept
// predictable so the per-request pipeline has no hidden shared state.
package dsp
