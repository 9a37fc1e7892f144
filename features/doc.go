// Package features computes the fixed-shape acoustic feature vector the
// scoring engine classifies.
//
// The Extractor analyzes a mono PCM signal over overlapping windowed
// frames and produces per-feature statistics: mel-frequency cepstral
// coefficients, spectral shape descriptors (centroid, bandwidth, rolloff,
// contrast), zero-crossing rate, RMS energy, pitch, tempo, log-mel
// spectrogram spread, chroma, and total duration.
//
// Every extraction yields the same key set and the same vector lengths; a
// feature that cannot be computed from the input contributes 0.0 rather
// than a missing key. Vector.Flatten expands the features in a fixed,
// documented order that forms the contract with trained model artifacts.
//
// All statistics are deterministic functions of the input signal.
package features
