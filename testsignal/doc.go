// Package testsignal provides deterministic audio fixture synthesis for
// testing the voice classification pipeline.
//
// # Overview
//
// Real recordings cannot be committed as reproducible test vectors, so this
// package synthesizes known signals in-memory: pure tones, complex tones
// with harmonics and vibrato, and seeded noise. It also encodes signals as
// PCM WAV payloads (raw or base64) so tests can exercise the full
// decode-and-load path exactly as a network caller would.
//
// All generators are pure functions of their arguments; noise generation
// takes an explicit seed. Identical inputs always produce identical
// fixtures, keeping classification tests reproducible.
package testsignal
