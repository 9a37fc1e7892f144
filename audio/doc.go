// Package audio provides audio decoding and preprocessing for the voice
// classification pipeline.
//
// The package turns a base64-encoded recording into a normalized mono PCM
// signal at a fixed target sample rate:
//
//	base64 → raw bytes → scoped temp file → MP3/WAV decode → mono mix →
//	resample → Signal
//
// It also provides an optional spectral-subtraction noise reducer that can
// be applied before feature extraction to attenuate steady background
// noise.
//
// Every load creates and removes its own uniquely named temporary file, so
// concurrent requests never collide. All state is request-local.
package audio
