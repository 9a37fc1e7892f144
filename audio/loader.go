package audio

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-audio/wav"
	"github.com/google/uuid"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/sirupsen/logrus"
)

// LoaderConfig holds configuration for the audio loader.
type LoaderConfig struct {
	TargetRate      int     // target sample rate in Hz after resampling
	MinEncodedLen   int     // minimum base64 string length
	MinDecodedBytes int     // minimum decoded payload size in bytes
	MinDuration     float64 // minimum audio duration in seconds
}

// DefaultLoaderConfig returns the standard loader settings: 22050 Hz
// target rate, 100-character / 100-byte payload floors, and a tenth of a
// second of minimum audio.
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		TargetRate:      22050,
		MinEncodedLen:   100,
		MinDecodedBytes: 100,
		MinDuration:     0.1,
	}
}

// Loader decodes base64-encoded recordings into normalized mono signals.
//
// Each load writes the payload to a uniquely named temporary file, decodes
// it as MP3 or WAV, mixes to mono, and resamples to the target rate. The
// temporary file is removed on every exit path.
type Loader struct {
	cfg LoaderConfig
}

// NewLoader creates a new audio loader.
func NewLoader(cfg LoaderConfig) (*Loader, error) {
	if cfg.TargetRate <= 0 {
		logrus.WithFields(logrus.Fields{
			"function":    "NewLoader",
			"target_rate": cfg.TargetRate,
			"error":       "invalid target rate",
		}).Error("Loader config validation failed")
		return nil, fmt.Errorf("invalid target sample rate: %d", cfg.TargetRate)
	}
	if cfg.MinEncodedLen <= 0 {
		cfg.MinEncodedLen = 100
	}
	if cfg.MinDecodedBytes <= 0 {
		cfg.MinDecodedBytes = 100
	}

	logrus.WithFields(logrus.Fields{
		"function":     "NewLoader",
		"target_rate":  cfg.TargetRate,
		"min_duration": cfg.MinDuration,
	}).Info("Audio loader created")

	return &Loader{cfg: cfg}, nil
}

// LoadBase64 decodes a base64 audio payload into a mono Signal at the
// target sample rate.
//
// Returns ErrDecode when the payload is not valid base64 or is shorter
// than the configured minimums, and ErrAudioLoad when the bytes cannot be
// parsed as audio or the decoded signal is shorter than the minimum
// duration.
func (l *Loader) LoadBase64(audioBase64 string) (*Signal, error) {
	logrus.WithFields(logrus.Fields{
		"function":       "Loader.LoadBase64",
		"payload_length": len(audioBase64),
	}).Debug("Decoding base64 audio payload")

	if len(audioBase64) < l.cfg.MinEncodedLen {
		return nil, newLoadError("decode", fmt.Errorf("%w: payload length %d below minimum %d",
			ErrDecode, len(audioBase64), l.cfg.MinEncodedLen))
	}

	raw, err := base64.StdEncoding.DecodeString(audioBase64)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Loader.LoadBase64",
			"error":    err.Error(),
		}).Error("Base64 decoding failed")
		return nil, newLoadError("decode", fmt.Errorf("%w: %v", ErrDecode, err))
	}

	if len(raw) < l.cfg.MinDecodedBytes {
		return nil, newLoadError("decode", fmt.Errorf("%w: decoded payload %d bytes below minimum %d",
			ErrDecode, len(raw), l.cfg.MinDecodedBytes))
	}

	return l.loadBytes(raw)
}

// loadBytes writes the payload to a scoped temp file, decodes it, mixes to
// mono, and resamples to the target rate.
func (l *Loader) loadBytes(raw []byte) (*Signal, error) {
	tmpPath := filepath.Join(os.TempDir(), "voicedetect-"+uuid.NewString()+".audio")
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Loader.loadBytes",
			"error":    err.Error(),
		}).Error("Failed to write temporary audio file")
		return nil, newLoadError("tempfile", fmt.Errorf("%w: %v", ErrAudioLoad, err))
	}
	defer os.Remove(tmpPath)

	f, err := os.Open(tmpPath)
	if err != nil {
		return nil, newLoadError("tempfile", fmt.Errorf("%w: %v", ErrAudioLoad, err))
	}
	defer f.Close()

	samples, rate, err := decodePCM(f, raw)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Loader.loadBytes",
			"error":    err.Error(),
		}).Error("Audio parsing failed")
		return nil, newLoadError("parse", fmt.Errorf("%w: %v", ErrAudioLoad, err))
	}

	if rate != l.cfg.TargetRate {
		resampler, err := NewResampler(rate, l.cfg.TargetRate)
		if err != nil {
			return nil, newLoadError("resample", fmt.Errorf("%w: %v", ErrAudioLoad, err))
		}
		samples = resampler.Resample(samples)
		rate = l.cfg.TargetRate
	}

	sig := &Signal{Samples: samples, SampleRate: rate}
	if sig.Duration() < l.cfg.MinDuration || len(sig.Samples) == 0 {
		return nil, newLoadError("validate", fmt.Errorf("%w: audio duration %.3fs below minimum %.3fs",
			ErrAudioLoad, sig.Duration(), l.cfg.MinDuration))
	}

	logrus.WithFields(logrus.Fields{
		"function":    "Loader.loadBytes",
		"sample_rate": sig.SampleRate,
		"samples":     len(sig.Samples),
		"duration":    sig.Duration(),
	}).Info("Audio loaded successfully")

	return sig, nil
}

// decodePCM sniffs the container format and decodes to normalized mono
// float64 samples. WAV files are detected by their RIFF header; everything
// else is treated as MP3.
func decodePCM(f *os.File, raw []byte) ([]float64, int, error) {
	if len(raw) >= 12 && bytes.Equal(raw[0:4], []byte("RIFF")) && bytes.Equal(raw[8:12], []byte("WAVE")) {
		return decodeWAV(f)
	}
	return decodeMP3(f)
}

func decodeMP3(r io.Reader) ([]float64, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, fmt.Errorf("mp3 decode: %w", err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, fmt.Errorf("mp3 read: %w", err)
	}

	// go-mp3 always emits 16-bit little-endian stereo frames.
	numFrames := len(pcm) / 4
	if numFrames == 0 {
		return nil, 0, fmt.Errorf("mp3 stream contains no samples")
	}

	samples := make([]float64, numFrames)
	for i := 0; i < numFrames; i++ {
		left := int16(pcm[i*4]) | int16(pcm[i*4+1])<<8
		right := int16(pcm[i*4+2]) | int16(pcm[i*4+3])<<8
		samples[i] = (float64(left) + float64(right)) / 2.0 / 32768.0
	}
	return samples, dec.SampleRate(), nil
}

func decodeWAV(f io.ReadSeeker) ([]float64, int, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wav decode: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 || buf.Format == nil {
		return nil, 0, fmt.Errorf("wav stream contains no samples")
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, 0, fmt.Errorf("invalid wav channel count: %d", channels)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth <= 0 {
		bitDepth = 16
	}
	norm := float64(int64(1) << (bitDepth - 1))

	numFrames := len(buf.Data) / channels
	samples := make([]float64, numFrames)
	for i := 0; i < numFrames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		samples[i] = sum / float64(channels) / norm
	}
	return samples, buf.Format.SampleRate, nil
}
