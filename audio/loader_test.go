package audio

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/voicedetect/testsignal"
)

func TestNewLoader(t *testing.T) {
	tests := []struct {
		name      string
		cfg       LoaderConfig
		expectErr bool
	}{
		{
			name:      "default_config",
			cfg:       DefaultLoaderConfig(),
			expectErr: false,
		},
		{
			name:      "zero_target_rate",
			cfg:       LoaderConfig{TargetRate: 0},
			expectErr: true,
		},
		{
			name:      "negative_target_rate",
			cfg:       LoaderConfig{TargetRate: -22050},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, err := NewLoader(tt.cfg)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, loader)
		})
	}
}

func TestLoadBase64_MalformedBase64(t *testing.T) {
	loader, err := NewLoader(DefaultLoaderConfig())
	require.NoError(t, err)

	// Padded out past the minimum length so the base64 decoder itself
	// is what rejects it.
	payload := "not-base64!!" + strings.Repeat("?", 120)
	_, err = loader.LoadBase64(payload)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode), "expected ErrDecode, got %v", err)
}

func TestLoadBase64_TooShortPayload(t *testing.T) {
	loader, err := NewLoader(DefaultLoaderConfig())
	require.NoError(t, err)

	_, err = loader.LoadBase64("c2hvcnQ=")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestLoadBase64_DecodesBelowMinimumBytes(t *testing.T) {
	// Valid base64 of the minimum encoded length always decodes to at
	// least 75 bytes, so relax the encoded-length floor to reach the
	// decoded-byte check directly.
	cfg := DefaultLoaderConfig()
	cfg.MinEncodedLen = 4
	cfg.MinDecodedBytes = 100
	loader, err := NewLoader(cfg)
	require.NoError(t, err)

	small := base64.StdEncoding.EncodeToString([]byte("tiny payload"))
	_, err = loader.LoadBase64(small)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestLoadBase64_GarbageAudioBytes(t *testing.T) {
	loader, err := NewLoader(DefaultLoaderConfig())
	require.NoError(t, err)

	garbage := make([]byte, 4096)
	for i := range garbage {
		garbage[i] = byte(i * 7)
	}
	_, err = loader.LoadBase64(base64.StdEncoding.EncodeToString(garbage))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAudioLoad), "expected ErrAudioLoad, got %v", err)
}

func TestLoadBase64_ValidWAV(t *testing.T) {
	loader, err := NewLoader(DefaultLoaderConfig())
	require.NoError(t, err)

	tone := testsignal.Sine(440, 1.0, 22050)
	sig, err := loader.LoadBase64(testsignal.EncodeWAVBase64(tone, 22050))
	require.NoError(t, err)

	assert.Equal(t, 22050, sig.SampleRate)
	assert.InDelta(t, 1.0, sig.Duration(), 0.01)
}

func TestLoadBase64_ResamplesToTargetRate(t *testing.T) {
	loader, err := NewLoader(DefaultLoaderConfig())
	require.NoError(t, err)

	// 44.1 kHz source must come out at the 22050 Hz target with the same
	// duration.
	tone := testsignal.Sine(440, 2.0, 44100)
	sig, err := loader.LoadBase64(testsignal.EncodeWAVBase64(tone, 44100))
	require.NoError(t, err)

	assert.Equal(t, 22050, sig.SampleRate)
	assert.InDelta(t, 2.0, sig.Duration(), 0.01)
}

func TestLoadBase64_TooShortAudio(t *testing.T) {
	cfg := DefaultLoaderConfig()
	cfg.MinDuration = 0.5
	loader, err := NewLoader(cfg)
	require.NoError(t, err)

	tone := testsignal.Sine(440, 0.05, 22050)
	_, err = loader.LoadBase64(testsignal.EncodeWAVBase64(tone, 22050))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAudioLoad))
}

func TestSignalDuration(t *testing.T) {
	sig := &Signal{Samples: make([]float64, 44100), SampleRate: 22050}
	assert.InDelta(t, 2.0, sig.Duration(), 1e-9)

	empty := &Signal{SampleRate: 0}
	assert.Equal(t, 0.0, empty.Duration())
}
