package features

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/voicedetect/audio"
	"github.com/opd-ai/voicedetect/testsignal"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := NewExtractor(DefaultConfig())
	require.NoError(t, err)
	return e
}

func TestNewExtractor(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		expectErr bool
	}{
		{name: "defaults", cfg: Config{}, expectErr: false},
		{name: "explicit_defaults", cfg: DefaultConfig(), expectErr: false},
		{name: "nfft_not_pow2", cfg: Config{SampleRate: 22050, NFFT: 1000, HopSize: 256, NumMels: 64}, expectErr: true},
		{name: "hop_exceeds_nfft", cfg: Config{SampleRate: 22050, NFFT: 1024, HopSize: 2048, NumMels: 64}, expectErr: true},
		{name: "negative_sample_rate", cfg: Config{SampleRate: -1, NFFT: 1024, HopSize: 256, NumMels: 64}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExtractor(tt.cfg)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestExtract_TooShortSignal(t *testing.T) {
	e := newTestExtractor(t)

	sig := &audio.Signal{Samples: make([]float64, 100), SampleRate: 22050}
	_, err := e.Extract(sig)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExtraction))
}

func TestExtract_SampleRateMismatch(t *testing.T) {
	e := newTestExtractor(t)

	sig := &audio.Signal{Samples: make([]float64, 44100), SampleRate: 44100}
	_, err := e.Extract(sig)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExtraction))
}

func TestExtract_Deterministic(t *testing.T) {
	e := newTestExtractor(t)

	tone := testsignal.ComplexTone(440, 2.0, 22050, 5, 6.0, 8.0)
	sig := &audio.Signal{Samples: tone, SampleRate: 22050}

	v1, err := e.Extract(sig)
	require.NoError(t, err)
	v2, err := e.Extract(sig)
	require.NoError(t, err)

	assert.Equal(t, v1.Flatten(), v2.Flatten())
}

func TestExtract_FixedShape(t *testing.T) {
	e := newTestExtractor(t)

	// Different inputs must produce identical key shapes.
	inputs := [][]float64{
		testsignal.Sine(440, 1.0, 22050),
		testsignal.Noise(1.5, 22050, 0.3, 7),
		testsignal.ComplexTone(220, 3.0, 22050, 5, 6.0, 8.0),
	}

	for _, in := range inputs {
		v, err := e.Extract(&audio.Signal{Samples: in, SampleRate: 22050})
		require.NoError(t, err)

		flat := v.Flatten()
		assert.Equal(t, FlatLen(), len(flat))

		assert.Len(t, v.VectorFeature(KeyMFCCMean), NumMFCC)
		assert.Len(t, v.VectorFeature(KeyMFCCStd), NumMFCC)
		assert.Len(t, v.VectorFeature(KeyMFCCDeltaMean), NumMFCC)
		assert.Len(t, v.VectorFeature(KeyContrastMean), NumContrastBands)
		assert.Len(t, v.VectorFeature(KeyChromaMean), NumChroma)
	}
}

func TestExtract_PureTone(t *testing.T) {
	e := newTestExtractor(t)

	tone := testsignal.Sine(440, 3.0, 22050)
	v, err := e.Extract(&audio.Signal{Samples: tone, SampleRate: 22050})
	require.NoError(t, err)

	// Pitch tracking should land near 440 Hz with almost no spread.
	assert.InDelta(t, 440.0, v.Scalar(KeyPitchMean), 15.0)
	assert.Less(t, v.Scalar(KeyPitchStd), 5.0)

	// A constant-amplitude tone has stable energy across frames.
	assert.Greater(t, v.Scalar(KeyRMSMean), 0.0)
	cv := v.Scalar(KeyRMSStd) / v.Scalar(KeyRMSMean)
	assert.Less(t, cv, 0.05)

	// Centroid sits near the tone frequency.
	assert.InDelta(t, 440.0, v.Scalar(KeyCentroidMean), 200.0)

	assert.InDelta(t, 3.0, v.Scalar(KeyDuration), 0.01)
}

func TestExtract_SilenceYieldsNoPitch(t *testing.T) {
	e := newTestExtractor(t)

	silence := make([]float64, 22050)
	v, err := e.Extract(&audio.Signal{Samples: silence, SampleRate: 22050})
	require.NoError(t, err)

	assert.Equal(t, 0.0, v.Scalar(KeyPitchMean))
	assert.Equal(t, 0.0, v.Scalar(KeyPitchStd))
	assert.Equal(t, 0.0, v.Scalar(KeyPitchRange))
	assert.Equal(t, 0.0, v.Scalar(KeyRMSMean))
}

func TestExtract_VibratoWidensPitchSpread(t *testing.T) {
	e := newTestExtractor(t)

	flat := testsignal.Sine(440, 3.0, 22050)
	vibrato := testsignal.ComplexTone(440, 3.0, 22050, 1, 6.0, 25.0)

	vFlat, err := e.Extract(&audio.Signal{Samples: flat, SampleRate: 22050})
	require.NoError(t, err)
	vVib, err := e.Extract(&audio.Signal{Samples: vibrato, SampleRate: 22050})
	require.NoError(t, err)

	assert.Greater(t, vVib.Scalar(KeyPitchStd), vFlat.Scalar(KeyPitchStd),
		"vibrato should increase pitch spread")
}
