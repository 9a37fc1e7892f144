package voicedetect

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/voicedetect/audio"
	"github.com/opd-ai/voicedetect/scoring"
	"github.com/opd-ai/voicedetect/testsignal"
)

// voicePayload synthesizes a vibrato-rich harmonic tone, the closest WAV
// stand-in for voiced speech.
func voicePayload() string {
	samples := testsignal.ComplexTone(440, 3.0, 22050, 5, 6.0, 8.0)
	return testsignal.EncodeWAVBase64(samples, 22050)
}

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Scoring.Jitter = scoring.NoJitter
	d, err := New(cfg)
	require.NoError(t, err)
	return d
}

func TestNew_DefaultsToHeuristicStrategy(t *testing.T) {
	d, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "heuristic", d.Strategy())
}

func TestDetect_Success(t *testing.T) {
	d := newTestDetector(t)

	result, err := d.Detect(voicePayload(), "English")
	require.NoError(t, err)

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, "English", result.Language)
	assert.Contains(t, []string{"AI_GENERATED", "HUMAN"}, result.Classification)
	assert.GreaterOrEqual(t, result.ConfidenceScore, 0.52)
	assert.LessOrEqual(t, result.ConfidenceScore, 0.98)
	assert.NotEmpty(t, result.Explanation)

	// Rounded to two decimals.
	assert.Equal(t, result.ConfidenceScore, math.Round(result.ConfidenceScore*100)/100)
}

func TestDetect_FlatToneClassifiedAsAI(t *testing.T) {
	d := newTestDetector(t)

	// A constant-amplitude, constant-pitch tone has near-zero dispersion
	// on every coefficient-of-variation signal, so the AI evidence
	// dominates.
	payload := testsignal.EncodeWAVBase64(testsignal.Sine(440, 3.0, 22050), 22050)

	result, err := d.Detect(payload, "English")
	require.NoError(t, err)
	assert.Equal(t, "AI_GENERATED", result.Classification)
	assert.NotEmpty(t, result.Explanation)
}

func TestDetect_DeterministicWithFixedJitter(t *testing.T) {
	d := newTestDetector(t)
	payload := voicePayload()

	first, err := d.Detect(payload, "Tamil")
	require.NoError(t, err)
	second, err := d.Detect(payload, "Tamil")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDetect_UnsupportedLanguage(t *testing.T) {
	d := newTestDetector(t)

	_, err := d.Detect(voicePayload(), "Klingon")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLanguage))
}

func TestDetect_LanguageCheckedBeforeAudio(t *testing.T) {
	d := newTestDetector(t)

	// Garbage payload plus a bad language: the language error wins.
	_, err := d.Detect("!!!", "French")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLanguage))
}

func TestDetect_MalformedBase64(t *testing.T) {
	d := newTestDetector(t)

	payload := strings.Repeat("not-base64!!", 10)
	_, err := d.Detect(payload, "English")
	require.Error(t, err)
	assert.True(t, errors.Is(err, audio.ErrDecode))
}

func TestDetect_PayloadTooShort(t *testing.T) {
	d := newTestDetector(t)

	_, err := d.Detect("dG9vIHNob3J0", "English")
	require.Error(t, err)
	assert.True(t, errors.Is(err, audio.ErrDecode))
}

func TestDetect_SupportedLanguages(t *testing.T) {
	d := newTestDetector(t)
	payload := voicePayload()

	for _, lang := range DefaultLanguages {
		result, err := d.Detect(payload, lang)
		require.NoError(t, err, "language %s", lang)
		assert.Equal(t, lang, result.Language)
	}
}

func TestDetect_WithNoiseReduction(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NoiseReduction = true
	cfg.Scoring.Jitter = scoring.NoJitter
	d, err := New(cfg)
	require.NoError(t, err)

	tone := testsignal.ComplexTone(220, 3.0, 22050, 5, 6.0, 8.0)
	noise := testsignal.Noise(3.0, 22050, 0.05, 42)
	payload := testsignal.EncodeWAVBase64(testsignal.Mix(tone, noise), 22050)

	result, err := d.Detect(payload, "Hindi")
	require.NoError(t, err)
	assert.Equal(t, "success", result.Status)
}

func TestNew_InvalidNoiseLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NoiseReduction = true
	cfg.NoiseSuppressionLevel = 1.5
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNew_CustomLanguageSet(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Languages = []string{"English"}
	cfg.Scoring.Jitter = scoring.NoJitter
	d, err := New(cfg)
	require.NoError(t, err)

	_, err = d.Detect(voicePayload(), "Tamil")
	assert.True(t, errors.Is(err, ErrLanguage))
}
