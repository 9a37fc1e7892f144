// Package voicedetect classifies voice recordings as AI-generated or human
// speech.
//
// A Detector runs one synchronous pipeline per call: decode the base64
// audio payload, optionally suppress stationary noise, extract acoustic
// features, and score them with either a weighted heuristic rule table or a
// trained model when an artifact is available.
//
// Example:
//
//	detector, err := voicedetect.New(voicedetect.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := detector.Detect(audioBase64, "English")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("%s (%.2f): %s\n",
//	    result.Classification, result.ConfidenceScore, result.Explanation)
package voicedetect

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voicedetect/audio"
	"github.com/opd-ai/voicedetect/features"
	"github.com/opd-ai/voicedetect/scoring"
)

// ErrLanguage indicates a language outside the supported set. Language
// validation happens before any audio work.
var ErrLanguage = errors.New("unsupported language")

// denoiserFrameSize is the spectral-subtraction FFT frame size, roughly
// 46 ms at the default analysis rate.
const denoiserFrameSize = 1024

// DefaultLanguages is the supported language set.
var DefaultLanguages = []string{"Tamil", "English", "Hindi", "Malayalam", "Telugu"}

// Config tunes the whole detection pipeline. Zero values fall back to the
// defaults of each stage.
type Config struct {
	// TargetSampleRate is the rate all audio is resampled to before
	// analysis.
	TargetSampleRate int
	// MinEncodedLen and MinDecodedBytes bound the smallest acceptable
	// payload; MinDuration the shortest decodable clip in seconds.
	MinEncodedLen   int
	MinDecodedBytes int
	MinDuration     float64
	// Languages is the accepted language set.
	Languages []string
	// NoiseReduction enables spectral-subtraction denoising before
	// feature extraction.
	NoiseReduction bool
	// NoiseSuppressionLevel sets denoiser aggressiveness in [0,1].
	NoiseSuppressionLevel float64
	// ModelPath points at a trained model artifact. Empty or failing to
	// load selects the heuristic strategy for the process lifetime.
	ModelPath string
	// RuleTablePath overrides the built-in heuristic rule table.
	RuleTablePath string
	// Scoring tunes priors, jitter, and the confidence clamp band.
	Scoring scoring.HeuristicConfig
}

// DefaultConfig returns the standard pipeline configuration: 22050 Hz
// analysis rate, 100-byte payload floors, all five supported languages,
// heuristic scoring, no noise reduction.
func DefaultConfig() Config {
	lc := audio.DefaultLoaderConfig()
	return Config{
		TargetSampleRate: lc.TargetRate,
		MinEncodedLen:    lc.MinEncodedLen,
		MinDecodedBytes:  lc.MinDecodedBytes,
		MinDuration:      lc.MinDuration,
		Languages:        DefaultLanguages,
	}
}

// Result is the outcome of one detection call. Values are final: the
// confidence is already jittered, clamped, and rounded.
type Result struct {
	Status          string  `json:"status"`
	Language        string  `json:"language"`
	Classification  string  `json:"classification"`
	ConfidenceScore float64 `json:"confidenceScore"`
	Explanation     string  `json:"explanation"`
}

// Detector is the classification pipeline façade. It is immutable after
// construction and safe for concurrent use; every Detect call keeps its
// state local.
type Detector struct {
	cfg       Config
	loader    *audio.Loader
	extractor *features.Extractor
	strategy  scoring.Strategy
	languages map[string]struct{}

	// denoiseLevel > 0 enables noise reduction. The reducer tracks a
	// per-stream noise floor, so each Detect call builds its own.
	denoiseLevel float64
}

// New builds a Detector from the configuration. The scoring strategy is
// chosen once here: a loadable model artifact activates the trained model,
// anything else selects the heuristic permanently.
func New(cfg Config) (*Detector, error) {
	base := DefaultConfig()
	if cfg.TargetSampleRate == 0 {
		cfg.TargetSampleRate = base.TargetSampleRate
	}
	if cfg.MinEncodedLen == 0 {
		cfg.MinEncodedLen = base.MinEncodedLen
	}
	if cfg.MinDecodedBytes == 0 {
		cfg.MinDecodedBytes = base.MinDecodedBytes
	}
	if cfg.MinDuration == 0 {
		cfg.MinDuration = base.MinDuration
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = base.Languages
	}

	if cfg.RuleTablePath != "" {
		rules, err := scoring.LoadRules(cfg.RuleTablePath)
		if err != nil {
			return nil, fmt.Errorf("rule table: %w", err)
		}
		cfg.Scoring.Rules = rules
	}

	extractor, err := features.NewExtractor(features.Config{SampleRate: cfg.TargetSampleRate})
	if err != nil {
		return nil, fmt.Errorf("feature extractor: %w", err)
	}

	loader, err := audio.NewLoader(audio.LoaderConfig{
		TargetRate:      cfg.TargetSampleRate,
		MinEncodedLen:   cfg.MinEncodedLen,
		MinDecodedBytes: cfg.MinDecodedBytes,
		MinDuration:     cfg.MinDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("audio loader: %w", err)
	}

	d := &Detector{
		cfg:       cfg,
		loader:    loader,
		extractor: extractor,
		strategy:  scoring.NewStrategy(cfg.ModelPath, cfg.Scoring),
		languages: make(map[string]struct{}, len(cfg.Languages)),
	}
	for _, lang := range cfg.Languages {
		d.languages[lang] = struct{}{}
	}

	if cfg.NoiseReduction {
		level := cfg.NoiseSuppressionLevel
		if level == 0 {
			level = 0.5
		}
		// Validate the settings once so Detect cannot hit a construction
		// error later.
		if _, err := audio.NewNoiseReducer(level, denoiserFrameSize); err != nil {
			return nil, fmt.Errorf("noise reducer: %w", err)
		}
		d.denoiseLevel = level
	}

	logrus.WithFields(logrus.Fields{
		"function":        "New",
		"sample_rate":     cfg.TargetSampleRate,
		"strategy":        d.strategy.Name(),
		"noise_reduction": cfg.NoiseReduction,
		"languages":       len(cfg.Languages),
	}).Info("Voice detector created")

	return d, nil
}

// Strategy reports the name of the active scoring strategy.
func (d *Detector) Strategy() string { return d.strategy.Name() }

// Languages returns the configured supported language set.
func (d *Detector) Languages() []string {
	out := make([]string, len(d.cfg.Languages))
	copy(out, d.cfg.Languages)
	return out
}

// Detect classifies one base64-encoded audio payload.
//
// The language is validated first; ErrLanguage is returned before any audio
// is touched. Decode and load failures carry the audio package sentinels so
// callers can distinguish client input errors from processing faults.
func (d *Detector) Detect(audioBase64, language string) (*Result, error) {
	logrus.WithFields(logrus.Fields{
		"function": "Detector.Detect",
		"language": language,
		"payload":  len(audioBase64),
	}).Debug("Detection started")

	if _, ok := d.languages[language]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrLanguage, language)
	}

	sig, err := d.loader.LoadBase64(audioBase64)
	if err != nil {
		return nil, err
	}

	if d.denoiseLevel > 0 {
		denoiser, _ := audio.NewNoiseReducer(d.denoiseLevel, denoiserFrameSize)
		cleaned, err := denoiser.Process(sig.Samples)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Detector.Detect",
				"error":    err.Error(),
			}).Warn("Noise reduction failed, using raw signal")
		} else {
			sig.Samples = cleaned
		}
	}

	vec, err := d.extractor.Extract(sig)
	if err != nil {
		return nil, err
	}

	outcome := d.strategy.Classify(vec)

	result := &Result{
		Status:          "success",
		Language:        language,
		Classification:  string(outcome.Label),
		ConfidenceScore: round2(outcome.Confidence),
		Explanation:     scoring.Explain(outcome.Label, outcome.Patterns),
	}

	logrus.WithFields(logrus.Fields{
		"function":       "Detector.Detect",
		"language":       language,
		"classification": result.Classification,
		"confidence":     result.ConfidenceScore,
	}).Info("Detection completed")

	return result, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
