package scoring

import (
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/opd-ai/voicedetect/features"
)

// Metric identifiers usable in a rule table. Each names a dispersion
// statistic computed from a feature vector.
const (
	MetricPitchCV       = "pitch_cv"       // pitch_std / pitch_mean
	MetricCentroidCV    = "centroid_cv"    // spectral_centroid_std / mean
	MetricZCRCV         = "zcr_cv"         // zcr_std / zcr_mean
	MetricRMSCV         = "rms_cv"         // rms_std / rms_mean
	MetricMFCCCV        = "mfcc_cv"        // mean(mfcc_std) / mean(|mfcc_mean|)
	MetricContrastRange = "contrast_range" // max - min of contrast band means
	MetricMelStd        = "mel_std"        // mel_spec_std, absolute
	MetricBandwidthCV   = "bandwidth_cv"   // spectral_bandwidth_std / mean
	MetricRolloffCV     = "rolloff_cv"     // spectral_rolloff_std / mean
	MetricMFCCVar       = "mfcc_var"       // mean of per-coefficient variance
)

// Rule is one row of the heuristic rule table. A metric value below Low
// adds Weight to the AI score; a value above High adds Weight to the human
// score. High <= 0 disables the human branch. Tags are appended to the
// pattern list when their branch fires; an empty tag contributes weight
// only.
type Rule struct {
	Metric   string  `yaml:"metric"`
	Low      float64 `yaml:"low"`
	High     float64 `yaml:"high,omitempty"`
	Weight   float64 `yaml:"weight"`
	AITag    string  `yaml:"aiTag,omitempty"`
	HumanTag string  `yaml:"humanTag,omitempty"`
}

// DefaultRules returns the canonical rule table. Order matters: rules are
// evaluated top to bottom and pattern tags keep that order.
func DefaultRules() []Rule {
	return []Rule{
		{Metric: MetricPitchCV, Low: 0.08, High: 0.18, Weight: 0.15,
			AITag: "pitch_consistency", HumanTag: "natural_variation"},
		{Metric: MetricCentroidCV, Low: 0.12, High: 0.28, Weight: 0.12,
			AITag: "spectral_uniformity", HumanTag: "organic_transitions"},
		{Metric: MetricZCRCV, Low: 0.35, High: 0.55, Weight: 0.10,
			AITag: "robotic_rhythm", HumanTag: "micro_fluctuations"},
		{Metric: MetricRMSCV, Low: 0.25, High: 0.45, Weight: 0.10,
			AITag: "compressed_dynamics", HumanTag: "dynamic_range"},
		{Metric: MetricMFCCCV, Low: 0.35, High: 0.65, Weight: 0.12,
			AITag: "artificial_smoothness", HumanTag: "emotional_nuance"},
		{Metric: MetricContrastRange, Low: 12.0, High: 28.0, Weight: 0.08,
			AITag: "synthetic_harmonics", HumanTag: "breathing_patterns"},
		{Metric: MetricMelStd, Low: 10.0, High: 16.0, Weight: 0.08,
			AITag: "missing_variation", HumanTag: "human_imperfections"},
		{Metric: MetricBandwidthCV, Low: 0.18, Weight: 0.08,
			AITag: "metallic_tone"},
		{Metric: MetricRolloffCV, Low: 0.12, High: 0.22, Weight: 0.07},
		{Metric: MetricMFCCVar, Low: 50.0, Weight: 0.05},
	}
}

// LoadRules reads a rule table from a YAML file. The file holds a list of
// Rule entries under a top-level "rules" key.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule table: %w", err)
	}

	var doc struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rule table: %w", err)
	}
	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("rule table %s holds no rules", path)
	}

	for i, r := range doc.Rules {
		if _, ok := metricFuncs[r.Metric]; !ok {
			return nil, fmt.Errorf("rule %d references unknown metric %q", i, r.Metric)
		}
		if r.Weight <= 0 {
			return nil, fmt.Errorf("rule %d (%s) has non-positive weight", i, r.Metric)
		}
	}

	logrus.WithFields(logrus.Fields{
		"function": "LoadRules",
		"path":     path,
		"rules":    len(doc.Rules),
	}).Info("Heuristic rule table loaded")

	return doc.Rules, nil
}

// metricFunc computes one dispersion statistic from a feature vector. The
// second return is false when the statistic is undefined for this input
// (zero or negative mean, empty vector feature) and the rule must be
// skipped.
type metricFunc func(v features.Vector) (float64, bool)

var metricFuncs = map[string]metricFunc{
	MetricPitchCV:       cvMetric(features.KeyPitchStd, features.KeyPitchMean),
	MetricCentroidCV:    cvMetric(features.KeyCentroidStd, features.KeyCentroidMean),
	MetricZCRCV:         cvMetric(features.KeyZCRStd, features.KeyZCRMean),
	MetricRMSCV:         cvMetric(features.KeyRMSStd, features.KeyRMSMean),
	MetricBandwidthCV:   cvMetric(features.KeyBandwidthStd, features.KeyBandwidthMean),
	MetricRolloffCV:     cvMetric(features.KeyRolloffStd, features.KeyRolloffMean),
	MetricMFCCCV:        mfccCV,
	MetricContrastRange: contrastRange,
	MetricMelStd:        melStd,
	MetricMFCCVar:       mfccVar,
}

// cvMetric builds a coefficient-of-variation metric guarded against
// non-positive means.
func cvMetric(stdKey, meanKey string) metricFunc {
	return func(v features.Vector) (float64, bool) {
		mean := v.Scalar(meanKey)
		if mean <= 0 {
			return 0, false
		}
		return v.Scalar(stdKey) / mean, true
	}
}

func mfccCV(v features.Vector) (float64, bool) {
	means := v.VectorFeature(features.KeyMFCCMean)
	stds := v.VectorFeature(features.KeyMFCCStd)
	if len(means) == 0 || len(stds) == 0 {
		return 0, false
	}

	abs := make([]float64, len(means))
	for i, m := range means {
		abs[i] = math.Abs(m)
	}
	return stat.Mean(stds, nil) / (stat.Mean(abs, nil) + 1e-6), true
}

func contrastRange(v features.Vector) (float64, bool) {
	contrast := v.VectorFeature(features.KeyContrastMean)
	if len(contrast) < 2 {
		return 0, false
	}
	return floats.Max(contrast) - floats.Min(contrast), true
}

func melStd(v features.Vector) (float64, bool) {
	return v.Scalar(features.KeyMelSpecStd), true
}

func mfccVar(v features.Vector) (float64, bool) {
	stds := v.VectorFeature(features.KeyMFCCStd)
	if len(stds) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, s := range stds {
		sum += s * s
	}
	return sum / float64(len(stds)), true
}
