package scoring

import (
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voicedetect/features"
)

// modelArtifact is the serialized form of a trained logistic model. The
// coefficient order follows features.Vector's flattening contract; a
// mismatch in length is a load error, never a silent truncation.
type modelArtifact struct {
	Means        []float64 `yaml:"means"`
	Scales       []float64 `yaml:"scales"`
	Coefficients []float64 `yaml:"coefficients"`
	Intercept    float64   `yaml:"intercept"`
}

func (a modelArtifact) validate() error {
	want := features.FlatLen()
	if len(a.Coefficients) != want {
		return fmt.Errorf("model has %d coefficients, feature contract needs %d", len(a.Coefficients), want)
	}
	if len(a.Means) != want || len(a.Scales) != want {
		return fmt.Errorf("model scaler shape (%d means, %d scales) does not match %d features",
			len(a.Means), len(a.Scales), want)
	}
	return nil
}

// MLStrategy classifies with a trained logistic model over the flattened
// feature vector. The artifact is read-only after construction, so a single
// instance serves concurrent requests.
type MLStrategy struct {
	art modelArtifact
}

// LoadMLStrategy reads and validates a model artifact from a YAML file.
func LoadMLStrategy(path string) (*MLStrategy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var art modelArtifact
	if err := yaml.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}
	if err := art.validate(); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "LoadMLStrategy",
		"path":     path,
		"features": len(art.Coefficients),
	}).Info("Trained model loaded")

	return &MLStrategy{art: art}, nil
}

// Name identifies the strategy in logs and health reports.
func (s *MLStrategy) Name() string { return "ml" }

// Classify scores the flattened feature vector with the logistic model.
// Confidence is the probability of the predicted class. Pattern tags come
// from direct threshold checks on a reduced feature subset, independent of
// the heuristic rule table.
func (s *MLStrategy) Classify(v features.Vector) Outcome {
	x := v.Flatten()

	z := s.art.Intercept
	for i, c := range s.art.Coefficients {
		scale := s.art.Scales[i]
		if scale == 0 {
			scale = 1
		}
		z += c * (x[i] - s.art.Means[i]) / scale
	}
	pAI := 1.0 / (1.0 + math.Exp(-z))

	var out Outcome
	if pAI > 0.5 {
		out.Label = LabelAI
		out.Confidence = pAI
	} else {
		out.Label = LabelHuman
		out.Confidence = 1.0 - pAI
	}
	out.Patterns = modelPatterns(v, out.Label)

	logrus.WithFields(logrus.Fields{
		"function":   "MLStrategy.Classify",
		"label":      out.Label,
		"confidence": out.Confidence,
	}).Debug("Model classification completed")

	return out
}

// modelPatterns derives explanation tags for a model verdict from direct
// dispersion checks: low pitch, energy, or zero-crossing spread argues AI;
// high pitch, energy, or mel-spectrogram spread argues human.
func modelPatterns(v features.Vector, label Label) []string {
	var tags []string

	pitchCV, pitchOK := metricFuncs[MetricPitchCV](v)
	rmsCV, rmsOK := metricFuncs[MetricRMSCV](v)

	if label == LabelAI {
		if pitchOK && pitchCV < 0.08 {
			tags = append(tags, "pitch_consistency")
		}
		if rmsOK && rmsCV < 0.25 {
			tags = append(tags, "compressed_dynamics")
		}
		if zcrCV, ok := metricFuncs[MetricZCRCV](v); ok && zcrCV < 0.35 {
			tags = append(tags, "robotic_rhythm")
		}
		return tags
	}

	if pitchOK && pitchCV > 0.18 {
		tags = append(tags, "natural_variation")
	}
	if rmsOK && rmsCV > 0.45 {
		tags = append(tags, "dynamic_range")
	}
	if melSpread, ok := metricFuncs[MetricMelStd](v); ok && melSpread > 16 {
		tags = append(tags, "human_imperfections")
	}
	return tags
}

// NewStrategy selects the classification strategy. A non-empty model path
// that loads cleanly activates MLStrategy; any load failure is logged and
// the process permanently uses the heuristic. Model problems never reach
// callers.
func NewStrategy(modelPath string, cfg HeuristicConfig) Strategy {
	if modelPath != "" {
		if _, err := os.Stat(modelPath); err == nil {
			ml, err := LoadMLStrategy(modelPath)
			if err == nil {
				return ml
			}
			logrus.WithFields(logrus.Fields{
				"function": "NewStrategy",
				"path":     modelPath,
				"error":    err.Error(),
			}).Warn("Model load failed, falling back to heuristic strategy")
		} else {
			logrus.WithFields(logrus.Fields{
				"function": "NewStrategy",
				"path":     modelPath,
			}).Warn("Model artifact not found, falling back to heuristic strategy")
		}
	}
	return NewHeuristicStrategy(cfg)
}
