package scoring

import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voicedetect/features"
)

// JitterFunc returns a random confidence perturbation. The classifier adds
// one draw to the winning-class probability before clamping. Injecting a
// fixed function makes classification deterministic in tests.
type JitterFunc func() float64

// UniformJitter draws uniformly from [-width, width] using an unseeded
// source, so repeated classifications of the same input differ slightly.
func UniformJitter(width float64) JitterFunc {
	return func() float64 {
		return width * (2*rand.Float64() - 1)
	}
}

// NoJitter disables confidence perturbation.
func NoJitter() float64 { return 0 }

// HeuristicConfig tunes the rule-table classifier. Zero values fall back
// to the canonical defaults.
type HeuristicConfig struct {
	// Rules is the weighted threshold table, evaluated in order.
	Rules []Rule
	// PriorAI and PriorHuman are the class probabilities used when no
	// rule fires. They should sum to 1 with PriorHuman > PriorAI so an
	// uninformative sample resolves to HUMAN.
	PriorAI    float64
	PriorHuman float64
	// ClampMin and ClampMax bound the reported confidence.
	ClampMin float64
	ClampMax float64
	// Jitter perturbs the winning probability before clamping.
	Jitter JitterFunc
}

func (cfg HeuristicConfig) withDefaults() HeuristicConfig {
	if cfg.Rules == nil {
		cfg.Rules = DefaultRules()
	}
	if cfg.PriorAI == 0 && cfg.PriorHuman == 0 {
		cfg.PriorAI = 0.48
		cfg.PriorHuman = 0.52
	}
	if cfg.ClampMin == 0 && cfg.ClampMax == 0 {
		cfg.ClampMin = 0.52
		cfg.ClampMax = 0.98
	}
	if cfg.Jitter == nil {
		cfg.Jitter = UniformJitter(0.02)
	}
	return cfg
}

// HeuristicStrategy classifies by accumulating weighted evidence from the
// rule table. It holds no mutable state and is safe for concurrent use.
type HeuristicStrategy struct {
	cfg HeuristicConfig
}

// NewHeuristicStrategy creates the rule-table classifier.
func NewHeuristicStrategy(cfg HeuristicConfig) *HeuristicStrategy {
	return &HeuristicStrategy{cfg: cfg.withDefaults()}
}

// Name identifies the strategy in logs and health reports.
func (s *HeuristicStrategy) Name() string { return "heuristic" }

// Classify evaluates the rule table against the feature vector and returns
// the winning label with a jittered, clamped confidence. Ties resolve to
// HUMAN.
func (s *HeuristicStrategy) Classify(v features.Vector) Outcome {
	acc := newScoreAccumulator()

	for _, rule := range s.cfg.Rules {
		metric, ok := metricFuncs[rule.Metric]
		if !ok {
			continue
		}
		value, defined := metric(v)
		if !defined {
			continue
		}

		switch {
		case value < rule.Low:
			acc.addAI(rule.Weight, rule.AITag)
		case rule.High > 0 && value > rule.High:
			acc.addHuman(rule.Weight, rule.HumanTag)
		}
	}

	aiProb, humanProb := acc.probabilities(s.cfg.PriorAI, s.cfg.PriorHuman)

	var out Outcome
	if aiProb > humanProb {
		out.Label = LabelAI
		out.Confidence = s.clamp(aiProb + s.cfg.Jitter())
	} else {
		out.Label = LabelHuman
		out.Confidence = s.clamp(humanProb + s.cfg.Jitter())
	}
	out.Patterns = acc.patterns

	logrus.WithFields(logrus.Fields{
		"function":    "HeuristicStrategy.Classify",
		"ai_score":    acc.ai,
		"human_score": acc.human,
		"label":       out.Label,
		"confidence":  out.Confidence,
		"patterns":    len(out.Patterns),
	}).Debug("Heuristic classification completed")

	return out
}

func (s *HeuristicStrategy) clamp(p float64) float64 {
	if p < s.cfg.ClampMin {
		return s.cfg.ClampMin
	}
	if p > s.cfg.ClampMax {
		return s.cfg.ClampMax
	}
	return p
}

// scoreAccumulator gathers weighted evidence for both classes along with
// the tags that fired, preserving rule-table order.
type scoreAccumulator struct {
	ai       float64
	human    float64
	patterns []string
}

func newScoreAccumulator() *scoreAccumulator {
	return &scoreAccumulator{}
}

func (a *scoreAccumulator) addAI(weight float64, tag string) {
	a.ai += weight
	if tag != "" {
		a.patterns = append(a.patterns, tag)
	}
}

func (a *scoreAccumulator) addHuman(weight float64, tag string) {
	a.human += weight
	if tag != "" {
		a.patterns = append(a.patterns, tag)
	}
}

// probabilities normalizes the accumulated scores into a probability pair,
// falling back to the configured prior when nothing fired.
func (a *scoreAccumulator) probabilities(priorAI, priorHuman float64) (float64, float64) {
	total := a.ai + a.human
	if total <= 0 {
		return priorAI, priorHuman
	}
	return a.ai / total, a.human / total
}
