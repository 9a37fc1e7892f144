package scoring

import "strings"

// Phrase dictionaries for the pattern tags the classifiers emit. The two
// dictionaries are disjoint: a tag identifies which class it argues for.
var aiPhrases = map[string]string{
	"pitch_consistency":     "Unnatural pitch consistency",
	"spectral_uniformity":   "Uniform spectral distribution",
	"robotic_rhythm":        "Robotic speech patterns",
	"synthetic_harmonics":   "Synthetic harmonic structures",
	"compressed_dynamics":   "Compressed dynamic range",
	"artificial_smoothness": "Artificially smooth transitions",
	"missing_variation":     "Missing natural micro-variations",
	"metallic_tone":         "Metallic overtones detected",
}

var humanPhrases = map[string]string{
	"natural_variation":   "Natural pitch variations",
	"breathing_patterns":  "Natural breathing patterns",
	"micro_fluctuations":  "Authentic micro-fluctuations",
	"emotional_nuance":    "Emotional nuances present",
	"organic_transitions": "Organic frequency transitions",
	"dynamic_range":       "Natural dynamic range",
	"human_imperfections": "Subtle human imperfections",
}

const (
	fallbackAI    = "Synthetic voice patterns detected"
	fallbackHuman = "Natural human voice characteristics detected"
)

// Explain renders an outcome's pattern tags into the caller-facing
// explanation. Only tags arguing for the winning label are used; the first
// two (in evaluation order) are joined with a label-specific connective.
// The result is never empty.
func Explain(label Label, patterns []string) string {
	if label == LabelAI {
		phrases := lookup(aiPhrases, patterns)
		if len(phrases) == 0 {
			return fallbackAI
		}
		return strings.Join(phrases, " and ") + " detected"
	}

	phrases := lookup(humanPhrases, patterns)
	if len(phrases) == 0 {
		return fallbackHuman
	}
	return strings.Join(phrases, " with ")
}

// lookup resolves at most two tags through the given dictionary, keeping
// the original order.
func lookup(dict map[string]string, patterns []string) []string {
	var phrases []string
	for _, tag := range patterns {
		if phrase, ok := dict[tag]; ok {
			phrases = append(phrases, phrase)
			if len(phrases) == 2 {
				break
			}
		}
	}
	return phrases
}
