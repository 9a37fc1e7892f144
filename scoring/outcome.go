package scoring

import "github.com/opd-ai/voicedetect/features"

// Label is the classification verdict for a voice sample.
type Label string

const (
	// LabelAI marks a sample classified as synthetically generated.
	LabelAI Label = "AI_GENERATED"
	// LabelHuman marks a sample classified as a natural human voice.
	LabelHuman Label = "HUMAN"
)

// Outcome is the result of classifying one feature vector.
type Outcome struct {
	// Label is the winning class.
	Label Label
	// Confidence is the winning-class probability after jitter and
	// clamping, always within the configured confidence band.
	Confidence float64
	// Patterns lists the rule tags that fired, in evaluation order.
	// Explain renders these into the caller-facing explanation.
	Patterns []string
}

// Strategy classifies a feature vector. Implementations must be safe for
// concurrent use; all per-call state is local.
type Strategy interface {
	Classify(v features.Vector) Outcome
	Name() string
}
