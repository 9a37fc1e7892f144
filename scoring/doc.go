// Package scoring turns acoustic feature vectors into AI-vs-human voice
// classifications.
//
// Two strategies implement the Strategy interface. HeuristicStrategy walks a
// weighted rule table of feature dispersion statistics (coefficient of
// variation, range, spread) and accumulates evidence for each class.
// MLStrategy applies a trained logistic model over the flattened feature
// vector; it is selected only when a model artifact loads successfully, and
// any load failure falls back permanently to the heuristic.
//
// Both strategies emit an Outcome carrying the label, a clamped confidence
// score, and the pattern tags that fired, which Explain renders into a
// human-readable sentence.
package scoring
