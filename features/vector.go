package features

import "math"

// Feature key names. The scoring rule table and the model flattening
// contract both reference these.
const (
	KeyMFCCMean      = "mfcc_mean"
	KeyMFCCStd       = "mfcc_std"
	KeyMFCCDeltaMean = "mfcc_delta_mean"

	KeyCentroidMean = "spectral_centroid_mean"
	KeyCentroidStd  = "spectral_centroid_std"

	KeyBandwidthMean = "spectral_bandwidth_mean"
	KeyBandwidthStd  = "spectral_bandwidth_std"

	KeyContrastMean = "spectral_contrast_mean"

	KeyRolloffMean = "spectral_rolloff_mean"
	KeyRolloffStd  = "spectral_rolloff_std"

	KeyZCRMean = "zcr_mean"
	KeyZCRStd  = "zcr_std"

	KeyRMSMean = "rms_mean"
	KeyRMSStd  = "rms_std"

	KeyPitchMean  = "pitch_mean"
	KeyPitchStd   = "pitch_std"
	KeyPitchRange = "pitch_range"

	KeyTempo = "tempo"

	KeyMelSpecMean = "mel_spec_mean"
	KeyMelSpecStd  = "mel_spec_std"

	KeyChromaMean = "chroma_mean"
	KeyChromaStd  = "chroma_std"

	KeyDuration = "duration"
)

// Fixed vector-feature lengths. Part of the flattening contract.
const (
	NumMFCC          = 20
	NumContrastBands = 7
	NumChroma        = 12
)

// ScalarOrder is the fixed flattening order for scalar features. It is
// followed by VectorOrder expanded in place. This ordering is part of the
// trained model contract and must match the order used at training time.
var ScalarOrder = []string{
	KeyCentroidMean, KeyCentroidStd,
	KeyBandwidthMean, KeyBandwidthStd,
	KeyRolloffMean, KeyRolloffStd,
	KeyZCRMean, KeyZCRStd,
	KeyRMSMean, KeyRMSStd,
	KeyPitchMean, KeyPitchStd, KeyPitchRange,
	KeyTempo,
	KeyMelSpecMean, KeyMelSpecStd,
	KeyChromaStd,
	KeyDuration,
}

// VectorOrder is the fixed flattening order for vector features, with
// their fixed lengths.
var VectorOrder = []struct {
	Key string
	Len int
}{
	{KeyMFCCMean, NumMFCC},
	{KeyMFCCStd, NumMFCC},
	{KeyMFCCDeltaMean, NumMFCC},
	{KeyContrastMean, NumContrastBands},
	{KeyChromaMean, NumChroma},
}

// FlatLen is the total length of a flattened vector.
func FlatLen() int {
	n := len(ScalarOrder)
	for _, v := range VectorOrder {
		n += v.Len
	}
	return n
}

// Vector is the fixed-shape acoustic feature mapping produced by the
// Extractor. Scalar and vector entries are kept separately; reads of
// absent keys yield zero values of the right shape, never a missing key.
type Vector struct {
	scalars map[string]float64
	vectors map[string][]float64
}

// NewVector creates an empty feature vector.
func NewVector() Vector {
	return Vector{
		scalars: make(map[string]float64),
		vectors: make(map[string][]float64),
	}
}

// SetScalar stores a scalar feature. Non-finite values are stored as 0.0
// so the fixed-shape invariant holds for degenerate signals.
func (v Vector) SetScalar(key string, val float64) {
	v.scalars[key] = sanitize(val)
}

// Scalar returns a scalar feature, or 0.0 when absent.
func (v Vector) Scalar(key string) float64 {
	return v.scalars[key]
}

// SetVector stores a vector feature, sanitizing non-finite entries.
func (v Vector) SetVector(key string, vals []float64) {
	clean := make([]float64, len(vals))
	for i, x := range vals {
		clean[i] = sanitize(x)
	}
	v.vectors[key] = clean
}

// VectorFeature returns a vector feature, or nil when absent.
func (v Vector) VectorFeature(key string) []float64 {
	return v.vectors[key]
}

// Flatten expands the vector into the fixed-order numeric array defined by
// ScalarOrder and VectorOrder. Absent scalars contribute 0.0; absent or
// short vector features are zero-padded to their fixed length.
func (v Vector) Flatten() []float64 {
	out := make([]float64, 0, FlatLen())
	for _, key := range ScalarOrder {
		out = append(out, v.scalars[key])
	}
	for _, vf := range VectorOrder {
		vals := v.vectors[vf.Key]
		for i := 0; i < vf.Len; i++ {
			if i < len(vals) {
				out = append(out, vals[i])
			} else {
				out = append(out, 0.0)
			}
		}
	}
	return out
}

func sanitize(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0.0
	}
	return x
}
