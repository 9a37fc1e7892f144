package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/voicedetect/features"
)

// writeModel serializes an artifact with the given intercept and all-zero
// coefficients, so the prediction depends on the intercept alone.
func writeModel(t *testing.T, intercept float64) string {
	t.Helper()

	n := features.FlatLen()
	art := modelArtifact{
		Means:        make([]float64, n),
		Scales:       make([]float64, n),
		Coefficients: make([]float64, n),
		Intercept:    intercept,
	}
	for i := range art.Scales {
		art.Scales[i] = 1
	}

	data, err := yaml.Marshal(art)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoadMLStrategy_RoundTrip(t *testing.T) {
	path := writeModel(t, 2.0)

	s, err := LoadMLStrategy(path)
	require.NoError(t, err)
	assert.Equal(t, "ml", s.Name())
}

func TestLoadMLStrategy_Errors(t *testing.T) {
	t.Run("missing_file", func(t *testing.T) {
		_, err := LoadMLStrategy(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed_yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.yaml")
		require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o600))
		_, err := LoadMLStrategy(path)
		assert.Error(t, err)
	})

	t.Run("coefficient_shape_mismatch", func(t *testing.T) {
		art := modelArtifact{
			Means:        []float64{0, 0},
			Scales:       []float64{1, 1},
			Coefficients: []float64{0.1, 0.2},
		}
		data, err := yaml.Marshal(art)
		require.NoError(t, err)

		path := filepath.Join(t.TempDir(), "model.yaml")
		require.NoError(t, os.WriteFile(path, data, 0o600))

		_, err = LoadMLStrategy(path)
		assert.Error(t, err)
	})
}

func TestMLClassify_InterceptDrivesLabel(t *testing.T) {
	tests := []struct {
		name      string
		intercept float64
		wantLabel Label
	}{
		{name: "positive_intercept_ai", intercept: 2.0, wantLabel: LabelAI},
		{name: "negative_intercept_human", intercept: -2.0, wantLabel: LabelHuman},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := LoadMLStrategy(writeModel(t, tt.intercept))
			require.NoError(t, err)

			out := s.Classify(features.NewVector())
			assert.Equal(t, tt.wantLabel, out.Label)
			// sigmoid(2) ~ 0.88 for the winning class either way.
			assert.InDelta(t, 0.88, out.Confidence, 0.01)
		})
	}
}

func TestMLClassify_PatternsFromThresholdChecks(t *testing.T) {
	sAI, err := LoadMLStrategy(writeModel(t, 2.0))
	require.NoError(t, err)

	out := sAI.Classify(syntheticVector())
	assert.Equal(t, LabelAI, out.Label)
	assert.Equal(t, []string{"pitch_consistency", "compressed_dynamics", "robotic_rhythm"}, out.Patterns)

	sHuman, err := LoadMLStrategy(writeModel(t, -2.0))
	require.NoError(t, err)

	out = sHuman.Classify(naturalVector())
	assert.Equal(t, LabelHuman, out.Label)
	assert.Equal(t, []string{"natural_variation", "dynamic_range", "human_imperfections"}, out.Patterns)
}

func TestNewStrategy_FallsBackToHeuristic(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{name: "empty_path", path: func(t *testing.T) string { return "" }},
		{name: "missing_artifact", path: func(t *testing.T) string {
			return filepath.Join(t.TempDir(), "absent.yaml")
		}},
		{name: "corrupt_artifact", path: func(t *testing.T) string {
			p := filepath.Join(t.TempDir(), "model.yaml")
			require.NoError(t, os.WriteFile(p, []byte("{not yaml"), 0o600))
			return p
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStrategy(tt.path(t), HeuristicConfig{})
			assert.Equal(t, "heuristic", s.Name())
		})
	}
}

func TestNewStrategy_UsesModelWhenArtifactLoads(t *testing.T) {
	s := NewStrategy(writeModel(t, 1.0), HeuristicConfig{})
	assert.Equal(t, "ml", s.Name())
}
