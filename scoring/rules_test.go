package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules_EveryMetricResolves(t *testing.T) {
	for _, r := range DefaultRules() {
		_, ok := metricFuncs[r.Metric]
		assert.True(t, ok, "metric %q has no implementation", r.Metric)
		assert.Greater(t, r.Weight, 0.0)
		assert.Greater(t, r.Low, 0.0)
	}
}

func TestLoadRules(t *testing.T) {
	writeTable := func(t *testing.T, body string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		return path
	}

	t.Run("valid_table", func(t *testing.T) {
		path := writeTable(t, `rules:
  - metric: pitch_cv
    low: 0.05
    high: 0.20
    weight: 0.30
    aiTag: pitch_consistency
    humanTag: natural_variation
  - metric: mel_std
    low: 8.0
    weight: 0.10
`)
		rules, err := LoadRules(path)
		require.NoError(t, err)
		require.Len(t, rules, 2)
		assert.Equal(t, MetricPitchCV, rules[0].Metric)
		assert.Equal(t, 0.30, rules[0].Weight)
		assert.Equal(t, 0.0, rules[1].High, "absent high disables the human branch")
	})

	t.Run("unknown_metric", func(t *testing.T) {
		path := writeTable(t, `rules:
  - metric: no_such_metric
    low: 1.0
    weight: 0.1
`)
		_, err := LoadRules(path)
		assert.Error(t, err)
	})

	t.Run("zero_weight", func(t *testing.T) {
		path := writeTable(t, `rules:
  - metric: pitch_cv
    low: 0.05
    weight: 0
`)
		_, err := LoadRules(path)
		assert.Error(t, err)
	})

	t.Run("empty_table", func(t *testing.T) {
		path := writeTable(t, "rules: []\n")
		_, err := LoadRules(path)
		assert.Error(t, err)
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestLoadedRulesDriveClassification(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`rules:
  - metric: mel_std
    low: 8.0
    high: 30.0
    weight: 0.5
    aiTag: missing_variation
    humanTag: human_imperfections
`), 0o600))

	rules, err := LoadRules(path)
	require.NoError(t, err)

	s := NewHeuristicStrategy(HeuristicConfig{Rules: rules, Jitter: NoJitter})
	v := neutralVector() // mel_std 12, between the custom thresholds

	out := s.Classify(v)
	assert.Equal(t, LabelHuman, out.Label, "nothing fires, prior wins")
	assert.Equal(t, 0.52, out.Confidence)
}
