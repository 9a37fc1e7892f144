package audio

// Signal is a mono PCM recording normalized to [-1, 1] at a fixed sample
// rate. A Signal produced by the Loader is always mono and resampled to
// the configured target rate, with at least the configured minimum
// duration.
type Signal struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the signal length in seconds.
func (s *Signal) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}
