package features

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/opd-ai/voicedetect/audio"
	"github.com/opd-ai/voicedetect/dsp"
)

// Config controls the analysis geometry of the extractor.
type Config struct {
	SampleRate int     // expected signal sample rate in Hz (default 22050)
	NFFT       int     // FFT size, power of two (default 2048)
	HopSize    int     // hop between frames in samples (default 512)
	NumMels    int     // mel bands for the log-mel spectrogram (default 128)
	FMinHz     float64 // lowest tracked pitch in Hz (default 65)
	FMaxHz     float64 // highest tracked pitch in Hz (default 2100)
}

// DefaultConfig returns the standard analysis geometry: 22050 Hz input,
// 2048-point frames with a 512-sample hop, and a 128-band mel spectrogram.
func DefaultConfig() Config {
	return Config{
		SampleRate: 22050,
		NFFT:       dsp.DefaultNFFT,
		HopSize:    dsp.DefaultHop,
		NumMels:    128,
		FMinHz:     65.0,
		FMaxHz:     2100.0,
	}
}

// Extractor computes feature vectors from audio signals. The window, mel
// filterbank, and bin frequencies are precomputed at construction and
// never mutated afterwards, so a single Extractor is safe for concurrent
// requests.
type Extractor struct {
	cfg     Config
	window  []float64
	melBank [][]float64
	freqs   []float64
}

// NewExtractor creates a feature extractor with the given analysis
// configuration. Zero-valued fields fall back to DefaultConfig values.
func NewExtractor(cfg Config) (*Extractor, error) {
	cfg = applyDefaults(cfg)

	if !dsp.IsPow2(cfg.NFFT) {
		logrus.WithFields(logrus.Fields{
			"function": "NewExtractor",
			"nfft":     cfg.NFFT,
			"error":    "nfft must be a power of two",
		}).Error("Extractor config validation failed")
		return nil, fmt.Errorf("nfft must be a power of two: %d", cfg.NFFT)
	}
	if cfg.HopSize <= 0 || cfg.HopSize > cfg.NFFT {
		return nil, fmt.Errorf("invalid hop size %d for nfft %d", cfg.HopSize, cfg.NFFT)
	}
	if cfg.NumMels <= 0 {
		return nil, fmt.Errorf("invalid mel band count: %d", cfg.NumMels)
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", cfg.SampleRate)
	}

	logrus.WithFields(logrus.Fields{
		"function":    "NewExtractor",
		"sample_rate": cfg.SampleRate,
		"nfft":        cfg.NFFT,
		"hop_size":    cfg.HopSize,
		"num_mels":    cfg.NumMels,
	}).Info("Feature extractor created")

	return &Extractor{
		cfg:     cfg,
		window:  dsp.Hanning(cfg.NFFT),
		melBank: dsp.MelFilterBank(cfg.NumMels, cfg.NFFT, cfg.SampleRate, 0, float64(cfg.SampleRate)/2),
		freqs:   dsp.BinFrequencies(cfg.NFFT, cfg.SampleRate),
	}, nil
}

func applyDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.SampleRate == 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.NFFT == 0 {
		cfg.NFFT = def.NFFT
	}
	if cfg.HopSize == 0 {
		cfg.HopSize = def.HopSize
	}
	if cfg.NumMels == 0 {
		cfg.NumMels = def.NumMels
	}
	if cfg.FMinHz == 0 {
		cfg.FMinHz = def.FMinHz
	}
	if cfg.FMaxHz == 0 {
		cfg.FMaxHz = def.FMaxHz
	}
	return cfg
}

// Extract computes the complete feature vector for a signal.
//
// Returns ErrExtraction when the signal is shorter than one analysis frame
// or a transform fails. Every returned Vector has the full fixed key set.
func (e *Extractor) Extract(sig *audio.Signal) (Vector, error) {
	logrus.WithFields(logrus.Fields{
		"function":    "Extractor.Extract",
		"samples":     len(sig.Samples),
		"sample_rate": sig.SampleRate,
	}).Debug("Extracting acoustic features")

	if sig.SampleRate != e.cfg.SampleRate {
		return Vector{}, newExtractionError("framing",
			fmt.Errorf("sample rate mismatch: expected %d, got %d", e.cfg.SampleRate, sig.SampleRate))
	}
	if dsp.NumFrames(len(sig.Samples), e.cfg.NFFT, e.cfg.HopSize) == 0 {
		return Vector{}, newExtractionError("framing",
			fmt.Errorf("signal of %d samples shorter than one %d-sample frame", len(sig.Samples), e.cfg.NFFT))
	}

	spec, err := dsp.Spectrogram(sig.Samples, e.window, e.cfg.NFFT, e.cfg.HopSize)
	if err != nil {
		return Vector{}, newExtractionError("stft", err)
	}

	v := NewVector()

	melDB := e.computeMelSpectrogram(spec)
	e.computeMFCC(v, melDB)
	e.computeSpectralShape(v, spec, e.freqs)
	e.computeContrast(v, spec, e.freqs)
	e.computeTimeDomain(v, sig.Samples)
	e.computePitch(v, spec, e.freqs)
	e.computeTempo(v, spec, sig.SampleRate)
	e.computeMelStats(v, melDB)
	e.computeChroma(v, spec, e.freqs)

	v.SetScalar(KeyDuration, sig.Duration())

	logrus.WithFields(logrus.Fields{
		"function": "Extractor.Extract",
		"frames":   len(spec),
	}).Debug("Feature extraction completed")

	return v, nil
}

// computeMelSpectrogram projects the power spectrogram onto the mel
// filterbank and converts to dB referenced to the map's own maximum.
func (e *Extractor) computeMelSpectrogram(spec [][]float64) [][]float64 {
	mel := make([][]float64, len(spec))
	maxPower := 0.0

	for t, mag := range spec {
		row := make([]float64, e.cfg.NumMels)
		for m, filter := range e.melBank {
			sum := 0.0
			for k, w := range filter {
				if w > 0 {
					sum += w * mag[k] * mag[k]
				}
			}
			row[m] = sum
			if sum > maxPower {
				maxPower = sum
			}
		}
		mel[t] = row
	}

	for _, row := range mel {
		for m, p := range row {
			row[m] = dsp.PowerToDB(p, maxPower)
		}
	}
	return mel
}

// computeMFCC derives 20 cepstral coefficients per frame from the log-mel
// spectrogram and stores per-coefficient mean, standard deviation, and
// mean frame-to-frame delta.
func (e *Extractor) computeMFCC(v Vector, melDB [][]float64) {
	numFrames := len(melDB)
	coeffs := make([][]float64, numFrames)
	for t, row := range melDB {
		coeffs[t] = dsp.DCT2(row, NumMFCC)
	}

	mean := make([]float64, NumMFCC)
	std := make([]float64, NumMFCC)
	deltaMean := make([]float64, NumMFCC)

	column := make([]float64, numFrames)
	for c := 0; c < NumMFCC; c++ {
		for t := 0; t < numFrames; t++ {
			column[t] = coeffs[t][c]
		}
		mean[c] = stat.Mean(column, nil)
		std[c] = stdOrZero(column)

		if numFrames > 1 {
			deltaSum := 0.0
			for t := 1; t < numFrames; t++ {
				deltaSum += coeffs[t][c] - coeffs[t-1][c]
			}
			deltaMean[c] = deltaSum / float64(numFrames-1)
		}
	}

	v.SetVector(KeyMFCCMean, mean)
	v.SetVector(KeyMFCCStd, std)
	v.SetVector(KeyMFCCDeltaMean, deltaMean)
}

// computeSpectralShape stores centroid, bandwidth, and rolloff statistics.
func (e *Extractor) computeSpectralShape(v Vector, spec [][]float64, freqs []float64) {
	numFrames := len(spec)
	centroid := make([]float64, numFrames)
	bandwidth := make([]float64, numFrames)
	rolloff := make([]float64, numFrames)

	const rolloffFrac = 0.85

	for t, mag := range spec {
		total := floats.Sum(mag)
		if total <= 0 {
			continue
		}

		c := 0.0
		for k, m := range mag {
			c += freqs[k] * m
		}
		c /= total
		centroid[t] = c

		bw := 0.0
		for k, m := range mag {
			d := freqs[k] - c
			bw += m * d * d
		}
		bandwidth[t] = math.Sqrt(bw / total)

		target := rolloffFrac * total
		cum := 0.0
		for k, m := range mag {
			cum += m
			if cum >= target {
				rolloff[t] = freqs[k]
				break
			}
		}
	}

	v.SetScalar(KeyCentroidMean, stat.Mean(centroid, nil))
	v.SetScalar(KeyCentroidStd, stdOrZero(centroid))
	v.SetScalar(KeyBandwidthMean, stat.Mean(bandwidth, nil))
	v.SetScalar(KeyBandwidthStd, stdOrZero(bandwidth))
	v.SetScalar(KeyRolloffMean, stat.Mean(rolloff, nil))
	v.SetScalar(KeyRolloffStd, stdOrZero(rolloff))
}

// computeContrast stores the per-band mean spectral contrast vector.
// Bands follow an octave layout starting at 200 Hz; contrast is the dB
// spread between the band's peak and valley energy per frame.
func (e *Extractor) computeContrast(v Vector, spec [][]float64, freqs []float64) {
	edges := contrastBandEdges(freqs[len(freqs)-1])

	bandMeans := make([]float64, NumContrastBands)
	for b := 0; b < NumContrastBands; b++ {
		lo, hi := edges[b], edges[b+1]

		frameVals := make([]float64, 0, len(spec))
		for _, mag := range spec {
			var peak, valley float64
			valley = math.MaxFloat64
			count := 0
			for k, f := range freqs {
				if f < lo || f >= hi {
					continue
				}
				m := mag[k]
				if m > peak {
					peak = m
				}
				if m < valley {
					valley = m
				}
				count++
			}
			if count == 0 {
				continue
			}
			const eps = 1e-10
			frameVals = append(frameVals, 20.0*math.Log10((peak+eps)/(valley+eps)))
		}
		if len(frameVals) > 0 {
			bandMeans[b] = stat.Mean(frameVals, nil)
		}
	}

	v.SetVector(KeyContrastMean, bandMeans)
}

func contrastBandEdges(nyquist float64) []float64 {
	edges := make([]float64, NumContrastBands+1)
	edges[0] = 0
	f := 200.0
	for i := 1; i <= NumContrastBands; i++ {
		edges[i] = f
		f *= 2
	}
	if edges[NumContrastBands] > nyquist {
		edges[NumContrastBands] = nyquist
	}
	return edges
}

// computeTimeDomain stores zero-crossing rate and RMS energy statistics
// computed directly on the waveform frames.
func (e *Extractor) computeTimeDomain(v Vector, samples []float64) {
	frameLen := e.cfg.NFFT
	hop := e.cfg.HopSize
	numFrames := dsp.NumFrames(len(samples), frameLen, hop)

	zcr := make([]float64, numFrames)
	rms := make([]float64, numFrames)

	for t := 0; t < numFrames; t++ {
		start := t * hop
		crossings := 0
		energy := 0.0
		for i := start; i < start+frameLen; i++ {
			s := samples[i]
			energy += s * s
			if i > start && (s >= 0) != (samples[i-1] >= 0) {
				crossings++
			}
		}
		zcr[t] = float64(crossings) / float64(frameLen)
		rms[t] = math.Sqrt(energy / float64(frameLen))
	}

	v.SetScalar(KeyZCRMean, stat.Mean(zcr, nil))
	v.SetScalar(KeyZCRStd, stdOrZero(zcr))
	v.SetScalar(KeyRMSMean, stat.Mean(rms, nil))
	v.SetScalar(KeyRMSStd, stdOrZero(rms))
}

// computePitch tracks the fundamental frequency via per-frame spectral
// peak picking, keeping only candidates with positive energy. When no
// voiced pitch is found all three statistics stay at 0.0.
func (e *Extractor) computePitch(v Vector, spec [][]float64, freqs []float64) {
	var pitches []float64

	for _, mag := range spec {
		frameMax := floats.Max(mag)
		if frameMax <= 0 {
			continue
		}
		threshold := 0.1 * frameMax

		// Strongest local maximum inside the tracked pitch band.
		bestFreq := 0.0
		bestMag := 0.0
		for k := 1; k < len(mag)-1; k++ {
			f := freqs[k]
			if f < e.cfg.FMinHz || f > e.cfg.FMaxHz {
				continue
			}
			m := mag[k]
			if m <= threshold || m <= mag[k-1] || m < mag[k+1] {
				continue
			}
			if m > bestMag {
				bestMag = m
				// Parabolic interpolation refines the peak position.
				denom := mag[k-1] - 2*m + mag[k+1]
				shift := 0.0
				if denom != 0 {
					shift = 0.5 * (mag[k-1] - mag[k+1]) / denom
				}
				binWidth := freqs[1] - freqs[0]
				bestFreq = f + shift*binWidth
			}
		}
		if bestMag > 0 && bestFreq > 0 {
			pitches = append(pitches, bestFreq)
		}
	}

	if len(pitches) == 0 {
		v.SetScalar(KeyPitchMean, 0)
		v.SetScalar(KeyPitchStd, 0)
		v.SetScalar(KeyPitchRange, 0)
		return
	}

	v.SetScalar(KeyPitchMean, stat.Mean(pitches, nil))
	v.SetScalar(KeyPitchStd, stdOrZero(pitches))
	v.SetScalar(KeyPitchRange, floats.Max(pitches)-floats.Min(pitches))
}

// computeTempo estimates a single beat rate in BPM from the autocorrelation
// of the onset-strength envelope (positive spectral flux per frame).
func (e *Extractor) computeTempo(v Vector, spec [][]float64, sampleRate int) {
	numFrames := len(spec)
	if numFrames < 4 {
		v.SetScalar(KeyTempo, 0)
		return
	}

	onset := make([]float64, numFrames)
	for t := 1; t < numFrames; t++ {
		flux := 0.0
		for k := range spec[t] {
			d := spec[t][k] - spec[t-1][k]
			if d > 0 {
				flux += d
			}
		}
		onset[t] = flux
	}

	mean := stat.Mean(onset, nil)
	for t := range onset {
		onset[t] -= mean
	}

	frameRate := float64(sampleRate) / float64(e.cfg.HopSize)
	minLag := int(frameRate * 60.0 / 300.0) // 300 BPM ceiling
	maxLag := int(frameRate * 60.0 / 30.0)  // 30 BPM floor
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= numFrames {
		maxLag = numFrames - 1
	}
	if minLag > maxLag {
		v.SetScalar(KeyTempo, 0)
		return
	}

	bestLag := 0
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		corr := 0.0
		for t := lag; t < numFrames; t++ {
			corr += onset[t] * onset[t-lag]
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}

	if bestLag == 0 {
		v.SetScalar(KeyTempo, 0)
		return
	}
	v.SetScalar(KeyTempo, 60.0*frameRate/float64(bestLag))
}

// computeMelStats stores the global mean and spread of the log-mel map.
func (e *Extractor) computeMelStats(v Vector, melDB [][]float64) {
	flat := make([]float64, 0, len(melDB)*e.cfg.NumMels)
	for _, row := range melDB {
		flat = append(flat, row...)
	}
	v.SetScalar(KeyMelSpecMean, stat.Mean(flat, nil))
	v.SetScalar(KeyMelSpecStd, stdOrZero(flat))
}

// computeChroma folds spectral energy onto the twelve pitch classes and
// stores the per-class mean vector plus the mean per-class deviation.
func (e *Extractor) computeChroma(v Vector, spec [][]float64, freqs []float64) {
	const refC0 = 16.351597831287414 // C0 in Hz

	numFrames := len(spec)
	chroma := make([][]float64, numFrames)

	for t, mag := range spec {
		classes := make([]float64, NumChroma)
		for k, f := range freqs {
			if f < 20 {
				continue
			}
			pc := int(math.Round(12.0*math.Log2(f/refC0))) % NumChroma
			if pc < 0 {
				pc += NumChroma
			}
			classes[pc] += mag[k] * mag[k]
		}
		// Normalize each frame by its own maximum
		maxC := floats.Max(classes)
		if maxC > 0 {
			for i := range classes {
				classes[i] /= maxC
			}
		}
		chroma[t] = classes
	}

	mean := make([]float64, NumChroma)
	stds := make([]float64, NumChroma)
	column := make([]float64, numFrames)
	for pc := 0; pc < NumChroma; pc++ {
		for t := 0; t < numFrames; t++ {
			column[t] = chroma[t][pc]
		}
		mean[pc] = stat.Mean(column, nil)
		stds[pc] = stdOrZero(column)
	}

	v.SetVector(KeyChromaMean, mean)
	v.SetScalar(KeyChromaStd, stat.Mean(stds, nil))
}

// stdOrZero computes the sample standard deviation, returning 0.0 for
// fewer than two observations instead of NaN.
func stdOrZero(x []float64) float64 {
	if len(x) < 2 {
		return 0.0
	}
	return stat.StdDev(x, nil)
}
