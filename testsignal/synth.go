package testsignal

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"math"
	"math/rand"
)

// Sine generates a pure sinusoid at the given frequency.
func Sine(freq float64, duration float64, sampleRate int) []float64 {
	n := int(duration * float64(sampleRate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return samples
}

// ComplexTone generates a tone with the given number of harmonics and a
// sinusoidal vibrato. Harmonic amplitudes fall off as 1/k. vibratoDepth is
// the peak frequency deviation in Hz; a depth of zero disables vibrato.
func ComplexTone(freq, duration float64, sampleRate int, harmonics int, vibratoHz, vibratoDepth float64) []float64 {
	n := int(duration * float64(sampleRate))
	samples := make([]float64, n)

	phase := 0.0
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		inst := freq
		if vibratoDepth > 0 {
			inst += vibratoDepth * math.Sin(2*math.Pi*vibratoHz*t)
		}
		phase += 2 * math.Pi * inst / float64(sampleRate)

		v := 0.0
		for k := 1; k <= harmonics; k++ {
			v += math.Sin(phase*float64(k)) / float64(k)
		}
		samples[i] = 0.4 * v
	}
	return samples
}

// Noise generates seeded uniform white noise in [-amp, amp].
func Noise(duration float64, sampleRate int, amp float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	n := int(duration * float64(sampleRate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amp * (2*rng.Float64() - 1)
	}
	return samples
}

// Mix sums any number of equal-length signals, clipping to [-1, 1].
func Mix(signals ...[]float64) []float64 {
	if len(signals) == 0 {
		return nil
	}
	out := make([]float64, len(signals[0]))
	for _, sig := range signals {
		for i := range out {
			if i < len(sig) {
				out[i] += sig[i]
			}
		}
	}
	for i, v := range out {
		if v > 1.0 {
			out[i] = 1.0
		} else if v < -1.0 {
			out[i] = -1.0
		}
	}
	return out
}

// EncodeWAV encodes samples as a 16-bit mono PCM WAV payload.
func EncodeWAV(samples []float64, sampleRate int) []byte {
	dataLen := len(samples) * 2

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2)) // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(2))            // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))           // bits per sample

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	for _, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		binary.Write(&buf, binary.LittleEndian, int16(s*32767.0))
	}
	return buf.Bytes()
}

// EncodeWAVBase64 encodes samples as a base64 WAV payload, the wire format
// the detection API consumes.
func EncodeWAVBase64(samples []float64, sampleRate int) string {
	return base64.StdEncoding.EncodeToString(EncodeWAV(samples, sampleRate))
}
