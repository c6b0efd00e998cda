// Package denoise removes an estimated stationary noise floor from a
// degraded recording using Wiener-style spectral subtraction.
//
// A soft per-bin gain attenuates noise-dominated bins instead of
// hard-zeroing them, which avoids the musical-noise artifacts of naive
// magnitude subtraction. The noise floor is estimated from a separate
// noise-only recording supplied by the caller.
package denoise

import (
	"math"
	"math/cmplx"

	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/audio"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/dsp/stft"
)

const (
	windowSize = 1024
	hopSize    = windowSize / 4

	eps = 1e-10

	// peakCeiling bounds the reconstructed signal so a later 16-bit
	// re-encode cannot clip.
	peakCeiling = 0.95
)

// Config tunes the subtraction. The zero value is not valid; use
// DefaultConfig.
type Config struct {
	// Oversubtraction multiplies the noise power estimate. Higher
	// values subtract more aggressively.
	Oversubtraction float64

	// GainFloorDB is the minimum per-bin gain in dB. -15 dB keeps
	// roughly 18% of the original magnitude in fully suppressed bins.
	GainFloorDB float64
}

// DefaultConfig returns the standard moderate-subtraction settings.
func DefaultConfig() Config {
	return Config{Oversubtraction: 2.0, GainFloorDB: -15.0}
}

// Subtract removes the stationary noise estimated from noise out of
// degraded and returns a cleaned buffer of identical length. Both
// buffers must share a sample rate; the caller resamples beforehand.
//
// A silent noise reference leaves the signal effectively unchanged: the
// estimated noise power collapses to the numeric floor and the gain
// saturates at 1.
func Subtract(degraded, noise *audio.Buffer, cfg Config) *audio.Buffer {
	t := stft.New(windowSize, hopSize)

	degFrames := t.Analyze(degraded.Samples)
	noiseFrames := t.Analyze(noise.Samples)

	noisePower := meanPower(noiseFrames, t.Bins())

	floor := math.Pow(10, cfg.GainFloorDB/20.0)

	gain := make([][]float64, len(degFrames))
	for f, frame := range degFrames {
		row := make([]float64, len(frame))
		for i, c := range frame {
			power := real(c)*real(c) + imag(c)*imag(c)
			snr := power / (cfg.Oversubtraction*noisePower[i] + eps)
			g := 1.0 - 1.0/snr
			if g < floor {
				g = floor
			}
			row[i] = g
		}
		gain[f] = row
	}

	smoothGain(gain)

	// Scale the degraded spectrum by the gain, keeping its phase.
	for f, frame := range degFrames {
		for i, c := range frame {
			mag := cmplx.Abs(c) * gain[f][i]
			phase := cmplx.Phase(c)
			frame[i] = cmplx.Rect(mag, phase)
		}
	}

	cleaned := t.Synthesize(degFrames, len(degraded.Samples))

	normalizePeak(cleaned)

	return &audio.Buffer{Samples: cleaned, Rate: degraded.Rate}
}

// meanPower averages squared magnitude across frames, yielding one
// stationary power estimate per frequency bin.
func meanPower(frames [][]complex128, bins int) []float64 {
	power := make([]float64, bins)
	if len(frames) == 0 {
		return power
	}
	for _, frame := range frames {
		for i, c := range frame {
			power[i] += real(c)*real(c) + imag(c)*imag(c)
		}
	}
	for i := range power {
		power[i] /= float64(len(frames))
	}
	return power
}

// smoothGain applies a size-3 moving average along the frequency axis
// of each frame, reducing inter-bin discontinuities. Edges repeat the
// boundary bin.
func smoothGain(gain [][]float64) {
	for _, row := range gain {
		n := len(row)
		if n < 2 {
			continue
		}
		prev := row[0]
		first := (2*row[0] + row[1]) / 3
		for i := 1; i < n-1; i++ {
			cur := row[i]
			row[i] = (prev + cur + row[i+1]) / 3
			prev = cur
		}
		row[n-1] = (prev + 2*row[n-1]) / 3
		row[0] = first
	}
}

// normalizePeak scales the signal down when its peak exceeds the
// ceiling. Signals already below the ceiling are left untouched.
func normalizePeak(x []float64) {
	var peak float64
	for _, s := range x {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak > peakCeiling {
		k := peakCeiling / peak
		for i := range x {
			x[i] *= k
		}
	}
}
