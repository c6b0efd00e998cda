// Package odg estimates perceptual audio degradation on the ODG scale
// using Log-Spectral Distance.
//
// The mapping odg = clamp(-1.5*sqrt(LSD), -4, 0) is a deliberate
// heuristic stand-in for the full PEAQ psychoacoustic model: it shares
// the sign convention and bounds of the standard ODG scale (0 =
// imperceptible, -4 = very annoying) but is indicative only, not
// ITU-compliant.
package odg

import (
	"errors"
	"fmt"
	"math"

	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/audio"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/audio/resample"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/audio/wavio"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/dsp/denoise"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/dsp/stft"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/score"
)

const (
	windowSize = 2048

	eps = 1e-10

	minODG = -4.0
	maxODG = 0.0
)

// ErrEmptyInput indicates a degenerate signal after alignment.
var ErrEmptyInput = errors.New("odg: empty signal after alignment")

// Details carries auxiliary metadata attached to a Result.
type Details struct {
	RefSampleRate       int     `json:"ref_sample_rate"`
	DegSampleRate       int     `json:"deg_sample_rate"`
	RefDuration         float64 `json:"ref_duration"`
	DegDuration         float64 `json:"deg_duration"`
	AnalysisDuration    float64 `json:"analysis_duration"`
	Resampled           bool    `json:"resampled,omitempty"`
	NoiseDuration       float64 `json:"noise_duration,omitempty"`
	SpectralSubtraction bool    `json:"spectral_subtraction,omitempty"`
}

// Result is an ODG estimate. When a noise reference was supplied, the
// noise-subtracted degraded signal is carried as a Base64 WAV so the
// caller can play back exactly what was scored.
type Result struct {
	ODGScore           float64 `json:"odg_score"`
	LSD                float64 `json:"lsd"`
	Details            Details `json:"details"`
	SubtractedAudioB64 string  `json:"subtracted_audio_b64,omitempty"`
}

// Scorer computes ODG estimates. The zero value uses default denoise
// settings; a Scorer is stateless and safe for concurrent use.
type Scorer struct {
	Denoise denoise.Config
}

// New returns a Scorer with default spectral-subtraction settings.
func New() *Scorer {
	return &Scorer{Denoise: denoise.DefaultConfig()}
}

// ScoreFiles loads reference and degraded WAV files (plus an optional
// noise-only recording; pass "" for none) and scores them. File and
// format errors abort the whole request before any scoring work.
func (s *Scorer) ScoreFiles(refPath, degPath, noisePath string) (*Result, error) {
	ref, err := wavio.Load(refPath)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	deg, err := wavio.Load(degPath)
	if err != nil {
		return nil, fmt.Errorf("degraded: %w", err)
	}

	var noise *audio.Buffer
	if noisePath != "" {
		noise, err = wavio.Load(noisePath)
		if err != nil {
			return nil, fmt.Errorf("noise: %w", err)
		}
	}
	return s.Score(ref, deg, noise)
}

// Score compares degraded against ref, optionally removing the noise
// floor estimated from noise first. Signals with mismatched rates are
// resampled to the reference rate before analysis.
func (s *Scorer) Score(ref, deg, noise *audio.Buffer) (*Result, error) {
	details := Details{
		RefSampleRate: ref.Rate,
		DegSampleRate: deg.Rate,
		RefDuration:   score.Round(ref.Seconds(), 2),
		DegDuration:   score.Round(deg.Seconds(), 2),
	}

	if deg.Rate != ref.Rate {
		resampled, err := resample.To(deg, ref.Rate)
		if err != nil {
			return nil, fmt.Errorf("odg: degraded: %w", err)
		}
		deg = resampled
		details.Resampled = true
	}

	result := &Result{}

	if noise != nil {
		if noise.Rate != ref.Rate {
			resampled, err := resample.To(noise, ref.Rate)
			if err != nil {
				return nil, fmt.Errorf("odg: noise: %w", err)
			}
			noise = resampled
		}
		deg = denoise.Subtract(deg, noise, s.Denoise)
		details.NoiseDuration = score.Round(noise.Seconds(), 2)
		details.SpectralSubtraction = true

		b64, err := wavio.B64(deg)
		if err != nil {
			return nil, fmt.Errorf("odg: %w", err)
		}
		result.SubtractedAudioB64 = b64
	}

	ref, deg = resample.Align(ref, deg)
	if ref.Len() == 0 {
		return nil, ErrEmptyInput
	}
	details.AnalysisDuration = score.Round(ref.Seconds(), 2)

	lsd := LSD(ref.Samples, deg.Samples)

	result.ODGScore = score.Round(FromLSD(lsd), 3)
	result.LSD = score.Round(lsd, 6)
	result.Details = details
	return result, nil
}

// LSD computes the Log-Spectral Distance between two equal-length
// signals: the mean squared log10-magnitude difference across all
// time-frequency bins of a 2048-point short-time transform. It is
// symmetric in its arguments and zero iff the magnitude spectra match.
func LSD(ref, deg []float64) float64 {
	t := stft.New(windowSize, 0)
	refMag := stft.Magnitude(t.Analyze(ref))
	degMag := stft.Magnitude(t.Analyze(deg))

	var sum float64
	var count int
	for f := range refMag {
		for i := range refMag[f] {
			d := math.Log10(refMag[f][i]+eps) - math.Log10(degMag[f][i]+eps)
			sum += d * d
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// FromLSD maps a Log-Spectral Distance onto the bounded ODG scale.
func FromLSD(lsd float64) float64 {
	odg := -1.5 * math.Sqrt(lsd)
	if odg < minODG {
		return minODG
	}
	if odg > maxODG {
		return maxODG
	}
	return odg
}
