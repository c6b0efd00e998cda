// Package pesq computes PESQ-style perceptual scores through an
// external scorer, treated as a collaborator rather than reimplemented.
//
// The scorer is a capability resolved at startup: when no scorer is
// configured, calls fail fast with ErrUnavailable instead of
// discovering a missing dependency mid-request.
package pesq

import (
	"context"
	"errors"
	"fmt"

	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/audio"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/audio/resample"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/score"
)

// Mode selects the PESQ band mode.
type Mode string

const (
	// Wideband is ITU-T P.862.2 mode, for 16 kHz signals.
	Wideband Mode = "wb"

	// Narrowband is ITU-T P.862 mode, for 8 kHz-bandwidth signals.
	Narrowband Mode = "nb"
)

// TargetRate is the sample rate both signals are brought to before
// scoring.
const TargetRate = 16000

// ErrUnavailable indicates no perceptual scorer is configured.
var ErrUnavailable = errors.New("pesq: scorer unavailable")

// Scorer produces a bounded perceptual score for a reference/degraded
// pair of 16-bit sample slices at the given rate. Implementations must
// be safe for concurrent use.
type Scorer interface {
	Score(ctx context.Context, sampleRate int, ref, deg []int16, mode Mode) (float64, error)
}

// ScoreFunc adapts a function to the Scorer interface.
type ScoreFunc func(ctx context.Context, sampleRate int, ref, deg []int16, mode Mode) (float64, error)

func (f ScoreFunc) Score(ctx context.Context, sampleRate int, ref, deg []int16, mode Mode) (float64, error) {
	return f(ctx, sampleRate, ref, deg, mode)
}

// Details carries the auxiliary metadata attached to a result.
type Details struct {
	RefSampleRate    int     `json:"ref_sample_rate"`
	DegSampleRate    int     `json:"deg_sample_rate"`
	RefDuration      float64 `json:"ref_duration"`
	DegDuration      float64 `json:"deg_duration"`
	AnalysisDuration float64 `json:"analysis_duration"`
}

// Result holds per-mode scores. A failing mode leaves its score nil and
// records the error string; the other mode still carries its score.
type Result struct {
	PESQWB      *float64 `json:"pesq_wb"`
	PESQWBError string   `json:"pesq_wb_error,omitempty"`
	PESQNB      *float64 `json:"pesq_nb"`
	PESQNBError string   `json:"pesq_nb_error,omitempty"`
	Details     Details  `json:"details"`
}

// Compute scores degraded against ref in both band modes. Both signals
// are resampled to 16 kHz and trimmed to a common length first. An
// error is returned only for degenerate input or a nil scorer; per-mode
// scorer failures are recorded inside the result.
func Compute(ctx context.Context, scorer Scorer, ref, deg *audio.Buffer) (*Result, error) {
	if scorer == nil {
		return nil, ErrUnavailable
	}

	details := Details{
		RefSampleRate: ref.Rate,
		DegSampleRate: deg.Rate,
		RefDuration:   score.Round(ref.Seconds(), 2),
		DegDuration:   score.Round(deg.Seconds(), 2),
	}

	ref16k, err := resample.To(ref, TargetRate)
	if err != nil {
		return nil, fmt.Errorf("pesq: reference: %w", err)
	}
	deg16k, err := resample.To(deg, TargetRate)
	if err != nil {
		return nil, fmt.Errorf("pesq: degraded: %w", err)
	}

	ref16k, deg16k = resample.Align(ref16k, deg16k)
	if ref16k.Len() == 0 {
		return nil, errors.New("pesq: empty signal after alignment")
	}
	details.AnalysisDuration = score.Round(ref16k.Seconds(), 2)

	refPCM := audio.Int16(ref16k.Samples)
	degPCM := audio.Int16(deg16k.Samples)

	res := &Result{Details: details}

	if v, err := scorer.Score(ctx, TargetRate, refPCM, degPCM, Wideband); err != nil {
		res.PESQWBError = err.Error()
	} else {
		v = score.Round(v, 3)
		res.PESQWB = &v
	}
	if v, err := scorer.Score(ctx, TargetRate, refPCM, degPCM, Narrowband); err != nil {
		res.PESQNBError = err.Error()
	} else {
		v = score.Round(v, 3)
		res.PESQNB = &v
	}

	return res, nil
}
