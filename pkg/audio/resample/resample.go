// Package resample converts audio buffers between sample rates and
// aligns buffer pairs to a common analysis length.
package resample

import (
	"fmt"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/audio"
)

// To resamples a buffer to the target rate using band-limited conversion.
// When the rates already match the buffer is returned unchanged. The
// output length is round(n * target / original).
func To(buf *audio.Buffer, targetRate int) (*audio.Buffer, error) {
	if targetRate <= 0 {
		return nil, fmt.Errorf("resample: invalid target rate %d", targetRate)
	}
	if buf.Rate == targetRate {
		return buf, nil
	}
	if len(buf.Samples) == 0 {
		return &audio.Buffer{Samples: nil, Rate: targetRate}, nil
	}

	cfg := &resampling.Config{
		InputRate:  float64(buf.Rate),
		OutputRate: float64(targetRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	}
	rs, err := resampling.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}

	want := int(math.Round(float64(len(buf.Samples)) * float64(targetRate) / float64(buf.Rate)))

	out, err := rs.Process(buf.Samples)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}

	// The converter is a streaming filter and holds back a few samples
	// of latency. Push zeros through until the expected count is out.
	zeros := make([]float64, 1024)
	for i := 0; len(out) < want && i < 64; i++ {
		more, err := rs.Process(zeros)
		if err != nil {
			return nil, fmt.Errorf("resample: flush: %w", err)
		}
		out = append(out, more...)
	}

	if len(out) > want {
		out = out[:want]
	}
	for len(out) < want {
		out = append(out, 0)
	}

	return &audio.Buffer{Samples: out, Rate: targetRate}, nil
}

// Align trims both buffers to the minimum of their lengths so a common
// analysis duration reaches comparison code. The inputs are not modified.
func Align(a, b *audio.Buffer) (*audio.Buffer, *audio.Buffer) {
	n := len(a.Samples)
	if len(b.Samples) < n {
		n = len(b.Samples)
	}
	return &audio.Buffer{Samples: a.Samples[:n], Rate: a.Rate},
		&audio.Buffer{Samples: b.Samples[:n], Rate: b.Rate}
}
