// Package stft implements the short-time Fourier transform and its
// inverse, the spectral front end shared by the denoiser and the ODG
// scorer.
package stft

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Transform computes Hann-windowed short-time spectra with a fixed
// window size and hop. The signal is centered: half a window of zeros
// is padded on both ends so the first frame is centered on sample 0.
//
// A Transform carries scratch state and is not safe for concurrent use;
// construct one per analysis.
type Transform struct {
	size int
	hop  int
	win  []float64
	fft  *fourier.FFT
}

// New returns a Transform with the given window size (must be even) and
// hop. A hop of 0 selects the default of half a window.
func New(size, hop int) *Transform {
	if hop <= 0 {
		hop = size / 2
	}
	win := make([]float64, size)
	for i := range win {
		win[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size))
	}
	return &Transform{
		size: size,
		hop:  hop,
		win:  win,
		fft:  fourier.NewFFT(size),
	}
}

// Size returns the window size.
func (t *Transform) Size() int { return t.size }

// Hop returns the hop size.
func (t *Transform) Hop() int { return t.hop }

// Bins returns the number of frequency bins per frame, size/2+1.
func (t *Transform) Bins() int { return t.size/2 + 1 }

// Analyze returns the complex spectrogram of x as frames[time][bin].
func (t *Transform) Analyze(x []float64) [][]complex128 {
	pad := t.size / 2
	n := len(x) + 2*pad
	// Extend so the last frame starts exactly on a hop boundary.
	if n < t.size {
		n = t.size
	} else if rem := (n - t.size) % t.hop; rem != 0 {
		n += t.hop - rem
	}

	padded := make([]float64, n)
	copy(padded[pad:], x)

	numFrames := (n-t.size)/t.hop + 1
	frames := make([][]complex128, numFrames)
	windowed := make([]float64, t.size)
	for f := 0; f < numFrames; f++ {
		off := f * t.hop
		for i := 0; i < t.size; i++ {
			windowed[i] = padded[off+i] * t.win[i]
		}
		frames[f] = t.fft.Coefficients(nil, windowed)
	}
	return frames
}

// Synthesize reconstructs a time-domain signal of length n from a
// spectrogram produced by Analyze, using weighted overlap-add.
func (t *Transform) Synthesize(frames [][]complex128, n int) []float64 {
	if len(frames) == 0 {
		return make([]float64, n)
	}

	total := (len(frames)-1)*t.hop + t.size
	acc := make([]float64, total)
	wsum := make([]float64, total)

	seq := make([]float64, t.size)
	for f, frame := range frames {
		t.fft.Sequence(seq, frame)
		off := f * t.hop
		for i := 0; i < t.size; i++ {
			// Sequence is unnormalized; divide by the transform size.
			s := seq[i] / float64(t.size)
			acc[off+i] += s * t.win[i]
			wsum[off+i] += t.win[i] * t.win[i]
		}
	}

	const tiny = 1e-12
	for i := range acc {
		if wsum[i] > tiny {
			acc[i] /= wsum[i]
		}
	}

	out := make([]float64, n)
	pad := t.size / 2
	for i := 0; i < n && pad+i < total; i++ {
		out[i] = acc[pad+i]
	}
	return out
}

// Magnitude returns the magnitude spectrogram |frames|.
func Magnitude(frames [][]complex128) [][]float64 {
	mag := make([][]float64, len(frames))
	for f, frame := range frames {
		row := make([]float64, len(frame))
		for i, c := range frame {
			row[i] = math.Hypot(real(c), imag(c))
		}
		mag[f] = row
	}
	return mag
}
