package denoise

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/audio"
)

func noiseBuffer(n int, rate int, amp float64, seed uint64) *audio.Buffer {
	rnd := rand.New(rand.NewPCG(seed, seed))
	buf := &audio.Buffer{Rate: rate, Samples: make([]float64, n)}
	for i := range buf.Samples {
		buf.Samples[i] = amp * (2*rnd.Float64() - 1)
	}
	return buf
}

func sine(n int, rate int, freq, amp float64) *audio.Buffer {
	buf := &audio.Buffer{Rate: rate, Samples: make([]float64, n)}
	for i := range buf.Samples {
		buf.Samples[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return buf
}

func TestOutputLengthMatchesInput(t *testing.T) {
	deg := noiseBuffer(16000, 16000, 0.3, 1)

	for _, noiseLen := range []int{1000, 16000, 50000} {
		noise := noiseBuffer(noiseLen, 16000, 0.3, 2)
		out := Subtract(deg, noise, DefaultConfig())
		if out.Len() != deg.Len() {
			t.Errorf("noise length %d: output length = %d, want %d", noiseLen, out.Len(), deg.Len())
		}
		if out.Rate != deg.Rate {
			t.Errorf("noise length %d: rate = %d, want %d", noiseLen, out.Rate, deg.Rate)
		}
	}
}

func TestStationaryNoiseIsAttenuated(t *testing.T) {
	// Degraded signal and noise reference drawn from the same
	// stationary process: the gain should be driven toward the floor
	// and output energy should drop well below input energy.
	deg := noiseBuffer(32000, 16000, 0.3, 7)
	noise := noiseBuffer(32000, 16000, 0.3, 7)

	out := Subtract(deg, noise, DefaultConfig())

	in, after := deg.Energy(), out.Energy()
	t.Logf("energy before %.4f, after %.4f", in, after)
	if after >= in/2 {
		t.Errorf("energy only dropped from %v to %v, want at least 2x reduction", in, after)
	}
	if after == 0 {
		t.Error("output is fully silent, gain floor should keep a residual")
	}
}

func TestSilentNoisePassesSignalThrough(t *testing.T) {
	deg := sine(16000, 16000, 440, 0.5)
	noise := &audio.Buffer{Samples: make([]float64, 8000), Rate: 16000}

	out := Subtract(deg, noise, DefaultConfig())

	in, after := deg.Energy(), out.Energy()
	if math.Abs(after-in)/in > 0.02 {
		t.Errorf("energy changed from %v to %v with a silent noise reference", in, after)
	}
}

func TestPeakNormalization(t *testing.T) {
	// A loud signal with a quiet noise reference keeps its gain near
	// 1, so the reconstruction peak must be capped at 0.95.
	deg := sine(16000, 16000, 440, 0.999)
	noise := noiseBuffer(16000, 16000, 0.001, 3)

	out := Subtract(deg, noise, DefaultConfig())
	if peak := out.Peak(); peak > 0.95+1e-9 {
		t.Errorf("peak = %v, want <= 0.95", peak)
	}
}

func TestGainFloorConfig(t *testing.T) {
	deg := noiseBuffer(32000, 16000, 0.3, 9)
	noise := noiseBuffer(32000, 16000, 0.3, 9)

	deep := Subtract(deg, noise, Config{Oversubtraction: 2.0, GainFloorDB: -40})
	shallow := Subtract(deg, noise, Config{Oversubtraction: 2.0, GainFloorDB: -3})

	if deep.Energy() >= shallow.Energy() {
		t.Errorf("floor -40 dB left energy %v, floor -3 dB left %v; deeper floor should remove more",
			deep.Energy(), shallow.Energy())
	}
}
