package stft

import (
	"math"
	"testing"
)

func TestShape(t *testing.T) {
	x := make([]float64, 5000)
	tr := New(1024, 256)

	frames := tr.Analyze(x)
	if tr.Bins() != 513 {
		t.Fatalf("Bins = %d, want 513", tr.Bins())
	}
	for i, frame := range frames {
		if len(frame) != tr.Bins() {
			t.Fatalf("frame %d has %d bins, want %d", i, len(frame), tr.Bins())
		}
	}
	if len(frames) == 0 {
		t.Fatal("no frames produced")
	}
}

func TestDefaultHop(t *testing.T) {
	tr := New(2048, 0)
	if tr.Hop() != 1024 {
		t.Fatalf("default hop = %d, want 1024", tr.Hop())
	}
}

func TestRoundTrip(t *testing.T) {
	const n = 4800
	x := make([]float64, n)
	for i := range x {
		ti := float64(i) / 16000
		x[i] = 0.5*math.Sin(2*math.Pi*440*ti) + 0.25*math.Sin(2*math.Pi*1330*ti)
	}

	for _, hop := range []int{128, 256, 512} {
		tr := New(1024, hop)
		y := tr.Synthesize(tr.Analyze(x), n)
		if len(y) != n {
			t.Fatalf("hop %d: length = %d, want %d", hop, len(y), n)
		}
		var maxDiff float64
		for i := range x {
			if d := math.Abs(y[i] - x[i]); d > maxDiff {
				maxDiff = d
			}
		}
		if maxDiff > 1e-9 {
			t.Errorf("hop %d: max reconstruction error %v", hop, maxDiff)
		}
	}
}

func TestRoundTripShortSignal(t *testing.T) {
	// Shorter than one window.
	x := []float64{0.1, -0.2, 0.3, 0.05}
	tr := New(1024, 256)

	y := tr.Synthesize(tr.Analyze(x), len(x))
	if len(y) != len(x) {
		t.Fatalf("length = %d, want %d", len(y), len(x))
	}
	for i := range x {
		if math.Abs(y[i]-x[i]) > 1e-9 {
			t.Errorf("sample %d = %v, want %v", i, y[i], x[i])
		}
	}
}

func TestMagnitude(t *testing.T) {
	frames := [][]complex128{{complex(3, 4), complex(0, 0)}}
	mag := Magnitude(frames)
	if mag[0][0] != 5 {
		t.Errorf("|3+4i| = %v, want 5", mag[0][0])
	}
	if mag[0][1] != 0 {
		t.Errorf("|0| = %v, want 0", mag[0][1])
	}
}

func TestSynthesizeEmpty(t *testing.T) {
	tr := New(1024, 256)
	y := tr.Synthesize(nil, 100)
	if len(y) != 100 {
		t.Fatalf("length = %d, want 100", len(y))
	}
	for i, v := range y {
		if v != 0 {
			t.Fatalf("sample %d = %v, want 0", i, v)
		}
	}
}
