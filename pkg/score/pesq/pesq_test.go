package pesq

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/audio"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/scratch"
)

func sine(n int, rate int, freq, amp float64) *audio.Buffer {
	buf := &audio.Buffer{Rate: rate, Samples: make([]float64, n)}
	for i := range buf.Samples {
		buf.Samples[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return buf
}

func TestComputeBothModes(t *testing.T) {
	scorer := ScoreFunc(func(_ context.Context, rate int, ref, deg []int16, mode Mode) (float64, error) {
		if rate != TargetRate {
			t.Errorf("rate = %d, want %d", rate, TargetRate)
		}
		if len(ref) != len(deg) {
			t.Errorf("unaligned inputs: %d vs %d", len(ref), len(deg))
		}
		switch mode {
		case Wideband:
			return 4.12345, nil
		case Narrowband:
			return 3.2, nil
		}
		return 0, fmt.Errorf("unexpected mode %q", mode)
	})

	ref := sine(32000, 16000, 440, 0.6)
	deg := sine(32000, 16000, 440, 0.3)

	res, err := Compute(context.Background(), scorer, ref, deg)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if res.PESQWB == nil || *res.PESQWB != 4.123 {
		t.Errorf("pesq_wb = %v, want 4.123", res.PESQWB)
	}
	if res.PESQNB == nil || *res.PESQNB != 3.2 {
		t.Errorf("pesq_nb = %v, want 3.2", res.PESQNB)
	}
	if res.Details.AnalysisDuration != 2 {
		t.Errorf("analysis_duration = %v, want 2", res.Details.AnalysisDuration)
	}
}

func TestComputePartialFailure(t *testing.T) {
	scorer := ScoreFunc(func(_ context.Context, _ int, _, _ []int16, mode Mode) (float64, error) {
		if mode == Narrowband {
			return 0, errors.New("narrowband blew up")
		}
		return 4.0, nil
	})

	res, err := Compute(context.Background(), scorer, sine(16000, 16000, 440, 0.5), sine(16000, 16000, 440, 0.5))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if res.PESQWB == nil {
		t.Error("wideband score missing despite only narrowband failing")
	}
	if res.PESQNB != nil {
		t.Error("narrowband score present despite failure")
	}
	if res.PESQNBError == "" {
		t.Error("pesq_nb_error missing")
	}
}

func TestComputeNilScorer(t *testing.T) {
	_, err := Compute(context.Background(), nil, sine(100, 16000, 440, 0.5), sine(100, 16000, 440, 0.5))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestComputeResamplesTo16k(t *testing.T) {
	var gotLen int
	scorer := ScoreFunc(func(_ context.Context, _ int, ref, _ []int16, _ Mode) (float64, error) {
		gotLen = len(ref)
		return 4.0, nil
	})

	// 1 second at 48 kHz should reach the scorer as 1 second at 16 kHz.
	res, err := Compute(context.Background(), scorer, sine(48000, 48000, 440, 0.5), sine(48000, 48000, 440, 0.5))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if gotLen != 16000 {
		t.Errorf("scorer saw %d samples, want 16000", gotLen)
	}
	if res.Details.RefSampleRate != 48000 {
		t.Errorf("ref_sample_rate = %d, want original 48000", res.Details.RefSampleRate)
	}
}

func TestCommandScorer(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test uses a shell script scorer")
	}

	dir := t.TempDir()
	tool := filepath.Join(dir, "fakepesq")
	script := "#!/bin/sh\necho 3.25\n"
	if err := os.WriteFile(tool, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	s := NewCommandScorer(tool, scratch.New(dir))
	if !s.Available() {
		t.Fatal("scorer reported unavailable")
	}

	pcm := audio.Int16(sine(1600, 16000, 440, 0.5).Samples)
	v, err := s.Score(context.Background(), 16000, pcm, pcm, Wideband)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if v != 3.25 {
		t.Errorf("score = %v, want 3.25", v)
	}

	// Scratch WAVs must not survive the call.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".wav" {
			t.Errorf("residual scratch file %s", e.Name())
		}
	}
}

func TestCommandScorerUnavailable(t *testing.T) {
	s := NewCommandScorer(filepath.Join(t.TempDir(), "missing-tool"), nil)
	if s.Available() {
		t.Error("missing binary reported available")
	}
}

func TestCommandScorerBadOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test uses a shell script scorer")
	}

	dir := t.TempDir()
	tool := filepath.Join(dir, "chattypesq")
	if err := os.WriteFile(tool, []byte("#!/bin/sh\necho not-a-number\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	s := NewCommandScorer(tool, scratch.New(dir))
	pcm := audio.Int16(sine(160, 16000, 440, 0.5).Samples)
	if _, err := s.Score(context.Background(), 16000, pcm, pcm, Narrowband); err == nil {
		t.Fatal("expected error for unparseable scorer output")
	}
}
