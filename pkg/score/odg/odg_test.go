package odg

import (
	"errors"
	"math"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/audio"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/audio/wavio"
)

func sine(n int, rate int, freq, amp float64) *audio.Buffer {
	buf := &audio.Buffer{Rate: rate, Samples: make([]float64, n)}
	for i := range buf.Samples {
		buf.Samples[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return buf
}

func TestIdenticalSilence(t *testing.T) {
	silent := &audio.Buffer{Samples: make([]float64, 32000), Rate: 16000}

	res, err := New().Score(silent, silent.Clone(), nil)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if res.LSD != 0 {
		t.Errorf("lsd = %v, want 0", res.LSD)
	}
	if res.ODGScore != 0 {
		t.Errorf("odg_score = %v, want 0", res.ODGScore)
	}
	if res.Details.AnalysisDuration != 2 {
		t.Errorf("analysis_duration = %v, want 2", res.Details.AnalysisDuration)
	}
}

func TestIdenticalSignal(t *testing.T) {
	ref := sine(32000, 16000, 440, 0.6)

	res, err := New().Score(ref, ref.Clone(), nil)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if res.LSD != 0 {
		t.Errorf("lsd = %v, want 0 for identical signals", res.LSD)
	}
	if res.ODGScore != 0 {
		t.Errorf("odg_score = %v, want 0", res.ODGScore)
	}
}

func TestHalfAmplitudeDegradation(t *testing.T) {
	ref := sine(32000, 16000, 440, 0.6)
	deg := sine(32000, 16000, 440, 0.3)

	res, err := New().Score(ref, deg, nil)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if res.LSD <= 0 {
		t.Fatalf("lsd = %v, want > 0", res.LSD)
	}
	if res.ODGScore >= 0 || res.ODGScore <= -4 {
		t.Errorf("odg_score = %v, want strictly between -4 and 0", res.ODGScore)
	}
}

func TestBounds(t *testing.T) {
	rnd := rand.New(rand.NewPCG(11, 11))
	ref := sine(16000, 16000, 300, 0.7)
	deg := &audio.Buffer{Rate: 16000, Samples: make([]float64, 16000)}
	for i := range deg.Samples {
		deg.Samples[i] = 0.9 * (2*rnd.Float64() - 1)
	}

	res, err := New().Score(ref, deg, nil)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if res.ODGScore < -4 || res.ODGScore > 0 {
		t.Errorf("odg_score = %v, out of [-4, 0]", res.ODGScore)
	}
}

func TestLSDSymmetry(t *testing.T) {
	a := sine(16000, 16000, 440, 0.6)
	b := sine(16000, 16000, 880, 0.4)

	if la, lb := LSD(a.Samples, b.Samples), LSD(b.Samples, a.Samples); la != lb {
		t.Errorf("lsd(a,b) = %v, lsd(b,a) = %v, want symmetric", la, lb)
	}
}

func TestRateMismatchResamples(t *testing.T) {
	ref := sine(32000, 16000, 440, 0.6)
	deg := sine(16000, 8000, 440, 0.6)

	res, err := New().Score(ref, deg, nil)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if !res.Details.Resampled {
		t.Error("resampled flag not set for mismatched rates")
	}
	if res.Details.DegSampleRate != 8000 {
		t.Errorf("deg_sample_rate = %d, want original 8000", res.Details.DegSampleRate)
	}
	if res.Details.AnalysisDuration != 2 {
		t.Errorf("analysis_duration = %v, want 2", res.Details.AnalysisDuration)
	}
}

func TestNoiseSubtractionResult(t *testing.T) {
	rnd := rand.New(rand.NewPCG(5, 5))
	ref := sine(32000, 16000, 440, 0.5)
	deg := ref.Clone()
	noise := &audio.Buffer{Rate: 16000, Samples: make([]float64, 16000)}
	for i := range noise.Samples {
		n := 0.05 * (2*rnd.Float64() - 1)
		noise.Samples[i] = n
	}
	for i := range deg.Samples {
		deg.Samples[i] += 0.05 * (2*rnd.Float64() - 1)
	}

	res, err := New().Score(ref, deg, noise)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if !res.Details.SpectralSubtraction {
		t.Error("spectral_subtraction flag not set")
	}
	if res.Details.NoiseDuration != 1 {
		t.Errorf("noise_duration = %v, want 1", res.Details.NoiseDuration)
	}
	if res.SubtractedAudioB64 == "" {
		t.Fatal("subtracted_audio_b64 missing")
	}

	cleaned, err := wavio.DecodeB64(res.SubtractedAudioB64)
	if err != nil {
		t.Fatalf("subtracted audio does not decode: %v", err)
	}
	if cleaned.Len() != deg.Len() {
		t.Errorf("subtracted audio has %d samples, want %d", cleaned.Len(), deg.Len())
	}
}

func TestEmptyAfterAlignment(t *testing.T) {
	ref := sine(16000, 16000, 440, 0.5)
	empty := &audio.Buffer{Rate: 16000}

	_, err := New().Score(ref, empty, nil)
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
}

func TestScoreFilesMissingReference(t *testing.T) {
	dir := t.TempDir()
	deg := filepath.Join(dir, "deg.wav")
	if err := wavio.WriteFile(deg, sine(8000, 16000, 440, 0.5)); err != nil {
		t.Fatal(err)
	}

	_, err := New().ScoreFiles(filepath.Join(dir, "missing.wav"), deg, "")
	if !errors.Is(err, wavio.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestScoreFiles(t *testing.T) {
	dir := t.TempDir()
	refPath := filepath.Join(dir, "ref.wav")
	degPath := filepath.Join(dir, "deg.wav")
	if err := wavio.WriteFile(refPath, sine(32000, 16000, 440, 0.6)); err != nil {
		t.Fatal(err)
	}
	if err := wavio.WriteFile(degPath, sine(32000, 16000, 440, 0.3)); err != nil {
		t.Fatal(err)
	}

	res, err := New().ScoreFiles(refPath, degPath, "")
	if err != nil {
		t.Fatalf("ScoreFiles failed: %v", err)
	}
	if res.ODGScore >= 0 || res.ODGScore < -4 {
		t.Errorf("odg_score = %v, want in [-4, 0)", res.ODGScore)
	}
	if res.Details.RefSampleRate != 16000 || res.Details.DegSampleRate != 16000 {
		t.Errorf("sample rates = %d/%d, want 16000/16000",
			res.Details.RefSampleRate, res.Details.DegSampleRate)
	}
}
