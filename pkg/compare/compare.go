// Package compare orchestrates codec round trips and perceptual scoring
// into narrowband-vs-wideband call quality comparisons.
//
// Three modes exist: Call degrades the reference itself through real
// codecs, DeviceCall degrades a phone recording of the reference, and
// Simulate synthesizes codec-like degradation with quantization and
// dither for environments without the external transcoder. Simulated
// results are labeled codec_simulation so they can never be mistaken
// for the real-codec path.
package compare

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/audio"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/audio/resample"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/audio/wavio"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/codec/pipeline"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/scratch"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/score"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/score/pesq"
)

const targetRate = 16000

// PathResult is the outcome of one codec path. A failed path carries
// only Error; the sibling path is unaffected.
type PathResult struct {
	PESQScore   *float64 `json:"pesq_score,omitempty"`
	Codec       string   `json:"codec,omitempty"`
	SampleRate  int      `json:"sample_rate,omitempty"`
	Bitrate     string   `json:"bitrate,omitempty"`
	Mode        string   `json:"mode,omitempty"`
	Description string   `json:"description,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// CallResult is the outcome of a real-codec comparison.
type CallResult struct {
	Type                  string      `json:"type"`
	Description           string      `json:"description"`
	ReferenceAudioB64     string      `json:"reference_audio_b64"`
	RecordedAudioB64      string      `json:"recorded_audio_b64,omitempty"`
	DirectRecording       *PathResult `json:"direct_recording,omitempty"`
	VoIPWideband          *PathResult `json:"voip_wideband"`
	TraditionalNarrowband *PathResult `json:"traditional_narrowband"`
	WBDegradedAudioB64    string      `json:"wb_degraded_audio_b64,omitempty"`
	NBDegradedAudioB64    string      `json:"nb_degraded_audio_b64,omitempty"`
}

// SimPathResult is the outcome of one synthetic degradation path.
type SimPathResult struct {
	PESQScore       *float64 `json:"pesq_score,omitempty"`
	SampleRate      int      `json:"sample_rate,omitempty"`
	CodecSimulation string   `json:"codec_simulation,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// SimResult is the outcome of a simulated comparison.
type SimResult struct {
	Description           string         `json:"description"`
	ReferenceAudioB64     string         `json:"reference_audio_b64"`
	WBDegradedAudioB64    string         `json:"wb_degraded_audio_b64"`
	NBDegradedAudioB64    string         `json:"nb_degraded_audio_b64"`
	VoIPWideband          *SimPathResult `json:"voip_wideband"`
	TraditionalNarrowband *SimPathResult `json:"traditional_narrowband"`
}

// Comparator composes the codec pipeline, the perceptual scorer and a
// scratch arena. Construct one at startup and share it; it holds no
// per-request state.
type Comparator struct {
	pipe    *pipeline.Pipeline
	scorer  pesq.Scorer
	arena   *scratch.Arena
	log     *slog.Logger
	bitrate int
	rnd     *rand.Rand
}

// Option configures a Comparator.
type Option func(*Comparator)

// WithPipeline sets the codec pipeline.
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(c *Comparator) { c.pipe = p }
}

// WithScorer sets the perceptual scorer. A nil scorer makes Call,
// DeviceCall and Simulate fail with pesq.ErrUnavailable.
func WithScorer(s pesq.Scorer) Option {
	return func(c *Comparator) { c.scorer = s }
}

// WithArena sets the scratch arena used for intermediate recordings.
func WithArena(a *scratch.Arena) Option {
	return func(c *Comparator) { c.arena = a }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Comparator) { c.log = l }
}

// WithOpusBitrate sets the Opus bitrate in bit/s for the wideband path.
func WithOpusBitrate(bps int) Option {
	return func(c *Comparator) { c.bitrate = bps }
}

// WithRand sets a deterministic dither source for Simulate.
func WithRand(r *rand.Rand) Option {
	return func(c *Comparator) { c.rnd = r }
}

// New returns a Comparator with a default pipeline, no scorer and the
// system temp directory unless options say otherwise.
func New(opts ...Option) *Comparator {
	c := &Comparator{
		pipe:    pipeline.New(),
		arena:   scratch.New(""),
		log:     slog.Default(),
		bitrate: pipeline.DefaultOpusBitrate,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call runs the reference through both real codec paths and scores each
// decoded result against the 16 kHz reference. A missing reference or
// transcoder aborts; a failure inside one codec path is recorded in
// that path's sub-result while the other path still completes.
func (c *Comparator) Call(ctx context.Context, refPath string) (*CallResult, error) {
	if c.scorer == nil {
		return nil, pesq.ErrUnavailable
	}
	if err := c.pipe.Check(); err != nil {
		return nil, err
	}

	ref, err := wavio.Load(refPath)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	ref16k, err := resample.To(ref, targetRate)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	refB64, err := wavio.B64(ref16k)
	if err != nil {
		return nil, err
	}

	res := &CallResult{
		Type:              "webrtc_codec_call",
		Description:       "Audio processed through actual WebRTC codecs (Opus & G.711)",
		ReferenceAudioB64: refB64,
	}

	c.runCodecPaths(ctx, res, refPath, ref16k, ref16k.Len())
	return res, nil
}

// DeviceCall runs a device recording of the reference through both
// codec paths, and additionally scores the raw recording against the
// reference to isolate speaker-to-mic degradation from codec
// degradation.
func (c *Comparator) DeviceCall(ctx context.Context, refPath, recPath string) (*CallResult, error) {
	if c.scorer == nil {
		return nil, pesq.ErrUnavailable
	}
	if err := c.pipe.Check(); err != nil {
		return nil, err
	}

	ref, err := wavio.Load(refPath)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	rec, err := wavio.Load(recPath)
	if err != nil {
		return nil, fmt.Errorf("recording: %w", err)
	}

	ref16k, err := resample.To(ref, targetRate)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	rec16k, err := resample.To(rec, targetRate)
	if err != nil {
		return nil, fmt.Errorf("recording: %w", err)
	}

	refB64, err := wavio.B64(ref16k)
	if err != nil {
		return nil, err
	}
	recB64, err := wavio.B64(rec16k)
	if err != nil {
		return nil, err
	}

	res := &CallResult{
		Type:              "webrtc_device_call",
		Description:       "Phone recording processed through actual WebRTC codecs (Opus & G.711)",
		ReferenceAudioB64: refB64,
		RecordedAudioB64:  recB64,
	}

	// Common analysis window for the direct and codec scores.
	base := ref16k.Len()
	if rec16k.Len() < base {
		base = rec16k.Len()
	}

	if v, err := c.scoreAt(ctx, ref16k, rec16k, base); err != nil {
		res.DirectRecording = &PathResult{Error: err.Error()}
	} else {
		res.DirectRecording = &PathResult{
			PESQScore:   &v,
			Description: "Phone speaker → mic only (no codec)",
		}
	}

	// The codecs consume the 16 kHz recording, not the original file.
	recFile, err := c.arena.NewFile(".wav")
	if err != nil {
		return nil, err
	}
	defer recFile.Remove()
	if err := wavio.WriteFile(recFile.Path(), rec16k); err != nil {
		return nil, err
	}

	c.runCodecPaths(ctx, res, recFile.Path(), ref16k, base)
	return res, nil
}

// runCodecPaths fills in the wideband and narrowband sub-results of
// res, degrading the audio at input and scoring against ref16k over at
// most base samples.
func (c *Comparator) runCodecPaths(ctx context.Context, res *CallResult, input string, ref16k *audio.Buffer, base int) {
	wb, wbB64 := c.opusPath(ctx, input, ref16k, base)
	res.VoIPWideband = wb
	res.WBDegradedAudioB64 = wbB64

	nb, nbB64 := c.g711Path(ctx, input, ref16k, base)
	res.TraditionalNarrowband = nb
	res.NBDegradedAudioB64 = nbB64
}

func (c *Comparator) opusPath(ctx context.Context, input string, ref16k *audio.Buffer, base int) (*PathResult, string) {
	deg, b64, err := c.degradeAndScore(ctx, ref16k, base, func() (*scratch.File, error) {
		return c.pipe.OpusRoundTrip(ctx, input, c.bitrate)
	})
	if err != nil {
		c.log.Warn("wideband codec path failed", "err", err)
		return &PathResult{Error: err.Error()}, ""
	}
	return &PathResult{
		PESQScore:   &deg,
		Codec:       "Opus (libopus)",
		SampleRate:  48000,
		Bitrate:     fmt.Sprintf("%d kbps", c.bitrate/1000),
		Mode:        "VoIP",
		Description: "WebRTC wideband call — Opus codec, 48 kHz, VoIP optimized",
	}, b64
}

func (c *Comparator) g711Path(ctx context.Context, input string, ref16k *audio.Buffer, base int) (*PathResult, string) {
	deg, b64, err := c.degradeAndScore(ctx, ref16k, base, func() (*scratch.File, error) {
		return c.pipe.G711RoundTrip(ctx, input)
	})
	if err != nil {
		c.log.Warn("narrowband codec path failed", "err", err)
		return &PathResult{Error: err.Error()}, ""
	}
	return &PathResult{
		PESQScore:   &deg,
		Codec:       "G.711 μ-law (PCMU)",
		SampleRate:  8000,
		Bitrate:     "64 kbps",
		Mode:        "PSTN",
		Description: "Traditional phone call — G.711 μ-law, 8 kHz narrowband",
	}, b64
}

// degradeAndScore runs one codec round trip, loads and rescores the
// decoded artifact, and guarantees the artifact is removed on every
// exit path.
func (c *Comparator) degradeAndScore(ctx context.Context, ref16k *audio.Buffer, base int, roundTrip func() (*scratch.File, error)) (float64, string, error) {
	artifact, err := roundTrip()
	if err != nil {
		return 0, "", err
	}
	defer artifact.Remove()

	deg, err := wavio.Load(artifact.Path())
	if err != nil {
		return 0, "", err
	}
	deg16k, err := resample.To(deg, targetRate)
	if err != nil {
		return 0, "", err
	}

	v, err := c.scoreAt(ctx, ref16k, deg16k, base)
	if err != nil {
		return 0, "", err
	}

	b64, err := wavio.B64(deg16k)
	if err != nil {
		return 0, "", err
	}
	return v, b64, nil
}

// scoreAt trims both 16 kHz signals to at most base samples and runs
// the wideband perceptual score.
func (c *Comparator) scoreAt(ctx context.Context, ref16k, deg16k *audio.Buffer, base int) (float64, error) {
	ref, deg := resample.Align(ref16k, deg16k)
	if base < ref.Len() {
		ref = &audio.Buffer{Samples: ref.Samples[:base], Rate: ref.Rate}
		deg = &audio.Buffer{Samples: deg.Samples[:base], Rate: deg.Rate}
	}
	if ref.Len() == 0 {
		return 0, fmt.Errorf("compare: empty signal after alignment")
	}
	v, err := c.scorer.Score(ctx, targetRate, audio.Int16(ref.Samples), audio.Int16(deg.Samples), pesq.Wideband)
	if err != nil {
		return 0, err
	}
	return score.Round(v, 3), nil
}

// Simulate synthesizes narrowband and wideband codec-like degradation
// without any external tool: coarse quantization plus Gaussian dither,
// with the narrowband path additionally limited to 8 kHz. This is a
// cheap approximation, kept strictly separate from the real-codec path
// in its reported labels.
func (c *Comparator) Simulate(ctx context.Context, refPath string) (*SimResult, error) {
	if c.scorer == nil {
		return nil, pesq.ErrUnavailable
	}

	ref, err := wavio.Load(refPath)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}

	ref16k, err := resample.To(ref, targetRate)
	if err != nil {
		return nil, err
	}

	// Wideband: 16 kHz with quantization noise typical of a good VoIP
	// leg.
	wb := ref16k.Clone()
	c.quantizeDither(wb.Samples, 256, 0.001)

	// Narrowband: down to 8 kHz, coarser quantization, more dither,
	// then back up to 16 kHz for scoring.
	ref8k, err := resample.To(ref, 8000)
	if err != nil {
		return nil, err
	}
	nb := ref8k.Clone()
	c.quantizeDither(nb.Samples, 128, 0.005)
	nb16k, err := resample.To(nb, targetRate)
	if err != nil {
		return nil, err
	}

	refB64, err := wavio.B64(ref16k)
	if err != nil {
		return nil, err
	}
	wbB64, err := wavio.B64(wb)
	if err != nil {
		return nil, err
	}
	nbB64, err := wavio.B64(nb)
	if err != nil {
		return nil, err
	}

	res := &SimResult{
		Description:        "Comparison of narrowband (traditional call, 8 kHz) vs wideband (VoIP, 16 kHz) quality",
		ReferenceAudioB64:  refB64,
		WBDegradedAudioB64: wbB64,
		NBDegradedAudioB64: nbB64,
	}

	refPCM := audio.Int16(ref16k.Samples)

	if v, err := c.scorer.Score(ctx, targetRate, refPCM, audio.Int16(wb.Samples), pesq.Wideband); err != nil {
		res.VoIPWideband = &SimPathResult{Error: err.Error()}
	} else {
		v = score.Round(v, 3)
		res.VoIPWideband = &SimPathResult{
			PESQScore:       &v,
			SampleRate:      16000,
			CodecSimulation: "Wideband VoIP (Opus/G.722-like)",
		}
	}

	refT, nbT := resample.Align(ref16k, nb16k)
	if v, err := c.scorer.Score(ctx, targetRate, audio.Int16(refT.Samples), audio.Int16(nbT.Samples), pesq.Narrowband); err != nil {
		res.TraditionalNarrowband = &SimPathResult{Error: err.Error()}
	} else {
		v = score.Round(v, 3)
		res.TraditionalNarrowband = &SimPathResult{
			PESQScore:       &v,
			SampleRate:      8000,
			CodecSimulation: "Narrowband telephony (G.711-like)",
		}
	}

	return res, nil
}

// quantizeDither rounds samples to 1/steps increments, adds Gaussian
// dither with the given standard deviation and clips to [-1, 1].
func (c *Comparator) quantizeDither(x []float64, steps float64, sigma float64) {
	for i, s := range x {
		v := math.Round(s*steps)/steps + c.normFloat64()*sigma
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		x[i] = v
	}
}

func (c *Comparator) normFloat64() float64 {
	if c.rnd != nil {
		return c.rnd.NormFloat64()
	}
	return rand.NormFloat64()
}
