// Package pipeline degrades audio through real telephony codecs by
// driving an external transcoder (ffmpeg) as a subprocess.
//
// Two paths are supported: Opus at 48 kHz in VoIP mode (the wideband
// VoIP codec) and G.711 μ-law at 8 kHz (narrowband PSTN). Each round
// trip runs two discrete stages, encode then decode, and hands back the
// decoded 16 kHz 16-bit mono WAV as a scratch file the caller owns.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"time"

	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/scratch"
)

// Codec identifies one codec path.
type Codec string

const (
	// CodecOpus is Opus in VoIP mode, the WebRTC wideband codec.
	CodecOpus Codec = "opus"

	// CodecG711 is G.711 μ-law (PCMU), the PSTN narrowband codec.
	CodecG711 Codec = "g711u"
)

// Stage identifies which half of a round trip failed.
type Stage string

const (
	StageEncode Stage = "encode"
	StageDecode Stage = "decode"
)

const (
	// DefaultTimeout bounds each ffmpeg invocation so a hung tool
	// cannot stall the caller.
	DefaultTimeout = 30 * time.Second

	// DefaultOpusBitrate is the VoIP-typical Opus bitrate in bit/s.
	DefaultOpusBitrate = 32000

	decodedRate = 16000
)

// Error reports a failed transcoder stage.
type Error struct {
	Codec Codec
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pipeline: %s %s: %v", e.Codec, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Pipeline runs codec round trips. It holds no mutable state and is
// safe for concurrent use; every call works on its own scratch files.
type Pipeline struct {
	ffmpeg  string
	timeout time.Duration
	arena   *scratch.Arena
	log     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFFmpeg overrides the transcoder executable path.
func WithFFmpeg(path string) Option {
	return func(p *Pipeline) { p.ffmpeg = path }
}

// WithTimeout overrides the per-stage timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

// WithArena overrides where intermediate and output files are created.
func WithArena(a *scratch.Arena) Option {
	return func(p *Pipeline) { p.arena = a }
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// New returns a Pipeline using ffmpeg from PATH, the default 30 s stage
// timeout and the system temp directory unless options say otherwise.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		ffmpeg:  "ffmpeg",
		timeout: DefaultTimeout,
		arena:   scratch.New(""),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Check returns an error if the transcoder executable is missing.
func (p *Pipeline) Check() error {
	if _, err := exec.LookPath(p.ffmpeg); err != nil {
		return fmt.Errorf("pipeline: transcoder unavailable: %w", err)
	}
	return nil
}

// OpusRoundTrip encodes input to Opus (48 kHz mono, VoIP mode) at the
// given bitrate and decodes it back to 16-bit PCM at 16 kHz mono. A
// bitrate of 0 selects DefaultOpusBitrate. The returned file is owned
// by the caller and must be removed after use; on error no file
// survives.
func (p *Pipeline) OpusRoundTrip(ctx context.Context, input string, bitrate int) (*scratch.File, error) {
	if bitrate <= 0 {
		bitrate = DefaultOpusBitrate
	}
	encoded, err := p.arena.NewFile(".ogg")
	if err != nil {
		return nil, &Error{Codec: CodecOpus, Stage: StageEncode, Err: err}
	}
	defer encoded.Remove()

	err = p.run(ctx, CodecOpus, StageEncode,
		"-y", "-i", input,
		"-c:a", "libopus",
		"-b:a", strconv.Itoa(bitrate),
		"-ar", "48000",
		"-ac", "1",
		"-application", "voip",
		encoded.Path(),
	)
	if err != nil {
		return nil, err
	}

	return p.decode(ctx, CodecOpus, encoded.Path())
}

// G711RoundTrip encodes input to G.711 μ-law at 8 kHz mono and decodes
// it back to 16-bit PCM at 16 kHz mono. Ownership of the returned file
// follows OpusRoundTrip.
func (p *Pipeline) G711RoundTrip(ctx context.Context, input string) (*scratch.File, error) {
	encoded, err := p.arena.NewFile(".wav")
	if err != nil {
		return nil, &Error{Codec: CodecG711, Stage: StageEncode, Err: err}
	}
	defer encoded.Remove()

	err = p.run(ctx, CodecG711, StageEncode,
		"-y", "-i", input,
		"-c:a", "pcm_mulaw",
		"-ar", "8000",
		"-ac", "1",
		encoded.Path(),
	)
	if err != nil {
		return nil, err
	}

	return p.decode(ctx, CodecG711, encoded.Path())
}

// decode converts the intermediate encoded file back to 16 kHz 16-bit
// PCM mono WAV.
func (p *Pipeline) decode(ctx context.Context, codec Codec, encoded string) (*scratch.File, error) {
	out, err := p.arena.NewFile(".wav")
	if err != nil {
		return nil, &Error{Codec: codec, Stage: StageDecode, Err: err}
	}

	err = p.run(ctx, codec, StageDecode,
		"-y", "-i", encoded,
		"-c:a", "pcm_s16le",
		"-ar", strconv.Itoa(decodedRate),
		"-ac", "1",
		out.Path(),
	)
	if err != nil {
		out.Remove()
		return nil, err
	}
	return out, nil
}

// run executes one transcoder stage under the per-stage timeout.
func (p *Pipeline) run(ctx context.Context, codec Codec, stage Stage, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	full := append([]string{"-v", "error", "-nostdin"}, args...)
	cmd := exec.CommandContext(ctx, p.ffmpeg, full...)

	stderr := bytes.NewBuffer(nil)
	cmd.Stderr = stderr
	// Don't let an orphaned grandchild holding stderr open stall Wait
	// past the timeout.
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	p.log.Debug("transcoder stage finished",
		"codec", codec, "stage", stage, "elapsed", time.Since(start), "err", err)

	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return &Error{Codec: codec, Stage: stage, Err: fmt.Errorf("timed out after %v", p.timeout)}
	}
	if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
		err = fmt.Errorf("%w: %s", err, msg)
	}
	return &Error{Codec: codec, Stage: stage, Err: err}
}
