package pesq

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/audio"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/audio/wavio"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/scratch"
)

// CommandScorer drives an external PESQ binary.
//
// The contract is structured rather than log-scraped: the tool is
// invoked as
//
//	<cmd> -rate <hz> -mode <wb|nb> <reference.wav> <degraded.wav>
//
// and must exit zero with exactly one decimal score on stdout. Both
// signals are written as 16-bit PCM mono WAV scratch files that are
// removed before Score returns.
type CommandScorer struct {
	cmd     string
	arena   *scratch.Arena
	timeout time.Duration
}

// NewCommandScorer returns a scorer invoking cmd. The arena may be nil
// to use the system temp directory.
func NewCommandScorer(cmd string, arena *scratch.Arena) *CommandScorer {
	return &CommandScorer{cmd: cmd, arena: arena, timeout: 30 * time.Second}
}

// Available reports whether the external binary can be resolved. It is
// checked once at startup so requests can short-circuit with
// ErrUnavailable instead of failing mid-score.
func (s *CommandScorer) Available() bool {
	_, err := exec.LookPath(s.cmd)
	return err == nil
}

// Score implements Scorer.
func (s *CommandScorer) Score(ctx context.Context, sampleRate int, ref, deg []int16, mode Mode) (float64, error) {
	refFile, err := s.writeWAV(ref, sampleRate)
	if err != nil {
		return 0, err
	}
	defer refFile.Remove()

	degFile, err := s.writeWAV(deg, sampleRate)
	if err != nil {
		return 0, err
	}
	defer degFile.Remove()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.cmd,
		"-rate", strconv.Itoa(sampleRate),
		"-mode", string(mode),
		refFile.Path(), degFile.Path(),
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("pesq: %s: %w", s.cmd, err)
	}

	v, err := strconv.ParseFloat(string(bytes.TrimSpace(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("pesq: %s: unparseable score %q", s.cmd, bytes.TrimSpace(out))
	}
	return v, nil
}

func (s *CommandScorer) writeWAV(pcm []int16, rate int) (*scratch.File, error) {
	f, err := s.arena.NewFile(".wav")
	if err != nil {
		return nil, fmt.Errorf("pesq: %w", err)
	}
	buf := audio.FromInt16(pcm, rate)
	if err := wavio.WriteFile(f.Path(), buf); err != nil {
		f.Remove()
		return nil, fmt.Errorf("pesq: %w", err)
	}
	return f, nil
}
