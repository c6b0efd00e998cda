// Package wavio reads and writes PCM WAV files as normalized float buffers.
//
// Only 16-bit and 32-bit signed PCM input is supported. Multi-channel
// audio is downmixed to mono by an unweighted average across channels.
// Output is always 16-bit PCM mono.
package wavio

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/audio"
)

var (
	// ErrNotFound indicates the audio file does not exist.
	ErrNotFound = errors.New("wavio: audio file not found")

	// ErrFormat indicates the file is not a readable 16/32-bit PCM WAV.
	ErrFormat = errors.New("wavio: unsupported or invalid wav")
)

const (
	// pcmFormat is the WAV audio format tag for linear PCM.
	pcmFormat = 1

	outBitDepth = 16
)

// Load reads a WAV file from disk into a mono float buffer.
func Load(path string) (*audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrFormat, path, err)
	}
	defer f.Close()

	buf, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, path)
	}
	return buf, nil
}

// Read decodes a WAV stream into a mono float buffer. Samples are
// normalized by the source type's maximum magnitude (32768 for 16-bit,
// 2147483648 for 32-bit) and channels are averaged down to one.
func Read(r io.ReadSeeker) (*audio.Buffer, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: not a wav file", ErrFormat)
	}
	if d.WavAudioFormat != pcmFormat {
		return nil, fmt.Errorf("%w: audio format %d is not PCM", ErrFormat, d.WavAudioFormat)
	}

	var scale float64
	switch d.BitDepth {
	case 16:
		scale = 32768.0
	case 32:
		scale = 2147483648.0
	default:
		return nil, fmt.Errorf("%w: unsupported sample width %d bits", ErrFormat, d.BitDepth)
	}

	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrFormat, err)
	}

	ch := pcm.Format.NumChannels
	if ch < 1 {
		return nil, fmt.Errorf("%w: no channels", ErrFormat)
	}

	frames := len(pcm.Data) / ch
	samples := make([]float64, frames)
	if ch == 1 {
		for i := 0; i < frames; i++ {
			samples[i] = float64(pcm.Data[i]) / scale
		}
	} else {
		for i := 0; i < frames; i++ {
			var sum float64
			for c := 0; c < ch; c++ {
				sum += float64(pcm.Data[i*ch+c])
			}
			samples[i] = sum / float64(ch) / scale
		}
	}

	return &audio.Buffer{Samples: samples, Rate: pcm.Format.SampleRate}, nil
}

// Bytes encodes a buffer as a 16-bit PCM mono WAV file in memory.
// Samples are clipped to [-1, 1] before conversion so out-of-range
// values cannot wrap around.
func Bytes(buf *audio.Buffer) ([]byte, error) {
	ws := &seekBuffer{}
	e := wav.NewEncoder(ws, buf.Rate, outBitDepth, 1, pcmFormat)

	data := make([]int, len(buf.Samples))
	for i, v := range audio.Int16(buf.Samples) {
		data[i] = int(v)
	}
	pcm := &gaudio.IntBuffer{
		Data:           data,
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: buf.Rate},
		SourceBitDepth: outBitDepth,
	}
	if err := e.Write(pcm); err != nil {
		return nil, fmt.Errorf("wavio: encode: %w", err)
	}
	if err := e.Close(); err != nil {
		return nil, fmt.Errorf("wavio: encode: %w", err)
	}
	return ws.buf, nil
}

// B64 encodes a buffer as a Base64 16-bit PCM mono WAV, the form embedded
// in JSON results for playback.
func B64(buf *audio.Buffer) (string, error) {
	b, err := Bytes(buf)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// WriteFile writes a buffer to disk as a 16-bit PCM mono WAV file.
func WriteFile(path string, buf *audio.Buffer) error {
	b, err := Bytes(buf)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("wavio: write %s: %w", path, err)
	}
	return nil
}

// DecodeB64 decodes a Base64 WAV string back into a buffer.
func DecodeB64(s string) (*audio.Buffer, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrFormat, err)
	}
	return Read(bytes.NewReader(raw))
}

// seekBuffer is an in-memory io.WriteSeeker. The wav encoder needs to
// seek back to patch chunk sizes on Close.
type seekBuffer struct {
	buf []byte
	pos int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if need := b.pos + len(p); need > len(b.buf) {
		if need > cap(b.buf) {
			grown := make([]byte, need, need*2)
			copy(grown, b.buf)
			b.buf = grown
		} else {
			b.buf = b.buf[:need]
		}
	}
	copy(b.buf[b.pos:], p)
	b.pos += len(p)
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(b.pos) + offset
	case io.SeekEnd:
		pos = int64(len(b.buf)) + offset
	default:
		return 0, fmt.Errorf("wavio: invalid whence %d", whence)
	}
	if pos < 0 {
		return 0, errors.New("wavio: negative seek position")
	}
	b.pos = int(pos)
	return pos, nil
}
