package audio

import "time"

// Buffer holds a mono audio signal as float64 samples in [-1, 1]
// together with its sample rate in Hz.
type Buffer struct {
	Samples []float64
	Rate    int
}

// Len returns the number of samples.
func (b *Buffer) Len() int {
	return len(b.Samples)
}

// Seconds returns the signal duration in seconds.
func (b *Buffer) Seconds() float64 {
	if b.Rate == 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.Rate)
}

// Duration returns the signal duration.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(b.Seconds() * float64(time.Second))
}

// Peak returns the maximum absolute sample value.
func (b *Buffer) Peak() float64 {
	var peak float64
	for _, s := range b.Samples {
		if s > peak {
			peak = s
		} else if -s > peak {
			peak = -s
		}
	}
	return peak
}

// Energy returns the sum of squared samples.
func (b *Buffer) Energy() float64 {
	var e float64
	for _, s := range b.Samples {
		e += s * s
	}
	return e
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	samples := make([]float64, len(b.Samples))
	copy(samples, b.Samples)
	return &Buffer{Samples: samples, Rate: b.Rate}
}

// Int16 converts float samples in [-1, 1] to signed 16-bit PCM values.
// Samples are scaled by 32768 and clamped to the int16 range, so an
// input of exactly 1.0 saturates at 32767.
func Int16(samples []float64) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		v := s * 32768.0
		switch {
		case v > 32767:
			v = 32767
		case v < -32768:
			v = -32768
		}
		out[i] = int16(v)
	}
	return out
}

// FromInt16 converts signed 16-bit PCM values to a float buffer,
// normalizing by 32768.
func FromInt16(data []int16, rate int) *Buffer {
	samples := make([]float64, len(data))
	for i, v := range data {
		samples[i] = float64(v) / 32768.0
	}
	return &Buffer{Samples: samples, Rate: rate}
}
