// Package audio holds the mono float64 signal representation shared by
// every processing stage, plus conversions to and from 16-bit PCM.
//
// Sub-packages handle the edges of the system:
//
//   - wavio: reading and writing 16-bit mono WAV files
//   - resample: sample-rate conversion and length alignment
//
// Samples are normalized to [-1, 1]; code that needs integer PCM (the
// WAV codec, the external scorer) converts at the boundary with Int16
// and FromInt16.
package audio
