// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines the Format type and s16le sample conversion functions
// Package audio provides the fundamental PCM types shared by the capture,
// level and output packages.
//
// This package defines:
//   - Format: Describes a capture stream (sample rate, channels, bit depth)
//
// It also provides utilities for converting between int16 samples and
// little-endian byte buffers.
//
// Example:
//
//	format := audio.DefaultFormat() // 44100 Hz, mono, 16-bit
//	chunk := make([]byte, format.ChunkBytes(100*time.Millisecond))
//	samples := audio.SamplesFromBytes(chunk)
package audio
