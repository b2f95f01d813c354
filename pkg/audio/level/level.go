// ABOUTME: RMS loudness estimation for s16le PCM chunks
// ABOUTME: Maps one chunk to a normalized volume in [0, 100]
package level

import (
	"math"

	"github.com/micmonitor/micmonitor/pkg/audio"
)

const (
	// DefaultGain scales normalized RMS so typical speech lands mid-to-high.
	// Keep it at 200: the icon thresholds are calibrated against it.
	DefaultGain = 200.0

	// MaxVolume is the ceiling of every estimate
	MaxVolume = 100.0
)

// Estimator converts PCM chunks to volume levels
type Estimator struct {
	Gain float64
}

// Volume estimates the level of an s16le chunk
func (e Estimator) Volume(pcm []byte) float64 {
	gain := e.Gain
	if gain <= 0 {
		gain = DefaultGain
	}
	return VolumeWithGain(pcm, gain)
}

// Volume estimates the level of an s16le chunk using DefaultGain
func Volume(pcm []byte) float64 {
	return VolumeWithGain(pcm, DefaultGain)
}

// VolumeWithGain returns rms/32767*gain clamped to [0, 100].
// An empty chunk yields 0.
func VolumeWithGain(pcm []byte, gain float64) float64 {
	return Normalize(RMS(pcm), gain)
}

// Normalize maps an RMS amplitude to the [0, 100] volume scale
func Normalize(rms, gain float64) float64 {
	v := rms / audio.MaxInt16 * gain
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, MaxVolume)
}

// RMS computes the root-mean-square amplitude of an s16le chunk.
// A trailing odd byte is ignored.
func RMS(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}

	var sumOfSquares int64
	for i := 0; i < n; i++ {
		s := int64(audio.SampleAt(pcm, i))
		sumOfSquares += s * s
	}

	return math.Sqrt(float64(sumOfSquares) / float64(n))
}
