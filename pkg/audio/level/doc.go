// ABOUTME: Loudness estimation package
// ABOUTME: Documents the RMS volume scale used by the tray icon
// Package level turns a chunk of 16-bit PCM into a volume scalar.
//
// The estimate is stateless: mean of squared samples, square root, divided by
// the int16 full scale and multiplied by a gain (200 by default), then capped
// at 100. Silence yields 0; a clipped chunk yields exactly 100.
//
// Example:
//
//	v := level.Volume(pcm) // 0..100
package level
