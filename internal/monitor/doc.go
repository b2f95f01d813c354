// ABOUTME: Monitor package
// Package monitor runs the capture, estimate, render, publish cycle.
//
// A Monitor pulls one chunk from a capture.Source, converts it to a volume
// in [0, 100], renders the bar icon and hands the result to a Publisher,
// which forwards it to the UI thread. The loop checks its context at the
// top of every cycle. Capture errors wrapped in capture.TransientError are
// retried up to a limit; any other error stops the loop for good.
package monitor
