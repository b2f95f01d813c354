// ABOUTME: Application package documentation
// ABOUTME: Startup sequence and lifecycle of a monitoring session
// Package app wires capture, monitor and host into one session.
//
// Startup opens the capture backend, lists microphones, selects one
// (configured name, then the interactive picker, then the default device)
// and opens it. The monitor then runs on a background goroutine while the
// host (tray icon or terminal meter) owns the main goroutine. Quitting from
// the host or cancelling the context stops both.
package app
