// ABOUTME: Handoff package
// Package handoff passes values between goroutines where only the latest
// value matters, such as icon frames bound for a UI thread.
package handoff
