// ABOUTME: Desktop notifications
// ABOUTME: Alerts the user when monitoring stops
// Package notify raises desktop notifications for micmonitor.
// It uses github.com/gen2brain/beeep for cross-platform notification support.
package notify

import (
	"sync"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog/log"

	"github.com/micmonitor/micmonitor/internal/version"
)

// maxMessageLen keeps toasts readable
const maxMessageLen = 200

// Notifier handles desktop notifications.
type Notifier struct {
	title   string
	enabled bool
	mu      sync.RWMutex

	// beeep entry points, replaced in tests
	notify func(title, message string) error
	alert  func(title, message string) error
}

// New creates a notifier. Title prefixes every notification; empty means
// the product name.
func New(title string, enabled bool) *Notifier {
	if title == "" {
		title = version.Product
	}
	return &Notifier{
		title:   title,
		enabled: enabled,
		notify:  func(title, message string) error { return beeep.Notify(title, message, "") },
		alert:   func(title, message string) error { return beeep.Alert(title, message, "") },
	}
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

// Info sends an informational notification.
func (n *Notifier) Info(message string) {
	if !n.IsEnabled() {
		return
	}
	if err := n.notify(n.title, truncate(message, maxMessageLen)); err != nil {
		log.Warn().Err(err).Msg("Failed to send notification")
	}
}

// Alert sends an alert notification (error level).
// This is for failures that require user attention.
func (n *Notifier) Alert(message string) {
	if !n.IsEnabled() {
		return
	}

	title := n.title + " Alert"
	message = truncate(message, maxMessageLen)

	// beeep.Alert shows a more prominent notification on some platforms
	if err := n.alert(title, message); err != nil {
		// Fall back to regular notify
		if err := n.notify(title, message); err != nil {
			log.Error().Err(err).Str("message", message).Msg("Failed to send alert notification")
		}
	}
}

// MonitorStopped alerts that microphone monitoring ended because of err.
func (n *Notifier) MonitorStopped(err error) {
	if err == nil {
		return
	}
	n.Alert("Microphone monitoring stopped: " + err.Error())
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
