// ABOUTME: Opens menu links in the default browser
// ABOUTME: Rejects empty and placeholder URLs before launching anything
package tray

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkg/browser"
)

// ErrLinkNotConfigured means a menu link has no usable URL
var ErrLinkNotConfigured = errors.New("tray: link URL is not configured")

// placeholderPrefix marks URLs left as template values
const placeholderPrefix = "URL_"

// checkURL rejects empty and placeholder URLs
func checkURL(url string) error {
	url = strings.TrimSpace(url)
	if url == "" || strings.HasPrefix(strings.ToUpper(url), placeholderPrefix) {
		return ErrLinkNotConfigured
	}
	return nil
}

// OpenURL launches the default browser on url
func OpenURL(url string) error {
	return openWith(url, browser.OpenURL)
}

func openWith(url string, launch func(string) error) error {
	if err := checkURL(url); err != nil {
		return err
	}
	if err := launch(url); err != nil {
		return fmt.Errorf("tray: open %s: %w", url, err)
	}
	return nil
}
