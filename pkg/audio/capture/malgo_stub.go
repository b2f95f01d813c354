//go:build !cgo

// ABOUTME: Malgo stub when CGO is disabled
// ABOUTME: Provides compile-time placeholder for pure-Go builds
package capture

import "fmt"

// NewMalgo reports that miniaudio needs CGO
func NewMalgo() (Backend, error) {
	return nil, fmt.Errorf("%w: malgo requires CGO (build with CGO_ENABLED=1)", ErrUnsupportedBackend)
}
