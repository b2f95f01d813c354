// ABOUTME: Startup errors carrying a user-facing title
package app

import "errors"

// StartupError is a failure before monitoring began. Title is a short
// user-facing headline.
type StartupError struct {
	Title string
	Err   error
}

func (e *StartupError) Error() string {
	return e.Title + ": " + e.Err.Error()
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

func startupFailure(title string, err error) error {
	return &StartupError{Title: title, Err: err}
}

// IsStartupError reports whether err happened before monitoring began
func IsStartupError(err error) bool {
	var se *StartupError
	return errors.As(err, &se)
}
