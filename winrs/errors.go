package winrs

import "errors"

// Sentinel errors for WinRS operations.
var (
	// ErrShellClosed indicates the shell has already been closed.
	ErrShellClosed = errors.New("winrs: shell is closed")

	// ErrEmptyCommand indicates an empty command line or executable.
	ErrEmptyCommand = errors.New("winrs: empty command")
)
