package winrs

import (
	"context"

	"github.com/smnsjas/winrm-run/wsman"
)

// Transport abstracts the WSMan shell operations used by Shell and Process.
type Transport interface {
	// Create creates a new shell and returns its endpoint reference.
	Create(ctx context.Context, spec wsman.ShellSpec) (*wsman.EndpointReference, error)

	// Command starts a command in the shell and returns the command ID.
	Command(ctx context.Context, epr *wsman.EndpointReference, command string, args []string) (string, error)

	// Receive retrieves output from a command.
	Receive(ctx context.Context, epr *wsman.EndpointReference, commandID string) (*wsman.ReceiveResult, error)

	// Signal sends a signal to a command.
	Signal(ctx context.Context, epr *wsman.EndpointReference, commandID, code string) error

	// Delete deletes a shell.
	Delete(ctx context.Context, epr *wsman.EndpointReference) error
}

var _ Transport = (*wsman.Client)(nil)
