package winrs

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/smnsjas/winrm-run/wsman"
)

// Process represents a command running in a WinRS shell.
type Process struct {
	shell     *Shell
	commandID string
	stdout    []byte
	stderr    []byte
	exitCode  int
	done      bool
	mu        sync.Mutex
}

// Run executes a command line and waits for completion.
//
// The command line is passed to cmd.exe unchanged, so shell syntax such as
// pipes and redirection works as it would in a console.
func (s *Shell) Run(ctx context.Context, commandLine string) (*Process, error) {
	proc, err := s.Start(ctx, commandLine)
	if err != nil {
		return nil, err
	}
	return proc, proc.waitAndClean(ctx)
}

// RunExecutable starts executable with each argument sent separately and
// waits for completion.
func (s *Shell) RunExecutable(ctx context.Context, executable string, args ...string) (*Process, error) {
	proc, err := s.StartExecutable(ctx, executable, args...)
	if err != nil {
		return nil, err
	}
	return proc, proc.waitAndClean(ctx)
}

// Start starts a command line without waiting for completion.
// Use Wait() to block until the process finishes.
func (s *Shell) Start(ctx context.Context, commandLine string) (*Process, error) {
	if strings.TrimSpace(commandLine) == "" {
		return nil, ErrEmptyCommand
	}
	return s.start(ctx, commandLine, nil)
}

// StartExecutable starts executable with args without waiting for completion.
func (s *Shell) StartExecutable(ctx context.Context, executable string, args ...string) (*Process, error) {
	if executable == "" {
		return nil, ErrEmptyCommand
	}
	return s.start(ctx, executable, args)
}

func (s *Shell) start(ctx context.Context, command string, args []string) (*Process, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrShellClosed
	}
	s.mu.Unlock()

	commandID, err := s.transport.Command(ctx, s.epr, command, args)
	if err != nil {
		return nil, fmt.Errorf("winrs: start command: %w", err)
	}

	return &Process{
		shell:     s,
		commandID: commandID,
	}, nil
}

// waitAndClean waits for the process and then releases the command on the
// server. A failed terminate is logged; the collected output stays valid.
func (p *Process) waitAndClean(ctx context.Context) error {
	waitErr := p.Wait(ctx)
	if err := p.Terminate(context.WithoutCancel(ctx)); err != nil {
		p.shell.config.logger.Warn("failed to terminate command",
			"shell_id", p.shell.ID(), "command_id", p.commandID, "error", err)
	}
	return waitErr
}

// Wait blocks until the process completes, collecting its output.
func (p *Process) Wait(ctx context.Context) error {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := p.shell.transport.Receive(ctx, p.shell.epr, p.commandID)
		if err != nil {
			return fmt.Errorf("winrs: receive output: %w", err)
		}

		if p.SetResult(result) {
			return nil
		}
	}
}

// Signal sends a signal to the process.
// Use wsman.SignalTerminate or wsman.SignalCtrlC.
func (p *Process) Signal(ctx context.Context, code string) error {
	if err := p.shell.transport.Signal(ctx, p.shell.epr, p.commandID, code); err != nil {
		return fmt.Errorf("winrs: signal: %w", err)
	}
	return nil
}

// Terminate sends the terminate signal, which ends a running command and
// frees a finished one on the server.
func (p *Process) Terminate(ctx context.Context) error {
	return p.Signal(ctx, wsman.SignalTerminate)
}

// CommandID returns the command ID.
func (p *Process) CommandID() string {
	return p.commandID
}

// Done returns true if the process has completed.
func (p *Process) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Stdout returns the captured standard output. Safe to call after Wait() completes.
func (p *Process) Stdout() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stdout
}

// Stderr returns the captured standard error. Safe to call after Wait() completes.
func (p *Process) Stderr() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stderr
}

// ExitCode returns the process exit code. Safe to call after Wait() completes.
func (p *Process) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode
}

// SetResult appends one Receive round trip to the process and reports
// whether the process has finished.
func (p *Process) SetResult(result *wsman.ReceiveResult) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stdout = append(p.stdout, result.Stdout...)
	p.stderr = append(p.stderr, result.Stderr...)
	if result.Done {
		p.exitCode = result.ExitCode
		p.done = true
	}
	return p.done
}
