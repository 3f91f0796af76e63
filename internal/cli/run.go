package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/smnsjas/winrm-run/client"
	"github.com/smnsjas/winrm-run/internal/textenc"
)

// Exit codes used by the wrapper itself. Any other code is the remote
// command's own exit code. ExitConfig can collide with a remote exit code
// of 2.
const (
	ExitFailure = 1
	ExitConfig  = 2
)

// Executor runs one command on the remote host.
type Executor interface {
	RunCmd(ctx context.Context, command string) (*client.Result, error)
	RunPS(ctx context.Context, script string) (*client.Result, error)
	Close() error
}

// ExecutorFactory creates an Executor. Errors wrapping
// client.ErrUnavailable mean remote execution cannot be set up here.
type ExecutorFactory func(host string, cfg client.Config) (Executor, error)

// NewClientExecutor is the ExecutorFactory backed by client.New.
func NewClientExecutor(host string, cfg client.Config) (Executor, error) {
	c, err := client.New(host, cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Deps are the process collaborators of the command.
type Deps struct {
	Stdin  *os.File
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	NewExecutor ExecutorFactory

	// ReadPassword reads a password for --password-prompt. Nil reads from
	// Stdin when it is a terminal.
	ReadPassword func() (string, error)

	Version string
}

func (d *Deps) setDefaults() {
	if d.Stdin == nil {
		d.Stdin = os.Stdin
	}
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
	if d.Getenv == nil {
		d.Getenv = os.Getenv
	}
	if d.NewExecutor == nil {
		d.NewExecutor = NewClientExecutor
	}
	if d.ReadPassword == nil {
		d.ReadPassword = terminalPassword(d.Stdin, d.Stderr)
	}
	if d.Version == "" {
		d.Version = "dev"
	}
}

// terminalPassword prompts on stderr and reads a password from in without
// echo.
func terminalPassword(in *os.File, prompt io.Writer) func() (string, error) {
	return func() (string, error) {
		fd := int(in.Fd())
		if !term.IsTerminal(fd) {
			return "", errors.New("stdin is not a terminal")
		}
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

// NewRootCommand builds the winrm-run command. After Execute, *exitCode
// holds the process exit code.
func NewRootCommand(ctx context.Context, deps Deps, exitCode *int) *cobra.Command {
	deps.setDefaults()
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "winrm-run [flags] [--] command [args...]",
		Short: "Run a command on a Windows host over WinRM",
		Long: `Run one command on a Windows host over WinRM and relay its output.

The remote stdout and stderr are written to the local streams and the
process exits with the remote exit code. Exit code 2 is also used for
local configuration errors, so it is ambiguous.

Connection settings fall back to environment variables when the flag is
not given: ` + EnvHost + `, ` + EnvUser + `, ` + EnvPassword + `, ` + EnvPort + `, ` + EnvTransport + `.

--ssl disables certificate validation so self-signed listeners work.

Examples:
  WINRM_PASS=secret winrm-run --host win1 --user administrator -- ipconfig /all
  winrm-run --ssl --port 5986 --ps --host win1 --user administrator -- Get-Date`,
		Version:       deps.Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &resolver{
				opts:         opts,
				flags:        cmd.Flags(),
				getenv:       deps.Getenv,
				readPassword: deps.ReadPassword,
				stderr:       deps.Stderr,
			}
			*exitCode = execute(cmd.Context(), r, args, deps)
			return nil
		},
	}

	cmd.SetContext(ctx)
	cmd.SetIn(deps.Stdin)
	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)
	cmd.Flags().SetInterspersed(false)
	opts.bind(cmd.Flags())

	return cmd
}

// Run executes winrm-run with args and returns the process exit code.
func Run(ctx context.Context, args []string, deps Deps) int {
	exitCode := 0
	cmd := NewRootCommand(ctx, deps, &exitCode)
	if args == nil {
		// cobra falls back to os.Args on nil.
		args = []string{}
	}
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		// Only flag parsing fails here.
		fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
		return ExitConfig
	}
	return exitCode
}

func execute(ctx context.Context, r *resolver, args []string, deps Deps) int {
	inv, err := r.resolve(args)
	if err != nil {
		return reportError(deps.Stderr, err)
	}

	exec, err := deps.NewExecutor(inv.Host, inv.Config)
	if err != nil {
		return reportError(deps.Stderr, err)
	}
	defer func() {
		if err := exec.Close(); err != nil {
			inv.Logger.Warn("close failed", "error", err)
		}
	}()

	inv.Logger.Debug("running remote command",
		"host", inv.Host,
		"powershell", inv.PowerShell,
		"config", inv.Config)

	var result *client.Result
	if inv.PowerShell {
		result, err = exec.RunPS(ctx, inv.Command)
	} else {
		result, err = exec.RunCmd(ctx, inv.Command)
	}
	if err != nil {
		return reportError(deps.Stderr, err)
	}

	relay(deps.Stdout, result.Stdout)
	relay(deps.Stderr, result.Stderr)

	return result.ExitCode
}

// relay writes b to w as lossily decoded UTF-8, without adding a newline.
func relay(w io.Writer, b []byte) {
	if len(b) == 0 {
		return
	}
	_, _ = io.WriteString(w, textenc.Decode(b))
}

// reportError prints a one-line diagnostic for err and returns the exit
// code for its class.
func reportError(w io.Writer, err error) int {
	switch {
	case isConfigError(err):
		fmt.Fprintln(w, err)
		return ExitConfig
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintf(w, "winrm-run: %v\n", err)
		return ExitConfig
	default:
		fmt.Fprintf(w, "winrm-run: %v\n", err)
		return ExitFailure
	}
}
