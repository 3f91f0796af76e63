package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"github.com/smnsjas/winrm-run/winrs"
	"github.com/smnsjas/winrm-run/wsman"
	"github.com/smnsjas/winrm-run/wsman/auth"
	"github.com/smnsjas/winrm-run/wsman/transport"
)

// ErrUnavailable is wrapped by every error from New that means the
// requested capability cannot be provided on this machine, as opposed to
// an invalid configuration.
var ErrUnavailable = errors.New("client: remote execution unavailable")

// Result is the outcome of one remote command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Client runs commands on one WinRM endpoint.
type Client struct {
	mu sync.Mutex

	hostname string
	config   Config
	endpoint string

	transport *transport.HTTPTransport
	shells    winrs.Transport
	closer    io.Closer

	logger         *slog.Logger
	securityLogger *SecurityLogger
	closed         bool
}

// New creates a client for hostname. It performs no network I/O.
//
// Invalid configuration yields a plain error. An unsupported transport or
// an authenticator that cannot be initialised (for example a missing
// krb5.conf) yields an error wrapping ErrUnavailable.
func New(hostname string, cfg Config) (*Client, error) {
	if hostname == "" {
		return nil, errors.New("invalid config: hostname is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	endpoint := Endpoint(hostname, cfg.Port, cfg.UseTLS)

	tr := transport.NewHTTPTransport(
		transport.WithLogger(logger),
		transport.WithTimeout(cfg.Timeout),
		transport.WithInsecureSkipVerify(cfg.UseTLS && cfg.InsecureSkipVerify),
		transport.WithProxy(cfg.Proxy),
	)

	authenticator, closer, err := newAuthenticator(hostname, cfg, logger)
	if err != nil {
		return nil, err
	}
	tr.Client().Transport = authenticator.Transport(tr.Client().Transport)

	c := &Client{
		hostname:  hostname,
		config:    cfg,
		endpoint:  endpoint,
		transport: tr,
		shells:    wsman.NewClient(endpoint, tr),
		closer:    closer,
	}
	c.SetSlogLogger(logger)

	c.logger.Debug("client created",
		"endpoint", endpoint,
		"scheme", authenticator.Name(),
		"config", cfg)

	return c, nil
}

// Endpoint returns the WinRM endpoint URL scheme://host:port/wsman.
func Endpoint(hostname string, port int, useTLS bool) string {
	scheme := "http"
	if useTLS {
		scheme = "https"
	}
	return scheme + "://" + net.JoinHostPort(hostname, strconv.Itoa(port)) + "/wsman"
}

// newAuthenticator builds the authenticator for cfg.AuthType. The returned
// closer, if any, releases provider resources.
func newAuthenticator(hostname string, cfg Config, logger *slog.Logger) (auth.Authenticator, io.Closer, error) {
	creds := auth.Credentials{
		Username: cfg.Username,
		Password: cfg.Password,
		Domain:   cfg.Domain,
	}

	switch cfg.AuthType {
	case AuthBasic:
		a := auth.NewBasicAuth(creds)
		a.SetLogger(logger)
		return a, nil, nil

	case AuthNTLM:
		return auth.NewNTLMAuth(creds), nil, nil

	case AuthKerberos:
		provider, err := auth.NewKerberosProvider(kerberosConfig(hostname, cfg, creds))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: kerberos: %w", ErrUnavailable, err)
		}
		a := auth.NewNegotiateAuth(provider)
		return a, a, nil

	case AuthNegotiate:
		provider, err := auth.NewKerberosProvider(kerberosConfig(hostname, cfg, creds))
		if err == nil {
			a := auth.NewNegotiateAuth(provider)
			return a, a, nil
		}
		if creds.Username == "" || creds.Password == "" {
			return nil, nil, fmt.Errorf("%w: negotiate: %w", ErrUnavailable, err)
		}
		// go-ntlmssp answers Negotiate challenges with NTLM.
		logger.Debug("kerberos unavailable, negotiating with NTLM", "error", err)
		return auth.NewNTLMAuth(creds), nil, nil

	case AuthCredSSP, AuthCertificate:
		return nil, nil, fmt.Errorf("%w: transport %s is not supported", ErrUnavailable, cfg.AuthType)
	}

	return nil, nil, fmt.Errorf("%w: unknown auth type %d", ErrUnavailable, int(cfg.AuthType))
}

func kerberosConfig(hostname string, cfg Config, creds auth.Credentials) auth.KerberosConfig {
	spn := cfg.TargetSPN
	if spn == "" {
		spn = auth.TargetSPNForHost(hostname)
	}
	kc := auth.KerberosConfig{
		TargetSPN:    spn,
		Realm:        cfg.Realm,
		Krb5ConfPath: cfg.Krb5ConfPath,
		CCachePath:   cfg.CCachePath,
	}
	if creds.Username != "" {
		kc.Credentials = &creds
	}
	return kc
}

// SetSlogLogger sets the logger for debug output and security audit events.
func (c *Client) SetSlogLogger(logger *slog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c.logger = logger.With("component", "winrm")
	c.securityLogger = NewSecurityLogger(logger.With("component", "audit"), c.config.Username, c.endpoint)
}

// Endpoint returns the endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Hostname returns the target host.
func (c *Client) Hostname() string {
	return c.hostname
}

// RunCmd runs a command line through cmd.exe in a new WinRS shell and
// waits for it to finish. The shell is deleted afterwards.
func (c *Client) RunCmd(ctx context.Context, command string) (*Result, error) {
	return c.run(ctx, "cmd", command, func(shell *winrs.Shell) (*winrs.Process, error) {
		return shell.Run(ctx, command)
	})
}

// RunPS runs a PowerShell script through powershell.exe -EncodedCommand
// and waits for it to finish. A CLIXML error stream on stderr is
// converted to plain text.
func (c *Client) RunPS(ctx context.Context, script string) (*Result, error) {
	args, err := powershellArgs(script)
	if err != nil {
		return nil, fmt.Errorf("encode script: %w", err)
	}

	result, err := c.run(ctx, "powershell", script, func(shell *winrs.Shell) (*winrs.Process, error) {
		return shell.RunExecutable(ctx, powershellExe, args...)
	})
	if err != nil {
		return nil, err
	}

	if len(result.Stderr) > 0 {
		result.Stderr = cleanCLIXML(result.Stderr)
	}
	return result, nil
}

func (c *Client) run(ctx context.Context, mode, command string, exec func(*winrs.Shell) (*winrs.Process, error)) (*Result, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errors.New("client is closed")
	}
	logger, audit := c.logger, c.securityLogger
	c.mu.Unlock()

	logged := sanitizeScriptForLogging(command)
	logger.Debug("running command", "mode", mode, "command", logged)
	audit.LogCommand(SubtypeCommandExecute, OutcomeAttempt, SeverityInfo, map[string]any{
		"command": logged,
		"mode":    mode,
	})

	opts := []winrs.Option{winrs.WithLogger(logger)}
	if c.config.Codepage > 0 {
		opts = append(opts, winrs.WithCodepage(c.config.Codepage))
	}

	shell, err := winrs.NewShell(ctx, c.shells, opts...)
	if err != nil {
		c.logFailure(audit, "create_shell", err)
		return nil, err
	}
	audit.LogConnection(SubtypeConnEstablished, OutcomeSuccess, SeverityInfo, map[string]any{
		"shell_id": shell.ID(),
	})
	defer func() {
		if closeErr := shell.Close(context.WithoutCancel(ctx)); closeErr != nil {
			logger.Warn("failed to delete shell", "shell_id", shell.ID(), "error", closeErr)
		}
	}()

	proc, err := exec(shell)
	if err != nil {
		c.logFailure(audit, "run_command", err)
		return nil, err
	}

	result := &Result{
		Stdout:   proc.Stdout(),
		Stderr:   proc.Stderr(),
		ExitCode: proc.ExitCode(),
	}

	audit.LogCommand(SubtypeCommandComplete, OutcomeSuccess, SeverityInfo, map[string]any{
		"mode":      mode,
		"exit_code": result.ExitCode,
	})
	logger.Debug("command finished",
		"exit_code", result.ExitCode,
		"stdout_bytes", len(result.Stdout),
		"stderr_bytes", len(result.Stderr))

	return result, nil
}

// logFailure records a failed execution, separating authentication
// failures from other errors.
func (c *Client) logFailure(audit *SecurityLogger, stage string, err error) {
	var fault *wsman.Fault
	switch {
	case errors.Is(err, transport.ErrUnauthorized):
		audit.LogAuthentication(SubtypeAuthFailure, OutcomeFailure, SeverityWarning, map[string]any{
			"scheme": c.config.AuthType.String(),
		})
	case errors.As(err, &fault) && fault.IsAccessDenied():
		audit.LogAuthentication(SubtypeAuthFailure, OutcomeDenied, SeverityWarning, map[string]any{
			"stage": stage,
		})
	default:
		audit.LogConnection(SubtypeConnFailed, OutcomeFailure, SeverityError, map[string]any{
			"stage": stage,
			"error": err.Error(),
		})
	}
	audit.LogCommand(SubtypeCommandFailed, OutcomeFailure, SeverityError, map[string]any{
		"stage": stage,
	})
}

// Close releases authentication resources and idle connections.
// The client cannot be used afterwards.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	c.transport.CloseIdleConnections()
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
