package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smnsjas/winrm-run/client"
)

// fakeExecutor records how it was built and called.
type fakeExecutor struct {
	result *client.Result
	runErr error

	host    string
	config  client.Config
	mode    string
	command string
	runs    int
	closed  bool
}

func (f *fakeExecutor) RunCmd(_ context.Context, command string) (*client.Result, error) {
	f.runs++
	f.mode = "cmd"
	f.command = command
	return f.result, f.runErr
}

func (f *fakeExecutor) RunPS(_ context.Context, script string) (*client.Result, error) {
	f.runs++
	f.mode = "ps"
	f.command = script
	return f.result, f.runErr
}

func (f *fakeExecutor) Close() error {
	f.closed = true
	return nil
}

type harness struct {
	exec      *fakeExecutor
	factoryN  int
	factoryFn func(host string, cfg client.Config) (Executor, error)
	env       map[string]string
	stdout    bytes.Buffer
	stderr    bytes.Buffer
}

func newHarness(result *client.Result) *harness {
	h := &harness{
		exec: &fakeExecutor{result: result},
		env:  map[string]string{},
	}
	return h
}

func (h *harness) run(args ...string) int {
	deps := Deps{
		Stdout: &h.stdout,
		Stderr: &h.stderr,
		Getenv: func(k string) string { return h.env[k] },
		NewExecutor: func(host string, cfg client.Config) (Executor, error) {
			h.factoryN++
			if h.factoryFn != nil {
				return h.factoryFn(host, cfg)
			}
			h.exec.host = host
			h.exec.config = cfg
			return h.exec, nil
		},
		ReadPassword: func() (string, error) { return "", errors.New("no terminal") },
		Version:      "test",
	}
	return Run(context.Background(), args, deps)
}

func ok() *client.Result {
	return &client.Result{}
}

func TestRun_NativeShellScenario(t *testing.T) {
	h := newHarness(&client.Result{Stdout: []byte("win1\\administrator\r\n")})

	code := h.run("--host", "h", "--user", "u", "--password", "p", "--", "whoami")

	assert.Equal(t, 0, code)
	assert.Equal(t, 1, h.factoryN)
	assert.Equal(t, 1, h.exec.runs)
	assert.Equal(t, "cmd", h.exec.mode)
	assert.Equal(t, "whoami", h.exec.command)
	assert.Equal(t, "h", h.exec.host)
	assert.False(t, h.exec.config.UseTLS)
	assert.False(t, h.exec.config.InsecureSkipVerify)
	assert.Equal(t, 5985, h.exec.config.Port)
	assert.Equal(t, client.AuthNTLM, h.exec.config.AuthType)
	assert.Equal(t, "u", h.exec.config.Username)
	assert.Equal(t, "p", h.exec.config.Password)
	assert.Equal(t, "win1\\administrator\r\n", h.stdout.String())
	assert.Empty(t, h.stderr.String())
	assert.True(t, h.exec.closed)
}

func TestRun_PowerShellOverTLSScenario(t *testing.T) {
	h := newHarness(ok())

	code := h.run("--ssl", "--ps", "--host", "h", "--user", "u", "--password", "p", "--", "Get-Date")

	assert.Equal(t, 0, code)
	assert.Equal(t, "ps", h.exec.mode)
	assert.Equal(t, "Get-Date", h.exec.command)
	assert.True(t, h.exec.config.UseTLS)
	assert.True(t, h.exec.config.InsecureSkipVerify)
	assert.Equal(t, "https://h:5985/wsman", client.Endpoint(h.exec.host, h.exec.config.Port, h.exec.config.UseTLS))
}

func TestRun_MissingValues(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		wantMsg string
	}{
		{
			name:    "host",
			args:    []string{"--user", "u", "--password", "p", "whoami"},
			wantMsg: "Missing WINRM_HOST/--host. Set it via flag or env var.\n",
		},
		{
			name:    "user",
			args:    []string{"--host", "h", "--password", "p", "whoami"},
			wantMsg: "Missing WINRM_USER/--user. Set it via flag or env var.\n",
		},
		{
			name:    "password",
			args:    []string{"--host", "h", "--user", "u", "whoami"},
			wantMsg: "Missing WINRM_PASS/--password. Set it via flag or env var.\n",
		},
		{
			name:    "command",
			args:    []string{"--host", "h", "--user", "u", "--password", "p"},
			wantMsg: "Missing command to run.\n",
		},
		{
			name:    "whitespace command",
			args:    []string{"--host", "h", "--user", "u", "--password", "p", "--", "  ", ""},
			wantMsg: "Missing command to run.\n",
		},
		{
			name:    "empty env value",
			args:    []string{"--user", "u", "--password", "p", "whoami"},
			env:     map[string]string{EnvHost: ""},
			wantMsg: "Missing WINRM_HOST/--host. Set it via flag or env var.\n",
		},
		{
			name:    "host reported before command",
			args:    nil,
			wantMsg: "Missing WINRM_HOST/--host. Set it via flag or env var.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(ok())
			for k, v := range tt.env {
				h.env[k] = v
			}

			code := h.run(tt.args...)

			assert.Equal(t, ExitConfig, code)
			assert.Equal(t, tt.wantMsg, h.stderr.String())
			assert.Zero(t, h.factoryN, "executor must not be created")
			assert.Zero(t, h.exec.runs)
			assert.Empty(t, h.stdout.String())
		})
	}
}

func TestRun_MissingHostMentionsFlagAndEnv(t *testing.T) {
	h := newHarness(ok())

	code := h.run("--user", "u", "--password", "p", "--", "whoami")

	assert.Equal(t, ExitConfig, code)
	assert.Contains(t, h.stderr.String(), "WINRM_HOST")
	assert.Contains(t, h.stderr.String(), "--host")
}

func TestRun_EnvironmentFallback(t *testing.T) {
	h := newHarness(ok())
	h.env = map[string]string{
		EnvHost:      "envhost",
		EnvUser:      "envuser",
		EnvPassword:  "envpass",
		EnvPort:      "5986",
		EnvTransport: "basic",
	}

	code := h.run("whoami", "/all")

	assert.Equal(t, 0, code)
	assert.Equal(t, "envhost", h.exec.host)
	assert.Equal(t, "envuser", h.exec.config.Username)
	assert.Equal(t, "envpass", h.exec.config.Password)
	assert.Equal(t, 5986, h.exec.config.Port)
	assert.Equal(t, client.AuthBasic, h.exec.config.AuthType)
	assert.Equal(t, "whoami /all", h.exec.command)
}

func TestRun_FlagsOverrideEnvironment(t *testing.T) {
	h := newHarness(ok())
	h.env = map[string]string{
		EnvHost:      "envhost",
		EnvUser:      "envuser",
		EnvPassword:  "envpass",
		EnvPort:      "1234",
		EnvTransport: "basic",
	}

	code := h.run("--host", "flaghost", "--user", "flaguser", "--password", "flagpass",
		"--port", "5985", "--transport", "ntlm", "hostname")

	assert.Equal(t, 0, code)
	assert.Equal(t, "flaghost", h.exec.host)
	assert.Equal(t, "flaguser", h.exec.config.Username)
	assert.Equal(t, "flagpass", h.exec.config.Password)
	assert.Equal(t, 5985, h.exec.config.Port)
	assert.Equal(t, client.AuthNTLM, h.exec.config.AuthType)
}

func TestRun_MixedSources(t *testing.T) {
	h := newHarness(ok())
	h.env = map[string]string{EnvPassword: "envpass"}

	code := h.run("--host", "h", "--user", "u", "dir")

	assert.Equal(t, 0, code)
	assert.Equal(t, "envpass", h.exec.config.Password)
}

func TestRun_CommandTextVerbatim(t *testing.T) {
	h := newHarness(ok())

	code := h.run("--host", "h", "--user", "u", "--password", "p",
		"  echo", "--ps", "-x", "a  b ")

	assert.Equal(t, 0, code)
	assert.Equal(t, "cmd", h.exec.mode, "flags after the command belong to it")
	assert.Equal(t, "echo --ps -x a  b", h.exec.command)
}

func TestRun_ExitCodePassthrough(t *testing.T) {
	for _, remote := range []int{0, 1, 2, 5, 255, 259} {
		t.Run(fmt.Sprint(remote), func(t *testing.T) {
			h := newHarness(&client.Result{ExitCode: remote})

			code := h.run("--host", "h", "--user", "u", "--password", "p", "exit")

			assert.Equal(t, remote, code)
			assert.Empty(t, h.stderr.String())
		})
	}
}

func TestRun_RelaysOutputWithoutNewline(t *testing.T) {
	h := newHarness(&client.Result{
		Stdout:   []byte("no newline"),
		Stderr:   []byte("bad \xff byte"),
		ExitCode: 4,
	})

	code := h.run("--host", "h", "--user", "u", "--password", "p", "cmd")

	assert.Equal(t, 4, code)
	assert.Equal(t, "no newline", h.stdout.String())
	assert.Equal(t, "bad � byte", h.stderr.String())
}

func TestRun_Unavailable(t *testing.T) {
	h := newHarness(ok())
	h.factoryFn = func(string, client.Config) (Executor, error) {
		return nil, fmt.Errorf("%w: kerberos: load krb5.conf", client.ErrUnavailable)
	}

	code := h.run("--host", "h", "--user", "u", "--password", "p", "whoami")

	assert.Equal(t, ExitConfig, code)
	assert.Contains(t, h.stderr.String(), "krb5.conf")
	assert.Equal(t, 1, strings.Count(h.stderr.String(), "\n"))
}

func TestRun_UnknownTransport(t *testing.T) {
	h := newHarness(ok())

	code := h.run("--host", "h", "--user", "u", "--password", "p", "--transport", "pigeon", "whoami")

	assert.Equal(t, ExitConfig, code)
	assert.Contains(t, h.stderr.String(), "pigeon")
	assert.Zero(t, h.factoryN)
}

func TestRun_TransportFailure(t *testing.T) {
	h := newHarness(nil)
	h.exec.runErr = errors.New("dial tcp 10.0.0.1:5985: connection refused")

	code := h.run("--host", "h", "--user", "u", "--password", "p", "whoami")

	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, "winrm-run: dial tcp 10.0.0.1:5985: connection refused\n", h.stderr.String())
	assert.Empty(t, h.stdout.String())
	assert.True(t, h.exec.closed)
}

func TestRun_InvalidInputs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"bad port flag", []string{"--port", "abc", "whoami"}, nil},
		{"port out of range", []string{"--port", "70000", "whoami"}, nil},
		{"bad port env", []string{"whoami"}, map[string]string{EnvPort: "http"}},
		{"unknown flag", []string{"--nope", "whoami"}, nil},
		{"bad log level", []string{"--log-level", "loud", "whoami"}, nil},
		{"bad proxy flag", []string{"--proxy", "://bad", "whoami"}, nil},
		{"bad proxy env", []string{"whoami"}, map[string]string{EnvProxy: "http://[::1"}},
		{"proxy without scheme", []string{"--proxy", "proxy.example.com", "whoami"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(ok())
			h.env = map[string]string{EnvHost: "h", EnvUser: "u", EnvPassword: "p"}
			for k, v := range tt.env {
				h.env[k] = v
			}

			code := h.run(tt.args...)

			assert.Equal(t, ExitConfig, code)
			assert.NotEmpty(t, h.stderr.String())
			assert.Zero(t, h.factoryN)
		})
	}
}

func TestRun_InvalidProxyHidesCredentials(t *testing.T) {
	h := newHarness(ok())
	h.env = map[string]string{EnvHost: "h", EnvUser: "u", EnvPassword: "p"}

	code := h.run("--proxy", "http://bob:hunter2@[::1", "whoami")

	assert.Equal(t, ExitConfig, code)
	assert.Contains(t, h.stderr.String(), "proxy")
	assert.NotContains(t, h.stderr.String(), "hunter2")
	assert.Zero(t, h.factoryN)
}

func TestRun_PasswordPrompt(t *testing.T) {
	h := newHarness(ok())
	deps := Deps{
		Stdout: &h.stdout,
		Stderr: &h.stderr,
		Getenv: func(string) string { return "" },
		NewExecutor: func(host string, cfg client.Config) (Executor, error) {
			h.exec.config = cfg
			return h.exec, nil
		},
		ReadPassword: func() (string, error) { return "typed", nil },
	}

	code := Run(context.Background(), []string{"--host", "h", "--user", "u", "--password-prompt", "ver"}, deps)

	require.Equal(t, 0, code)
	assert.Equal(t, "typed", h.exec.config.Password)
}

func TestRun_ExtendedOptions(t *testing.T) {
	h := newHarness(ok())
	h.env = map[string]string{
		EnvProxy:  "http://proxy:3128",
		EnvCCache: "FILE:/tmp/krb5cc_1000",
	}

	code := h.run("--host", "h", "--user", "u@EXAMPLE.COM", "--password", "p",
		"--transport", "Kerberos", "--realm", "EXAMPLE.COM", "--spn", "HTTP/h.example.com",
		"--codepage", "437", "whoami")

	assert.Equal(t, 0, code)
	cfg := h.exec.config
	assert.Equal(t, client.AuthKerberos, cfg.AuthType)
	assert.Equal(t, "EXAMPLE.COM", cfg.Realm)
	assert.Equal(t, "HTTP/h.example.com", cfg.TargetSPN)
	assert.Equal(t, "/tmp/krb5cc_1000", cfg.CCachePath)
	assert.Equal(t, "http://proxy:3128", cfg.Proxy)
	assert.Equal(t, 437, cfg.Codepage)
	assert.NotNil(t, cfg.Logger)
}

func TestRun_Help(t *testing.T) {
	h := newHarness(ok())

	code := h.run("--help")

	assert.Equal(t, 0, code)
	assert.Contains(t, h.stdout.String(), "--transport")
	assert.Zero(t, h.factoryN)
}

func TestRun_DebugLogRedactsPassword(t *testing.T) {
	h := newHarness(ok())
	h.env = map[string]string{EnvLogLevel: "debug"}

	code := h.run("--host", "h", "--user", "u", "--password", "hunter2", "whoami")

	assert.Equal(t, 0, code)
	assert.Contains(t, h.stderr.String(), "running remote command")
	assert.NotContains(t, h.stderr.String(), "hunter2")
}

func TestCommandText(t *testing.T) {
	assert.Equal(t, "whoami", CommandText([]string{"whoami"}))
	assert.Equal(t, "echo a b", CommandText([]string{" echo", "a", "b "}))
	assert.Equal(t, "", CommandText(nil))
	assert.Equal(t, "", CommandText([]string{" ", ""}))
}
