package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// AuthType specifies the authentication mechanism.
type AuthType int

const (
	// AuthBasic uses HTTP Basic authentication.
	AuthBasic AuthType = iota
	// AuthNTLM uses NTLM authentication.
	AuthNTLM
	// AuthKerberos uses Kerberos through SPNEGO.
	AuthKerberos
	// AuthNegotiate uses SPNEGO, preferring Kerberos and falling back to NTLM.
	AuthNegotiate
	// AuthCredSSP is recognised but not supported.
	AuthCredSSP
	// AuthCertificate is recognised but not supported.
	AuthCertificate
)

var authTypeNames = map[AuthType]string{
	AuthBasic:       "basic",
	AuthNTLM:        "ntlm",
	AuthKerberos:    "kerberos",
	AuthNegotiate:   "negotiate",
	AuthCredSSP:     "credssp",
	AuthCertificate: "certificate",
}

// String returns the transport name of the auth type.
func (a AuthType) String() string {
	if name, ok := authTypeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("AuthType(%d)", int(a))
}

// ParseAuthType maps a transport name to an AuthType, case-insensitively.
// "plaintext" and "ssl" are accepted as aliases for basic.
func ParseAuthType(name string) (AuthType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "basic", "plaintext", "ssl":
		return AuthBasic, nil
	case "ntlm":
		return AuthNTLM, nil
	case "kerberos":
		return AuthKerberos, nil
	case "negotiate":
		return AuthNegotiate, nil
	case "credssp":
		return AuthCredSSP, nil
	case "certificate":
		return AuthCertificate, nil
	}
	return 0, fmt.Errorf("%w: unknown transport %q", ErrUnavailable, name)
}

// Config holds configuration for a WinRM client.
type Config struct {
	// Port is the WinRM port (default: 5985 for HTTP, 5986 for HTTPS).
	Port int

	// UseTLS enables HTTPS transport.
	UseTLS bool

	// InsecureSkipVerify skips TLS certificate verification.
	InsecureSkipVerify bool

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// AuthType specifies the authentication type.
	AuthType AuthType

	// Username for authentication. DOMAIN\user and user@realm forms are accepted.
	Username string

	// Password for authentication.
	Password string

	// Domain for NTLM authentication.
	Domain string

	// Codepage is the WinRS console codepage; 0 keeps the server default.
	Codepage int

	// Proxy is passed to transport.WithProxy: "" uses the environment,
	// "direct" disables proxying.
	Proxy string

	// Realm, Krb5ConfPath, CCachePath and TargetSPN configure Kerberos.
	// TargetSPN defaults to HTTP/<host>.
	Realm        string
	Krb5ConfPath string
	CCachePath   string
	TargetSPN    string

	// Logger receives debug output and security audit events.
	// Nil disables logging.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:     5985,
		UseTLS:   false,
		Timeout:  60 * time.Second,
		AuthType: AuthNTLM,
		Codepage: 65001,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range 1-65535", c.Port)
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if c.Codepage < 0 {
		return errors.New("codepage must not be negative")
	}
	if err := validateProxy(c.Proxy); err != nil {
		return err
	}

	// Kerberos can use a credential cache or, on Windows, the logged-on user.
	if c.AuthType == AuthKerberos || c.AuthType == AuthNegotiate {
		return nil
	}
	if c.Username == "" {
		return errors.New("username is required")
	}
	if c.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

// LogValue implements slog.LogValuer so the password, credential cache path
// and proxy password are never logged.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("port", c.Port),
		slog.Bool("tls", c.UseTLS),
		slog.Bool("insecure_skip_verify", c.InsecureSkipVerify),
		slog.String("transport", c.AuthType.String()),
		slog.String("username", c.Username),
		slog.String("domain", c.Domain),
		slog.String("password", redactIfSet(c.Password)),
		slog.Int("codepage", c.Codepage),
		slog.String("proxy", redactProxy(c.Proxy)),
		slog.String("ccache", redactIfSet(c.CCachePath)),
	)
}

func redactIfSet(s string) string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// validateProxy accepts "", "direct" or an absolute URL with a host.
// The value is not echoed since it may carry a password.
func validateProxy(proxy string) error {
	if proxy == "" || proxy == "direct" {
		return nil
	}
	u, err := url.Parse(proxy)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New(`proxy must be "direct" or a URL such as http://proxy:3128`)
	}
	return nil
}

// redactProxy masks the password of a proxy URL.
func redactProxy(proxy string) string {
	u, err := url.Parse(proxy)
	if err != nil || u.User == nil {
		return proxy
	}
	return u.Redacted()
}
