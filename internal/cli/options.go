package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/smnsjas/winrm-run/client"
	"github.com/smnsjas/winrm-run/internal/log"
)

// Environment variables consulted when the matching flag is not given.
const (
	EnvHost      = "WINRM_HOST"
	EnvUser      = "WINRM_USER"
	EnvPassword  = "WINRM_PASS"
	EnvPort      = "WINRM_PORT"
	EnvTransport = "WINRM_TRANSPORT"
	EnvProxy     = "WINRM_PROXY"
	EnvLogLevel  = "WINRM_LOG_LEVEL"
	EnvCCache    = "KRB5CCNAME"
)

const (
	defaultPort      = 5985
	defaultTransport = "ntlm"
)

// Options holds the raw flag values.
type Options struct {
	Host           string
	User           string
	Password       string
	PasswordPrompt bool
	Port           int
	Transport      string
	SSL            bool
	PS             bool

	Codepage int
	Proxy    string
	LogLevel string

	Realm    string
	Krb5Conf string
	CCache   string
	SPN      string
}

// bind registers the flags on fs.
func (o *Options) bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.Host, "host", "", "Target host (env "+EnvHost+")")
	fs.StringVar(&o.User, "user", "", `Username, DOMAIN\user or user@REALM (env `+EnvUser+")")
	fs.StringVar(&o.Password, "password", "", "Password (env "+EnvPassword+", preferred over the flag)")
	fs.BoolVar(&o.PasswordPrompt, "password-prompt", false, "Read the password from the terminal if none is set")
	fs.IntVar(&o.Port, "port", defaultPort, "WinRM port (env "+EnvPort+")")
	fs.StringVar(&o.Transport, "transport", defaultTransport, "Authentication: ntlm, basic, kerberos, negotiate (env "+EnvTransport+")")
	fs.BoolVar(&o.SSL, "ssl", false, "Use HTTPS and skip certificate validation")
	fs.BoolVar(&o.PS, "ps", false, "Run the command as a PowerShell script instead of through cmd.exe")

	fs.IntVar(&o.Codepage, "codepage", 65001, "Console codepage of the remote shell, 0 for the server default")
	fs.StringVar(&o.Proxy, "proxy", "", `HTTP proxy URL, or "direct" to bypass the environment proxy (env `+EnvProxy+")")
	fs.StringVar(&o.LogLevel, "log-level", "", "Diagnostic log level on stderr: debug, info, warn, error (env "+EnvLogLevel+")")

	fs.StringVar(&o.Realm, "realm", "", "Kerberos realm")
	fs.StringVar(&o.Krb5Conf, "krb5-conf", "", "Path to krb5.conf (env KRB5_CONFIG)")
	fs.StringVar(&o.CCache, "ccache", "", "Path to a Kerberos credential cache (env "+EnvCCache+")")
	fs.StringVar(&o.SPN, "spn", "", "Kerberos service principal (default HTTP/<host>)")
}

// Invocation is a fully resolved request to run one command.
type Invocation struct {
	Host       string
	Config     client.Config
	PowerShell bool
	Command    string
	Logger     *slog.Logger
}

// ConfigError is a local configuration problem detected before any
// remote call. Its message is printed as is.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return e.Msg
}

func missing(name string) error {
	return &ConfigError{Msg: fmt.Sprintf("Missing %s. Set it via flag or env var.", name)}
}

// errMissingCommand is reported when no command text remains after flag parsing.
var errMissingCommand = &ConfigError{Msg: "Missing command to run."}

// CommandText joins the positional arguments with single spaces and trims
// the result.
func CommandText(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// resolver turns parsed flags, the environment and positional arguments
// into an Invocation.
type resolver struct {
	opts         *Options
	flags        *pflag.FlagSet
	getenv       func(string) string
	readPassword func() (string, error)
	stderr       io.Writer
}

// stringValue returns the flag value if the flag was given, otherwise the
// environment value if set, otherwise the flag default.
func (r *resolver) stringValue(flag, env string, value string) string {
	if r.flags.Changed(flag) {
		return value
	}
	if v := r.getenv(env); v != "" {
		return v
	}
	return value
}

func (r *resolver) resolve(args []string) (*Invocation, error) {
	o := r.opts

	logLevel := r.stringValue("log-level", EnvLogLevel, o.LogLevel)
	logger, err := log.New(r.stderr, logLevel)
	if err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("Invalid log level %q.", logLevel)}
	}

	port := o.Port
	if !r.flags.Changed("port") {
		if v := r.getenv(EnvPort); v != "" {
			port, err = strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, &ConfigError{Msg: fmt.Sprintf("Invalid %s %q: not an integer.", EnvPort, v)}
			}
		}
	}
	if port < 1 || port > 65535 {
		return nil, &ConfigError{Msg: fmt.Sprintf("Invalid port %d: must be between 1 and 65535.", port)}
	}

	host := r.stringValue("host", EnvHost, o.Host)
	user := r.stringValue("user", EnvUser, o.User)
	password := r.stringValue("password", EnvPassword, o.Password)

	if host == "" {
		return nil, missing(EnvHost + "/--host")
	}
	if user == "" {
		return nil, missing(EnvUser + "/--user")
	}
	if password == "" && o.PasswordPrompt && r.readPassword != nil {
		password, err = r.readPassword()
		if err != nil {
			return nil, &ConfigError{Msg: fmt.Sprintf("Cannot read password: %v.", err)}
		}
	}
	if password == "" {
		return nil, missing(EnvPassword + "/--password")
	}

	command := CommandText(args)
	if command == "" {
		return nil, errMissingCommand
	}

	transportName := r.stringValue("transport", EnvTransport, o.Transport)
	authType, err := client.ParseAuthType(transportName)
	if err != nil {
		return nil, err
	}

	cfg := client.DefaultConfig()
	cfg.Port = port
	cfg.UseTLS = o.SSL
	cfg.InsecureSkipVerify = o.SSL
	cfg.AuthType = authType
	cfg.Username = user
	cfg.Password = password
	cfg.Codepage = o.Codepage
	cfg.Proxy = r.stringValue("proxy", EnvProxy, o.Proxy)
	cfg.Realm = o.Realm
	cfg.Krb5ConfPath = o.Krb5Conf
	cfg.CCachePath = strings.TrimPrefix(r.stringValue("ccache", EnvCCache, o.CCache), "FILE:")
	cfg.TargetSPN = o.SPN
	cfg.Logger = logger

	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("Invalid configuration: %v.", err)}
	}

	return &Invocation{
		Host:       host,
		Config:     cfg,
		PowerShell: o.PS,
		Command:    command,
		Logger:     logger,
	}, nil
}

// isConfigError reports whether err is a local configuration error.
func isConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
