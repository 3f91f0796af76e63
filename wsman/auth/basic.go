package auth

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"sync"
)

// BasicAuth implements HTTP Basic authentication.
type BasicAuth struct {
	creds  Credentials
	logger *slog.Logger
}

// NewBasicAuth creates a new Basic authentication handler.
func NewBasicAuth(creds Credentials) *BasicAuth {
	return &BasicAuth{
		creds:  creds,
		logger: slog.New(slog.DiscardHandler),
	}
}

// SetLogger sets the logger that receives the plaintext-credentials warning.
func (a *BasicAuth) SetLogger(logger *slog.Logger) {
	if logger != nil {
		a.logger = logger
	}
}

// Name returns the authentication scheme name.
func (a *BasicAuth) Name() string {
	return "Basic"
}

// LogValue renders the scheme and redacted credentials.
func (a *BasicAuth) LogValue() slog.Value {
	return slog.GroupValue(slog.String("scheme", a.Name()), slog.Any("credentials", a.creds))
}

// Transport wraps an http.RoundTripper with Basic authentication.
func (a *BasicAuth) Transport(base http.RoundTripper) http.RoundTripper {
	return &basicTransport{
		base:   base,
		creds:  a.creds,
		logger: a.logger,
	}
}

// basicTransport adds Basic auth header to requests.
type basicTransport struct {
	base     http.RoundTripper
	creds    Credentials
	logger   *slog.Logger
	warnOnce sync.Once
}

// RoundTrip implements http.RoundTripper.
func (t *basicTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		t.warnOnce.Do(func() {
			t.logger.Warn("basic authentication over a non-HTTPS connection, credentials are not encrypted",
				"host", req.URL.Host)
		})
	}

	// Clone the request to avoid mutating the original
	reqCopy := req.Clone(req.Context())

	auth := t.creds.Username + ":" + t.creds.Password
	encoded := base64.StdEncoding.EncodeToString([]byte(auth))
	reqCopy.Header.Set("Authorization", "Basic "+encoded)

	return t.base.RoundTrip(reqCopy)
}
