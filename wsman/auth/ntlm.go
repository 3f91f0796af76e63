package auth

import (
	"log/slog"
	"net/http"

	"github.com/Azure/go-ntlmssp"
)

// NTLMAuth implements NTLM authentication.
type NTLMAuth struct {
	creds Credentials
}

// NewNTLMAuth creates a new NTLM authentication handler.
func NewNTLMAuth(creds Credentials) *NTLMAuth {
	return &NTLMAuth{creds: creds}
}

// Name returns the authentication scheme name.
func (a *NTLMAuth) Name() string {
	return "NTLM"
}

// LogValue renders the scheme and redacted credentials.
func (a *NTLMAuth) LogValue() slog.Value {
	return slog.GroupValue(slog.String("scheme", a.Name()), slog.Any("credentials", a.creds))
}

// Transport wraps an http.RoundTripper with NTLM authentication.
//
// ntlmssp.Negotiator takes its credentials from the request's Basic auth
// header, so the returned RoundTripper sets that header before handing the
// request to the negotiator. The Basic header itself never reaches the wire.
func (a *NTLMAuth) Transport(base http.RoundTripper) http.RoundTripper {
	return &credentialsRoundTripper{
		creds: a.creds,
		base:  ntlmssp.Negotiator{RoundTripper: base},
	}
}

// GetCredentials returns the domain, user and password used for NTLM.
func (a *NTLMAuth) GetCredentials() (string, string, string) {
	return a.creds.Domain, a.creds.Username, a.creds.Password
}

type credentialsRoundTripper struct {
	creds Credentials
	base  http.RoundTripper
}

func (rt *credentialsRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	username := rt.creds.Username
	if rt.creds.Domain != "" {
		username = rt.creds.Domain + `\` + username
	}

	reqCopy := req.Clone(req.Context())
	reqCopy.SetBasicAuth(username, rt.creds.Password)

	return rt.base.RoundTrip(reqCopy)
}
