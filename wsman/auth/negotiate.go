package auth

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxNegotiateRetries bounds the handshake so a misbehaving server cannot
// keep the client looping.
const maxNegotiateRetries = 5

// NegotiateAuth implements SPNEGO authentication using a pluggable SecurityProvider.
type NegotiateAuth struct {
	provider SecurityProvider
}

// NewNegotiateAuth creates a new Negotiate authenticator.
func NewNegotiateAuth(provider SecurityProvider) *NegotiateAuth {
	return &NegotiateAuth{
		provider: provider,
	}
}

// Name returns the scheme name.
func (a *NegotiateAuth) Name() string {
	return "Negotiate"
}

// Transport wraps the base transport with Negotiate authentication logic.
func (a *NegotiateAuth) Transport(base http.RoundTripper) http.RoundTripper {
	return &negotiateRoundTripper{
		base:     base,
		provider: a.provider,
	}
}

// Close releases the provider's resources.
func (a *NegotiateAuth) Close() error {
	return a.provider.Close()
}

type negotiateRoundTripper struct {
	base     http.RoundTripper
	provider SecurityProvider
}

func (rt *negotiateRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// Buffer the body so it can be replayed on every leg.
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
	}

	var clientToken []byte

	for attempt := 0; attempt < maxNegotiateRetries; attempt++ {
		reqClone := req.Clone(req.Context())
		if req.Body != nil {
			reqClone.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			reqClone.ContentLength = int64(len(bodyBytes))
			reqClone.GetBody = func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(bodyBytes)), nil
			}
		}

		if clientToken != nil {
			reqClone.Header.Set("Authorization",
				"Negotiate "+base64.StdEncoding.EncodeToString(clientToken))
		}

		resp, err := rt.base.RoundTrip(reqClone)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusUnauthorized {
			return resp, nil
		}

		challenge, ok := negotiateChallenge(resp.Header)
		if !ok {
			// Not a Negotiate challenge, let the caller see the 401.
			return resp, nil
		}
		_ = resp.Body.Close()

		// A bare "Negotiate" after we already sent a token means the
		// server rejected it. Start over with a fresh context.
		if challenge == nil && clientToken != nil && rt.provider.Complete() {
			return nil, errors.New("negotiate authentication rejected by server")
		}

		var continueNeeded bool
		clientToken, continueNeeded, err = rt.provider.Step(req.Context(), challenge)
		if err != nil {
			return nil, fmt.Errorf("negotiate step failed: %w", err)
		}
		if len(clientToken) == 0 && !continueNeeded {
			return nil, errors.New("negotiate: provider produced no token for the challenge")
		}
	}

	return nil, fmt.Errorf("negotiate authentication failed after %d attempts", maxNegotiateRetries)
}

// negotiateChallenge finds the Negotiate challenge among the
// WWW-Authenticate headers and decodes its token, if any.
func negotiateChallenge(h http.Header) ([]byte, bool) {
	for _, value := range h.Values("WWW-Authenticate") {
		for _, part := range strings.Split(value, ",") {
			fields := strings.Fields(strings.TrimSpace(part))
			if len(fields) == 0 || !strings.EqualFold(fields[0], "Negotiate") {
				continue
			}
			if len(fields) < 2 {
				return nil, true
			}
			token, err := base64.StdEncoding.DecodeString(fields[1])
			if err != nil {
				return nil, true
			}
			return token, true
		}
	}
	return nil, false
}
