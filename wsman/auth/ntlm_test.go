package auth

import (
	"net/http"
	"testing"
)

// TestNTLMAuth_CredentialsInjected verifies the negotiator receives the
// credentials as Basic auth on the request.
func TestNTLMAuth_CredentialsInjected(t *testing.T) {
	tests := []struct {
		name     string
		creds    Credentials
		wantUser string
	}{
		{
			name:     "with domain",
			creds:    Credentials{Username: "user", Password: "pass", Domain: "domain"},
			wantUser: `domain\user`,
		},
		{
			name:     "without domain",
			creds:    Credentials{Username: "user@corp.example.com", Password: "pass"},
			wantUser: "user@corp.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockBase := &MockRoundTripper{
				RoundTripFunc: func(req *http.Request) (*http.Response, error) {
					u, p, ok := req.BasicAuth()
					if !ok {
						t.Error("Basic auth not set on request passed to negotiator")
					}
					if u != tt.wantUser {
						t.Errorf("Username = %s; want %s", u, tt.wantUser)
					}
					if p != "pass" {
						t.Errorf("Password = %s; want pass", p)
					}
					return &http.Response{StatusCode: 200}, nil
				},
			}

			// The negotiator is replaced by the mock to observe what it receives.
			wrapper := &credentialsRoundTripper{
				creds: tt.creds,
				base:  mockBase,
			}

			req, _ := http.NewRequest("POST", "http://example.com/wsman", nil)
			if _, err := wrapper.RoundTrip(req); err != nil {
				t.Fatalf("RoundTrip failed: %v", err)
			}
			if req.Header.Get("Authorization") != "" {
				t.Error("original request was mutated")
			}
		})
	}
}

func TestNTLMAuth_GetCredentials(t *testing.T) {
	auth := NewNTLMAuth(Credentials{Username: "u", Password: "p", Domain: "d"})
	domain, user, pass := auth.GetCredentials()
	if domain != "d" || user != "u" || pass != "p" {
		t.Errorf("GetCredentials() = %q, %q, %q", domain, user, pass)
	}
}
