package auth

import (
	"bytes"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestCredentials verifies Credentials struct.
func TestCredentials(t *testing.T) {
	creds := Credentials{
		Username: "admin",
		Password: "secret",
		Domain:   "DOMAIN",
	}

	if creds.Username != "admin" {
		t.Errorf("Username = %q, want %q", creds.Username, "admin")
	}
	if creds.Password != "secret" {
		t.Errorf("Password = %q, want %q", creds.Password, "secret")
	}
	if creds.Domain != "DOMAIN" {
		t.Errorf("Domain = %q, want %q", creds.Domain, "DOMAIN")
	}
}

// TestBasicAuth_Name verifies the auth scheme name.
func TestBasicAuth_Name(t *testing.T) {
	auth := NewBasicAuth(Credentials{})
	if auth.Name() != "Basic" {
		t.Errorf("Name() = %q, want %q", auth.Name(), "Basic")
	}
}

// TestBasicAuth_Transport verifies the transport wrapper.
func TestBasicAuth_Transport(t *testing.T) {
	creds := Credentials{
		Username: "testuser",
		Password: "testpass",
	}
	auth := NewBasicAuth(creds)

	// Create a test server that checks auth header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			t.Error("missing Authorization header")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		if !strings.HasPrefix(authHeader, "Basic ") {
			t.Errorf("expected Basic auth, got: %s", authHeader)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		// Decode and verify credentials
		encoded := strings.TrimPrefix(authHeader, "Basic ")
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			t.Errorf("failed to decode auth header: %v", err)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		expected := "testuser:testpass"
		if string(decoded) != expected {
			t.Errorf("decoded credentials = %q, want %q", string(decoded), expected)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// Create client with auth transport
	client := &http.Client{
		Transport: auth.Transport(http.DefaultTransport),
	}

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

// TestNTLMAuth_Name verifies the auth scheme name.
func TestNTLMAuth_Name(t *testing.T) {
	auth := NewNTLMAuth(Credentials{})
	if auth.Name() != "NTLM" {
		t.Errorf("Name() = %q, want %q", auth.Name(), "NTLM")
	}
}

// TestNTLMAuth_Transport verifies NTLM transport is created.
func TestNTLMAuth_Transport(t *testing.T) {
	creds := Credentials{
		Username: "testuser",
		Password: "testpass",
		Domain:   "TESTDOMAIN",
	}
	auth := NewNTLMAuth(creds)

	transport := auth.Transport(http.DefaultTransport)
	if transport == nil {
		t.Error("Transport returned nil")
	}

	// Verify it's not the same as the base transport (it should be wrapped)
	if transport == http.DefaultTransport {
		t.Error("Transport should wrap the base transport")
	}
}

// TestAuthenticator_Interface verifies the auth types implement Authenticator.
func TestAuthenticator_Interface(_ *testing.T) {
	var _ Authenticator = NewBasicAuth(Credentials{})
	var _ Authenticator = NewNTLMAuth(Credentials{})
	var _ Authenticator = NewNegotiateAuth(&MockSecurityProvider{})
}

func TestSplitUsername(t *testing.T) {
	tests := []struct {
		in, user, domain string
	}{
		{`CORP\alice`, "alice", "CORP"},
		{"alice@corp.example.com", "alice", "corp.example.com"},
		{"alice", "alice", ""},
	}
	for _, tt := range tests {
		user, domain := SplitUsername(tt.in)
		if user != tt.user || domain != tt.domain {
			t.Errorf("SplitUsername(%q) = %q, %q; want %q, %q", tt.in, user, domain, tt.user, tt.domain)
		}
	}
}

func TestKerberosConfig_Principal(t *testing.T) {
	cfg := KerberosConfig{Credentials: &Credentials{Username: "alice@corp.example.com"}}
	user, realm := cfg.principal()
	if user != "alice" || realm != "CORP.EXAMPLE.COM" {
		t.Errorf("principal() = %q, %q", user, realm)
	}

	cfg.Realm = "other.example.com"
	if _, realm := cfg.principal(); realm != "OTHER.EXAMPLE.COM" {
		t.Errorf("explicit realm = %q; want OTHER.EXAMPLE.COM", realm)
	}
}

func TestKerberosConfig_Krb5ConfPath(t *testing.T) {
	t.Setenv("KRB5_CONFIG", "/tmp/env-krb5.conf")

	if got := (KerberosConfig{}).krb5ConfPath(); got != "/tmp/env-krb5.conf" {
		t.Errorf("env path = %q", got)
	}
	if got := (KerberosConfig{Krb5ConfPath: "/x"}).krb5ConfPath(); got != "/x" {
		t.Errorf("explicit path = %q", got)
	}

	t.Setenv("KRB5_CONFIG", "")
	if got := (KerberosConfig{}).krb5ConfPath(); got != DefaultKrb5Conf {
		t.Errorf("default path = %q", got)
	}
}

func TestTargetSPNForHost(t *testing.T) {
	if got := TargetSPNForHost("srv.corp"); got != "HTTP/srv.corp" {
		t.Errorf("TargetSPNForHost = %q", got)
	}
}

func TestBasicAuth_WarnsOverHTTP(t *testing.T) {
	var buf bytes.Buffer
	auth := NewBasicAuth(Credentials{Username: "u", Password: "p"})
	auth.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	rt := auth.Transport(&MockRoundTripper{})
	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest("POST", "http://host:5985/wsman", nil)
		if _, err := rt.RoundTrip(req); err != nil {
			t.Fatalf("RoundTrip failed: %v", err)
		}
	}

	if n := strings.Count(buf.String(), "non-HTTPS"); n != 1 {
		t.Errorf("warning logged %d times; want 1", n)
	}
}
