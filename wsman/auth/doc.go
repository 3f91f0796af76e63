// Package auth provides authentication handlers for WSMan connections.
//
// # Supported Authentication Methods
//
//   - Basic: HTTP Basic authentication (use only over TLS)
//   - NTLM: NT LAN Manager authentication (via github.com/Azure/go-ntlmssp)
//   - Negotiate: SPNEGO driven by a SecurityProvider
//
// NewKerberosProvider returns the platform SecurityProvider: go-krb5 (pure Go)
// on Linux and macOS, the SSPI Negotiate package on Windows. Only SSPI can
// use the logged-on user's credentials; elsewhere a password or a
// credential cache (from kinit) is required.
//
// None of the handlers implement WinRM message encryption, so the listener
// must be HTTPS or allow unencrypted traffic.
//
// # Usage
//
// NTLM authentication:
//
//	a := auth.NewNTLMAuth(auth.Credentials{
//	    Username: "administrator",
//	    Password: "password",
//	    Domain:   "DOMAIN",
//	})
//	httpClient.Transport = a.Transport(httpClient.Transport)
//
// Kerberos authentication:
//
//	provider, err := auth.NewKerberosProvider(auth.KerberosConfig{
//	    TargetSPN:   auth.TargetSPNForHost("server.domain.com"),
//	    Credentials: &auth.Credentials{Username: "user@DOMAIN.COM", Password: "pass"},
//	})
//	a := auth.NewNegotiateAuth(provider)
package auth
