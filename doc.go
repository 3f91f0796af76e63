// Package winrmrun runs a single command on a Windows host over WinRM
// (WS-Management) and relays its output and exit code.
//
// # Architecture
//
// The module is organized into layers:
//
//	┌─────────────────────────────────────────────────────────┐
//	│  cmd/winrm-run   CLI entry point                        │
//	├─────────────────────────────────────────────────────────┤
//	│  internal/cli    Flag/env resolution, output relay      │
//	├─────────────────────────────────────────────────────────┤
//	│  client/         RunCmd / RunPS, capability probe       │
//	├─────────────────────────────────────────────────────────┤
//	│  winrs/          Shell and process lifecycle            │
//	├─────────────────────────────────────────────────────────┤
//	│  wsman/          SOAP envelopes, faults, HTTP, auth     │
//	└─────────────────────────────────────────────────────────┘
//
// # Quick Start
//
//	cfg := client.DefaultConfig()
//	cfg.Username = "administrator"
//	cfg.Password = "password"
//
//	c, err := client.New("server", cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	result, err := c.RunPS(ctx, "Get-Service WinRM")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(string(result.Stdout))
//
// # Authentication
//
// Basic, NTLM, Kerberos and Negotiate are supported. Kerberos uses
// go-krb5 on Linux and macOS and SSPI on Windows. Negotiate tries
// Kerberos first and falls back to NTLM.
//
// Message-level encryption is not implemented. Use HTTPS, or a listener
// with AllowUnencrypted, for NTLM and Kerberos.
//
// # Exit Codes
//
// winrm-run exits with the remote command's exit code. It exits 2 for
// local configuration errors and when the requested transport is
// unavailable, and 1 when the remote call itself fails.
package winrmrun
