// Package wsman implements the subset of WS-Management needed to run a
// command in a Windows Remote Shell (WinRS) over a WinRM endpoint.
//
// It builds SOAP 1.2 envelopes with WS-Addressing and WS-Management
// headers, posts them through a [transport.HTTPTransport], and parses
// replies and SOAP faults.
//
// # Subpackages
//
//   - auth: Basic, NTLM and Negotiate/Kerberos authenticators
//   - transport: HTTP/HTTPS transport
//
// # Operations
//
//   - Create: open a cmd shell
//   - Command: start a command in the shell
//   - Receive: poll stdout/stderr and the command state
//   - Signal: terminate a command
//   - Delete: close the shell
package wsman
