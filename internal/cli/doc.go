// Package cli implements the winrm-run command line: flag and environment
// resolution, the executor call and output relay.
package cli
