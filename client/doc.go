// Package client runs one command on a Windows host over WinRM.
//
// New is the capability probe: it validates the configuration, picks the
// authenticator and returns an error wrapping ErrUnavailable when the
// requested transport cannot be used on this machine.
//
// # Quick Start
//
//	cfg := client.DefaultConfig()
//	cfg.Username = "administrator"
//	cfg.Password = "password"
//	cfg.AuthType = client.AuthNTLM
//
//	c, err := client.New("server", cfg)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	result, err := c.RunCmd(ctx, "ipconfig /all")
//	if err != nil {
//	    return err
//	}
//	os.Stdout.Write(result.Stdout)
//	os.Exit(result.ExitCode)
//
// RunPS runs a PowerShell script the same way, through
// powershell.exe -EncodedCommand, and converts a CLIXML error stream on
// stderr into plain text.
package client
