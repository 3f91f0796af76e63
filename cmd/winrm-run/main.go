// Command winrm-run runs one command on a Windows host over WinRM and exits
// with the remote exit code.
//
// Usage:
//
//	export WINRM_PASS='secret'
//	winrm-run --host server --user administrator -- ipconfig /all
//	winrm-run --ssl --port 5986 --ps --host server --user administrator -- Get-Service
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/smnsjas/winrm-run/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Interrupting cancels the running command so the remote shell is
	// still deleted.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := cli.Run(ctx, os.Args[1:], cli.Deps{
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	})

	stop()
	os.Exit(code)
}
