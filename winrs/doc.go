// Package winrs runs commands in a Windows Remote Shell (WinRS).
//
// A Shell is one cmd.exe shell created over WS-Management; each Run starts
// a command in it and polls Receive until the command reports completion.
//
// Basic usage:
//
//	shell, err := winrs.NewShell(ctx, wsmanClient,
//	    winrs.WithCodepage(65001),
//	)
//	if err != nil {
//	    return err
//	}
//	defer shell.Close(ctx)
//
//	proc, err := shell.Run(ctx, "dir /b C:\\")
//	if err != nil {
//	    return err
//	}
//	fmt.Print(string(proc.Stdout()))
//	os.Exit(proc.ExitCode())
package winrs
