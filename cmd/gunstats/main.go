// Command gunstats analyses NICS firearm background checks per state and year.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd, a := newRootCommand(os.Stdout, os.Stderr)
	err := rootCmd.ExecuteContext(ctx)
	if terr := a.teardown(ctx); terr != nil {
		fmt.Fprintln(os.Stderr, "Error:", terr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
