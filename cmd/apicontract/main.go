// apicontract runs API contract suites against ServeRest and
// JSONPlaceholder, live or against in-process twins.
//
// Usage:
//
//	apicontract run [suite...]          Run suites (all by default)
//	apicontract list                    List suites and their cases
//	apicontract twin <name>             Serve a twin until interrupted
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leicam1995/teste-api-ebac/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.ExitCode(err))
}
