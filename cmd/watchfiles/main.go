// Command watchfiles polls a glob pattern and hands every file to a handler
// once it has stopped changing.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/raoulx24/watchfiles/cmd/watchfiles/commands"
	"github.com/raoulx24/watchfiles/internal/app"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, app.New(nil)))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, a commands.Application) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli := commands.New(a)
	cli.SetArgs(args)
	cli.SetOutput(stdout, stderr)

	if err := cli.Execute(ctx); err != nil {
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	return 0
}
