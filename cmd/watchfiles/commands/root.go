// Package commands implements the watchfiles command line.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/raoulx24/watchfiles/internal/build"
	"github.com/raoulx24/watchfiles/internal/config"
)

// CLI is the watchfiles command tree.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application runs a resolved configuration.
type Application interface {
	Run(ctx context.Context, cfg *config.Config) error
}

// New creates the command tree around a.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "watchfiles",
		Short:         "Process files once they stop changing",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))

	c := &CLI{app: a, rootCmd: rootCmd}
	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newVersionCmd())
	return c
}

// Execute runs the command line with ctx.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs replaces os.Args[1:]. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
