package commands

import (
	"fmt"
	"time"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/raoulx24/watchfiles/internal/config"
)

type runFlags struct {
	configPath string

	interval        time.Duration
	maturation      time.Duration
	deleteOnDone    bool
	maxScanFailures int
	schedule        string

	stop    string
	files   int
	elapsed time.Duration
	idle    time.Duration

	exec       string
	execArgv   []string
	timeout    time.Duration
	archiveDir string
	keepLast   int

	logLevel  string
	logFormat string
	logFile   string
}

func (c *CLI) newRunCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run [pattern]",
		Short: "Watch a glob pattern and handle files once they are mature",
		Example: `  watchfiles run '/data/incoming/*.csv' --maturation 30s --exec 'gzip -k {}' --delete
  watchfiles run --config watchfiles.yaml --stop once`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("exec") {
				argv, err := shlex.Split(f.exec)
				if err != nil {
					return fmt.Errorf("parsing --exec: %w", err)
				}
				f.execArgv = argv
			}

			overrides := f.overrides(cmd.Flags())
			if len(args) == 1 {
				pattern := args[0]
				overrides = append(overrides, func(cfg *config.Config) { cfg.Source.Pattern = pattern })
			}

			var (
				cfg *config.Config
				err error
			)
			if f.configPath != "" {
				cfg, err = config.Load(f.configPath, overrides...)
			} else {
				cfg, err = config.Parse(nil, overrides...)
			}
			if err != nil {
				return err
			}
			return c.app.Run(cmd.Context(), cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "YAML config file; flags override its values")
	fl.DurationVar(&f.interval, "interval", 0, "Time between scans")
	fl.DurationVarP(&f.maturation, "maturation", "m", 0, "How long a file must stay unchanged before it is handled")
	fl.BoolVarP(&f.deleteOnDone, "delete", "d", false, "Delete files the handler succeeded on")
	fl.IntVar(&f.maxScanFailures, "max-scan-failures", 0, "Give up after this many consecutive failed scans (0 retries forever)")
	fl.StringVar(&f.schedule, "schedule", "", "Cron spec; every tick starts an independent watch")
	fl.StringVar(&f.stop, "stop", "", "Stop condition: files, elapsed, idle, once or never")
	fl.IntVar(&f.files, "files", 0, "Stop after this many files were handled")
	fl.DurationVar(&f.elapsed, "elapsed", 0, "Stop after watching this long")
	fl.DurationVar(&f.idle, "idle", 0, "Stop when no new file appeared for this long")
	fl.StringVarP(&f.exec, "exec", "x", "", "Command to run per file, split with shell quoting rules; {} is replaced with the path")
	fl.DurationVar(&f.timeout, "timeout", 0, "Kill the command after this long")
	fl.StringVar(&f.archiveDir, "archive-dir", "", "Copy files into this directory under a timestamped name")
	fl.IntVar(&f.keepLast, "keep-last", 0, "Keep only the newest archived files (0 keeps all)")
	fl.StringVar(&f.logLevel, "log-level", "", "Log level: trace, debug, info, warn or error")
	fl.StringVar(&f.logFormat, "log-format", "", "Log format: console, json or text")
	fl.StringVar(&f.logFile, "log-file", "", "Also log to this rotating file")
	cmd.MarkFlagsMutuallyExclusive("exec", "archive-dir")

	return cmd
}

// overrides turns the flags that were set into config overrides. A stop
// threshold without --stop selects the matching mode, and --exec or
// --archive-dir selects the handler.
func (f *runFlags) overrides(fl *pflag.FlagSet) []config.Override {
	var out []config.Override
	set := func(name string, o config.Override) {
		if fl.Changed(name) {
			out = append(out, o)
		}
	}

	set("interval", func(c *config.Config) { c.Watch.PollInterval = f.interval })
	set("maturation", func(c *config.Config) { c.Watch.Maturation = f.maturation })
	set("delete", func(c *config.Config) { c.Watch.DeleteOnCompletion = f.deleteOnDone })
	set("max-scan-failures", func(c *config.Config) { c.Watch.MaxScanFailures = f.maxScanFailures })
	set("schedule", func(c *config.Config) { c.Watch.Schedule = f.schedule })

	set("files", func(c *config.Config) { c.Stop.Mode, c.Stop.Files = "files", f.files })
	set("elapsed", func(c *config.Config) { c.Stop.Mode, c.Stop.Elapsed = "elapsed", f.elapsed })
	set("idle", func(c *config.Config) { c.Stop.Mode, c.Stop.Idle = "idle", f.idle })
	set("stop", func(c *config.Config) { c.Stop.Mode = f.stop })

	set("exec", func(c *config.Config) { c.Handler.Kind, c.Handler.Command = "exec", f.execArgv })
	set("timeout", func(c *config.Config) { c.Handler.Timeout = f.timeout })
	set("archive-dir", func(c *config.Config) { c.Handler.Kind, c.Handler.Archive.Root = "archive", f.archiveDir })
	set("keep-last", func(c *config.Config) { c.Handler.Archive.KeepLast = f.keepLast })

	set("log-level", func(c *config.Config) { c.Logging.Level = f.logLevel })
	set("log-format", func(c *config.Config) { c.Logging.Format = f.logFormat })
	set("log-file", func(c *config.Config) { c.Logging.File = f.logFile })
	return out
}
