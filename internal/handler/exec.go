package handler

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/raoulx24/watchfiles/internal/logging"
)

// Placeholder in a command argument is replaced with the file path.
const Placeholder = "{}"

// maxOutput bounds how much command output ends up in an error message.
const maxOutput = 512

// Exec runs an external command for every file. The command fails the file
// when it exits non-zero or runs past the timeout.
type Exec struct {
	argv    []string
	timeout time.Duration
	log     logging.Logger
}

func NewExec(argv []string, timeout time.Duration, log logging.Logger) *Exec {
	return &Exec{argv: slices.Clone(argv), timeout: timeout, log: log}
}

// Args returns the command line for path. Without a placeholder the path is
// appended as the last argument.
func (e *Exec) Args(path string) []string {
	args := make([]string, 0, len(e.argv)+1)
	replaced := false
	for _, a := range e.argv {
		if strings.Contains(a, Placeholder) {
			a = strings.ReplaceAll(a, Placeholder, path)
			replaced = true
		}
		args = append(args, a)
	}
	if !replaced {
		args = append(args, path)
	}
	return args
}

func (e *Exec) Handle(ctx context.Context, path string) error {
	if len(e.argv) == 0 {
		return fmt.Errorf("no command configured")
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	args := e.Args(path)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	e.log.Debug("running command", "path", path, "args", args)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", args[0], ctx.Err())
		}
		return fmt.Errorf("%s: %w: %s", args[0], err, truncate(out.String()))
	}
	return nil
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxOutput {
		cut := maxOutput
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "..."
	}
	return s
}
