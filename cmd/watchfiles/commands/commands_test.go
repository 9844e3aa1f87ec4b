package commands_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/watchfiles/cmd/watchfiles/commands"
	"github.com/raoulx24/watchfiles/internal/build"
	"github.com/raoulx24/watchfiles/internal/config"
)

type mockApp struct {
	runFunc func(ctx context.Context, cfg *config.Config) error
}

func (m *mockApp) Run(ctx context.Context, cfg *config.Config) error {
	if m.runFunc != nil {
		return m.runFunc(ctx, cfg)
	}
	return nil
}

func capture(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()

	var got *config.Config
	cli := commands.New(&mockApp{runFunc: func(_ context.Context, cfg *config.Config) error {
		got = cfg
		return nil
	}})
	cli.SetArgs(args)
	cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
	return got, cli.Execute(context.Background())
}

func TestCommands_Run(t *testing.T) {
	t.Run("flags override defaults", func(t *testing.T) {
		cfg, err := capture(t, "run", "/in/*.csv",
			"--maturation", "30s", "--interval", "2s", "--delete",
			"--exec", "gzip -k {}", "--timeout", "1m", "--files", "10")
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "/in/*.csv", cfg.Source.Pattern)
		assert.Equal(t, 30*time.Second, cfg.Watch.Maturation)
		assert.Equal(t, 2*time.Second, cfg.Watch.PollInterval)
		assert.True(t, cfg.Watch.DeleteOnCompletion)
		assert.Equal(t, "exec", cfg.Handler.Kind)
		assert.Equal(t, []string{"gzip", "-k", "{}"}, cfg.Handler.Command)
		assert.Equal(t, time.Minute, cfg.Handler.Timeout)
		assert.Equal(t, config.StopConfig{Mode: "files", Files: 10}, cfg.Stop)
	})

	t.Run("exec keeps quoted arguments together", func(t *testing.T) {
		cfg, err := capture(t, "run", "/in/*", "--exec", `sh -c "gzip -k {} && mv {}.gz /out"`)
		require.NoError(t, err)
		assert.Equal(t, []string{"sh", "-c", "gzip -k {} && mv {}.gz /out"}, cfg.Handler.Command)
	})

	t.Run("exec with unterminated quote", func(t *testing.T) {
		_, err := capture(t, "run", "/in/*", "--exec", `sh -c "oops`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing --exec")
	})

	t.Run("defaults without flags", func(t *testing.T) {
		cfg, err := capture(t, "run", "/in/*")
		require.NoError(t, err)
		assert.Equal(t, time.Second, cfg.Watch.PollInterval)
		assert.Equal(t, 5*time.Second, cfg.Watch.Maturation)
		assert.Equal(t, "never", cfg.Stop.Mode)
		assert.Equal(t, "log", cfg.Handler.Kind)
	})

	t.Run("flags override the config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "watchfiles.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
source:
  pattern: /from/file/*
watch:
  maturation: 1m
handler:
  kind: archive
  archive:
    root: /archive
`), 0o644))

		cfg, err := capture(t, "run", "--config", path, "--maturation", "10s", "--keep-last", "5", "--stop", "once")
		require.NoError(t, err)
		assert.Equal(t, "/from/file/*", cfg.Source.Pattern)
		assert.Equal(t, 10*time.Second, cfg.Watch.Maturation)
		assert.Equal(t, "archive", cfg.Handler.Kind)
		assert.Equal(t, "/archive", cfg.Handler.Archive.Root)
		assert.Equal(t, 5, cfg.Handler.Archive.KeepLast)
		assert.Equal(t, "once", cfg.Stop.Mode)
	})

	t.Run("missing pattern is invalid", func(t *testing.T) {
		_, err := capture(t, "run")
		require.ErrorIs(t, err, config.ErrConfigInvalid)
	})

	t.Run("exec and archive are exclusive", func(t *testing.T) {
		_, err := capture(t, "run", "/in/*", "--exec", "true", "--archive-dir", "/archive")
		require.Error(t, err)
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		cli := commands.New(&mockApp{runFunc: func(context.Context, *config.Config) error {
			return errors.New("simulated error")
		}})
		cli.SetArgs([]string{"run", "/in/*"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Version(t *testing.T) {
	cli := commands.New(&mockApp{})

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, buf.String(), build.Version)
}
