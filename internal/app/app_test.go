package app_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/watchfiles/internal/app"
	"github.com/raoulx24/watchfiles/internal/config"
	"github.com/raoulx24/watchfiles/internal/fs/memfs"
	"github.com/raoulx24/watchfiles/internal/logging"
	"github.com/raoulx24/watchfiles/internal/watcher"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Source.Pattern = "/in/*.csv"
	cfg.Watch.PollInterval = 500 * time.Millisecond
	cfg.Watch.Maturation = time.Second
	cfg.Watch.DeleteOnCompletion = true
	return &cfg
}

func TestRun_DispatchesAndDeletes(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		mfs := memfs.New()
		mfs.Write("/in/a.csv", "a,b")

		cfg := testConfig()
		cfg.Stop = config.StopConfig{Mode: "files", Files: 1}

		var buf bytes.Buffer
		a := app.New(mfs).WithLogger(logging.NewWithWriter(&buf, zerolog.DebugLevel))

		require.NoError(t, a.Run(context.Background(), cfg))
		assert.False(t, mfs.Exists("/in/a.csv"))
		assert.Contains(t, buf.String(), "watch finished")
		assert.Contains(t, buf.String(), `"dispatched":1`)
	})
}

func TestRun_FailedOutcomeIsAnError(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		mfs := memfs.New()
		mfs.Write("/in/a.csv", "a,b")
		mfs.FailRemove("/in/a.csv", errors.New("read-only"))

		cfg := testConfig()
		cfg.Stop = config.StopConfig{Mode: "files", Files: 1}

		err := app.New(mfs).WithLogger(logging.Nop()).Run(context.Background(), cfg)
		require.ErrorIs(t, err, app.ErrFilesFailed)
		assert.True(t, mfs.Exists("/in/a.csv"))
	})
}

func TestRun_CancellationIsNotAnError(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		mfs := memfs.New()
		cfg := testConfig()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		start := time.Now()
		require.NoError(t, app.New(mfs).WithLogger(logging.Nop()).Run(ctx, cfg))
		assert.Equal(t, 3*time.Second, time.Since(start))
	})
}

func TestRun_ScanUnavailable(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		mfs := memfs.New()
		mfs.FailGlob(errors.New("stale NFS handle"))

		cfg := testConfig()
		cfg.Watch.MaxScanFailures = 2

		err := app.New(mfs).WithLogger(logging.Nop()).Run(context.Background(), cfg)
		assert.ErrorIs(t, err, watcher.ErrScanUnavailable)
	})
}

func TestRun_Scheduled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		mfs := memfs.New()
		mfs.Write("/in/a.csv", "a,b")

		cfg := testConfig()
		cfg.Watch.Maturation = 0
		cfg.Watch.Schedule = "@every 2s"
		cfg.Stop = config.StopConfig{Mode: "elapsed", Elapsed: time.Second}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var buf bytes.Buffer
		a := app.New(mfs).WithLogger(logging.NewWithWriter(&buf, zerolog.InfoLevel))

		require.NoError(t, a.Run(ctx, cfg))
		assert.False(t, mfs.Exists("/in/a.csv"))
		assert.Equal(t, []string{"/in/a.csv"}, mfs.Removed())
		assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("watch finished")))
	})
}

func TestRun_BadSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Watch.Schedule = "every tuesday"

	err := app.New(memfs.New()).WithLogger(logging.Nop()).Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing schedule")
}

func TestRun_UnknownHandler(t *testing.T) {
	cfg := testConfig()
	cfg.Handler.Kind = "ftp"

	assert.Error(t, app.New(memfs.New()).WithLogger(logging.Nop()).Run(context.Background(), cfg))
}

func TestStopCondition(t *testing.T) {
	tests := []struct {
		cfg     config.StopConfig
		want    string
		wantErr bool
	}{
		{cfg: config.StopConfig{Mode: "files", Files: 3}, want: watcher.FilesFound(3).String()},
		{cfg: config.StopConfig{Mode: "elapsed", Elapsed: time.Minute}, want: watcher.ElapsedTime(time.Minute).String()},
		{cfg: config.StopConfig{Mode: "idle", Idle: time.Minute}, want: watcher.NoNewFilesSince(time.Minute).String()},
		{cfg: config.StopConfig{Mode: "once"}, want: "once"},
		{cfg: config.StopConfig{Mode: "never"}, want: "never"},
		{cfg: config.StopConfig{}, want: "never"},
		{cfg: config.StopConfig{Mode: "forever"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.cfg.Mode, func(t *testing.T) {
			cond, err := app.StopCondition(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cond.String())
		})
	}
}
