package retention_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/watchfiles/internal/fs/memfs"
	"github.com/raoulx24/watchfiles/internal/logging"
	"github.com/raoulx24/watchfiles/internal/retention"
)

func TestNameRoundTrip(t *testing.T) {
	mod := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	name := retention.Name(mod, "report.csv")
	assert.Equal(t, "2026-03-04T05-06-07-report.csv", name)

	ts, ok := retention.ParseName(name)
	require.True(t, ok)
	assert.True(t, mod.Equal(ts))
}

func TestParseName_Rejects(t *testing.T) {
	for _, name := range []string{"report.csv", ".tmp-2026-03-04T05-06-07-a", "2026-03-04T05-06-07", "2026-13-04T05-06-07-a", "2026-03-04T05-06-07_a"} {
		_, ok := retention.ParseName(name)
		assert.False(t, ok, name)
	}
}

func TestEngine_Apply(t *testing.T) {
	mfs := memfs.New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 5 {
		mfs.Write("/archive/"+retention.Name(base.Add(time.Duration(i)*time.Hour), "f.csv"), "x")
	}
	mfs.Write("/archive/notes.txt", "keep me")

	err := retention.New(2, mfs, logging.Nop()).Apply(context.Background(), "/archive")
	require.NoError(t, err)

	left, err := mfs.Glob("/archive/*")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/archive/2026-01-01T03-00-00-f.csv",
		"/archive/2026-01-01T04-00-00-f.csv",
		"/archive/notes.txt",
	}, left)
}

func TestEngine_KeepZeroIsNoop(t *testing.T) {
	mfs := memfs.New()
	mfs.Write("/archive/"+retention.Name(time.Now(), "a"), "x")
	mfs.FailGlob(assert.AnError)

	assert.NoError(t, retention.New(0, mfs, logging.Nop()).Apply(context.Background(), "/archive"))
}

func TestEngine_GlobError(t *testing.T) {
	mfs := memfs.New()
	mfs.FailGlob(assert.AnError)

	err := retention.New(1, mfs, logging.Nop()).Apply(context.Background(), "/archive")
	assert.ErrorIs(t, err, assert.AnError)
}
