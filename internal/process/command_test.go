package process

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("process tests require a POSIX shell")
	}
}

func drain(t *testing.T, c *Command) ([]string, error) {
	t.Helper()
	var lines []string
	for {
		line, err := c.NextLine(context.Background())
		if err != nil {
			if errors.Is(err, io.EOF) {
				return lines, nil
			}
			return lines, err
		}
		lines = append(lines, line)
	}
}

func TestStdoutBeforeStderr(t *testing.T) {
	skipOnWindows(t)

	c, err := Start(Options{
		Command: "echo err1 >&2; echo out1; echo err2 >&2; echo out2",
		Timeout: 10 * time.Second,
	})
	require.NoError(t, err)
	defer c.Close()

	lines, err := drain(t, c)
	require.NoError(t, err)
	assert.Equal(t, []string{"out1", "out2", "err1", "err2"}, lines)
	assert.Equal(t, 0, c.ExitCode())
}

func TestEnvironmentAndDirectory(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	c, err := Start(Options{
		Command: `echo "$GREETING"; pwd`,
		Env:     append(os.Environ(), "GREETING=hello"),
		Dir:     dir,
	})
	require.NoError(t, err)
	defer c.Close()

	lines, err := drain(t, c)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "hello", lines[0])

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(lines[1], filepath.Base(resolved)), "pwd %q not in %q", lines[1], dir)
}

func TestPartialFinalLineAndCRLF(t *testing.T) {
	skipOnWindows(t)

	c, err := Start(Options{Command: `printf 'a\r\n\nlast'`})
	require.NoError(t, err)
	defer c.Close()

	lines, err := drain(t, c)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", "last"}, lines)
}

func TestTimeoutKillsProcess(t *testing.T) {
	skipOnWindows(t)

	c, err := Start(Options{
		Command: "echo first; sleep 30; echo never",
		Timeout: 300 * time.Millisecond,
	})
	require.NoError(t, err)
	defer c.Close()

	line, err := c.NextLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", line)

	start := time.Now()
	_, err = c.NextLine(context.Background())
	require.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 10*time.Second)

	_, err = c.NextLine(context.Background())
	assert.ErrorIs(t, err, ErrTimeout, "budget stays exhausted")
}

func TestDeadlineSharedAcrossReads(t *testing.T) {
	skipOnWindows(t)

	c, err := Start(Options{
		Command: "echo a; sleep 0.3; echo b; sleep 0.3; echo c; sleep 0.3; echo d",
		Timeout: 700 * time.Millisecond,
	})
	require.NoError(t, err)
	defer c.Close()

	lines, err := drain(t, c)
	require.ErrorIs(t, err, ErrTimeout)
	assert.NotContains(t, lines, "d")
	assert.Contains(t, lines, "a")
}

func TestExpiredClockTimesOutImmediately(t *testing.T) {
	skipOnWindows(t)

	now := time.Now()
	clock := func() time.Time { return now }
	c, err := Start(Options{Command: "sleep 5", Timeout: time.Second, Now: clock})
	require.NoError(t, err)
	defer c.Close()

	now = now.Add(2 * time.Second)
	_, err = c.NextLine(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestBufferedLineDeliveredAfterDeadline(t *testing.T) {
	skipOnWindows(t)

	now := time.Now()
	clock := func() time.Time { return now }
	c, err := Start(Options{Command: "echo a; echo b; sleep 5", Timeout: time.Second, Now: clock})
	require.NoError(t, err)
	defer c.Close()

	line, err := c.NextLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", line)

	require.Eventually(t, func() bool { return len(c.lines) > 0 }, 2*time.Second, 10*time.Millisecond)
	now = now.Add(2 * time.Second)

	line, err = c.NextLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", line)

	_, err = c.NextLine(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestCloseBeforeDrain(t *testing.T) {
	skipOnWindows(t)

	c, err := Start(Options{Command: "yes weave | head -n 100000; sleep 30"})
	require.NoError(t, err)

	line, err := c.NextLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "weave", line)

	done := make(chan struct{})
	go func() {
		_ = c.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Close did not release the process")
	}
	require.NoError(t, c.Close())
}

func TestContextCancel(t *testing.T) {
	skipOnWindows(t)

	c, err := Start(Options{Command: "sleep 30"})
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = c.NextLine(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSpawnError(t *testing.T) {
	skipOnWindows(t)

	_, err := Start(Options{Command: "echo hi", Dir: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)

	var spawnErr *SpawnError
	require.ErrorAs(t, err, &spawnErr)
	assert.Equal(t, "echo hi", spawnErr.Command)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestLargeStderrDoesNotStall(t *testing.T) {
	skipOnWindows(t)

	c, err := Start(Options{
		Command: "i=0; while [ $i -lt 20000 ]; do echo noise-$i >&2; i=$((i+1)); done; echo done",
		Timeout: 20 * time.Second,
	})
	require.NoError(t, err)
	defer c.Close()

	lines, err := drain(t, c)
	require.NoError(t, err)
	require.Len(t, lines, 20001)
	assert.Equal(t, "done", lines[0])
	assert.Equal(t, "noise-0", lines[1])
}
