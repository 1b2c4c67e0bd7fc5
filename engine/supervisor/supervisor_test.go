package supervisor

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWriteAndReadPidFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "proc.pid")
	require.NoError(t, WritePidFile(path))

	pid, ok := readPidFile(path)
	require.True(t, ok)
	require.Equal(t, os.Getpid(), pid)
}

func TestKillPreviousNoPidFileIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.pid")
	require.NoError(t, KillPrevious(path, 100*time.Millisecond))
}

func TestKillPreviousTerminatesLiveProcess(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	defer func() { _ = cmd.Process.Kill() }()
	// Reap the child once it exits so it does not linger as a zombie,
	// which would still answer the signal-0 liveness probe.
	go func() { _ = cmd.Wait() }()

	path := filepath.Join(t.TempDir(), "sleeper.pid")
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(cmd.Process.Pid)), 0o644))

	require.NoError(t, KillPrevious(path, time.Second))
	require.False(t, processAlive(cmd.Process.Pid))
}

func TestStartReportsFallbackWhenProcessExitsEarly(t *testing.T) {
	_, startedOK, err := Start(context.Background(), "sh", []string{"-c", "exit 1"})
	require.Error(t, err)
	require.False(t, startedOK)
}

func withShortWindows(t *testing.T) {
	t.Helper()
	origWindow, origGrace := StartupObservationWindow, StopGrace
	StartupObservationWindow = 10 * time.Millisecond
	StopGrace = 50 * time.Millisecond
	t.Cleanup(func() {
		StartupObservationWindow = origWindow
		StopGrace = origGrace
	})
}

func TestStartReturnsRunningHandleAfterObservationWindow(t *testing.T) {
	withShortWindows(t)

	handle, startedOK, err := Start(context.Background(), "sleep", []string{"2"})
	require.NoError(t, err)
	require.True(t, startedOK)
	require.NoError(t, handle.Stop())
}

func TestHandleStopEscalatesToKillWhenProcessIgnoresTerm(t *testing.T) {
	withShortWindows(t)

	handle, startedOK, err := Start(context.Background(), "sh", []string{"-c", "trap '' TERM; sleep 5"})
	require.NoError(t, err)
	require.True(t, startedOK)
	require.NoError(t, handle.Stop())
}

func TestStartLiveWritesPidFileAndStopCleansUp(t *testing.T) {
	withShortWindows(t)

	sessionDir := t.TempDir()
	ls, startedOK, err := StartLive(context.Background(), sessionDir, "sleep", []string{"2"})
	require.NoError(t, err)
	require.True(t, startedOK)
	require.FileExists(t, filepath.Join(sessionDir, "transcoder.pid"))
	require.NoError(t, ls.Stop())
}
