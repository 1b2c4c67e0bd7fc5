// Package supervisor manages the lifecycle of the child processes the
// pipeline spawns, such as the live transcoder. The audio-capture helper
// is spawned by engine/audio directly and is not managed here.
package supervisor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/kitsune-livewallpaper/scenepipe/engine/core"
)

// WritePidFile records the current process's PID at path, creating parent
// directories as needed.
func WritePidFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return core.WrapIo("mkdir", path, err)
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return core.WrapIo("write", path, err)
	}
	return nil
}

func readPidFile(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// KillPrevious reads the PID recorded at path, if any, and terminates it:
// SIGTERM, a brief grace period, then SIGKILL if it is still alive. A
// missing or unparseable PID file is not an error — there is simply no
// previous instance to reap.
func KillPrevious(path string, grace time.Duration) error {
	pid, ok := readPidFile(path)
	if !ok {
		return nil
	}
	if !processAlive(pid) {
		return nil
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return nil
	}

	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	if processAlive(pid) {
		if err := proc.Signal(syscall.SIGKILL); err != nil {
			return fmt.Errorf("kill previous instance (pid %d): %w", pid, err)
		}
	}
	return nil
}
