package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kitsune-livewallpaper/scenepipe/engine/core"
)

// LiveSession reaps any previous live-transcoder instance recorded for
// this session directory, then starts a new one, guarding re-entrancy via
// a PID file under sessionDir.
type LiveSession struct {
	pidFile string
	handle  *Handle
}

// StartLive terminates a previous instance (if its PID file is still
// live), starts the transcoder, and records the child's PID. startedOK is
// false when the process exited inside the startup observation window,
// signaling the caller to fall back to the baked-proxy flavor.
func StartLive(ctx context.Context, sessionDir, name string, args []string) (*LiveSession, bool, error) {
	pidFile := filepath.Join(sessionDir, "transcoder.pid")

	if err := KillPrevious(pidFile, StopGrace); err != nil {
		return nil, false, err
	}

	handle, startedOK, err := Start(ctx, name, args)
	if err != nil || !startedOK {
		return nil, false, err
	}

	err = os.MkdirAll(sessionDir, 0o755)
	if err == nil {
		err = os.WriteFile(pidFile, []byte(strconv.Itoa(handle.cmd.Process.Pid)), 0o644)
	}
	if err != nil {
		_ = handle.Stop()
		return nil, false, core.WrapIo("write", pidFile, err)
	}

	return &LiveSession{pidFile: pidFile, handle: handle}, true, nil
}

// Stop terminates the supervised transcoder.
func (s *LiveSession) Stop() error {
	return s.handle.Stop()
}
