package supervisor

import (
	"context"
	"os/exec"
	"syscall"
	"time"

	"github.com/kitsune-livewallpaper/scenepipe/engine/core"
)

// StartupObservationWindow is how long a freshly spawned transcoder is
// watched before it is trusted to keep running; an exit inside this
// window means the live flavor could not start. A var, not a const, so
// tests can shrink it instead of sleeping for the production value.
var StartupObservationWindow = 1800 * time.Millisecond

// StopGrace is how long Stop waits after SIGTERM before escalating to
// SIGKILL.
var StopGrace = 3 * time.Second

// Handle supervises one spawned child process.
type Handle struct {
	cmd    *exec.Cmd
	exited chan error
}

// Start spawns name with args and observes it for StartupObservationWindow.
// If the process exits (for any reason) inside that window, startedOK is
// false and the caller should fall back to the baked-proxy flavor unless
// strict mode forbids fallback. Otherwise the process is assumed to be
// running steadily and a Handle is returned for later Stop.
func Start(ctx context.Context, name string, args []string) (handle *Handle, startedOK bool, err error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return nil, false, &core.ExternalToolError{Tool: name, Err: err}
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	select {
	case err := <-exited:
		return nil, false, &core.ExternalToolError{Tool: name, Err: err}
	case <-time.After(StartupObservationWindow):
		return &Handle{cmd: cmd, exited: exited}, true, nil
	}
}

// Stop sends SIGTERM and waits StopGrace for the process to exit,
// escalating to SIGKILL if it has not.
func (h *Handle) Stop() error {
	if h.cmd.Process == nil {
		return nil
	}
	_ = h.cmd.Process.Signal(syscall.SIGTERM)

	select {
	case <-h.exited:
		return nil
	case <-time.After(StopGrace):
	}

	_ = h.cmd.Process.Kill()
	<-h.exited
	return nil
}

// Wait blocks until the supervised process exits, returning its error (if
// any) without sending a termination signal.
func (h *Handle) Wait() error {
	return <-h.exited
}
