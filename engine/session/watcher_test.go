package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTextOverlayWatcherRendersOnWrite(t *testing.T) {
	dir := t.TempDir()
	rendered := make(chan string, 4)

	w, err := NewTextOverlayWatcher(dir, func(path string) error {
		rendered <- path
		return nil
	})
	require.NoError(t, err)
	defer w.Close()

	go w.Run()

	target := filepath.Join(dir, "clock.txt")
	require.NoError(t, os.WriteFile(target, []byte("12:00"), 0o644))

	select {
	case got := <-rendered:
		require.Equal(t, target, got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for overlay render callback")
	}
}
