package session

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/kitsune-livewallpaper/scenepipe/engine/containers"
	"github.com/kitsune-livewallpaper/scenepipe/engine/core"
)

// TextOverlayWatcher watches a session's text-layers directory (not its
// subdirectories) and calls render with the path of each file created or
// written there, the long-lived background worker referenced by the scheduling
// model's "periodically refreshes dynamic text overlay files". The
// fsnotify receive loop only pushes paths into a bounded queue; a
// separate worker goroutine drains it and calls render, so a slow render
// never stalls event delivery.
type TextOverlayWatcher struct {
	dir     string
	watcher *fsnotify.Watcher
	render  func(path string) error
	pending *containers.BlockingRingQueue[string]
	done    chan struct{}
}

// NewTextOverlayWatcher opens a watch on dir (created if missing). Call
// Run on its own goroutine to start draining events into render.
func NewTextOverlayWatcher(dir string, render func(path string) error) (*TextOverlayWatcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, core.WrapIo("mkdir", dir, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, core.WrapIo("fsnotify.NewWatcher", dir, err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, core.WrapIo("watch", dir, err)
	}

	tw := &TextOverlayWatcher{
		dir:     dir,
		watcher: w,
		render:  render,
		pending: containers.NewBlockingRingQueue[string](32),
		done:    make(chan struct{}),
	}
	return tw, nil
}

// Run processes fsnotify events until Close is called. Intended to be run
// on its own goroutine; it blocks the caller otherwise.
func (w *TextOverlayWatcher) Run() {
	go w.drain()
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				w.pending.Close()
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.pending.Push(ev.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				w.pending.Close()
				return
			}
			core.LogError("text overlay watcher error", "err", err)
		case <-w.done:
			w.pending.Close()
			return
		}
	}
}

func (w *TextOverlayWatcher) drain() {
	for {
		path, ok := w.pending.Pop()
		if !ok {
			return
		}
		if err := w.render(path); err != nil {
			core.LogError("text overlay render failed", "path", path, "err", err)
		}
	}
}

// Close stops Run and releases the underlying watch.
func (w *TextOverlayWatcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

// TextLayersDir returns the session's text-layers cache subdirectory.
func TextLayersDir(cfg core.Config, bundleRoot string) string {
	return filepath.Join(core.CacheRoot(cfg), "scene", BundleKey(bundleRoot), "text-layers")
}
