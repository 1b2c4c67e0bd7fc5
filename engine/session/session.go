// Package session materializes a bundle's primary visual and audio
// assets plus its uniform timeline into a render session directory that
// the external playback surface consumes.
package session

import (
	"context"
	"os"
	"path/filepath"

	"github.com/kitsune-livewallpaper/scenepipe/engine/assets"
	"github.com/kitsune-livewallpaper/scenepipe/engine/audio"
	"github.com/kitsune-livewallpaper/scenepipe/engine/core"
	"github.com/kitsune-livewallpaper/scenepipe/engine/scene"
	"github.com/kitsune-livewallpaper/scenepipe/engine/texture"
)

// Options controls one Materialize invocation.
type Options struct {
	Config         core.Config
	AudioSeconds   float64
	AudioSource    string
	DisableCapture bool
}

// Result is the filesystem outcome of Materialize.
type Result struct {
	SessionDir   string
	ManifestPath string
	UniformsPath string
	Manifest     Manifest
}

// Dir returns the bundle's render-session cache directory.
func Dir(cfg core.Config, bundleRoot string) string {
	return filepath.Join(core.CacheRoot(cfg), "scene", BundleKey(bundleRoot), "render-session")
}

// Materialize resolves the bundle's primary visual (and, if present,
// audio) asset, extracts them into the session directory, builds the
// uniform timeline, and writes uniforms.json + manifest.json.
func Materialize(ctx context.Context, r *assets.Resolver, g *scene.Graph, opts Options) (*Result, error) {
	sessionDir := Dir(opts.Config, r.Root())
	assetsDir := filepath.Join(sessionDir, "assets")
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		return nil, core.WrapIo("mkdir", assetsDir, err)
	}

	var notes []string

	visualName, ok := ResolvePrimaryVisual(g, r)
	if !ok {
		return nil, core.ErrMissingPrimaryVisual
	}
	visualPath, err := materializeAsset(r, visualName, assetsDir)
	if err != nil {
		return nil, err
	}

	var musicPath string
	if audioName, ok := ResolvePrimaryAudio(r); ok {
		p, err := materializeAsset(r, audioName, assetsDir)
		if err != nil {
			notes = append(notes, "failed to extract primary audio asset: "+err.Error())
		} else {
			musicPath = p
		}
	}

	frameMs := opts.Config.DefaultFrameMs
	if frameMs <= 0 {
		frameMs = 50
	}
	seconds := opts.AudioSeconds
	if seconds <= 0 {
		seconds = 6
	}

	var frames []audio.UniformFrame
	if opts.DisableCapture {
		frames = audio.SilentTimeline(seconds, frameMs)
		notes = append(notes, "audio capture disabled; synthesized silent timeline")
	} else {
		stream, err := audio.StreamLevels(ctx, opts.AudioSource, seconds, frameMs)
		if err != nil {
			frames = audio.SilentTimeline(seconds, frameMs)
			notes = append(notes, "audio capture failed, synthesized silent timeline: "+err.Error())
		} else {
			frames = audio.BuildTimeline(stream.Frames, frameMs)
		}
	}

	uniformsPath := filepath.Join(sessionDir, "uniforms.json")
	if err := writeUniformsFile(uniformsPath, frameMs, frames); err != nil {
		return nil, err
	}

	manifest := Manifest{
		Version:         1,
		RunID:           newRunID(),
		VisualAssetPath: visualPath,
		MusicAssetPath:  musicPath,
		UniformsPath:    uniformsPath,
		FrameCount:      len(frames),
		FrameMs:         frameMs,
		UniformSchema:   defaultUniformSchema,
		Notes:           append(notes, g.Notes...),
	}

	manifestPath := filepath.Join(sessionDir, "manifest.json")
	if err := writeManifestFile(manifestPath, manifest); err != nil {
		return nil, err
	}

	return &Result{
		SessionDir:   sessionDir,
		ManifestPath: manifestPath,
		UniformsPath: uniformsPath,
		Manifest:     manifest,
	}, nil
}

// materializeAsset resolves a logical asset name to bytes, stages it under
// assetsDir, decodes it through the texture pipeline when it is a .tex
// container, and writes the resulting playable proxy under assetsDir.
// It writes its outputs on every call; an existing output is overwritten,
// never reused.
func materializeAsset(r *assets.Resolver, name string, assetsDir string) (string, error) {
	resolved, ok := r.Resolve(name)
	if !ok {
		return "", &core.IoError{Op: "resolve", Path: name, Err: core.ErrMissingReference}
	}

	base := filepath.Base(filepath.FromSlash(name))
	if filepath.Ext(base) != ".tex" {
		outPath := filepath.Join(assetsDir, base)
		if err := os.WriteFile(outPath, resolved.Bytes, 0o644); err != nil {
			return "", core.WrapIo("write", outPath, err)
		}
		return outPath, nil
	}

	stagingPath := filepath.Join(assetsDir, base)
	if err := os.WriteFile(stagingPath, resolved.Bytes, 0o644); err != nil {
		return "", core.WrapIo("write", stagingPath, err)
	}

	result, err := texture.ExtractPlayableProxy(stagingPath, assetsDir)
	if err != nil {
		return "", err
	}
	if result == nil {
		// §7 PayloadUndecodable->None: no known container or plausible raw
		// grid, no embedded media signature either. Fall back to the
		// staged .tex bytes themselves as a (non-playable) preview asset
		// rather than failing the whole session.
		return stagingPath, nil
	}
	return result.Path, nil
}

// Outdated reports whether a previously materialized output is missing
// or older than its source, per the session manager's mtime-based
// staleness check (§4.8). Callers that cache a proxy path between
// invocations can use this to skip re-extraction.
func Outdated(srcPath, outPath string) bool {
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return true
	}
	outInfo, err := os.Stat(outPath)
	if err != nil {
		return true
	}
	return outInfo.ModTime().Before(srcInfo.ModTime())
}
