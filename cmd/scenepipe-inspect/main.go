// Command scenepipe-inspect drives the scene compilation pipeline
// end-to-end for a single bundle: resolve assets, build the effect
// graph, classify a native plan, extract layer masks, synthesize a
// composition plan, and materialize a render session on disk.
//
// This is a development/inspection entrypoint, not the product's
// outer CLI (flag parsing stays deliberately small).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kitsune-livewallpaper/scenepipe/engine/assets"
	"github.com/kitsune-livewallpaper/scenepipe/engine/compose"
	"github.com/kitsune-livewallpaper/scenepipe/engine/core"
	"github.com/kitsune-livewallpaper/scenepipe/engine/plan"
	"github.com/kitsune-livewallpaper/scenepipe/engine/scene"
	"github.com/kitsune-livewallpaper/scenepipe/engine/session"
	"github.com/kitsune-livewallpaper/scenepipe/engine/texture"
)

func main() {
	bundlePath := flag.String("bundle", "", "path to a wallpaper bundle directory")
	sceneW := flag.Int("scene-width", 1920, "scene pixel width")
	sceneH := flag.Int("scene-height", 1080, "scene pixel height")
	live := flag.Bool("live", false, "emit a live filter-graph plan instead of a baked proxy")
	audioSeconds := flag.Float64("audio-seconds", 3.0, "seconds of audio to capture for the uniform timeline")
	noCapture := flag.Bool("no-audio-capture", false, "skip PulseAudio capture and emit a silent uniform timeline")
	flag.Parse()

	if *bundlePath == "" {
		fmt.Fprintln(os.Stderr, "usage: scenepipe-inspect -bundle <path> [flags]")
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		cancel()
	}()
	defer cancel()

	if err := run(ctx, *bundlePath, *sceneW, *sceneH, *live, *audioSeconds, *noCapture); err != nil {
		core.LogError("pipeline failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, bundlePath string, sceneW, sceneH int, live bool, audioSeconds float64, noCapture bool) error {
	clock := core.NewClock()
	clock.Start()
	defer func() {
		clock.Update()
		clock.Stop()
		core.LogInfo("pipeline run took %.3fs", clock.Elapsed()/1e9)
	}()

	cfg, err := core.LoadConfig(core.DefaultConfigPath())
	if err != nil {
		return err
	}

	resolver, err := assets.New(bundlePath)
	if err != nil {
		return err
	}

	pre := scene.BuildPreflight(resolver)
	for _, note := range pre.Notes {
		core.LogWarn("%s", note)
	}
	if pre.PrimaryVisualAsset == "" {
		return core.ErrMissingPrimaryVisual
	}

	graph, err := scene.BuildEffectGraph(resolver)
	if err != nil {
		return err
	}
	if graph.SceneWidth == 0 {
		graph.SceneWidth = sceneW
	}
	if graph.SceneHeight == 0 {
		graph.SceneHeight = sceneH
	}

	nativePlan := plan.Build(graph)
	core.LogInfo("classified %d draw layer(s) for %s", len(nativePlan.DrawLayers), bundlePath)

	result, err := session.Materialize(ctx, resolver, graph, session.Options{
		Config:         cfg,
		AudioSeconds:   audioSeconds,
		DisableCapture: noCapture,
	})
	if err != nil {
		return err
	}
	core.LogInfo("session manifest: %s", result.ManifestPath)

	masks, err := extractLayerMasks(resolver, nativePlan, filepath.Join(result.SessionDir, "assets"))
	if err != nil {
		return err
	}

	var comp *compose.Plan
	if live {
		comp = compose.BuildLive(result.Manifest.VisualAssetPath, nativePlan, masks, sceneW, sceneH)
	} else {
		comp = compose.BuildBaked(result.Manifest.VisualAssetPath, nativePlan, masks, sceneW, sceneH, cfg.BakedProxyLayers)
	}

	for _, note := range comp.Notes {
		core.LogWarn("%s", note)
	}
	core.LogInfo("composition flavor: %v, session dir: %s", comp.Flavor, result.SessionDir)
	return nil
}

// extractLayerMasks resolves and decodes every Ready draw layer's
// primary texture into a playable proxy file under outDir, keyed by
// the texture reference the composition stage looks them up by.
func extractLayerMasks(r *assets.Resolver, p *plan.Plan, outDir string) (map[string]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, core.WrapIo("mkdir", outDir, err)
	}

	masks := make(map[string]string)
	for _, layer := range p.DrawLayers {
		if layer.Tier != plan.Ready || !layer.HasTexture {
			continue
		}
		if _, ok := masks[layer.PrimaryTexture]; ok {
			continue
		}
		resolved, ok := r.Resolve(layer.PrimaryTexture)
		if !ok {
			core.LogWarn("skipping layer mask %s: not resolvable", layer.PrimaryTexture)
			continue
		}
		base := filepath.Base(filepath.FromSlash(layer.PrimaryTexture))
		staged := filepath.Join(outDir, base)
		if err := os.WriteFile(staged, resolved.Bytes, 0o644); err != nil {
			return nil, core.WrapIo("write", staged, err)
		}
		if filepath.Ext(base) != ".tex" {
			masks[layer.PrimaryTexture] = staged
			continue
		}
		decoded, err := texture.ExtractPlayableProxy(staged, outDir)
		if err != nil {
			core.LogWarn("skipping layer mask %s: %v", layer.PrimaryTexture, err)
			continue
		}
		if decoded == nil {
			// §7 PayloadUndecodable->None: no usable payload to overlay,
			// drop this layer's mask rather than composite garbage.
			core.LogWarn("skipping layer mask %s: undecodable payload", layer.PrimaryTexture)
			continue
		}
		masks[layer.PrimaryTexture] = decoded.Path
	}
	return masks, nil
}
