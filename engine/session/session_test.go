package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kitsune-livewallpaper/scenepipe/engine/assets"
	"github.com/kitsune-livewallpaper/scenepipe/engine/core"
	"github.com/kitsune-livewallpaper/scenepipe/engine/scene"
	"github.com/stretchr/testify/require"
)

func TestBundleKeyUsesWorkshopIDWhenNumeric(t *testing.T) {
	require.Equal(t, "123456789", BundleKey("/home/user/.steam/workshop/content/431960/123456789"))
}

func TestBundleKeySanitizesNonNumericDirName(t *testing.T) {
	require.Equal(t, "my_cool_scene", BundleKey("/home/user/scenes/my cool scene"))
}

func TestResolvePrimaryVisualFallsBackToLargestImageCandidate(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "small.png"), make([]byte, 10), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.png"), make([]byte, 1000), 0o644))

	r, err := assets.New(root)
	require.NoError(t, err)

	name, ok := ResolvePrimaryVisual(&scene.Graph{}, r)
	require.True(t, ok)
	require.Equal(t, "big.png", name)
}

func TestResolvePrimaryVisualPrefersGraphTexture(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "decoy.png"), make([]byte, 5000), 0o644))

	r, err := assets.New(root)
	require.NoError(t, err)

	g := &scene.Graph{
		EffectNodes: []scene.EffectNode{
			{Pass: scene.Pass{Textures: []string{"chosen.tex"}}},
		},
	}
	name, ok := ResolvePrimaryVisual(g, r)
	require.True(t, ok)
	require.Equal(t, "chosen.tex", name)
}

func TestMaterializeWritesManifestAndUniforms(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "background.png"), []byte("fake png bytes"), 0o644))

	r, err := assets.New(root)
	require.NoError(t, err)

	cfg := core.Config{CacheRootOverride: t.TempDir(), DefaultFrameMs: 50}
	g := &scene.Graph{Notes: []string{"resolved via fallback"}}

	result, err := Materialize(context.Background(), r, g, Options{
		Config:         cfg,
		AudioSeconds:   0.5,
		DisableCapture: true,
	})
	require.NoError(t, err)
	require.FileExists(t, result.ManifestPath)
	require.FileExists(t, result.UniformsPath)

	var m Manifest
	data, err := os.ReadFile(result.ManifestPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &m))
	require.Equal(t, 1, m.Version)
	require.NotEmpty(t, m.RunID)
	require.Equal(t, "u_audio_beat", m.UniformSchema.Beat)
	require.Equal(t, 10, m.FrameCount) // ceil(500/50)
	require.Contains(t, m.Notes, "resolved via fallback")
	require.FileExists(t, m.VisualAssetPath)
}

func TestOutdatedComparesModTimes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.tex")
	out := filepath.Join(dir, "proxy.png")
	require.NoError(t, os.WriteFile(src, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(out, []byte("b"), 0o644))

	require.False(t, Outdated(src, out))

	newer := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(src, newer, newer))
	require.True(t, Outdated(src, out))

	require.True(t, Outdated(src, filepath.Join(dir, "missing.png")))
}

func TestMaterializeMissingPrimaryVisualReturnsSentinel(t *testing.T) {
	root := t.TempDir()
	r, err := assets.New(root)
	require.NoError(t, err)

	cfg := core.Config{CacheRootOverride: t.TempDir(), DefaultFrameMs: 50}
	_, err = Materialize(context.Background(), r, &scene.Graph{}, Options{Config: cfg, DisableCapture: true})
	require.ErrorIs(t, err, core.ErrMissingPrimaryVisual)
}
