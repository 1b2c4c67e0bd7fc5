package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kitsune-livewallpaper/scenepipe/engine/assets"
	"github.com/stretchr/testify/require"
)

func TestBuildPreflightPicksLargestTextureAndDetectsReactiveHints(t *testing.T) {
	root := t.TempDir()
	writeJSON(t, filepath.Join(root, "scene.json"), map[string]interface{}{
		"general": map[string]interface{}{
			"supportsaudioprocessing": true,
		},
		"effects": []interface{}{
			map[string]interface{}{"visualizer": map[string]interface{}{"fft": true}},
		},
	})
	require.NoError(t, os.WriteFile(filepath.Join(root, "small.tex"), make([]byte, 10), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.tex"), make([]byte, 500), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "theme.mp3"), make([]byte, 200), 0o644))

	r, err := assets.New(root)
	require.NoError(t, err)

	p := BuildPreflight(r)
	require.Equal(t, "big.tex", p.PrimaryVisualAsset)
	require.Equal(t, "theme.mp3", p.PrimaryMusicAsset)
	require.True(t, p.SceneManifestParsed)
	require.True(t, p.LikelyAudioReactive)
	require.NotEmpty(t, p.ReactiveHints)
}

func TestBuildPreflightNotesMissingAssets(t *testing.T) {
	root := t.TempDir()
	r, err := assets.New(root)
	require.NoError(t, err)

	p := BuildPreflight(r)
	require.Empty(t, p.PrimaryVisualAsset)
	require.Empty(t, p.PrimaryMusicAsset)
	require.False(t, p.SceneManifestParsed)
	require.Contains(t, p.Notes, "scene.json not found in bundle")
	require.Contains(t, p.Notes, "no texture/image asset candidate found")
	require.Contains(t, p.Notes, "no audio asset candidate found")
}
