package scene

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kitsune-livewallpaper/scenepipe/engine/assets"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, b, 0o644))
}

// buildBasicBundle writes a 2-pass base material and a 1-pass effect
// material onto one visible object, matching the node count invariant.
func buildBasicBundle(t *testing.T) string {
	root := t.TempDir()

	scene := map[string]interface{}{
		"general": map[string]interface{}{
			"orthogonalprojection": map[string]interface{}{"width": 1920, "height": 1080},
		},
		"objects": []interface{}{
			map[string]interface{}{
				"id":      1,
				"name":    "backdrop",
				"image":   "mat1.json",
				"origin":  "960 540 0",
				"visible": true,
				"effects": []interface{}{
					map[string]interface{}{
						"file":    "effects/glow/effect.json",
						"name":    "glow",
						"visible": true,
						"passes": []interface{}{
							map[string]interface{}{
								"material": "effectMat.json",
								"passes": []interface{}{
									map[string]interface{}{
										"constantshadervalues": map[string]interface{}{"alpha": 0.5},
									},
								},
							},
						},
					},
				},
			},
		},
	}
	writeJSON(t, filepath.Join(root, "scene.json"), scene)

	mat1 := map[string]interface{}{
		"passes": []interface{}{
			map[string]interface{}{"shader": "genericimage"},
			map[string]interface{}{"shader": "genericimage"},
		},
	}
	writeJSON(t, filepath.Join(root, "materials", "mat1.json"), mat1)

	effectMat := map[string]interface{}{
		"passes": []interface{}{
			map[string]interface{}{"shader": "effects/glow"},
		},
	}
	writeJSON(t, filepath.Join(root, "materials", "effectMat.json"), effectMat)

	return root
}

func TestBuildEffectGraphNodeCountInvariant(t *testing.T) {
	root := buildBasicBundle(t)
	r, err := assets.New(root)
	require.NoError(t, err)

	g, err := BuildEffectGraph(r)
	require.NoError(t, err)
	require.Equal(t, 1920, g.SceneWidth)
	require.Equal(t, 1080, g.SceneHeight)

	// base_material_passes(2) + effect_material_passes(1) == 3
	require.Len(t, g.EffectNodes, 3)

	basePasses := 0
	effectPasses := 0
	for _, n := range g.EffectNodes {
		if n.IsBasePass {
			basePasses++
		} else {
			effectPasses++
		}
	}
	require.Equal(t, 2, basePasses)
	require.Equal(t, 1, effectPasses)
}

func TestBuildEffectGraphDeterministicPassIndex(t *testing.T) {
	root := buildBasicBundle(t)
	r, err := assets.New(root)
	require.NoError(t, err)

	g, err := BuildEffectGraph(r)
	require.NoError(t, err)
	for i, n := range g.EffectNodes {
		require.Equal(t, i, n.Pass.PassIndex)
	}
}

func TestBuildEffectGraphSkipsInvisibleEffects(t *testing.T) {
	root := t.TempDir()
	scene := map[string]interface{}{
		"objects": []interface{}{
			map[string]interface{}{
				"id":    1,
				"image": "mat1.json",
				"effects": []interface{}{
					map[string]interface{}{
						"file":    "effects/hidden/effect.json",
						"name":    "hidden",
						"visible": false,
						"passes": []interface{}{
							map[string]interface{}{"material": "effectMat.json"},
						},
					},
				},
			},
		},
	}
	writeJSON(t, filepath.Join(root, "scene.json"), scene)
	writeJSON(t, filepath.Join(root, "materials", "mat1.json"), map[string]interface{}{
		"passes": []interface{}{map[string]interface{}{"shader": "genericimage"}},
	})
	writeJSON(t, filepath.Join(root, "materials", "effectMat.json"), map[string]interface{}{
		"passes": []interface{}{map[string]interface{}{"shader": "effects/hidden"}},
	})

	r, err := assets.New(root)
	require.NoError(t, err)
	g, err := BuildEffectGraph(r)
	require.NoError(t, err)
	require.Len(t, g.EffectNodes, 1)
	require.True(t, g.EffectNodes[0].IsBasePass)
}

func TestBuildEffectGraphMissingMaterialProducesNote(t *testing.T) {
	root := t.TempDir()
	scene := map[string]interface{}{
		"objects": []interface{}{
			map[string]interface{}{"id": 1, "image": "doesnotexist.json"},
		},
	}
	writeJSON(t, filepath.Join(root, "scene.json"), scene)

	r, err := assets.New(root)
	require.NoError(t, err)
	g, err := BuildEffectGraph(r)
	require.NoError(t, err)
	require.Empty(t, g.EffectNodes)
	require.NotEmpty(t, g.Notes)
}

func TestBuildEffectGraphCollectsUserPropertyBinding(t *testing.T) {
	root := t.TempDir()
	scene := map[string]interface{}{
		"objects": []interface{}{
			map[string]interface{}{
				"id":    1,
				"image": "mat1.json",
				"user": map[string]interface{}{
					"glow": map[string]interface{}{"user": "glow", "value": 2.0},
				},
			},
		},
	}
	writeJSON(t, filepath.Join(root, "scene.json"), scene)
	writeJSON(t, filepath.Join(root, "materials", "mat1.json"), map[string]interface{}{
		"passes": []interface{}{map[string]interface{}{"shader": "genericimage"}},
	})

	r, err := assets.New(root)
	require.NoError(t, err)
	g, err := BuildEffectGraph(r)
	require.NoError(t, err)
	v, ok := g.UserProperties["glow"]
	require.True(t, ok)
	f, ok := v.AsFloat64()
	require.True(t, ok)
	require.Equal(t, 2.0, f)
}
