package scene

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeepMergeRecursesObjects(t *testing.T) {
	base := map[string]interface{}{
		"a": float64(1),
		"b": map[string]interface{}{"x": float64(1), "y": float64(2)},
	}
	override := map[string]interface{}{
		"b": map[string]interface{}{"y": float64(9)},
		"c": "new",
	}
	got := deepMerge(base, override).(map[string]interface{})
	require.Equal(t, float64(1), got["a"])
	require.Equal(t, "new", got["c"])
	inner := got["b"].(map[string]interface{})
	require.Equal(t, float64(1), inner["x"])
	require.Equal(t, float64(9), inner["y"])
}

func TestDeepMergeNullPreservesBase(t *testing.T) {
	base := map[string]interface{}{"a": float64(1)}
	got := deepMerge(base, nil)
	require.Equal(t, base, got)
}

func TestDeepMergeShapeMismatchReplaces(t *testing.T) {
	base := map[string]interface{}{"a": float64(1)}
	got := deepMerge(base, "scalar-override")
	require.Equal(t, "scalar-override", got)
}

// TestSequentialOverrideConsumption is literal scenario S3: base-material
// [P0,P1]; override list [O0,O1,O2] across two effect-passes where the
// first effect-pass's material has 2 passes and the second has 1.
func TestSequentialOverrideConsumption(t *testing.T) {
	overrides := []interface{}{"O0", "O1", "O2"}

	selected1, cursor, fallback1 := selectOverridesForEffectPass(overrides, 0, 0, 2)
	require.False(t, fallback1)
	require.Equal(t, []interface{}{"O0", "O1"}, selected1)
	require.Equal(t, 2, cursor)

	selected2, cursor, fallback2 := selectOverridesForEffectPass(overrides, cursor, 1, 1)
	require.False(t, fallback2)
	require.Equal(t, []interface{}{"O2"}, selected2)
	require.Equal(t, 3, cursor)
}

func TestSequentialOverrideFallsBackPositionally(t *testing.T) {
	// Not enough overrides left for sequential consumption: falls back to
	// overrides[effectPassIdx].
	overrides := []interface{}{"O0"}
	selected, _, fallback := selectOverridesForEffectPass(overrides, 0, 0, 2)
	require.True(t, fallback)
	require.Equal(t, "O0", selected[0])
}
