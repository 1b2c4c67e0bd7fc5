package compose

import vecmath "github.com/kitsune-livewallpaper/scenepipe/engine/math"

// aggregateTuning derives the per-layer visual modulation from a draw
// layer's effective pass uniforms (§4.7): g_ScrollX/Y feed oscillation
// amplitude/frequency, g_Brightness/g_Power feed contrast/saturation,
// and g_UserAlpha caps per-layer opacity.
func aggregateTuning(uniforms map[string]interface{}) VisualTuning {
	return VisualTuning{
		ScrollX:    floatUniform(uniforms, "g_ScrollX", 0),
		ScrollY:    floatUniform(uniforms, "g_ScrollY", 0),
		Brightness: vecmath.Clamp(floatUniform(uniforms, "g_Brightness", 1), 0.05, 4.0),
		Power:      vecmath.Clamp(floatUniform(uniforms, "g_Power", 1), 0.05, 4.0),
		AlphaCeil:  vecmath.Clamp(floatUniform(uniforms, "g_UserAlpha", 1), 0.0, 1.0),
	}
}

func floatUniform(uniforms map[string]interface{}, key string, def float64) float64 {
	if uniforms == nil {
		return def
	}
	v, ok := uniforms[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	}
	return def
}
