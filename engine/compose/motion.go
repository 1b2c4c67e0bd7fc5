package compose

import (
	"strings"

	vecmath "github.com/kitsune-livewallpaper/scenepipe/engine/math"
)

// motionProfileFromFilename infers a baked-proxy layer's oscillation
// shape from a name; BuildBakedProxyPlan passes the layer's shader name.
func motionProfileFromFilename(name string) MotionProfile {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "iris"):
		return MotionIris
	case strings.Contains(lower, "shake"):
		return MotionShake
	case strings.Contains(lower, "pulse"):
		return MotionPulse
	default:
		return MotionDrift
	}
}

// motionParams returns (freqX, freqY, ampX, ampY) for the ffmpeg overlay
// expression, modulated by scroll-uniform tuning and layer index, the
// way the reference compositor derives oscillation from g_ScrollX/Y.
func motionParams(profile MotionProfile, tuning VisualTuning, idx int) (fx, fy, ax, ay float64) {
	sx, sy := abs(tuning.ScrollX), abs(tuning.ScrollY)
	i := float64(idx)

	switch profile {
	case MotionIris:
		fx = vecmath.Clamp(0.3+sx*1.0+i*0.03, 0.2, 2.0)
		fy = vecmath.Clamp(0.25+sy*0.9+i*0.03, 0.2, 2.0)
		ax = vecmath.Clamp(6.0+sx*14.0+i*0.4, 3.0, 28.0)
		ay = vecmath.Clamp(5.0+sy*12.0+i*0.3, 3.0, 24.0)
	case MotionShake:
		fx = vecmath.Clamp(4.0+sx*6.0+i*0.3, 2.0, 14.0)
		fy = vecmath.Clamp(3.6+sy*5.0+i*0.25, 2.0, 12.0)
		ax = vecmath.Clamp(1.0+sx*2.0+i*0.1, 0.5, 4.0)
		ay = vecmath.Clamp(0.8+sy*1.8+i*0.08, 0.5, 3.5)
	case MotionPulse:
		fx = vecmath.Clamp(1.6+sx*3.0+i*0.1, 0.8, 5.0)
		fy = vecmath.Clamp(1.4+sy*2.6+i*0.1, 0.8, 4.5)
		ax = vecmath.Clamp(3.0+sx*8.0+i*0.2, 1.5, 12.0)
		ay = vecmath.Clamp(2.5+sy*7.0+i*0.16, 1.5, 10.0)
	default: // drift
		fx = vecmath.Clamp(1.1+sx*2.2+i*0.09, 0.7, 6.0)
		fy = vecmath.Clamp(0.9+sy*2.0+i*0.07, 0.7, 6.0)
		ax = vecmath.Clamp(2.0+sx*7.0+i*0.2, 1.0, 14.0)
		ay = vecmath.Clamp(1.5+sy*6.0+i*0.16, 1.0, 12.0)
	}
	return
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
