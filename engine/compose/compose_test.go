package compose

import (
	"testing"

	"github.com/kitsune-livewallpaper/scenepipe/engine/plan"
	"github.com/stretchr/testify/require"
)

func sampleLayer(shader, texture string, center, size float64) plan.DrawLayer {
	return plan.DrawLayer{
		Shader:         shader,
		PrimaryTexture: texture,
		HasTexture:     texture != "",
		Tier:           plan.Ready,
		CenterX:        center,
		CenterY:        center,
		Width:          size,
		Height:         size,
		BlendMode:      "normal",
		Uniforms:       map[string]interface{}{"g_ScrollX": 0.2, "g_ScrollY": 0.1, "g_UserAlpha": 0.8},
	}
}

func TestMotionProfileFromFilename(t *testing.T) {
	require.Equal(t, MotionIris, motionProfileFromFilename("effects/iris_open/effect.json"))
	require.Equal(t, MotionShake, motionProfileFromFilename("effects/camera_shake/effect.json"))
	require.Equal(t, MotionPulse, motionProfileFromFilename("effects/heart_pulse/effect.json"))
	require.Equal(t, MotionDrift, motionProfileFromFilename("effects/clouds/effect.json"))
}

func TestBuildBakedProxyPlanProducesFilterForEachLayer(t *testing.T) {
	p := &plan.Plan{
		DrawLayers: []plan.DrawLayer{
			sampleLayer("genericimage", "bg.tex", 960, 400),
			sampleLayer("genericimage", "fg.tex", 500, 200),
		},
	}
	masks := map[string]string{"bg.tex": "/tmp/bg.png", "fg.tex": "/tmp/fg.png"}

	result := BuildBaked("/tmp/base.png", p, masks, 1920, 1080, 4)
	require.Equal(t, FlavorBakedProxy, result.Flavor)
	require.Len(t, result.BakedProxy.Layers, 2)
	require.Len(t, result.BakedProxy.Inputs, 3) // base + 2 masks
	require.Contains(t, result.BakedProxy.FilterComplex, "[v]")
	require.Contains(t, result.BakedProxy.FilterComplex, "gblur")
}

func TestBuildBakedProxyPlanRespectsMaxLayers(t *testing.T) {
	p := &plan.Plan{
		DrawLayers: []plan.DrawLayer{
			sampleLayer("genericimage", "a.tex", 100, 100),
			sampleLayer("genericimage", "b.tex", 200, 100),
			sampleLayer("genericimage", "c.tex", 300, 100),
		},
	}
	masks := map[string]string{"a.tex": "/a.png", "b.tex": "/b.png", "c.tex": "/c.png"}
	result := BuildBaked("/base.png", p, masks, 1920, 1080, 1)
	require.Len(t, result.BakedProxy.Layers, 1)
}

func TestReadyLayersWithMasksSkipsUnsupportedAndUnmasked(t *testing.T) {
	p := &plan.Plan{
		DrawLayers: []plan.DrawLayer{
			{Tier: plan.Unsupported, PrimaryTexture: "x.tex", HasTexture: true},
			{Tier: plan.Ready, PrimaryTexture: "y.tex", HasTexture: true},
			{Tier: plan.Ready, HasTexture: false},
		},
	}
	masks := map[string]string{"y.tex": "/y.png"}
	got := ReadyLayersWithMasks(p, masks)
	require.Len(t, got, 1)
	require.Equal(t, "y.tex", got[0].Layer.PrimaryTexture)
}

func TestDetectSpectrumOverlayAndClamping(t *testing.T) {
	layers := []plan.DrawLayer{
		{Shader: "effects/spectrum_bars", PrimaryTexture: "bars.tex", Width: 1800, Height: 700, CenterX: 960, CenterY: 540, BlendMode: "additive", Uniforms: map[string]interface{}{"g_UserAlpha": 0.6}},
	}
	overlay := detectSpectrumOverlay(layers, 1920, 1080)
	require.True(t, overlay.Detected)
	require.Equal(t, 1920.0, overlay.Width) // >= 72% of scene width -> full width
	require.Equal(t, 1080.0*0.55, overlay.Height)
	require.Equal(t, TransparencyAdditive, overlay.Mode)
}

func TestDetectSpectrumOverlayMinimumSize(t *testing.T) {
	layers := []plan.DrawLayer{
		{Shader: "effects/visualizer_small", PrimaryTexture: "v.tex", Width: 10, Height: 5},
	}
	overlay := detectSpectrumOverlay(layers, 1920, 1080)
	require.True(t, overlay.Detected)
	require.Equal(t, 160.0, overlay.Width)
	require.Equal(t, 48.0, overlay.Height)
}

func TestBuildLiveFilterGraphNeedsAudioWhenSpectrumPresent(t *testing.T) {
	p := &plan.Plan{
		DrawLayers: []plan.DrawLayer{
			sampleLayer("effects/fft_visualizer", "fft.tex", 960, 300),
		},
	}
	masks := map[string]string{"fft.tex": "/fft.png"}
	result := BuildLive("/base.png", p, masks, 1920, 1080)
	require.Equal(t, FlavorLiveFilterGraph, result.Flavor)
	require.True(t, result.LiveGraph.NeedsAudio)
	require.Contains(t, result.LiveGraph.Inputs, "audio-capture")
}

func TestBuildLiveFilterGraphNoAudioWhenNoHints(t *testing.T) {
	p := &plan.Plan{
		DrawLayers: []plan.DrawLayer{
			sampleLayer("genericimage", "bg.tex", 960, 400),
		},
	}
	masks := map[string]string{"bg.tex": "/bg.png"}
	result := BuildLive("/base.png", p, masks, 1920, 1080)
	require.False(t, result.LiveGraph.NeedsAudio)
}
