package compose

import (
	"fmt"
	"strings"

	vecmath "github.com/kitsune-livewallpaper/scenepipe/engine/math"
	"github.com/kitsune-livewallpaper/scenepipe/engine/plan"
)

var audioVisualizationTokens = []string{"spectrum", "visualizer", "fft", "audiovis", "vu_meter", "soundreactive"}

func looksLikeSpectrumLayer(layer plan.DrawLayer) bool {
	lower := strings.ToLower(layer.Shader + " " + layer.PrimaryTexture)
	for _, tok := range audioVisualizationTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

func needsAudioInput(layers []plan.DrawLayer) bool {
	for _, l := range layers {
		if looksLikeSpectrumLayer(l) {
			return true
		}
		for k := range l.Uniforms {
			if strings.Contains(strings.ToLower(k), "audio") {
				return true
			}
		}
	}
	return false
}

// clampSpectrumSize applies the §4.7 clamping rules: width defaults to
// scene width once the raw scaled width reaches 72% of it; height is
// capped at 55% of scene height; both floor at the stated minimum.
func clampSpectrumSize(rawW, rawH, sceneW, sceneH float64) (float64, float64) {
	w := rawW
	if w >= sceneW*0.72 {
		w = sceneW
	}
	h := rawH
	if h > sceneH*0.55 {
		h = sceneH * 0.55
	}
	if w < 160 {
		w = 160
	}
	if h < 48 {
		h = 48
	}
	return w, h
}

func detectSpectrumOverlay(layers []plan.DrawLayer, sceneW, sceneH int) SpectrumOverlay {
	for _, l := range layers {
		if !looksLikeSpectrumLayer(l) {
			continue
		}
		w, h := clampSpectrumSize(l.Width, l.Height, float64(sceneW), float64(sceneH))
		alpha := floatUniform(l.Uniforms, "g_UserAlpha", 1.0)
		return SpectrumOverlay{
			Detected: true,
			CenterX:  l.CenterX,
			CenterY:  l.CenterY,
			Width:    w,
			Height:   h,
			AngleRad: l.AngleRad,
			Opacity:  vecmath.Clamp(alpha, 0.0, 1.0),
			Mode:     transparencyModeFromBlend(l.BlendMode),
		}
	}
	return SpectrumOverlay{}
}

// BuildLiveFilterGraphPlan emits the filter-graph descriptor string and
// ordered input list for a streaming transcoder: base input, then each
// mask media file, optionally followed by an audio capture input.
func BuildLiveFilterGraphPlan(baseMediaPath string, layers []LayerInput, sceneW, sceneH int) *LiveFilterGraphPlan {
	drawLayers := make([]plan.DrawLayer, 0, len(layers))
	for _, l := range layers {
		drawLayers = append(drawLayers, l.Layer)
	}

	lg := &LiveFilterGraphPlan{
		NeedsAudio: needsAudioInput(drawLayers),
		Spectrum:   detectSpectrumOverlay(drawLayers, sceneW, sceneH),
	}
	lg.Inputs = append(lg.Inputs, baseMediaPath)

	var b strings.Builder
	fmt.Fprintf(&b, "[0:v]scale=%d:%d,format=rgba[base];", sceneW, sceneH)
	prev := "base"
	for i, in := range layers {
		inputIdx := len(lg.Inputs)
		lg.Inputs = append(lg.Inputs, in.MaskPath)
		next := fmt.Sprintf("stage%d", i)
		fmt.Fprintf(&b, "[%d:v]format=rgba,scale=%d:%d[mask%d];", inputIdx, int(in.Layer.Width), int(in.Layer.Height), i)
		fmt.Fprintf(&b, "[%s][mask%d]overlay=x=%.1f-overlay_w/2:y=%.1f-overlay_h/2:format=auto[%s];",
			prev, i, in.Layer.CenterX, in.Layer.CenterY, next)
		prev = next
	}

	if lg.NeedsAudio {
		audioIdx := len(lg.Inputs)
		lg.Inputs = append(lg.Inputs, "audio-capture")
		fmt.Fprintf(&b, "[%d:a]anull[aout];", audioIdx)
	}

	fmt.Fprintf(&b, "[%s]format=yuv420p[v]", prev)
	lg.FilterGraph = b.String()

	return lg
}
