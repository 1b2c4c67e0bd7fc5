package compose

import (
	"fmt"
	"strings"

	vecmath "github.com/kitsune-livewallpaper/scenepipe/engine/math"
	"github.com/kitsune-livewallpaper/scenepipe/engine/plan"
)

const defaultBakedSeconds = 20

// LayerInput pairs a classified draw layer with its already-extracted
// mask media file (produced by the texture decoder upstream).
type LayerInput struct {
	Layer    plan.DrawLayer
	MaskPath string
}

// BuildBakedProxyPlan synthesizes the filter_complex graph and input
// list for a short looping proxy video: the base image composited with
// up to len(layers) effect-layer masks, each driven by a motion profile
// inferred from its layer's shader name (the effect file name is not
// consulted).
func BuildBakedProxyPlan(baseMediaPath string, layers []LayerInput, sceneW, sceneH, maxLayers int) *BakedProxyPlan {
	if maxLayers > 0 && len(layers) > maxLayers {
		layers = layers[:maxLayers]
	}

	p := &BakedProxyPlan{
		BaseMediaPath: baseMediaPath,
		OutputSeconds: defaultBakedSeconds,
		Contrast:      1.0,
		Saturation:    1.0,
	}
	p.Inputs = append(p.Inputs, baseMediaPath)

	var filter strings.Builder
	fmt.Fprintf(&filter, "[0:v]scale=%d:%d,format=rgba[comp0];", sceneW, sceneH)

	compIdx := 0
	for i, in := range layers {
		inputIdx := len(p.Inputs)
		p.Inputs = append(p.Inputs, in.MaskPath)

		tuning := aggregateTuning(in.Layer.Uniforms)
		motion := motionProfileFromFilename(in.Layer.Shader)
		fx, fy, ax, ay := motionParams(motion, tuning, i)

		layerPlan := BakedLayerPlan{
			LayerIndex: i,
			TextureRef: in.Layer.PrimaryTexture,
			Motion:     motion,
			Tuning:     tuning,
			CenterX:    in.Layer.CenterX,
			CenterY:    in.Layer.CenterY,
			Width:      in.Layer.Width,
			Height:     in.Layer.Height,
			AngleRad:   in.Layer.AngleRad,
		}
		p.Layers = append(p.Layers, layerPlan)

		gray := fmt.Sprintf("l%d_gray", i)
		blurred := fmt.Sprintf("l%d_blur", i)
		rotated := fmt.Sprintf("l%d_rot", i)
		moved := fmt.Sprintf("l%d_moved", i)
		nextComp := fmt.Sprintf("comp%d", compIdx+1)

		fmt.Fprintf(&filter,
			"[%d:v]format=rgba,scale=%d:%d:flags=bicubic,setsar=1,hue=s=0[%s];",
			inputIdx, int(layerPlan.Width), int(layerPlan.Height), gray)
		fmt.Fprintf(&filter, "[%s]gblur=sigma=3:steps=1,format=rgba,colorchannelmixer=aa=%.3f[%s];",
			gray, vecmath.Clamp(tuning.AlphaCeil, 0.02, 1.0), blurred)

		if abs(layerPlan.AngleRad) > 0.001 {
			fmt.Fprintf(&filter, "[%s]rotate=%.6f:c=none:ow=rotw(iw):oh=roth(ih)[%s];", blurred, layerPlan.AngleRad, rotated)
		} else {
			fmt.Fprintf(&filter, "[%s]copy[%s];", blurred, rotated)
		}

		fmt.Fprintf(&filter,
			"[comp%d][%s]overlay=x='%.3f-(overlay_w/2)+sin(t*%.3f)*%.3f':y='%.3f-(overlay_h/2)+cos(t*%.3f)*%.3f':format=auto[%s];",
			compIdx, rotated, layerPlan.CenterX, fx, ax, layerPlan.CenterY, fy, ay, moved)
		fmt.Fprintf(&filter, "[%s]copy[%s];", moved, nextComp)
		compIdx++
	}

	if len(p.Layers) > 0 {
		var brightnessSum, powerSum float64
		for _, l := range p.Layers {
			brightnessSum += l.Tuning.Brightness
			powerSum += l.Tuning.Power
		}
		p.Contrast = vecmath.Clamp(brightnessSum/float64(len(p.Layers)), 0.2, 2.0)
		p.Saturation = vecmath.Clamp(powerSum/float64(len(p.Layers)), 0.2, 2.0)
	}

	fmt.Fprintf(&filter, "[comp%d]eq=contrast=%.3f:saturation=%.3f,format=yuv420p[v]", compIdx, p.Contrast, p.Saturation)
	p.FilterComplex = filter.String()

	return p
}
