// Package plan turns a built effect graph into a Native Plan: for every
// effect node it classifies how far the local (non-transcoding) renderer
// can take it, and derives its draw-layer rectangle in scene pixel space.
package plan

import (
	"math"
	"sort"
	"strings"

	"github.com/kitsune-livewallpaper/scenepipe/engine/scene"
)

// SupportTier is how far the local renderer can take one pass without
// external transcoding.
type SupportTier int

const (
	Ready SupportTier = iota
	Experimental
	Unsupported
)

func (t SupportTier) String() string {
	switch t {
	case Ready:
		return "Ready"
	case Experimental:
		return "Experimental"
	default:
		return "Unsupported"
	}
}

// DrawLayer is the geometric and visual realization of one pass.
type DrawLayer struct {
	ObjectIndex    int
	ObjectID       int64
	ObjectName     string
	PassIndex      int
	Shader         string
	ShaderFamily   string
	PrimaryTexture string
	HasTexture     bool
	BlendMode      string
	DepthTest      string
	DepthWrite     string
	CullMode       string
	CenterX        float64
	CenterY        float64
	Width          float64
	Height         float64
	AngleRad       float64
	ParallaxDepth  float64
	Visible        bool
	Uniforms       map[string]interface{}
	Tier           SupportTier
	Reason         string
}

// Summary aggregates tier counts and the distinct shader families seen
// in each tier.
type Summary struct {
	ReadyNodes              int
	ExperimentalNodes       int
	UnsupportedNodes        int
	ReadyFamilies           []string
	ExperimentalFamilies    []string
	UnsupportedFamilies     []string
}

// Plan is the full native-support + geometry output for one scene graph.
type Plan struct {
	DrawLayers []DrawLayer
	Summary    Summary
	Notes      []string
}

// shaderFamily classifies a shader name by prefix.
func shaderFamily(shader string) string {
	s := strings.ToLower(strings.TrimSpace(shader))
	if s == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(s, "genericimage"):
		return "genericimage"
	case strings.HasPrefix(s, "flowimage"):
		return "flowimage"
	case s == "particle" || strings.HasPrefix(s, "genericparticle"):
		return "particle"
	case strings.HasPrefix(s, "generic"):
		return "generic"
	case strings.HasPrefix(s, "effects") || strings.HasPrefix(s, "flag"):
		return "effects"
	default:
		return s
	}
}

func classifyFamily(family string) (SupportTier, string) {
	switch family {
	case "genericimage":
		return Ready, "direct textured quad family"
	case "flowimage":
		return Ready, "flow image approximated as a static textured layer"
	case "particle":
		return Ready, "sprite particle family"
	case "generic":
		return Experimental, "3D generic material family pending lighting/mesh parity"
	case "effects", "flag":
		return Experimental, "effect family pending full compositor parity"
	case "":
		return Unsupported, "shader field missing"
	default:
		return Unsupported, "shader family not mapped"
	}
}

func withVisibilityAndTextureGate(tier SupportTier, reason string, hasTexture, visible bool) (SupportTier, string) {
	if !visible {
		return Unsupported, "object marked as not visible in scene"
	}
	if tier == Ready && !hasTexture {
		return Unsupported, "ready family but pass has no primary texture"
	}
	return tier, reason
}

// Build classifies every effect node in g and derives its draw layer.
func Build(g *scene.Graph) *Plan {
	p := &Plan{}
	readyFamilies := map[string]struct{}{}
	expFamilies := map[string]struct{}{}
	unsupFamilies := map[string]struct{}{}

	for _, node := range g.EffectNodes {
		shader := node.Pass.Shader
		family := shaderFamily(shader)
		baseTier, baseReason := classifyFamily(family)

		texture, hasTexture := firstTexture(node.Pass.Textures)
		tier, reason := withVisibilityAndTextureGate(baseTier, baseReason, hasTexture, node.Visible)

		switch tier {
		case Ready:
			p.Summary.ReadyNodes++
			readyFamilies[family] = struct{}{}
		case Experimental:
			p.Summary.ExperimentalNodes++
			expFamilies[family] = struct{}{}
		default:
			p.Summary.UnsupportedNodes++
			unsupFamilies[family] = struct{}{}
		}

		layer := layerRect(g, node)
		layer.ObjectIndex = node.ObjectIndex
		layer.ObjectID = node.ObjectID
		layer.ObjectName = node.ObjectName
		layer.PassIndex = node.Pass.PassIndex
		layer.Shader = shader
		layer.ShaderFamily = family
		layer.PrimaryTexture = texture
		layer.HasTexture = hasTexture
		layer.BlendMode = orDefault(node.Pass.Blending, "normal")
		layer.DepthTest = orDefault(node.Pass.DepthTest, "disabled")
		layer.DepthWrite = orDefault(node.Pass.DepthWrite, "disabled")
		layer.CullMode = orDefault(node.Pass.CullMode, "nocull")
		layer.Visible = node.Visible
		layer.Uniforms = node.Pass.EffectiveUniforms
		layer.Tier = tier
		layer.Reason = reason

		p.DrawLayers = append(p.DrawLayers, layer)
	}

	sort.SliceStable(p.DrawLayers, func(i, j int) bool {
		a, b := p.DrawLayers[i], p.DrawLayers[j]
		if a.ObjectIndex != b.ObjectIndex {
			return a.ObjectIndex < b.ObjectIndex
		}
		if a.PassIndex != b.PassIndex {
			return a.PassIndex < b.PassIndex
		}
		if a.ParallaxDepth != b.ParallaxDepth {
			return a.ParallaxDepth < b.ParallaxDepth
		}
		return a.ObjectID < b.ObjectID
	})

	p.Summary.ReadyFamilies = sortedKeys(readyFamilies)
	p.Summary.ExperimentalFamilies = sortedKeys(expFamilies)
	p.Summary.UnsupportedFamilies = sortedKeys(unsupFamilies)

	p.Notes = append(p.Notes, g.Notes...)
	if p.Summary.ReadyNodes == 0 && len(p.DrawLayers) > 0 {
		p.Notes = append(p.Notes, "no ready shader families detected; fallback transport recommended")
	}

	return p
}

// layerRect derives the draw-layer rectangle in scene pixel space,
// converting the y-up/bottom-left scene coordinate system to y-down/
// top-left output space.
func layerRect(g *scene.Graph, node scene.EffectNode) DrawLayer {
	sceneW := float64(g.SceneWidth)
	if sceneW < 1 {
		sceneW = 1
	}
	sceneH := float64(g.SceneHeight)
	if sceneH < 1 {
		sceneH = 1
	}

	isParticle := strings.EqualFold(node.ObjectKind, "particle")

	var defaultSize [2]float64
	if isParticle {
		defaultSize = [2]float64{sceneW * 0.28, sceneH * 0.28}
	} else {
		defaultSize = [2]float64{sceneW, sceneH}
	}

	baseSize := defaultSize
	if node.HasSize {
		baseSize = node.Size
	} else if node.HasAssetSize {
		baseSize = node.AssetSize
	}

	scaleX := math.Max(math.Abs(node.Scale[0]), 0.01)
	scaleY := math.Max(math.Abs(node.Scale[1]), 0.01)
	rawW := baseSize[0] * scaleX
	rawH := baseSize[1] * scaleY

	var maxW, maxH float64
	if isParticle {
		maxW, maxH = sceneW*0.70, sceneH*0.70
	} else {
		maxW, maxH = sceneW*1.05, sceneH*1.05
	}

	width := clamp(rawW, 8, math.Max(maxW, 8))
	height := clamp(rawH, 8, math.Max(maxH, 8))
	centerX := clamp(node.Origin[0], 0, sceneW)
	centerY := clamp(sceneH-node.Origin[1], 0, sceneH)
	angleRad := -node.Angles[2]
	parallaxDepth := (node.ParallaxDepth[0] + node.ParallaxDepth[1]) * 0.5

	return DrawLayer{
		CenterX:       centerX,
		CenterY:       centerY,
		Width:         width,
		Height:        height,
		AngleRad:      angleRad,
		ParallaxDepth: parallaxDepth,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func firstTexture(textures []string) (string, bool) {
	for _, t := range textures {
		if strings.TrimSpace(t) != "" {
			return t, true
		}
	}
	return "", false
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
