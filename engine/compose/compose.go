package compose

import "github.com/kitsune-livewallpaper/scenepipe/engine/plan"

// ReadyLayersWithMasks filters a native plan down to Ready layers that
// have an extracted mask path, in draw order, for feeding either
// composition flavor.
func ReadyLayersWithMasks(p *plan.Plan, masks map[string]string) []LayerInput {
	var out []LayerInput
	for _, layer := range p.DrawLayers {
		if layer.Tier != plan.Ready || !layer.HasTexture {
			continue
		}
		maskPath, ok := masks[layer.PrimaryTexture]
		if !ok {
			continue
		}
		out = append(out, LayerInput{Layer: layer, MaskPath: maskPath})
	}
	return out
}

// BuildBaked assembles a complete baked-proxy composition Plan.
func BuildBaked(baseMediaPath string, p *plan.Plan, masks map[string]string, sceneW, sceneH, maxLayers int) *Plan {
	layers := ReadyLayersWithMasks(p, masks)
	baked := BuildBakedProxyPlan(baseMediaPath, layers, sceneW, sceneH, maxLayers)
	return &Plan{
		Flavor:     FlavorBakedProxy,
		BakedProxy: baked,
		Notes:      append([]string{}, p.Notes...),
	}
}

// BuildLive assembles a complete live filter-graph composition Plan.
func BuildLive(baseMediaPath string, p *plan.Plan, masks map[string]string, sceneW, sceneH int) *Plan {
	layers := ReadyLayersWithMasks(p, masks)
	live := BuildLiveFilterGraphPlan(baseMediaPath, layers, sceneW, sceneH)
	return &Plan{
		Flavor:    FlavorLiveFilterGraph,
		LiveGraph: live,
		Notes:     append([]string{}, p.Notes...),
	}
}
