package scene

import (
	"bufio"
	"encoding/json"
	"regexp"
	"strings"
)

var uniformCommentRe = regexp.MustCompile(`^\s*uniform\s+\S+\s+(\w+)\s*;\s*//\s*(\{.*\})\s*$`)

// parseUniformBindings scans shader source for lines of the form
// `uniform <type> <name>; // {"material": "<key>", "default": <json>}`.
func parseUniformBindings(source string) []UniformBinding {
	var out []UniformBinding
	scanner := bufio.NewScanner(strings.NewReader(source))
	for scanner.Scan() {
		m := uniformCommentRe.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		var meta struct {
			Material string      `json:"material"`
			Default  interface{} `json:"default"`
		}
		if err := json.Unmarshal([]byte(m[2]), &meta); err != nil {
			continue
		}
		if meta.Material == "" {
			continue
		}
		out = append(out, UniformBinding{
			UniformName: m[1],
			MaterialKey: meta.Material,
			Default:     meta.Default,
		})
	}
	return out
}

// canonicalUniformName maps a material key (from constantshadervalues,
// usershadervalues, or a script property) to the shader uniform name it
// conventionally drives. Matching is done by stripping non-alphanumeric
// characters and lowercasing first, so "Brightness", "bright_ness" and
// "BRIGHTNESS" all resolve the same way.
func canonicalUniformName(materialKey string) (string, bool) {
	key := normalizeMaterialKey(materialKey)
	switch {
	case key == "alpha":
		return "g_UserAlpha", true
	case key == "bright" || key == "brightness":
		return "g_Brightness", true
	case key == "power":
		return "g_Power", true
	case key == "scrollspeedx" || key == "scrollx":
		return "g_ScrollX", true
	case key == "scrollspeedy" || key == "scrolly":
		return "g_ScrollY", true
	case key == "color" || key == "color1":
		return "g_Color1", true
	case key == "color2":
		return "g_Color2", true
	case key == "emissive" || key == "emissivecolor":
		return "g_EmissiveColor", true
	case key == "metallic":
		return "g_Metallic", true
	case key == "roughness":
		return "g_Roughness", true
	case key == "reflectivity":
		return "g_Reflectivity", true
	case key == "flowspeed":
		return "g_FlowSpeed", true
	case key == "flowamount" || key == "flowamp":
		return "g_FlowAmount", true
	default:
		return "", false
	}
}

func normalizeMaterialKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// effectiveUniformsForPass computes the final uniform map for a merged
// pass, per the §4.5 resolution chain.
func effectiveUniformsForPass(
	bindings []UniformBinding,
	constantShaderValues map[string]interface{},
	userShaderValues map[string]interface{},
	userProperties map[string]interface{},
	scriptValues map[string]interface{},
) map[string]interface{} {
	out := make(map[string]interface{})

	for _, b := range bindings {
		if v, ok := constantShaderValues[b.MaterialKey]; ok {
			out[b.UniformName] = v
			continue
		}
		if userBindingName, ok := asString(userShaderValues[b.MaterialKey]); ok {
			if v, ok := userProperties[userBindingName]; ok {
				out[b.UniformName] = v
				continue
			}
		}
		if v, ok := reverseUserBindingLookup(userShaderValues, b.MaterialKey, userProperties); ok {
			out[b.UniformName] = v
			continue
		}
		if v, ok := scriptValues[b.MaterialKey]; ok {
			out[b.UniformName] = v
			continue
		}
		if b.Default != nil {
			out[b.UniformName] = b.Default
		}
	}

	applyCanonicalFallbacks(out, constantShaderValues)
	applyCanonicalFallbacks(out, userShaderValues)
	applyCanonicalFallbacks(out, scriptValues)

	return out
}

// reverseUserBindingLookup handles the case where usershadervalues maps
// material key -> user property name, but the caller already consulted
// the forward direction; this covers usershadervalues entries recorded
// the other way (user property name -> material key) seen in a handful
// of materials.
func reverseUserBindingLookup(userShaderValues map[string]interface{}, materialKey string, userProperties map[string]interface{}) (interface{}, bool) {
	for k, v := range userShaderValues {
		if name, ok := asString(v); ok && name == materialKey {
			if pv, ok := userProperties[k]; ok {
				return pv, true
			}
		}
	}
	return nil, false
}

func applyCanonicalFallbacks(out map[string]interface{}, source map[string]interface{}) {
	for key, v := range source {
		name, ok := canonicalUniformName(key)
		if !ok {
			continue
		}
		if _, exists := out[name]; exists {
			continue
		}
		out[name] = v
	}
}

// applyInstanceOverride folds an object's instanceoverride block onto
// the pass's effective uniforms (alpha/brightness/color/count/size).
func applyInstanceOverride(uniforms map[string]interface{}, override map[string]interface{}) {
	if override == nil {
		return
	}
	if v, ok := override["alpha"]; ok {
		uniforms["g_UserAlpha"] = v
	}
	if v, ok := override["brightness"]; ok {
		uniforms["g_Brightness"] = v
	}
	if v, ok := override["color"]; ok {
		uniforms["g_EmissiveColor"] = v
	}
	if v, ok := override["count"]; ok {
		uniforms["instance_count"] = v
	}
	if v, ok := override["size"]; ok {
		uniforms["instance_size"] = v
	}
}
