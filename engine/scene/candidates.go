package scene

import "strings"

var shaderExts = []string{"vert", "frag"}

// shaderCandidates builds the resolver lookup list for a pass's shader
// name, covering the plain, shaders/, and assets/shaders/ prefixes plus
// the effects/workshop/<id>/<name> special case.
func shaderCandidates(shaderName, ext string) []string {
	s := strings.TrimSpace(shaderName)
	if s == "" {
		return nil
	}

	out := []string{
		s + "." + ext,
		"shaders/" + s + "." + ext,
		"assets/shaders/" + s + "." + ext,
	}

	const workshopPrefix = "effects/workshop/"
	if strings.HasPrefix(strings.ToLower(s), workshopPrefix) {
		rest := s[len(workshopPrefix):]
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) == 2 {
			workshopID, name := parts[0], parts[1]
			out = append(out,
				"shaders/workshop/"+workshopID+"/effects/"+name+"."+ext,
				"assets/shaders/workshop/"+workshopID+"/effects/"+name+"."+ext,
			)
		}
	}

	return out
}

var textureExts = []string{"tex", "tex-json", "png", "jpg", "jpeg", "webp", "bmp", "tga", "gif"}

// textureCandidates builds the resolver lookup list for a texture token.
func textureCandidates(token string) []string {
	t := strings.TrimSpace(token)
	if t == "" {
		return nil
	}

	var out []string
	hasExt := strings.Contains(t, ".")
	for _, prefix := range []string{"", "materials/", "assets/materials/"} {
		if hasExt {
			out = append(out, prefix+t)
			continue
		}
		for _, ext := range textureExts {
			out = append(out, prefix+t+"."+ext)
		}
	}
	return out
}

// effectMaterialCandidates builds the lookup list for the material JSON
// an effect-pass references by name.
func effectMaterialCandidates(materialName string) []string {
	m := strings.TrimSpace(materialName)
	if m == "" {
		return nil
	}
	if strings.HasSuffix(strings.ToLower(m), ".json") {
		return []string{m, "materials/" + m, "assets/materials/" + m}
	}
	return []string{
		m + ".json",
		"materials/" + m + ".json",
		"assets/materials/" + m + ".json",
	}
}
