package scene

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kitsune-livewallpaper/scenepipe/engine/assets"
	"github.com/kitsune-livewallpaper/scenepipe/engine/script"
)

// BuildEffectGraph loads the bundle's scene manifest and emits the full
// Effect Graph: deterministic per-object base-material and effect passes,
// with visibility and script evaluation applied and every missing
// reference downgraded to a non-fatal note.
func BuildEffectGraph(r *assets.Resolver) (*Graph, error) {
	sceneJSON, err := loadSceneManifest(r)
	if err != nil {
		return nil, err
	}
	projectJSON := loadProjectManifest(r)

	width, height := sceneSize(sceneJSON)
	userProps := buildUserPropertyMap(sceneJSON, projectJSON)
	assignments := script.CollectScriptAssignments(sceneJSON, userProps)
	scriptProps := scriptPropertiesFromAssignments(assignments)

	g := &Graph{
		SceneWidth:        width,
		SceneHeight:       height,
		UserProperties:    userProps,
		ScriptProperties:  scriptProps,
		ScriptAssignments: assignments,
	}

	userPropsIface := envToInterfaceMap(userProps)
	scriptValsIface := scriptValuesAsInterfaceMap(scriptProps)

	objects, ok := asArray(sceneJSON["objects"])
	if !ok {
		return g, nil
	}

	for objIdx, rawObj := range objects {
		obj, ok := asObject(rawObj)
		if !ok {
			continue
		}
		b := newObjectBuilder(g, r, objIdx, obj, userPropsIface, scriptValsIface)
		b.emit()
	}

	return g, nil
}

type objectBuilder struct {
	g            *Graph
	r            *assets.Resolver
	objIdx       int
	obj          map[string]interface{}
	userProps    map[string]interface{}
	scriptValues map[string]interface{}
}

func newObjectBuilder(g *Graph, r *assets.Resolver, objIdx int, obj map[string]interface{}, userProps, scriptValues map[string]interface{}) *objectBuilder {
	return &objectBuilder{g: g, r: r, objIdx: objIdx, obj: obj, userProps: userProps, scriptValues: scriptValues}
}

func (b *objectBuilder) emit() {
	imageRef := stringField(b.obj, "image", "")
	particleRef := stringField(b.obj, "particle", "")
	if imageRef == "" && particleRef == "" {
		return
	}

	kind := "image"
	if particleRef != "" {
		kind = "particle"
	}

	objectID := int64Field(b.obj, "id", int64(b.objIdx))
	objectName := stringField(b.obj, "name", "")
	origin := vec3Field(b.obj, "origin", [3]float64{0, 0, 0})
	scale := vec3Field(b.obj, "scale", [3]float64{1, 1, 1})
	angles := vec3Field(b.obj, "angles", [3]float64{0, 0, 0})
	size, hasSize := vec2Field(b.obj, "size")
	parallax := vec3Field(b.obj, "parallaxDepth", [3]float64{1, 1, 0})

	visible := b.objectVisible()
	instance, hasInstance := asObject(b.obj["instanceoverride"])

	base := EffectNode{
		ObjectIndex:   b.objIdx,
		ObjectID:      objectID,
		ObjectName:    objectName,
		ObjectKind:    kind,
		Origin:        origin,
		Scale:         scale,
		Angles:        angles,
		Size:          size,
		HasSize:       hasSize,
		ParallaxDepth: [2]float64{parallax[0], parallax[1]},
		Visible:       visible,
	}
	if hasInstance {
		b.applyInstanceFields(&base, instance)
	}

	passCursor := 0

	// Base material passes.
	materialRef := imageRef
	if materialRef == "" {
		materialRef = particleRef
	}
	materialDoc, materialCandidates, ok := b.resolveMaterial(materialRef)
	if !ok {
		b.g.note("object %d (%s): base material %q unresolved", b.objIdx, objectName, firstNonEmpty(materialCandidates))
	} else {
		passes, _ := asArray(materialDoc["passes"])
		for i, rawPass := range passes {
			pass, ok := asObject(rawPass)
			if !ok {
				continue
			}
			node := base
			node.IsBasePass = true
			node.Pass = b.buildPass(i, pass, nil, base.ObjectKind)
			node.Pass.PassIndex = passCursor
			b.finalizeUniforms(&node)
			b.g.EffectNodes = append(b.g.EffectNodes, node)
			passCursor++
		}
	}

	// Effect entries.
	effects, _ := asArray(b.obj["effects"])
	for _, rawEffect := range effects {
		effect, ok := asObject(rawEffect)
		if !ok {
			continue
		}
		if !b.effectVisible(effect) {
			continue
		}
		passCursor = b.emitEffect(&base, effect, passCursor)
	}
}

func (b *objectBuilder) applyInstanceFields(node *EffectNode, instance map[string]interface{}) {
	if v, ok := instance["alpha"]; ok {
		if f, ok := asFloat(v); ok {
			node.InstanceAlpha = f
			node.HasInstance = true
		}
	}
	if v, ok := instance["color"]; ok {
		if s, ok := asString(v); ok {
			parts := splitFields(s)
			var c [3]float64
			for i := 0; i < len(parts) && i < 3; i++ {
				if f, ok := parseLooseFloat(parts[i]); ok {
					c[i] = f
				}
			}
			node.InstanceColor = c
			node.HasInstColor = true
		}
	}
	if v, ok := instance["count"]; ok {
		if f, ok := asFloat(v); ok {
			node.InstanceCount = f
			node.HasInstCount = true
		}
	}
	if v, ok := instance["size"]; ok {
		if f, ok := asFloat(v); ok {
			node.InstanceSize = f
			node.HasInstSize = true
		}
	}
}

func (b *objectBuilder) objectVisible() bool {
	raw, ok := b.obj["visible"]
	if !ok {
		return true
	}
	return b.evalVisibilityShape(raw)
}

func (b *objectBuilder) effectVisible(effect map[string]interface{}) bool {
	raw, ok := effect["visible"]
	if !ok {
		return true
	}
	return b.evalVisibilityShape(raw)
}

// evalVisibilityShape handles the §6 visibility object shape: a bare
// bool, or {value, user|condition}.
func (b *objectBuilder) evalVisibilityShape(raw interface{}) bool {
	if bv, ok := raw.(bool); ok {
		return bv
	}
	obj, ok := asObject(raw)
	if !ok {
		return true
	}
	def, hasDef := asBool(obj["value"])
	if !hasDef {
		def = true
	}

	if userName, ok := asString(obj["user"]); ok {
		if v, ok := b.userProps[userName]; ok {
			if bv, ok := asBool(v); ok {
				return bv
			}
		}
		return def
	}
	if userObj, ok := asObject(obj["user"]); ok {
		condition := stringField(userObj, "condition", "")
		if condition != "" {
			env := script.Env{}
			for k, v := range b.userProps {
				if f, ok := asFloat(v); ok {
					env[k] = script.NumberValue(f)
				} else if s, ok := asString(v); ok {
					env[k] = script.StringValue(s)
				}
			}
			v, ok := script.EvalVisibility(condition, env)
			if ok {
				return v
			}
		}
		if name := stringField(userObj, "name", ""); name != "" {
			if v, ok := b.userProps[name]; ok {
				if bv, ok := asBool(v); ok {
					return bv
				}
			}
		}
	}
	return def
}

func (b *objectBuilder) resolveMaterial(ref string) (map[string]interface{}, []string, bool) {
	candidates := effectMaterialCandidates(ref)
	resolved, ok := b.r.ResolveFirst(candidates)
	if !ok {
		return nil, candidates, false
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(resolved.Bytes, &doc); err != nil {
		return nil, candidates, false
	}
	return doc, candidates, true
}

func (b *objectBuilder) emitEffect(base *EffectNode, effect map[string]interface{}, passCursor int) int {
	effectFile := stringField(effect, "file", "")
	effectName := stringField(effect, "name", "")

	effectPasses, _ := asArray(effect["passes"])
	cursor := 0

	for effectPassIdx, rawEffectPass := range effectPasses {
		effectPass, ok := asObject(rawEffectPass)
		if !ok {
			continue
		}
		materialName := stringField(effectPass, "material", "")
		if materialName == "" {
			continue
		}
		materialDoc, candidates, ok := b.resolveMaterial(materialName)
		if !ok {
			b.g.note("object %d effect %q: material %q unresolved", b.objIdx, effectName, firstNonEmpty(candidates))
			continue
		}
		materialPasses, _ := asArray(materialDoc["passes"])
		overrides, _ := asArray(effectPass["passes"])

		selected, nextCursor, usedFallback := selectOverridesForEffectPass(overrides, cursor, effectPassIdx, len(materialPasses))
		cursor = nextCursor
		if usedFallback {
			b.g.note("object %d effect %q pass %d: override cursor diverged from sequential consumption, used positional fallback", b.objIdx, effectName, effectPassIdx)
		}

		for i, rawPass := range materialPasses {
			pass, ok := asObject(rawPass)
			if !ok {
				continue
			}
			node := *base
			node.IsBasePass = false
			node.EffectFile = effectFile
			node.EffectName = effectName
			node.Pass = b.buildPass(i, pass, selected[i], base.ObjectKind)
			node.Pass.PassIndex = passCursor
			b.finalizeUniforms(&node)
			b.g.EffectNodes = append(b.g.EffectNodes, node)
			passCursor++
		}
	}
	return passCursor
}

func (b *objectBuilder) buildPass(passIdx int, basePass map[string]interface{}, override interface{}, objectKind string) Pass {
	merged := basePass
	if override != nil {
		if m, ok := deepMerge(basePass, override).(map[string]interface{}); ok {
			merged = m
		}
	}

	shaderName := stringField(merged, "shader", "")
	p := Pass{
		PassIndex: passIdx,
		Shader:    shaderName,
		Blending:  stringField(merged, "blending", "normal"),
		DepthTest: stringField(merged, "depthtest", "disabled"),
		DepthWrite: stringField(merged, "depthwrite", "disabled"),
		CullMode:  stringField(merged, "cullmode", "nocull"),
	}

	if combos, ok := asObject(merged["combos"]); ok {
		p.Combos = combos
	}
	p.ConstantShaderVal, _ = asObject(merged["constantshadervalues"])
	p.UserShaderVal, _ = asObject(merged["usershadervalues"])
	if textures, ok := asArray(merged["textures"]); ok {
		for _, t := range textures {
			if s, ok := asString(t); ok && s != "" {
				p.Textures = append(p.Textures, s)
			}
		}
	}

	if vert, ok := b.r.ResolveFirst(shaderCandidates(shaderName, "vert")); ok {
		p.ShaderVert = vert.ResolvedPath
		p.Bindings = append(p.Bindings, parseUniformBindings(string(vert.Bytes))...)
	}
	if frag, ok := b.r.ResolveFirst(shaderCandidates(shaderName, "frag")); ok {
		p.ShaderFrag = frag.ResolvedPath
		p.Bindings = append(p.Bindings, parseUniformBindings(string(frag.Bytes))...)
	}
	if shaderName == "" {
		b.g.note("object %d: pass %d has no shader name", b.objIdx, passIdx)
	} else if p.ShaderVert == "" && p.ShaderFrag == "" {
		b.g.note("object %d: shader %q has no resolvable source", b.objIdx, shaderName)
	}

	for i, tok := range p.Textures {
		if _, ok := b.r.ResolveFirst(textureCandidates(tok)); !ok {
			b.g.note("object %d: texture %q (slot %d) unresolved", b.objIdx, tok, i)
		}
	}

	return p
}

func (b *objectBuilder) finalizeUniforms(node *EffectNode) {
	node.Pass.EffectiveUniforms = effectiveUniformsForPass(
		node.Pass.Bindings,
		node.Pass.ConstantShaderVal,
		node.Pass.UserShaderVal,
		b.userProps,
		b.scriptValues,
	)
	if node.HasInstance || node.HasInstColor || node.HasInstCount || node.HasInstSize {
		override := map[string]interface{}{}
		if node.HasInstance {
			override["alpha"] = node.InstanceAlpha
		}
		if node.HasInstColor {
			override["color"] = formatVec3(node.InstanceColor)
		}
		if node.HasInstCount {
			override["count"] = node.InstanceCount
		}
		if node.HasInstSize {
			override["size"] = node.InstanceSize
		}
		applyInstanceOverride(node.Pass.EffectiveUniforms, override)
	}
}

func formatVec3(v [3]float64) string {
	return strings.Join([]string{
		strconv.FormatFloat(v[0], 'g', -1, 64),
		strconv.FormatFloat(v[1], 'g', -1, 64),
		strconv.FormatFloat(v[2], 'g', -1, 64),
	}, " ")
}

func firstNonEmpty(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	return candidates[0]
}
