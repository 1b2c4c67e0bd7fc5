package scene

import (
	"encoding/json"

	"github.com/kitsune-livewallpaper/scenepipe/engine/assets"
	"github.com/kitsune-livewallpaper/scenepipe/engine/core"
	"github.com/kitsune-livewallpaper/scenepipe/engine/script"
)

const defaultSceneWidth = 1920
const defaultSceneHeight = 1080

var sceneManifestCandidates = []string{"scene.json", "gifscene.json"}
var projectManifestCandidates = []string{"project.json"}

func loadSceneManifest(r *assets.Resolver) (map[string]interface{}, error) {
	resolved, ok := r.ResolveFirst(sceneManifestCandidates)
	if !ok {
		return nil, core.WrapIo("resolve", "scene.json|gifscene.json", core.ErrMissingReference)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(resolved.Bytes, &doc); err != nil {
		return nil, &core.InvalidFormatError{Path: resolved.ResolvedPath, Reason: err.Error()}
	}
	return doc, nil
}

func loadProjectManifest(r *assets.Resolver) map[string]interface{} {
	resolved, ok := r.ResolveFirst(projectManifestCandidates)
	if !ok {
		return nil
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(resolved.Bytes, &doc); err != nil {
		return nil
	}
	return doc
}

func sceneSize(sceneJSON map[string]interface{}) (int, int) {
	general, ok := asObject(sceneJSON["general"])
	if !ok {
		return defaultSceneWidth, defaultSceneHeight
	}
	proj, ok := asObject(general["orthogonalprojection"])
	if !ok {
		return defaultSceneWidth, defaultSceneHeight
	}
	w := intField(proj, "width", defaultSceneWidth)
	h := intField(proj, "height", defaultSceneHeight)
	if w <= 0 {
		w = defaultSceneWidth
	}
	if h <= 0 {
		h = defaultSceneHeight
	}
	return w, h
}

// buildUserPropertyMap seeds from the project manifest's general.properties
// defaults, then recursively walks the scene manifest collecting every
// {user, value} binding, first-wins.
func buildUserPropertyMap(sceneJSON, projectJSON map[string]interface{}) script.Env {
	env := script.Env{}
	if projectJSON != nil {
		script.CollectProjectDefaults(projectJSON, env)
	}
	script.CollectUserBindings(sceneJSON, env)
	return env
}

func scriptPropertiesFromAssignments(assignments []script.Assignment) map[string]script.UserValue {
	out := make(map[string]script.UserValue)
	for _, a := range assignments {
		if a.HasResolved {
			out[a.TargetProperty] = a.ResolvedValue
		}
	}
	return out
}

func scriptValuesAsInterfaceMap(scriptProps map[string]script.UserValue) map[string]interface{} {
	out := make(map[string]interface{}, len(scriptProps))
	for k, v := range scriptProps {
		if f, ok := v.AsFloat64(); ok {
			out[k] = f
		} else {
			out[k] = v.AsString()
		}
	}
	return out
}

func envToInterfaceMap(env script.Env) map[string]interface{} {
	out := make(map[string]interface{}, len(env))
	for k, v := range env {
		if f, ok := v.AsFloat64(); ok {
			out[k] = f
		} else {
			out[k] = v.AsString()
		}
	}
	return out
}
