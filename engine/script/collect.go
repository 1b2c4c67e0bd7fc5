package script

import "sort"

// CollectUserBindings walks a decoded JSON tree (maps/slices/scalars,
// the shape produced by encoding/json's interface{} decoding) collecting
// every `{user: "name", value: default}` style binding, first-wins.
func CollectUserBindings(node interface{}, out Env) {
	if obj, ok := node.(map[string]interface{}); ok {
		if name, value, ok := tryParseUserBinding(obj); ok {
			if _, exists := out[name]; !exists {
				out[name] = jsonToUserValue(value)
			}
		}
		for _, child := range obj {
			CollectUserBindings(child, out)
		}
		return
	}
	if arr, ok := node.([]interface{}); ok {
		for _, child := range arr {
			CollectUserBindings(child, out)
		}
	}
}

func tryParseUserBinding(obj map[string]interface{}) (string, interface{}, bool) {
	value, hasValue := obj["value"]
	if !hasValue {
		return "", nil, false
	}

	if userName, ok := obj["user"].(string); ok {
		return userName, value, true
	}
	if userObj, ok := obj["user"].(map[string]interface{}); ok {
		if name, ok := userObj["name"].(string); ok {
			return name, value, true
		}
	}
	return "", nil, false
}

func jsonToUserValue(v interface{}) UserValue {
	switch t := v.(type) {
	case float64:
		return NumberValue(t)
	case bool:
		return BoolValue(t)
	case string:
		return StringValue(t)
	default:
		return StringValue("")
	}
}

// CollectProjectDefaults seeds env from project.json's
// general.properties.<name>.value table, without overwriting existing keys.
func CollectProjectDefaults(projectJSON map[string]interface{}, out Env) {
	general, ok := projectJSON["general"].(map[string]interface{})
	if !ok {
		return
	}
	props, ok := general["properties"].(map[string]interface{})
	if !ok {
		return
	}

	for name, raw := range props {
		prop, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		value, ok := prop["value"]
		if !ok {
			continue
		}
		if _, exists := out[name]; !exists {
			out[name] = jsonToUserValue(value)
		}
	}
}

// CollectScriptAssignments walks the scene JSON looking for "script"
// string fields at any depth, recording their dotted path as
// SourcePath, and returns the union of all parsed assignments in a
// deterministic (path-sorted) order.
func CollectScriptAssignments(node interface{}, userValues Env) []Assignment {
	var out []Assignment
	collectScriptsRecursive(node, "", userValues, &out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SourcePath < out[j].SourcePath })
	return out
}

func collectScriptsRecursive(node interface{}, path string, userValues Env, out *[]Assignment) {
	if obj, ok := node.(map[string]interface{}); ok {
		if script, ok := obj["script"].(string); ok {
			*out = append(*out, ParseAssignments(path, script, userValues)...)
		}
		for k, child := range obj {
			next := k
			if path != "" {
				next = path + "." + k
			}
			collectScriptsRecursive(child, next, userValues, out)
		}
		return
	}
	if arr, ok := node.([]interface{}); ok {
		for i, child := range arr {
			collectScriptsRecursive(child, pathIndex(path, i), userValues, out)
		}
	}
}

func pathIndex(path string, i int) string {
	return path + "[" + itoa(i) + "]"
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}
