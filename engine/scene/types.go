// Package scene builds an Effect Graph from a bundle's scene manifest:
// it resolves objects, materials and shaders, evaluates visibility and
// script expressions, merges effect-pass overrides onto base-material
// passes, and computes the effective uniform value of every pass.
package scene

import (
	"fmt"

	"github.com/kitsune-livewallpaper/scenepipe/engine/script"
)

// UniformBinding links a material key from a shader source comment to
// the uniform name the shader declares.
type UniformBinding struct {
	UniformName string
	MaterialKey string
	Default     interface{}
}

// Pass is one merged, resolved shader invocation.
type Pass struct {
	PassIndex         int
	Shader            string
	ShaderVert        string
	ShaderFrag        string
	Combos            map[string]interface{}
	Blending          string
	DepthTest         string
	DepthWrite        string
	CullMode          string
	Textures          []string
	ConstantShaderVal map[string]interface{}
	UserShaderVal     map[string]interface{}
	Bindings          []UniformBinding
	EffectiveUniforms map[string]interface{}
}

// EffectNode is one emitted effect-graph node: one merged pass bound to
// the object that carries it.
type EffectNode struct {
	ObjectIndex    int
	ObjectID       int64
	ObjectName     string
	ObjectKind     string
	Origin         [3]float64
	Scale          [3]float64
	Angles         [3]float64
	Size           [2]float64
	HasSize        bool
	AssetSize      [2]float64
	HasAssetSize   bool
	ParallaxDepth  [2]float64
	Visible        bool
	EffectFile     string
	EffectName     string
	IsBasePass     bool
	Pass           Pass
	InstanceAlpha  float64
	HasInstance    bool
	InstanceColor  [3]float64
	HasInstColor   bool
	InstanceCount  float64
	InstanceSize   float64
	HasInstCount   bool
	HasInstSize    bool
}

// Graph is the full output of BuildEffectGraph.
type Graph struct {
	SceneWidth        int
	SceneHeight       int
	UserProperties    script.Env
	ScriptProperties  map[string]script.UserValue
	ScriptAssignments []script.Assignment
	EffectNodes       []EffectNode
	Notes             []string
}

func (g *Graph) note(format string, args ...interface{}) {
	g.Notes = append(g.Notes, fmt.Sprintf(format, args...))
}
