package session

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/kitsune-livewallpaper/scenepipe/engine/audio"
	"github.com/kitsune-livewallpaper/scenepipe/engine/core"
)

// UniformSchema documents which uniform name each timeline column drives.
// Held fixed to match §6's published session manifest shape.
type UniformSchema struct {
	Time   string `json:"time"`
	RMS    string `json:"rms"`
	Peak   string `json:"peak"`
	Energy string `json:"energy"`
	Beat   string `json:"beat"`
}

var defaultUniformSchema = UniformSchema{
	Time:   "u_time",
	RMS:    "u_audio_rms",
	Peak:   "u_audio_peak",
	Energy: "u_audio_energy",
	Beat:   "u_audio_beat",
}

// Manifest is the render session's top-level descriptor, consumed by the
// external playback surface.
type Manifest struct {
	Version         int           `json:"version"`
	RunID           string        `json:"run_id"`
	VisualAssetPath string        `json:"visual_asset_path"`
	MusicAssetPath  string        `json:"music_asset_path,omitempty"`
	UniformsPath    string        `json:"uniforms_path"`
	FrameCount      int           `json:"frame_count"`
	FrameMs         int           `json:"frame_ms"`
	UniformSchema   UniformSchema `json:"uniform_schema"`
	Notes           []string      `json:"notes"`
}

// newRunID stamps each Materialize invocation with a fresh correlation id,
// written into the manifest as run_id.
func newRunID() string {
	return uuid.New().String()
}

// uniformsDoc is the on-disk shape of uniforms.json: one row per frame.
type uniformsDoc struct {
	FrameMs int                  `json:"frame_ms"`
	Frames  []audio.UniformFrame `json:"frames"`
}

func writeJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return core.WrapIo("marshal", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return core.WrapIo("write", path, err)
	}
	return nil
}

func writeUniformsFile(path string, frameMs int, frames []audio.UniformFrame) error {
	return writeJSONFile(path, uniformsDoc{FrameMs: frameMs, Frames: frames})
}

func writeManifestFile(path string, m Manifest) error {
	return writeJSONFile(path, m)
}
