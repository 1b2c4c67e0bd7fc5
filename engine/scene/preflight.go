package scene

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kitsune-livewallpaper/scenepipe/engine/assets"
)

// AssetCandidate is one entry considered for primary-asset selection,
// paired with the byte length it ranks by.
type AssetCandidate struct {
	Filename string
	Length   uint32
}

// Preflight is a lightweight pre-flight report over a bundle, built
// without constructing a full effect graph: entry counts by asset
// class, the primary visual/audio candidates, and audio-reactivity
// hints scanned out of the raw scene manifest. An orchestrator can use
// it to short-circuit on a bundle with no usable visual asset before
// paying for the full graph build.
type Preflight struct {
	EntriesCount        int
	SceneManifestEntry  string
	SceneManifestParsed bool
	PrimaryVisualAsset  string
	PrimaryMusicAsset   string
	TextureCandidates   []AssetCandidate
	ImageCandidates     []AssetCandidate
	AudioCandidates     []AssetCandidate
	ReactiveHints       []string
	LikelyAudioReactive bool
	Notes               []string
}

var reactiveHintTokens = []string{"audio", "visualizer", "spectrum", "fft", "bass", "beat", "vu", "music"}

const maxReactiveHints = 64

var preflightTextureExts = []string{"tex"}
var preflightImageExts = []string{"png", "jpg", "jpeg", "webp", "bmp", "gif"}
var preflightAudioExts = []string{"mp3", "ogg", "wav", "flac", "m4a"}

func preflightHasExt(name string, exts []string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func toAssetCandidates(entries []AssetCandidate) []AssetCandidate {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Length != entries[j].Length {
			return entries[i].Length > entries[j].Length
		}
		return entries[i].Filename < entries[j].Filename
	})
	return entries
}

func filterCandidateExt(entries []AssetCandidate, exts []string) []AssetCandidate {
	var out []AssetCandidate
	for _, e := range entries {
		if preflightHasExt(e.Filename, exts) {
			out = append(out, e)
		}
	}
	return out
}

const preflightMaxWalkDepth = 8

func collectPreflightEntries(root, rel string, depth int, out *[]AssetCandidate) {
	if depth > preflightMaxWalkDepth {
		return
	}
	dir := filepath.Join(root, rel)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		relPath := e.Name()
		if rel != "" {
			relPath = rel + "/" + e.Name()
		}
		if e.IsDir() {
			collectPreflightEntries(root, relPath, depth+1, out)
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		*out = append(*out, AssetCandidate{Filename: relPath, Length: uint32(info.Size())})
	}
}

func preflightAllEntries(r *assets.Resolver) []AssetCandidate {
	if a := r.Archive(); a != nil {
		out := make([]AssetCandidate, 0, len(a.Entries))
		for _, e := range a.Entries {
			out = append(out, AssetCandidate{Filename: e.Filename, Length: e.Length})
		}
		return out
	}
	var out []AssetCandidate
	collectPreflightEntries(r.Root(), "", 0, &out)
	return out
}

// collectReactiveHints walks a decoded JSON tree looking for object keys
// that mention an audio-reactivity-related token, recording each hit as
// a dotted/bracketed path (bounded to maxReactiveHints entries).
func collectReactiveHints(v interface{}, path string, out *[]string) {
	if len(*out) >= maxReactiveHints {
		return
	}
	switch t := v.(type) {
	case map[string]interface{}:
		for k, child := range t {
			lower := strings.ToLower(k)
			for _, tok := range reactiveHintTokens {
				if strings.Contains(lower, tok) {
					hint := k
					if path != "" {
						hint = path + "." + k
					}
					if !containsString(*out, hint) && len(*out) < maxReactiveHints {
						*out = append(*out, hint)
					}
					break
				}
			}
			next := k
			if path != "" {
				next = path + "." + k
			}
			collectReactiveHints(child, next, out)
		}
	case []interface{}:
		for i, child := range t {
			collectReactiveHints(child, path+"["+itoa(i)+"]", out)
		}
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var digits []byte
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

// BuildPreflight summarizes a bundle's asset inventory and scans its
// scene manifest for audio-reactivity hints, without building the full
// effect graph.
func BuildPreflight(r *assets.Resolver) Preflight {
	entries := preflightAllEntries(r)

	textureCandidates := toAssetCandidates(filterCandidateExt(entries, preflightTextureExts))
	imageCandidates := toAssetCandidates(filterCandidateExt(entries, preflightImageExts))
	audioCandidates := toAssetCandidates(filterCandidateExt(entries, preflightAudioExts))

	p := Preflight{
		EntriesCount:      len(entries),
		TextureCandidates: textureCandidates,
		ImageCandidates:   imageCandidates,
		AudioCandidates:   audioCandidates,
	}

	if len(textureCandidates) > 0 {
		p.PrimaryVisualAsset = textureCandidates[0].Filename
	} else if len(imageCandidates) > 0 {
		p.PrimaryVisualAsset = imageCandidates[0].Filename
	}
	if len(audioCandidates) > 0 {
		p.PrimaryMusicAsset = audioCandidates[0].Filename
	}

	resolved, ok := r.ResolveFirst(sceneManifestCandidates)
	if ok {
		p.SceneManifestEntry = resolved.RequestPath
		var doc interface{}
		if err := json.Unmarshal(resolved.Bytes, &doc); err == nil {
			p.SceneManifestParsed = true
			var hints []string
			collectReactiveHints(doc, "", &hints)
			p.ReactiveHints = hints
			p.LikelyAudioReactive = len(hints) > 0
		}
	}

	if p.SceneManifestEntry == "" {
		p.Notes = append(p.Notes, "scene.json not found in bundle")
	}
	if p.PrimaryVisualAsset == "" {
		p.Notes = append(p.Notes, "no texture/image asset candidate found")
	}
	if p.PrimaryMusicAsset == "" {
		p.Notes = append(p.Notes, "no audio asset candidate found")
	}
	if p.LikelyAudioReactive {
		p.Notes = append(p.Notes, "audio-reactive hints detected in scene.json keys")
	}

	return p
}
