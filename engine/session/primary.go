package session

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kitsune-livewallpaper/scenepipe/engine/assets"
	"github.com/kitsune-livewallpaper/scenepipe/engine/scene"
)

// candidate is one filename/length pair considered for primary-asset
// selection, ranked largest-first then lexicographically.
type candidate struct {
	name   string
	length uint32
}

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func toCandidates(entries []candidate) []candidate {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].length != entries[j].length {
			return entries[i].length > entries[j].length
		}
		return entries[i].name < entries[j].name
	})
	return entries
}

const maxWalkDepth = 8

func collectFilesRecursive(root string, rel string, depth int, out *[]candidate) {
	if depth > maxWalkDepth {
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
			collectFilesRecursive(root, relPath, depth+1, out)
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		*out = append(*out, candidate{name: relPath, length: uint32(info.Size())})
	}
}

// allEntries enumerates every archive entry, or (when the bundle carries
// no archive) every file under the bundle directory, up to a bounded walk
// depth.
func allEntries(r *assets.Resolver) []candidate {
	if a := r.Archive(); a != nil {
		out := make([]candidate, 0, len(a.Entries))
		for _, e := range a.Entries {
			out = append(out, candidate{name: e.Filename, length: e.Length})
		}
		return out
	}
	var out []candidate
	collectFilesRecursive(r.Root(), "", 0, &out)
	return out
}

var textureExts = []string{"tex"}
var imageExts = []string{"png", "jpg", "jpeg", "webp", "bmp", "gif"}
var audioExts = []string{"mp3", "ogg", "wav", "flac", "m4a"}

func filterExt(entries []candidate, exts []string) []candidate {
	var out []candidate
	for _, e := range entries {
		if hasExt(e.name, exts) {
			out = append(out, e)
		}
	}
	return out
}

// primaryVisualFromGraph mirrors the graph-first heuristic: the first
// emitted node's first texture, falling back to nothing so the caller can
// fall through to the bundle-wide candidate scan.
func primaryVisualFromGraph(g *scene.Graph) string {
	for _, node := range g.EffectNodes {
		if len(node.Pass.Textures) > 0 && node.Pass.Textures[0] != "" {
			return node.Pass.Textures[0]
		}
	}
	return ""
}

// ResolvePrimaryVisual picks the bundle's primary visual asset: the
// graph's first node's first texture, else the largest texture-extension
// entry, else the largest image-extension entry.
func ResolvePrimaryVisual(g *scene.Graph, r *assets.Resolver) (string, bool) {
	if name := primaryVisualFromGraph(g); name != "" {
		return name, true
	}

	entries := allEntries(r)
	textures := toCandidates(filterExt(entries, textureExts))
	if len(textures) > 0 {
		return textures[0].name, true
	}
	images := toCandidates(filterExt(entries, imageExts))
	if len(images) > 0 {
		return images[0].name, true
	}
	return "", false
}

// ResolvePrimaryAudio returns the largest audio-extension entry in the
// bundle, if any.
func ResolvePrimaryAudio(r *assets.Resolver) (string, bool) {
	entries := allEntries(r)
	audio := toCandidates(filterExt(entries, audioExts))
	if len(audio) > 0 {
		return audio[0].name, true
	}
	return "", false
}

// sanitizeBundleKey turns a bundle directory name into a filesystem-safe
// cache key; used when no workshop id is available.
func sanitizeBundleKey(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "bundle"
	}
	return b.String()
}

// BundleKey is the workshop id when the bundle directory name is purely
// numeric (the Workshop convention), else the sanitized directory name.
func BundleKey(bundleRoot string) string {
	base := filepath.Base(filepath.Clean(bundleRoot))
	if isNumeric(base) {
		return base
	}
	return sanitizeBundleKey(base)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
