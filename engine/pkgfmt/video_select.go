package pkgfmt

import (
	"path"
	"sort"
	"strings"
)

func extensionOf(name string) string {
	lower := strings.ToLower(name)
	idx := strings.LastIndex(lower, ".")
	if idx < 0 {
		return ""
	}
	return lower[idx+1:]
}

func isPreviewLike(name string) bool {
	base := strings.ToLower(path.Base(filepathToSlash(name)))
	return strings.HasPrefix(base, "preview") || strings.HasPrefix(base, "thumbnail")
}

func filepathToSlash(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}

func extPriority(name string) int {
	switch extensionOf(name) {
	case "mp4":
		return 0
	case "webm":
		return 1
	case "mkv":
		return 2
	case "mov":
		return 3
	case "avi":
		return 4
	case "gif":
		return 9
	default:
		return 8
	}
}

func isVideoEntryName(name string) bool {
	switch extensionOf(name) {
	case "mp4", "webm", "gif", "mkv", "avi", "mov":
		return true
	default:
		return false
	}
}

// BestVideoEntry ranks candidate video entries by (is_preview_like?,
// extension_priority, lexicographic) and returns the first. When
// allowPreviewFallback is false, preview-like and GIF entries are
// filtered out before ranking.
func BestVideoEntry(a *Archive, allowPreviewFallback bool) (Entry, bool) {
	candidates := make([]Entry, 0, len(a.Entries))
	for _, e := range a.Entries {
		if !isVideoEntryName(e.Filename) {
			continue
		}
		if !allowPreviewFallback {
			if isPreviewLike(e.Filename) || extensionOf(e.Filename) == "gif" {
				continue
			}
		}
		candidates = append(candidates, e)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		ap, bp := 0, 0
		if isPreviewLike(a.Filename) {
			ap = 1
		}
		if isPreviewLike(b.Filename) {
			bp = 1
		}
		if ap != bp {
			return ap < bp
		}
		aExt, bExt := extPriority(a.Filename), extPriority(b.Filename)
		if aExt != bExt {
			return aExt < bExt
		}
		return a.Filename < b.Filename
	})

	if len(candidates) == 0 {
		return Entry{}, false
	}
	return candidates[0], true
}
