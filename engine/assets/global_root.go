package assets

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// findGlobalAssetsRoot implements the §6 discovery order: explicit
// overrides first, then Steam library scanning, then (last-resort)
// walking the bundle's parents and the cwd's ancestors for a
// wallpaperengine/assets directory.
func findGlobalAssetsRoot(bundleRoot string) string {
	if v := os.Getenv("GLOBAL_ASSETS_ROOT_OVERRIDE"); v != "" {
		if isDir(v) {
			return v
		}
	}
	if v := os.Getenv("WALLPAPER_ENGINE_ROOT_OVERRIDE"); v != "" {
		p := filepath.Join(v, "assets")
		if isDir(p) {
			return p
		}
	}

	if p := findSteamWallpaperEngineAssets(); p != "" {
		return p
	}

	candidates := []string{filepath.Join(bundleRoot, "wallpaperengine/assets")}
	for dir := bundleRoot; ; {
		next := filepath.Dir(dir)
		if next == dir {
			break
		}
		candidates = append(candidates, filepath.Join(next, "wallpaperengine/assets"))
		dir = next
	}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, "wallpaperengine/assets"))
		for dir := cwd; ; {
			next := filepath.Dir(dir)
			if next == dir {
				break
			}
			candidates = append(candidates, filepath.Join(next, "wallpaperengine/assets"))
			dir = next
		}
	}

	for _, c := range candidates {
		if isDir(c) {
			return c
		}
	}
	return ""
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

func steamRoots(home string) []string {
	return []string{
		filepath.Join(home, ".local/share/Steam"),
		filepath.Join(home, ".steam/steam"),
		filepath.Join(home, ".steam/root"),
		filepath.Join(home, ".var/app/com.valvesoftware.Steam/.local/share/Steam"),
	}
}

// parseLibraryFoldersVDF extracts every "path" value from a Steam
// libraryfolders.vdf file. The format is a loosely-braced key/quoted-value
// tree; this scans line by line for '"path" "<value>"' without a full
// VDF parser, matching how the original implementation reads it.
func parseLibraryFoldersVDF(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.Contains(line, `"path"`) {
			continue
		}
		quoted := extractQuotedValueAfterKey(line)
		if quoted == "" {
			continue
		}
		out = append(out, strings.ReplaceAll(quoted, `\\`, "/"))
	}
	return out
}

// extractQuotedValueAfterKey pulls the second quoted string's contents
// out of a line like `"path"    "/mnt/games/SteamLibrary"`.
func extractQuotedValueAfterKey(line string) string {
	first := strings.Index(line, `"`)
	if first < 0 {
		return ""
	}
	afterFirst := line[first+1:]
	secondRel := strings.Index(afterFirst, `"`)
	if secondRel < 0 {
		return ""
	}
	afterKey := strings.TrimLeft(afterFirst[secondRel+1:], " \t")
	valueStart := strings.Index(afterKey, `"`)
	if valueStart < 0 {
		return ""
	}
	afterValueStart := afterKey[valueStart+1:]
	valueEnd := strings.Index(afterValueStart, `"`)
	if valueEnd < 0 {
		return ""
	}
	return afterValueStart[:valueEnd]
}

func wallpaperEngineAssetsInLibrary(libraryRoot string) string {
	p := filepath.Join(libraryRoot, "steamapps/common/wallpaper_engine/assets")
	if isDir(p) {
		return p
	}
	return ""
}

func findSteamWallpaperEngineAssets() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	var libraryRoots []string
	for _, root := range steamRoots(home) {
		libraryRoots = append(libraryRoots, root)
		vdf := filepath.Join(root, "steamapps/libraryfolders.vdf")
		libraryRoots = append(libraryRoots, parseLibraryFoldersVDF(vdf)...)
	}

	for _, lib := range libraryRoots {
		if p := wallpaperEngineAssetsInLibrary(lib); p != "" {
			return p
		}
	}
	return ""
}
