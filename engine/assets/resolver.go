// Package assets resolves a logical wallpaper asset path against a
// layered search: bundle archive, then bundle directory, then a global
// assets root discovered via environment overrides or Steam library
// scanning.
package assets

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kitsune-livewallpaper/scenepipe/engine/core"
	"github.com/kitsune-livewallpaper/scenepipe/engine/pkgfmt"
)

// SourceKind identifies which search layer produced a Resolved asset.
type SourceKind int

const (
	SourceArchiveEntry SourceKind = iota
	SourceBundleDir
	SourceGlobalRoot
)

func (s SourceKind) String() string {
	switch s {
	case SourceArchiveEntry:
		return "ArchiveEntry"
	case SourceBundleDir:
		return "BundleDir"
	case SourceGlobalRoot:
		return "GlobalRoot"
	default:
		return "Unknown"
	}
}

// Resolved is one successful resolution.
type Resolved struct {
	RequestPath  string
	ResolvedPath string
	Source       SourceKind
	Bytes        []byte
}

// Resolver holds the layered search path for one bundle.
type Resolver struct {
	root             string
	archive          *pkgfmt.Archive
	globalAssetsRoot string
}

// New discovers the archive (if any) and the global assets root for the
// bundle at root.
func New(root string) (*Resolver, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, core.WrapIo("stat", root, err)
	}

	var archive *pkgfmt.Archive
	for _, name := range []string{"scene.pkg", "gifscene.pkg"} {
		p := filepath.Join(root, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			a, err := pkgfmt.Parse(p)
			if err != nil {
				return nil, err
			}
			archive = a
			break
		}
	}

	return &Resolver{
		root:             root,
		archive:          archive,
		globalAssetsRoot: findGlobalAssetsRoot(root),
	}, nil
}

// Archive exposes the parsed bundle archive, if present.
func (r *Resolver) Archive() *pkgfmt.Archive { return r.archive }

// Root returns the bundle directory this resolver was opened against.
func (r *Resolver) Root() string { return r.root }

// GlobalAssetsRoot returns the discovered global assets directory, if any.
func (r *Resolver) GlobalAssetsRoot() string { return r.globalAssetsRoot }

// normalizeRelPath trims, converts backslashes, and collapses . / ..
// segments (popping the last component on ..). An all-empty result
// returns "", ok=false.
func normalizeRelPath(raw string) (string, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), "\\", "/")
	if s == "" {
		return "", false
	}

	parts := strings.Split(s, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		switch p {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, p)
		}
	}

	if len(out) == 0 {
		return "", false
	}
	return strings.Join(out, "/"), true
}

// Resolve tries the archive, then the bundle directory, then the global
// assets root (retrying without a leading "assets/" prefix).
func (r *Resolver) Resolve(requestPath string) (*Resolved, bool) {
	rel, ok := normalizeRelPath(requestPath)
	if !ok {
		return nil, false
	}

	if r.archive != nil {
		if entry, found := pkgfmt.FindEntry(r.archive, rel); found {
			if bytes, err := pkgfmt.ReadBytes(r.archive, entry); err == nil {
				return &Resolved{
					RequestPath:  rel,
					ResolvedPath: entry.Filename,
					Source:       SourceArchiveEntry,
					Bytes:        bytes,
				}, true
			}
		}
	}

	fsPath := filepath.Join(r.root, filepath.FromSlash(rel))
	if st, err := os.Stat(fsPath); err == nil && !st.IsDir() {
		if bytes, err := os.ReadFile(fsPath); err == nil {
			return &Resolved{
				RequestPath:  rel,
				ResolvedPath: rel,
				Source:       SourceBundleDir,
				Bytes:        bytes,
			}, true
		}
	}

	if r.globalAssetsRoot != "" {
		candidates := []string{rel}
		if strings.HasPrefix(rel, "assets/") {
			candidates = append(candidates, strings.TrimPrefix(rel, "assets/"))
		}

		for _, c := range candidates {
			candidatePath := filepath.Join(r.globalAssetsRoot, filepath.FromSlash(c))
			st, err := os.Stat(candidatePath)
			if err != nil || st.IsDir() {
				continue
			}
			bytes, err := os.ReadFile(candidatePath)
			if err != nil {
				continue
			}
			resolvedRel, err := filepath.Rel(r.globalAssetsRoot, candidatePath)
			if err != nil {
				resolvedRel = candidatePath
			}
			return &Resolved{
				RequestPath:  rel,
				ResolvedPath: filepath.ToSlash(resolvedRel),
				Source:       SourceGlobalRoot,
				Bytes:        bytes,
			}, true
		}
	}

	return nil, false
}

// ResolveFirst returns the first successful Resolve over candidates,
// used when a logical reference admits multiple extension/directory
// conventions.
func (r *Resolver) ResolveFirst(candidates []string) (*Resolved, bool) {
	for _, c := range candidates {
		if v, ok := r.Resolve(c); ok {
			return v, true
		}
	}
	return nil, false
}
