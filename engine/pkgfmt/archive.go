// Package pkgfmt parses the PKGV-tagged sectioned archive format used to
// bundle a wallpaper scene's manifests and assets into a single file
// (scene.pkg / gifscene.pkg).
package pkgfmt

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kitsune-livewallpaper/scenepipe/engine/core"
)

// Entry describes one archived file. Offset is relative to the archive's
// base offset (the stream position right after the entry table).
type Entry struct {
	Filename string
	Offset   uint32
	Length   uint32
}

// Archive is a parsed PKGV container. It holds no open file handle; reads
// reopen the backing file per the "no long-held handle" resource policy.
type Archive struct {
	Path       string
	Version    string
	BaseOffset int64
	Entries    []Entry
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readSizedString(r io.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// Parse opens and parses the archive at path. It fails with an
// *core.InvalidFormatError if the header is not PKGV-tagged.
func Parse(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapIo("open", path, err)
	}
	defer f.Close()

	header, err := readSizedString(f)
	if err != nil {
		return nil, core.WrapIo("read header", path, err)
	}
	if !strings.HasPrefix(header, "PKGV") {
		return nil, &core.InvalidFormatError{Path: path, Reason: "expected PKGV* header, got " + header}
	}

	fileCount, err := readUint32(f)
	if err != nil {
		return nil, core.WrapIo("read file_count", path, err)
	}

	entries := make([]Entry, 0, fileCount)
	for i := uint32(0); i < fileCount; i++ {
		name, err := readSizedString(f)
		if err != nil {
			return nil, core.WrapIo("read entry filename", path, err)
		}
		offset, err := readUint32(f)
		if err != nil {
			return nil, core.WrapIo("read entry offset", path, err)
		}
		length, err := readUint32(f)
		if err != nil {
			return nil, core.WrapIo("read entry length", path, err)
		}
		entries = append(entries, Entry{Filename: name, Offset: offset, Length: length})
	}

	baseOffset, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, core.WrapIo("tell", path, err)
	}

	return &Archive{
		Path:       path,
		Version:    header,
		BaseOffset: baseOffset,
		Entries:    entries,
	}, nil
}

// FindEntry looks up an entry by case-insensitive filename match.
func FindEntry(a *Archive, name string) (Entry, bool) {
	for _, e := range a.Entries {
		if strings.EqualFold(e.Filename, name) {
			return e, true
		}
	}
	return Entry{}, false
}

// ReadBytes seeks to base_offset+entry.Offset and reads exactly
// entry.Length bytes, reopening the archive file for this call.
func ReadBytes(a *Archive, e Entry) ([]byte, error) {
	f, err := os.Open(a.Path)
	if err != nil {
		return nil, core.WrapIo("open", a.Path, err)
	}
	defer f.Close()

	seekPos := a.BaseOffset + int64(e.Offset)
	if _, err := f.Seek(seekPos, io.SeekStart); err != nil {
		return nil, core.WrapIo("seek", a.Path, err)
	}

	out := make([]byte, e.Length)
	if _, err := io.ReadFull(f, out); err != nil {
		return nil, core.WrapIo("read entry bytes", a.Path, err)
	}
	return out, nil
}

// ExtractTo writes entry.Filename under cacheDir, creating parent
// directories as needed. It is idempotent but gives no atomicity
// guarantee: a concurrent reader may observe a partially written file.
func ExtractTo(a *Archive, e Entry, cacheDir string) (string, error) {
	bytes, err := ReadBytes(a, e)
	if err != nil {
		return "", err
	}

	outPath := filepath.Join(cacheDir, filepath.FromSlash(e.Filename))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", core.WrapIo("mkdir", filepath.Dir(outPath), err)
	}
	if err := os.WriteFile(outPath, bytes, 0o644); err != nil {
		return "", core.WrapIo("write", outPath, err)
	}
	return outPath, nil
}
