package pkgfmt

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSizedString(t *testing.T, buf *[]byte, s string) {
	t.Helper()
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(s)))
	*buf = append(*buf, n[:]...)
	*buf = append(*buf, s...)
}

func writeUint32(buf *[]byte, v uint32) {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], v)
	*buf = append(*buf, n[:]...)
}

// buildTestPkg constructs the S1 archive literally described in the spec:
// header "PKGV0001", two entries a.txt/b.txt over data block "ABCDE".
func buildTestPkg(t *testing.T) string {
	t.Helper()
	var buf []byte
	writeSizedString(t, &buf, "PKGV0001")
	writeUint32(&buf, 2)
	writeSizedString(t, &buf, "a.txt")
	writeUint32(&buf, 0)
	writeUint32(&buf, 3)
	writeSizedString(t, &buf, "b.txt")
	writeUint32(&buf, 3)
	writeUint32(&buf, 2)
	buf = append(buf, "ABCDE"...)

	path := filepath.Join(t.TempDir(), "scene.pkg")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestArchiveRoundTrip(t *testing.T) {
	path := buildTestPkg(t)

	a, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, 2, len(a.Entries))

	entry, ok := FindEntry(a, "A.TXT")
	require.True(t, ok)
	require.EqualValues(t, 0, entry.Offset)

	bEntry, ok := FindEntry(a, "b.txt")
	require.True(t, ok)
	bytes, err := ReadBytes(a, bEntry)
	require.NoError(t, err)
	require.Equal(t, "DE", string(bytes))
}

func TestParseRejectsBadHeader(t *testing.T) {
	var buf []byte
	writeSizedString(t, &buf, "NOPE0001")
	writeUint32(&buf, 0)
	path := filepath.Join(t.TempDir(), "bad.pkg")
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	_, err := Parse(path)
	require.Error(t, err)
}

func TestParseIsIdempotent(t *testing.T) {
	path := buildTestPkg(t)

	a1, err := Parse(path)
	require.NoError(t, err)
	a2, err := Parse(path)
	require.NoError(t, err)

	require.Equal(t, a1.BaseOffset, a2.BaseOffset)
	require.Equal(t, a1.Entries, a2.Entries)
}

func TestReadBytesLengthMatchesEntry(t *testing.T) {
	path := buildTestPkg(t)
	a, err := Parse(path)
	require.NoError(t, err)

	for _, e := range a.Entries {
		bytes, err := ReadBytes(a, e)
		require.NoError(t, err)
		require.Equal(t, int(e.Length), len(bytes))
	}
}

func TestExtractToWritesFile(t *testing.T) {
	path := buildTestPkg(t)
	a, err := Parse(path)
	require.NoError(t, err)

	entry, ok := FindEntry(a, "a.txt")
	require.True(t, ok)

	dir := t.TempDir()
	out, err := ExtractTo(a, entry, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "ABC", string(data))
}

func TestBestVideoEntryPrefersNonPreviewMP4(t *testing.T) {
	a := &Archive{
		Entries: []Entry{
			{Filename: "preview.gif", Length: 10},
			{Filename: "video/main.webm", Length: 20},
			{Filename: "video/main.mp4", Length: 30},
		},
	}

	best, ok := BestVideoEntry(a, false)
	require.True(t, ok)
	require.Equal(t, "video/main.mp4", best.Filename)
}

func TestBestVideoEntryAllowsPreviewFallback(t *testing.T) {
	a := &Archive{
		Entries: []Entry{
			{Filename: "thumbnail.mp4", Length: 10},
		},
	}

	_, ok := BestVideoEntry(a, false)
	require.False(t, ok)

	best, ok := BestVideoEntry(a, true)
	require.True(t, ok)
	require.Equal(t, "thumbnail.mp4", best.Filename)
}
