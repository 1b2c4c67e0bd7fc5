package texture

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSignatureScanExtractsEmbeddedPNG(t *testing.T) {
	pngBytes := buildPNG(t)

	garbage := bytes.Repeat([]byte{0xAA}, 48)
	trailer := bytes.Repeat([]byte{0x55}, 16)

	data := append(append(append([]byte{}, garbage...), pngBytes...), trailer...)

	dir := t.TempDir()
	texPath := filepath.Join(dir, "weird.tex")
	require.NoError(t, os.WriteFile(texPath, data, 0o644))

	result, err := extractPayloadBySignature(texPath, filepath.Join(dir, "out"))
	require.NoError(t, err)
	require.NotNil(t, result)

	got, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	require.Equal(t, pngBytes, got)
}

func TestDetectPayloadExt(t *testing.T) {
	require.Equal(t, "png", detectPayloadExt(buildPNG(t)))
	require.Equal(t, "jpg", detectPayloadExt([]byte{0xFF, 0xD8, 0xFF, 0x00}))
	require.Equal(t, "gif", detectPayloadExt([]byte("GIF89a....")))
	require.Equal(t, "", detectPayloadExt([]byte{0x01, 0x02}))
}

func TestEncodeRawToPNGRGBAThreshold(t *testing.T) {
	payload := bytes.Repeat([]byte{0x10, 0x20, 0x30, 0xFF}, 2*2)
	png, ok := encodeRawToPNG(payload, 2, 2)
	require.True(t, ok)
	require.NotEmpty(t, png)
}

func TestEncodeRawToPNGTooFewBytes(t *testing.T) {
	_, ok := encodeRawToPNG([]byte{0x01}, 4, 4)
	require.False(t, ok)
}
