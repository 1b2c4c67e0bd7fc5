// Package texture decodes the proprietary TEX container format into a
// playable media payload or a PNG mipmap proxy.
package texture

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kitsune-livewallpaper/scenepipe/engine/core"
	"github.com/pierrec/lz4/v4"
)

type containerVersion int

const (
	texb0001 containerVersion = iota
	texb0002
	texb0003
	texb0004
)

// fifWebpAsMP4 mirrors the magic free-image-format id linux-wallpaperengine
// uses to flag an MP4 payload wrapped inside a TEXB0004 mipmap.
const fifWebpAsMP4 = 35

// DecodeResult is the output of a successful proxy extraction.
type DecodeResult struct {
	Path string
	Note string
}

func readExactly(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func readUint32(r io.Reader) (uint32, error) {
	b, err := readExactly(r, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func readInt32(r io.Reader) (int32, error) {
	v, err := readUint32(r)
	return int32(v), err
}

func readNullTerminatedString(r io.Reader) (string, error) {
	var out []byte
	one := make([]byte, 1)
	for {
		if _, err := io.ReadFull(r, one); err != nil {
			return "", err
		}
		if one[0] == 0 {
			break
		}
		out = append(out, one[0])
	}
	return string(out), nil
}

// ExtractPlayableProxy parses texPath's TEXV0005/TEXI0001 header, decodes
// (LZ4-decompressing where needed) the first mipmap of the first image,
// and writes a proxy file under outDir. On any structural surprise it
// falls back to a raw signature scan of the file (§4.2 Fallback).
func ExtractPlayableProxy(texPath string, outDir string) (*DecodeResult, error) {
	f, err := os.Open(texPath)
	if err != nil {
		return nil, core.WrapIo("open", texPath, err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	magic1, err := readExactly(r, 9)
	if err != nil || string(magic1) != "TEXV0005\x00" {
		return extractPayloadBySignature(texPath, outDir)
	}
	magic2, err := readExactly(r, 9)
	if err != nil || string(magic2) != "TEXI0001\x00" {
		return extractPayloadBySignature(texPath, outDir)
	}

	if _, err := readUint32(r); err != nil { // format
		return extractPayloadBySignature(texPath, outDir)
	}
	if _, err := readUint32(r); err != nil { // flags
		return extractPayloadBySignature(texPath, outDir)
	}
	textureWidth, err := readUint32(r)
	if err != nil {
		return extractPayloadBySignature(texPath, outDir)
	}
	textureHeight, err := readUint32(r)
	if err != nil {
		return extractPayloadBySignature(texPath, outDir)
	}
	if _, err := readUint32(r); err != nil { // width
		return extractPayloadBySignature(texPath, outDir)
	}
	if _, err := readUint32(r); err != nil { // height
		return extractPayloadBySignature(texPath, outDir)
	}
	if _, err := readUint32(r); err != nil { // unknown
		return extractPayloadBySignature(texPath, outDir)
	}

	texbMagic, err := readExactly(r, 9)
	if err != nil {
		return extractPayloadBySignature(texPath, outDir)
	}
	imageCount, err := readUint32(r)
	if err != nil {
		return extractPayloadBySignature(texPath, outDir)
	}

	var version containerVersion
	switch string(texbMagic) {
	case "TEXB0001\x00":
		version = texb0001
	case "TEXB0002\x00":
		version = texb0002
	case "TEXB0003\x00":
		version = texb0003
	case "TEXB0004\x00":
		version = texb0004
	default:
		return extractPayloadBySignature(texPath, outDir)
	}

	var note string
	if version == texb0003 {
		if _, err := readInt32(r); err != nil { // free_image
			return extractPayloadBySignature(texPath, outDir)
		}
	}
	if version == texb0004 {
		freeImage, err := readInt32(r)
		if err != nil {
			return extractPayloadBySignature(texPath, outDir)
		}
		isVideoMP4Raw, err := readUint32(r)
		if err != nil {
			return extractPayloadBySignature(texPath, outDir)
		}
		isVideoMP4 := isVideoMP4Raw == 1

		effectiveFIF := freeImage
		if freeImage == -1 && isVideoMP4 {
			effectiveFIF = fifWebpAsMP4
		}
		if freeImage != -1 && isVideoMP4 {
			note = "TEXB0004 free_image != -1 with is_video_mp4 == 1; treating as TEXB0003 per spec open question"
		}
		if effectiveFIF != fifWebpAsMP4 {
			version = texb0003
		}
	}

	if imageCount == 0 {
		return extractPayloadBySignature(texPath, outDir)
	}

	mipmapCount, err := readUint32(r)
	if err != nil {
		return extractPayloadBySignature(texPath, outDir)
	}
	if mipmapCount == 0 {
		return extractPayloadBySignature(texPath, outDir)
	}

	if version == texb0004 {
		if _, err := readUint32(r); err != nil {
			return extractPayloadBySignature(texPath, outDir)
		}
		if _, err := readUint32(r); err != nil {
			return extractPayloadBySignature(texPath, outDir)
		}
		if _, err := readNullTerminatedString(r); err != nil {
			return extractPayloadBySignature(texPath, outDir)
		}
		if _, err := readUint32(r); err != nil {
			return extractPayloadBySignature(texPath, outDir)
		}
	}

	mipWidth, err := readUint32(r)
	if err != nil {
		return extractPayloadBySignature(texPath, outDir)
	}
	mipHeight, err := readUint32(r)
	if err != nil {
		return extractPayloadBySignature(texPath, outDir)
	}

	var compression uint32
	var uncompressedSize int32
	switch version {
	case texb0001:
		compression, uncompressedSize = 0, 0
	default:
		compression, err = readUint32(r)
		if err != nil {
			return extractPayloadBySignature(texPath, outDir)
		}
		uncompressedSize, err = readInt32(r)
		if err != nil {
			return extractPayloadBySignature(texPath, outDir)
		}
	}

	compressedSize, err := readInt32(r)
	if err != nil {
		return extractPayloadBySignature(texPath, outDir)
	}

	if compression == 0 {
		uncompressedSize = compressedSize
	}
	if uncompressedSize <= 0 {
		return extractPayloadBySignature(texPath, outDir)
	}

	var payload []byte
	if compression != 0 {
		size := compressedSize
		if size < 0 {
			size = 0
		}
		compressed, err := readExactly(r, int(size))
		if err != nil {
			return extractPayloadBySignature(texPath, outDir)
		}
		decompressed := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(compressed, decompressed)
		if err != nil || n != int(uncompressedSize) {
			return extractPayloadBySignature(texPath, outDir)
		}
		payload = decompressed
	} else {
		raw, err := readExactly(r, int(uncompressedSize))
		if err != nil {
			return extractPayloadBySignature(texPath, outDir)
		}
		payload = raw
	}

	if ext := detectPayloadExt(payload); ext != "" {
		path, err := writeProxyBytes(texPath, outDir, "_proxy."+ext, payload)
		if err != nil {
			return nil, err
		}
		return &DecodeResult{Path: path, Note: note}, nil
	}

	w, h := mipWidth, mipHeight
	if w == 0 {
		w = textureWidth
	}
	if h == 0 {
		h = textureHeight
	}
	if png, ok := encodeRawToPNG(payload, w, h); ok {
		path, err := writeProxyBytes(texPath, outDir, "_proxy_raw.png", png)
		if err != nil {
			return nil, err
		}
		return &DecodeResult{Path: path, Note: note}, nil
	}

	return extractPayloadBySignature(texPath, outDir)
}

func writeProxyBytes(texPath, outDir, suffix string, payload []byte) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", core.WrapIo("mkdir", outDir, err)
	}
	stem := strings.ReplaceAll(stemOf(texPath), " ", "_")
	out := filepath.Join(outDir, stem+suffix)
	if err := os.WriteFile(out, payload, 0o644); err != nil {
		return "", core.WrapIo("write", out, err)
	}
	return out, nil
}

func stemOf(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}

// detectPayloadExt inspects the first bytes of decoded mipmap data and
// returns a short extension for a recognized media container, or "".
func detectPayloadExt(data []byte) string {
	switch {
	case len(data) >= 12 && string(data[4:8]) == "ftyp":
		return "mp4"
	case len(data) >= 4 && bytes.Equal(data[0:4], []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return "webm"
	case len(data) >= 8 && bytes.Equal(data[0:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return "png"
	case len(data) >= 3 && bytes.Equal(data[0:3], []byte{0xFF, 0xD8, 0xFF}):
		return "jpg"
	case len(data) >= 6 && (string(data[0:6]) == "GIF87a" || string(data[0:6]) == "GIF89a"):
		return "gif"
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "webp"
	default:
		return ""
	}
}

// encodeRawToPNG applies the raw pixel-grid fallback heuristics: RGBA if
// at least 4 bytes/pixel are present, RGB at 3, 16-bit grayscale (MSB
// channel only) at 2, else 8-bit grayscale.
func encodeRawToPNG(payload []byte, width, height uint32) ([]byte, bool) {
	pixels := int(width) * int(height)
	if pixels <= 0 {
		return nil, false
	}

	var img image.Image
	switch {
	case len(payload) >= pixels*4:
		rgba := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
		copy(rgba.Pix, payload[:pixels*4])
		img = rgba
	case len(payload) >= pixels*3:
		rgba := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
		for i := 0; i < pixels; i++ {
			rgba.Pix[i*4+0] = payload[i*3+0]
			rgba.Pix[i*4+1] = payload[i*3+1]
			rgba.Pix[i*4+2] = payload[i*3+2]
			rgba.Pix[i*4+3] = 0xFF
		}
		img = rgba
	case len(payload) >= pixels*2:
		gray := image.NewGray(image.Rect(0, 0, int(width), int(height)))
		for i := 0; i < pixels; i++ {
			gray.Pix[i] = payload[i*2+1]
		}
		img = gray
	case len(payload) >= pixels:
		gray := image.NewGray(image.Rect(0, 0, int(width), int(height)))
		copy(gray.Pix, payload[:pixels])
		img = gray
	default:
		return nil, false
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

// extractPayloadBySignature scans the raw file bytes for embedded media
// signatures, in the §4.2 priority order, and extracts the first hit.
func extractPayloadBySignature(texPath, outDir string) (*DecodeResult, error) {
	data, err := os.ReadFile(texPath)
	if err != nil {
		return nil, core.WrapIo("read", texPath, err)
	}

	pngSig := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	jpgSig := []byte{0xFF, 0xD8, 0xFF}
	gif87 := []byte("GIF87a")
	gif89 := []byte("GIF89a")
	webmSig := []byte{0x1A, 0x45, 0xDF, 0xA3}
	riff := []byte("RIFF")
	webp := []byte("WEBP")
	iend := []byte("IEND")

	var idx int
	var ext string
	var payload []byte

	if i := bytes.Index(data, pngSig); i >= 0 {
		idx, ext = i, "png"
		if e := bytes.Index(data[i:], iend); e >= 0 {
			end := i + e + len(iend) + 4
			if end > len(data) {
				end = len(data)
			}
			payload = data[i:end]
		} else {
			payload = data[i:]
		}
	} else if i := bytes.Index(data, jpgSig); i >= 0 {
		idx, ext, payload = i, "jpg", data[i:]
	} else if i := firstIndexEither(data, gif89, gif87); i >= 0 {
		idx, ext, payload = i, "gif", data[i:]
	} else if i := bytes.Index(data, webmSig); i >= 0 {
		idx, ext, payload = i, "webm", data[i:]
	} else if i := bytes.Index(data, riff); i >= 0 {
		probeEnd := i + 64
		if probeEnd > len(data) {
			probeEnd = len(data)
		}
		if bytes.Index(data[i:probeEnd], webp) >= 0 {
			idx, ext, payload = i, "webp", data[i:]
		}
	}
	if ext == "" {
		for i := 0; i+8 <= len(data); i++ {
			if string(data[i+4:i+8]) == "ftyp" {
				idx, ext, payload = i, "mp4", data[i:]
				break
			}
		}
	}
	_ = idx

	if ext == "" {
		return nil, nil
	}

	path, err := writeProxyBytes(texPath, outDir, fmt.Sprintf("_proxy_sig.%s", ext), payload)
	if err != nil {
		return nil, err
	}
	return &DecodeResult{Path: path}, nil
}

func firstIndexEither(data, a, b []byte) int {
	ia := bytes.Index(data, a)
	ib := bytes.Index(data, b)
	if ia < 0 {
		return ib
	}
	if ib < 0 {
		return ia
	}
	if ia < ib {
		return ia
	}
	return ib
}
