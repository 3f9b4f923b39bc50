package processing

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestImage(t *testing.T, path string, width, height int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	switch filepath.Ext(path) {
	case ".png":
		require.NoError(t, png.Encode(f, img))
	default:
		require.NoError(t, jpeg.Encode(f, img, &jpeg.Options{Quality: 90}))
	}
}

func decodeDims(t *testing.T, path string) (int, int) {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestProcessImage_LargeImageIsDownscaled(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "large.jpg")
	thumb := filepath.Join(dir, "large_thumb.jpg")
	writeTestImage(t, src, 4000, 3000)

	meta, err := ProcessImage(src, thumb)
	require.NoError(t, err)

	assert.LessOrEqual(t, meta.Width, 1200)
	assert.LessOrEqual(t, meta.Height, 800)

	// 4:3 source fit into 1200x800 is bounded by height.
	assert.Equal(t, 800, meta.Height)

	w, h := decodeDims(t, src)
	assert.Equal(t, meta.Width, w)
	assert.Equal(t, meta.Height, h)
}

func TestProcessImage_SmallImageKeepsDimensions(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "small.jpg")
	thumb := filepath.Join(dir, "small_thumb.jpg")
	writeTestImage(t, src, 640, 480)

	meta, err := ProcessImage(src, thumb)
	require.NoError(t, err)

	assert.Equal(t, 640, meta.Width)
	assert.Equal(t, 480, meta.Height)
}

func TestProcessImage_ThumbnailIsCover(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "pano.jpg")
	thumb := filepath.Join(dir, "pano_thumb.jpg")
	writeTestImage(t, src, 3000, 1000)

	_, err := ProcessImage(src, thumb)
	require.NoError(t, err)

	w, h := decodeDims(t, thumb)
	assert.Equal(t, 300, w)
	assert.Equal(t, 200, h)
}

func TestProcessImage_PNGIsReencodedInPlace(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "shot.png")
	thumb := filepath.Join(dir, "shot_thumb.jpg")
	writeTestImage(t, src, 1600, 900)

	meta, err := ProcessImage(src, thumb)
	require.NoError(t, err)
	assert.LessOrEqual(t, meta.Width, 1200)

	// The rendition keeps the .png name but holds JPEG bytes.
	f, err := os.Open(src)
	require.NoError(t, err)
	defer f.Close()

	_, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestProcessImage_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "corrupt.jpg")
	require.NoError(t, os.WriteFile(src, []byte("not an image"), 0o644))

	_, err := ProcessImage(src, filepath.Join(dir, "corrupt_thumb.jpg"))
	assert.Error(t, err)
}
