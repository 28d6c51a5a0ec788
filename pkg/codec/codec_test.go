package codec

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diffinpaint/pkg/colorspace"
	"diffinpaint/pkg/imagebuf"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func checker(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{R: 20, G: 40, B: 60, A: 255})
			}
		}
	}
	return img
}

func TestGradient(t *testing.T) {
	b, err := Gradient(800, 600, nil)
	require.NoError(t, err)

	assert.Equal(t, [3]float64{0, 0, 128}, b.Pixel(0))
	assert.Equal(t, [3]float64{400 * 255.0 / 800, 300 * 255.0 / 600, 128}, b.Pixel(b.Index(400, 300)))
	assert.Zero(t, b.MaskedCount())

	_, err = Gradient(0, 10, nil)
	assert.ErrorIs(t, err, imagebuf.ErrInvalidDimensions)
}

func TestGradientPerceptual(t *testing.T) {
	b, err := Gradient(16, 8, colorspace.HSLuv{})
	require.NoError(t, err)

	out := b.ToRGBA().RGBAAt(8, 4)
	assert.InDelta(t, 127, int(out.R), 1)
	assert.InDelta(t, 127, int(out.G), 1)
	assert.InDelta(t, 128, int(out.B), 1)
}

func TestLoadOrGradientFallback(t *testing.T) {
	b := LoadOrGradient(filepath.Join(t.TempDir(), "missing.png"), Options{
		FallbackWidth:  32,
		FallbackHeight: 16,
		Logger:         quiet,
	})
	require.NotNil(t, b)
	assert.Equal(t, 32, b.Width)
	assert.Equal(t, 16, b.Height)
}

func TestLoadOrGradientCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))

	b := LoadOrGradient(path, Options{Logger: quiet})
	assert.Equal(t, FallbackWidth, b.Width)
	assert.Equal(t, FallbackHeight, b.Height)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping file I/O test in short mode")
	}
	dir := t.TempDir()

	src, err := imagebuf.FromImage(checker(6, 4), nil)
	require.NoError(t, err)

	for _, name := range []string{"out.png", "out.bmp", "out.tiff"} {
		path := filepath.Join(dir, "nested", name)
		require.NoError(t, Save(src, path), name)

		got, err := Load(path, Options{})
		require.NoError(t, err, name)
		assert.Equal(t, src.Channels, got.Channels, name)
	}

	require.NoError(t, Save(src, filepath.Join(dir, "out.jpg")))
	assert.Error(t, Save(src, filepath.Join(dir, "out.xyz")))
	assert.False(t, SupportedOutput("a.gif"))
}

func TestLoadDownscales(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	writePNG(t, path, checker(200, 100))

	b, err := Load(path, Options{MaxDimension: 50})
	require.NoError(t, err)
	assert.Equal(t, 50, b.Width)
	assert.Equal(t, 25, b.Height)
}

func TestSeedMask(t *testing.T) {
	dir := t.TempDir()
	maskPath := filepath.Join(dir, "mask.png")

	mask := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range mask.Pix {
		mask.Pix[i] = 255
	}
	mask.SetRGBA(2, 1, color.RGBA{A: 255})
	writePNG(t, maskPath, mask)

	b, err := Gradient(4, 4, nil)
	require.NoError(t, err)
	opts := Options{Logger: quiet}

	assert.Equal(t, 1, SeedMask(b, maskPath, false, opts))
	assert.True(t, b.Mask[b.Index(2, 1)])

	assert.Zero(t, SeedMask(b, filepath.Join(dir, "nope.png"), false, opts), "missing mask is skipped")
	assert.Equal(t, 1, b.MaskedCount())

	// The gradient's (0,0) pixel is (0, 0, 128): not black.
	assert.Zero(t, SeedMask(b, "", true, opts))

	b.SetPixel(b.Index(3, 3), [3]float64{})
	assert.Equal(t, 1, SeedMask(b, "", true, opts))
	assert.True(t, b.Mask[b.Index(3, 3)])

	assert.Zero(t, SeedMask(b, "", false, opts))
}

// halfBlack returns a w x h mask whose left half is black.
func halfBlack(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.SetRGBA(x, y, color.RGBA{A: 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			}
		}
	}
	return img
}

func TestLoadMaskFollowsDownscaledSource(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "big.png")
	writePNG(t, srcPath, checker(200, 100))

	for _, size := range []image.Point{{200, 100}, {40, 20}} {
		maskPath := filepath.Join(dir, "mask.png")
		writePNG(t, maskPath, halfBlack(size.X, size.Y))

		b, err := Load(srcPath, Options{MaxDimension: 50})
		require.NoError(t, err)
		require.Equal(t, 50, b.Width)

		n, err := LoadMask(b, maskPath, 50)
		require.NoError(t, err)
		assert.Equal(t, 25*25, n, "mask %v", size)
		assert.True(t, b.Mask[b.Index(24, 24)], "mask %v", size)
		assert.False(t, b.Mask[b.Index(25, 0)], "mask %v", size)
	}
}

func TestLoadMaskWithoutDownscaleUsesOverlap(t *testing.T) {
	dir := t.TempDir()
	maskPath := filepath.Join(dir, "mask.png")
	writePNG(t, maskPath, halfBlack(40, 20))

	b, err := imagebuf.New(200, 100, nil)
	require.NoError(t, err)

	n, err := LoadMask(b, maskPath, 0)
	require.NoError(t, err)
	assert.Equal(t, 20*20, n)
	assert.True(t, b.Mask[b.Index(19, 19)])
	assert.False(t, b.Mask[b.Index(19, 20)])
}
