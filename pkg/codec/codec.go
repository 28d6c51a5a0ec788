// Package codec loads image files into buffers and writes buffers back out.
// Decoding failures degrade to a synthetic gradient so an interactive session
// always has something to work on.
package codec

import (
	"fmt"
	"image"
	_ "image/gif"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"diffinpaint/pkg/colorspace"
	"diffinpaint/pkg/imagebuf"
)

// Default size of the synthetic fallback image.
const (
	FallbackWidth  = 800
	FallbackHeight = 600
)

// Options controls how source images are loaded.
type Options struct {
	// Colorspace is the channel representation of loaded buffers.
	Colorspace colorspace.Colorspace

	// MaxDimension downscales images whose larger side exceeds it.
	// Zero disables resizing.
	MaxDimension int

	// FallbackWidth and FallbackHeight size the gradient used when the
	// source cannot be decoded. Zero selects the defaults.
	FallbackWidth  int
	FallbackHeight int

	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o Options) fallbackSize() (int, int) {
	w, h := o.FallbackWidth, o.FallbackHeight
	if w <= 0 {
		w = FallbackWidth
	}
	if h <= 0 {
		h = FallbackHeight
	}
	return w, h
}

// Decode reads any registered image format from path.
func Decode(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// Load decodes path into a new buffer with an empty mask.
func Load(path string, opts Options) (*imagebuf.Buffer, error) {
	img, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return imagebuf.FromImage(Fit(img, opts.MaxDimension), opts.Colorspace)
}

// LoadOrGradient is Load falling back to Gradient on any error.
func LoadOrGradient(path string, opts Options) *imagebuf.Buffer {
	buf, err := Load(path, opts)
	if err == nil {
		return buf
	}
	w, h := opts.fallbackSize()
	opts.logger().Warn("could not load image, generating synthetic gradient",
		"path", path, "err", err, "width", w, "height", h)

	buf, err = Gradient(w, h, opts.Colorspace)
	if err != nil {
		// Only reachable with a misconfigured fallback size.
		buf, _ = Gradient(FallbackWidth, FallbackHeight, opts.Colorspace)
	}
	return buf
}

// Gradient builds the deterministic fallback image: red grows with x,
// green with y, blue is constant 128.
func Gradient(width, height int, cs colorspace.Colorspace) (*imagebuf.Buffer, error) {
	buf, err := imagebuf.New(width, height, cs)
	if err != nil {
		return nil, err
	}
	cs = buf.Colorspace()
	_, isRGB := cs.(colorspace.RGB)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := float64(x) * 255 / float64(width)
			g := float64(y) * 255 / float64(height)
			c := [3]float64{r, g, 128}
			if !isRGB {
				c = cs.Decode(uint8(r), uint8(g), 128)
			}
			buf.SetPixel(y*width+x, c)
		}
	}
	return buf, nil
}

// Fit downscales img so neither side exceeds maxDim, keeping aspect ratio.
func Fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	scale := float64(maxDim) / float64(max(w, h))
	nw := max(1, int(float64(w)*scale+0.5))
	nh := max(1, int(float64(h)*scale+0.5))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// LoadMask seeds buf's mask from the black pixels of the image at path.
// It returns the number of newly masked pixels.
//
// With downscaling enabled (maxDim > 0) the mask is resampled to buf's size
// so it stays aligned with the downscaled source. Otherwise pixels map by
// (x, y) over the region both images cover.
func LoadMask(buf *imagebuf.Buffer, path string, maxDim int) (int, error) {
	img, err := Decode(path)
	if err != nil {
		return 0, err
	}
	if maxDim > 0 {
		img = resizeNearest(img, buf.Width, buf.Height)
	}
	return buf.SeedMaskFromImage(img), nil
}

// resizeNearest scales img to w x h without blending, so black stays
// exactly black.
func resizeNearest(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// SeedMask applies the optional mask source. An empty path with self set
// uses the buffer's own black pixels. Decode failures are logged and
// skipped; they never abort the session.
func SeedMask(buf *imagebuf.Buffer, path string, self bool, opts Options) int {
	log := opts.logger()
	switch {
	case path != "":
		n, err := LoadMask(buf, path, opts.MaxDimension)
		if err != nil {
			log.Warn("could not load mask image, skipping", "path", path, "err", err)
			return 0
		}
		log.Info("mask seeded from image", "path", path, "pixels", n)
		return n
	case self:
		n := buf.SeedMaskFromBlack(buf)
		log.Info("mask seeded from black pixels", "pixels", n)
		return n
	}
	return 0
}

// Save encodes buf to path. The format follows the file extension: .png,
// .jpg/.jpeg, .bmp or .tif/.tiff.
func Save(buf *imagebuf.Buffer, path string) error {
	encode, err := encoderFor(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	if err := encode(file, buf.ToRGBA()); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return file.Close()
}
