// Package imagebuf holds the pixel data model shared by the brush, the
// solvers and the presenter: three float channel planes plus a mask plane.
package imagebuf

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"diffinpaint/pkg/colorspace"
)

var (
	// ErrInvalidDimensions is returned when a buffer would have a
	// non-positive width or height.
	ErrInvalidDimensions = errors.New("image dimensions must be positive")

	// ErrShortBuffer is returned when a pixel source or destination is too
	// small for the declared dimensions and stride.
	ErrShortBuffer = errors.New("pixel buffer too small")
)

// Buffer is a multi-channel float image with a reconstruction mask.
//
// Channels and Mask are row-major with index y*Width+x and always hold
// exactly Width*Height entries. Channel values are stored unclamped in the
// representation chosen by the buffer's colorspace; clamping happens only in
// ExportTo.
type Buffer struct {
	Width  int
	Height int

	// Channels are the three color planes (c0, c1, c2).
	Channels [3][]float64

	// Mask marks pixels to reconstruct. Fixed (false) pixels are boundary
	// data and are never written by a solver step.
	Mask []bool

	cs colorspace.Colorspace
}

// New allocates a buffer with all-zero color and an empty mask.
// A nil colorspace selects RGB.
func New(width, height int, cs colorspace.Colorspace) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if cs == nil {
		cs = colorspace.RGB{}
	}
	n := width * height
	b := &Buffer{
		Width:  width,
		Height: height,
		Mask:   make([]bool, n),
		cs:     cs,
	}
	for c := range b.Channels {
		b.Channels[c] = make([]float64, n)
	}
	return b, nil
}

// FromRGBA converts 8-bit RGBA pixels into a new buffer. Alpha is ignored.
// stride is the distance in bytes between rows and must be at least width*4.
func FromRGBA(width, height int, pix []byte, stride int, cs colorspace.Colorspace) (*Buffer, error) {
	b, err := New(width, height, cs)
	if err != nil {
		return nil, err
	}
	if stride < width*4 || len(pix) < (height-1)*stride+width*4 {
		return nil, fmt.Errorf("%w: %d bytes, stride %d, for %dx%d",
			ErrShortBuffer, len(pix), stride, width, height)
	}

	for y := 0; y < height; y++ {
		row := pix[y*stride:]
		for x := 0; x < width; x++ {
			p := row[x*4 : x*4+4]
			c := b.cs.Decode(p[0], p[1], p[2])
			i := y*width + x
			b.Channels[0][i] = c[0]
			b.Channels[1][i] = c[1]
			b.Channels[2][i] = c[2]
		}
	}
	return b, nil
}

// FromImage converts any decoded image into a buffer.
func FromImage(img image.Image, cs colorspace.Colorspace) (*Buffer, error) {
	rgba := ToRGBA(img)
	r := rgba.Bounds()
	return FromRGBA(r.Dx(), r.Dy(), rgba.Pix, rgba.Stride, cs)
}

// ToRGBA returns img as a zero-origin *image.RGBA, copying only when needed.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

// Colorspace returns the channel representation fixed at construction.
func (b *Buffer) Colorspace() colorspace.Colorspace {
	return b.cs
}

// Len returns Width*Height.
func (b *Buffer) Len() int {
	return b.Width * b.Height
}

// Index returns the plane index of (x, y).
func (b *Buffer) Index(x, y int) int {
	return y*b.Width + x
}

// In reports whether (x, y) lies inside the buffer.
func (b *Buffer) In(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

// Pixel returns the three channel values at index i.
func (b *Buffer) Pixel(i int) [3]float64 {
	return [3]float64{b.Channels[0][i], b.Channels[1][i], b.Channels[2][i]}
}

// SetPixel overwrites the three channel values at index i.
func (b *Buffer) SetPixel(i int, c [3]float64) {
	b.Channels[0][i] = c[0]
	b.Channels[1][i] = c[1]
	b.Channels[2][i] = c[2]
}

// MaskedCount returns the number of pixels marked for reconstruction.
func (b *Buffer) MaskedCount() int {
	n := 0
	for _, m := range b.Mask {
		if m {
			n++
		}
	}
	return n
}

// Clone returns a deep copy sharing only the colorspace.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{
		Width:  b.Width,
		Height: b.Height,
		Mask:   append([]bool(nil), b.Mask...),
		cs:     b.cs,
	}
	for c := range b.Channels {
		out.Channels[c] = append([]float64(nil), b.Channels[c]...)
	}
	return out
}
