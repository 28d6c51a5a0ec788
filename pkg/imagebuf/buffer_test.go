package imagebuf

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diffinpaint/pkg/colorspace"
)

func TestNew(t *testing.T) {
	b, err := New(4, 3, nil)
	require.NoError(t, err)

	assert.Equal(t, 12, b.Len())
	for c := range b.Channels {
		assert.Len(t, b.Channels[c], 12)
	}
	assert.Len(t, b.Mask, 12)
	assert.Zero(t, b.MaskedCount())
	assert.Equal(t, "rgb", b.Colorspace().Name())
}

func TestNewInvalidDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 5}, {5, 0}, {-1, 3}, {0, 0}} {
		_, err := New(dims[0], dims[1], nil)
		assert.True(t, errors.Is(err, ErrInvalidDimensions), "%v", dims)
	}
}

func TestFromRGBAWithStride(t *testing.T) {
	// 2x2 image with 4 bytes of row padding.
	stride := 12
	pix := make([]byte, stride*2)
	copy(pix[0:], []byte{10, 20, 30, 255, 40, 50, 60, 0})
	copy(pix[stride:], []byte{70, 80, 90, 255, 100, 110, 120, 255})
	pix[8] = 99 // padding must be ignored

	b, err := FromRGBA(2, 2, pix, stride, colorspace.RGB{})
	require.NoError(t, err)

	assert.Equal(t, [3]float64{10, 20, 30}, b.Pixel(0))
	assert.Equal(t, [3]float64{40, 50, 60}, b.Pixel(1))
	assert.Equal(t, [3]float64{70, 80, 90}, b.Pixel(2))
	assert.Equal(t, [3]float64{100, 110, 120}, b.Pixel(3))
	assert.Zero(t, b.MaskedCount())
}

func TestFromRGBAShortBuffer(t *testing.T) {
	_, err := FromRGBA(2, 2, make([]byte, 15), 8, nil)
	assert.True(t, errors.Is(err, ErrShortBuffer))

	_, err = FromRGBA(2, 2, make([]byte, 64), 4, nil)
	assert.True(t, errors.Is(err, ErrShortBuffer), "stride below width*4")
}

func TestExportToClampsAndHonorsStride(t *testing.T) {
	b, err := New(2, 1, nil)
	require.NoError(t, err)
	b.SetPixel(0, [3]float64{-5, 128.7, 400})
	b.SetPixel(1, [3]float64{1, 2, 3})

	stride := 16
	dst := make([]byte, stride)
	for i := range dst {
		dst[i] = 0xAA
	}
	require.NoError(t, b.ExportTo(dst, stride))

	assert.Equal(t, []byte{0, 128, 255, 255, 1, 2, 3, 255}, dst[:8])
	assert.Equal(t, []byte{0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA}, dst[8:], "padding untouched")

	assert.Equal(t, [3]float64{-5, 128.7, 400}, b.Pixel(0), "export does not clamp the buffer")
}

func TestExportToShortBuffer(t *testing.T) {
	b, err := New(3, 3, nil)
	require.NoError(t, err)
	assert.True(t, errors.Is(b.ExportTo(make([]byte, 35), 12), ErrShortBuffer))
	assert.True(t, errors.Is(b.ExportTo(make([]byte, 100), 8), ErrShortBuffer))
}

func TestFromImageRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 8, 7))
	for y := 5; y < 7; y++ {
		for x := 5; x < 8; x++ {
			src.Set(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 20), B: 7, A: 255})
		}
	}

	b, err := FromImage(src, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, b.Width)
	assert.Equal(t, 2, b.Height)

	out := b.ToRGBA()
	assert.Equal(t, color.RGBA{R: 50, G: 100, B: 7, A: 255}, out.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 70, G: 120, B: 7, A: 255}, out.RGBAAt(2, 1))
}

func TestClone(t *testing.T) {
	b, err := New(2, 2, colorspace.HSLuv{})
	require.NoError(t, err)
	b.Mask[1] = true
	b.Channels[2][3] = 0.5

	c := b.Clone()
	c.Mask[0] = true
	c.Channels[2][3] = 0.9

	assert.False(t, b.Mask[0])
	assert.Equal(t, 0.5, b.Channels[2][3])
	assert.True(t, c.Mask[1])
	assert.Equal(t, "hsluv", c.Colorspace().Name())
}

func TestSeedMaskFromBlack(t *testing.T) {
	b, err := New(3, 3, nil)
	require.NoError(t, err)
	for i := 0; i < b.Len(); i++ {
		b.SetPixel(i, [3]float64{10, 10, 10})
	}
	b.Mask[0] = true

	// Smaller mask source: only the 2x2 overlap is considered.
	m, err := New(2, 2, nil)
	require.NoError(t, err)
	m.SetPixel(0, [3]float64{1, 1, 1})
	m.SetPixel(3, [3]float64{0, 1, 0})

	added := b.SeedMaskFromBlack(m)
	assert.Equal(t, 2, added)
	assert.Equal(t, []bool{
		true, true, false,
		true, false, false,
		false, false, false,
	}, b.Mask)
}

func TestSeedMaskFromImage(t *testing.T) {
	b, err := New(2, 2, nil)
	require.NoError(t, err)

	mask := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range mask.Pix {
		mask.Pix[i] = 255
	}
	mask.SetRGBA(1, 1, color.RGBA{A: 255})
	mask.SetRGBA(3, 3, color.RGBA{A: 255})

	assert.Equal(t, 1, b.SeedMaskFromImage(mask))
	assert.Equal(t, []bool{false, false, false, true}, b.Mask)
}
