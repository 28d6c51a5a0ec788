package imagebuf

import (
	"fmt"
	"image"
)

// ExportTo packs the buffer into dst as 8-bit RGBA with opaque alpha.
// Each pixel goes through the colorspace's Encode, which clamps to [0, 255].
// stride may exceed Width*4; padding bytes are left untouched.
func (b *Buffer) ExportTo(dst []byte, stride int) error {
	if stride < b.Width*4 || len(dst) < (b.Height-1)*stride+b.Width*4 {
		return fmt.Errorf("%w: %d bytes, stride %d, for %dx%d",
			ErrShortBuffer, len(dst), stride, b.Width, b.Height)
	}

	c0, c1, c2 := b.Channels[0], b.Channels[1], b.Channels[2]
	for y := 0; y < b.Height; y++ {
		row := dst[y*stride:]
		for x := 0; x < b.Width; x++ {
			i := y*b.Width + x
			r, g, bl := b.cs.Encode([3]float64{c0[i], c1[i], c2[i]})
			p := row[x*4 : x*4+4]
			p[0], p[1], p[2], p[3] = r, g, bl, 0xff
		}
	}
	return nil
}

// ToRGBA exports the buffer into a new image.
func (b *Buffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	// Cannot fail: the destination is sized from the buffer.
	_ = b.ExportTo(img.Pix, img.Stride)
	return img
}

// SeedMaskFromBlack marks every pixel whose counterpart in src at the same
// (x, y) is exactly black. Only the region both buffers cover is considered.
// It returns the number of newly masked pixels. src may be b itself.
func (b *Buffer) SeedMaskFromBlack(src *Buffer) int {
	w := min(b.Width, src.Width)
	h := min(b.Height, src.Height)
	added := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl := src.cs.Encode(src.Pixel(y*src.Width + x))
			if r != 0 || g != 0 || bl != 0 {
				continue
			}
			i := y*b.Width + x
			if !b.Mask[i] {
				b.Mask[i] = true
				added++
			}
		}
	}
	return added
}

// SeedMaskFromImage is SeedMaskFromBlack for a decoded mask image.
func (b *Buffer) SeedMaskFromImage(img image.Image) int {
	rgba := ToRGBA(img)
	w := min(b.Width, rgba.Rect.Dx())
	h := min(b.Height, rgba.Rect.Dy())
	added := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := rgba.Pix[y*rgba.Stride+x*4:]
			if p[0] != 0 || p[1] != 0 || p[2] != 0 {
				continue
			}
			i := y*b.Width + x
			if !b.Mask[i] {
				b.Mask[i] = true
				added++
			}
		}
	}
	return added
}
