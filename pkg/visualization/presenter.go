// Package visualization presents an inpainting session in an ebiten window.
package visualization

import (
	"github.com/hajimehoshi/ebiten/v2"

	"diffinpaint/pkg/imagebuf"
)

// Presenter owns the GPU texture a buffer is shown through and the RGBA
// scratch it is uploaded from. Both are reallocated when the buffer
// dimensions change, as after a reload.
type Presenter struct {
	tex  *ebiten.Image
	pix  []byte
	w, h int
}

// NewPresenter returns an empty presenter; the first Upload allocates.
func NewPresenter() *Presenter {
	return &Presenter{}
}

// Upload exports buf into the texture.
func (p *Presenter) Upload(buf *imagebuf.Buffer) error {
	if p.tex == nil || p.w != buf.Width || p.h != buf.Height {
		if p.tex != nil {
			p.tex.Deallocate()
		}
		p.w, p.h = buf.Width, buf.Height
		p.tex = ebiten.NewImage(p.w, p.h)
		p.pix = make([]byte, 4*p.w*p.h)
	}
	if err := buf.ExportTo(p.pix, 4*p.w); err != nil {
		return err
	}
	p.tex.WritePixels(p.pix)
	return nil
}

// Draw blits the texture at the origin of dst. Nothing is drawn before the
// first Upload.
func (p *Presenter) Draw(dst *ebiten.Image) {
	if p.tex == nil {
		return
	}
	dst.DrawImage(p.tex, nil)
}

// Size returns the dimensions of the uploaded texture.
func (p *Presenter) Size() (int, int) { return p.w, p.h }
