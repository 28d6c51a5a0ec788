// Package brush edits the reconstruction mask of an image buffer.
//
// The mask only ever grows: there is no eraser, and clearing a hole requires
// reloading the buffer.
package brush

import (
	"diffinpaint/internal/models"
	"diffinpaint/pkg/imagebuf"
)

// Apply marks every in-bounds pixel of the disc described by b and returns
// how many pixels it covered. With b.Clear set, covered pixels also have
// their three channels zeroed.
func Apply(buf *imagebuf.Buffer, b models.Brush) int {
	if b.Radius < 0 {
		return 0
	}
	r2 := b.Radius * b.Radius

	x0, x1 := max(b.X-b.Radius, 0), min(b.X+b.Radius, buf.Width-1)
	y0, y1 := max(b.Y-b.Radius, 0), min(b.Y+b.Radius, buf.Height-1)

	covered := 0
	for y := y0; y <= y1; y++ {
		dy := y - b.Y
		for x := x0; x <= x1; x++ {
			dx := x - b.X
			if dx*dx+dy*dy > r2 {
				continue
			}
			i := y*buf.Width + x
			buf.Mask[i] = true
			if b.Clear {
				buf.Channels[0][i] = 0
				buf.Channels[1][i] = 0
				buf.Channels[2][i] = 0
			}
			covered++
		}
	}
	return covered
}

// ApplyAt is Apply with the brush given as plain arguments.
func ApplyAt(buf *imagebuf.Buffer, x, y, radius int, clear bool) int {
	return Apply(buf, models.Brush{X: x, Y: y, Radius: radius, Clear: clear})
}
