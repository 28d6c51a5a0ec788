package solver

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"diffinpaint/internal/models"
	"diffinpaint/pkg/imagebuf"
)

// ResidualStats summarizes how far the writable masked pixels are from
// satisfying the stencil equation of an algorithm.
type ResidualStats struct {
	// RMS is the root mean square of stencil(p) - p over all channels.
	RMS float64

	// Max is the largest absolute per-channel residual.
	Max float64

	// Pixels is the number of masked pixels the step would write.
	Pixels int
}

// Residual measures the stencil residual without modifying buf. It is a
// diagnostic; the driver never uses it to stop early.
func Residual(buf *imagebuf.Buffer, a models.Algorithm) ResidualStats {
	w, h := buf.Width, buf.Height
	m := Margin(a)
	stencil := laplace
	if a == models.Biharmonic {
		stencil = biharmonic
	}

	var diffs []float64
	pixels := 0
	for y := m; y < h-m; y++ {
		for x := m; x < w-m; x++ {
			i := y*w + x
			if !buf.Mask[i] {
				continue
			}
			pixels++
			for _, ch := range buf.Channels {
				diffs = append(diffs, stencil(ch, i, w)-ch[i])
			}
		}
	}
	if len(diffs) == 0 {
		return ResidualStats{}
	}

	return ResidualStats{
		RMS:    floats.Norm(diffs, 2) / math.Sqrt(float64(len(diffs))),
		Max:    floats.Norm(diffs, math.Inf(1)),
		Pixels: pixels,
	}
}
