package brush

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diffinpaint/internal/models"
	"diffinpaint/pkg/imagebuf"
)

func newFilled(t *testing.T, w, h int, v float64) *imagebuf.Buffer {
	t.Helper()
	b, err := imagebuf.New(w, h, nil)
	require.NoError(t, err)
	for i := 0; i < b.Len(); i++ {
		b.SetPixel(i, [3]float64{v, v, v})
	}
	return b
}

func maskedSet(b *imagebuf.Buffer) map[[2]int]bool {
	set := map[[2]int]bool{}
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if b.Mask[b.Index(x, y)] {
				set[[2]int{x, y}] = true
			}
		}
	}
	return set
}

func TestRadiusOneDisc(t *testing.T) {
	b := newFilled(t, 5, 5, 1)

	n := ApplyAt(b, 2, 2, 1, false)

	assert.Equal(t, 5, n)
	assert.Equal(t, map[[2]int]bool{
		{2, 2}: true, {1, 2}: true, {3, 2}: true, {2, 1}: true, {2, 3}: true,
	}, maskedSet(b))
	assert.Equal(t, [3]float64{1, 1, 1}, b.Pixel(b.Index(2, 2)), "no clear keeps color")
}

func TestDiscContainment(t *testing.T) {
	cases := []models.Brush{
		{X: 10, Y: 7, Radius: 4},
		{X: 0, Y: 0, Radius: 3},
		{X: 19, Y: 14, Radius: 5},
		{X: -3, Y: 5, Radius: 4},
		{X: 25, Y: 30, Radius: 2},
		{X: 6, Y: 6, Radius: 0},
	}
	for _, c := range cases {
		b := newFilled(t, 20, 15, 0)
		Apply(b, c)

		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				dx, dy := x-c.X, y-c.Y
				want := dx*dx+dy*dy <= c.Radius*c.Radius
				assert.Equal(t, want, b.Mask[b.Index(x, y)], "brush %+v at (%d,%d)", c, x, y)
			}
		}
	}
}

func TestClearZeroesOnlyTheDisc(t *testing.T) {
	b := newFilled(t, 9, 9, 42)

	ApplyAt(b, 4, 4, 2, true)

	for i := 0; i < b.Len(); i++ {
		if b.Mask[i] {
			assert.Equal(t, [3]float64{}, b.Pixel(i))
		} else {
			assert.Equal(t, [3]float64{42, 42, 42}, b.Pixel(i))
		}
	}
}

func TestMonotonic(t *testing.T) {
	b := newFilled(t, 16, 16, 5)

	ApplyAt(b, 4, 4, 3, true)
	first := maskedSet(b)

	ApplyAt(b, 6, 5, 2, false)
	ApplyAt(b, 5, 5, 0, false)
	second := maskedSet(b)

	for p := range first {
		assert.True(t, second[p], "pixel %v unmasked by a later stroke", p)
	}
	assert.GreaterOrEqual(t, len(second), len(first))
}

func TestNegativeRadius(t *testing.T) {
	b := newFilled(t, 4, 4, 0)
	assert.Zero(t, ApplyAt(b, 2, 2, -1, true))
	assert.Zero(t, b.MaskedCount())
}

func TestOffscreen(t *testing.T) {
	b := newFilled(t, 4, 4, 0)
	assert.Zero(t, ApplyAt(b, 100, -100, 5, true))
	assert.Zero(t, b.MaskedCount())
}
