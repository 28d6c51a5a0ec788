package interpolation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diffinpaint/pkg/imagebuf"
)

// createTestBuffer creates a buffer whose left half is 10 and right half 200
func createTestBuffer(t *testing.T, width, height int) *imagebuf.Buffer {
	t.Helper()
	b, err := imagebuf.New(width, height, nil)
	require.NoError(t, err)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := 10.0
			if x >= width/2 {
				v = 200.0
			}
			b.SetPixel(y*width+x, [3]float64{v, v, v})
		}
	}
	return b
}

// TestSeedNearest verifies that masked pixels take the value of the closest fixed pixel
func TestSeedNearest(t *testing.T) {
	b := createTestBuffer(t, 10, 5)

	// Mask columns 3..6 on row 2
	for x := 3; x <= 6; x++ {
		i := 2*10 + x
		b.Mask[i] = true
		b.SetPixel(i, [3]float64{})
	}

	assert.Equal(t, 4, SeedNearest(b))

	// Columns 3 and 4 are closest to the pixels above and below them (left
	// half), columns 5 and 6 to the right half.
	expected := map[int]float64{3: 10, 4: 10, 5: 200, 6: 200}
	for x, want := range expected {
		assert.Equal(t, want, b.Channels[0][2*10+x], "pixel (%d,2)", x)
	}

	assert.Equal(t, 4, b.MaskedCount(), "mask unchanged")
}

// TestSeedNearestKeepsFixedPixels verifies that fixed pixels are never written
func TestSeedNearestKeepsFixedPixels(t *testing.T) {
	b := createTestBuffer(t, 8, 8)
	for y := 2; y < 6; y++ {
		for x := 2; x < 6; x++ {
			b.Mask[y*8+x] = true
		}
	}
	before := b.Clone()

	SeedNearest(b)

	for i := 0; i < b.Len(); i++ {
		if before.Mask[i] {
			continue
		}
		assert.Equal(t, before.Pixel(i), b.Pixel(i), "fixed pixel %d", i)
	}
}

// TestSeedNearestAllMasked verifies the no-op case with no fixed pixels
func TestSeedNearestAllMasked(t *testing.T) {
	b := createTestBuffer(t, 4, 4)
	for i := range b.Mask {
		b.Mask[i] = true
	}

	assert.Zero(t, SeedNearest(b))
	assert.Nil(t, NewNearestFixed(b))
}

// TestNearestDistance verifies the squared distance returned by the index
func TestNearestDistance(t *testing.T) {
	b := createTestBuffer(t, 6, 6)
	for i := range b.Mask {
		b.Mask[i] = true
	}
	b.Mask[1*6+1] = false

	idx := NewNearestFixed(b)
	require.NotNil(t, idx)
	require.Equal(t, 1, idx.Len())

	i, d := idx.Nearest(4, 5)
	assert.Equal(t, 7, i)
	assert.Equal(t, 25.0, d)
}
