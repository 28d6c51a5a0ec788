// Package colorspace provides the channel representations an image buffer
// can be built in. The solvers only ever see three anonymous float channels;
// which variant produced them decides what "smooth" means perceptually.
package colorspace

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrUnknown is returned by Parse for an unrecognized colorspace name.
var ErrUnknown = errors.New("unknown colorspace")

// Colorspace converts between 8-bit RGB and three float channels.
// Encode must clamp its result to the displayable range.
type Colorspace interface {
	Name() string
	Decode(r, g, b uint8) [3]float64
	Encode(c [3]float64) (r, g, b uint8)
}

// Parse resolves a configuration name into a Colorspace.
func Parse(name string) (Colorspace, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "rgb":
		return RGB{}, nil
	case "hsluv":
		return HSLuv{}, nil
	case "lab":
		return Lab{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
}

// Names lists the accepted colorspace names.
func Names() []string {
	return []string{"rgb", "hsluv", "lab"}
}

// RGB stores the 8-bit values directly, channels in [0, 255].
type RGB struct{}

// Name implements Colorspace.
func (RGB) Name() string { return "rgb" }

// Decode returns the 8-bit values unchanged as floats.
func (RGB) Decode(r, g, b uint8) [3]float64 {
	return [3]float64{float64(r), float64(g), float64(b)}
}

// Encode truncates each channel to [0, 255]; NaN becomes 0.
func (RGB) Encode(c [3]float64) (r, g, b uint8) {
	return clamp8(c[0]), clamp8(c[1]), clamp8(c[2])
}

// HSLuv stores hue in degrees [0, 360) and saturation and lightness in [0, 1].
type HSLuv struct{}

// Name implements Colorspace.
func (HSLuv) Name() string { return "hsluv" }

// Decode converts sRGB to HSLuv.
func (HSLuv) Decode(r, g, b uint8) [3]float64 {
	h, s, l := fromRGB8(r, g, b).HSLuv()
	return [3]float64{h, s, l}
}

// Encode converts back to sRGB, clamping out-of-gamut colors.
func (HSLuv) Encode(c [3]float64) (r, g, b uint8) {
	return toRGB8(colorful.HSLuv(c[0], c[1], c[2]))
}

// Lab stores CIE L*a*b* (D65) as produced by go-colorful.
type Lab struct{}

// Name implements Colorspace.
func (Lab) Name() string { return "lab" }

// Decode converts sRGB to L*a*b*.
func (Lab) Decode(r, g, b uint8) [3]float64 {
	l, a, bb := fromRGB8(r, g, b).Lab()
	return [3]float64{l, a, bb}
}

// Encode converts back to sRGB, clamping out-of-gamut colors.
func (Lab) Encode(c [3]float64) (r, g, b uint8) {
	return toRGB8(colorful.Lab(c[0], c[1], c[2]))
}

func fromRGB8(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// toRGB8 clamps out-of-gamut results before quantizing. NaN maps to 0.
func toRGB8(c colorful.Color) (r, g, b uint8) {
	c = colorful.Color{R: finite(c.R), G: finite(c.G), B: finite(c.B)}.Clamped()
	return c.RGB255()
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// clamp8 truncates toward zero after clamping, matching a plain integer cast.
func clamp8(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
