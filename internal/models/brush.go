package models

// Brush describes a single stroke sample of the mask editor.
// It is not persisted; a new Brush is built for every pointer event.
type Brush struct {
	// X and Y are the disc center in buffer coordinates. They may lie
	// outside the buffer, in which case the disc is clipped.
	X, Y int

	// Radius is the disc radius in pixels. A pixel is inside the disc
	// when its squared distance to the center is at most Radius*Radius.
	Radius int

	// Clear zeroes the color of every covered pixel in addition to
	// marking it, so the hole is visible while the solver is idle.
	Clear bool
}

// Brush radius limits used by the interactive tool.
const (
	DefaultBrushRadius = 15
	MinBrushRadius     = 2
	MaxBrushRadius     = 100
	BrushRadiusStep    = 2
)

// ClampRadius limits r to [MinBrushRadius, MaxBrushRadius].
func ClampRadius(r int) int {
	if r < MinBrushRadius {
		return MinBrushRadius
	}
	if r > MaxBrushRadius {
		return MaxBrushRadius
	}
	return r
}

// Algorithm selects the relaxation model used by the solver.
type Algorithm int

const (
	// Laplace is the membrane model: minimizes gradient magnitude.
	Laplace Algorithm = iota

	// Biharmonic is the thin-plate model: minimizes curvature and keeps
	// the incoming gradient continuous across the mask boundary.
	Biharmonic
)

// String returns the configuration name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case Laplace:
		return "laplace"
	case Biharmonic:
		return "biharmonic"
	default:
		return "unknown"
	}
}

// Describe returns the human readable mode label shown in the window title.
func (a Algorithm) Describe() string {
	switch a {
	case Biharmonic:
		return "Biharmonic (Curvature)"
	default:
		return "Laplace (Gradient)"
	}
}

// Action is a discrete key command of the interactive tool.
type Action int

const (
	ToggleSolving Action = iota
	ToggleAlgorithm
	GrowBrush
	ShrinkBrush
	Reload
	Save
	Quit
)

// String returns the action name used in logs.
func (a Action) String() string {
	switch a {
	case ToggleSolving:
		return "toggle-solving"
	case ToggleAlgorithm:
		return "toggle-algorithm"
	case GrowBrush:
		return "grow-brush"
	case ShrinkBrush:
		return "shrink-brush"
	case Reload:
		return "reload"
	case Save:
		return "save"
	case Quit:
		return "quit"
	default:
		return "unknown"
	}
}
