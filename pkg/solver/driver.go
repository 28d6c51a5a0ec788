package solver

import (
	"context"
	"log/slog"

	"diffinpaint/internal/models"
	"diffinpaint/pkg/imagebuf"
)

// DefaultIterationsPerBatch is the number of passes run per tick.
const DefaultIterationsPerBatch = 40

// Driver holds the active algorithm and runs bounded batches of passes.
//
// A Driver is not safe for concurrent use. Each Tick runs to completion;
// the only way to cancel solving is to deactivate before the next tick.
type Driver struct {
	algorithm  models.Algorithm
	active     bool
	iterations int

	// pending records a brush stroke or reload since the last tick.
	pending bool

	// passes counts every pass run since construction.
	passes int

	logger *slog.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithAlgorithm sets the initial algorithm.
func WithAlgorithm(a models.Algorithm) Option {
	return func(d *Driver) { d.algorithm = a }
}

// WithLogger sets the logger used for state changes.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDriver returns an inactive Laplace driver. Non-positive iterations
// select DefaultIterationsPerBatch.
func NewDriver(iterations int, opts ...Option) *Driver {
	if iterations <= 0 {
		iterations = DefaultIterationsPerBatch
	}
	d := &Driver{
		algorithm:  models.Laplace,
		iterations: iterations,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Algorithm returns the algorithm the next batch will use.
func (d *Driver) Algorithm() models.Algorithm { return d.algorithm }

// Active reports whether ticks run batches.
func (d *Driver) Active() bool { return d.active }

// IterationsPerBatch returns the number of passes per active tick.
func (d *Driver) IterationsPerBatch() int { return d.iterations }

// Passes returns the total number of passes run so far.
func (d *Driver) Passes() int { return d.passes }

// ToggleActive flips solving on or off and returns the new state.
func (d *Driver) ToggleActive() bool {
	d.SetActive(!d.active)
	return d.active
}

// SetActive turns solving on or off.
func (d *Driver) SetActive(on bool) {
	if d.active == on {
		return
	}
	d.active = on
	d.logger.Debug("solver state changed", "active", on, "algorithm", d.algorithm)
}

// ToggleAlgorithm switches between Laplace and Biharmonic. The change
// applies from the next batch.
func (d *Driver) ToggleAlgorithm() models.Algorithm {
	if d.algorithm == models.Laplace {
		d.SetAlgorithm(models.Biharmonic)
	} else {
		d.SetAlgorithm(models.Laplace)
	}
	return d.algorithm
}

// SetAlgorithm selects the algorithm for subsequent batches.
func (d *Driver) SetAlgorithm(a models.Algorithm) {
	d.algorithm = a
	d.logger.Debug("solver algorithm changed", "algorithm", a)
}

// MarkDirty records that the buffer changed outside the solver, so the next
// inactive tick still reports dirty.
func (d *Driver) MarkDirty() {
	d.pending = true
}

// Tick runs one batch when active and reports whether buf changed since the
// previous tick. There is no convergence check: an active tick always runs
// the full batch.
func (d *Driver) Tick(buf *imagebuf.Buffer) bool {
	dirty := d.pending
	d.pending = false
	if !d.active {
		return dirty
	}

	step := StepFor(d.algorithm)
	for k := 0; k < d.iterations; k++ {
		step(buf)
	}
	d.passes += d.iterations
	return true
}

// Run activates the driver and ticks until ticks batches have run or ctx is
// done. ctx is only checked between batches. It returns the number of
// batches run and ctx.Err() if it stopped early.
func (d *Driver) Run(ctx context.Context, buf *imagebuf.Buffer, ticks int) (int, error) {
	d.SetActive(true)
	defer d.SetActive(false)

	for n := 0; n < ticks; n++ {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		d.Tick(buf)
	}
	return ticks, nil
}
