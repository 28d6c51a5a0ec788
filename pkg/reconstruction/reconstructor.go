package reconstruction

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"diffinpaint/internal/models"
	"diffinpaint/pkg/codec"
	"diffinpaint/pkg/colorspace"
	"diffinpaint/pkg/imagebuf"
	"diffinpaint/pkg/interpolation"
	"diffinpaint/pkg/solver"
)

// Params holds the parameters of a headless fill.
type Params struct {
	// InputFile is the source image. When it cannot be decoded a synthetic
	// gradient of FallbackWidth x FallbackHeight is used instead.
	InputFile string

	// MaskFile is an optional image whose black pixels mark the hole.
	MaskFile string

	// SelfMask marks the source's own black pixels when MaskFile is empty.
	SelfMask bool

	// OutputFile receives the reconstructed image. Empty skips saving.
	OutputFile string

	Colorspace   colorspace.Colorspace
	MaxDimension int

	FallbackWidth  int
	FallbackHeight int

	Algorithm          models.Algorithm
	IterationsPerBatch int

	// Ticks is the number of batches to run.
	Ticks int

	// SeedNearest fills the cleared hole with the nearest fixed color
	// before solving instead of starting from black.
	SeedNearest bool

	// SaveIntermediaryResults determines whether snapshots are written
	// while solving, every SnapshotEvery ticks, under IntermediaryDir.
	SaveIntermediaryResults bool
	IntermediaryDir         string
	SnapshotEvery           int

	Logger *slog.Logger
}

// Reconstructor runs the inpainting pipeline without a display:
//  1. Loading the source (or the fallback gradient)
//  2. Seeding the mask from the mask image and clearing the hole
//  3. Optionally warm-starting the hole from the nearest fixed pixels
//  4. Relaxing for a fixed number of ticks
//  5. Saving the result
//  6. Calculating quality metrics against the untouched source
type Reconstructor struct {
	params *Params
	logger *slog.Logger

	// source is the decoded image before any mask was applied.
	source *imagebuf.Buffer

	// result is the buffer being reconstructed.
	result *imagebuf.Buffer

	driver  *solver.Driver
	metrics Metrics
}

// NewReconstructor creates a reconstructor with the provided parameters.
func NewReconstructor(params *Params) *Reconstructor {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconstructor{
		params: params,
		logger: logger,
		driver: solver.NewDriver(params.IterationsPerBatch,
			solver.WithAlgorithm(params.Algorithm),
			solver.WithLogger(logger)),
	}
}

// Process runs the complete pipeline. Cancelling ctx stops solving after the
// current batch; the partial result is still saved and measured, and the
// context error is returned.
func (r *Reconstructor) Process(ctx context.Context) error {
	p := r.params
	if p.SaveIntermediaryResults {
		if err := os.MkdirAll(p.IntermediaryDir, 0755); err != nil {
			return fmt.Errorf("failed to create intermediary directory: %w", err)
		}
	}

	opts := codec.Options{
		Colorspace:     p.Colorspace,
		MaxDimension:   p.MaxDimension,
		FallbackWidth:  p.FallbackWidth,
		FallbackHeight: p.FallbackHeight,
		Logger:         r.logger,
	}

	r.logger.Info("step 1: loading source", "path", p.InputFile)
	r.source = codec.LoadOrGradient(p.InputFile, opts)
	r.result = r.source.Clone()
	r.saveIntermediaryResult("01_source", r.result, 0)

	r.logger.Info("step 2: seeding mask", "mask", p.MaskFile, "self", p.SelfMask)
	codec.SeedMask(r.result, p.MaskFile, p.SelfMask, opts)
	masked := clearHole(r.result)
	if masked == 0 {
		r.logger.Warn("mask is empty, nothing to reconstruct")
	}
	r.saveIntermediaryResult("02_masked", r.result, 0)

	if p.SeedNearest {
		n := interpolation.SeedNearest(r.result)
		r.logger.Info("step 3: nearest-pixel warm start", "pixels", n)
		r.saveIntermediaryResult("03_seeded", r.result, 0)
	}

	r.logger.Info("step 4: relaxing",
		"algorithm", p.Algorithm, "ticks", p.Ticks,
		"iterationsPerBatch", r.driver.IterationsPerBatch(), "masked", masked)
	start := time.Now()
	ran, runErr := r.solve(ctx)
	elapsed := time.Since(start)

	if p.OutputFile != "" {
		r.logger.Info("step 5: saving result", "path", p.OutputFile)
		if err := codec.Save(r.result, p.OutputFile); err != nil {
			return fmt.Errorf("failed to save result: %w", err)
		}
	}

	r.logger.Info("step 6: calculating metrics")
	r.metrics = calculateMetrics(r.source, r.result, p.Algorithm)
	r.metrics.Ticks = ran
	r.metrics.Passes = r.driver.Passes()
	r.metrics.Elapsed = elapsed

	return runErr
}

// solve ticks the driver, writing a snapshot every SnapshotEvery ticks.
func (r *Reconstructor) solve(ctx context.Context) (int, error) {
	p := r.params
	every := p.Ticks
	if p.SaveIntermediaryResults && p.SnapshotEvery > 0 {
		every = p.SnapshotEvery
	}

	ran := 0
	for ran < p.Ticks {
		batch := min(every, p.Ticks-ran)
		n, err := r.driver.Run(ctx, r.result, batch)
		ran += n
		if err != nil {
			return ran, err
		}
		r.saveIntermediaryResult("04_solving", r.result, ran)
		r.logger.Debug("relaxation progress", "ticks", ran, "of", p.Ticks,
			"residual", solver.Residual(r.result, p.Algorithm).RMS)
	}
	return ran, nil
}

// GetMetrics returns the metrics of the last Process call.
func (r *Reconstructor) GetMetrics() Metrics {
	return r.metrics
}

// Result returns the reconstructed buffer, or nil before Process.
func (r *Reconstructor) Result() *imagebuf.Buffer {
	return r.result
}

// clearHole zeroes the color of every masked pixel, the way the
// interactive brush cuts a hole, so the solver never starts from the source
// data it is measured against. It returns the number of masked pixels.
func clearHole(buf *imagebuf.Buffer) int {
	n := 0
	for i, m := range buf.Mask {
		if m {
			buf.SetPixel(i, [3]float64{})
			n++
		}
	}
	return n
}

// saveIntermediaryResult writes a snapshot for one pipeline stage.
// Failures are logged and never abort the run.
func (r *Reconstructor) saveIntermediaryResult(stage string, buf *imagebuf.Buffer, index int) {
	if !r.params.SaveIntermediaryResults {
		return
	}
	path := filepath.Join(r.params.IntermediaryDir, stage, fmt.Sprintf("%03d.png", index))
	if err := codec.Save(buf, path); err != nil {
		r.logger.Warn("failed to save intermediary result", "stage", stage, "err", err)
	}
}
