package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"diffinpaint/pkg/colorspace"
	"diffinpaint/pkg/config"
	"diffinpaint/pkg/reconstruction"
)

// FillCmd builds the headless fill command.
func FillCmd(opts *options) *cobra.Command {
	var flags imageFlags
	var ticks int
	var snapshots bool
	cmd := &cobra.Command{
		Use:   "fill [image]",
		Short: "Fill the masked region without a window and save the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("ticks") {
				cfg.Solver.Ticks = ticks
			}
			if cmd.Flags().Changed("save-intermediary") {
				cfg.Output.SaveIntermediaryResults = snapshots
			}
			if err := flags.apply(cmd, args, cfg); err != nil {
				return err
			}
			cs, err := colorspace.Parse(cfg.Image.Colorspace)
			if err != nil {
				return err
			}
			alg, err := config.ParseAlgorithm(cfg.Solver.Algorithm)
			if err != nil {
				return err
			}

			params := &reconstruction.Params{
				InputFile:               cfg.Image.Path,
				MaskFile:                cfg.Image.Mask,
				SelfMask:                cfg.Image.SelfMask,
				OutputFile:              cfg.Output.SavePath,
				Colorspace:              cs,
				MaxDimension:            cfg.Image.MaxDimension,
				FallbackWidth:           cfg.Fallback.Width,
				FallbackHeight:          cfg.Fallback.Height,
				Algorithm:               alg,
				IterationsPerBatch:      cfg.Solver.IterationsPerBatch,
				Ticks:                   cfg.Solver.Ticks,
				SeedNearest:             cfg.Solver.Seed == config.SeedNearest,
				SaveIntermediaryResults: cfg.Output.SaveIntermediaryResults,
				IntermediaryDir:         cfg.Output.IntermediaryDir,
				SnapshotEvery:           cfg.Output.SnapshotEvery,
				Logger:                  logger,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "================================")
			fmt.Fprintln(out, "DIFFUSION INPAINTING")
			fmt.Fprintf(out, "Algorithm: %s, %d ticks x %d passes\n",
				alg.Describe(), cfg.Solver.Ticks, cfg.Solver.IterationsPerBatch)
			fmt.Fprintln(out, "================================")

			reconstructor := reconstruction.NewReconstructor(params)
			runErr := reconstructor.Process(ctx)
			if runErr != nil && !errors.Is(runErr, context.Canceled) {
				return fmt.Errorf("reconstruction failed: %w", runErr)
			}

			metrics := reconstructor.GetMetrics()
			if runErr == nil {
				fmt.Fprintf(out, "\nReconstruction completed in %.2f seconds!\n", metrics.Elapsed.Seconds())
			} else {
				fmt.Fprintf(out, "\nReconstruction interrupted after %d ticks\n", metrics.Ticks)
			}
			if cfg.Output.SavePath != "" {
				fmt.Fprintf(out, "Result saved to: %s\n\n", cfg.Output.SavePath)
			}

			fmt.Fprintf(out, "Masked pixels: %d\n", metrics.Masked)
			fmt.Fprintf(out, "Relaxation passes: %d\n", metrics.Passes)
			fmt.Fprintf(out, "Final residual (RMS / max): %.6g / %.6g\n", metrics.Residual.RMS, metrics.Residual.Max)
			if metrics.Masked > 0 {
				fmt.Fprintf(out, "Root Mean Square Error (RMSE): %.6f\n", metrics.RMSE)
				fmt.Fprintf(out, "Peak Signal to Noise Ratio (PSNR): %.2f dB\n", metrics.PSNR)
				fmt.Fprintf(out, "Structural Similarity Index (SSIM): %.3f\n", metrics.SSIM)
				fmt.Fprintf(out, "Entropy Difference: %.3f\n", metrics.EntropyDiff)
			}

			if cfg.Output.SaveIntermediaryResults {
				fmt.Fprintln(out, "\nIntermediary results saved to:")
				fmt.Fprintln(out, cfg.Output.IntermediaryDir)
			}
			return runErr
		},
	}
	flags.bind(cmd)
	cmd.Flags().IntVarP(&ticks, "ticks", "t", 0, "Number of batches to run")
	cmd.Flags().BoolVar(&snapshots, "save-intermediary", false, "Save snapshots while solving")
	return cmd
}
