package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"diffinpaint/pkg/codec"
	"diffinpaint/pkg/config"
	"diffinpaint/pkg/imagebuf"
	"diffinpaint/pkg/interpolation"
	"diffinpaint/pkg/session"
	"diffinpaint/pkg/solver"
)

// ViewCmd builds the interactive view command.
func ViewCmd(opts *options, run Runner) *cobra.Command {
	var flags imageFlags
	var radius int
	cmd := &cobra.Command{
		Use:   "view [image]",
		Short: "Paint a mask and watch it fill interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("radius") {
				cfg.Brush.Radius = radius
			}
			if err := flags.apply(cmd, args, cfg); err != nil {
				return err
			}
			copts, err := codecOptions(cfg, logger)
			if err != nil {
				return err
			}
			alg, err := config.ParseAlgorithm(cfg.Solver.Algorithm)
			if err != nil {
				return err
			}

			// A reload starts from an empty mask.
			load := func() *imagebuf.Buffer {
				return codec.LoadOrGradient(cfg.Image.Path, copts)
			}
			buf := load()
			codec.SeedMask(buf, cfg.Image.Mask, cfg.Image.SelfMask, copts)
			if cfg.Solver.Seed == config.SeedNearest {
				interpolation.SeedNearest(buf)
			}

			driver := solver.NewDriver(cfg.Solver.IterationsPerBatch,
				solver.WithAlgorithm(alg),
				solver.WithLogger(logger))
			s := session.New(session.Config{
				Buffer: buf,
				Driver: driver,
				Radius: cfg.Brush.Radius,
				Load:   load,
				Save: func(b *imagebuf.Buffer) error {
					return codec.Save(b, cfg.Output.SavePath)
				},
				Logger: logger,
			})

			printControls(cmd.OutOrStdout())
			return run(s, cfg.Output.Verbose, logger)
		},
	}
	flags.bind(cmd)
	cmd.Flags().IntVarP(&radius, "radius", "r", 0, "Initial brush radius")
	return cmd
}

func printControls(w io.Writer) {
	fmt.Fprintln(w, "Controls:")
	fmt.Fprintln(w, "  [Left Mouse] Draw Mask")
	fmt.Fprintln(w, "  [Space]      Toggle Solving")
	fmt.Fprintln(w, "  [B]          Toggle Algorithm (Laplace vs Biharmonic)")
	fmt.Fprintln(w, "  [[/]]        Brush Size")
	fmt.Fprintln(w, "  [R]          Reload Image")
	fmt.Fprintln(w, "  [S]          Save Image")
	fmt.Fprintln(w, "  [Q/Esc]      Quit")
	fmt.Fprintln(w)
}
