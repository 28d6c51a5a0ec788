// Package cli wires configuration, codec, solver and session into the
// diffinpaint commands.
package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"diffinpaint/pkg/codec"
	"diffinpaint/pkg/colorspace"
	"diffinpaint/pkg/config"
	"diffinpaint/pkg/session"
)

// Runner presents an interactive session and blocks until it ends.
type Runner func(s *session.Session, showStatus bool, logger *slog.Logger) error

type options struct {
	configPath string
	verbose    bool
}

// Execute runs the root command with os.Args.
func Execute(run Runner) error {
	return NewRoot(run).Execute()
}

// NewRoot builds the diffinpaint command tree. run presents the
// interactive session of the view command.
func NewRoot(run Runner) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "diffinpaint",
		Short:        "Diffusion-based image inpainting",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "Path to the YAML configuration file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		ViewCmd(opts, run),
		FillCmd(opts),
		ConfigCmd(opts),
	)
	return root
}

// load reads the configuration file and builds the logger.
func (o *options) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.verbose {
		cfg.Output.Verbose = true
	}
	return cfg, newLogger(cmd.ErrOrStderr(), cfg.Output.Verbose), nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// imageFlags are the overrides shared by view and fill. A flag only
// replaces the file value when it was set on the command line.
type imageFlags struct {
	mask       string
	selfMask   bool
	colorspace string
	algorithm  string
	maxDim     int
	iterations int
	seed       string
	output     string
}

func (f *imageFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.mask, "mask", "m", "", "Image whose black pixels seed the mask")
	fl.BoolVar(&f.selfMask, "self-mask", false, "Seed the mask from the source's own black pixels")
	fl.StringVar(&f.colorspace, "colorspace", "", "Channel representation: rgb, hsluv or lab")
	fl.StringVarP(&f.algorithm, "algorithm", "a", "", "Initial algorithm: laplace or biharmonic")
	fl.IntVar(&f.maxDim, "max-dim", 0, "Downscale images larger than this (0 keeps the original size)")
	fl.IntVar(&f.iterations, "iterations", 0, "Relaxation passes per tick")
	fl.StringVar(&f.seed, "seed", "", "Warm start of the hole: none or nearest")
	fl.StringVarP(&f.output, "output", "o", "", "Where the result is saved")
}

func (f *imageFlags) apply(cmd *cobra.Command, args []string, cfg *config.Config) error {
	if len(args) > 0 {
		cfg.Image.Path = args[0]
	}
	fl := cmd.Flags()
	if fl.Changed("mask") {
		cfg.Image.Mask = f.mask
	}
	if fl.Changed("self-mask") {
		cfg.Image.SelfMask = f.selfMask
	}
	if fl.Changed("colorspace") {
		cfg.Image.Colorspace = f.colorspace
	}
	if fl.Changed("algorithm") {
		cfg.Solver.Algorithm = f.algorithm
	}
	if fl.Changed("max-dim") {
		cfg.Image.MaxDimension = f.maxDim
	}
	if fl.Changed("iterations") {
		cfg.Solver.IterationsPerBatch = f.iterations
	}
	if fl.Changed("seed") {
		cfg.Solver.Seed = f.seed
	}
	if fl.Changed("output") {
		cfg.Output.SavePath = f.output
	}
	return cfg.Validate()
}

// codecOptions builds the decode options of a validated configuration.
func codecOptions(cfg *config.Config, logger *slog.Logger) (codec.Options, error) {
	cs, err := colorspace.Parse(cfg.Image.Colorspace)
	if err != nil {
		return codec.Options{}, err
	}
	return codec.Options{
		Colorspace:     cs,
		MaxDimension:   cfg.Image.MaxDimension,
		FallbackWidth:  cfg.Fallback.Width,
		FallbackHeight: cfg.Fallback.Height,
		Logger:         logger,
	}, nil
}
