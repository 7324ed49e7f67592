package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/uyouii/coretemps/config"
	"github.com/uyouii/coretemps/pipeline"
	"github.com/uyouii/coretemps/report"
	"github.com/uyouii/coretemps/utils"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var at []float64
	overrides := config.Default()

	rootCmd := &cobra.Command{
		Use:   "coretemps <temperature log>",
		Short: "Builds per core temperature models",
		Long: "Reads a log of per core temperature readings and writes, for every core, " +
			"a piecewise linear interpolation and a global least squares approximation",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			applyFlags(cmd, cfg, overrides)
			return run(cmd.Context(), cfg, args[0], at, cmd.OutOrStdout())
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "config file, defaults to ./coretemps.yaml when present")
	flags.IntVar(&overrides.Input.Cores, "cores", overrides.Input.Cores, "number of cores in every reading")
	flags.Float64Var(&overrides.Input.StepSize, "step", overrides.Input.StepSize, "seconds between two readings")
	flags.BoolVar(&overrides.Input.Units, "units", overrides.Input.Units, "readings carry a unit suffix such as °C")
	flags.BoolVarP(&overrides.Output.Interpolation, "interpolation", "i", overrides.Output.Interpolation,
		"write the piecewise linear interpolation")
	flags.BoolVarP(&overrides.Output.GlobalFit, "global", "g", overrides.Output.GlobalFit,
		"write the global least squares approximation")
	flags.StringVarP(&overrides.Output.Format, "format", "f", overrides.Output.Format, "output format: text, json or sqlite")
	flags.StringVarP(&overrides.Output.Dir, "out-dir", "o", overrides.Output.Dir, "output directory, defaults to the input directory")
	flags.StringVar(&overrides.Output.SQLitePath, "sqlite-path", overrides.Output.SQLitePath, "database path for the sqlite format")
	flags.IntVarP(&overrides.Runtime.Parallelism, "parallelism", "p", overrides.Runtime.Parallelism, "cores processed at once")
	flags.BoolVar(&overrides.Runtime.SkipFailedCores, "skip-failed", overrides.Runtime.SkipFailedCores,
		"keep going when a core cannot be modeled")
	flags.Float64SliceVar(&at, "at", nil, "print the value of every core model at these times")
	flags.StringVar(&overrides.Runtime.LogLevel, "log-level", overrides.Runtime.LogLevel, "debug, info, warn or error")

	return rootCmd
}

// applyFlags copies the flags set on the command line over the loaded config.
func applyFlags(cmd *cobra.Command, cfg, overrides *config.Config) {
	changed := cmd.Flags().Changed
	if changed("cores") {
		cfg.Input.Cores = overrides.Input.Cores
	}
	if changed("step") {
		cfg.Input.StepSize = overrides.Input.StepSize
	}
	if changed("units") {
		cfg.Input.Units = overrides.Input.Units
	}
	// selecting one output explicitly turns the other off unless it is selected too
	if changed("interpolation") || changed("global") {
		cfg.Output.Interpolation = changed("interpolation") && overrides.Output.Interpolation
		cfg.Output.GlobalFit = changed("global") && overrides.Output.GlobalFit
	}
	if changed("format") {
		cfg.Output.Format = overrides.Output.Format
	}
	if changed("out-dir") {
		cfg.Output.Dir = overrides.Output.Dir
	}
	if changed("sqlite-path") {
		cfg.Output.SQLitePath = overrides.Output.SQLitePath
	}
	if changed("parallelism") {
		cfg.Runtime.Parallelism = overrides.Runtime.Parallelism
	}
	if changed("skip-failed") {
		cfg.Runtime.SkipFailedCores = overrides.Runtime.SkipFailedCores
	}
	if changed("log-level") {
		cfg.Runtime.LogLevel = overrides.Runtime.LogLevel
	}
}

func run(ctx context.Context, cfg *config.Config, inputPath string, at []float64, out io.Writer) error {
	logger, err := utils.NewLogger(cfg.Runtime.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	defer utils.SetLogger(logger)()
	defer logger.Sync()

	f, err := os.Open(inputPath)
	if err != nil {
		logger.Error("open input failed", zap.String("path", inputPath), zap.Error(err))
		return err
	}
	defer f.Close()

	results, err := pipeline.Process(ctx, f, cfg)
	if err != nil {
		return err
	}

	writer, err := report.New(cfg, utils.TrimExt(inputPath))
	if err != nil {
		return err
	}
	if err := writer.Write(ctx, results); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	if len(at) == 0 {
		return nil
	}
	estimates, err := pipeline.Estimate(ctx, results, at)
	if err != nil {
		return err
	}
	return report.WriteEstimates(out, estimates)
}
