package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/uyouii/coretemps/common"
	"github.com/uyouii/coretemps/config"
	"github.com/uyouii/coretemps/demux"
	"github.com/uyouii/coretemps/interp"
	"github.com/uyouii/coretemps/lsq"
	"github.com/uyouii/coretemps/model"
	"github.com/uyouii/coretemps/parser"
	"github.com/uyouii/coretemps/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options selects which models are built and how cores are scheduled.
type Options struct {
	Interpolate bool
	GlobalFit   bool
	// Parallelism bounds the number of cores processed at once, <= 0 means one at a time.
	Parallelism int
	// SkipFailedCores keeps going when a core fails, the error is stored in its result.
	SkipFailedCores bool
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Interpolate:     cfg.Output.Interpolation,
		GlobalFit:       cfg.Output.GlobalFit,
		Parallelism:     cfg.Runtime.Parallelism,
		SkipFailedCores: cfg.Runtime.SkipFailedCores,
	}
}

// Run builds the selected models for every series. The series are only read,
// so cores are processed concurrently. results[k] belongs to series[k].
func Run(ctx context.Context, series []model.Series, opts Options) ([]model.CoreResult, error) {
	logger := utils.GetLogger(ctx)

	if !opts.Interpolate && !opts.GlobalFit {
		return nil, fmt.Errorf("%w: no output selected", common.ErrorInvalidValue)
	}

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}

	results := make([]model.CoreResult, len(series))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(parallelism)

	for k := range series {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}

			results[k] = processCore(egCtx, &series[k], opts)
			if err := results[k].Err; err != nil {
				if opts.SkipFailedCores {
					logger.Warn("core failed, skip it", zap.Int("core", series[k].Core), zap.Error(err))
					return nil
				}
				return fmt.Errorf("core %v: %w", series[k].Core, err)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		logger.Error("run failed", zap.Error(err))
		return nil, err
	}

	logger.Info("run finished", zap.Int("cores", len(series)),
		zap.Bool("interpolation", opts.Interpolate), zap.Bool("globalFit", opts.GlobalFit))
	return results, nil
}

func processCore(ctx context.Context, series *model.Series, opts Options) (result model.CoreResult) {
	logger := utils.GetLogger(ctx)
	result.Core = series.Core

	defer func() {
		if err := recover(); err != nil {
			logger.Error("processCore recover panic error!", zap.Any("err", err),
				zap.String("panic info", utils.GetPanicInfo()), zap.String("series", series.DebugString()))
			result = model.CoreResult{Core: series.Core, Err: fmt.Errorf("%w: panic %v", common.ErrorInvalidValue, err)}
		}
	}()

	if opts.Interpolate {
		segments, err := interp.Interpolate(series)
		if err != nil {
			result.Err = err
			return result
		}
		piecewise, err := interp.NewPiecewise(segments)
		if err != nil {
			result.Err = err
			return result
		}
		covers := piecewise.Range()
		result.Segments = piecewise.Segments()
		result.Range = &covers
	}

	if opts.GlobalFit {
		fit, err := lsq.Fit(series)
		if err != nil {
			result.Err = err
			return result
		}
		result.Fit = fit
	}

	logger.Debug("core processed", zap.Int("core", series.Core),
		zap.Int("samples", series.Len()), zap.Int("segments", len(result.Segments)))
	return result
}

// Estimate evaluates the models of every successful core at each of xs.
// The interpolated value is left nil outside the covered range.
func Estimate(ctx context.Context, results []model.CoreResult, xs []float64) ([]model.Estimate, error) {
	logger := utils.GetLogger(ctx)

	estimates := make([]model.Estimate, 0, len(results)*len(xs))
	for _, result := range results {
		if result.Failed() {
			continue
		}

		var piecewise *interp.Piecewise
		if len(result.Segments) > 0 {
			var err error
			if piecewise, err = interp.NewPiecewise(result.Segments); err != nil {
				logger.Error("index segments failed", zap.Int("core", result.Core), zap.Error(err))
				return nil, fmt.Errorf("core %v: %w", result.Core, err)
			}
		}

		for _, x := range xs {
			estimate := model.Estimate{Core: result.Core, X: x}
			if piecewise != nil {
				if y, ok := piecewise.Eval(x); ok {
					estimate.Interpolated = &y
				}
			}
			if result.Fit != nil {
				y := result.Fit.Eval(x)
				estimate.Global = &y
			}
			estimates = append(estimates, estimate)
		}
	}
	return estimates, nil
}

// Process loads the whole log, splits it per core and runs the models on every core.
func Process(ctx context.Context, r io.Reader, cfg *config.Config) ([]model.CoreResult, error) {
	logger := utils.GetLogger(ctx)

	loader := parser.NewLoader(r, parser.Options{
		StepSize: cfg.Input.StepSize,
		Units:    cfg.Input.Units,
	})
	readings, err := loader.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	series, err := demux.Split(readings, cfg.Input.Cores)
	if err != nil {
		logger.Error("demux failed", zap.Error(err))
		return nil, err
	}

	return Run(ctx, series, OptionsFromConfig(cfg))
}
