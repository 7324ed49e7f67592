package report

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/uyouii/coretemps/common"
	"github.com/uyouii/coretemps/config"
	"github.com/uyouii/coretemps/model"
	"github.com/uyouii/coretemps/utils"
	"go.uber.org/zap"
)

// Writer persists the per core results of one run.
type Writer interface {
	Write(ctx context.Context, results []model.CoreResult) error
	Close() error
}

// New returns the writer for the configured format. base is the input file name
// without extension and names every output file.
func New(cfg *config.Config, base string) (Writer, error) {
	if cfg.Output.Dir != "" {
		base = filepath.Join(cfg.Output.Dir, filepath.Base(base))
	}

	switch cfg.Output.Format {
	case config.FormatText:
		return &FileWriter{
			Base:          base,
			Interpolation: cfg.Output.Interpolation,
			GlobalFit:     cfg.Output.GlobalFit,
		}, nil
	case config.FormatJSON:
		return &JSONWriter{Path: base + ".json"}, nil
	case config.FormatSQLite:
		path := cfg.Output.SQLitePath
		if path == "" {
			path = base + ".db"
		}
		sw, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return sw, nil
	default:
		return nil, fmt.Errorf("%w: output format %q", common.ErrorInvalidValue, cfg.Output.Format)
	}
}

// FileWriter writes the text report, one file per core:
//
//	<base>-core-<k>.txt                segments and global fit
//	<base>-core-<k>-interpolation.txt  segments only
//	<base>-global.txt                  global fits only, one line per core
type FileWriter struct {
	Base          string
	Interpolation bool
	GlobalFit     bool
}

func (fw *FileWriter) CorePath(core int, interpolationOnly bool) string {
	if interpolationOnly {
		return fmt.Sprintf("%s-core-%d-interpolation.txt", fw.Base, core)
	}
	return fmt.Sprintf("%s-core-%d.txt", fw.Base, core)
}

func (fw *FileWriter) GlobalPath() string {
	return fw.Base + "-global.txt"
}

func (fw *FileWriter) Write(ctx context.Context, results []model.CoreResult) error {
	logger := utils.GetLogger(ctx)

	if fw.Interpolation {
		for i := range results {
			path := fw.CorePath(results[i].Core, !fw.GlobalFit)
			if err := writeFile(path, func(f *os.File) error {
				return WriteCore(f, &results[i])
			}); err != nil {
				logger.Error("write core report failed", zap.String("path", path), zap.Error(err))
				return err
			}
			logger.Info("core report written", zap.String("path", path))
		}
		return nil
	}

	path := fw.GlobalPath()
	if err := writeFile(path, func(f *os.File) error {
		return WriteGlobalSummary(f, results)
	}); err != nil {
		logger.Error("write global report failed", zap.String("path", path), zap.Error(err))
		return err
	}
	logger.Info("global report written", zap.String("path", path))
	return nil
}

func (fw *FileWriter) Close() error {
	return nil
}

// jsonFloat rounds f to 6 decimals. NaN and ±Inf become nil, so they encode
// as null instead of failing encoding/json.
func jsonFloat(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	v := utils.FormatFloat(f, 6)
	return &v
}

type segmentJSON struct {
	XLo       *float64 `json:"x_lo"`
	XHi       *float64 `json:"x_hi"`
	Slope     *float64 `json:"slope"`
	Intercept *float64 `json:"intercept"`
}

type fitJSON struct {
	Intercept *float64 `json:"intercept"`
	Slope     *float64 `json:"slope"`
	N         int      `json:"n"`
	RSS       *float64 `json:"rss"`
	RSquared  *float64 `json:"r_squared"`
}

type rangeJSON struct {
	Lo *float64 `json:"lo"`
	Hi *float64 `json:"hi"`
}

type coreJSON struct {
	Core     int           `json:"core"`
	Range    *rangeJSON    `json:"range,omitempty"` // closed at hi
	Segments []segmentJSON `json:"segments,omitempty"`
	Fit      *fitJSON      `json:"global_fit,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// JSONWriter writes every core into a single JSON document, values rounded to 6 decimals.
type JSONWriter struct {
	Path string
}

func (jw *JSONWriter) Write(ctx context.Context, results []model.CoreResult) error {
	logger := utils.GetLogger(ctx)

	cores := make([]coreJSON, 0, len(results))
	for _, result := range results {
		core := coreJSON{Core: result.Core}
		if result.Failed() {
			core.Error = result.Err.Error()
			cores = append(cores, core)
			continue
		}
		if result.Range != nil {
			core.Range = &rangeJSON{
				Lo: jsonFloat(result.Range.Lo),
				Hi: jsonFloat(result.Range.Hi),
			}
		}
		for _, segment := range result.Segments {
			core.Segments = append(core.Segments, segmentJSON{
				XLo:       jsonFloat(segment.XLo),
				XHi:       jsonFloat(segment.XHi),
				Slope:     jsonFloat(segment.Slope),
				Intercept: jsonFloat(segment.Intercept),
			})
		}
		if result.Fit != nil {
			core.Fit = &fitJSON{
				Intercept: jsonFloat(result.Fit.Intercept),
				Slope:     jsonFloat(result.Fit.Slope),
				N:         result.Fit.N,
				RSS:       jsonFloat(result.Fit.RSS),
				RSquared:  jsonFloat(result.Fit.RSquared),
			}
		}
		cores = append(cores, core)
	}

	err := writeFile(jw.Path, func(f *os.File) error {
		encoder := json.NewEncoder(f)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]interface{}{"cores": cores})
	})
	if err != nil {
		logger.Error("write json report failed", zap.String("path", jw.Path), zap.Error(err))
		return err
	}
	logger.Info("json report written", zap.String("path", jw.Path))
	return nil
}

func (jw *JSONWriter) Close() error {
	return nil
}

func writeFile(path string, fn func(f *os.File) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
