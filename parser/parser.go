package parser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/uyouii/coretemps/common"
	"github.com/uyouii/coretemps/model"
	"github.com/uyouii/coretemps/utils"
	"go.uber.org/zap"
)

const DefaultStepSize = 30.0

type Options struct {
	// StepSize is the time between two consecutive readings, the Nth reading is at N*StepSize.
	StepSize float64
	// Units means each value may carry a unit suffix such as "°C".
	Units bool
}

func DefaultOptions() Options {
	return Options{
		StepSize: DefaultStepSize,
		Units:    true,
	}
}

// Loader reads readings lazily from a temperature log, one reading per non blank line.
type Loader struct {
	scanner *bufio.Scanner
	opts    Options
	line    int // current line number, 1 based
	count   int // readings returned so far
}

func NewLoader(r io.Reader, opts Options) *Loader {
	if opts.StepSize <= 0 {
		opts.StepSize = DefaultStepSize
	}
	return &Loader{
		scanner: bufio.NewScanner(r),
		opts:    opts,
	}
}

// Next returns the next reading, or io.EOF once the input is exhausted.
func (l *Loader) Next() (model.Reading, error) {
	for l.scanner.Scan() {
		l.line++
		text := strings.TrimSpace(l.scanner.Text())
		if text == "" {
			continue
		}

		values, err := l.parseValues(text)
		if err != nil {
			return model.Reading{}, fmt.Errorf("line %v: %w", l.line, err)
		}

		reading := model.Reading{
			Time:   float64(l.count) * l.opts.StepSize,
			Values: values,
		}
		l.count++
		return reading, nil
	}

	if err := l.scanner.Err(); err != nil {
		return model.Reading{}, err
	}
	return model.Reading{}, io.EOF
}

// LoadAll materializes every remaining reading.
func (l *Loader) LoadAll(ctx context.Context) ([]model.Reading, error) {
	logger := utils.GetLogger(ctx)

	readings := []model.Reading{}
	for {
		reading, err := l.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Error("load readings failed", zap.Int("line", l.line), zap.Error(err))
			return nil, err
		}
		readings = append(readings, reading)
	}

	logger.Debug("load readings finished", zap.Int("readings", len(readings)), zap.Int("lines", l.line))
	return readings, nil
}

func (l *Loader) parseValues(text string) ([]float64, error) {
	fields := strings.Fields(text)
	values := make([]float64, 0, len(fields))
	for _, field := range fields {
		if l.opts.Units {
			field = trimUnit(field)
		}
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", common.ErrorInvalidValue, field)
		}
		values = append(values, value)
	}
	return values, nil
}

// trimUnit drops a trailing non numeric suffix, "+61.0°C" -> "+61.0"
func trimUnit(field string) string {
	return strings.TrimRightFunc(field, func(r rune) bool {
		return !unicode.IsDigit(r)
	})
}
