package interp

import (
	"fmt"

	"github.com/uyouii/coretemps/common"
	"github.com/uyouii/coretemps/model"
)

// NewSegment returns the line through a and b, covering [a.X, b.X).
func NewSegment(a, b model.Sample) (model.Segment, error) {
	if a.X == b.X {
		return model.Segment{}, fmt.Errorf("%w: x=%v", common.ErrorDegenerateTimestamps, a.X)
	}
	if b.X < a.X {
		return model.Segment{}, fmt.Errorf("%w: x=%v after x=%v", common.ErrorNonMonotonicInput, b.X, a.X)
	}

	slope := (b.Y - a.Y) / (b.X - a.X)
	intercept := a.Y - slope*a.X

	return model.Segment{
		XLo:       a.X,
		XHi:       b.X,
		Slope:     slope,
		Intercept: intercept,
	}, nil
}

// Interpolate builds one segment per adjacent sample pair, n samples give n-1 segments
// in ascending timestamp order. The whole series is validated before any segment is built.
func Interpolate(series *model.Series) ([]model.Segment, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}

	samples := series.Samples
	segments := make([]model.Segment, len(samples)-1)
	for i := 0; i < len(segments); i++ {
		segment, err := NewSegment(samples[i], samples[i+1])
		if err != nil {
			return nil, err
		}
		segments[i] = segment
	}
	return segments, nil
}
