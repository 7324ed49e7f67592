package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/coretemps/common"
)

func newSeries(points ...float64) *Series {
	s := &Series{}
	for i := 0; i+1 < len(points); i += 2 {
		s.Samples = append(s.Samples, Sample{X: points[i], Y: points[i+1]})
	}
	return s
}

func TestSeriesAccessors(t *testing.T) {
	s := newSeries(0, 10, 1, 12, 2, 11)
	assert.Equal(t, 3, s.Len())
	assert.False(t, s.IsEmpty())
	assert.Equal(t, []float64{0, 1, 2}, s.Xs())
	assert.Equal(t, []float64{10, 12, 11}, s.Ys())

	var nilSeries *Series
	assert.True(t, nilSeries.IsEmpty())
}

func TestSeriesValidate(t *testing.T) {
	require.NoError(t, newSeries(0, 10, 1, 12).Validate())

	err := newSeries(0, 10).Validate()
	assert.ErrorIs(t, err, common.ErrorInsufficientSamples)

	err = newSeries().Validate()
	assert.ErrorIs(t, err, common.ErrorInsufficientSamples)

	err = newSeries(1, 5, 1, 7).Validate()
	assert.ErrorIs(t, err, common.ErrorDegenerateTimestamps)

	err = newSeries(0, 1, 2, 3, 1, 4).Validate()
	assert.ErrorIs(t, err, common.ErrorNonMonotonicInput)
}

func TestSegmentEval(t *testing.T) {
	seg := Segment{XLo: 1, XHi: 2, Slope: -1, Intercept: 13}
	assert.Equal(t, 12.0, seg.Eval(1))
	assert.Equal(t, 11.0, seg.Eval(2))
	assert.True(t, seg.Contains(1))
	assert.True(t, seg.Contains(1.5))
	assert.False(t, seg.Contains(2))

	fit := GlobalFit{Intercept: 9.3, Slope: 0.7}
	assert.InDelta(t, 11.4, fit.Eval(3), 1e-12)
	assert.False(t, math.IsNaN(fit.Eval(0)))
}

func TestRangeContains(t *testing.T) {
	r := Range{Lo: 0, Hi: 90}
	assert.True(t, r.Contains(0))
	assert.True(t, r.Contains(45))
	// closed at the top, unlike a single segment
	assert.True(t, r.Contains(90))
	assert.False(t, r.Contains(90.5))
	assert.False(t, r.Contains(-1))
}
