package lsq

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/coretemps/common"
	"github.com/uyouii/coretemps/interp"
	"github.com/uyouii/coretemps/model"
	"gonum.org/v1/gonum/stat"
)

const tolerance = 1e-9

func seriesOf(points ...[2]float64) *model.Series {
	s := &model.Series{}
	for _, p := range points {
		s.Samples = append(s.Samples, model.Sample{X: p[0], Y: p[1]})
	}
	return s
}

func randomSeries(r *rand.Rand, n int) *model.Series {
	s := &model.Series{}
	x := 0.0
	for i := 0; i < n; i++ {
		x += 1 + r.Float64()*5
		s.Samples = append(s.Samples, model.Sample{X: x, Y: 40 + 0.3*x + r.NormFloat64()*4})
	}
	return s
}

func TestFitScenario(t *testing.T) {
	series := seriesOf([2]float64{0, 10}, [2]float64{1, 12}, [2]float64{2, 11}, [2]float64{3, 15})

	// Sx=6 Sy=48 Sxy=79 Sxx=14, denom = 4*14 - 36 = 20
	acc := &Accumulator{}
	for _, sample := range series.Samples {
		acc.Add(sample.X, sample.Y)
	}
	assert.Equal(t, 6.0, acc.sx)
	assert.Equal(t, 48.0, acc.sy)
	assert.Equal(t, 79.0, acc.sxy)
	assert.Equal(t, 14.0, acc.sxx)

	fit, err := Fit(series)
	require.NoError(t, err)
	assert.InDelta(t, (14.0*48-6*79)/20, fit.Intercept, tolerance)
	assert.InDelta(t, (4.0*79-6*48)/20, fit.Slope, tolerance)
	assert.InDelta(t, 9.9, fit.Intercept, tolerance)
	assert.InDelta(t, 1.4, fit.Slope, tolerance)
	assert.Equal(t, 4, fit.N)

	// residuals 0.1, 0.7, -1.7, 0.9 against a total sum of squares of 14
	assert.InDelta(t, 4.2, fit.RSS, 1e-9)
	assert.InDelta(t, 0.7, fit.RSquared, 1e-9)
}

func TestFitMatchesGonum(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		series := randomSeries(r, 2+r.Intn(300))

		fit, err := Fit(series)
		require.NoError(t, err)

		alpha, beta := stat.LinearRegression(series.Xs(), series.Ys(), nil, false)
		assert.InDelta(t, alpha, fit.Intercept, 1e-6)
		assert.InDelta(t, beta, fit.Slope, 1e-7)
	}
}

func TestFitOptimality(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	deltas := []float64{1e-3, -1e-3, 0.1, -0.1, 1, -1}

	for round := 0; round < 10; round++ {
		series := randomSeries(r, 5+r.Intn(50))
		fit, err := Fit(series)
		require.NoError(t, err)

		best := RSS(series, fit.Intercept, fit.Slope)
		assert.InDelta(t, fit.RSS, best, 1e-9)
		for _, d0 := range deltas {
			for _, d1 := range deltas {
				other := RSS(series, fit.Intercept+d0, fit.Slope+d1*1e-2)
				assert.LessOrEqual(t, best, other+1e-9)
			}
		}
	}
}

func TestFitTwoPointsEqualsSegment(t *testing.T) {
	a, b := model.Sample{X: 30, Y: 61}, model.Sample{X: 60, Y: 58.5}
	series := &model.Series{Samples: []model.Sample{a, b}}

	fit, err := Fit(series)
	require.NoError(t, err)

	segment, err := interp.NewSegment(a, b)
	require.NoError(t, err)

	assert.InDelta(t, segment.Intercept, fit.Intercept, 1e-9)
	assert.InDelta(t, segment.Slope, fit.Slope, 1e-12)
	assert.InDelta(t, 0, fit.RSS, 1e-12)
}

func TestFitErrors(t *testing.T) {
	_, err := Fit(seriesOf([2]float64{1.0, 5.0}, [2]float64{1.0, 7.0}))
	assert.ErrorIs(t, err, common.ErrorDegenerateTimestamps)

	_, err = Fit(seriesOf([2]float64{1.0, 5.0}))
	assert.ErrorIs(t, err, common.ErrorInsufficientSamples)

	_, err = Fit(seriesOf([2]float64{0, 1}, [2]float64{2, 1}, [2]float64{1, 1}))
	assert.ErrorIs(t, err, common.ErrorNonMonotonicInput)
}

func TestAccumulatorDegenerate(t *testing.T) {
	acc := &Accumulator{}
	_, _, err := acc.Solve()
	assert.ErrorIs(t, err, common.ErrorInsufficientSamples)

	acc.Add(2, 1)
	acc.Add(2, 3)
	acc.Add(2, 5)
	_, _, err = acc.Solve()
	assert.ErrorIs(t, err, common.ErrorDegenerateTimestamps)
}

func TestRSquaredPerfectFit(t *testing.T) {
	series := seriesOf([2]float64{0, 1}, [2]float64{1, 3}, [2]float64{2, 5}, [2]float64{3, 7})
	fit, err := Fit(series)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, fit.Intercept, tolerance)
	assert.InDelta(t, 2.0, fit.Slope, tolerance)
	assert.InDelta(t, 1.0, fit.RSquared, tolerance)
}

func TestRSquaredConstantSeries(t *testing.T) {
	for _, y := range []float64{61, 58.5, 47.3, 72.1} {
		for n := 3; n <= 400; n += 7 {
			series := &model.Series{}
			for i := 0; i < n; i++ {
				series.Samples = append(series.Samples, model.Sample{X: float64(i) * 30, Y: y})
			}

			fit, err := Fit(series)
			require.NoError(t, err)
			assert.InDelta(t, 0, fit.Slope, 1e-9, "y=%v n=%v", y, n)
			assert.Equal(t, 1.0, fit.RSquared, "y=%v n=%v", y, n)
		}
	}

	// a flat series the line misses has no defined R²
	flat := seriesOf([2]float64{0, 72.1}, [2]float64{30, 72.1}, [2]float64{60, 72.1})
	assert.True(t, math.IsNaN(RSquared(flat, 70, 0)))
}

func TestFitEpochTimestamps(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	const epoch = 1.7e9

	series := &model.Series{}
	for i := 0; i < 500; i++ {
		x := epoch + float64(i)*30
		series.Samples = append(series.Samples, model.Sample{X: x, Y: 45 + 0.01*float64(i)*30 + r.NormFloat64()*0.5})
	}

	fit, err := Fit(series)
	require.NoError(t, err)
	assert.InDelta(t, 0.01, fit.Slope, 1e-3)

	alpha, beta := stat.LinearRegression(series.Xs(), series.Ys(), nil, false)
	assert.InDelta(t, beta, fit.Slope, 1e-9)
	assert.InDelta(t, 45.0, fit.Eval(epoch), 0.5)
	assert.InDelta(t, alpha+beta*epoch, fit.Eval(epoch), 1e-3)
}

func TestAccumulatorOrigin(t *testing.T) {
	shifted := NewAccumulator(2)
	plain := &Accumulator{}
	for _, p := range [][2]float64{{0, 10}, {1, 12}, {2, 11}, {3, 15}} {
		shifted.Add(p[0], p[1])
		plain.Add(p[0], p[1])
	}

	c0, c1, err := shifted.Solve()
	require.NoError(t, err)
	p0, p1, err := plain.Solve()
	require.NoError(t, err)
	assert.InDelta(t, p0, c0, tolerance)
	assert.InDelta(t, p1, c1, tolerance)
	assert.InDelta(t, 9.9, c0, tolerance)
}
