package lsq

import (
	"fmt"
	"math"

	"github.com/uyouii/coretemps/common"
	"github.com/uyouii/coretemps/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// relative to Σy², below this a sum of squares counts as zero
const zeroSumTolerance = 1e-12

// Accumulator collects the sums of the normal equations for y = c0 + c1*x in one pass.
//
// n*Σx² - (Σx)² cancels badly when x is large next to its spread (epoch
// timestamps), so x is accumulated relative to origin and c0 is moved back
// to x = 0 in Solve.
type Accumulator struct {
	origin float64
	n      int
	sx     float64 // Σx
	sy     float64 // Σy
	sxy    float64 // Σx*y
	sxx    float64 // Σx^2, summed per term
}

// NewAccumulator returns an accumulator centered on origin, usually the first timestamp.
func NewAccumulator(origin float64) *Accumulator {
	return &Accumulator{origin: origin}
}

func (a *Accumulator) Add(x, y float64) {
	x -= a.origin
	a.n++
	a.sx += x
	a.sy += y
	a.sxy += x * y
	a.sxx += x * x
}

func (a *Accumulator) N() int {
	return a.n
}

// Solve solves the 2x2 normal equations and returns the intercept c0 and slope c1.
func (a *Accumulator) Solve() (float64, float64, error) {
	if a.n < 2 {
		return 0, 0, fmt.Errorf("%w: %v samples", common.ErrorInsufficientSamples, a.n)
	}

	n := float64(a.n)
	denom := n*a.sxx - a.sx*a.sx
	if denom == 0 {
		return 0, 0, fmt.Errorf("%w: zero x variance", common.ErrorDegenerateTimestamps)
	}

	c0 := (a.sxx*a.sy - a.sx*a.sxy) / denom
	c1 := (n*a.sxy - a.sx*a.sy) / denom
	return c0 - c1*a.origin, c1, nil
}

// Fit computes the least squares line over the whole series.
func Fit(series *model.Series) (*model.GlobalFit, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}

	acc := NewAccumulator(series.Samples[0].X)
	for _, sample := range series.Samples {
		acc.Add(sample.X, sample.Y)
	}

	c0, c1, err := acc.Solve()
	if err != nil {
		return nil, err
	}

	fit := &model.GlobalFit{
		Intercept: c0,
		Slope:     c1,
		N:         acc.N(),
	}
	fit.RSS = RSS(series, c0, c1)
	fit.RSquared = RSquared(series, c0, c1)
	return fit, nil
}

// RSS is the residual sum of squares of the line c0 + c1*x over the series.
func RSS(series *model.Series, c0, c1 float64) float64 {
	residuals := series.Ys()
	floats.Sub(residuals, Estimates(series, c0, c1))
	return floats.Dot(residuals, residuals)
}

func Estimates(series *model.Series, c0, c1 float64) []float64 {
	estimates := series.Xs()
	floats.Scale(c1, estimates)
	floats.AddConst(c0, estimates)
	return estimates
}

// RSquared is the coefficient of determination. A series without variance
// reports 1 when the line goes through it and NaN otherwise.
func RSquared(series *model.Series, c0, c1 float64) float64 {
	ys := series.Ys()
	scale := floats.Dot(ys, ys)

	mean := stat.Mean(ys, nil)
	tss := 0.0
	for _, y := range ys {
		tss += (y - mean) * (y - mean)
	}

	if tss <= zeroSumTolerance*scale {
		if RSS(series, c0, c1) <= zeroSumTolerance*scale {
			return 1
		}
		return math.NaN()
	}
	return stat.RSquaredFrom(Estimates(series, c0, c1), ys, nil)
}
