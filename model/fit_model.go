package model

// Segment is the line through two consecutive samples, valid over [XLo, XHi).
type Segment struct {
	XLo       float64 `json:"x_lo"`
	XHi       float64 `json:"x_hi"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

func (s *Segment) Eval(x float64) float64 {
	return s.Intercept + s.Slope*x
}

func (s *Segment) Contains(x float64) bool {
	return x >= s.XLo && x < s.XHi
}

// Range is the span covered by the segments of a series, closed at Hi.
type Range struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

func (r *Range) Contains(x float64) bool {
	return x >= r.Lo && x <= r.Hi
}

// GlobalFit is the least squares line y = Intercept + Slope*x over a whole series.
type GlobalFit struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
	N         int     `json:"n"`
	RSS       float64 `json:"rss"` // residual sum of squares
	RSquared  float64 `json:"r_squared"`
}

func (f *GlobalFit) Eval(x float64) float64 {
	return f.Intercept + f.Slope*x
}

// CoreResult pairs the segments of one core with its global fit.
// Err is set when the core failed and the run was configured to keep going.
type CoreResult struct {
	Core     int
	Segments []Segment
	Range    *Range // nil without interpolation
	Fit      *GlobalFit
	Err      error
}

// Estimate is the value of both models of a core at time X.
// A model that was not built, or does not cover X, leaves its field nil.
type Estimate struct {
	Core         int
	X            float64
	Interpolated *float64
	Global       *float64
}

func (r *CoreResult) Failed() bool {
	return r != nil && r.Err != nil
}
