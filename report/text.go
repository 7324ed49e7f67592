package report

import (
	"fmt"
	"io"

	"github.com/uyouii/coretemps/model"
)

// WriteSegments renders one line per segment:
//
//	    0 <= x <     30; y_0        =       61.0000  +    0.6333x; interpolation
func WriteSegments(w io.Writer, segments []model.Segment) error {
	for i, segment := range segments {
		_, err := fmt.Fprintf(w, "%5v <= x < %6v; y_%-7d  =  %12.4f  +  %8.4fx; interpolation\n",
			segment.XLo, segment.XHi, i, segment.Intercept, segment.Slope)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteGlobalFit renders the fit aligned under the segment lines.
func WriteGlobalFit(w io.Writer, fit *model.GlobalFit) error {
	_, err := fmt.Fprintf(w, "%22s %10s %14.4f + %9.4fx; global least squares approximation\n",
		"y", "=", fit.Intercept, fit.Slope)
	return err
}

// WriteRange renders the span covered by the segments:
//
//	    0 <= x <=    90; covered range
func WriteRange(w io.Writer, covers *model.Range) error {
	_, err := fmt.Fprintf(w, "%5v <= x <= %5v; covered range\n", covers.Lo, covers.Hi)
	return err
}

// WriteCore renders the segments of a core and their covered range, then its
// global fit after a blank line.
func WriteCore(w io.Writer, result *model.CoreResult) error {
	if result.Failed() {
		_, err := fmt.Fprintf(w, "core_%v; failed: %v\n", result.Core, result.Err)
		return err
	}

	if err := WriteSegments(w, result.Segments); err != nil {
		return err
	}
	if result.Range != nil {
		if err := WriteRange(w, result.Range); err != nil {
			return err
		}
	}
	if result.Fit == nil {
		return nil
	}
	if len(result.Segments) > 0 {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return WriteGlobalFit(w, result.Fit)
}

// WriteGlobalSummary renders one global fit line per core.
func WriteGlobalSummary(w io.Writer, results []model.CoreResult) error {
	for i := range results {
		result := &results[i]
		var err error
		switch {
		case result.Failed():
			_, err = fmt.Fprintf(w, "core_%-11v; failed: %v\n", result.Core, result.Err)
		case result.Fit != nil:
			_, err = fmt.Fprintf(w, "core_%-11v; y  =  %12.4f  +  %8.4fx; global least squares approximation\n",
				result.Core, result.Fit.Intercept, result.Fit.Slope)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteEstimates renders one line per core and time, "-" marks a missing model.
func WriteEstimates(w io.Writer, estimates []model.Estimate) error {
	format := func(y *float64) string {
		if y == nil {
			return "-"
		}
		return fmt.Sprintf("%.4f", *y)
	}

	for _, estimate := range estimates {
		_, err := fmt.Fprintf(w, "core_%-11v; x  =  %10v; interpolation  %12s; global least squares  %12s\n",
			estimate.Core, estimate.X, format(estimate.Interpolated), format(estimate.Global))
		if err != nil {
			return err
		}
	}
	return nil
}
