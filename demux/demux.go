package demux

import (
	"fmt"

	"github.com/uyouii/coretemps/common"
	"github.com/uyouii/coretemps/model"
)

// Split turns readings into one series per core, series[k] holds the values of core k.
// Every reading must carry exactly cores values.
func Split(readings []model.Reading, cores int) ([]model.Series, error) {
	if cores <= 0 {
		return nil, fmt.Errorf("%w: cores=%v", common.ErrorInvalidValue, cores)
	}

	series := make([]model.Series, cores)
	for k := range series {
		series[k] = model.Series{
			Core:    k,
			Samples: make([]model.Sample, 0, len(readings)),
		}
	}

	for i, reading := range readings {
		if len(reading.Values) != cores {
			return nil, fmt.Errorf("%w: reading %v has %v values, want %v",
				common.ErrorReadingArity, i, len(reading.Values), cores)
		}
		for k, value := range reading.Values {
			series[k].Samples = append(series[k].Samples, model.Sample{X: reading.Time, Y: value})
		}
	}
	return series, nil
}
