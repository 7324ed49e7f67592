package model

import (
	"fmt"

	"github.com/uyouii/coretemps/common"
)

// Validate checks the preconditions shared by interpolation and fitting:
// at least two samples and strictly increasing timestamps.
func (s *Series) Validate() error {
	if s.Len() < 2 {
		return fmt.Errorf("%w: core %v has %v samples", common.ErrorInsufficientSamples, s.Core, s.Len())
	}
	for i := 1; i < len(s.Samples); i++ {
		prev, cur := s.Samples[i-1], s.Samples[i]
		if cur.X == prev.X {
			return fmt.Errorf("%w: core %v samples %v and %v share x=%v",
				common.ErrorDegenerateTimestamps, s.Core, i-1, i, cur.X)
		}
		if !prev.Before(cur) {
			return fmt.Errorf("%w: core %v sample %v x=%v after x=%v",
				common.ErrorNonMonotonicInput, s.Core, i, cur.X, prev.X)
		}
	}
	return nil
}
