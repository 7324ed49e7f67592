package model

import (
	"fmt"
)

// Reading is one line of the temperature log: a timestamp and one value per core.
type Reading struct {
	Time   float64
	Values []float64
}

type Sample struct {
	X float64 // timestamp
	Y float64 // temperature
}

func (s *Sample) Before(sample Sample) bool {
	return s.X < sample.X
}

// Series holds the samples of a single core ordered by timestamp.
// It is not modified after the demultiplexer builds it.
type Series struct {
	Core    int
	Samples []Sample
}

func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Samples)
}

func (s *Series) IsEmpty() bool {
	return s.Len() == 0
}

func (s *Series) Xs() []float64 {
	res := make([]float64, s.Len())
	for i, sample := range s.Samples {
		res[i] = sample.X
	}
	return res
}

func (s *Series) Ys() []float64 {
	res := make([]float64, s.Len())
	for i, sample := range s.Samples {
		res[i] = sample.Y
	}
	return res
}

func (s *Series) DebugString() string {
	res := fmt.Sprintf("core: %v, sampleCount: %v", s.Core, s.Len())
	return res
}
