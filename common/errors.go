package common

import "errors"

var (
	ErrorInvalidValue = errors.New("invalid value")

	// a series needs at least two samples before any line can be built
	ErrorInsufficientSamples = errors.New("insufficient samples")
	// equal timestamps make the closed form divide by zero
	ErrorDegenerateTimestamps = errors.New("degenerate timestamps")
	ErrorNonMonotonicInput    = errors.New("non monotonic input")

	ErrorReadingArity = errors.New("reading has unexpected number of values")
)
