package model

import (
	"github.com/pkg/errors"
)

// Error kinds. Every validation failure from the model, inference and
// sampler packages wraps one of these, so callers can test with errors.Is.
// Filesystem errors from the *File helpers are passed through as is.
var (
	// ErrInvalidArgument is misuse: a non-positive N, K or step count, or a
	// missing model or random source.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrFormat means a persisted tensor or model file could not be
	// understood (bad header, non-rectangular shape, bad values).
	ErrFormat = errors.New("format error")

	// ErrDegenerateModel means a normalization divided by a zero sum: the
	// model has no joint assignment with positive probability there.
	ErrDegenerateModel = errors.New("degenerate model")

	// ErrNumericRange means unnormalized messages over- or underflowed to a
	// non-finite value. Use a scaled or log-domain exact mode instead.
	ErrNumericRange = errors.New("numeric range exceeded")
)
