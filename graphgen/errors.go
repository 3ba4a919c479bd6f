package graphgen

import "errors"

// ErrTooFewNodes indicates that a size parameter (n, rows, cols) is smaller
// than the minimum a constructor requires to be meaningful.
var ErrTooFewNodes = errors.New("graphgen: parameter too small")

// ErrInvalidProbability indicates an edge probability outside [0,1].
var ErrInvalidProbability = errors.New("graphgen: probability out of range")

// ErrNeedRandSource indicates a stochastic constructor was invoked without
// an RNG while a true Bernoulli trial (0 < p < 1) is required.
var ErrNeedRandSource = errors.New("graphgen: rand source required")
