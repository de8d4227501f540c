package sampler

import (
	"github.com/CraigKelly/chainmar/model"
)

// A Sampler estimates the marginals of a model from the given number of
// sampling steps
type Sampler interface {
	Sample(steps int) (model.Marginals, error)
}

// Source is the randomness samplers consume. rand.Generator implements it.
type Source interface {
	Float64() float64
	Intn(n int) int
}
