// Package inference computes exact marginals for chain models with the
// sum-product (forward/backward) algorithm.
//
// A chain is the simplest tree, so one forward and one backward sweep of
// messages give every marginal:
//
//	fwd[0] = 1;    fwd[n][j] = sum_i fwd[n-1][i] * phi[n-1][i][j]
//	bwd[N-1] = 1;  bwd[n][i] = sum_j bwd[n+1][j] * phi[n][i][j]
//	p[n] ∝ fwd[n] * bwd[n]
package inference

import (
	"math"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/CraigKelly/chainmar/model"
)

// Mode selects how messages are accumulated
type Mode int

// Reference keeps raw message products (can over/underflow on long chains).
// Scaled divides every message by its sum after each step. LogDomain keeps
// log messages and only exponentiates in the final combine. Enumerate sums
// the joint over every assignment and is only for tiny chains.
const (
	Reference Mode = iota
	Scaled
	LogDomain
	Enumerate
)

var modeNames = []string{"reference", "scaled", "log", "enumerate"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// ParseMode returns the mode for a name as printed by Mode.String
func ParseMode(name string) (Mode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return Reference, errors.Wrapf(model.ErrInvalidArgument, "Unknown exact mode %q", name)
}

// Engine computes exact marginals. The zero value is a Reference engine
// with no logging.
type Engine struct {
	Mode Mode
	Log  *zap.Logger
}

// NewEngine returns an engine for the given mode
func NewEngine(mode Mode) *Engine {
	return &Engine{Mode: mode, Log: zap.NewNop()}
}

// Exact returns the N x K marginals of c using unscaled messages
func Exact(c *model.Chain) (model.Marginals, error) {
	return NewEngine(Reference).Marginals(c)
}

// ExactMode returns the N x K marginals of c using the given mode
func ExactMode(c *model.Chain, mode Mode) (model.Marginals, error) {
	return NewEngine(mode).Marginals(c)
}

// Marginals runs the engine against c. The chain is never modified.
func (e *Engine) Marginals(c *model.Chain) (model.Marginals, error) {
	if c == nil {
		return nil, errors.Wrap(model.ErrInvalidArgument, "No chain supplied")
	}
	if err := c.Check(); err != nil {
		return nil, err
	}

	var m model.Marginals
	var err error

	switch e.Mode {
	case Reference, Scaled:
		m, err = e.linear(c)
	case LogDomain:
		m, err = logMarginals(c)
	case Enumerate:
		m, err = enumerate(c)
	default:
		return nil, errors.Wrapf(model.ErrInvalidArgument, "Unknown exact mode %d", e.Mode)
	}
	if err != nil {
		return nil, err
	}

	if e.Log != nil {
		e.Log.Debug("exact marginals",
			zap.Stringer("mode", e.Mode),
			zap.Int("vars", c.N),
			zap.Int("card", c.K),
		)
	}
	return m, nil
}

func (e *Engine) linear(c *model.Chain) (model.Marginals, error) {
	scale := e.Mode == Scaled

	fwd, err := forward(c, scale)
	if err != nil {
		return nil, err
	}
	bwd, err := backward(c, scale)
	if err != nil {
		return nil, err
	}

	p := model.NewMarginals(c.N, c.K)
	for n := range p {
		floats.MulTo(p[n], fwd[n], bwd[n])
		if err := model.NormalizeVector(p[n]); err != nil {
			return nil, e.combineError(c, n, err)
		}
	}

	return p, nil
}

// combineError decides whether a failed combine is a real zero-mass model
// or just unscaled messages running out of range.
func (e *Engine) combineError(c *model.Chain, n int, err error) error {
	if errors.Is(err, model.ErrDegenerateModel) && e.Mode == Reference {
		if _, logErr := logMarginals(c); logErr == nil {
			return errors.Wrapf(model.ErrNumericRange, "Messages for variable %d underflowed to zero", n)
		}
	}
	if errors.Is(err, model.ErrNumericRange) {
		return errors.Wrapf(err, "Messages for variable %d out of range in %s mode", n, e.Mode)
	}
	return errors.Wrapf(err, "No assignment of variable %d has positive probability", n)
}

// forward returns the N x K forward messages
func forward(c *model.Chain, scale bool) ([][]float64, error) {
	fwd := model.MakeMatrix(c.N, c.K)
	for j := range fwd[0] {
		fwd[0][j] = 1.0
	}

	for n := 1; n < c.N; n++ {
		phi := c.Potentials[n-1]
		for i, prev := range fwd[n-1] {
			if prev == 0.0 {
				continue
			}
			for j, v := range phi[i] {
				fwd[n][j] += prev * v
			}
		}
		if scale {
			if err := model.NormalizeVector(fwd[n]); err != nil {
				return nil, errors.Wrapf(err, "Forward message into variable %d", n)
			}
		}
	}

	return fwd, nil
}

// backward returns the N x K backward messages
func backward(c *model.Chain, scale bool) ([][]float64, error) {
	bwd := model.MakeMatrix(c.N, c.K)
	for i := range bwd[c.N-1] {
		bwd[c.N-1][i] = 1.0
	}

	for n := c.N - 2; n >= 0; n-- {
		phi := c.Potentials[n]
		for i := range bwd[n] {
			bwd[n][i] = floats.Dot(phi[i], bwd[n+1])
		}
		if scale {
			if err := model.NormalizeVector(bwd[n]); err != nil {
				return nil, errors.Wrapf(err, "Backward message into variable %d", n)
			}
		}
	}

	return bwd, nil
}

// logMarginals runs both passes on log messages (log-sum-exp accumulation)
func logMarginals(c *model.Chain) (model.Marginals, error) {
	logPhi := make([][][]float64, len(c.Potentials))
	for n, mat := range c.Potentials {
		logPhi[n] = model.MakeMatrix(c.K, c.K)
		for i, row := range mat {
			for j, v := range row {
				logPhi[n][i][j] = math.Log(v)
			}
		}
	}

	terms := make([]float64, c.K)

	fwd := model.MakeMatrix(c.N, c.K) // log(1) == 0
	for n := 1; n < c.N; n++ {
		for j := range fwd[n] {
			for i, prev := range fwd[n-1] {
				terms[i] = prev + logPhi[n-1][i][j]
			}
			fwd[n][j] = floats.LogSumExp(terms)
		}
	}

	bwd := model.MakeMatrix(c.N, c.K)
	for n := c.N - 2; n >= 0; n-- {
		for i := range bwd[n] {
			floats.AddTo(terms, logPhi[n][i], bwd[n+1])
			bwd[n][i] = floats.LogSumExp(terms)
		}
	}

	p := model.NewMarginals(c.N, c.K)
	for n := range p {
		floats.AddTo(p[n], fwd[n], bwd[n])
		top := floats.Max(p[n])
		if math.IsInf(top, -1) {
			return nil, errors.Wrapf(model.ErrDegenerateModel, "No assignment of variable %d has positive probability", n)
		}
		for k, lp := range p[n] {
			p[n][k] = math.Exp(lp - top)
		}
		if err := model.NormalizeVector(p[n]); err != nil {
			return nil, errors.Wrapf(err, "Can not normalize variable %d", n)
		}
	}

	return p, nil
}
