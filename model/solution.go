package model

import (
	"fmt"
	"io"
	"io/ioutil"
	"strings"

	"github.com/pkg/errors"
)

// SolReader implementors read a solution (currently we only support marginal solutions)
type SolReader interface {
	ReadMargSolution(data []byte) (Marginals, error)
}

// NewSolutionFromFile reads a MAR solution file
func NewSolutionFromFile(r SolReader, filename string) (Marginals, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not READ solution from %s", filename)
	}

	return NewSolutionFromBuffer(r, data)
}

// NewSolutionFromBuffer reads a MAR solution from the specified buffer
func NewSolutionFromBuffer(r SolReader, data []byte) (Marginals, error) {
	m, err := r.ReadMargSolution(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not PARSE solution")
	}

	return m, nil
}

// CheckAgainst insures that the solution matches the shape of the chain
func (m Marginals) CheckAgainst(c *Chain) error {
	if err := m.Check(); err != nil {
		return err
	}
	if m.Vars() != c.N || m.Card() != c.K {
		return errors.Wrapf(ErrInvalidArgument, "Solution shape %dx%d != chain shape %dx%d", m.Vars(), m.Card(), c.N, c.K)
	}
	return nil
}

// WriteMAR writes m as a UAI MAR solution, one variable per line
func WriteMAR(w io.Writer, m Marginals) error {
	if _, err := fmt.Fprintf(w, "MAR\n%d\n", m.Vars()); err != nil {
		return errors.Wrap(err, "Could not write MAR header")
	}

	for n, row := range m {
		vals := make([]string, len(row))
		for k, p := range row {
			vals[k] = formatFloat(p)
		}
		if _, err := fmt.Fprintf(w, "%d %s\n", len(row), strings.Join(vals, " ")); err != nil {
			return errors.Wrapf(err, "Could not write MAR var %d", n)
		}
	}

	return nil
}
