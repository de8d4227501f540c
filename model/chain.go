package model

import (
	"io/ioutil"
	"math"

	"github.com/pkg/errors"
)

// Float64Source is the randomness a Chain needs for random initialization.
// rand.Generator implements it.
type Float64Source interface {
	Float64() float64
}

// Reader implementors instantiate a chain from a byte stream
type Reader interface {
	ReadChain(data []byte) (*Chain, error)
}

// Writer implementors serialize a chain to a byte stream
type Writer interface {
	WriteChain(c *Chain) ([]byte, error)
}

// Chain is a chain-structured pairwise Markov network over N discrete
// variables X0 - X1 - ... - XN-1, each taking values 0 to K-1.
//
// Potentials[n][i][j] is the (nonnegative) compatibility score for X_n=i and
// X_{n+1}=j, so there are N-1 KxK matrices. A chain with N=1 has no
// potentials. Inference only ever reads a Chain.
type Chain struct {
	N          int           // Variable count
	K          int           // Cardinality of every variable
	Potentials [][][]float64 // (N-1) x K x K pairwise potentials
}

// NewChain creates a chain with n variables of cardinality k where every
// potential is an independent draw from U[0,1) taken from src.
func NewChain(src Float64Source, n int, k int) (*Chain, error) {
	if n < 1 {
		return nil, errors.Wrapf(ErrInvalidArgument, "Invalid variable count %d", n)
	}
	if k < 1 {
		return nil, errors.Wrapf(ErrInvalidArgument, "Invalid cardinality %d", k)
	}
	if src == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "A random source is required")
	}

	c := &Chain{
		N:          n,
		K:          k,
		Potentials: MakeTensor(n-1, k),
	}

	for _, phi := range c.Potentials {
		for _, row := range phi {
			for j := range row {
				row[j] = src.Float64()
			}
		}
	}

	return c, nil
}

// NewChainFromPotentials creates a chain from an existing tensor. N and K
// are recovered from the tensor's shape, so the tensor may not be empty.
func NewChainFromPotentials(phi [][][]float64) (*Chain, error) {
	if len(phi) < 1 {
		return nil, errors.Wrap(ErrFormat, "Can not infer cardinality from an empty potential tensor")
	}

	c := &Chain{N: 1, K: len(phi[0])}
	if err := c.LoadPotentials(phi); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadPotentials replaces the current potentials with a copy of phi and
// resets N to len(phi)+1 and K to the row count of phi's slices. An empty
// tensor makes a single variable chain and keeps the current K.
func (c *Chain) LoadPotentials(phi [][][]float64) error {
	k := c.K
	if len(phi) > 0 {
		k = len(phi[0])
	}
	if k < 1 {
		return errors.Wrapf(ErrFormat, "Invalid cardinality %d in potential tensor", k)
	}

	cp := MakeTensor(len(phi), k)
	for n, mat := range phi {
		if len(mat) != k {
			return errors.Wrapf(ErrFormat, "Potential %d has %d rows, expected %d", n, len(mat), k)
		}
		for i, row := range mat {
			if len(row) != k {
				return errors.Wrapf(ErrFormat, "Potential %d row %d has %d columns, expected %d", n, i, len(row), k)
			}
			for j, v := range row {
				if v < 0.0 || math.IsNaN(v) || math.IsInf(v, 0) {
					return errors.Wrapf(ErrFormat, "Potential %d has invalid entry %v at (%d,%d)", n, v, i, j)
				}
			}
			copy(cp[n][i], row)
		}
	}

	c.N = len(phi) + 1
	c.K = k
	c.Potentials = cp
	return nil
}

// Check returns an error if the chain breaks an invariant
func (c *Chain) Check() error {
	if c.N < 1 {
		return errors.Wrapf(ErrInvalidArgument, "Invalid variable count %d", c.N)
	}
	if c.K < 1 {
		return errors.Wrapf(ErrInvalidArgument, "Invalid cardinality %d", c.K)
	}
	if len(c.Potentials) != c.N-1 {
		return errors.Wrapf(ErrFormat, "Chain with %d vars has %d potentials", c.N, len(c.Potentials))
	}

	for n, mat := range c.Potentials {
		if len(mat) != c.K {
			return errors.Wrapf(ErrFormat, "Potential %d has %d rows, expected %d", n, len(mat), c.K)
		}
		for i, row := range mat {
			if len(row) != c.K {
				return errors.Wrapf(ErrFormat, "Potential %d row %d has %d columns, expected %d", n, i, len(row), c.K)
			}
			for j, v := range row {
				if v < 0.0 || math.IsNaN(v) || math.IsInf(v, 0) {
					return errors.Wrapf(ErrFormat, "Potential %d has invalid entry %v at (%d,%d)", n, v, i, j)
				}
			}
		}
	}

	return nil
}

// Clone returns a deep copy of the chain
func (c *Chain) Clone() *Chain {
	cp := &Chain{
		N:          c.N,
		K:          c.K,
		Potentials: MakeTensor(len(c.Potentials), c.K),
	}
	for n, mat := range c.Potentials {
		for i, row := range mat {
			copy(cp.Potentials[n][i], row)
		}
	}
	return cp
}

// Potential returns the score for X_n=i, X_{n+1}=j
func (c *Chain) Potential(n, i, j int) float64 {
	return c.Potentials[n][i][j]
}

// NewChainFromFile reads and checks a chain from the specified file.
func NewChainFromFile(r Reader, filename string) (*Chain, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not READ chain from %s", filename)
	}

	return NewChainFromBuffer(r, data)
}

// NewChainFromBuffer creates a chain from the given pre-read data
func NewChainFromBuffer(r Reader, data []byte) (*Chain, error) {
	c, err := r.ReadChain(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not PARSE chain")
	}

	err = c.Check()
	if err != nil {
		return nil, errors.Wrapf(err, "Parsed chain is not valid")
	}

	return c, nil
}

// SaveToFile writes the chain to filename in the given format
func (c *Chain) SaveToFile(w Writer, filename string) error {
	data, err := w.WriteChain(c)
	if err != nil {
		return errors.Wrapf(err, "Could not ENCODE chain for %s", filename)
	}

	err = ioutil.WriteFile(filename, data, 0644)
	if err != nil {
		return errors.Wrapf(err, "Could not WRITE chain to %s", filename)
	}

	return nil
}

// MaxTensorEntries bounds the (N-1)*K*K potentials a reader will allocate
const MaxTensorEntries = 1 << 28

// checkTensorSize returns ErrFormat if an (n, k, k) tensor is too big to
// allocate. The products are checked by division so they can't overflow.
func checkTensorSize(n, k int) error {
	if n < 0 || k < 1 {
		return errors.Wrapf(ErrFormat, "Invalid tensor shape (%d, %d, %d)", n, k, k)
	}
	if k > MaxTensorEntries/k || (n > 0 && n > MaxTensorEntries/(k*k)) {
		return errors.Wrapf(ErrFormat, "Tensor shape (%d, %d, %d) exceeds %d entries", n, k, k, MaxTensorEntries)
	}
	return nil
}

// MakeTensor allocates an n x k x k tensor of zeros
func MakeTensor(n, k int) [][][]float64 {
	t := make([][][]float64, n)
	for i := range t {
		t[i] = MakeMatrix(k, k)
	}
	return t
}

// MakeMatrix allocates an r x c matrix of zeros backed by one slice
func MakeMatrix(r, c int) [][]float64 {
	back := make([]float64, r*c)
	m := make([][]float64, r)
	for i := range m {
		m[i] = back[i*c : (i+1)*c : (i+1)*c]
	}
	return m
}
