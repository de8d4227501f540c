package model

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Model type constant string - matches UAI formats
const (
	BAYES  = "BAYES"
	MARKOV = "MARKOV"
)

// UAIFormat reads and writes chains in the UAI inference data set format.
// This format has also been used at competitions like PIC2011 at PASCAL2. A
// description is available at
// http://www.cs.huji.ac.il/project/PASCAL/fileFormat.php
//
// Any model whose factors are unary or pairwise over adjacent variables
// (X_i, X_i+1), with every variable the same cardinality, is a chain.
type UAIFormat struct{}

// Preprocessor for UAI files: remove lines that are blank or comments. Return
// the new buffer and the count of "real" lines found. If reqPrefix is
// specified, then a line starting with reqPrefix must be present AND all text
// before the first occurrence of reqPrefix will be dropped.
func uaiPreprocess(data []byte, reqPrefix string) (string, int) {
	lines := strings.Split(string(data), "\n")

	startFound := false
	if len(reqPrefix) < 1 {
		startFound = true // No req prefix specified
	}

	newPos := 0
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if len(ln) < 1 || ln[0] == 'c' {
			continue // Empty or comment: skip
		}

		if !startFound {
			if strings.HasPrefix(ln, reqPrefix) {
				startFound = true
			} else {
				continue // still looking...
			}
		}

		lines[newPos] = ln
		newPos++
	}

	return strings.Join(lines[:newPos], "\n"), newPos
}

// ReadChain implements the Reader interface
func (r UAIFormat) ReadChain(data []byte) (*Chain, error) {
	text, lineCount := uaiPreprocess(data, "")
	if lineCount < 1 {
		return nil, errors.Wrap(ErrFormat, "No lines found in file")
	}
	fr := NewFieldReader(text)
	if len(fr.Fields) < 6 {
		return nil, errors.Wrapf(ErrFormat, "Invalid data: only %d fields found (<6)", len(fr.Fields))
	}

	// Network type
	modelType, err := fr.Read()
	if err != nil {
		return nil, errors.Wrap(ErrFormat, "Error reading UAI file on Type")
	}
	if modelType != BAYES && modelType != MARKOV {
		return nil, errors.Wrapf(ErrFormat, "Unknown model type %v", modelType)
	}

	// Network variables: count followed by cardinality. For a chain every
	// cardinality must match.
	varCount, err := fr.ReadIntMin(1)
	if err != nil {
		return nil, errors.Wrapf(ErrFormat, "Error reading UAI Variable count: %v", err)
	}

	card := 0
	for i := 0; i < varCount; i++ {
		c, err := fr.ReadIntMin(1)
		if err != nil {
			return nil, errors.Wrapf(ErrFormat, "Error reading Card for var %d: %v", i, err)
		}
		if i == 0 {
			card = c
		} else if c != card {
			return nil, errors.Wrapf(ErrFormat, "Var %d has card %d but a chain needs every card to be %d", i, c, card)
		}
	}

	if err := checkTensorSize(varCount-1, card); err != nil {
		return nil, err
	}

	// Cliques: count, then each scope as a count followed by var indexes
	funcCount, err := fr.ReadIntMin(1)
	if err != nil {
		return nil, errors.Wrapf(ErrFormat, "Error reading UAI Clique count: %v", err)
	}

	factors := make([]*Factor, funcCount)
	for i := 0; i < funcCount; i++ {
		scopeSize, err := fr.ReadIntMin(1)
		if err != nil {
			return nil, errors.Wrapf(ErrFormat, "Error reading Clique size for Clique %d: %v", i, err)
		}
		if scopeSize > 2 {
			return nil, errors.Wrapf(ErrFormat, "Clique %d has %d vars: a chain only has unary and pairwise functions", i, scopeSize)
		}

		vars := make([]int, scopeSize)
		for j := range vars {
			idx, err := fr.ReadInt()
			if err != nil {
				return nil, errors.Wrapf(ErrFormat, "Error reading var idx for Clique %d Variable %d", i, j)
			}
			if idx < 0 || idx >= varCount {
				return nil, errors.Wrapf(ErrFormat, "Invalid var idx %d for Clique %d Variable %d", idx, i, j)
			}
			vars[j] = idx
		}

		factors[i], err = NewFactor(strconv.Itoa(i), vars, card)
		if err != nil {
			return nil, errors.Wrapf(ErrFormat, "Error creating function %d: %v", i, err)
		}
	}

	// Tables, in the same order as the scopes above
	for _, f := range factors {
		tabSize, err := fr.ReadInt()
		if err != nil {
			return nil, errors.Wrapf(ErrFormat, "Error reading table size on function %s", f.Name)
		}
		if tabSize != len(f.Table) {
			return nil, errors.Wrapf(ErrFormat, "Read table size %d != Clique size %d on function %s", tabSize, len(f.Table), f.Name)
		}

		for t := 0; t < tabSize; t++ {
			f.Table[t], err = fr.ReadFloat()
			if err != nil {
				return nil, errors.Wrapf(ErrFormat, "Error reading entry %d on function %s", t, f.Name)
			}
		}

		if err = f.Check(card); err != nil {
			return nil, errors.Wrap(ErrFormat, err.Error())
		}
	}

	return chainFromFactors(varCount, card, factors)
}

// chainFromFactors multiplies the factors into N-1 pairwise potentials.
// Missing edges are all ones (independence) and unary factors are folded
// into an adjacent edge.
func chainFromFactors(n int, k int, factors []*Factor) (*Chain, error) {
	phi := MakeTensor(n-1, k)
	for _, mat := range phi {
		for _, row := range mat {
			for j := range row {
				row[j] = 1.0
			}
		}
	}

	for _, f := range factors {
		switch len(f.Vars) {
		case 1:
			v := f.Vars[0]
			switch {
			case n == 1:
				for _, p := range f.Table {
					if p != f.Table[0] {
						return nil, errors.Wrapf(ErrFormat, "Function %s: a single variable chain can't hold a non-uniform unary factor", f.Name)
					}
				}
			case v < n-1:
				for i := 0; i < k; i++ {
					for j := 0; j < k; j++ {
						phi[v][i][j] *= f.Table[i]
					}
				}
			default:
				for i := 0; i < k; i++ {
					for j := 0; j < k; j++ {
						phi[v-1][i][j] *= f.Table[j]
					}
				}
			}

		case 2:
			a, b := f.Vars[0], f.Vars[1]
			switch {
			case b == a+1:
				for i := 0; i < k; i++ {
					for j := 0; j < k; j++ {
						phi[a][i][j] *= f.Table[i*k+j]
					}
				}
			case a == b+1:
				for i := 0; i < k; i++ {
					for j := 0; j < k; j++ {
						phi[b][i][j] *= f.Table[j*k+i]
					}
				}
			default:
				return nil, errors.Wrapf(ErrFormat, "Function %s joins non-adjacent vars %d and %d", f.Name, a, b)
			}

		default:
			return nil, errors.Wrapf(ErrFormat, "Function %s has %d vars: a chain only has unary and pairwise functions", f.Name, len(f.Vars))
		}
	}

	c := &Chain{N: 1, K: k}
	if err := c.LoadPotentials(phi); err != nil {
		return nil, err
	}
	return c, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// WriteChain implements the Writer interface. Values are written with full
// precision so a write/read round trip is exact.
func (r UAIFormat) WriteChain(c *Chain) ([]byte, error) {
	if err := c.Check(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n%d\n", MARKOV, c.N)
	cards := make([]string, c.N)
	for i := range cards {
		cards[i] = strconv.Itoa(c.K)
	}
	fmt.Fprintf(&buf, "%s\n", strings.Join(cards, " "))

	// A single variable still needs one function, so give it a flat one
	if c.N == 1 {
		fmt.Fprintf(&buf, "1\n1 0\n\n%d\n", c.K)
		ones := make([]string, c.K)
		for i := range ones {
			ones[i] = "1"
		}
		fmt.Fprintf(&buf, " %s\n", strings.Join(ones, " "))
		return buf.Bytes(), nil
	}

	fmt.Fprintf(&buf, "%d\n", c.N-1)
	for n := 0; n < c.N-1; n++ {
		fmt.Fprintf(&buf, "2 %d %d\n", n, n+1)
	}

	for _, mat := range c.Potentials {
		fmt.Fprintf(&buf, "\n%d\n", c.K*c.K)
		for _, row := range mat {
			vals := make([]string, len(row))
			for j, v := range row {
				vals[j] = formatFloat(v)
			}
			fmt.Fprintf(&buf, " %s\n", strings.Join(vals, " "))
		}
	}

	return buf.Bytes(), nil
}

// ReadMargSolution reads a UAI MAR file. Every variable must have the same
// cardinality.
func (r UAIFormat) ReadMargSolution(data []byte) (Marginals, error) {
	// Note that we only read one MAR solution, *BUT* we'll skip anything
	// before it. This is mainly useful for Merlin MAR files because Merlin
	// includes a PR solution section before the MAR section.
	text, lineCount := uaiPreprocess(data, "MAR")
	if lineCount < 1 {
		return nil, errors.Wrap(ErrFormat, "No MAR section in file")
	}
	fr := NewFieldReader(text)
	if len(fr.Fields) < 4 {
		return nil, errors.Wrapf(ErrFormat, "Invalid data: only %d fields found (<4)", len(fr.Fields))
	}

	solType, err := fr.Read()
	if err != nil || solType != "MAR" {
		return nil, errors.Wrapf(ErrFormat, "Unknown solution file type %s", solType)
	}

	varCount, err := fr.ReadIntMin(1)
	if err != nil {
		return nil, errors.Wrapf(ErrFormat, "Error reading MAR Variable Count: %v", err)
	}

	var m Marginals
	for i := 0; i < varCount; i++ {
		card, err := fr.ReadIntMin(1)
		if err != nil {
			return nil, errors.Wrapf(ErrFormat, "Error reading Card for var %d: %v", i, err)
		}
		if m == nil {
			m = NewMarginals(varCount, card)
		} else if card != m.Card() {
			return nil, errors.Wrapf(ErrFormat, "Var %d has card %d, expected %d", i, card, m.Card())
		}

		for k := 0; k < card; k++ {
			p, err := fr.ReadFloat()
			if err != nil {
				return nil, errors.Wrapf(ErrFormat, "Could not read marg prob %d on var %d", k, i)
			}
			if p < 0.0 || p > 1.0 {
				return nil, errors.Wrapf(ErrFormat, "Invalid p=%f marg prob %d on var %d", p, k, i)
			}
			m[i][k] = p
		}
	}

	if err = m.NormalizeRows(); err != nil {
		return nil, errors.Wrap(ErrFormat, err.Error())
	}

	return m, nil
}
