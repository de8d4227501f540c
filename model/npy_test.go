package model

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CraigKelly/chainmar/rand"
)

// numpyBytes builds what np.save writes for a float64 array of the given shape
func numpyBytes(shape string, vals []float64, descr string) []byte {
	header := "{'descr': '" + descr + "', 'fortran_order': False, 'shape': " + shape + ", }"
	pad := 64 - (10+len(header)+1)%64
	header += strings.Repeat(" ", pad) + "\n"

	out := []byte("\x93NUMPY\x01\x00")
	out = append(out, byte(len(header)), byte(len(header)>>8))
	out = append(out, header...)
	for _, v := range vals {
		var w [8]byte
		if descr == ">f8" {
			binary.BigEndian.PutUint64(w[:], math.Float64bits(v))
		} else {
			binary.LittleEndian.PutUint64(w[:], math.Float64bits(v))
		}
		out = append(out, w[:]...)
	}
	return out
}

func TestNPYReadNumpyLayout(t *testing.T) {
	assert := assert.New(t)

	vals := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	c, err := NewChainFromBuffer(NPYFormat{}, numpyBytes("(2, 2, 2)", vals, "<f8"))
	require.NoError(t, err)

	assert.Equal(3, c.N)
	assert.Equal(2, c.K)
	assert.Equal([]float64{1, 2}, c.Potentials[0][0])
	assert.Equal([]float64{3, 4}, c.Potentials[0][1])
	assert.Equal([]float64{5, 6}, c.Potentials[1][0])
	assert.Equal([]float64{7, 8}, c.Potentials[1][1])

	c, err = NewChainFromBuffer(NPYFormat{}, numpyBytes("(1, 2, 2)", vals[:4], ">f8"))
	require.NoError(t, err)
	assert.Equal([]float64{3, 4}, c.Potentials[0][1])

	// Single variable: shape alone carries K
	c, err = NewChainFromBuffer(NPYFormat{}, numpyBytes("(0, 5, 5)", nil, "<f8"))
	require.NoError(t, err)
	assert.Equal(1, c.N)
	assert.Equal(5, c.K)
}

func TestNPYRoundTrip(t *testing.T) {
	assert := assert.New(t)

	gen, _ := rand.NewGenerator(1234)
	for _, shape := range [][2]int{{1, 1}, {1, 4}, {2, 2}, {10, 10}, {7, 3}} {
		c, err := NewChain(gen, shape[0], shape[1])
		require.NoError(t, err)

		data, err := NPYFormat{}.WriteChain(c)
		require.NoError(t, err)

		// Header is aligned the way numpy aligns it
		hlen := int(binary.LittleEndian.Uint16(data[8:10]))
		assert.Equal(0, (10+hlen)%64)
		assert.Equal(byte('\n'), data[10+hlen-1])

		back, err := NewChainFromBuffer(NPYFormat{}, data)
		require.NoError(t, err)
		assert.Equal(c.N, back.N)
		assert.Equal(c.K, back.K)
		assert.Equal(c, back) // exact, bit for bit
	}
}

func TestNPYBadData(t *testing.T) {
	assert := assert.New(t)

	good := numpyBytes("(1, 2, 2)", []float64{1, 2, 3, 4}, "<f8")

	cases := map[string][]byte{
		"Empty":             {},
		"Bad magic":         append([]byte("\x93NUMPX"), good[6:]...),
		"Bad version":       append([]byte("\x93NUMPY\x09\x00"), good[8:]...),
		"Truncated":         good[:20],
		"Short data":        good[:len(good)-8],
		"Long data":         append(append([]byte{}, good...), good[len(good)-8:]...),
		"Float32":           numpyBytes("(1, 2, 2)", []float64{1, 2}, "<f4"),
		"Int":               numpyBytes("(1, 2, 2)", []float64{1, 2, 3, 4}, "<i8"),
		"Two dims":          numpyBytes("(2, 2)", []float64{1, 2, 3, 4}, "<f8"),
		"Not square":        numpyBytes("(1, 2, 1)", []float64{1, 2}, "<f8"),
		"Zero K":            numpyBytes("(1, 0, 0)", nil, "<f8"),
		"Negative value":    numpyBytes("(1, 2, 2)", []float64{1, -2, 3, 4}, "<f8"),
		"NaN value":         numpyBytes("(1, 2, 2)", []float64{1, math.NaN(), 3, 4}, "<f8"),
		"Overflowing shape": numpyBytes("(1, 2147483648, 2147483648)", nil, "<f8"),
		"Huge N":            numpyBytes("(4611686018427387904, 1, 1)", nil, "<f8"),
		"Huge N with data":  numpyBytes("(1152921504606846976, 2, 2)", []float64{1, 2, 3, 4}, "<f8"),
		"Huge K single var": numpyBytes("(0, 3037000500, 3037000500)", nil, "<f8"),
	}

	for name, data := range cases {
		_, err := NewChainFromBuffer(NPYFormat{}, data)
		assert.True(errors.Is(err, ErrFormat), name)
	}

	fortran := strings.Replace(string(good), "'fortran_order': False", "'fortran_order': True ", 1)
	_, err := NewChainFromBuffer(NPYFormat{}, []byte(fortran))
	assert.True(errors.Is(err, ErrFormat))
}
