package model

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio"
)

// NPYFormat reads and writes the potential tensor as a NumPy .npy array of
// float64 with shape (N-1, K, K) in C order. N and K are recovered purely
// from the shape, so a single variable chain is (0, K, K).
type NPYFormat struct{}

const (
	npyMagic = "\x93NUMPY"
	npyAlign = 64
)

// WriteChain implements the Writer interface (format version 1.0). The
// header is written here because npyio.Write takes its shape from the Go
// value (1-d for slices, 2-d for matrices) and a chain needs a 3-d shape.
func (f NPYFormat) WriteChain(c *Chain) ([]byte, error) {
	if err := c.Check(); err != nil {
		return nil, err
	}

	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%d, %d, %d), }", c.N-1, c.K, c.K)

	// magic + 2 version bytes + 2 length bytes + header + newline
	pre := len(npyMagic) + 4
	total := pre + len(header) + 1
	if rem := total % npyAlign; rem != 0 {
		header += strings.Repeat(" ", npyAlign-rem)
	}
	header += "\n"

	var buf bytes.Buffer
	buf.Grow(pre + len(header) + 8*(c.N-1)*c.K*c.K)

	buf.WriteString(npyMagic)
	buf.WriteByte(1)
	buf.WriteByte(0)
	if err := binary.Write(&buf, binary.LittleEndian, uint16(len(header))); err != nil {
		return nil, errors.Wrap(err, "Could not write npy header length")
	}
	buf.WriteString(header)

	var word [8]byte
	for _, mat := range c.Potentials {
		for _, row := range mat {
			for _, v := range row {
				binary.LittleEndian.PutUint64(word[:], math.Float64bits(v))
				buf.Write(word[:])
			}
		}
	}

	return buf.Bytes(), nil
}

// ReadChain implements the Reader interface. Versions 1.0, 2.0 and 3.0 of
// the format are understood, in either byte order.
func (f NPYFormat) ReadChain(data []byte) (*Chain, error) {
	if len(data) < len(npyMagic)+4 || string(data[:len(npyMagic)]) != npyMagic {
		return nil, errors.Wrap(ErrFormat, "Missing npy magic string")
	}
	if major := data[len(npyMagic)]; major < 1 || major > 3 {
		return nil, errors.Wrapf(ErrFormat, "Unsupported npy version %d", major)
	}

	r, err := npyio.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(ErrFormat, "Invalid npy header: %v", err)
	}

	descr := r.Header.Descr
	if descr.Type != "<f8" && descr.Type != ">f8" {
		return nil, errors.Wrapf(ErrFormat, "Unsupported npy dtype %s (need float64)", descr.Type)
	}
	if descr.Fortran {
		return nil, errors.Wrap(ErrFormat, "Fortran ordered npy arrays are not supported")
	}

	dims := descr.Shape
	if len(dims) != 3 {
		return nil, errors.Wrapf(ErrFormat, "Potential tensor must have 3 dims, found %d", len(dims))
	}
	n, k := dims[0], dims[1]
	if n < 0 || k < 1 || dims[2] != k {
		return nil, errors.Wrapf(ErrFormat, "Potential tensor must be (N-1, K, K), found %v", dims)
	}

	if err := checkTensorSize(n, k); err != nil {
		return nil, err
	}

	// The header can claim anything: bound the shape by the bytes actually
	// present before multiplying or allocating
	words := len(data) / 8
	if n > 0 && (k > words || k*k > words || n > words/(k*k)) {
		return nil, errors.Wrapf(ErrFormat, "Shape %v is larger than the %d bytes of data", dims, len(data))
	}

	if want := npyDataStart(data) + 8*n*k*k; len(data) != want {
		return nil, errors.Wrapf(ErrFormat, "Expected %d bytes for shape %v, found %d", want, dims, len(data))
	}

	flat := make([]float64, n*k*k)
	if len(flat) > 0 {
		if err := r.Read(&flat); err != nil {
			return nil, errors.Wrapf(ErrFormat, "Could not read npy data for shape %v: %v", dims, err)
		}
	}
	if len(flat) != n*k*k {
		return nil, errors.Wrapf(ErrFormat, "Expected %d values for shape %v, found %d", n*k*k, dims, len(flat))
	}

	phi := MakeTensor(n, k)
	for t, mat := range phi {
		for i, row := range mat {
			copy(row, flat[(t*k+i)*k:(t*k+i+1)*k])
		}
	}

	c := &Chain{N: 1, K: k}
	if err := c.LoadPotentials(phi); err != nil {
		return nil, err
	}
	return c, nil
}

// npyDataStart is the offset of the first data byte: the prelude (magic,
// version and header length) plus the header itself
func npyDataStart(data []byte) int {
	if data[len(npyMagic)] == 1 {
		return len(npyMagic) + 4 + int(binary.LittleEndian.Uint16(data[len(npyMagic)+2:]))
	}
	return len(npyMagic) + 6 + int(binary.LittleEndian.Uint32(data[len(npyMagic)+2:]))
}
