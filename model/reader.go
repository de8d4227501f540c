package model

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FieldReader is just a simple reader for whitespace-delimited text formats.
type FieldReader struct {
	Pos    int
	Fields []string
}

// NewFieldReader constructs a new field reader around the given data
func NewFieldReader(data string) *FieldReader {
	return &FieldReader{0, strings.Fields(data)}
}

// Remaining is the number of fields not yet read
func (fr *FieldReader) Remaining() int {
	return len(fr.Fields) - fr.Pos
}

// Read returns the next space-delimited field/token
func (fr *FieldReader) Read() (string, error) {
	if fr.Pos >= len(fr.Fields) {
		return "", errors.Wrap(ErrFormat, io.ErrUnexpectedEOF.Error())
	}
	p := fr.Pos
	fr.Pos++
	return fr.Fields[p], nil
}

// ReadInt reads the next token as an int
func (fr *FieldReader) ReadInt() (int, error) {
	s, err := fr.Read()
	if err != nil {
		return 0, err
	}

	i, err := strconv.ParseInt(s, 10, 0)
	if err != nil {
		return 0, errors.Wrapf(ErrFormat, "Field %d: %v", fr.Pos-1, err)
	}
	return int(i), nil
}

// ReadIntMin reads the next token as an int that must be at least min
func (fr *FieldReader) ReadIntMin(min int) (int, error) {
	i, err := fr.ReadInt()
	if err != nil {
		return 0, err
	}
	if i < min {
		return 0, errors.Wrapf(ErrFormat, "Read %d at field %d, expected a value >= %d", i, fr.Pos-1, min)
	}
	return i, nil
}

// ReadFloat reads the next token as a float
func (fr *FieldReader) ReadFloat() (float64, error) {
	s, err := fr.Read()
	if err != nil {
		return 0, err
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrFormat, "Field %d: %v", fr.Pos-1, err)
	}
	return f, nil
}
