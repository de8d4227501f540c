package model

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestFieldReader(t *testing.T) {
	assert := assert.New(t)

	fr := NewFieldReader("  MAR 3\n-1 0.25 x ")
	assert.Equal(5, fr.Remaining())

	s, err := fr.Read()
	assert.NoError(err)
	assert.Equal("MAR", s)

	i, err := fr.ReadIntMin(1)
	assert.NoError(err)
	assert.Equal(3, i)

	_, err = fr.ReadIntMin(0)
	assert.True(errors.Is(err, ErrFormat), "%v", err)

	f, err := fr.ReadFloat()
	assert.NoError(err)
	assert.Equal(0.25, f)

	_, err = fr.ReadInt()
	assert.True(errors.Is(err, ErrFormat), "%v", err)

	assert.Equal(0, fr.Remaining())
	_, err = fr.Read()
	assert.True(errors.Is(err, ErrFormat), "%v", err)
	_, err = fr.ReadFloat()
	assert.True(errors.Is(err, ErrFormat), "%v", err)
}
