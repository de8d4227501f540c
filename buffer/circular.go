package buffer

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// CircularFloat is a circular buffer of float64 with the ability to iterate
// over the first and second halves of the values collected in the order that
// they were appended.
type CircularFloat struct {
	buffer    []float64 // actual storage
	pos       int       // Current position in buffer
	BufSize   int       // BufSize is the fixed number of values maintained in memory
	Count     int       // Count is the number of values in memory. Will always be <= BufSize
	TotalSeen int64     // TotalSeen is the total number of times Add has been called
}

// NewCircularFloat creates a new circular buffer of totalSize. If totalSize
// is not a multiple of 2, it will be adjusted down. A size below 2 is an
// error since there would be no halves to compare.
func NewCircularFloat(totalSize int) (*CircularFloat, error) {
	half := totalSize / 2
	total := half + half
	if total < 2 {
		return nil, errors.Errorf("Circular buffer size %d is too small", totalSize)
	}

	return &CircularFloat{
		buffer:  make([]float64, total),
		pos:     0,
		BufSize: total,
		Count:   0,
	}, nil
}

// Internal: return the next array position
func (c *CircularFloat) nextPos() int {
	return (c.pos + 1) % c.BufSize
}

// Add appends the given value to the buffer, overwriting the oldest entry
func (c *CircularFloat) Add(f float64) {
	c.TotalSeen++

	c.buffer[c.pos] = f
	c.pos = c.nextPos()

	c.Count++
	if c.Count > c.BufSize {
		c.Count = c.BufSize // max out
	}
}

// Full is true once Add has been called at least BufSize times
func (c *CircularFloat) Full() bool {
	return c.Count >= c.BufSize
}

// FirstHalf returns an iterator over the first (oldest) half of the stored
// values. Will not return a valid iterator until the buffer is Full.
func (c *CircularFloat) FirstHalf() *CircularFloatIterator {
	if !c.Full() {
		return nil
	}

	return &CircularFloatIterator{
		buf:    c,
		curr:   c.pos, // Oldest is the one we're about to write
		remain: c.BufSize / 2,
	}
}

// SecondHalf returns an iterator over the second (most recent) half of the
// stored values. Will not return a valid iterator until the buffer is Full.
func (c *CircularFloat) SecondHalf() *CircularFloatIterator {
	if !c.Full() {
		return nil
	}

	half := c.BufSize / 2
	pos := (c.pos + half) % c.BufSize

	return &CircularFloatIterator{
		buf:    c,
		curr:   pos,
		remain: half,
	}
}

// HalfMeans returns the mean of the older and the newer half of a full
// buffer. ok is false until the buffer is full.
func (c *CircularFloat) HalfMeans() (first float64, second float64, ok bool) {
	if !c.Full() {
		return 0, 0, false
	}

	return c.FirstHalf().Mean(), c.SecondHalf().Mean(), true
}

// CircularFloatIterator provides an iterator over a CircularFloat buffer
type CircularFloatIterator struct {
	buf    *CircularFloat
	curr   int
	remain int
}

// Next returns True when there are more values to read via Value
func (i *CircularFloatIterator) Next() bool {
	return i.remain > 0
}

// Value return the next value to be read. Should only be called if Next() is
// True
func (i *CircularFloatIterator) Value() float64 {
	v := i.buf.buffer[i.curr]
	i.curr = (i.curr + 1) % i.buf.BufSize
	i.remain--
	return v
}

// Mean consumes the remaining values and returns their mean (0 if none remain)
func (i *CircularFloatIterator) Mean() float64 {
	vals := make([]float64, 0, i.remain)
	for i.Next() {
		vals = append(vals, i.Value())
	}
	if len(vals) < 1 {
		return 0
	}
	return floats.Sum(vals) / float64(len(vals))
}
