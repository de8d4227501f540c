package rand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMTBadSeed(t *testing.T) {
	assert := assert.New(t)

	gen, err := NewGeneratorSlice([]uint64{})
	assert.Nil(gen)
	assert.Error(err)
}

func TestMTCanonicalSeed(t *testing.T) {
	assert := assert.New(t)

	gen, err := NewGeneratorSlice([]uint64{0x12345, 0x23456, 0x34567, 0x45678})
	assert.NotNil(gen)
	assert.NoError(err)

	origTestSeq := []uint64{
		7266447313870364031,
		4946485549665804864,
		16945909448695747420,
		16394063075524226720,
		4873882236456199058,
	}

	// Now convert to the format we should get from Int63
	for _, v := range origTestSeq {
		exp := int64(v & 0x7fffffffffffffff)
		act := gen.Int63()
		assert.Equal(exp, act)
	}
}

func TestSameSeedSameStream(t *testing.T) {
	assert := assert.New(t)

	g1, err := NewGenerator(42)
	assert.NoError(err)
	g2, err := NewGenerator(42)
	assert.NoError(err)
	g3, err := NewGenerator(43)
	assert.NoError(err)

	diff := 0
	for i := 0; i < 100; i++ {
		v1, v2, v3 := g1.Int63(), g2.Int63(), g3.Int63()
		assert.Equal(v1, v2)
		if v1 != v3 {
			diff++
		}
	}
	assert.True(diff > 90, "Different seeds should give different streams")
}

func TestRanges(t *testing.T) {
	assert := assert.New(t)

	gen, err := NewGenerator(1)
	assert.NoError(err)

	seen := make([]int, 7)
	for i := 0; i < 7000; i++ {
		f := gen.Float64()
		assert.True(f >= 0.0 && f < 1.0)

		n := gen.Intn(7)
		assert.True(n >= 0 && n < 7)
		seen[n]++
	}
	for i, c := range seen {
		assert.True(c > 0, "Value %d never drawn", i)
	}

	assert.Equal(0, gen.Intn(1))
	assert.Panics(func() { gen.Intn(0) })
	assert.Panics(func() { gen.Int31n(-1) })
	assert.Panics(func() { gen.Int63n(0) })
}

var benchSink float64

func BenchmarkFloat64(b *testing.B) {
	gen, err := NewGenerator(42)
	if err != nil {
		b.Fatalf("Could not init PRNG %v", err)
	}

	b.ResetTimer()

	s := 0.0
	for i := 0; i < b.N; i++ {
		s += gen.Float64()
	}
	benchSink = s
}
