package bitset_test

import (
	"math/rand/v2"
	"testing"

	"github.com/plus3/sparsecs/ecs/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomBitset(r *rand.Rand) *bitset.Bitset {
	size := r.IntN(300)
	b := bitset.New(size)
	for i := 0; i < size; i++ {
		if r.IntN(3) == 0 {
			b.Set(i, true)
		}
	}
	return b
}

func TestSetGet(t *testing.T) {
	b := bitset.New(0)
	assert.False(t, b.Get(5))
	assert.False(t, b.Get(-1))

	b.Set(5, true)
	b.Set(130, true)
	assert.True(t, b.Get(5))
	assert.True(t, b.Get(130))
	assert.False(t, b.Get(6))
	assert.False(t, b.Get(100000))
	assert.Equal(t, 2, b.Count())
	assert.GreaterOrEqual(t, b.Len(), 131)

	b.Set(5, true)
	assert.Equal(t, 2, b.Count(), "setting a set bit must not change the count")

	b.Set(5, false)
	b.Set(5, false)
	assert.Equal(t, 1, b.Count())
	assert.False(t, b.Get(5))

	b.Set(1000, false)
	assert.GreaterOrEqual(t, b.Len(), 1001)
	assert.Equal(t, 1, b.Count())
}

func TestSetNegativePanics(t *testing.T) {
	assert.Panics(t, func() { bitset.New(8).Set(-1, true) })
}

func TestBinaryOpsDifferentSizes(t *testing.T) {
	small := bitset.Of(1, 3)
	large := bitset.Of(1, 200)

	and := small.Clone().And(large)
	assert.True(t, and.Equals(bitset.Of(1)))
	assert.Equal(t, 1, and.Count())
	assert.GreaterOrEqual(t, and.Len(), large.Len(), "receiver grows to the larger operand")

	or := small.Clone().Or(large)
	assert.True(t, or.Equals(bitset.Of(1, 3, 200)))
	assert.Equal(t, 3, or.Count())

	xor := large.Clone().Xor(small)
	assert.True(t, xor.Equals(bitset.Of(3, 200)))
	assert.Equal(t, 2, xor.Count())
}

func TestNotStaysWithinCapacity(t *testing.T) {
	b := bitset.New(64)
	b.Set(0, true)
	b.Not()
	assert.Equal(t, 63, b.Count())
	assert.False(t, b.Get(0))
	assert.True(t, b.Get(63))
	assert.False(t, b.Get(64))
}

func TestEqualsIgnoresCapacity(t *testing.T) {
	a := bitset.New(8)
	a.Set(3, true)
	b := bitset.New(4096)
	b.Set(3, true)

	assert.NotEqual(t, a.Len(), b.Len())
	assert.True(t, a.Equals(b))
	assert.True(t, b.Equals(a))

	// A bit set and cleared again leaves extra capacity behind.
	c := bitset.Of(3, 900)
	c.Set(900, false)
	assert.True(t, c.Equals(a))
}

func TestNull(t *testing.T) {
	null := bitset.Null()
	assert.True(t, null.IsEmpty())
	assert.Same(t, null, bitset.Null())
	assert.Panics(t, func() { null.Set(1, true) })
	assert.Panics(t, func() { null.Or(bitset.Of(1)) })

	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 100; i++ {
		b := randomBitset(r)
		assert.True(t, b.IsSupersetOf(null))
		assert.True(t, null.IsSubsetOf(b))
		if !b.IsEmpty() {
			assert.False(t, b.IsSubsetOf(null))
		} else {
			assert.True(t, b.IsSubsetOf(null))
		}
	}
	assert.True(t, bitset.New(512).IsSubsetOf(null))
}

func TestAlgebraProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 500; i++ {
		a, b, c := randomBitset(r), randomBitset(r), randomBitset(r)

		chained := a.Clone().And(b).And(c)
		assert.True(t, chained.Equals(bitset.And(a, b, c)), "chained and must equal static and")

		ab := a.Clone().Or(b)
		ba := b.Clone().Or(a)
		assert.True(t, ab.Equals(ba), "or is commutative")
		assert.True(t, a.Clone().Or(a).Equals(a), "or is idempotent")

		subsetBoth := a.IsSubsetOf(b) && b.IsSubsetOf(a)
		assert.Equal(t, a.Equals(b), subsetBoth)

		assert.Equal(t, a.Clone().And(b).Count(), a.IntersectionCount(b))
		assert.Equal(t, a.IntersectionCount(b) > 0, a.Overlaps(b))
	}
}

func TestCountMatchesOnes(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	for i := 0; i < 50; i++ {
		b := randomBitset(r).Xor(randomBitset(r))
		n := 0
		for range b.Ones() {
			n++
		}
		assert.Equal(t, b.Count(), n)
	}
}

func TestCopyFromThenGrowClearsStaleWords(t *testing.T) {
	b := bitset.Of(10, 150)
	b.CopyFrom(bitset.Of(2))
	b.Set(140, true)
	assert.True(t, b.Equals(bitset.Of(2, 140)))
	assert.False(t, b.Get(150))
}

func TestString(t *testing.T) {
	assert.Equal(t, "{}", bitset.New(0).String())
	assert.Equal(t, "{0 4 65}", bitset.Of(65, 0, 4).String())
}

func TestPool(t *testing.T) {
	p := bitset.NewPool(64)
	a := bitset.Of(1, 2, 3)
	b := bitset.Of(2, 3, 4)

	r := p.And(a, b)
	require.True(t, r.Equals(bitset.Of(2, 3)))
	p.Return(r)
	assert.Equal(t, 1, p.Len())

	again := p.Rent()
	assert.Same(t, r, again, "rent reuses returned bitsets")
	assert.True(t, again.IsEmpty())
	p.Return(again)

	or := p.Or(a, b)
	assert.True(t, or.Equals(bitset.Of(1, 2, 3, 4)))
	xor := p.Xor(a, b)
	assert.True(t, xor.Equals(bitset.Of(1, 4)))

	p.Return(bitset.Null())
	assert.Equal(t, 0, p.Len(), "the null bitset is never pooled")
}

func TestPoolRentDoesNotAllocate(t *testing.T) {
	p := bitset.NewPool(128)
	a := bitset.Of(1, 70)
	b := bitset.Of(70)
	p.Return(p.Rent())

	allocs := testing.AllocsPerRun(100, func() {
		r := p.And(a, b)
		p.Return(r)
	})
	assert.Zero(t, allocs)
}
