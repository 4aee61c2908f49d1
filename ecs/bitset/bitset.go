// Package bitset implements the growable bit vector used for component
// signatures and query clauses.
package bitset

import (
	"iter"
	"math/bits"
	"strconv"
	"strings"
)

const wordBits = 64

// Bitset is a growable bit vector that tracks its own set-bit count.
// The zero value is an empty, usable bitset.
type Bitset struct {
	words  []uint64
	count  int
	frozen bool
}

var null = &Bitset{frozen: true}

// Null returns the distinguished empty signature. It is shared and frozen:
// calling a mutating method on it panics.
func Null() *Bitset {
	return null
}

// New returns an empty bitset with room for at least n bits.
func New(n int) *Bitset {
	return &Bitset{words: make([]uint64, wordsFor(n))}
}

// Of returns a bitset with exactly the given bits set.
func Of(indices ...int) *Bitset {
	b := &Bitset{}
	for _, i := range indices {
		b.Set(i, true)
	}
	return b
}

func wordsFor(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + wordBits - 1) / wordBits
}

func (b *Bitset) mutable() {
	if b.frozen {
		panic("bitset: cannot mutate the null bitset")
	}
}

// grow makes room for at least n words, doubling the current allocation.
func (b *Bitset) grow(n int) {
	if n <= len(b.words) {
		return
	}
	if n <= cap(b.words) {
		old := len(b.words)
		b.words = b.words[:n]
		clear(b.words[old:])
		return
	}
	newCap := max(cap(b.words)*2, n)
	words := make([]uint64, n, newCap)
	copy(words, b.words)
	b.words = words
}

// Set sets bit i to v, growing the bitset when needed. Negative indices panic.
func (b *Bitset) Set(i int, v bool) {
	b.mutable()
	if i < 0 {
		panic("bitset: negative index")
	}
	w, mask := i/wordBits, uint64(1)<<(uint(i)%wordBits)
	b.grow(w + 1)
	had := b.words[w]&mask != 0
	switch {
	case v && !had:
		b.words[w] |= mask
		b.count++
	case !v && had:
		b.words[w] &^= mask
		b.count--
	}
}

// Get reports whether bit i is set. Indices beyond the capacity are unset.
func (b *Bitset) Get(i int) bool {
	if i < 0 {
		return false
	}
	w := i / wordBits
	if w >= len(b.words) {
		return false
	}
	return b.words[w]&(uint64(1)<<(uint(i)%wordBits)) != 0
}

// Count returns the number of set bits.
func (b *Bitset) Count() int {
	return b.count
}

// Len returns the capacity in bits.
func (b *Bitset) Len() int {
	return len(b.words) * wordBits
}

// IsEmpty reports whether no bit is set.
func (b *Bitset) IsEmpty() bool {
	return b.count == 0
}

// And intersects b with o in place and returns b.
func (b *Bitset) And(o *Bitset) *Bitset {
	b.mutable()
	b.grow(len(o.words))
	n := 0
	for i := range b.words {
		if i < len(o.words) {
			b.words[i] &= o.words[i]
		} else {
			b.words[i] = 0
		}
		n += bits.OnesCount64(b.words[i])
	}
	b.count = n
	return b
}

// Or unions o into b in place and returns b.
func (b *Bitset) Or(o *Bitset) *Bitset {
	b.mutable()
	b.grow(len(o.words))
	n := 0
	for i := range b.words {
		if i < len(o.words) {
			b.words[i] |= o.words[i]
		}
		n += bits.OnesCount64(b.words[i])
	}
	b.count = n
	return b
}

// Xor computes the symmetric difference of b and o in place and returns b.
func (b *Bitset) Xor(o *Bitset) *Bitset {
	b.mutable()
	b.grow(len(o.words))
	n := 0
	for i := range b.words {
		if i < len(o.words) {
			b.words[i] ^= o.words[i]
		}
		n += bits.OnesCount64(b.words[i])
	}
	b.count = n
	return b
}

// Not flips every bit within the current capacity and returns b.
func (b *Bitset) Not() *Bitset {
	b.mutable()
	n := 0
	for i := range b.words {
		b.words[i] = ^b.words[i]
		n += bits.OnesCount64(b.words[i])
	}
	b.count = n
	return b
}

// Reset clears all bits, keeping the capacity.
func (b *Bitset) Reset() {
	b.mutable()
	clear(b.words)
	b.count = 0
}

// CopyFrom makes b an exact copy of o, reusing b's storage when possible.
func (b *Bitset) CopyFrom(o *Bitset) *Bitset {
	b.mutable()
	if cap(b.words) < len(o.words) {
		b.words = make([]uint64, len(o.words))
	} else {
		b.words = b.words[:len(o.words)]
	}
	copy(b.words, o.words)
	b.count = o.count
	return b
}

// Clone returns an unfrozen copy of b.
func (b *Bitset) Clone() *Bitset {
	c := &Bitset{words: make([]uint64, len(b.words)), count: b.count}
	copy(c.words, b.words)
	return c
}

// word returns word i, treating words past the end as zero.
func (b *Bitset) word(i int) uint64 {
	if i < len(b.words) {
		return b.words[i]
	}
	return 0
}

// Equals reports whether b and o hold the same set of bits, regardless of
// their capacities.
func (b *Bitset) Equals(o *Bitset) bool {
	if b.count != o.count {
		return false
	}
	n := max(len(b.words), len(o.words))
	for i := 0; i < n; i++ {
		if b.word(i) != o.word(i) {
			return false
		}
	}
	return true
}

// IsSupersetOf reports whether every bit set in o is also set in b.
func (b *Bitset) IsSupersetOf(o *Bitset) bool {
	if o.count > b.count {
		return false
	}
	for i, w := range o.words {
		if w&^b.word(i) != 0 {
			return false
		}
	}
	return true
}

// IsSubsetOf reports whether every bit set in b is also set in o.
func (b *Bitset) IsSubsetOf(o *Bitset) bool {
	return o.IsSupersetOf(b)
}

// Overlaps reports whether b and o share at least one set bit.
func (b *Bitset) Overlaps(o *Bitset) bool {
	n := min(len(b.words), len(o.words))
	for i := 0; i < n; i++ {
		if b.words[i]&o.words[i] != 0 {
			return true
		}
	}
	return false
}

// IntersectionCount returns the number of bits set in both b and o without
// allocating.
func (b *Bitset) IntersectionCount(o *Bitset) int {
	n := min(len(b.words), len(o.words))
	c := 0
	for i := 0; i < n; i++ {
		c += bits.OnesCount64(b.words[i] & o.words[i])
	}
	return c
}

// Ones iterates the indices of the set bits in ascending order.
func (b *Bitset) Ones() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i, w := range b.words {
			for w != 0 {
				t := bits.TrailingZeros64(w)
				if !yield(i*wordBits + t) {
					return
				}
				w &= w - 1
			}
		}
	}
}

// String renders the set bits as "{1 4 9}". The format is for debugging only.
func (b *Bitset) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for i := range b.Ones() {
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		sb.WriteString(strconv.Itoa(i))
	}
	sb.WriteByte('}')
	return sb.String()
}

// And returns a new bitset holding the intersection of all operands.
func And(a *Bitset, rest ...*Bitset) *Bitset {
	r := a.Clone()
	for _, o := range rest {
		r.And(o)
	}
	return r
}

// Or returns a new bitset holding the union of all operands.
func Or(a *Bitset, rest ...*Bitset) *Bitset {
	r := a.Clone()
	for _, o := range rest {
		r.Or(o)
	}
	return r
}

// Xor returns a new bitset holding the cumulative symmetric difference of all
// operands.
func Xor(a *Bitset, rest ...*Bitset) *Bitset {
	r := a.Clone()
	for _, o := range rest {
		r.Xor(o)
	}
	return r
}
