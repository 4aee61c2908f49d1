package bitset

// Pool recycles transient bitsets so hot paths can combine signatures
// without allocating. It is not safe for concurrent use.
type Pool struct {
	free []*Bitset
	bits int
}

// NewPool returns a pool whose fresh bitsets start with room for bits bits.
func NewPool(bits int) *Pool {
	return &Pool{bits: bits}
}

// Rent returns an empty bitset. Give it back with Return when done.
func (p *Pool) Rent() *Bitset {
	if n := len(p.free); n > 0 {
		b := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		return b
	}
	return New(p.bits)
}

// Return clears b and makes it available to later Rent calls. b must not be
// used by the caller afterwards.
func (p *Pool) Return(b *Bitset) {
	if b == nil || b.frozen {
		return
	}
	b.Reset()
	p.free = append(p.free, b)
}

// Len returns the number of idle bitsets held by the pool.
func (p *Pool) Len() int {
	return len(p.free)
}

// And is like the package-level And but rents the result from p.
func (p *Pool) And(a *Bitset, rest ...*Bitset) *Bitset {
	r := p.Rent().CopyFrom(a)
	for _, o := range rest {
		r.And(o)
	}
	return r
}

// Or is like the package-level Or but rents the result from p.
func (p *Pool) Or(a *Bitset, rest ...*Bitset) *Bitset {
	r := p.Rent().CopyFrom(a)
	for _, o := range rest {
		r.Or(o)
	}
	return r
}

// Xor is like the package-level Xor but rents the result from p.
func (p *Pool) Xor(a *Bitset, rest ...*Bitset) *Bitset {
	r := p.Rent().CopyFrom(a)
	for _, o := range rest {
		r.Xor(o)
	}
	return r
}
