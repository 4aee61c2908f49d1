package ecs

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/plus3/sparsecs/ecs/bitset"
	"github.com/rotisserie/eris"
)

type clause uint8

const (
	clauseAll clause = iota
	clauseNone
	clauseOne
	clauseSome
	clauseOnly
)

var clauseNames = [...]string{"all", "none", "one", "some", "only"}

func (c clause) String() string { return clauseNames[c] }

// QueryOption adds one filter clause to a query.
type QueryOption struct {
	clause clause
	types  []ComponentType
}

// All requires every listed type. The types also become the query's
// parameter types, in order.
func All(types ...ComponentType) QueryOption { return QueryOption{clauseAll, types} }

// None rejects entities having any listed type.
func None(types ...ComponentType) QueryOption { return QueryOption{clauseNone, types} }

// One requires exactly one of the listed types.
func One(types ...ComponentType) QueryOption { return QueryOption{clauseOne, types} }

// Some requires at least one of the listed types.
func Some(types ...ComponentType) QueryOption { return QueryOption{clauseSome, types} }

// Only requires the signature to be exactly the listed types. It cannot be
// combined with the other clauses. The types become the parameter types.
func Only(types ...ComponentType) QueryOption { return QueryOption{clauseOnly, types} }

var lastQueryID atomic.Uint64

// Query is an immutable filter over signatures, compiled against one
// Registry. Worlds cache results per Query instance, so build a query once
// and reuse it every frame.
type Query struct {
	id       uint64
	registry *Registry

	all, none, one, some, only *bitset.Bitset
	hasOnly                    bool
	hasFilter                  bool

	params []ComponentType
}

// NewQuery compiles a query. It fails with ErrConflictingFilter when Only is
// mixed with any other clause.
func NewQuery(r *Registry, opts ...QueryOption) (*Query, error) {
	q := &Query{
		id:       lastQueryID.Add(1),
		registry: r,
		all:      bitset.New(0),
		none:     bitset.New(0),
		one:      bitset.New(0),
		some:     bitset.New(0),
		only:     bitset.New(0),
	}

	for _, opt := range opts {
		if opt.clause == clauseOnly && q.hasFilter {
			return nil, eris.Wrapf(ErrConflictingFilter, "only applied after %s", q.filterClauses())
		}
		if opt.clause != clauseOnly && q.hasOnly {
			return nil, eris.Wrapf(ErrConflictingFilter, "%s applied after only", opt.clause)
		}

		var target *bitset.Bitset
		switch opt.clause {
		case clauseAll:
			target = q.all
			q.hasFilter = true
		case clauseNone:
			target = q.none
			q.hasFilter = true
		case clauseOne:
			target = q.one
			q.hasFilter = true
		case clauseSome:
			target = q.some
			q.hasFilter = true
		case clauseOnly:
			target = q.only
			q.hasOnly = true
		}

		for _, ct := range opt.types {
			id := int(r.Register(ct))
			if (opt.clause == clauseAll || opt.clause == clauseOnly) && !target.Get(id) {
				q.params = append(q.params, ct)
			}
			target.Set(id, true)
		}
	}

	return q, nil
}

// MustQuery is like NewQuery but panics on error.
func MustQuery(r *Registry, opts ...QueryOption) *Query {
	q, err := NewQuery(r, opts...)
	if err != nil {
		panic(err)
	}
	return q
}

func (q *Query) filterClauses() string {
	var names []string
	for c, b := range []*bitset.Bitset{q.all, q.none, q.one, q.some} {
		if !b.IsEmpty() {
			names = append(names, clause(c).String())
		}
	}
	if len(names) == 0 {
		return "an empty filter"
	}
	return strings.Join(names, "/")
}

// ID returns the query's process-unique id.
func (q *Query) ID() uint64 { return q.id }

// Registry returns the registry the query was compiled against.
func (q *Query) Registry() *Registry { return q.registry }

// Params returns the parameter types in the order rows are laid out.
func (q *Query) Params() []ComponentType { return q.params }

// SatisfiedBy reports whether an entity with signature sig matches.
func (q *Query) SatisfiedBy(sig *bitset.Bitset) bool {
	if q.hasOnly {
		return sig.Equals(q.only)
	}
	if q.none.Overlaps(sig) {
		return false
	}
	if !q.one.IsEmpty() && q.one.IntersectionCount(sig) != 1 {
		return false
	}
	if !q.some.IsEmpty() && q.some.IntersectionCount(sig) == 0 {
		return false
	}
	return sig.IsSupersetOf(q.all)
}

func (q *Query) String() string {
	if q.hasOnly {
		return fmt.Sprintf("Query#%d{only:%s}", q.id, q.only)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Query#%d{", q.id)
	sep := ""
	for c, b := range []*bitset.Bitset{q.all, q.none, q.one, q.some} {
		if b.IsEmpty() {
			continue
		}
		fmt.Fprintf(&sb, "%s%s:%s", sep, clause(c), b)
		sep = " "
	}
	sb.WriteByte('}')
	return sb.String()
}
