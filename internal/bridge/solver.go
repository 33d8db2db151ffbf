package bridge

import (
	"cmp"
	"slices"

	"github.com/vk/gridbridge/internal/compat"
	"github.com/vk/gridbridge/internal/graph"
	"github.com/vk/gridbridge/internal/network"
	"github.com/vk/gridbridge/internal/revert"
	"github.com/vk/gridbridge/internal/typesys"
)

// side is one endpoint of the connection, classified.
type side struct {
	port     graph.PortID
	output   bool
	current  typesys.Type
	eligible bool
	cands    []typesys.TypeID
}

func (s side) fixed() (typesys.TypeID, bool) {
	return s.current.ID(), s.current.IsConcrete()
}

// candidate is a solution with its ranking attributes.
type candidate struct {
	Solution
	secondary bool
	target    typesys.TypeID
}

type solver struct {
	g    *graph.Graph
	cat  *typesys.Catalog
	r    *network.Resolver
	conn compat.Connection
	out  []candidate
	seen map[string]struct{}
}

// Solve returns every way to make conn legal, best first. An empty result
// means the connection is impossible. When conn is legal as-is, or needs
// only the specialization of one generic side, that is the sole result.
//
// dragToIsTo names the drag destination: conn.To when true, conn.From
// otherwise. Options adjusting the destination rank first.
func Solve(g *graph.Graph, cat *typesys.Catalog, conn compat.Connection, dragToIsTo bool) []Solution {
	if !conn.Valid(g) {
		return nil
	}

	s := &solver{
		g:    g,
		cat:  cat,
		r:    conn.Resolver(g, cat),
		conn: conn,
		seen: make(map[string]struct{}),
	}

	switch v := compat.Analyze(g, cat, conn); v.Kind {
	case compat.Direct:
		return []Solution{{Kind: Direct}}
	case compat.NeedsSpecialization:
		return []Solution{{
			Kind:            SpecializeOnly,
			Specializations: []Specialization{s.specialize(v.Port, v.Type)},
		}}
	}

	from, to := s.classify(conn.From, true), s.classify(conn.To, false)
	primary, secondary := to, from
	if !dragToIsTo {
		primary, secondary = from, to
	}

	switch {
	case !from.eligible && !to.eligible:
		s.convertFixed(from, to)
	case primary.eligible && !secondary.eligible:
		s.adjustOne(primary, secondary, false)
	case secondary.eligible && !primary.eligible:
		s.adjustOne(secondary, primary, true)
	default:
		s.adjustBoth(primary, secondary)
	}
	return s.sorted()
}

func (s *solver) classify(port graph.PortID, output bool) side {
	sd := side{port: port, output: output, current: s.g.Type(port)}
	switch {
	case sd.current.IsGeneric():
		sd.eligible = true
	case revert.CanRevertNondestructively(s.g, s.cat, port, s.conn.Replacing):
		sd.eligible = true
	}
	if sd.eligible {
		sd.cands, _ = s.r.CompatibleTypes(port)
	}
	return sd
}

// specialize describes resolving port to id.
func (s *solver) specialize(port graph.PortID, id typesys.TypeID) Specialization {
	sp := Specialization{Port: port, Type: id}
	if orig, ok := s.g.OriginalType(port); ok {
		sp.Variable = orig.Variable()
		sp.Element, _ = orig.ElementFor(id)
	}
	cur := s.g.Type(port)
	sp.NoChange = cur.IsConcrete() && cur.ID() == id
	return sp
}

// converters returns the converters from the output side's type to the
// input side's type, where a has type aType and the other side bType.
func (s *solver) converters(a side, aType, bType typesys.TypeID) (typesys.TypeID, typesys.TypeID, []typesys.ConverterID) {
	from, to := aType, bType
	if !a.output {
		from, to = bType, aType
	}
	return from, to, s.cat.TypeConverters(from, to)
}

func (s *solver) add(c candidate) {
	k := c.key()
	if _, dup := s.seen[k]; dup {
		return
	}
	s.seen[k] = struct{}{}
	s.out = append(s.out, c)
}

// convertFixed handles two sides whose types cannot change.
func (s *solver) convertFixed(from, to side) {
	ft, okf := from.fixed()
	tt, okt := to.fixed()
	if !okf || !okt {
		return
	}
	for _, conv := range s.cat.TypeConverters(ft, tt) {
		s.add(candidate{
			Solution: Solution{Kind: TypeConvert, Converter: conv, ConvertFrom: ft, ConvertTo: tt},
			target:   tt,
		})
	}
}

// adjustOne handles an adjustable side a facing a fixed side b. A direct
// specialization of a to b's type wins outright; otherwise a is paired
// with every converter from one of its candidates to b's type.
func (s *solver) adjustOne(a, b side, secondary bool) {
	bt, ok := b.fixed()
	if !ok {
		return
	}
	if slices.Contains(a.cands, bt) {
		s.add(candidate{
			Solution: Solution{
				Kind:            SpecializeOnly,
				Specializations: []Specialization{s.specialize(a.port, bt)},
			},
			secondary: secondary,
			target:    bt,
		})
		return
	}
	s.convertAgainst(a, bt, secondary)
}

// convertAgainst pairs every candidate of a with the converters joining it
// to the fixed type bt.
func (s *solver) convertAgainst(a side, bt typesys.TypeID, secondary bool) {
	for _, at := range a.cands {
		if at == bt {
			continue
		}
		from, to, convs := s.converters(a, at, bt)
		for _, conv := range convs {
			s.add(candidate{
				Solution: Solution{
					Kind:            SpecializeAndConvert,
					Specializations: []Specialization{s.specialize(a.port, at)},
					Converter:       conv,
					ConvertFrom:     from,
					ConvertTo:       to,
				},
				secondary: secondary,
				target:    at,
			})
		}
	}
}

// adjustBoth handles two adjustable sides. They may agree on a common type
// without a converter, or either side may be adjusted against the other's
// current concrete type through a converter. When neither side has a
// concrete type both are specialized around a converter.
func (s *solver) adjustBoth(primary, secondary side) {
	for _, t := range primary.cands {
		if !slices.Contains(secondary.cands, t) {
			continue
		}
		s.add(candidate{
			Solution: Solution{
				Kind:            SpecializeOnly,
				Specializations: s.pair(primary, t, secondary, t),
			},
			target: t,
		})
	}

	pt, pFixed := primary.fixed()
	st, sFixed := secondary.fixed()
	if sFixed {
		s.convertAgainst(primary, st, false)
	}
	if pFixed {
		s.convertAgainst(secondary, pt, true)
	}
	if pFixed || sFixed {
		return
	}

	for _, a := range primary.cands {
		for _, b := range secondary.cands {
			if a == b {
				continue
			}
			from, to, convs := s.converters(primary, a, b)
			for _, conv := range convs {
				s.add(candidate{
					Solution: Solution{
						Kind:            SpecializeAndConvert,
						Specializations: s.pair(primary, a, secondary, b),
						Converter:       conv,
						ConvertFrom:     from,
						ConvertTo:       to,
					},
					target: a,
				})
			}
		}
	}
}

// pair specializes both sides, output side first.
func (s *solver) pair(a side, at typesys.TypeID, b side, bt typesys.TypeID) []Specialization {
	if b.output {
		a, b = b, a
		at, bt = bt, at
	}
	return []Specialization{s.specialize(a.port, at), s.specialize(b.port, bt)}
}

func (s *solver) sorted() []Solution {
	slices.SortStableFunc(s.out, func(x, y candidate) int {
		return cmp.Or(
			boolRank(!x.NoChange(), !y.NoChange()),
			boolRank(x.Converter != "", y.Converter != ""),
			boolRank(x.secondary, y.secondary),
			cmp.Compare(x.target, y.target),
			cmp.Compare(x.Converter, y.Converter),
			cmp.Compare(x.key(), y.key()),
		)
	})
	if len(s.out) == 0 {
		return nil
	}
	out := make([]Solution, len(s.out))
	for i, c := range s.out {
		out[i] = c.Solution
	}
	return out
}

// boolRank orders false before true.
func boolRank(x, y bool) int {
	switch {
	case x == y:
		return 0
	case !x:
		return -1
	}
	return 1
}
