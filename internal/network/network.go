// Package network resolves generic networks: the sets of ports that must
// agree on a single type resolution.
//
// Two ports share a network when they are ports of the same node that trace
// back to the same type variable, or when a data-carrying cable joins them.
// Membership is transitive. Only ports with a type variable (generic, or
// specialized from a generic) are members; a static port is a network of its
// own.
//
// Cables marked always-event-only do not propagate membership, nor does the
// cable a caller is currently re-dragging (see Excluding).
package network

import (
	"slices"

	"github.com/vk/gridbridge/internal/graph"
	"github.com/vk/gridbridge/internal/typesys"
)

// Resolver computes networks against a read-only graph.
type Resolver struct {
	g       *graph.Graph
	cat     *typesys.Catalog
	exclude graph.CableID
}

// Option customises a Resolver.
type Option func(*Resolver)

// Excluding ignores cable during traversal.
func Excluding(cable graph.CableID) Option {
	return func(r *Resolver) { r.exclude = cable }
}

// New returns a resolver over g.
func New(g *graph.Graph, cat *typesys.Catalog, opts ...Option) *Resolver {
	r := &Resolver{g: g, cat: cat, exclude: graph.NoCable}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HasTypeVariable reports whether port takes part in generic networks.
func (r *Resolver) HasTypeVariable(port graph.PortID) bool {
	_, ok := r.g.OriginalType(port)
	return ok
}

// Of returns the network containing port, sorted by port ID.
func (r *Resolver) Of(port graph.PortID) []graph.PortID {
	if _, ok := r.g.Port(port); !ok {
		return nil
	}
	if !r.HasTypeVariable(port) {
		return []graph.PortID{port}
	}

	seen := map[graph.PortID]struct{}{port: {}}
	queue := []graph.PortID{port}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, next := range r.neighbours(p) {
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = struct{}{}
			queue = append(queue, next)
		}
	}

	out := make([]graph.PortID, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

func (r *Resolver) neighbours(p graph.PortID) []graph.PortID {
	orig, _ := r.g.OriginalType(p)
	var out []graph.PortID
	for _, s := range r.g.Siblings(p) {
		so, ok := r.g.OriginalType(s)
		if ok && so.Variable() == orig.Variable() {
			out = append(out, s)
		}
	}
	for _, c := range r.g.CablesOf(p) {
		if c == r.exclude || !r.g.CarriesData(c) {
			continue
		}
		other := r.g.OtherEnd(c, p)
		if r.HasTypeVariable(other) {
			out = append(out, other)
		}
	}
	return out
}

// Elements returns the element-level types every member of port's network
// accepts. A member declaring "any" contributes every known non-list type
// unless all members do, in which case the result stays "any". A network
// with a list member only admits elements whose list form is known, and a
// member on an attached node only admits what its host port's network does.
func (r *Resolver) Elements(port graph.PortID) typesys.ElementSet {
	elems, _ := r.elements(port, make(map[graph.PortID]struct{}))
	return elems
}

// elements also reports whether the result is unconstrained: every member
// declares "any" and no host narrows it.
func (r *Resolver) elements(port graph.PortID, seen map[graph.PortID]struct{}) (typesys.ElementSet, bool) {
	if !r.HasTypeVariable(port) {
		return typesys.ElementSet{}, false
	}

	var (
		sets    []typesys.ElementSet
		hosts   []graph.PortID
		allAny  = true
		hasList bool
	)
	for _, m := range r.Of(port) {
		seen[m] = struct{}{}
		orig, _ := r.g.OriginalType(m)
		sets = append(sets, orig.Elements())
		allAny = allAny && orig.Elements().Any
		hasList = hasList || orig.IsList()
		if h := r.host(m); h != graph.NoPort && !slices.Contains(hosts, h) {
			hosts = append(hosts, h)
		}
	}
	if allAny && !hasList && len(hosts) == 0 {
		return typesys.ElementSet{Any: true}, true
	}

	full := typesys.NewElementSet(r.cat.NonListTypes()...)
	if hasList {
		full = full.Intersect(r.listable())
	}
	var acc typesys.ElementSet
	for i, s := range sets {
		if s.Any {
			s = full
		}
		if i == 0 {
			acc = s
			continue
		}
		acc = acc.Intersect(s)
	}
	if hasList {
		acc = acc.Intersect(full)
	}

	for _, h := range hosts {
		if _, done := seen[h]; done {
			continue
		}
		hostElems, _ := r.elements(h, seen)
		acc = acc.Intersect(hostElems)
	}
	return acc, allAny && len(hosts) == 0
}

// host returns the host port of m's node when that port takes part in
// generic networks, or graph.NoPort.
func (r *Resolver) host(m graph.PortID) graph.PortID {
	p, _ := r.g.Port(m)
	n, _ := r.g.Node(p.Node)
	if n.Host == graph.NoPort || !r.HasTypeVariable(n.Host) {
		return graph.NoPort
	}
	return n.Host
}

// listable returns the elements whose list form the catalog knows.
func (r *Resolver) listable() typesys.ElementSet {
	var ids []typesys.TypeID
	for _, id := range r.cat.ListTypes() {
		if elem, ok := typesys.ElementOf(id); ok {
			ids = append(ids, elem)
		}
	}
	return typesys.NewElementSet(ids...)
}

// CompatibleTypes returns the concrete types port could be resolved to
// without invalidating its network, expressed at port's own list level.
// A static port yields its own type; an event-only port yields nothing.
func (r *Resolver) CompatibleTypes(port graph.PortID) ([]typesys.TypeID, typesys.CompatibilityKind) {
	orig, ok := r.g.OriginalType(port)
	if !ok {
		t := r.g.Type(port)
		if t.IsConcrete() {
			return []typesys.TypeID{t.ID()}, typesys.CompatWhitelist
		}
		return nil, typesys.CompatNone
	}

	elems, open := r.elements(port, make(map[graph.PortID]struct{}))
	types := r.cat.Expand(elems, orig.IsList())
	switch {
	case open && orig.IsList():
		return types, typesys.CompatAnyListType
	case open:
		return types, typesys.CompatAnyType
	}
	return types, typesys.CompatWhitelist
}

// Accepts reports whether port's whole network could be resolved so that
// port has type id.
func (r *Resolver) Accepts(port graph.PortID, id typesys.TypeID) bool {
	orig, ok := r.g.OriginalType(port)
	if !ok {
		return false
	}
	elem, ok := orig.ElementFor(id)
	if !ok {
		return false
	}
	elems := r.Elements(port)
	if elems.Any {
		return slices.Contains(r.cat.NonListTypes(), elem)
	}
	return elems.Contains(elem)
}

// Bindings maps each node of port's network to the type variables of its
// member ports.
func (r *Resolver) Bindings(port graph.PortID) map[graph.NodeID][]string {
	out := make(map[graph.NodeID][]string)
	for _, m := range r.Of(port) {
		orig, ok := r.g.OriginalType(m)
		if !ok {
			continue
		}
		p, _ := r.g.Port(m)
		if !slices.Contains(out[p.Node], orig.Variable()) {
			out[p.Node] = append(out[p.Node], orig.Variable())
		}
	}
	for n := range out {
		slices.Sort(out[n])
	}
	return out
}
