// Package compat decides whether a candidate cable may join two ports as-is,
// with the specialization of one generic endpoint, or only with help from
// the bridging solver.
//
// Two generic endpoints whose networks share a candidate are direct as
// well: the cable merges the networks and leaves their resolution open, so
// neither side has to be specialized up front.
package compat

import (
	"fmt"

	"github.com/vk/gridbridge/internal/graph"
	"github.com/vk/gridbridge/internal/network"
	"github.com/vk/gridbridge/internal/typesys"
)

// Connection is a candidate cable between an output and an input port.
type Connection struct {
	From graph.PortID
	To   graph.PortID
	// Replacing is the existing cable being re-dragged, or graph.NoCable. It
	// is ignored by network traversal.
	Replacing graph.CableID
	// ForceEventOnly is set when the new cable will carry events only.
	ForceEventOnly bool
}

// Connect returns a plain candidate connection.
func Connect(from, to graph.PortID) Connection {
	return Connection{From: from, To: to, Replacing: graph.NoCable}
}

// Resolver returns a network resolver that ignores the replaced cable.
func (c Connection) Resolver(g *graph.Graph, cat *typesys.Catalog) *network.Resolver {
	return network.New(g, cat, network.Excluding(c.Replacing))
}

// Valid reports whether the endpoints can form a cable at all: both exist,
// run from an output to an input and sit on different nodes.
func (c Connection) Valid(g *graph.Graph) bool {
	from, ok := g.Port(c.From)
	if !ok {
		return false
	}
	to, ok := g.Port(c.To)
	if !ok {
		return false
	}
	return from.Node != to.Node &&
		g.Direction(c.From) == graph.Output &&
		g.Direction(c.To) == graph.Input
}

// EventOnly reports whether the connection needs no data-type agreement.
func (c Connection) EventOnly(g *graph.Graph) bool {
	return c.ForceEventOnly || !g.Type(c.From).HasData() || !g.Type(c.To).HasData()
}

// VerdictKind is the outcome class of Analyze.
type VerdictKind int

const (
	Direct VerdictKind = iota
	NeedsSpecialization
	NeedsBridging
)

func (k VerdictKind) String() string {
	switch k {
	case Direct:
		return "direct"
	case NeedsSpecialization:
		return "needs-specialization"
	case NeedsBridging:
		return "needs-bridging"
	default:
		return fmt.Sprintf("VerdictKind(%d)", int(k))
	}
}

// Verdict is the answer of Analyze. Port and Type are set only for
// NeedsSpecialization.
type Verdict struct {
	Kind VerdictKind
	Port graph.PortID
	Type typesys.TypeID
}

func direct() Verdict   { return Verdict{Kind: Direct, Port: graph.NoPort} }
func bridging() Verdict { return Verdict{Kind: NeedsBridging, Port: graph.NoPort} }

// Analyze classifies a candidate connection. The first matching rule wins:
// event-only connections and identical concrete types are direct; a single
// generic side whose network accepts the other side's type needs that
// specialization; two generic sides whose networks share a candidate are
// direct; anything else needs bridging.
func Analyze(g *graph.Graph, cat *typesys.Catalog, conn Connection) Verdict {
	if !conn.Valid(g) {
		return bridging()
	}
	if conn.EventOnly(g) {
		return direct()
	}

	from, to := g.Type(conn.From), g.Type(conn.To)
	if from.IsConcrete() && to.IsConcrete() {
		if from.ID() == to.ID() {
			return direct()
		}
		return bridging()
	}

	r := conn.Resolver(g, cat)
	switch {
	case from.IsGeneric() && to.IsGeneric():
		if Joinable(g, r, conn.From, conn.To) {
			return direct()
		}
	case from.IsGeneric():
		if r.Accepts(conn.From, to.ID()) {
			return Verdict{Kind: NeedsSpecialization, Port: conn.From, Type: to.ID()}
		}
	case to.IsGeneric():
		if r.Accepts(conn.To, from.ID()) {
			return Verdict{Kind: NeedsSpecialization, Port: conn.To, Type: from.ID()}
		}
	}
	return bridging()
}

// Joinable reports whether two generic ports could be merged into one
// network that still has a candidate type.
func Joinable(g *graph.Graph, r *network.Resolver, a, b graph.PortID) bool {
	ta, oka := g.OriginalType(a)
	tb, okb := g.OriginalType(b)
	if !oka || !okb || ta.IsList() != tb.IsList() {
		return false
	}
	return !r.Elements(a).Intersect(r.Elements(b)).IsEmpty()
}
