// Package plan describes what committing a bridging solution would do to a
// graph: which nodes get a differently specialized class, which converter is
// spliced in, which cable goes away and which input constants survive the
// type change. The graph itself is never touched.
package plan

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/vk/gridbridge/internal/bridge"
	"github.com/vk/gridbridge/internal/compat"
	"github.com/vk/gridbridge/internal/graph"
	"github.com/vk/gridbridge/internal/revert"
	"github.com/vk/gridbridge/internal/typesys"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// ErrInvalidSolution is returned when a solution does not fit the connection
// or the graph it is planned against.
var ErrInvalidSolution = errors.New("solution does not apply to this connection")

// Replacement swaps a node's class for another variant of its generic class.
type Replacement struct {
	Node  graph.NodeID
	Title string
	// From is the node's current class, To the class it would get.
	From *graph.NodeClass
	To   *graph.NodeClass
}

// Converter is a converter node spliced between the two endpoints.
type Converter struct {
	ID   typesys.ConverterID
	From typesys.TypeID
	To   typesys.TypeID
}

// Plan is the description of a commit.
type Plan struct {
	// From and To are the endpoints the new cable (or the converter) joins.
	From graph.PortID
	To   graph.PortID
	// EventOnly is set when the new cable carries events only.
	EventOnly     bool
	Replacements  []Replacement
	Converter     *Converter
	RemovedCables []graph.CableID
	// Constants holds the input constants converted to their port's new
	// value type. DroppedConstants lists those that cannot be converted.
	Constants        map[graph.PortID]cty.Value
	DroppedConstants []graph.PortID
}

// Changes reports whether committing the plan would change anything beyond
// adding the cable itself.
func (p *Plan) Changes() bool {
	return len(p.Replacements) > 0 || p.Converter != nil || len(p.RemovedCables) > 0
}

type nodeEdit struct {
	set   map[string]typesys.TypeID
	unset []string
}

// Build plans the commit of sol for conn.
func Build(g *graph.Graph, cat *typesys.Catalog, conn compat.Connection, sol bridge.Solution) (*Plan, error) {
	if !conn.Valid(g) {
		return nil, fmt.Errorf("%s -> %s: %w", g.PortName(conn.From), g.PortName(conn.To), ErrInvalidSolution)
	}
	p := &Plan{
		From:      conn.From,
		To:        conn.To,
		EventOnly: conn.ForceEventOnly,
		Constants: make(map[graph.PortID]cty.Value),
	}
	if conn.Replacing != graph.NoCable {
		if _, ok := g.Cable(conn.Replacing); !ok {
			return nil, fmt.Errorf("replacing cable %d: %w", conn.Replacing, graph.ErrUnknownCable)
		}
		p.RemovedCables = append(p.RemovedCables, conn.Replacing)
	}
	if sol.Converter != "" {
		p.Converter = &Converter{ID: sol.Converter, From: sol.ConvertFrom, To: sol.ConvertTo}
	}

	edits := make(map[graph.NodeID]*nodeEdit)
	edit := func(n graph.NodeID) *nodeEdit {
		if edits[n] == nil {
			edits[n] = &nodeEdit{set: make(map[string]typesys.TypeID)}
		}
		return edits[n]
	}

	r := conn.Resolver(g, cat)
	for _, sp := range sol.Specializations {
		if sp.Port != conn.From && sp.Port != conn.To {
			return nil, fmt.Errorf("port %s is not an endpoint: %w", g.PortName(sp.Port), ErrInvalidSolution)
		}
		if sp.NoChange {
			continue
		}
		if !r.Accepts(sp.Port, sp.Type) {
			return nil, fmt.Errorf("%s cannot take %s: %w", g.PortName(sp.Port), sp.Type, ErrInvalidSolution)
		}

		members := r.Of(sp.Port)
		if g.IsSpecialized(sp.Port) {
			// Ports pulled into the revert beyond the network itself, such
			// as an attachment's host, go back to generic.
			for _, m := range revert.Simulate(g, cat, sp.Port, conn.Replacing).Ports {
				if slices.Contains(members, m) || !g.IsSpecialized(m) {
					continue
				}
				orig, _ := g.OriginalType(m)
				port, _ := g.Port(m)
				e := edit(port.Node)
				if !slices.Contains(e.unset, orig.Variable()) {
					e.unset = append(e.unset, orig.Variable())
				}
			}
		}
		for node, vars := range r.Bindings(sp.Port) {
			for _, v := range vars {
				edit(node).set[v] = sp.Element
			}
		}
	}

	for _, node := range slices.Sorted(maps.Keys(edits)) {
		rep, err := replace(g, node, edits[node])
		if err != nil {
			return nil, err
		}
		if rep.To.Name() == rep.From.Name() {
			continue
		}
		p.Replacements = append(p.Replacements, rep)
		carryConstants(g, cat, p, rep)
	}
	slices.Sort(p.DroppedConstants)
	return p, nil
}

func replace(g *graph.Graph, node graph.NodeID, e *nodeEdit) (Replacement, error) {
	n, _ := g.Node(node)
	class := n.Class
	var unset []string
	for _, v := range e.unset {
		if _, bound := e.set[v]; !bound {
			unset = append(unset, v)
		}
	}
	if len(unset) > 0 {
		var err error
		if class, err = class.Unspecialize(unset...); err != nil {
			return Replacement{}, fmt.Errorf("node %q: %w", n.Title, err)
		}
	}
	if len(e.set) > 0 {
		var err error
		if class, err = class.Specialize(e.set); err != nil {
			return Replacement{}, fmt.Errorf("node %q: %w: %w", n.Title, ErrInvalidSolution, err)
		}
	}
	return Replacement{Node: node, Title: n.Title, From: n.Class, To: class}, nil
}

// carryConstants converts the constants of rep's input ports whose type
// changes to the new type's value shape.
func carryConstants(g *graph.Graph, cat *typesys.Catalog, p *Plan, rep Replacement) {
	n, _ := g.Node(rep.Node)
	newPorts := rep.To.Ports()
	for i, pid := range n.Ports {
		port, _ := g.Port(pid)
		if !port.HasConstant() || newPorts[i].Direction != graph.Input {
			continue
		}
		old, next := g.Type(pid), newPorts[i].Type
		if old.Equal(next) || !next.IsConcrete() {
			continue
		}
		vt, ok := cat.ValueType(next.ID())
		if !ok {
			p.DroppedConstants = append(p.DroppedConstants, pid)
			continue
		}
		v, err := convert.Convert(port.Constant, vt)
		if err != nil {
			p.DroppedConstants = append(p.DroppedConstants, pid)
			continue
		}
		p.Constants[pid] = v
	}
}
