package graph

import (
	"fmt"
	"slices"

	"github.com/vk/gridbridge/internal/typesys"
	"github.com/zclconf/go-cty/cty"
)

// NodeID, PortID and CableID index the Graph's arenas.
type (
	NodeID  int
	PortID  int
	CableID int
)

const (
	NoNode  NodeID  = -1
	NoPort  PortID  = -1
	NoCable CableID = -1
)

// Node is an instance of a NodeClass. Values returned by the Graph must be
// treated as read-only.
type Node struct {
	ID    NodeID
	Title string
	Class *NodeClass
	// Ports holds one port per class port, in class order.
	Ports []PortID
	// Host is the input port this node is attached to, or NoPort.
	Host PortID
}

// Port is an instance of a PortClass on a node.
type Port struct {
	ID    PortID
	Node  NodeID
	Index int
	// Constant is the value an unconnected input port holds; cty.NilVal when unset.
	Constant cty.Value
	cables   []CableID
}

// HasConstant reports whether the port holds a constant.
func (p *Port) HasConstant() bool {
	return p.Constant.Type() != cty.NilType
}

// Cable joins an output port to an input port. A floating cable has one end
// set to NoPort while a connection is being negotiated.
type Cable struct {
	ID              CableID
	From            PortID
	To              PortID
	AlwaysEventOnly bool
}

// IsFloating reports whether one end of the cable is unset.
func (c *Cable) IsFloating() bool {
	return c.From == NoPort || c.To == NoPort
}

// Graph owns nodes, ports and cables.
type Graph struct {
	nodes  []*Node
	ports  []*Port
	cables []*Cable
	titles map[string]NodeID
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{titles: make(map[string]NodeID)}
}

// AddNode instantiates class under a unique title.
func (g *Graph) AddNode(title string, class *NodeClass) (NodeID, error) {
	if _, exists := g.titles[title]; exists {
		return NoNode, fmt.Errorf("node %q: %w", title, ErrDuplicateNode)
	}
	id := NodeID(len(g.nodes))
	n := &Node{ID: id, Title: title, Class: class, Host: NoPort}
	for i := range class.ports {
		pid := PortID(len(g.ports))
		g.ports = append(g.ports, &Port{ID: pid, Node: id, Index: i, Constant: cty.NilVal})
		n.Ports = append(n.Ports, pid)
	}
	g.nodes = append(g.nodes, n)
	g.titles[title] = id
	return id, nil
}

// ReplaceNodeClass swaps a node's class for another variant of the same
// generic class. Port identities and cables are preserved.
func (g *Graph) ReplaceNodeClass(id NodeID, class *NodeClass) error {
	n, ok := g.Node(id)
	if !ok {
		return fmt.Errorf("node %d: %w", id, ErrUnknownNode)
	}
	if n.Class.Root() != class.Root() {
		return fmt.Errorf("node %q, class %q: %w", n.Title, class.Name(), ErrClassMismatch)
	}
	n.Class = class
	return nil
}

// Attach marks node as an attachment of the input port host.
func (g *Graph) Attach(node NodeID, host PortID) error {
	n, ok := g.Node(node)
	if !ok {
		return fmt.Errorf("node %d: %w", node, ErrUnknownNode)
	}
	if n.Host != NoPort {
		return fmt.Errorf("node %q: %w", n.Title, ErrAlreadyAttached)
	}
	hp, ok := g.Port(host)
	if !ok {
		return fmt.Errorf("port %d: %w", host, ErrUnknownPort)
	}
	if g.Direction(host) != Input {
		return fmt.Errorf("host %s: %w", g.PortName(host), ErrNotInput)
	}
	if hp.Node == node {
		return fmt.Errorf("host %s: %w", g.PortName(host), ErrSameNode)
	}
	n.Host = host
	return nil
}

// CableOption customises Connect.
type CableOption func(*Cable)

// EventOnly makes the cable carry events only, whatever its endpoint types.
func EventOnly() CableOption {
	return func(c *Cable) { c.AlwaysEventOnly = true }
}

// Connect adds a cable. Either end may be NoPort to create a floating cable.
func (g *Graph) Connect(from, to PortID, opts ...CableOption) (CableID, error) {
	if from != NoPort {
		if _, ok := g.Port(from); !ok {
			return NoCable, fmt.Errorf("from port %d: %w", from, ErrUnknownPort)
		}
		if g.Direction(from) != Output {
			return NoCable, fmt.Errorf("from %s: %w", g.PortName(from), ErrDirection)
		}
	}
	if to != NoPort {
		if _, ok := g.Port(to); !ok {
			return NoCable, fmt.Errorf("to port %d: %w", to, ErrUnknownPort)
		}
		if g.Direction(to) != Input {
			return NoCable, fmt.Errorf("to %s: %w", g.PortName(to), ErrDirection)
		}
	}
	if from != NoPort && to != NoPort && g.ports[from].Node == g.ports[to].Node {
		return NoCable, fmt.Errorf("%s -> %s: %w", g.PortName(from), g.PortName(to), ErrSameNode)
	}

	c := &Cable{ID: CableID(len(g.cables)), From: from, To: to}
	for _, opt := range opts {
		opt(c)
	}
	g.cables = append(g.cables, c)
	for _, p := range []PortID{from, to} {
		if p != NoPort {
			g.ports[p].cables = append(g.ports[p].cables, c.ID)
		}
	}
	return c.ID, nil
}

// Disconnect removes a cable.
func (g *Graph) Disconnect(id CableID) error {
	c, ok := g.Cable(id)
	if !ok {
		return fmt.Errorf("cable %d: %w", id, ErrUnknownCable)
	}
	for _, p := range []PortID{c.From, c.To} {
		if p != NoPort {
			port := g.ports[p]
			port.cables = slices.DeleteFunc(port.cables, func(x CableID) bool { return x == id })
		}
	}
	g.cables[id] = nil
	return nil
}

// SetConstant stores a constant on an input port. When valueType is known
// the constant must conform to it.
func (g *Graph) SetConstant(port PortID, v cty.Value, valueType cty.Type) error {
	p, ok := g.Port(port)
	if !ok {
		return fmt.Errorf("port %d: %w", port, ErrUnknownPort)
	}
	if g.Direction(port) != Input {
		return fmt.Errorf("%s: %w", g.PortName(port), ErrNotInput)
	}
	if valueType != cty.NilType && !v.Type().Equals(valueType) {
		return fmt.Errorf("%s: %s is not %s: %w", g.PortName(port), v.Type().FriendlyName(), valueType.FriendlyName(), ErrConstantMismatch)
	}
	p.Constant = v
	return nil
}

// Node returns a node by ID.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	if id < 0 || int(id) >= len(g.nodes) || g.nodes[id] == nil {
		return nil, false
	}
	return g.nodes[id], true
}

// NodeByTitle looks a node up by its title.
func (g *Graph) NodeByTitle(title string) (NodeID, bool) {
	id, ok := g.titles[title]
	return id, ok
}

// Nodes returns every node ID in ascending order.
func (g *Graph) Nodes() []NodeID {
	ids := make([]NodeID, 0, len(g.nodes))
	for _, n := range g.nodes {
		if n != nil {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// Port returns a port by ID.
func (g *Graph) Port(id PortID) (*Port, bool) {
	if id < 0 || int(id) >= len(g.ports) {
		return nil, false
	}
	return g.ports[id], true
}

// PortByName finds a node's port by its class port name.
func (g *Graph) PortByName(node NodeID, name string) (PortID, bool) {
	n, ok := g.Node(node)
	if !ok {
		return NoPort, false
	}
	for i, pc := range n.Class.ports {
		if pc.Name == name {
			return n.Ports[i], true
		}
	}
	return NoPort, false
}

// Cable returns a cable by ID.
func (g *Graph) Cable(id CableID) (*Cable, bool) {
	if id < 0 || int(id) >= len(g.cables) || g.cables[id] == nil {
		return nil, false
	}
	return g.cables[id], true
}

// Cables returns every cable ID in ascending order.
func (g *Graph) Cables() []CableID {
	ids := make([]CableID, 0, len(g.cables))
	for _, c := range g.cables {
		if c != nil {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// CablesOf returns the cables connected to a port in ascending order.
func (g *Graph) CablesOf(port PortID) []CableID {
	p, ok := g.Port(port)
	if !ok {
		return nil
	}
	ids := slices.Clone(p.cables)
	slices.Sort(ids)
	return ids
}

// Siblings returns the other ports of the port's node.
func (g *Graph) Siblings(port PortID) []PortID {
	p, ok := g.Port(port)
	if !ok {
		return nil
	}
	n := g.nodes[p.Node]
	out := make([]PortID, 0, len(n.Ports)-1)
	for _, s := range n.Ports {
		if s != port {
			out = append(out, s)
		}
	}
	return out
}

// PortClass returns the class of a port under its node's current class.
func (g *Graph) PortClass(port PortID) (PortClass, bool) {
	p, ok := g.Port(port)
	if !ok {
		return PortClass{}, false
	}
	return g.nodes[p.Node].Class.ports[p.Index], true
}

// Direction returns the port's direction. Unknown ports report Input.
func (g *Graph) Direction(port PortID) Direction {
	pc, _ := g.PortClass(port)
	return pc.Direction
}

// Type returns the port's current type. Unknown ports report NoData.
func (g *Graph) Type(port PortID) typesys.Type {
	pc, _ := g.PortClass(port)
	return pc.Type
}

// OriginalType returns the generic type the port traces back to: its current
// type when still generic, or the type its node class specialized away.
func (g *Graph) OriginalType(port PortID) (typesys.Type, bool) {
	pc, ok := g.PortClass(port)
	if !ok {
		return typesys.Type{}, false
	}
	if pc.Type.IsGeneric() {
		return pc.Type, true
	}
	return g.nodes[g.ports[port].Node].Class.Provenance(pc.Name)
}

// IsSpecialized reports whether the port currently has a concrete type that
// replaced a generic one.
func (g *Graph) IsSpecialized(port PortID) bool {
	if !g.Type(port).IsConcrete() {
		return false
	}
	_, ok := g.OriginalType(port)
	return ok
}

// IsStatic reports whether the port has a concrete type with no generic
// origin.
func (g *Graph) IsStatic(port PortID) bool {
	return g.Type(port).IsConcrete() && !g.IsSpecialized(port)
}

// OtherEnd returns the opposite endpoint of cable relative to port.
func (g *Graph) OtherEnd(cable CableID, port PortID) PortID {
	c, ok := g.Cable(cable)
	if !ok {
		return NoPort
	}
	switch port {
	case c.From:
		return c.To
	case c.To:
		return c.From
	}
	return NoPort
}

// CarriesData reports whether the cable transports data as well as events.
func (g *Graph) CarriesData(cable CableID) bool {
	c, ok := g.Cable(cable)
	if !ok || c.AlwaysEventOnly || c.IsFloating() {
		return false
	}
	return g.Type(c.From).HasData() && g.Type(c.To).HasData()
}

// PortName renders a port as "title.port".
func (g *Graph) PortName(port PortID) string {
	p, ok := g.Port(port)
	if !ok {
		return fmt.Sprintf("<port %d>", port)
	}
	n := g.nodes[p.Node]
	return n.Title + "." + n.Class.ports[p.Index].Name
}
