package graph

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/vk/gridbridge/internal/typesys"
)

// Direction is the side of a node a port sits on.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// PortClass is the declared shape of a port.
type PortClass struct {
	Name      string
	Direction Direction
	Type      typesys.Type
}

// NodeClass is an immutable, ordered set of port classes. A specialized
// class keeps a reference to its generic original and the variable bindings
// that produced it.
type NodeClass struct {
	name       string
	ports      []PortClass
	original   *NodeClass
	bindings   map[string]typesys.TypeID
	provenance map[string]typesys.Type
}

// NewNodeClass builds a generic (unspecialized) node class.
func NewNodeClass(name string, ports ...PortClass) (*NodeClass, error) {
	seen := make(map[string]struct{}, len(ports))
	for _, p := range ports {
		if _, dup := seen[p.Name]; dup {
			return nil, fmt.Errorf("node class %q, port %q: %w", name, p.Name, ErrDuplicatePort)
		}
		seen[p.Name] = struct{}{}
	}
	return &NodeClass{
		name:  name,
		ports: slices.Clone(ports),
	}, nil
}

func (c *NodeClass) Name() string { return c.name }

// Ports returns the port classes in declaration order.
func (c *NodeClass) Ports() []PortClass { return slices.Clone(c.ports) }

// Port returns the named port class.
func (c *NodeClass) Port(name string) (PortClass, bool) {
	for _, p := range c.ports {
		if p.Name == name {
			return p, true
		}
	}
	return PortClass{}, false
}

// IsSpecialization reports whether the class was derived from a generic one.
func (c *NodeClass) IsSpecialization() bool { return c.original != nil }

// Root returns the generic class this class was derived from, or c itself.
func (c *NodeClass) Root() *NodeClass {
	if c.original != nil {
		return c.original
	}
	return c
}

// Bindings returns a copy of the variable bindings of a specialized class.
func (c *NodeClass) Bindings() map[string]typesys.TypeID {
	return maps.Clone(c.bindings)
}

// Provenance returns the original generic type of a port this class
// specialized.
func (c *NodeClass) Provenance(port string) (typesys.Type, bool) {
	t, ok := c.provenance[port]
	return t, ok
}

// Variables returns the sorted type variables declared by the root class.
func (c *NodeClass) Variables() []string {
	var vars []string
	for _, p := range c.Root().ports {
		if p.Type.IsGeneric() && !slices.Contains(vars, p.Type.Variable()) {
			vars = append(vars, p.Type.Variable())
		}
	}
	slices.Sort(vars)
	return vars
}

// Specialize derives a class in which the given variables are bound to
// element types, on top of any bindings c already has. An empty result set
// of bindings yields the root class.
func (c *NodeClass) Specialize(bindings map[string]typesys.TypeID) (*NodeClass, error) {
	root := c.Root()
	merged := maps.Clone(c.bindings)
	if merged == nil {
		merged = make(map[string]typesys.TypeID, len(bindings))
	}
	vars := root.Variables()
	for v, elem := range bindings {
		if !slices.Contains(vars, v) {
			return nil, fmt.Errorf("node class %q, variable %q: %w", root.name, v, ErrUnknownVariable)
		}
		merged[v] = elem
	}
	return root.derive(merged)
}

// Unspecialize derives a class with the given variables returned to their
// generic form.
func (c *NodeClass) Unspecialize(vars ...string) (*NodeClass, error) {
	merged := maps.Clone(c.bindings)
	for _, v := range vars {
		delete(merged, v)
	}
	return c.Root().derive(merged)
}

func (c *NodeClass) derive(bindings map[string]typesys.TypeID) (*NodeClass, error) {
	if len(bindings) == 0 {
		return c, nil
	}

	ports := slices.Clone(c.ports)
	provenance := make(map[string]typesys.Type)
	for i, p := range ports {
		if !p.Type.IsGeneric() {
			continue
		}
		elem, bound := bindings[p.Type.Variable()]
		if !bound {
			continue
		}
		if !p.Type.Elements().Contains(elem) {
			return nil, fmt.Errorf("node class %q, port %q, type %q: %w", c.name, p.Name, elem, ErrIncompatibleType)
		}
		provenance[p.Name] = p.Type
		ports[i].Type = p.Type.Bind(elem)
	}

	vars := slices.Sorted(maps.Keys(bindings))
	parts := make([]string, 0, len(vars)+1)
	parts = append(parts, c.name)
	for _, v := range vars {
		parts = append(parts, string(bindings[v]))
	}

	return &NodeClass{
		name:       strings.Join(parts, "."),
		ports:      ports,
		original:   c,
		bindings:   bindings,
		provenance: provenance,
	}, nil
}
