package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/gridbridge/internal/graph"
	"github.com/vk/gridbridge/internal/portref"
	"github.com/vk/gridbridge/internal/typesys"
	"github.com/zclconf/go-cty/cty"
)

// Fixture builds a catalog and a graph for tests. Ports are addressed as
// "title.port".
type Fixture struct {
	t        *testing.T
	Registry *typesys.StaticRegistry
	Catalog  *typesys.Catalog
	Graph    *graph.Graph
}

// NewFixture returns a fixture whose registry knows Real, Integer, Text,
// Boolean and Point2D together with their list forms. No converters are
// registered.
func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	reg := typesys.NewStaticRegistry()
	point := cty.Object(map[string]cty.Type{"x": cty.Number, "y": cty.Number})
	for _, def := range []struct {
		id      typesys.TypeID
		nodeSet string
		value   cty.Type
	}{
		{"Real", "math", cty.Number},
		{"Integer", "math", cty.Number},
		{"Text", "text", cty.String},
		{"Boolean", "logic", cty.Bool},
		{"Point2D", "geometry", point},
	} {
		reg.AddType(def.id, typesys.WithNodeSet(def.nodeSet), typesys.WithValueType(def.value))
		reg.AddListType(def.id)
	}
	return &Fixture{
		t:        t,
		Registry: reg,
		Catalog:  typesys.NewCatalog(reg),
		Graph:    graph.New(),
	}
}

// In declares an input port class.
func In(name string, t typesys.Type) graph.PortClass {
	return graph.PortClass{Name: name, Direction: graph.Input, Type: t}
}

// Out declares an output port class.
func Out(name string, t typesys.Type) graph.PortClass {
	return graph.PortClass{Name: name, Direction: graph.Output, Type: t}
}

// Gen is a generic over a whitelist of element types, or over any type when
// no ids are given.
func Gen(variable string, ids ...typesys.TypeID) typesys.Type {
	if len(ids) == 0 {
		return typesys.Generic(variable, typesys.AnyType())
	}
	return typesys.Generic(variable, typesys.Whitelist(ids...))
}

// Static is a concrete type.
func Static(id typesys.TypeID) typesys.Type {
	return typesys.Concrete(id)
}

// Converter registers a converter class.
func (f *Fixture) Converter(id typesys.ConverterID, from, to typesys.TypeID) {
	f.Registry.AddConverter(id, from, to)
}

// Class declares a node class.
func (f *Fixture) Class(name string, ports ...graph.PortClass) *graph.NodeClass {
	f.t.Helper()
	c, err := graph.NewNodeClass(name, ports...)
	require.NoError(f.t, err)
	return c
}

// Node adds a node. Bindings, when given, specialize the class first.
func (f *Fixture) Node(title string, class *graph.NodeClass, bindings ...map[string]typesys.TypeID) graph.NodeID {
	f.t.Helper()
	for _, b := range bindings {
		var err error
		class, err = class.Specialize(b)
		require.NoError(f.t, err)
	}
	id, err := f.Graph.AddNode(title, class)
	require.NoError(f.t, err)
	return id
}

// Port resolves a "title.port" address.
func (f *Fixture) Port(addr string) graph.PortID {
	f.t.Helper()
	a, err := portref.Parse(addr)
	require.NoError(f.t, err)
	node, ok := f.Graph.NodeByTitle(a.Node)
	require.True(f.t, ok, "unknown node %q", a.Node)
	port, ok := f.Graph.PortByName(node, a.Port)
	require.True(f.t, ok, "unknown port %q", addr)
	return port
}

// Connect adds a cable between two addressed ports.
func (f *Fixture) Connect(from, to string, opts ...graph.CableOption) graph.CableID {
	f.t.Helper()
	c, err := f.Graph.Connect(f.Port(from), f.Port(to), opts...)
	require.NoError(f.t, err)
	return c
}

// Attach attaches a node to an addressed host port.
func (f *Fixture) Attach(title, host string) {
	f.t.Helper()
	node, ok := f.Graph.NodeByTitle(title)
	require.True(f.t, ok, "unknown node %q", title)
	require.NoError(f.t, f.Graph.Attach(node, f.Port(host)))
}
