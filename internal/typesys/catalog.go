package typesys

import (
	"slices"

	"github.com/zclconf/go-cty/cty"
)

// Catalog answers type questions against the types a Registry knows about.
// It holds no state of its own beyond the registry reference.
type Catalog struct {
	reg Registry
}

// NewCatalog wraps a registry.
func NewCatalog(reg Registry) *Catalog {
	return &Catalog{reg: reg}
}

// Registry returns the underlying registry.
func (c *Catalog) Registry() Registry {
	return c.reg
}

// IsListType reports whether id is a list type.
func (c *Catalog) IsListType(id TypeID) bool {
	return IsListType(id)
}

// NonListTypes returns every known non-list type, sorted.
func (c *Catalog) NonListTypes() []TypeID {
	var out []TypeID
	for _, id := range c.reg.AllConcreteTypes() {
		if !IsListType(id) {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// ListTypes returns every known list type, sorted.
func (c *Catalog) ListTypes() []TypeID {
	out := slices.Clone(c.reg.AllListTypes())
	slices.Sort(out)
	return slices.Compact(out)
}

// CompatibleTypes resolves t to the concrete ids it may take. A concrete
// type yields itself and an event-only type yields nothing.
func (c *Catalog) CompatibleTypes(t Type) []TypeID {
	switch t.Kind() {
	case KindConcrete:
		return []TypeID{t.ID()}
	case KindGeneric:
		return c.Expand(t.Elements(), t.IsList())
	}
	return nil
}

// Expand resolves an element set to port-level ids. With list set, the ids
// are the list forms of the elements, and an Any set becomes every known
// list type.
func (c *Catalog) Expand(s ElementSet, list bool) []TypeID {
	if s.Any {
		if list {
			return c.ListTypes()
		}
		return c.NonListTypes()
	}
	out := make([]TypeID, 0, len(s.IDs))
	for _, id := range s.IDs {
		if list {
			id = ListOf(id)
		}
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// TypeConverters returns the converters registered from one type to another,
// sorted and de-duplicated.
func (c *Catalog) TypeConverters(from, to TypeID) []ConverterID {
	if from == "" || to == "" {
		return nil
	}
	out := slices.Clone(c.reg.TypeConvertersBetween(from, to))
	slices.Sort(out)
	return slices.Compact(out)
}

// NodeSetOf returns the presentation group of a type.
func (c *Catalog) NodeSetOf(id TypeID) string {
	return c.reg.NodeSetOf(id)
}

// ValueType returns the cty shape of a type's values, when the registry
// knows it.
func (c *Catalog) ValueType(id TypeID) (cty.Type, bool) {
	vt, ok := c.reg.(ValueTyper)
	if !ok {
		return cty.NilType, false
	}
	return vt.ValueType(id)
}
