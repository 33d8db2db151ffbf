package typesys

import (
	"fmt"
	"slices"
	"strings"
)

// TypeID identifies a concrete data type, e.g. "Real" or "List<Text>".
type TypeID string

// ConverterID identifies a node class that converts one concrete type into another.
type ConverterID string

const (
	listPrefix = "List<"
	listSuffix = ">"
)

// ListOf returns the list type whose items are of type elem.
func ListOf(elem TypeID) TypeID {
	return TypeID(listPrefix + string(elem) + listSuffix)
}

// IsListType reports whether id names a list type.
func IsListType(id TypeID) bool {
	s := string(id)
	return len(s) > len(listPrefix)+len(listSuffix) &&
		strings.HasPrefix(s, listPrefix) &&
		strings.HasSuffix(s, listSuffix)
}

// ElementOf returns the item type of a list type.
func ElementOf(id TypeID) (TypeID, bool) {
	if !IsListType(id) {
		return "", false
	}
	s := string(id)
	return TypeID(s[len(listPrefix) : len(s)-len(listSuffix)]), true
}

// Kind distinguishes the shapes a Type can take.
type Kind int

const (
	// KindNoData is the type of an event-only port.
	KindNoData Kind = iota
	// KindConcrete is a single resolved type id.
	KindConcrete
	// KindGeneric is an unresolved type variable.
	KindGeneric
)

func (k Kind) String() string {
	switch k {
	case KindNoData:
		return "event"
	case KindConcrete:
		return "concrete"
	case KindGeneric:
		return "generic"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Type is the declared or current type of a port. The zero value is NoData.
type Type struct {
	kind     Kind
	id       TypeID
	variable string
	list     bool
	elems    ElementSet
}

// NoData returns the type of an event-only port.
func NoData() Type {
	return Type{kind: KindNoData}
}

// Concrete returns the resolved type id.
func Concrete(id TypeID) Type {
	return Type{kind: KindConcrete, id: id}
}

// Generic returns a type variable whose candidates are described by compat.
//
// AnyListType and whitelists made only of list ids produce the list form of
// the variable. A whitelist mixing list and non-list ids, or CompatNone,
// produces a generic with no candidates at all.
func Generic(variable string, compat Compatibility) Type {
	t := Type{kind: KindGeneric, variable: variable}
	switch compat.Kind {
	case CompatAnyType:
		t.elems = ElementSet{Any: true}
	case CompatAnyListType:
		t.list = true
		t.elems = ElementSet{Any: true}
	case CompatWhitelist:
		lists := 0
		for _, id := range compat.Types {
			if IsListType(id) {
				lists++
			}
		}
		switch {
		case len(compat.Types) > 0 && lists == len(compat.Types):
			t.list = true
			elems := make([]TypeID, 0, len(compat.Types))
			for _, id := range compat.Types {
				e, _ := ElementOf(id)
				elems = append(elems, e)
			}
			t.elems = NewElementSet(elems...)
		case lists == 0:
			t.elems = NewElementSet(compat.Types...)
		}
	}
	return t
}

// AsList returns the list form of t. Concrete ids are wrapped in List<>,
// generics get their list flag set. NoData and types that are already lists
// are returned unchanged.
func (t Type) AsList() Type {
	switch t.kind {
	case KindConcrete:
		if IsListType(t.id) {
			return t
		}
		return Concrete(ListOf(t.id))
	case KindGeneric:
		t.list = true
		return t
	}
	return t
}

func (t Type) Kind() Kind           { return t.kind }
func (t Type) HasData() bool        { return t.kind != KindNoData }
func (t Type) IsGeneric() bool      { return t.kind == KindGeneric }
func (t Type) IsConcrete() bool     { return t.kind == KindConcrete }
func (t Type) ID() TypeID           { return t.id }
func (t Type) Variable() string     { return t.variable }
func (t Type) Elements() ElementSet { return t.elems }

// IsList reports whether values of this type are lists.
func (t Type) IsList() bool {
	switch t.kind {
	case KindConcrete:
		return IsListType(t.id)
	case KindGeneric:
		return t.list
	}
	return false
}

// Compatibility describes the port-level candidate set of a generic.
func (t Type) Compatibility() Compatibility {
	if t.kind != KindGeneric {
		return Compatibility{Kind: CompatNone}
	}
	return t.elems.compatibility(t.list)
}

// Bind resolves a generic to the concrete type implied by binding its
// variable to the element type elem.
func (t Type) Bind(elem TypeID) Type {
	if t.kind != KindGeneric {
		return t
	}
	if t.list {
		return Concrete(ListOf(elem))
	}
	return Concrete(elem)
}

// ElementFor returns the variable binding that would make the generic t
// resolve to id. It fails when id's list-ness does not match t's.
func (t Type) ElementFor(id TypeID) (TypeID, bool) {
	if t.kind != KindGeneric {
		return "", false
	}
	if t.list {
		return ElementOf(id)
	}
	if IsListType(id) {
		return "", false
	}
	return id, true
}

// Accepts reports whether the generic t may be resolved to id.
func (t Type) Accepts(id TypeID) bool {
	elem, ok := t.ElementFor(id)
	return ok && t.elems.Contains(elem)
}

// Equal reports whether two types are identical, including generic candidates.
func (t Type) Equal(o Type) bool {
	return t.kind == o.kind && t.id == o.id && t.variable == o.variable &&
		t.list == o.list && t.elems.Equal(o.elems)
}

func (t Type) String() string {
	switch t.kind {
	case KindConcrete:
		return string(t.id)
	case KindGeneric:
		s := t.variable
		if t.list {
			s = string(ListOf(TypeID(s)))
		}
		return s + t.elems.String()
	default:
		return "event"
	}
}

// ElementSet is a set of element-level type ids. Any stands for every known
// non-list type; IDs is sorted and duplicate free.
type ElementSet struct {
	Any bool
	IDs []TypeID
}

// NewElementSet returns the sorted, de-duplicated set of ids.
func NewElementSet(ids ...TypeID) ElementSet {
	out := slices.Clone(ids)
	slices.Sort(out)
	return ElementSet{IDs: slices.Compact(out)}
}

// Contains reports whether id is a member of the set.
func (s ElementSet) Contains(id TypeID) bool {
	if s.Any {
		return !IsListType(id)
	}
	_, found := slices.BinarySearch(s.IDs, id)
	return found
}

// IsEmpty reports whether nothing can satisfy the set.
func (s ElementSet) IsEmpty() bool {
	return !s.Any && len(s.IDs) == 0
}

// Intersect returns the members common to both sets.
func (s ElementSet) Intersect(o ElementSet) ElementSet {
	switch {
	case s.Any && o.Any:
		return ElementSet{Any: true}
	case s.Any:
		return o.filter(s.Contains)
	case o.Any:
		return s.filter(o.Contains)
	}
	return s.filter(o.Contains)
}

func (s ElementSet) filter(keep func(TypeID) bool) ElementSet {
	var ids []TypeID
	for _, id := range s.IDs {
		if keep(id) {
			ids = append(ids, id)
		}
	}
	return ElementSet{IDs: ids}
}

func (s ElementSet) Equal(o ElementSet) bool {
	return s.Any == o.Any && slices.Equal(s.IDs, o.IDs)
}

func (s ElementSet) compatibility(list bool) Compatibility {
	if s.Any {
		if list {
			return AnyListType()
		}
		return AnyType()
	}
	ids := slices.Clone(s.IDs)
	if list {
		for i, id := range ids {
			ids[i] = ListOf(id)
		}
	}
	return Whitelist(ids...)
}

func (s ElementSet) String() string {
	if s.Any {
		return "(any)"
	}
	parts := make([]string, len(s.IDs))
	for i, id := range s.IDs {
		parts[i] = string(id)
	}
	return "(" + strings.Join(parts, "|") + ")"
}
