package typesys

import (
	"slices"
	"sync"

	"github.com/zclconf/go-cty/cty"
)

// Registry is the view of the module registry the catalog depends on.
type Registry interface {
	AllConcreteTypes() []TypeID
	AllListTypes() []TypeID
	TypeConvertersBetween(from, to TypeID) []ConverterID
	NodeSetOf(id TypeID) string
}

// ValueTyper is implemented by registries that know the value shape of a
// type, which is needed to judge whether an input constant survives a type
// change.
type ValueTyper interface {
	ValueType(id TypeID) (cty.Type, bool)
}

type typeEntry struct {
	nodeSet   string
	valueType cty.Type
}

type converterKey struct {
	from, to TypeID
}

// StaticRegistry is an in-memory Registry. It is safe for concurrent reads
// once populated.
type StaticRegistry struct {
	mu         sync.RWMutex
	types      map[TypeID]typeEntry
	converters map[converterKey][]ConverterID
}

// NewStaticRegistry creates an empty registry.
func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{
		types:      make(map[TypeID]typeEntry),
		converters: make(map[converterKey][]ConverterID),
	}
}

// TypeOption customises a type registration.
type TypeOption func(*typeEntry)

// WithNodeSet records the node set that owns the type.
func WithNodeSet(name string) TypeOption {
	return func(e *typeEntry) { e.nodeSet = name }
}

// WithValueType records the cty shape of the type's values.
func WithValueType(t cty.Type) TypeOption {
	return func(e *typeEntry) { e.valueType = t }
}

// AddType registers a concrete type. Registering an id twice replaces it.
func (r *StaticRegistry) AddType(id TypeID, opts ...TypeOption) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := typeEntry{valueType: cty.NilType}
	for _, opt := range opts {
		opt(&e)
	}
	r.types[id] = e
}

// AddListType registers List<elem>, deriving its node set and value shape
// from elem when elem is known.
func (r *StaticRegistry) AddListType(elem TypeID) TypeID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := ListOf(elem)
	e := typeEntry{valueType: cty.NilType}
	if base, ok := r.types[elem]; ok {
		e.nodeSet = base.nodeSet
		if base.valueType != cty.NilType {
			e.valueType = cty.List(base.valueType)
		}
	}
	r.types[id] = e
	return id
}

// AddConverter registers a converter node class from one type to another.
func (r *StaticRegistry) AddConverter(id ConverterID, from, to TypeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := converterKey{from: from, to: to}
	if slices.Contains(r.converters[key], id) {
		return
	}
	r.converters[key] = append(r.converters[key], id)
}

// HasType reports whether id has been registered.
func (r *StaticRegistry) HasType(id TypeID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[id]
	return ok
}

func (r *StaticRegistry) AllConcreteTypes() []TypeID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]TypeID, 0, len(r.types))
	for id := range r.types {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (r *StaticRegistry) AllListTypes() []TypeID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []TypeID
	for id := range r.types {
		if IsListType(id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func (r *StaticRegistry) TypeConvertersBetween(from, to TypeID) []ConverterID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.converters[converterKey{from: from, to: to}])
}

func (r *StaticRegistry) NodeSetOf(id TypeID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.types[id].nodeSet
}

func (r *StaticRegistry) ValueType(id TypeID) (cty.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.types[id]
	if !ok || e.valueType == cty.NilType {
		return cty.NilType, false
	}
	return e.valueType, true
}
