// Package graph is the in-memory model of a composition: node classes and
// their port classes, the nodes instantiated from them, and the cables that
// join output ports to input ports.
//
// # Storage
//
// Nodes, ports and cables live in indexed slices owned by the Graph.
// Cross references (port -> node, node -> ports, port -> cables) are IDs,
// never owning pointers, so the back-references of the model (a port knows
// its node, the node knows its sibling ports, cables know both ends) carry no
// ownership ambiguity.
//
// # Specialization provenance
//
// A NodeClass may be a specialization of a generic class. Instead of
// relying on runtime type checks, the specialized class records the original
// generic Type of each port it resolved (see NodeClass.Provenance) and the
// variable bindings that produced it. Reverting is the inverse lookup.
//
// # Mutation
//
// The builder operations (AddNode, Connect, Attach, SetConstant,
// ReplaceNodeClass) are used by loaders, tests and an editor's commit layer.
// The resolution engine only ever calls the read-only queries. The Graph is
// not synchronized: concurrent readers are fine, a writer must be alone.
package graph
