// Package typesys holds the type vocabulary of the node graph: concrete type
// identifiers, generic placeholders with their compatibility sets, and the
// Catalog that expands those sets against the types the module registry knows
// about.
//
// # Types
//
// A port's declared type is one of three shapes:
//
//   - NoData: the port only carries events.
//   - Concrete: a single type id such as "Real" or "List<Real>".
//   - Generic: a type variable (e.g. "T") plus the set of concrete types it
//     may be resolved to.
//
// List-ness is a property of the id itself. "List<X>" is the list form of
// "X", and a direct connection requires both ends to agree on it.
//
// # Element-level generics
//
// A generic stores its compatibility at the element level together with a
// list flag. `Generic("T", AnyListType())` is therefore the list form of
// `Generic("T", AnyType())`, and a node may declare a `List<T>` input next to
// a `T` output that share one variable. Binding the variable to "Real"
// resolves the first port to "List<Real>" and the second to "Real".
//
// # Catalog
//
// The Catalog never discovers types on its own. Everything it knows comes
// from a Registry supplied by the caller (see StaticRegistry for the
// in-memory implementation used by the manifest loader and the tests). An
// unknown id or an empty lookup is represented by an empty result, never by
// an error.
package typesys
