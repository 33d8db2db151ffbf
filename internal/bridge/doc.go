/*
Package bridge enumerates the ways to make a candidate cable legal when it
cannot be made as-is.

A solution specializes (or respecializes) one or both endpoints, inserts a
type converter node between them, or both. Each endpoint is classified
first:

  - generic: its current type is still a type variable;
  - respecializable: specialized, revertible, and revertible without
    breaking any cable but the one being replaced;
  - fixed: anything else with a concrete type.

Candidate types of a non-fixed side are its network's compatible types, so a
specialization never changes list-ness. Converters are looked up in the
direction data flows, from the output side's type to the input side's type,
and may bridge list-ness when the registry offers one.

Results are deterministic: options that need no type change come first,
then converter-free options, then options adjusting the drag destination,
then ascending type and converter ids.
*/
package bridge
