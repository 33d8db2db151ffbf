// Package engine is the query surface the editor and the commit layer talk
// to. It binds a graph and a type catalog and exposes connection analysis,
// bridging, revert checks, network queries and commit planning.
//
// Every query is pure: the graph must not be mutated while one runs, and no
// query mutates it. That makes it safe to fan queries out across goroutines,
// which Eligibility does for drag highlighting.
package engine
