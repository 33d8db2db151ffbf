// Package app wires the gridbridge engine together: it validates the run
// configuration, builds the logger, loads module manifests and a graph
// fixture through the manifest loader, and answers the editor queries with
// reports ready for encoding. It is decoupled from any specific entrypoint
// like the CLI.
package app
