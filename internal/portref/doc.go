/*
Package portref parses and formats port addresses of the form `node.port`,
optionally followed by an item index for list-drawer ports, e.g.
`make_list.item[2]`.

Addresses are how graph fixtures and the command line name ports; the graph
itself only deals in numeric IDs.
*/
package portref
