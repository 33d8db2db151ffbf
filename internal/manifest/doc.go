/*
Package manifest loads type, converter and node-class manifests, and graph
fixtures, from HCL files.

A module directory holds any number of .hcl files mixing these blocks:

	type "Real" {
	  value    = number
	  node_set = "math"
	}

	converter "RealToText" {
	  from = "Real"
	  to   = "Text"
	}

	node_class "math.add" {
	  input "values" {
	    type = list(generic(T, [Real, Integer]))
	  }
	  output "sum" {
	    type = generic(T, [Real, Integer])
	  }
	  input "refresh" {}
	}

A type registers its list form too unless `list = false`. Port types are
written as a type name, `list(...)`, `event`, or one of `generic(VAR)`,
`generic(VAR, any)`, `generic(VAR, any_list)` and `generic(VAR, [A, B])`.
A port without a type carries events only.

Graph files hold node and cable blocks:

	node "add1" {
	  class      = "math.add"
	  specialize = { T = "Real" }
	  host       = "maker.items"
	  constants  = { scale = 2 }
	}

	cable "c1" {
	  from       = "add1.sum"
	  to         = "print.value"
	  event_only = false
	}
*/
package manifest
