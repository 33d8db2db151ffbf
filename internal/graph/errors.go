package graph

import "errors"

var (
	ErrDuplicatePort    = errors.New("duplicate port name")
	ErrDuplicateNode    = errors.New("duplicate node title")
	ErrUnknownNode      = errors.New("unknown node")
	ErrUnknownPort      = errors.New("unknown port")
	ErrUnknownCable     = errors.New("unknown cable")
	ErrUnknownVariable  = errors.New("unknown type variable")
	ErrIncompatibleType = errors.New("type not in the variable's compatibility set")
	ErrDirection        = errors.New("cable must run from an output port to an input port")
	ErrSameNode         = errors.New("cable endpoints are on the same node")
	ErrClassMismatch    = errors.New("node class is not a variant of the node's current class")
	ErrNotInput         = errors.New("port is not an input port")
	ErrConstantMismatch = errors.New("constant does not match the port's value type")
	ErrAlreadyAttached  = errors.New("node is already attached to a host port")
)
