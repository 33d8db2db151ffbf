package manifest

import "errors"

var (
	ErrUnknownType    = errors.New("unknown type")
	ErrUnknownClass   = errors.New("unknown node class")
	ErrDuplicateClass = errors.New("duplicate node class")
	ErrDuplicateCable = errors.New("duplicate cable name")
	ErrBadConstants   = errors.New("constants must be an object of port names to values")
)
