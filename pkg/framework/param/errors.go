package param

import "errors"

var (
	// ErrUnknownParameter is returned when an id is not declared.
	ErrUnknownParameter = errors.New("unknown parameter")
	// ErrDuplicateParameter is returned when two parameters share an id.
	ErrDuplicateParameter = errors.New("duplicate parameter id")
	// ErrParse is returned when display text cannot be turned into a value.
	ErrParse = errors.New("cannot parse parameter value")
)
