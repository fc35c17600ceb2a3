package registry

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownType = errors.New("registry: unknown message type")
	ErrContract    = errors.New("registry: contract violation")
	ErrTypeExists  = errors.New("registry: message type already registered")
	ErrInvalidType = errors.New("registry: invalid message type")
	ErrFrozen      = errors.New("registry: registry is frozen")
	ErrValue       = errors.New("registry: invalid field value")
)

// UnknownTypeError reports a lookup of a name nobody registered.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("registry: unknown message type %q", e.Name)
}

func (e *UnknownTypeError) Is(target error) bool {
	return target == ErrUnknownType
}

// ContractError reports caller misuse: a value without the capability an
// operation needs, or field data a constructor cannot accept. It is distinct
// from wire.DecodeError, which means the bytes were bad.
type ContractError struct {
	Op     string
	Type   string
	Detail string
	Err    error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("registry: %s %s: %s", e.Op, e.Type, e.Detail)
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

func (e *ContractError) Is(target error) bool {
	return target == ErrContract
}

// FieldError is what generated constructors return for a field value they
// cannot convert.
func FieldError(typeName, field string, err error) error {
	return &ContractError{
		Op:     "create",
		Type:   typeName,
		Detail: fmt.Sprintf("field %s: %v", field, err),
		Err:    err,
	}
}
