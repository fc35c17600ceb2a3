package schema

import "fmt"

// ErrorKind classifies why a schema source could not be used at all.
type ErrorKind int

const (
	KindMissing ErrorKind = iota + 1
	KindEmpty
)

func (k ErrorKind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Error reports an absent or empty schema. Generators recover from it by
// emitting placeholder types.
type Error struct {
	Path string
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schema: %s %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("schema: %s %s", e.Path, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UnsupportedError reports a construct outside the supported subset.
type UnsupportedError struct {
	Message   string
	Field     string
	Construct string
}

func (e *UnsupportedError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema: message %s: unsupported %s", e.Message, e.Construct)
	}
	return fmt.Sprintf("schema: message %s field %s: unsupported %s", e.Message, e.Field, e.Construct)
}

type ValidationError struct {
	Message string
	Field   string
	Reason  string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema: message=%s: %s", e.Message, e.Reason)
	}
	return fmt.Sprintf("schema: message=%s field=%s: %s", e.Message, e.Field, e.Reason)
}
