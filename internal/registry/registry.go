// Package registry is the runtime facade over generated message types. It
// dispatches encode, decode and create by type name and reports whether the
// active implementation is the full binary codec or a reduced-fidelity
// fallback.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/danmuck/canvasproto/internal/logging"
)

// Message is implemented by every generated type.
type Message interface {
	TypeName() string
	Encode() ([]byte, error)
	Fields() map[string]any
}

// Encoder is the capability Registry.Encode requires.
type Encoder interface {
	Encode() ([]byte, error)
}

// Decoder is the capability Registry.DecodeInto requires.
type Decoder interface {
	Decode([]byte) error
}

// Type binds a type name to its constructor and decoder.
type Type struct {
	Name   string
	Create func(map[string]any) (Message, error)
	Decode func([]byte) (Message, error)
}

// TypeOf adapts a generated constructor and decoder pair to a Type.
func TypeOf[T Message](name string, create func(map[string]any) (T, error), decode func([]byte) (T, error)) Type {
	return Type{
		Name: name,
		Create: func(data map[string]any) (Message, error) {
			m, err := create(data)
			if err != nil {
				return nil, err
			}
			return m, nil
		},
		Decode: func(b []byte) (Message, error) {
			m, err := decode(b)
			if err != nil {
				return nil, err
			}
			return m, nil
		},
	}
}

// Registry maps type names to types. It is filled once at initialization and
// read-only after Freeze.
type Registry struct {
	mu          sync.RWMutex
	types       map[string]Type
	frozen      bool
	placeholder bool
}

func New(placeholder bool) *Registry {
	return &Registry{types: make(map[string]Type), placeholder: placeholder}
}

// Build registers types and freezes the result.
func Build(placeholder bool, types ...Type) (*Registry, error) {
	r := New(placeholder)
	for _, t := range types {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	r.Freeze()
	return r, nil
}

func (r *Registry) Register(t Type) error {
	if t.Name == "" || t.Create == nil || t.Decode == nil {
		return fmt.Errorf("%w: %q needs a name, constructor and decoder", ErrInvalidType, t.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	if _, ok := r.types[t.Name]; ok {
		return fmt.Errorf("%w: %s", ErrTypeExists, t.Name)
	}
	r.types[t.Name] = t
	return nil
}

// Freeze ends registration. It is idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.frozen {
		logging.Debugf("registry.Freeze types=%d placeholder=%t", len(r.types), r.placeholder)
	}
	r.frozen = true
}

// IsPlaceholder reports reduced-fidelity mode: placeholder or fallback code
// is active and the bytes are not the binary wire format.
func (r *Registry) IsPlaceholder() bool {
	return r.placeholder
}

func (r *Registry) Lookup(name string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// Types returns the registered names in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Encode encodes any value exposing Encode.
func (r *Registry) Encode(msg any) ([]byte, error) {
	enc, ok := msg.(Encoder)
	if !ok || msg == nil {
		return nil, &ContractError{Op: "encode", Type: fmt.Sprintf("%T", msg), Detail: "value has no Encode method"}
	}
	return enc.Encode()
}

// Decode decodes b as the named type.
func (r *Registry) Decode(name string, b []byte) (Message, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return nil, &UnknownTypeError{Name: name}
	}
	return t.Decode(b)
}

// DecodeInto decodes b into dst, which must expose Decode.
func (r *Registry) DecodeInto(dst any, b []byte) error {
	dec, ok := dst.(Decoder)
	if !ok || dst == nil {
		return &ContractError{Op: "decode", Type: fmt.Sprintf("%T", dst), Detail: "value has no Decode method"}
	}
	return dec.Decode(b)
}

// Create builds the named type from partial field data.
func (r *Registry) Create(name string, data map[string]any) (Message, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return nil, &UnknownTypeError{Name: name}
	}
	return t.Create(data)
}
