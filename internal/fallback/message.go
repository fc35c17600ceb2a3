package fallback

import (
	"maps"

	"github.com/danmuck/canvasproto/internal/registry"
	"github.com/danmuck/canvasproto/internal/schema"
)

// Message is a schema-driven message without generated code. It backs the
// runtime fallback registry, where type names and field shapes come from a
// scanned schema rather than compiled types.
type Message struct {
	spec   schema.Message
	values map[string]any
}

// New builds a message from partial field data. Unknown keys are ignored;
// unset fields take their defaults.
func New(spec schema.Message, data map[string]any) (*Message, error) {
	m := &Message{spec: spec, values: make(map[string]any, len(spec.Fields))}
	for _, f := range spec.Fields {
		v, err := Normalize(f, data[f.Name])
		if err != nil {
			return nil, registry.FieldError(spec.Name, f.Name, err)
		}
		m.values[f.Name] = v
	}
	return m, nil
}

// DecodeMessage decodes b as a spec message.
func DecodeMessage(spec schema.Message, b []byte) (*Message, error) {
	return DecodeAs(spec, b, func(data map[string]any) (*Message, error) {
		return New(spec, data)
	})
}

func (m *Message) TypeName() string {
	return m.spec.Name
}

func (m *Message) Encode() ([]byte, error) {
	return Encode(m.spec, m.values)
}

// Decode replaces m's values. m is unchanged when b is malformed.
func (m *Message) Decode(b []byte) error {
	out, err := DecodeMessage(m.spec, b)
	if err != nil {
		return err
	}
	m.values = out.values
	return nil
}

func (m *Message) Fields() map[string]any {
	return maps.Clone(m.values)
}

func (m *Message) String() string {
	order := make([]string, 0, len(m.spec.Fields))
	for _, f := range m.spec.SortedFields() {
		order = append(order, f.Name)
	}
	return registry.Describe(m.spec.Name, order, m.values)
}

// NewRegistry builds a frozen placeholder registry over s. An empty schema
// yields the single field-less placeholder type.
func NewRegistry(s schema.Schema) (*registry.Registry, error) {
	msgs := s.Messages
	if len(msgs) == 0 {
		msgs = []schema.Message{{Name: schema.PlaceholderMessage}}
	}
	types := make([]registry.Type, 0, len(msgs))
	for _, spec := range msgs {
		spec := spec
		types = append(types, registry.TypeOf(
			spec.Name,
			func(data map[string]any) (*Message, error) { return New(spec, data) },
			func(b []byte) (*Message, error) { return DecodeMessage(spec, b) },
		))
	}
	return registry.Build(true, types...)
}
