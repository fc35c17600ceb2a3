// Package schema holds the message model every generator target is rendered
// from, plus the loaders that build it: a strict one over protoc descriptor
// sets and a lenient scanner over raw .proto source.
package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
)

// Kind is the scalar kind of a field.
type Kind int

const (
	InvalidKind Kind = iota
	StringKind
	BytesKind
	BoolKind
	Int32Kind
	Int64Kind
	Uint32Kind
	Uint64Kind
)

var kindNames = map[Kind]string{
	StringKind: "string",
	BytesKind:  "bytes",
	BoolKind:   "bool",
	Int32Kind:  "int32",
	Int64Kind:  "int64",
	Uint32Kind: "uint32",
	Uint64Kind: "uint64",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// ParseKind maps a .proto scalar type name to a Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return InvalidKind, false
}

// Varint reports whether values of k travel as a single varint.
func (k Kind) Varint() bool {
	switch k {
	case BoolKind, Int32Kind, Int64Kind, Uint32Kind, Uint64Kind:
		return true
	}
	return false
}

// Wide reports whether k is a 64-bit integer. JSON forms carry these as
// decimal strings.
func (k Kind) Wide() bool {
	return k == Int64Kind || k == Uint64Kind
}

type Field struct {
	Number   int32
	Name     string
	Kind     Kind
	Repeated bool
}

// GoName is the exported Go identifier for the field.
func (f Field) GoName() string {
	return GoName(f.Name)
}

type Message struct {
	Name   string
	Fields []Field
}

// SortedFields returns the fields in ascending field-number order, the order
// canonical encoders emit.
func (m Message) SortedFields() []Field {
	out := slices.Clone(m.Fields)
	slices.SortFunc(out, func(a, b Field) int {
		return int(a.Number) - int(b.Number)
	})
	return out
}

// Field looks up a field by schema name.
func (m Message) Field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

type Schema struct {
	Package  string
	Source   string
	Messages []Message
}

// Message looks up a message by name.
func (s Schema) Message(name string) (Message, bool) {
	for _, m := range s.Messages {
		if m.Name == name {
			return m, true
		}
	}
	return Message{}, false
}

// Empty reports whether the schema declares no messages.
func (s Schema) Empty() bool {
	return len(s.Messages) == 0
}

// Hash returns the hex sha256 of schema source bytes.
func Hash(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

var initialisms = map[string]string{
	"id":   "ID",
	"url":  "URL",
	"uuid": "UUID",
	"http": "HTTP",
	"json": "JSON",
	"api":  "API",
}

// GoName converts a snake_case schema name into an exported Go identifier.
// "user_id" becomes "UserID", "sent_at_ms" becomes "SentAtMs".
func GoName(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		if up, ok := initialisms[strings.ToLower(part)]; ok {
			b.WriteString(up)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
