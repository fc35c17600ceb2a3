package schema

import (
	"strings"

	"github.com/danmuck/canvasproto/internal/logging"
)

const (
	maxFieldNumber    = 1<<29 - 1
	reservedRangeLow  = 19000
	reservedRangeHigh = 19999
)

// PlaceholderMessage names the single field-less type emitted when the
// schema is missing or declares nothing.
const PlaceholderMessage = "PlaceholderMessage"

// Identifiers the generated Go and JavaScript code already declares. A
// message or field rendering to one of these would not compile.
var (
	reservedMethods = map[string]bool{
		"TypeName": true,
		"Encode":   true,
		"Decode":   true,
		"Fields":   true,
		"String":   true,
	}
	reservedTypes = map[string]bool{
		"Registry":         true,
		"Schema":           true,
		"Placeholder":      true,
		"Types":            true,
		"NewRegistry":      true,
		"ProtobufWriter":   true,
		"ProtobufReader":   true,
		"ProtoClient":      true,
		"DecodeError":      true,
		"UnknownTypeError": true,
		"ContractError":    true,
		"PLACEHOLDER":      true,
	}
	// Browser globals the client module calls. A class of the same name
	// would shadow them for the whole module.
	jsGlobals = map[string]bool{
		"Array":       true,
		"ArrayBuffer": true,
		"BigInt":      true,
		"Boolean":     true,
		"Error":       true,
		"JSON":        true,
		"Map":         true,
		"Number":      true,
		"Object":      true,
		"String":      true,
		"TextDecoder": true,
		"TextEncoder": true,
		"Uint8Array":  true,
	}
)

// generatedFuncPrefixes name the package-level constructors emitted for
// every message, as in NewGreeting and DecodeGreeting.
var generatedFuncPrefixes = []string{"New", "Decode"}

// Validate checks that s can be rendered for every target.
func Validate(s Schema) error {
	logging.Debugf("schema.Validate source=%s messages=%d", s.Source, len(s.Messages))
	seenTypes := map[string]string{}
	for _, m := range s.Messages {
		if !isIdent(m.Name) {
			return invalid(m.Name, "", "invalid message name")
		}
		goName := GoName(m.Name)
		if reservedTypes[goName] || goName == PlaceholderMessage {
			return invalid(m.Name, "", "message name collides with a generated identifier")
		}
		if jsGlobals[goName] {
			return invalid(m.Name, "", "message name shadows a JavaScript global")
		}
		if prev, ok := seenTypes[goName]; ok {
			return invalid(m.Name, "", "message name collides with "+prev)
		}
		seenTypes[goName] = m.Name
		if err := validateFields(m); err != nil {
			return err
		}
	}
	for _, m := range s.Messages {
		goName := GoName(m.Name)
		for _, prefix := range generatedFuncPrefixes {
			if other, ok := seenTypes[strings.TrimPrefix(goName, prefix)]; ok && strings.HasPrefix(goName, prefix) {
				return invalid(m.Name, "", "message name collides with generated "+prefix+GoName(other))
			}
		}
	}
	logging.Debugf("schema.Validate ok source=%s", s.Source)
	return nil
}

func validateFields(m Message) error {
	numbers := map[int32]bool{}
	names := map[string]bool{}
	goNames := map[string]bool{}
	for _, f := range m.Fields {
		switch {
		case f.Number < 1 || f.Number > maxFieldNumber:
			return invalid(m.Name, f.Name, "field number out of range")
		case f.Number >= reservedRangeLow && f.Number <= reservedRangeHigh:
			return invalid(m.Name, f.Name, "field number in reserved range 19000-19999")
		case numbers[f.Number]:
			return invalid(m.Name, f.Name, "duplicate field number")
		case !isIdent(f.Name):
			return invalid(m.Name, f.Name, "invalid field name")
		case names[f.Name]:
			return invalid(m.Name, f.Name, "duplicate field name")
		case f.Kind == InvalidKind:
			return invalid(m.Name, f.Name, "unsupported kind")
		}
		goName := f.GoName()
		if reservedMethods[goName] {
			return invalid(m.Name, f.Name, "field name collides with a generated method")
		}
		if goNames[goName] {
			return invalid(m.Name, f.Name, "field name collides after renaming to "+goName)
		}
		numbers[f.Number] = true
		names[f.Name] = true
		goNames[goName] = true
	}
	return nil
}

func invalid(message, field, reason string) error {
	logging.Errf("schema.Validate message=%s field=%s: %s", message, field, reason)
	return ValidationError{Message: message, Field: field, Reason: reason}
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' && i > 0:
		default:
			return false
		}
	}
	// "__" or "_9" would render to an invalid Go identifier.
	g := GoName(s)
	return g != "" && (g[0] < '0' || g[0] > '9')
}
