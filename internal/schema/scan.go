package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	protoparser "github.com/emicklei/proto"

	"github.com/danmuck/canvasproto/internal/logging"
)

// Read loads schema source. A missing file or one holding only whitespace
// is reported as *Error.
func Read(path string) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Path: path, Kind: KindMissing, Err: err}
		}
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(src)) == 0 {
		return nil, &Error{Path: path, Kind: KindEmpty}
	}
	return src, nil
}

// Parse scans .proto source without a compiler. It keeps every top-level
// message it can represent and returns a note for each construct it dropped
// (maps, oneofs, optional fields, nested or message-typed fields, unsupported
// scalars). Only syntax errors fail the scan.
func Parse(name string, src []byte) (Schema, []string, error) {
	parser := protoparser.NewParser(bytes.NewReader(src))
	parser.Filename(name)
	def, err := parser.Parse()
	if err != nil {
		return Schema{}, nil, fmt.Errorf("schema: scan %s: %w", name, err)
	}

	enums := map[string]bool{}
	protoparser.Walk(def, protoparser.WithEnum(func(e *protoparser.Enum) {
		enums[e.Name] = true
	}))

	s := Schema{Source: name}
	var dropped []string
	for _, el := range def.Elements {
		switch v := el.(type) {
		case *protoparser.Package:
			s.Package = v.Name
		case *protoparser.Message:
			if v.IsExtend {
				dropped = append(dropped, fmt.Sprintf("extend %s", v.Name))
				continue
			}
			msg, notes := scanMessage(v, enums)
			s.Messages = append(s.Messages, msg)
			dropped = append(dropped, notes...)
		case *protoparser.Service:
			dropped = append(dropped, fmt.Sprintf("service %s", v.Name))
		}
	}
	logging.Debugf("schema.Parse source=%s messages=%d dropped=%d", name, len(s.Messages), len(dropped))
	return s, dropped, nil
}

func scanMessage(m *protoparser.Message, enums map[string]bool) (Message, []string) {
	msg := Message{Name: m.Name}
	var dropped []string
	drop := func(what string) {
		dropped = append(dropped, fmt.Sprintf("%s.%s", m.Name, what))
	}
	for _, el := range m.Elements {
		switch v := el.(type) {
		case *protoparser.NormalField:
			if v.Optional {
				drop(v.Name + " (optional field)")
				continue
			}
			kind, ok := ParseKind(v.Type)
			if !ok && enums[v.Type] {
				kind, ok = Int32Kind, true
			}
			if !ok {
				drop(fmt.Sprintf("%s (type %s)", v.Name, v.Type))
				continue
			}
			msg.Fields = append(msg.Fields, Field{
				Number:   int32(v.Sequence),
				Name:     v.Name,
				Kind:     kind,
				Repeated: v.Repeated,
			})
		case *protoparser.MapField:
			drop(v.Name + " (map field)")
		case *protoparser.Oneof:
			drop(v.Name + " (oneof)")
		case *protoparser.Group:
			drop(v.Name + " (group)")
		case *protoparser.Message:
			drop(v.Name + " (nested message)")
		}
	}
	return msg, dropped
}
