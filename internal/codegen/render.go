package codegen

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"strconv"
	"text/template"

	"github.com/danmuck/canvasproto/internal/schema"
)

// runtimeModule is the import root generated Go code links against.
const runtimeModule = "github.com/danmuck/canvasproto/internal"

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("codegen").Funcs(template.FuncMap{
	"quote": strconv.Quote,
}).ParseFS(templateFS, "templates/*.tmpl"))

// Input is everything a target renderer needs.
type Input struct {
	Schema  schema.Schema
	Outcome Outcome
	Hash    string
	// GoPackage is the package clause for the native target.
	GoPackage string
}

// PlaceholderSchema is the schema rendered when no usable schema exists.
func PlaceholderSchema(source string) schema.Schema {
	return schema.Schema{
		Source:   source,
		Messages: []schema.Message{{Name: schema.PlaceholderMessage}},
	}
}

type kindInfo struct {
	goType    string
	coerce    string
	write     string
	writeList string
	read      string
	appendTo  string
	wireConst string
	jsInit    string
	jsWrite   string
	jsRead    string
}

var kinds = map[schema.Kind]kindInfo{
	schema.StringKind: {"string", "AsString", "WriteString", "WriteStrings", "ReadString", "AppendStrings", "wire.BytesType", "''", "writeString", "readString"},
	schema.BytesKind:  {"[]byte", "AsBytes", "WriteBytes", "WriteBytesList", "ReadBytes", "AppendBytesList", "wire.BytesType", "", "writeBytes", "readBytes"},
	schema.BoolKind:   {"bool", "AsBool", "WriteBool", "WriteBools", "ReadBool", "AppendBools", "wire.VarintType", "false", "writeBool", "readBool"},
	schema.Int32Kind:  {"int32", "AsInt32", "WriteInt32", "WriteInt32s", "ReadInt32", "AppendInt32s", "wire.VarintType", "0", "writeInt32", "readInt32"},
	schema.Int64Kind:  {"int64", "AsInt64", "WriteInt64", "WriteInt64s", "ReadInt64", "AppendInt64s", "wire.VarintType", "0", "writeInt64", "readInt64"},
	schema.Uint32Kind: {"uint32", "AsUint32", "WriteUint32", "WriteUint32s", "ReadUint32", "AppendUint32s", "wire.VarintType", "0", "writeUint32", "readUint32"},
	schema.Uint64Kind: {"uint64", "AsUint64", "WriteUint64", "WriteUint64s", "ReadUint64", "AppendUint64s", "wire.VarintType", "0", "writeUint64", "readUint64"},
}

type fileView struct {
	Source      string
	Package     string
	Runtime     string
	Hash        string
	Outcome     string
	Placeholder bool
	Fallback    bool
	Schema      schema.Schema
	Messages    []messageView
}

type messageView struct {
	Index    int
	Name     string
	GoName   string
	FullName string
	Fields   []fieldView
	Sorted   []fieldView
}

type fieldView struct {
	Number    int32
	Name      string
	GoName    string
	GoType    string
	Kind      string
	KindConst string
	Repeated  bool

	Coerce string
	Write  string
	Cond   string
	Read   string

	JSInit  string
	JSWrite string
	JSCond  string
	JSRead  string
	JSJSON  string
}

func newFileView(in Input) (fileView, error) {
	v := fileView{
		Source:      in.Schema.Source,
		Package:     in.GoPackage,
		Runtime:     runtimeModule,
		Hash:        in.Hash,
		Outcome:     in.Outcome.String(),
		Placeholder: in.Outcome != OutcomeGenerated,
		Fallback:    in.Outcome == OutcomeFallback,
		Schema:      in.Schema,
	}
	for i, m := range in.Schema.Messages {
		mv := messageView{
			Index:    i,
			Name:     m.Name,
			GoName:   schema.GoName(m.Name),
			FullName: m.Name,
		}
		if in.Schema.Package != "" {
			mv.FullName = in.Schema.Package + "." + m.Name
		}
		for _, f := range m.Fields {
			fv, err := newFieldView(f)
			if err != nil {
				return fileView{}, fmt.Errorf("codegen: %s.%s: %w", m.Name, f.Name, err)
			}
			mv.Fields = append(mv.Fields, fv)
		}
		for _, f := range m.SortedFields() {
			fv, _ := newFieldView(f)
			mv.Sorted = append(mv.Sorted, fv)
		}
		v.Messages = append(v.Messages, mv)
	}
	return v, nil
}

func newFieldView(f schema.Field) (fieldView, error) {
	k, ok := kinds[f.Kind]
	if !ok {
		return fieldView{}, fmt.Errorf("unsupported kind %s", f.Kind)
	}
	fv := fieldView{
		Number:    f.Number,
		Name:      f.Name,
		GoName:    f.GoName(),
		GoType:    k.goType,
		Kind:      f.Kind.String(),
		KindConst: kindConst(f.Kind),
		Repeated:  f.Repeated,
	}
	key := strconv.Quote(f.Name)
	prop := "this." + f.Name
	data := "data." + f.Name
	lengthDelimited := f.Kind == schema.StringKind || f.Kind == schema.BytesKind

	if !f.Repeated {
		fv.Coerce = fmt.Sprintf("registry.%s(data[%s])", k.coerce, key)
		fv.Write = fmt.Sprintf("w.%s(%d, m.%s)", k.write, f.Number, fv.GoName)
		fv.Cond = fmt.Sprintf("num == %d && typ == %s", f.Number, k.wireConst)
		fv.Read = fmt.Sprintf("out.%s, err = r.%s()", fv.GoName, k.read)

		fv.JSWrite = fmt.Sprintf("w.%s(%d, %s);", k.jsWrite, f.Number, prop)
		fv.JSRead = fmt.Sprintf("m.%s = r.%s();", f.Name, k.jsRead)
		fv.JSJSON = prop
		switch f.Kind {
		case schema.BytesKind:
			fv.JSInit = fmt.Sprintf("toBytes(%s)", data)
			fv.JSJSON = fmt.Sprintf("bytesToBase64(%s)", prop)
		case schema.BoolKind:
			fv.JSInit = fmt.Sprintf("Boolean(%s ?? false)", data)
		case schema.Int32Kind, schema.Uint32Kind:
			fv.JSInit = fmt.Sprintf("Number(%s ?? 0)", data)
		case schema.Int64Kind, schema.Uint64Kind:
			fv.JSInit = fmt.Sprintf("BigInt(%s ?? 0)", data)
			fv.JSJSON = prop + ".toString()"
		default:
			fv.JSInit = fmt.Sprintf("String(%s ?? %s)", data, k.jsInit)
		}
	} else {
		fv.GoType = "[]" + k.goType
		fv.Coerce = fmt.Sprintf("registry.AsList(data[%s], registry.%s)", key, k.coerce)
		fv.Write = fmt.Sprintf("w.%s(%d, m.%s)", k.writeList, f.Number, fv.GoName)
		fv.Read = fmt.Sprintf("out.%s, err = r.%s(out.%s, typ)", fv.GoName, k.appendTo, fv.GoName)
		fv.JSJSON = fmt.Sprintf("[...%s]", prop)
		switch {
		case lengthDelimited:
			fv.Cond = fmt.Sprintf("num == %d && typ == wire.BytesType", f.Number)
			fv.JSRead = fmt.Sprintf("m.%s.push(r.%s());", f.Name, k.jsRead)
		default:
			fv.Cond = fmt.Sprintf("num == %d && (typ == wire.VarintType || typ == wire.BytesType)", f.Number)
			fv.JSRead = fmt.Sprintf("r.readPacked(wireType, readerOf.%s, m.%s);", f.Kind, f.Name)
		}
		switch f.Kind {
		case schema.StringKind:
			fv.JSInit = fmt.Sprintf("Array.from(%s ?? [], String)", data)
			fv.JSWrite = fmt.Sprintf("w.writeStrings(%d, %s);", f.Number, prop)
		case schema.BytesKind:
			fv.JSInit = fmt.Sprintf("Array.from(%s ?? [], toBytes)", data)
			fv.JSWrite = fmt.Sprintf("w.writeBytesList(%d, %s);", f.Number, prop)
			fv.JSJSON = fmt.Sprintf("%s.map(bytesToBase64)", prop)
		case schema.BoolKind:
			fv.JSInit = fmt.Sprintf("Array.from(%s ?? [], Boolean)", data)
		case schema.Int32Kind, schema.Uint32Kind:
			fv.JSInit = fmt.Sprintf("Array.from(%s ?? [], Number)", data)
		case schema.Int64Kind, schema.Uint64Kind:
			fv.JSInit = fmt.Sprintf("Array.from(%s ?? [], BigInt)", data)
			fv.JSJSON = fmt.Sprintf("%s.map(String)", prop)
		}
		if !lengthDelimited {
			fv.JSWrite = fmt.Sprintf("w.writePacked(%d, %s, varintOf.%s);", f.Number, prop, f.Kind)
		}
	}

	if lengthDelimited {
		fv.JSCond = "wireType === 2"
	} else if f.Repeated {
		fv.JSCond = "wireType === 0 || wireType === 2"
	} else {
		fv.JSCond = "wireType === 0"
	}
	return fv, nil
}

func kindConst(k schema.Kind) string {
	switch k {
	case schema.StringKind:
		return "StringKind"
	case schema.BytesKind:
		return "BytesKind"
	case schema.BoolKind:
		return "BoolKind"
	case schema.Int32Kind:
		return "Int32Kind"
	case schema.Int64Kind:
		return "Int64Kind"
	case schema.Uint32Kind:
		return "Uint32Kind"
	case schema.Uint64Kind:
		return "Uint64Kind"
	}
	return "InvalidKind"
}

// RenderGo renders the native target. The result is gofmt-formatted.
func RenderGo(in Input) ([]byte, error) {
	view, err := newFileView(in)
	if err != nil {
		return nil, err
	}
	if view.Package == "" {
		return nil, fmt.Errorf("codegen: go package name is required")
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "go.tmpl", view); err != nil {
		return nil, fmt.Errorf("codegen: render go: %w", err)
	}
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("codegen: format go: %w", err)
	}
	return out, nil
}

// RenderJS renders the browser target.
func RenderJS(in Input) ([]byte, error) {
	view, err := newFileView(in)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "js.tmpl", view); err != nil {
		return nil, fmt.Errorf("codegen: render js: %w", err)
	}
	return buf.Bytes(), nil
}
