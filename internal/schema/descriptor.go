package schema

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

var reflectKinds = map[protoreflect.Kind]Kind{
	protoreflect.StringKind: StringKind,
	protoreflect.BytesKind:  BytesKind,
	protoreflect.BoolKind:   BoolKind,
	protoreflect.Int32Kind:  Int32Kind,
	protoreflect.Int64Kind:  Int64Kind,
	protoreflect.Uint32Kind: Uint32Kind,
	protoreflect.Uint64Kind: Uint64Kind,
	protoreflect.EnumKind:   Int32Kind,
}

// FromDescriptorSet builds the schema for file from a serialized
// FileDescriptorSet as written by protoc --descriptor_set_out
// --include_imports. Constructs outside the supported subset fail with
// *UnsupportedError.
func FromDescriptorSet(b []byte, file string) (Schema, error) {
	var set descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(b, &set); err != nil {
		return Schema{}, fmt.Errorf("schema: decode descriptor set: %w", err)
	}
	files, err := protodesc.NewFiles(&set)
	if err != nil {
		return Schema{}, fmt.Errorf("schema: link descriptor set: %w", err)
	}
	fd, err := files.FindFileByPath(file)
	if err != nil {
		return Schema{}, fmt.Errorf("schema: descriptor set has no %s: %w", file, err)
	}
	return fromFile(fd)
}

func fromFile(fd protoreflect.FileDescriptor) (Schema, error) {
	s := Schema{Package: string(fd.Package()), Source: fd.Path()}
	msgs := fd.Messages()
	for i := 0; i < msgs.Len(); i++ {
		m, err := fromMessage(msgs.Get(i))
		if err != nil {
			return Schema{}, err
		}
		s.Messages = append(s.Messages, m)
	}
	return s, nil
}

func fromMessage(md protoreflect.MessageDescriptor) (Message, error) {
	name := string(md.Name())
	nested := md.Messages()
	for i := 0; i < nested.Len(); i++ {
		if !nested.Get(i).IsMapEntry() {
			return Message{}, &UnsupportedError{Message: name, Construct: "nested message " + string(nested.Get(i).Name())}
		}
	}
	msg := Message{Name: name}
	fields := md.Fields()
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		fname := string(fd.Name())
		switch {
		case fd.IsMap():
			return Message{}, &UnsupportedError{Message: name, Field: fname, Construct: "map field"}
		case fd.ContainingOneof() != nil:
			return Message{}, &UnsupportedError{Message: name, Field: fname, Construct: "oneof or optional field"}
		}
		kind, ok := reflectKinds[fd.Kind()]
		if !ok {
			return Message{}, &UnsupportedError{Message: name, Field: fname, Construct: "kind " + fd.Kind().String()}
		}
		msg.Fields = append(msg.Fields, Field{
			Number:   int32(fd.Number()),
			Name:     fname,
			Kind:     kind,
			Repeated: fd.Cardinality() == protoreflect.Repeated,
		})
	}
	return msg, nil
}

var descriptorTypes = map[Kind]descriptorpb.FieldDescriptorProto_Type{
	StringKind: descriptorpb.FieldDescriptorProto_TYPE_STRING,
	BytesKind:  descriptorpb.FieldDescriptorProto_TYPE_BYTES,
	BoolKind:   descriptorpb.FieldDescriptorProto_TYPE_BOOL,
	Int32Kind:  descriptorpb.FieldDescriptorProto_TYPE_INT32,
	Int64Kind:  descriptorpb.FieldDescriptorProto_TYPE_INT64,
	Uint32Kind: descriptorpb.FieldDescriptorProto_TYPE_UINT32,
	Uint64Kind: descriptorpb.FieldDescriptorProto_TYPE_UINT64,
}

// ToDescriptor renders s as a proto3 file descriptor. Enum-typed fields come
// back as int32.
func ToDescriptor(s Schema) *descriptorpb.FileDescriptorProto {
	name := s.Source
	if name == "" {
		name = "schema.proto"
	}
	fdp := &descriptorpb.FileDescriptorProto{
		Name:   proto.String(name),
		Syntax: proto.String("proto3"),
	}
	if s.Package != "" {
		fdp.Package = proto.String(s.Package)
	}
	for _, m := range s.Messages {
		dp := &descriptorpb.DescriptorProto{Name: proto.String(m.Name)}
		for _, f := range m.Fields {
			label := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
			if f.Repeated {
				label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
			}
			dp.Field = append(dp.Field, &descriptorpb.FieldDescriptorProto{
				Name:     proto.String(f.Name),
				Number:   proto.Int32(f.Number),
				Label:    label.Enum(),
				Type:     descriptorTypes[f.Kind].Enum(),
				JsonName: proto.String(jsonName(f.Name)),
			})
		}
		fdp.MessageType = append(fdp.MessageType, dp)
	}
	return fdp
}

// DescriptorSet serializes s as a single-file FileDescriptorSet.
func DescriptorSet(s Schema) ([]byte, error) {
	set := &descriptorpb.FileDescriptorSet{
		File: []*descriptorpb.FileDescriptorProto{ToDescriptor(s)},
	}
	b, err := proto.MarshalOptions{Deterministic: true}.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("schema: encode descriptor set: %w", err)
	}
	return b, nil
}

// jsonName is protoc's lowerCamelCase rendering of a field name.
func jsonName(name string) string {
	out := make([]byte, 0, len(name))
	upper := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '_' {
			upper = true
			continue
		}
		if upper && 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		out = append(out, c)
	}
	return string(out)
}
