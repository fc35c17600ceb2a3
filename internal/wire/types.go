package wire

import "google.golang.org/protobuf/encoding/protowire"

// Number is a field number.
type Number = protowire.Number

// Type is the 3-bit wire type carried in every tag.
type Type = protowire.Type

// Wire types from the tag contract.
const (
	VarintType     Type = protowire.VarintType
	Fixed64Type    Type = protowire.Fixed64Type
	BytesType      Type = protowire.BytesType
	StartGroupType Type = protowire.StartGroupType
	EndGroupType   Type = protowire.EndGroupType
	Fixed32Type    Type = protowire.Fixed32Type
)

const (
	MinFieldNumber Number = protowire.MinValidNumber
	MaxFieldNumber Number = protowire.MaxValidNumber
)

// Tag returns the varint value (num << 3) | typ.
func Tag(num Number, typ Type) uint64 {
	return protowire.EncodeTag(num, typ)
}

// SplitTag splits a tag varint into field number and wire type.
func SplitTag(v uint64) (Number, Type) {
	return protowire.DecodeTag(v)
}
