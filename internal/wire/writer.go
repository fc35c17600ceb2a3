package wire

import (
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// Writer appends fields to a buffer in call order. Generated encoders call
// the field writers in ascending field-number order.
//
// The first encode failure is kept and returned by Finish; later writes are
// dropped so a failed Writer never yields partial bytes.
type Writer struct {
	buf []byte
	err error
}

func NewWriter() *Writer {
	return &Writer{}
}

// WriteVarint appends v as a little-endian base-128 varint.
func (w *Writer) WriteVarint(v uint64) {
	if w.err != nil {
		return
	}
	w.buf = protowire.AppendVarint(w.buf, v)
}

// WriteTag appends the varint of (num << 3) | typ.
func (w *Writer) WriteTag(num Number, typ Type) {
	if w.err != nil {
		return
	}
	w.buf = protowire.AppendTag(w.buf, num, typ)
}

// WriteString writes a length-delimited UTF-8 field. Empty strings write nothing.
func (w *Writer) WriteString(num Number, v string) {
	if v == "" || w.err != nil {
		return
	}
	if !utf8.ValidString(v) {
		w.err = &EncodeError{Field: num, Err: ErrInvalidUTF8}
		return
	}
	w.buf = protowire.AppendTag(w.buf, num, BytesType)
	w.buf = protowire.AppendString(w.buf, v)
}

// WriteBytes writes a length-delimited field. Empty values write nothing.
func (w *Writer) WriteBytes(num Number, v []byte) {
	if len(v) == 0 || w.err != nil {
		return
	}
	w.buf = protowire.AppendTag(w.buf, num, BytesType)
	w.buf = protowire.AppendBytes(w.buf, v)
}

// WriteInt32 writes a varint field; negatives are sign-extended. Zero writes nothing.
func (w *Writer) WriteInt32(num Number, v int32) {
	w.writeVarintField(num, uint64(int64(v)))
}

func (w *Writer) WriteInt64(num Number, v int64) {
	w.writeVarintField(num, uint64(v))
}

func (w *Writer) WriteUint32(num Number, v uint32) {
	w.writeVarintField(num, uint64(v))
}

func (w *Writer) WriteUint64(num Number, v uint64) {
	w.writeVarintField(num, v)
}

func (w *Writer) WriteBool(num Number, v bool) {
	w.writeVarintField(num, protowire.EncodeBool(v))
}

// WriteStrings writes one record per element. Elements are never omitted,
// only an empty list is.
func (w *Writer) WriteStrings(num Number, vs []string) {
	for _, v := range vs {
		if w.err != nil {
			return
		}
		if !utf8.ValidString(v) {
			w.err = &EncodeError{Field: num, Err: ErrInvalidUTF8}
			return
		}
		w.buf = protowire.AppendTag(w.buf, num, BytesType)
		w.buf = protowire.AppendString(w.buf, v)
	}
}

func (w *Writer) WriteBytesList(num Number, vs [][]byte) {
	for _, v := range vs {
		if w.err != nil {
			return
		}
		w.buf = protowire.AppendTag(w.buf, num, BytesType)
		w.buf = protowire.AppendBytes(w.buf, v)
	}
}

// WriteInt32s writes a packed repeated field.
func (w *Writer) WriteInt32s(num Number, vs []int32) {
	writePacked(w, num, vs, func(v int32) uint64 { return uint64(int64(v)) })
}

func (w *Writer) WriteInt64s(num Number, vs []int64) {
	writePacked(w, num, vs, func(v int64) uint64 { return uint64(v) })
}

func (w *Writer) WriteUint32s(num Number, vs []uint32) {
	writePacked(w, num, vs, func(v uint32) uint64 { return uint64(v) })
}

func (w *Writer) WriteUint64s(num Number, vs []uint64) {
	writePacked(w, num, vs, func(v uint64) uint64 { return v })
}

func (w *Writer) WriteBools(num Number, vs []bool) {
	writePacked(w, num, vs, protowire.EncodeBool)
}

// Len reports the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Finish returns the encoded buffer, or the first encode error.
func (w *Writer) Finish() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if w.buf == nil {
		return []byte{}, nil
	}
	return w.buf, nil
}

func (w *Writer) writeVarintField(num Number, v uint64) {
	if v == 0 || w.err != nil {
		return
	}
	w.buf = protowire.AppendTag(w.buf, num, VarintType)
	w.buf = protowire.AppendVarint(w.buf, v)
}

func writePacked[T any](w *Writer, num Number, vs []T, enc func(T) uint64) {
	if len(vs) == 0 || w.err != nil {
		return
	}
	n := 0
	for _, v := range vs {
		n += protowire.SizeVarint(enc(v))
	}
	w.buf = protowire.AppendTag(w.buf, num, BytesType)
	w.buf = protowire.AppendVarint(w.buf, uint64(n))
	for _, v := range vs {
		w.buf = protowire.AppendVarint(w.buf, enc(v))
	}
}
