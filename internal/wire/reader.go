package wire

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// Reader consumes fields from one encoded buffer. Decoders loop on HasMore,
// read a tag, and dispatch or Skip.
type Reader struct {
	buf []byte
	pos int
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// HasMore reports whether unread bytes remain.
func (r *Reader) HasMore() bool {
	return r.pos < len(r.buf)
}

// Offset is the position of the next unread byte.
func (r *Reader) Offset() int {
	return r.pos
}

// ReadVarint consumes one varint of up to ten bytes.
func (r *Reader) ReadVarint() (uint64, error) {
	v, n := protowire.ConsumeVarint(r.buf[r.pos:])
	if n < 0 {
		return 0, r.fail("varint", n)
	}
	r.pos += n
	return v, nil
}

// ReadTag consumes a tag and splits it into field number and wire type.
// Field numbers outside 1..2^29-1 are rejected.
func (r *Reader) ReadTag() (Number, Type, error) {
	v, n := protowire.ConsumeVarint(r.buf[r.pos:])
	if n < 0 {
		return 0, 0, r.fail("tag", n)
	}
	num, typ := protowire.DecodeTag(v)
	if num < MinFieldNumber || num > MaxFieldNumber {
		return 0, 0, &DecodeError{Op: "tag", Offset: r.pos, Err: ErrFieldNumber}
	}
	r.pos += n
	return num, typ, nil
}

// ReadString consumes a length-delimited UTF-8 value.
func (r *Reader) ReadString() (string, error) {
	start := r.pos
	b, err := r.readLengthDelimited("string")
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", &DecodeError{Op: "string", Offset: start, Err: ErrInvalidUTF8}
	}
	return string(b), nil
}

// ReadBytes consumes a length-delimited value. The result does not alias
// the input buffer.
func (r *Reader) ReadBytes() ([]byte, error) {
	b, err := r.readLengthDelimited("bytes")
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadVarint()
	return int32(v), err
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadVarint()
	return int64(v), err
}

func (r *Reader) ReadUint32() (uint32, error) {
	v, err := r.ReadVarint()
	return uint32(v), err
}

func (r *Reader) ReadUint64() (uint64, error) {
	return r.ReadVarint()
}

func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadVarint()
	return protowire.DecodeBool(v), err
}

// Skip consumes the value of a field the decoder does not recognise,
// framed by its wire type.
func (r *Reader) Skip(num Number, typ Type) error {
	n := protowire.ConsumeFieldValue(num, typ, r.buf[r.pos:])
	if n < 0 {
		return r.fail("skip", n)
	}
	r.pos += n
	return nil
}

// AppendInt32s reads one element or one packed run, depending on typ.
func (r *Reader) AppendInt32s(dst []int32, typ Type) ([]int32, error) {
	return appendVarints(r, dst, typ, func(v uint64) int32 { return int32(v) })
}

func (r *Reader) AppendInt64s(dst []int64, typ Type) ([]int64, error) {
	return appendVarints(r, dst, typ, func(v uint64) int64 { return int64(v) })
}

func (r *Reader) AppendUint32s(dst []uint32, typ Type) ([]uint32, error) {
	return appendVarints(r, dst, typ, func(v uint64) uint32 { return uint32(v) })
}

func (r *Reader) AppendUint64s(dst []uint64, typ Type) ([]uint64, error) {
	return appendVarints(r, dst, typ, func(v uint64) uint64 { return v })
}

func (r *Reader) AppendBools(dst []bool, typ Type) ([]bool, error) {
	return appendVarints(r, dst, typ, protowire.DecodeBool)
}

func (r *Reader) AppendStrings(dst []string, typ Type) ([]string, error) {
	if typ != BytesType {
		return dst, r.wrongType("strings", typ)
	}
	v, err := r.ReadString()
	if err != nil {
		return dst, err
	}
	return append(dst, v), nil
}

func (r *Reader) AppendBytesList(dst [][]byte, typ Type) ([][]byte, error) {
	if typ != BytesType {
		return dst, r.wrongType("bytes list", typ)
	}
	v, err := r.ReadBytes()
	if err != nil {
		return dst, err
	}
	return append(dst, v), nil
}

func (r *Reader) readLengthDelimited(op string) ([]byte, error) {
	b, n := protowire.ConsumeBytes(r.buf[r.pos:])
	if n < 0 {
		return nil, r.fail(op, n)
	}
	r.pos += n
	return b, nil
}

func (r *Reader) fail(op string, code int) error {
	err := protowire.ParseError(code)
	switch {
	case errors.Is(err, io.ErrUnexpectedEOF):
		err = ErrTruncated
	case code == overflowCode:
		err = ErrOverflow
	default:
		err = fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &DecodeError{Op: op, Offset: r.pos, Err: err}
}

func (r *Reader) wrongType(op string, typ Type) error {
	return &DecodeError{Op: op, Offset: r.pos, Err: fmt.Errorf("%w: unexpected wire type %d", ErrMalformed, typ)}
}

func appendVarints[T any](r *Reader, dst []T, typ Type, dec func(uint64) T) ([]T, error) {
	switch typ {
	case VarintType:
		v, err := r.ReadVarint()
		if err != nil {
			return dst, err
		}
		return append(dst, dec(v)), nil
	case BytesType:
		start := r.pos
		b, err := r.readLengthDelimited("packed")
		if err != nil {
			return dst, err
		}
		for len(b) > 0 {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				// A packed run must hold whole varints.
				return dst, &DecodeError{Op: "packed", Offset: start, Err: ErrTruncated}
			}
			dst = append(dst, dec(v))
			b = b[n:]
		}
		return dst, nil
	default:
		return dst, r.wrongType("packed", typ)
	}
}

// overflowCode is the code ConsumeVarint returns when a tenth byte still
// carries data past 64 bits.
var overflowCode = func() int {
	_, n := protowire.ConsumeVarint([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01})
	return n
}()
