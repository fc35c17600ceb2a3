// Package wire owns the binary wire format shared by the Go backend and the
// generated browser client.
//
// Ownership boundary:
// - varint, tag and length-delimited primitives
// - default-omission on encode
// - unknown-field skipping and typed decode errors
//
// Varints carry up to 64 bits. Signed 32 and 64 bit values are sign-extended
// to 64 bits before encoding, so negative numbers always take ten bytes.
package wire
