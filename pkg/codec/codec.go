// Package codec implements composable binary encoders and decoders for the transaction wire format.
//
// Every protocol structure is described once by composing the primitive codecs of this package
// (fixed-width little-endian integers, compact-u16 and raw bytes) with the struct and array combinators.
// Encoding is deterministic and decoding is its exact inverse: decode(encode(v)) == v.
//
// Codecs are stateless and safe for concurrent use.
package codec

import "fmt"

// VariableSize is returned by FixedSize when the encoded length depends on the value.
const VariableSize = -1

// Encoder writes values of T.
type Encoder[T any] interface {
	// FixedSize returns the encoded length in bytes or VariableSize.
	FixedSize() int
	// Write appends the encoding of value to w.
	Write(w *Writer, value T) error
	// Description is diagnostic only. It never affects the encoded bytes.
	Description() string
}

// Decoder reads values of T.
type Decoder[T any] interface {
	// FixedSize returns the encoded length in bytes or VariableSize.
	FixedSize() int
	// Read decodes a value starting at the current offset of r and advances it.
	Read(r *Reader) (T, error)
	// Description is diagnostic only.
	Description() string
}

// Codec pairs an encoder and a decoder of the same type.
type Codec[T any] interface {
	Encoder[T]
	Decoder[T]
}

type encoder[T any] struct {
	size        int
	description string
	write       func(w *Writer, value T) error
}

func (e *encoder[T]) FixedSize() int                 { return e.size }
func (e *encoder[T]) Description() string            { return e.description }
func (e *encoder[T]) Write(w *Writer, value T) error { return e.write(w, value) }

type decoder[T any] struct {
	size        int
	description string
	read        func(r *Reader) (T, error)
}

func (d *decoder[T]) FixedSize() int             { return d.size }
func (d *decoder[T]) Description() string        { return d.description }
func (d *decoder[T]) Read(r *Reader) (T, error) { return d.read(r) }

type codec[T any] struct {
	size        int
	description string
	enc         Encoder[T]
	dec         Decoder[T]
}

func (c *codec[T]) FixedSize() int                 { return c.size }
func (c *codec[T]) Description() string            { return c.description }
func (c *codec[T]) Write(w *Writer, value T) error { return c.enc.Write(w, value) }
func (c *codec[T]) Read(r *Reader) (T, error)     { return c.dec.Read(r) }

// NewEncoder creates an encoder from a write function.
func NewEncoder[T any](size int, description string, write func(w *Writer, value T) error) Encoder[T] {
	return &encoder[T]{size: size, description: description, write: write}
}

// NewDecoder creates a decoder from a read function.
func NewDecoder[T any](size int, description string, read func(r *Reader) (T, error)) Decoder[T] {
	return &decoder[T]{size: size, description: description, read: read}
}

// NewCodec creates a codec from a pair of write and read functions.
func NewCodec[T any](size int, description string, write func(w *Writer, value T) error, read func(r *Reader) (T, error)) Codec[T] {
	return Combine(NewEncoder(size, description, write), NewDecoder(size, description, read))
}

// Combine pairs enc and dec into a codec.
// It panics if they disagree on the fixed size, since such a pair cannot round-trip.
func Combine[T any](enc Encoder[T], dec Decoder[T]) Codec[T] {
	if enc.FixedSize() != dec.FixedSize() {
		panic(fmt.Sprintf("codec: encoder and decoder size mismatch (%d != %d)", enc.FixedSize(), dec.FixedSize()))
	}
	description := enc.Description()
	if description == "" {
		description = dec.Description()
	}
	return &codec[T]{size: enc.FixedSize(), description: description, enc: enc, dec: dec}
}

// Describe returns a copy of c carrying description.
func Describe[T any](c Codec[T], description string) Codec[T] {
	return &codec[T]{size: c.FixedSize(), description: description, enc: c, dec: c}
}

// Transform maps c over a conversion between T and U.
// from may reject decoded values; the error is returned from Read.
func Transform[T, U any](c Codec[T], description string, to func(U) T, from func(T) (U, error)) Codec[U] {
	return NewCodec(
		c.FixedSize(),
		description,
		func(w *Writer, value U) error {
			return c.Write(w, to(value))
		},
		func(r *Reader) (U, error) {
			val, err := c.Read(r)
			if err != nil {
				var empty U
				return empty, err
			}
			return from(val)
		},
	)
}

// Encode encodes value into a new byte slice.
func Encode[T any](enc Encoder[T], value T) ([]byte, error) {
	w := NewWriter()
	if size := enc.FixedSize(); size != VariableSize {
		w.Grow(size)
	}
	if err := enc.Write(w, value); err != nil {
		return nil, err
	}
	return w.Result(), nil
}

// MustEncode is Encode which panics on error.
func MustEncode[T any](enc Encoder[T], value T) []byte {
	result, err := Encode(enc, value)
	if err != nil {
		panic(err)
	}
	return result
}

// Decode decodes a value from the beginning of data. Trailing bytes are ignored.
func Decode[T any](dec Decoder[T], data []byte) (T, error) {
	val, _, err := DecodeAt(dec, data, 0)
	return val, err
}

// DecodeAt decodes a value starting at offset and returns the offset after the last consumed byte.
func DecodeAt[T any](dec Decoder[T], data []byte, offset int) (T, int, error) {
	r, err := NewReaderAt(data, offset)
	if err != nil {
		var empty T
		return empty, offset, err
	}
	val, err := dec.Read(r)
	if err != nil {
		var empty T
		return empty, offset, err
	}
	return val, r.Offset(), nil
}

// DecodeStrict decodes a value which must consume all of data.
func DecodeStrict[T any](dec Decoder[T], data []byte) (T, error) {
	val, next, err := DecodeAt(dec, data, 0)
	if err != nil {
		return val, err
	}
	if next != len(data) {
		var empty T
		return empty, fmt.Errorf("%w: %d of %d bytes consumed", ErrUnreadBytes, next, len(data))
	}
	return val, nil
}
