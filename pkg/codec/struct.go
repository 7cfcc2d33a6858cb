package codec

import "fmt"

// Field is a named member of a struct codec.
type Field[T any] struct {
	name        string
	size        int
	description string
	write       func(w *Writer, value *T) error
	read        func(r *Reader, value *T) error
}

// Name returns the field name.
func (f Field[T]) Name() string { return f.name }

// Description returns the description of the field codec.
func (f Field[T]) Description() string { return f.description }

// NewField declares a field of T encoded with c.
// ref returns a pointer to the field within the struct, which is used both to read the value for encoding and to
// store the decoded value.
func NewField[T, F any](name string, c Codec[F], ref func(value *T) *F) Field[T] {
	return Field[T]{
		name:        name,
		size:        c.FixedSize(),
		description: c.Description(),
		write: func(w *Writer, value *T) error {
			return c.Write(w, *ref(value))
		},
		read: func(r *Reader, value *T) error {
			val, err := c.Read(r)
			if err != nil {
				return err
			}
			*ref(value) = val
			return nil
		},
	}
}

// NewStructCodec returns a codec which concatenates the fields in the declared order with no padding.
// The field order is part of the wire format.
func NewStructCodec[T any](description string, fields ...Field[T]) Codec[T] {
	size := 0
	for _, field := range fields {
		if field.size == VariableSize {
			size = VariableSize
			break
		}
		size += field.size
	}
	return NewCodec(size, description,
		func(w *Writer, value T) error {
			for _, field := range fields {
				if err := field.write(w, &value); err != nil {
					return fmt.Errorf("encoding field %s: %w", field.name, err)
				}
			}
			return nil
		},
		func(r *Reader) (T, error) {
			var value T
			for _, field := range fields {
				if err := field.read(r, &value); err != nil {
					var empty T
					return empty, fmt.Errorf("decoding field %s: %w", field.name, err)
				}
			}
			return value, nil
		},
	)
}
