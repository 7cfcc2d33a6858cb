package codec

import "fmt"

// NewArrayCodec returns a codec of a compact-u16 element count followed by each element in order.
func NewArrayCodec[T any](elem Codec[T]) Codec[[]T] {
	return NewSizedArrayCodec(elem, ShortU16())
}

// NewSizedArrayCodec returns a codec of an element count encoded with size followed by each element in order.
// Encoding more elements than size can represent fails with ErrOutOfRange.
func NewSizedArrayCodec[T any, N Unsigned](elem Codec[T], size Codec[N]) Codec[[]T] {
	description := fmt.Sprintf("array(%s; %s)", elem.Description(), size.Description())
	return NewCodec(VariableSize, description,
		func(w *Writer, value []T) error {
			count := N(len(value))
			if uint64(count) != uint64(len(value)) {
				return fmt.Errorf("%w: %d elements exceed the range of %s", ErrOutOfRange, len(value), size.Description())
			}
			if err := size.Write(w, count); err != nil {
				return err
			}
			for i, v := range value {
				if err := elem.Write(w, v); err != nil {
					return fmt.Errorf("encoding element %d: %w", i, err)
				}
			}
			return nil
		},
		func(r *Reader) ([]T, error) {
			count, err := size.Read(r)
			if err != nil {
				return nil, fmt.Errorf("decoding array size: %w", err)
			}
			n := uint64(count)
			capacity := n
			if elemSize := elem.FixedSize(); elemSize != VariableSize {
				if elemSize > 0 && n > uint64(r.Remaining()/elemSize) {
					return nil, fmt.Errorf("%w: array declares %d elements of %d bytes but %d bytes remain", ErrTruncated, n, elemSize, r.Remaining())
				}
			} else if remaining := uint64(r.Remaining()); capacity > remaining {
				// cap preallocation by the remaining input
				capacity = remaining
			}
			result := make([]T, 0, capacity)
			for i := uint64(0); i < n; i++ {
				v, err := elem.Read(r)
				if err != nil {
					return nil, fmt.Errorf("decoding element %d of %d: %w", i, n, err)
				}
				result = append(result, v)
			}
			return result, nil
		},
	)
}
