package codec

import "fmt"

// Reader is a byte slice with a cursor.
type Reader struct {
	index int
	data  []byte
}

// NewReader returns reader with the data given.
func NewReader(data []byte) *Reader {
	return &Reader{
		data:  data,
		index: 0,
	}
}

// NewReaderAt returns reader starting at offset.
func NewReaderAt(data []byte, offset int) (*Reader, error) {
	if offset < 0 || offset > len(data) {
		return nil, fmt.Errorf("%w: offset %d outside of %d bytes", ErrTruncated, offset, len(data))
	}
	return &Reader{
		data:  data,
		index: offset,
	}, nil
}

// Offset returns the position of the next unread byte.
func (r *Reader) Offset() int {
	return r.index
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.index
}

// HasUnreadBytes returns true if the cursor did not reach the end.
func (r *Reader) HasUnreadBytes() bool {
	return r.index != len(r.data)
}

// PeekUInt8 returns the next byte without consuming it.
func (r *Reader) PeekUInt8() (uint8, error) {
	if r.index >= len(r.data) {
		return 0, fmt.Errorf("%w: need 1 byte at offset %d", ErrTruncated, r.index)
	}
	return r.data[r.index], nil
}

// ReadUInt8 reads a single byte.
func (r *Reader) ReadUInt8() (uint8, error) {
	val, err := r.PeekUInt8()
	if err != nil {
		return 0, err
	}
	r.index++
	return val, nil
}

// ReadBytes reads exactly size bytes. The result is a copy.
func (r *Reader) ReadBytes(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrMalformed, size)
	}
	if remaining := r.Remaining(); size > remaining {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d but %d remain", ErrTruncated, size, r.index, remaining)
	}
	result := make([]byte, size)
	copy(result, r.data[r.index:r.index+size])
	r.index += size
	return result, nil
}
