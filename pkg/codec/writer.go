package codec

// Writer accumulates encoded bytes.
type Writer struct {
	result []byte
}

// NewWriter returns a new instances of a writer.
func NewWriter() *Writer {
	return &Writer{
		result: []byte{},
	}
}

// Grow ensures space for another n bytes.
func (w *Writer) Grow(n int) {
	if cap(w.result)-len(w.result) >= n {
		return
	}
	grown := make([]byte, len(w.result), len(w.result)+n)
	copy(grown, w.result)
	w.result = grown
}

// WriteUInt8 writes a single byte.
func (w *Writer) WriteUInt8(data uint8) {
	w.result = append(w.result, data)
}

// WriteBytes writes data as is, without any length prefix.
func (w *Writer) WriteBytes(data []byte) {
	w.result = append(w.result, data...)
}

// Result returns the written bytes.
func (w *Writer) Result() []byte {
	return w.result
}

// Size returns written size.
func (w *Writer) Size() int {
	return len(w.result)
}
