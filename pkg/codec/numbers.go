package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	msb8Bit  = 0x80
	rest8Bit = 0x7f

	// ShortU16MaxBytes is the longest compact-u16 encoding.
	ShortU16MaxBytes = 3
)

// Unsigned is the set of integer types usable as array size prefixes.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

var (
	u8Codec = NewCodec(1, "u8",
		func(w *Writer, value uint8) error {
			w.WriteUInt8(value)
			return nil
		},
		func(r *Reader) (uint8, error) {
			return r.ReadUInt8()
		},
	)
	u16Codec = NewCodec(2, "u16(le)",
		func(w *Writer, value uint16) error {
			w.WriteBytes(binary.LittleEndian.AppendUint16(nil, value))
			return nil
		},
		func(r *Reader) (uint16, error) {
			data, err := r.ReadBytes(2)
			if err != nil {
				return 0, err
			}
			return binary.LittleEndian.Uint16(data), nil
		},
	)
	u32Codec = NewCodec(4, "u32(le)",
		func(w *Writer, value uint32) error {
			w.WriteBytes(binary.LittleEndian.AppendUint32(nil, value))
			return nil
		},
		func(r *Reader) (uint32, error) {
			data, err := r.ReadBytes(4)
			if err != nil {
				return 0, err
			}
			return binary.LittleEndian.Uint32(data), nil
		},
	)
	u64Codec = NewCodec(8, "u64(le)",
		func(w *Writer, value uint64) error {
			w.WriteBytes(binary.LittleEndian.AppendUint64(nil, value))
			return nil
		},
		func(r *Reader) (uint64, error) {
			data, err := r.ReadBytes(8)
			if err != nil {
				return 0, err
			}
			return binary.LittleEndian.Uint64(data), nil
		},
	)
	shortU16Codec = NewCodec(VariableSize, "shortU16", writeShortU16, readShortU16)
)

// U8 returns the 8-bit unsigned integer codec.
func U8() Codec[uint8] { return u8Codec }

// U16 returns the little-endian 16-bit unsigned integer codec.
func U16() Codec[uint16] { return u16Codec }

// U32 returns the little-endian 32-bit unsigned integer codec.
func U32() Codec[uint32] { return u32Codec }

// U64 returns the little-endian 64-bit unsigned integer codec.
func U64() Codec[uint64] { return u64Codec }

// ShortU16 returns the compact-u16 codec.
//
// Each byte carries 7 bits of the value, least significant group first, and the high bit flags that
// another byte follows. Encoding always emits the minimal form. Decoding also accepts non-minimal
// forms such as 0x80 0x00 for zero.
func ShortU16() Codec[uint16] { return shortU16Codec }

// ShortU16Size returns the number of bytes of the minimal encoding of value.
func ShortU16Size(value uint16) int {
	switch {
	case value < (1 << 7):
		return 1
	case value < (1 << (7 * 2)):
		return 2
	default:
		return 3
	}
}

func writeShortU16(w *Writer, value uint16) error {
	rest := value
	for {
		b := uint8(rest & rest8Bit)
		rest >>= 7
		if rest == 0 {
			w.WriteUInt8(b)
			return nil
		}
		w.WriteUInt8(b | msb8Bit)
	}
}

func readShortU16(r *Reader) (uint16, error) {
	start := r.Offset()
	result := uint32(0)
	for i := 0; i < ShortU16MaxBytes; i++ {
		b, err := r.ReadUInt8()
		if err != nil {
			return 0, fmt.Errorf("shortU16 at offset %d: %w", start, err)
		}
		result |= uint32(b&rest8Bit) << (7 * i)
		if b&msb8Bit == 0 {
			if result > math.MaxUint16 {
				return 0, fmt.Errorf("%w: shortU16 at offset %d exceeds 16 bits", ErrMalformed, start)
			}
			return uint16(result), nil
		}
	}
	return 0, fmt.Errorf("%w: shortU16 at offset %d does not terminate within %d bytes", ErrMalformed, start, ShortU16MaxBytes)
}

// FixedBytes returns a codec of exactly size raw bytes without a length prefix.
// Encoding a slice of any other length fails with ErrOutOfRange.
func FixedBytes(size int) Codec[[]byte] {
	return NewCodec(size, fmt.Sprintf("bytes(%d)", size),
		func(w *Writer, value []byte) error {
			if len(value) != size {
				return fmt.Errorf("%w: expected %d bytes but received %d", ErrOutOfRange, size, len(value))
			}
			w.WriteBytes(value)
			return nil
		},
		func(r *Reader) ([]byte, error) {
			return r.ReadBytes(size)
		},
	)
}
