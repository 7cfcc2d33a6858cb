// Package address provides the 32 byte account address, its codec and its base58 text form.
package address

import (
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/LiskHQ/sdk-core/pkg/codec"
)

// Length is the byte length of an address.
const Length = 32

// Address identifies an account. It is the ed25519 public key for key pair accounts.
type Address [Length]byte

var addressCodec = codec.Transform(
	codec.FixedBytes(Length),
	"address",
	func(a Address) []byte { return a[:] },
	func(b []byte) (Address, error) { return FromBytes(b) },
)

// Codec returns the codec of an address: 32 raw bytes.
func Codec() codec.Codec[Address] {
	return addressCodec
}

// FromBytes converts a 32 byte slice to an address.
func FromBytes(val []byte) (Address, error) {
	var addr Address
	if len(val) != Length {
		return addr, fmt.Errorf("address must be size of %d but received %d", Length, len(val))
	}
	copy(addr[:], val)
	return addr, nil
}

// FromPublicKey returns the address of an ed25519 public key.
func FromPublicKey(publicKey []byte) (Address, error) {
	return FromBytes(publicKey)
}

// Parse decodes a base58 address.
func Parse(val string) (Address, error) {
	decoded, err := base58.Decode(val)
	if err != nil {
		return Address{}, fmt.Errorf("invalid base58 address %q: %w", val, err)
	}
	return FromBytes(decoded)
}

// MustParse is Parse which panics on error.
func MustParse(val string) Address {
	addr, err := Parse(val)
	if err != nil {
		panic(err)
	}
	return addr
}

// Validate returns an error if val is not a base58 encoded 32 byte address.
func Validate(val string) error {
	_, err := Parse(val)
	return err
}

// Bytes returns a copy of the address bytes.
func (a Address) Bytes() []byte {
	result := make([]byte, Length)
	copy(result, a[:])
	return result
}

// IsZero returns true for the all zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(b []byte) error {
	str := ""
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	res, err := Parse(str)
	if err != nil {
		return err
	}
	*a = res
	return nil
}

// Contains returns true if target is included in addresses.
func Contains(addresses []Address, target Address) bool {
	return IndexOf(addresses, target) >= 0
}

// IndexOf returns the index of target in addresses or -1.
func IndexOf(addresses []Address, target Address) int {
	for i, addr := range addresses {
		if addr == target {
			return i
		}
	}
	return -1
}
