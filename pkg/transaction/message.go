// Package transaction defines compiled transaction messages, their wire codecs and signature slots.
package transaction

import (
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/LiskHQ/sdk-core/pkg/address"
)

// BlockhashLength is the byte length of a blockhash.
const BlockhashLength = 32

// Blockhash is the recent blockhash used as the lifetime token of a message.
type Blockhash [BlockhashLength]byte

// ParseBlockhash decodes a base58 blockhash.
func ParseBlockhash(val string) (Blockhash, error) {
	var hash Blockhash
	decoded, err := base58.Decode(val)
	if err != nil {
		return hash, fmt.Errorf("invalid base58 blockhash: %w", err)
	}
	if len(decoded) != BlockhashLength {
		return hash, fmt.Errorf("blockhash must be size of %d but received %d", BlockhashLength, len(decoded))
	}
	copy(hash[:], decoded)
	return hash, nil
}

func (b Blockhash) String() string {
	return base58.Encode(b[:])
}

func (b Blockhash) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *Blockhash) UnmarshalJSON(data []byte) error {
	str := ""
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	res, err := ParseBlockhash(str)
	if err != nil {
		return err
	}
	*b = res
	return nil
}

// Version is the message format version.
type Version int

const (
	// Legacy messages carry no version prefix and no address table lookups.
	Legacy Version = -1
	// V0 messages are prefixed with 0x80 and may carry address table lookups.
	V0 Version = 0

	maxVersion = 127
)

func (v Version) String() string {
	if v == Legacy {
		return "legacy"
	}
	return fmt.Sprintf("v%d", int(v))
}

func (v Version) MarshalJSON() ([]byte, error) {
	if v == Legacy {
		return json.Marshal("legacy")
	}
	return json.Marshal(int(v))
}

// MessageHeader counts the signer and read-only accounts of the static account list.
// Static accounts are ordered writable signers, read-only signers, writable non-signers, read-only non-signers.
type MessageHeader struct {
	NumSignerAccounts            uint8 `json:"numSignerAccounts"`
	NumReadonlySignerAccounts    uint8 `json:"numReadonlySignerAccounts"`
	NumReadonlyNonSignerAccounts uint8 `json:"numReadonlyNonSignerAccounts"`
}

// CompiledInstruction references its program and accounts by index into the account list of the message.
type CompiledInstruction struct {
	ProgramAddressIndex uint8   `json:"programAddressIndex"`
	AccountIndices      []uint8 `json:"accountIndices"`
	Data                []byte  `json:"data"`
}

// AddressTableLookup references an on-chain address lookup table and the indices which should be loaded from it.
// Indices are not validated against the size of the table.
type AddressTableLookup struct {
	LookupTableAddress address.Address `json:"lookupTableAddress"`
	WritableIndices    []uint8         `json:"writableIndices"`
	ReadableIndices    []uint8         `json:"readableIndices"`
}

// CompiledMessage is the part of a transaction covered by its signatures.
type CompiledMessage struct {
	Version             Version               `json:"version"`
	Header              MessageHeader         `json:"header"`
	StaticAccounts      []address.Address     `json:"staticAccounts"`
	LifetimeToken       Blockhash             `json:"lifetimeToken"`
	Instructions        []CompiledInstruction `json:"instructions"`
	AddressTableLookups []AddressTableLookup  `json:"addressTableLookups,omitempty"`
}

// Validate checks the header against the static accounts.
func (m *CompiledMessage) Validate() error {
	if m.Version != Legacy && m.Version != V0 {
		return fmt.Errorf("%w: %s", ErrUnsupportedVersion, m.Version)
	}
	if m.Version == Legacy && len(m.AddressTableLookups) > 0 {
		return fmt.Errorf("%w: legacy messages cannot have address table lookups", ErrInvalidHeader)
	}
	// the first byte of a legacy message is the signer count and must not look like a version prefix
	if m.Version == Legacy && m.Header.NumSignerAccounts&versionFlag != 0 {
		return fmt.Errorf("%w: legacy messages cannot have more than %d signers", ErrInvalidHeader, versionFlag-1)
	}
	numAccounts := len(m.StaticAccounts)
	if int(m.Header.NumSignerAccounts) > numAccounts {
		return fmt.Errorf("%w: %d signers but only %d static accounts", ErrInvalidHeader, m.Header.NumSignerAccounts, numAccounts)
	}
	if m.Header.NumReadonlySignerAccounts > m.Header.NumSignerAccounts {
		return fmt.Errorf("%w: %d read-only signers exceed %d signers", ErrInvalidHeader, m.Header.NumReadonlySignerAccounts, m.Header.NumSignerAccounts)
	}
	if int(m.Header.NumReadonlyNonSignerAccounts) > numAccounts-int(m.Header.NumSignerAccounts) {
		return fmt.Errorf("%w: %d read-only non-signers exceed %d non-signers", ErrInvalidHeader, m.Header.NumReadonlyNonSignerAccounts, numAccounts-int(m.Header.NumSignerAccounts))
	}
	return nil
}

// SignerAddresses returns the addresses required to sign, in signature slot order.
func (m *CompiledMessage) SignerAddresses() []address.Address {
	n := int(m.Header.NumSignerAccounts)
	if n > len(m.StaticAccounts) {
		n = len(m.StaticAccounts)
	}
	result := make([]address.Address, n)
	copy(result, m.StaticAccounts[:n])
	return result
}

// Copy returns a deep copy of the message.
func (m *CompiledMessage) Copy() CompiledMessage {
	msg := CompiledMessage{
		Version:        m.Version,
		Header:         m.Header,
		StaticAccounts: copySlice(m.StaticAccounts),
		LifetimeToken:  m.LifetimeToken,
	}
	if m.Instructions != nil {
		msg.Instructions = make([]CompiledInstruction, len(m.Instructions))
		for i, inst := range m.Instructions {
			msg.Instructions[i] = CompiledInstruction{
				ProgramAddressIndex: inst.ProgramAddressIndex,
				AccountIndices:      copySlice(inst.AccountIndices),
				Data:                copySlice(inst.Data),
			}
		}
	}
	if m.AddressTableLookups != nil {
		msg.AddressTableLookups = make([]AddressTableLookup, len(m.AddressTableLookups))
		for i, lookup := range m.AddressTableLookups {
			msg.AddressTableLookups[i] = AddressTableLookup{
				LookupTableAddress: lookup.LookupTableAddress,
				WritableIndices:    copySlice(lookup.WritableIndices),
				ReadableIndices:    copySlice(lookup.ReadableIndices),
			}
		}
	}
	return msg
}

func copySlice[T any](val []T) []T {
	if val == nil {
		return nil
	}
	dest := make([]T, len(val))
	copy(dest, val)
	return dest
}
