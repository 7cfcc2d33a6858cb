package transaction

import (
	"fmt"
	"sync"

	"github.com/LiskHQ/sdk-core/pkg/address"
	"github.com/LiskHQ/sdk-core/pkg/codec"
)

const versionFlag = 0x80

var (
	lookupTableAddressDescription = codec.Description(
		"The address of the address lookup table account from which instruction addresses should be looked up",
		"lookupTableAddress",
	)
	writableIndicesDescription = codec.Description(
		"The indices of the accounts in the lookup table that should be loaded as writeable",
		"writableIndices",
	)
	readableIndicesDescription = codec.Description(
		"The indices of the accounts in the lookup table that should be loaded as read-only",
		"readableIndices",
	)
	addressTableLookupDescription = codec.Description(
		"A pointer to the address of an address lookup table, along with the readonly/writeable indices of the addresses that should be loaded from it",
		"addressTableLookup",
	)
)

// arrayU8Codec is shared by every compact array of u8 in the message.
var arrayU8Codec = sync.OnceValue(func() codec.Codec[[]uint8] {
	return codec.NewArrayCodec(codec.U8())
})

var addressTableLookupCodec = sync.OnceValue(func() codec.Codec[AddressTableLookup] {
	return codec.NewStructCodec(addressTableLookupDescription,
		codec.NewField("lookupTableAddress", codec.Describe(address.Codec(), lookupTableAddressDescription),
			func(v *AddressTableLookup) *address.Address { return &v.LookupTableAddress }),
		codec.NewField("writableIndices", codec.Describe(arrayU8Codec(), writableIndicesDescription),
			func(v *AddressTableLookup) *[]uint8 { return &v.WritableIndices }),
		codec.NewField("readableIndices", codec.Describe(arrayU8Codec(), readableIndicesDescription),
			func(v *AddressTableLookup) *[]uint8 { return &v.ReadableIndices }),
	)
})

// AddressTableLookupCodec returns the codec of an address table lookup:
// the table address followed by the writable and the readable index arrays.
func AddressTableLookupCodec() codec.Codec[AddressTableLookup] {
	return addressTableLookupCodec()
}

// AddressTableLookupEncoder returns the encoding half of AddressTableLookupCodec.
func AddressTableLookupEncoder() codec.Encoder[AddressTableLookup] {
	return addressTableLookupCodec()
}

// AddressTableLookupDecoder returns the decoding half of AddressTableLookupCodec.
func AddressTableLookupDecoder() codec.Decoder[AddressTableLookup] {
	return addressTableLookupCodec()
}

var messageHeaderCodec = sync.OnceValue(func() codec.Codec[MessageHeader] {
	return codec.NewStructCodec(codec.Description("The transaction message header", "header"),
		codec.NewField("numSignerAccounts", codec.U8(),
			func(v *MessageHeader) *uint8 { return &v.NumSignerAccounts }),
		codec.NewField("numReadonlySignerAccounts", codec.U8(),
			func(v *MessageHeader) *uint8 { return &v.NumReadonlySignerAccounts }),
		codec.NewField("numReadonlyNonSignerAccounts", codec.U8(),
			func(v *MessageHeader) *uint8 { return &v.NumReadonlyNonSignerAccounts }),
	)
})

// MessageHeaderCodec returns the codec of the 3 byte message header.
func MessageHeaderCodec() codec.Codec[MessageHeader] {
	return messageHeaderCodec()
}

var compiledInstructionCodec = sync.OnceValue(func() codec.Codec[CompiledInstruction] {
	return codec.NewStructCodec(codec.Description("An instruction referencing its program and accounts by index", "instruction"),
		codec.NewField("programAddressIndex", codec.U8(),
			func(v *CompiledInstruction) *uint8 { return &v.ProgramAddressIndex }),
		codec.NewField("accountIndices", codec.Describe(arrayU8Codec(), "accountIndices"),
			func(v *CompiledInstruction) *[]uint8 { return &v.AccountIndices }),
		codec.NewField("data", codec.Describe(arrayU8Codec(), "data"),
			func(v *CompiledInstruction) *[]byte { return &v.Data }),
	)
})

// CompiledInstructionCodec returns the codec of a compiled instruction.
func CompiledInstructionCodec() codec.Codec[CompiledInstruction] {
	return compiledInstructionCodec()
}

var blockhashCodec = codec.Transform(
	codec.FixedBytes(BlockhashLength),
	codec.Description("A recent blockhash used as the lifetime of the transaction", "lifetimeToken"),
	func(b Blockhash) []byte { return b[:] },
	func(b []byte) (Blockhash, error) {
		var hash Blockhash
		copy(hash[:], b)
		return hash, nil
	},
)

// BlockhashCodec returns the codec of a 32 byte blockhash.
func BlockhashCodec() codec.Codec[Blockhash] {
	return blockhashCodec
}

var versionCodec = codec.NewCodec(codec.VariableSize, codec.Description("The message version prefix, absent for legacy messages", "version"),
	func(w *codec.Writer, value Version) error {
		if value == Legacy {
			return nil
		}
		if value < 0 || value > maxVersion {
			return fmt.Errorf("%w: version %d", codec.ErrOutOfRange, int(value))
		}
		w.WriteUInt8(versionFlag | uint8(value))
		return nil
	},
	func(r *codec.Reader) (Version, error) {
		prefix, err := r.PeekUInt8()
		if err != nil {
			return Legacy, err
		}
		// legacy messages start with the header which never has the high bit set
		if prefix&versionFlag == 0 {
			return Legacy, nil
		}
		if _, err := r.ReadUInt8(); err != nil {
			return Legacy, err
		}
		return Version(prefix &^ versionFlag), nil
	},
)

// VersionCodec returns the codec of the version prefix.
// Legacy writes and consumes no bytes.
func VersionCodec() codec.Codec[Version] {
	return versionCodec
}

var messageBodyCodec = sync.OnceValue(func() codec.Codec[CompiledMessage] {
	return codec.NewStructCodec("messageBody",
		codec.NewField("header", MessageHeaderCodec(),
			func(v *CompiledMessage) *MessageHeader { return &v.Header }),
		codec.NewField("staticAccounts", codec.NewArrayCodec(address.Codec()),
			func(v *CompiledMessage) *[]address.Address { return &v.StaticAccounts }),
		codec.NewField("lifetimeToken", BlockhashCodec(),
			func(v *CompiledMessage) *Blockhash { return &v.LifetimeToken }),
		codec.NewField("instructions", codec.NewArrayCodec(CompiledInstructionCodec()),
			func(v *CompiledMessage) *[]CompiledInstruction { return &v.Instructions }),
	)
})

var addressTableLookupsCodec = sync.OnceValue(func() codec.Codec[[]AddressTableLookup] {
	return codec.NewArrayCodec(AddressTableLookupCodec())
})

var messageCodec = sync.OnceValue(func() codec.Codec[CompiledMessage] {
	return codec.NewCodec(codec.VariableSize, codec.Description("The compiled transaction message covered by the signatures", "message"),
		func(w *codec.Writer, value CompiledMessage) error {
			if err := value.Validate(); err != nil {
				return err
			}
			if err := VersionCodec().Write(w, value.Version); err != nil {
				return fmt.Errorf("encoding field version: %w", err)
			}
			if err := messageBodyCodec().Write(w, value); err != nil {
				return err
			}
			if value.Version == Legacy {
				return nil
			}
			if err := addressTableLookupsCodec().Write(w, value.AddressTableLookups); err != nil {
				return fmt.Errorf("encoding field addressTableLookups: %w", err)
			}
			return nil
		},
		func(r *codec.Reader) (CompiledMessage, error) {
			version, err := VersionCodec().Read(r)
			if err != nil {
				return CompiledMessage{}, fmt.Errorf("decoding field version: %w", err)
			}
			if version != Legacy && version != V0 {
				return CompiledMessage{}, fmt.Errorf("%w: %s", ErrUnsupportedVersion, version)
			}
			msg, err := messageBodyCodec().Read(r)
			if err != nil {
				return CompiledMessage{}, err
			}
			msg.Version = version
			if version != Legacy {
				lookups, err := addressTableLookupsCodec().Read(r)
				if err != nil {
					return CompiledMessage{}, fmt.Errorf("decoding field addressTableLookups: %w", err)
				}
				msg.AddressTableLookups = lookups
			}
			if err := msg.Validate(); err != nil {
				return CompiledMessage{}, err
			}
			return msg, nil
		},
	)
})

// MessageCodec returns the codec of a compiled message.
// Its encoding is the byte span covered by the transaction signatures.
func MessageCodec() codec.Codec[CompiledMessage] {
	return messageCodec()
}
