package transaction

import (
	"fmt"
	"sync"

	"github.com/LiskHQ/sdk-core/pkg/address"
	"github.com/LiskHQ/sdk-core/pkg/codec"
	"github.com/LiskHQ/sdk-core/pkg/crypto"
)

// Transaction is a compiled message with one signature slot per required signer.
// Slots follow the order of the first NumSignerAccounts static accounts and are nil until signed.
//
// Signatures are not invalidated when the message is mutated. Callers must sign again after any change.
type Transaction struct {
	Message    CompiledMessage     `json:"message"`
	Signatures []*crypto.Signature `json:"signatures"`
}

// New returns an unsigned transaction of msg.
func New(msg CompiledMessage) (*Transaction, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &Transaction{
		Message:    msg,
		Signatures: make([]*crypto.Signature, msg.Header.NumSignerAccounts),
	}, nil
}

// Copy returns a deep copy of the transaction.
func (t *Transaction) Copy() *Transaction {
	signatures := make([]*crypto.Signature, len(t.Signatures))
	for i, sig := range t.Signatures {
		if sig != nil {
			copied := *sig
			signatures[i] = &copied
		}
	}
	return &Transaction{
		Message:    t.Message.Copy(),
		Signatures: signatures,
	}
}

// SigningBytes encodes the current message. The result is recomputed on every call.
func (t *Transaction) SigningBytes() ([]byte, error) {
	return codec.Encode(MessageCodec(), t.Message)
}

// SignerAddresses returns the required signers in slot order.
func (t *Transaction) SignerAddresses() []address.Address {
	return t.Message.SignerAddresses()
}

func (t *Transaction) slotIndex(addr address.Address) (int, error) {
	index := address.IndexOf(t.Message.SignerAddresses(), addr)
	if index < 0 {
		return -1, fmt.Errorf("%w: %s", ErrUnexpectedSigner, addr)
	}
	return index, nil
}

func (t *Transaction) ensureSlots() {
	n := int(t.Message.Header.NumSignerAccounts)
	if len(t.Signatures) == n {
		return
	}
	signatures := make([]*crypto.Signature, n)
	copy(signatures, t.Signatures)
	t.Signatures = signatures
}

// Signature returns the signature in the slot of addr.
func (t *Transaction) Signature(addr address.Address) (*crypto.Signature, bool) {
	index := address.IndexOf(t.Message.SignerAddresses(), addr)
	if index < 0 || index >= len(t.Signatures) || t.Signatures[index] == nil {
		return nil, false
	}
	return t.Signatures[index], true
}

// SetSignature fills the slot of addr. Other slots are left untouched.
func (t *Transaction) SetSignature(addr address.Address, signature crypto.Signature) error {
	index, err := t.slotIndex(addr)
	if err != nil {
		return err
	}
	t.ensureSlots()
	t.Signatures[index] = &signature
	return nil
}

// Sign returns a copy of the transaction carrying the signatures of keyPairs.
// The receiver is not modified.
func (t *Transaction) Sign(keyPairs ...crypto.KeyPair) (*Transaction, error) {
	signed := t.Copy()
	message, err := signed.SigningBytes()
	if err != nil {
		return nil, err
	}
	for _, keyPair := range keyPairs {
		addr, err := address.FromPublicKey(keyPair.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", crypto.ErrSigning, err.Error())
		}
		if _, err := signed.slotIndex(addr); err != nil {
			return nil, err
		}
		signature, err := keyPair.Sign(message)
		if err != nil {
			return nil, err
		}
		if err := signed.SetSignature(addr, signature); err != nil {
			return nil, err
		}
	}
	return signed, nil
}

// MissingSigners returns the required signers whose slot is empty.
func (t *Transaction) MissingSigners() []address.Address {
	missing := []address.Address{}
	for i, addr := range t.Message.SignerAddresses() {
		if i >= len(t.Signatures) || t.Signatures[i] == nil {
			missing = append(missing, addr)
		}
	}
	return missing
}

// IsFullySigned returns true when every slot is filled.
func (t *Transaction) IsFullySigned() bool {
	return len(t.MissingSigners()) == 0
}

// AssertFullySigned returns ErrMissingSignatures naming the signers with an empty slot.
func (t *Transaction) AssertFullySigned() error {
	missing := t.MissingSigners()
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrMissingSignatures, missing)
}

// VerifySignatures checks every filled slot against the current message.
func (t *Transaction) VerifySignatures() error {
	message, err := t.SigningBytes()
	if err != nil {
		return err
	}
	for i, addr := range t.Message.SignerAddresses() {
		if i >= len(t.Signatures) || t.Signatures[i] == nil {
			continue
		}
		if err := crypto.VerifySignature(addr.Bytes(), t.Signatures[i][:], message); err != nil {
			return fmt.Errorf("signature of %s: %w", addr, err)
		}
	}
	return nil
}

// ID returns the fee payer signature which identifies the transaction on the network.
func (t *Transaction) ID() (crypto.Signature, error) {
	if len(t.Signatures) == 0 || t.Signatures[0] == nil {
		return crypto.Signature{}, fmt.Errorf("%w: fee payer has not signed", ErrMissingSignatures)
	}
	return *t.Signatures[0], nil
}

var signatureCodec = codec.Transform(
	codec.FixedBytes(crypto.EdSignatureLength),
	codec.Description("A signature slot, 64 zero bytes when the signer has not signed yet", "signature"),
	func(sig *crypto.Signature) []byte {
		if sig == nil {
			return make([]byte, crypto.EdSignatureLength)
		}
		return sig[:]
	},
	func(b []byte) (*crypto.Signature, error) {
		sig, err := crypto.SignatureFromBytes(b)
		if err != nil {
			return nil, err
		}
		if sig.IsZero() {
			return nil, nil
		}
		return &sig, nil
	},
)

var transactionCodec = sync.OnceValue(func() codec.Codec[*Transaction] {
	signatures := codec.NewArrayCodec(signatureCodec)
	return codec.NewCodec(codec.VariableSize, codec.Description("A compiled message prefixed with its signature slots", "transaction"),
		func(w *codec.Writer, value *Transaction) error {
			if len(value.Signatures) != int(value.Message.Header.NumSignerAccounts) {
				return fmt.Errorf("%w: %d signature slots for %d signers", ErrInvalidHeader, len(value.Signatures), value.Message.Header.NumSignerAccounts)
			}
			if err := signatures.Write(w, value.Signatures); err != nil {
				return fmt.Errorf("encoding field signatures: %w", err)
			}
			if err := MessageCodec().Write(w, value.Message); err != nil {
				return fmt.Errorf("encoding field message: %w", err)
			}
			return nil
		},
		func(r *codec.Reader) (*Transaction, error) {
			sigs, err := signatures.Read(r)
			if err != nil {
				return nil, fmt.Errorf("decoding field signatures: %w", err)
			}
			msg, err := MessageCodec().Read(r)
			if err != nil {
				return nil, fmt.Errorf("decoding field message: %w", err)
			}
			if len(sigs) != int(msg.Header.NumSignerAccounts) {
				return nil, fmt.Errorf("%w: %d signature slots for %d signers", ErrInvalidHeader, len(sigs), msg.Header.NumSignerAccounts)
			}
			return &Transaction{Message: msg, Signatures: sigs}, nil
		},
	)
})

// Codec returns the wire codec of a transaction.
func Codec() codec.Codec[*Transaction] {
	return transactionCodec()
}

// Encode returns the wire bytes of the transaction including empty slots.
func (t *Transaction) Encode() ([]byte, error) {
	return codec.Encode(Codec(), t)
}

// Decode decodes a transaction which must consume all of data.
func Decode(data []byte) (*Transaction, error) {
	return codec.DecodeStrict(Codec(), data)
}

// WireBytes returns the bytes for submission. Partially signed transactions are rejected.
func (t *Transaction) WireBytes() ([]byte, error) {
	if err := t.AssertFullySigned(); err != nil {
		return nil, err
	}
	return t.Encode()
}
