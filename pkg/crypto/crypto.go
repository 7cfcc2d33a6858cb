// Package crypto provides crypto related utility functions.
//
// It supports ed25519 for signature scheme, sha256 for hash, argon2id for key file encryption and
// BIP-39 recovery phrases for key derivation.
package crypto

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	ed "golang.org/x/crypto/ed25519"
)

const (
	EdPublicKeyLength  = 32
	EdPrivateKeyLength = 64
	EdSignatureLength  = 64
)

// ErrSigning is returned when the signature primitive cannot sign with the key material given.
var ErrSigning = errors.New("signing failed")

// Signature is an ed25519 signature.
type Signature [EdSignatureLength]byte

// SignatureFromBytes converts a 64 byte slice to a signature.
func SignatureFromBytes(val []byte) (Signature, error) {
	var sig Signature
	if len(val) != EdSignatureLength {
		return sig, fmt.Errorf("signature must have length of %d but received %d", EdSignatureLength, len(val))
	}
	copy(sig[:], val)
	return sig, nil
}

// ParseSignature decodes a base58 signature.
func ParseSignature(val string) (Signature, error) {
	decoded, err := base58.Decode(val)
	if err != nil {
		return Signature{}, fmt.Errorf("invalid base58 signature: %w", err)
	}
	return SignatureFromBytes(decoded)
}

// IsZero returns true for the all zero signature.
func (s Signature) IsZero() bool {
	return s == Signature{}
}

func (s Signature) String() string {
	return base58.Encode(s[:])
}

func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Signature) UnmarshalJSON(b []byte) error {
	str := ""
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	res, err := ParseSignature(str)
	if err != nil {
		return err
	}
	*s = res
	return nil
}

// KeyPair holds an ed25519 key pair.
type KeyPair struct {
	PublicKey  []byte
	PrivateKey []byte
}

// GenerateKeyPair creates a random key pair.
func GenerateKeyPair() (KeyPair, error) {
	pk, sk, err := ed.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{PublicKey: pk, PrivateKey: sk}, nil
}

// KeyPairFromPrivateKey creates a key pair from a 64 byte private key or a 32 byte seed.
func KeyPairFromPrivateKey(privateKey []byte) (KeyPair, error) {
	switch len(privateKey) {
	case EdPrivateKeyLength:
		sk := make([]byte, EdPrivateKeyLength)
		copy(sk, privateKey)
		return KeyPair{PublicKey: GetEdPublicKey(sk), PrivateKey: sk}, nil
	case ed.SeedSize:
		sk := ed.NewKeyFromSeed(privateKey)
		return KeyPair{PublicKey: GetEdPublicKey(sk), PrivateKey: sk}, nil
	default:
		return KeyPair{}, fmt.Errorf("private key must have length of %d or %d but received %d", EdPrivateKeyLength, ed.SeedSize, len(privateKey))
	}
}

// Sign signs message with the private key after checking that it belongs to the public key.
func (k KeyPair) Sign(message []byte) (Signature, error) {
	if len(k.PublicKey) != EdPublicKeyLength {
		return Signature{}, fmt.Errorf("%w: public key must have length of %d but received %d", ErrSigning, EdPublicKeyLength, len(k.PublicKey))
	}
	if len(k.PrivateKey) == EdPrivateKeyLength && !bytes.Equal(k.PrivateKey[32:], k.PublicKey) {
		return Signature{}, fmt.Errorf("%w: private key does not match public key", ErrSigning)
	}
	return Sign(k.PrivateKey, message)
}

// GetKeys returns the public and private key derived from the sha256 hash of passphrase.
func GetKeys(passphrase string) ([]byte, []byte, error) {
	passphraseHash := Hash([]byte(passphrase))
	randReader := bytes.NewReader(passphraseHash)
	senderPublicKey, senderPrivateKey, err := ed.GenerateKey(randReader)
	if err != nil {
		return nil, nil, err
	}
	return senderPublicKey[:], senderPrivateKey[:], nil
}

func GetEdPublicKey(privateKey []byte) []byte {
	if len(privateKey) == EdPrivateKeyLength {
		pk := make([]byte, EdPublicKeyLength)
		copy(pk, privateKey[32:])
		return pk
	}
	sk := ed.NewKeyFromSeed(privateKey)
	return sk.Public().(ed.PublicKey)
}

func Hash(key []byte) []byte {
	hasher := sha256.New()
	hasher.Write(key)
	return hasher.Sum(nil)
}

// Sign signs message with a 64 byte ed25519 private key.
func Sign(privateKey []byte, message []byte) (Signature, error) {
	if len(privateKey) != EdPrivateKeyLength {
		return Signature{}, fmt.Errorf("%w: private key must have length of %d but received %d", ErrSigning, EdPrivateKeyLength, len(privateKey))
	}
	var signature Signature
	copy(signature[:], ed.Sign(privateKey, message))
	return signature, nil
}

func VerifySignature(publicKey, signature []byte, message []byte) error {
	if len(publicKey) != EdPublicKeyLength {
		return fmt.Errorf("public key must have length of %d but received %d", EdPublicKeyLength, len(publicKey))
	}
	if valid := ed.Verify(publicKey, message, signature); !valid {
		return fmt.Errorf("invalid signature %x by %x", signature, publicKey)
	}
	return nil
}
