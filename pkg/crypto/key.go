package crypto

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tyler-smith/go-bip39"
	ed "golang.org/x/crypto/ed25519"
)

const (
	// HardenedOffset is added to a child index to select hardened derivation.
	HardenedOffset uint32 = 1 << 31
	// DefaultDerivationPath is the path used when none is configured.
	DefaultDerivationPath = "m/44'/501'/0'/0'"

	slip10Curve = "ed25519 seed"
)

// ErrInvalidDerivationPath is returned when a derivation path cannot be parsed.
var ErrInvalidDerivationPath = errors.New("invalid derivation path")

// DerivationPath is the list of child indices below the master key.
// SLIP-10 defines only hardened derivation for ed25519, so every index is at least HardenedOffset.
type DerivationPath []uint32

// ParseDerivationPath parses a path such as m/44'/501'/0'/0'. Every segment must be hardened.
func ParseDerivationPath(path string) (DerivationPath, error) {
	rest, ok := strings.CutPrefix(path, "m")
	if !ok {
		return nil, fmt.Errorf("%w: %q must start from m", ErrInvalidDerivationPath, path)
	}
	if rest == "" {
		return DerivationPath{}, nil
	}
	rest, ok = strings.CutPrefix(rest, "/")
	if !ok {
		return nil, fmt.Errorf("%w: %q must separate segments with /", ErrInvalidDerivationPath, path)
	}
	segments := strings.Split(rest, "/")
	result := make(DerivationPath, 0, len(segments))
	for _, segment := range segments {
		index, hardened := strings.CutSuffix(segment, "'")
		if !hardened {
			return nil, fmt.Errorf("%w: segment %q of %q is not hardened", ErrInvalidDerivationPath, segment, path)
		}
		value, err := strconv.ParseUint(index, 10, 31)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %q of %q must be a number below 2^31", ErrInvalidDerivationPath, segment, path)
		}
		result = append(result, uint32(value)+HardenedOffset)
	}
	return result, nil
}

func (p DerivationPath) String() string {
	var b strings.Builder
	b.WriteString("m")
	for _, index := range p {
		fmt.Fprintf(&b, "/%d'", index-HardenedOffset)
	}
	return b.String()
}

// extendedKey is a SLIP-10 node: a 32 byte ed25519 seed and its chain code.
type extendedKey struct {
	key       []byte
	chainCode []byte
}

func splitExtendedKey(sum []byte) extendedKey {
	return extendedKey{key: sum[:32], chainCode: sum[32:]}
}

func newMasterKey(seed []byte) extendedKey {
	mac := hmac.New(sha512.New, []byte(slip10Curve))
	mac.Write(seed)
	return splitExtendedKey(mac.Sum(nil))
}

func (k extendedKey) child(index uint32) extendedKey {
	mac := hmac.New(sha512.New, k.chainCode)
	mac.Write([]byte{0})
	mac.Write(k.key)
	mac.Write(binary.BigEndian.AppendUint32(nil, index))
	return splitExtendedKey(mac.Sum(nil))
}

func deriveFromSeed(seed []byte, path DerivationPath) extendedKey {
	node := newMasterKey(seed)
	for _, index := range path {
		node = node.child(index)
	}
	return node
}

// DeriveEd25519Key derives the 64 byte private key of path from a BIP-39 recovery phrase using SLIP-10.
// The recovery phrase checksum is verified.
func DeriveEd25519Key(recoveryPhrase, path string) ([]byte, error) {
	derivationPath, err := ParseDerivationPath(path)
	if err != nil {
		return nil, err
	}
	seed, err := bip39.NewSeedWithErrorChecking(recoveryPhrase, "")
	if err != nil {
		return nil, fmt.Errorf("invalid recovery phrase: %w", err)
	}
	return ed.NewKeyFromSeed(deriveFromSeed(seed, derivationPath).key), nil
}

// DeriveKeyPair derives the key pair of path from a BIP-39 recovery phrase.
func DeriveKeyPair(recoveryPhrase, path string) (KeyPair, error) {
	sk, err := DeriveEd25519Key(recoveryPhrase, path)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPairFromPrivateKey(sk)
}

// NewRecoveryPhrase creates a 24 word BIP-39 recovery phrase.
func NewRecoveryPhrase() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}
