package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	ed "golang.org/x/crypto/ed25519"

	"github.com/LiskHQ/sdk-core/pkg/codec"
)

const (
	KeyFileVersion  = 1
	KDFArgon2ID     = "argon2id"
	CipherAES256GCM = "aes-256-gcm"

	argon2Iterations = 3
	argon2MemoryKiB  = 64 * 1024
	argon2Threads    = 4
	// 4 GiB
	maxArgon2MemoryKiB = 4 * 1024 * 1024
	saltLength         = 16
	gcmNonceLength     = 12
	encryptionKeyLen   = 32
)

// ErrInvalidPassword is returned when a key file cannot be opened with the password.
// A modified key file is indistinguishable from a wrong password.
var ErrInvalidPassword = errors.New("invalid password or corrupted key file")

// KDFParams are the argon2id parameters deriving the encryption key from the password.
type KDFParams struct {
	Name       string    `json:"name"`
	Salt       codec.Hex `json:"salt"`
	Iterations uint32    `json:"iterations"`
	MemoryKiB  uint32    `json:"memoryKiB"`
	Threads    uint8     `json:"threads"`
}

func (p KDFParams) validate() error {
	if p.Name != KDFArgon2ID {
		return fmt.Errorf("kdf %s is not supported", p.Name)
	}
	if len(p.Salt) != saltLength {
		return fmt.Errorf("kdf salt must have length of %d but received %d", saltLength, len(p.Salt))
	}
	if p.Iterations == 0 || p.Threads == 0 {
		return errors.New("kdf iterations and threads must be positive")
	}
	if p.MemoryKiB == 0 || p.MemoryKiB > maxArgon2MemoryKiB {
		return fmt.Errorf("kdf memory %d KiB is out of range", p.MemoryKiB)
	}
	return nil
}

func (p KDFParams) aead(password string) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(password), p.Salt, p.Iterations, p.MemoryKiB, p.Threads, encryptionKeyLen)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// CipherParams hold the sealed private key seed.
type CipherParams struct {
	Name  string    `json:"name"`
	Nonce codec.Hex `json:"nonce"`
	// CipherText carries the GCM tag as its last 16 bytes.
	CipherText codec.Hex `json:"cipherText"`
}

func (p CipherParams) validate() error {
	if p.Name != CipherAES256GCM {
		return fmt.Errorf("cipher %s is not supported", p.Name)
	}
	if len(p.Nonce) != gcmNonceLength {
		return fmt.Errorf("cipher nonce must have length of %d but received %d", gcmNonceLength, len(p.Nonce))
	}
	if len(p.CipherText) == 0 {
		return errors.New("cipher text cannot be empty")
	}
	return nil
}

// KeyFile is the encrypted on-disk form of a key pair.
// Only the 32 byte seed is stored. Address is kept in plain text and authenticated with the seed,
// so a key file cannot be relabeled with another address.
type KeyFile struct {
	Version int          `json:"version"`
	Address string       `json:"address"`
	KDF     KDFParams    `json:"kdf"`
	Cipher  CipherParams `json:"cipher"`
}

func (f *KeyFile) Validate() error {
	if f.Version != KeyFileVersion {
		return fmt.Errorf("key file version must be %d but received %d", KeyFileVersion, f.Version)
	}
	if f.Address == "" {
		return errors.New("key file address cannot be empty")
	}
	if err := f.KDF.validate(); err != nil {
		return err
	}
	return f.Cipher.validate()
}

// EncryptKeyPair seals the private key of keyPair with a key derived from password.
func EncryptKeyPair(keyPair KeyPair, address string, password string) (*KeyFile, error) {
	if len(keyPair.PrivateKey) != EdPrivateKeyLength {
		return nil, fmt.Errorf("private key must have length of %d but received %d", EdPrivateKeyLength, len(keyPair.PrivateKey))
	}
	if password == "" {
		return nil, errors.New("password cannot be empty")
	}
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	nonce := make([]byte, gcmNonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	kdf := KDFParams{
		Name:       KDFArgon2ID,
		Salt:       salt,
		Iterations: argon2Iterations,
		MemoryKiB:  argon2MemoryKiB,
		Threads:    argon2Threads,
	}
	aead, err := kdf.aead(password)
	if err != nil {
		return nil, err
	}
	seed := ed.PrivateKey(keyPair.PrivateKey).Seed()
	return &KeyFile{
		Version: KeyFileVersion,
		Address: address,
		KDF:     kdf,
		Cipher: CipherParams{
			Name:       CipherAES256GCM,
			Nonce:      nonce,
			CipherText: aead.Seal(nil, nonce, seed, []byte(address)),
		},
	}, nil
}

// DecryptKeyPair opens keyFile with password.
func DecryptKeyPair(keyFile *KeyFile, password string) (KeyPair, error) {
	if keyFile == nil {
		return KeyPair{}, errors.New("key file cannot be nil")
	}
	if err := keyFile.Validate(); err != nil {
		return KeyPair{}, err
	}
	aead, err := keyFile.KDF.aead(password)
	if err != nil {
		return KeyPair{}, err
	}
	seed, err := aead.Open(nil, keyFile.Cipher.Nonce, keyFile.Cipher.CipherText, []byte(keyFile.Address))
	if err != nil {
		return KeyPair{}, ErrInvalidPassword
	}
	return KeyPairFromPrivateKey(seed)
}
