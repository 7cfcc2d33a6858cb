package crypto

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func hexToBytes(key string) ([]byte, error) {
	return hex.DecodeString(key)
}

func TestKeyGeneration(t *testing.T) {
	passphrase := "endless focus guilt bronze hold economy bulk parent soon tower cement venue"
	publicKey, privateKey, err := GetKeys(passphrase)
	assert.Nil(t, err)
	assert.Equal(t, "508a965871253595b36e2f8dc27bff6e67b39bdd466531be9c6f8c401253979c", hex.EncodeToString(publicKey))
	assert.Equal(t, "a30c9e2b10599702b985d18fee55721b56691877cd2c70bbdc1911818dabc9b9508a965871253595b36e2f8dc27bff6e67b39bdd466531be9c6f8c401253979c", hex.EncodeToString(privateKey))
}

func TestKeyPairFromPrivateKey(t *testing.T) {
	sk, _ := hexToBytes("81076308b1be76842f0bbcdc8659647400a14c193c333582a649bfda130856e3af52aaba65b2e71b01f8eadd748e56d877b7e555376ae389922e3a0ab4f5bee0")
	pk, _ := hexToBytes("af52aaba65b2e71b01f8eadd748e56d877b7e555376ae389922e3a0ab4f5bee0")

	keyPair, err := KeyPairFromPrivateKey(sk)
	assert.NoError(t, err)
	assert.Equal(t, pk, keyPair.PublicKey)

	fromSeed, err := KeyPairFromPrivateKey(sk[:32])
	assert.NoError(t, err)
	assert.Equal(t, keyPair, fromSeed)
	assert.Equal(t, pk, GetEdPublicKey(sk[:32]))

	_, err = KeyPairFromPrivateKey(sk[:10])
	assert.Error(t, err)
}

func TestSignature(t *testing.T) {
	pk, _ := hexToBytes("af52aaba65b2e71b01f8eadd748e56d877b7e555376ae389922e3a0ab4f5bee0")
	sk, _ := hexToBytes("81076308b1be76842f0bbcdc8659647400a14c193c333582a649bfda130856e3af52aaba65b2e71b01f8eadd748e56d877b7e555376ae389922e3a0ab4f5bee0")
	signature, err := Sign(sk, []byte("message"))
	assert.NoError(t, err)

	err = VerifySignature(pk, signature[:], []byte("message"))
	assert.NoError(t, err)

	err = VerifySignature(pk, signature[:], []byte("other message"))
	assert.Error(t, err)

	again, err := Sign(sk, []byte("message"))
	assert.NoError(t, err)
	assert.Equal(t, signature, again, "ed25519 signatures are deterministic")

	_, err = Sign(sk[:32], []byte("message"))
	assert.ErrorIs(t, err, ErrSigning)
}

func TestKeyPairSign(t *testing.T) {
	keyPair, err := GenerateKeyPair()
	assert.NoError(t, err)
	other, err := GenerateKeyPair()
	assert.NoError(t, err)

	signature, err := keyPair.Sign([]byte("message"))
	assert.NoError(t, err)
	assert.NoError(t, VerifySignature(keyPair.PublicKey, signature[:], []byte("message")))

	mismatched := KeyPair{PublicKey: other.PublicKey, PrivateKey: keyPair.PrivateKey}
	_, err = mismatched.Sign([]byte("message"))
	assert.ErrorIs(t, err, ErrSigning)

	invalid := KeyPair{PublicKey: keyPair.PublicKey[:5], PrivateKey: keyPair.PrivateKey}
	_, err = invalid.Sign([]byte("message"))
	assert.ErrorIs(t, err, ErrSigning)
}

func TestSignatureText(t *testing.T) {
	var signature Signature
	assert.True(t, signature.IsZero())
	signature[0] = 1
	assert.False(t, signature.IsZero())

	parsed, err := ParseSignature(signature.String())
	assert.NoError(t, err)
	assert.Equal(t, signature, parsed)

	marshaled, err := json.Marshal(signature)
	assert.NoError(t, err)
	unmarshaled := Signature{}
	assert.NoError(t, json.Unmarshal(marshaled, &unmarshaled))
	assert.Equal(t, signature, unmarshaled)

	_, err = ParseSignature("1111")
	assert.Error(t, err)
	_, err = SignatureFromBytes(make([]byte, 63))
	assert.Error(t, err)
}
