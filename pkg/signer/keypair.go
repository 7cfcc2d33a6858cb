package signer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/LiskHQ/sdk-core/pkg/address"
	"github.com/LiskHQ/sdk-core/pkg/crypto"
	"github.com/LiskHQ/sdk-core/pkg/transaction"
)

// KeypairSigner signs messages and transactions with an ed25519 key pair.
type KeypairSigner struct {
	keyPair crypto.KeyPair
	address address.Address
}

var (
	_ MessageSigner     = (*KeypairSigner)(nil)
	_ TransactionSigner = (*KeypairSigner)(nil)
)

// NewKeypairSigner returns a signer whose address is the public key of keyPair.
func NewKeypairSigner(keyPair crypto.KeyPair) (*KeypairSigner, error) {
	addr, err := address.FromPublicKey(keyPair.PublicKey)
	if err != nil {
		return nil, err
	}
	return &KeypairSigner{
		keyPair: keyPair,
		address: addr,
	}, nil
}

// GenerateKeypairSigner returns a signer of a random key pair.
func GenerateKeypairSigner() (*KeypairSigner, error) {
	keyPair, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	return NewKeypairSigner(keyPair)
}

func (s *KeypairSigner) Address() address.Address {
	return s.address
}

// KeyPair returns the key pair of the signer.
func (s *KeypairSigner) KeyPair() crypto.KeyPair {
	return s.keyPair
}

// SignMessages signs each message independently. If any message fails, no result is returned.
func (s *KeypairSigner) SignMessages(ctx context.Context, messages [][]byte) ([]SignedMessage, error) {
	results := make([]SignedMessage, len(messages))
	eg, ectx := errgroup.WithContext(ctx)
	for i, message := range messages {
		i, message := i, message
		eg.Go(func() error {
			if err := ectx.Err(); err != nil {
				return err
			}
			signature, err := s.keyPair.Sign(message)
			if err != nil {
				return err
			}
			results[i] = SignedMessage{Message: message, Signature: signature}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SignTransactions signs each transaction independently and returns signed copies in input order.
// If any transaction fails, no result is returned.
func (s *KeypairSigner) SignTransactions(ctx context.Context, transactions []*transaction.Transaction) ([]*transaction.Transaction, error) {
	for i, tx := range transactions {
		if tx == nil {
			return nil, fmt.Errorf("%w: transaction %d", ErrNilTransaction, i)
		}
	}
	results := make([]*transaction.Transaction, len(transactions))
	eg, ectx := errgroup.WithContext(ctx)
	for i, tx := range transactions {
		i, tx := i, tx
		eg.Go(func() error {
			if err := ectx.Err(); err != nil {
				return err
			}
			signed, err := tx.Sign(s.keyPair)
			if err != nil {
				return err
			}
			results[i] = signed
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
