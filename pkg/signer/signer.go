// Package signer defines the signer capabilities used to sign messages and transactions,
// and the pipeline applying several signers to one transaction.
package signer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/LiskHQ/sdk-core/pkg/address"
	"github.com/LiskHQ/sdk-core/pkg/crypto"
	"github.com/LiskHQ/sdk-core/pkg/transaction"
)

var (
	// ErrCapabilityMismatch is returned when a value does not implement the asserted capability.
	ErrCapabilityMismatch = errors.New("value does not implement signer capability")
	// ErrSignerResult is returned when a signer returns a result inconsistent with its input.
	ErrSignerResult = errors.New("signer returned an invalid result")
	// ErrMultipleSenders is returned when more than one transaction sender signer is provided.
	ErrMultipleSenders = errors.New("more than one transaction sender signer provided")
	// ErrNilTransaction is returned when a transaction to sign is nil.
	ErrNilTransaction = errors.New("transaction cannot be nil")
)

// SignedMessage is a message with the signature produced over it.
type SignedMessage struct {
	Message   []byte
	Signature crypto.Signature
}

// Signer is identified by its address.
type Signer interface {
	Address() address.Address
}

// MessageSigner signs arbitrary messages. Results are returned in the order of messages.
type MessageSigner interface {
	Signer
	SignMessages(ctx context.Context, messages [][]byte) ([]SignedMessage, error)
}

// TransactionSigner fills its own signature slot of each transaction.
// Returned transactions are in input order and slots of other signers are left untouched.
type TransactionSigner interface {
	Signer
	SignTransactions(ctx context.Context, transactions []*transaction.Transaction) ([]*transaction.Transaction, error)
}

// TransactionSenderSigner signs and submits transactions, returning their signatures.
type TransactionSenderSigner interface {
	Signer
	SignAndSendTransactions(ctx context.Context, transactions []*transaction.Transaction) ([]crypto.Signature, error)
}

// IsMessageSigner returns true if value implements MessageSigner.
func IsMessageSigner(value interface{}) bool {
	_, ok := value.(MessageSigner)
	return ok
}

// AssertIsMessageSigner returns value as a MessageSigner or ErrCapabilityMismatch.
func AssertIsMessageSigner(value interface{}) (MessageSigner, error) {
	s, ok := value.(MessageSigner)
	if !ok {
		return nil, fmt.Errorf("%w: %T does not implement MessageSigner", ErrCapabilityMismatch, value)
	}
	return s, nil
}

// IsTransactionSigner returns true if value implements TransactionSigner.
func IsTransactionSigner(value interface{}) bool {
	_, ok := value.(TransactionSigner)
	return ok
}

// AssertIsTransactionSigner returns value as a TransactionSigner or ErrCapabilityMismatch.
func AssertIsTransactionSigner(value interface{}) (TransactionSigner, error) {
	s, ok := value.(TransactionSigner)
	if !ok {
		return nil, fmt.Errorf("%w: %T does not implement TransactionSigner", ErrCapabilityMismatch, value)
	}
	return s, nil
}

// IsTransactionSenderSigner returns true if value implements TransactionSenderSigner.
func IsTransactionSenderSigner(value interface{}) bool {
	_, ok := value.(TransactionSenderSigner)
	return ok
}

// AssertIsTransactionSenderSigner returns value as a TransactionSenderSigner or ErrCapabilityMismatch.
func AssertIsTransactionSenderSigner(value interface{}) (TransactionSenderSigner, error) {
	s, ok := value.(TransactionSenderSigner)
	if !ok {
		return nil, fmt.Errorf("%w: %T does not implement TransactionSenderSigner", ErrCapabilityMismatch, value)
	}
	return s, nil
}

// Signers groups signers by capability.
type Signers struct {
	Message     []MessageSigner
	Transaction []TransactionSigner
	Sender      TransactionSenderSigner
}

// SplitSigners classifies values by capability. A value may be both a message and a transaction signer.
// A sender is not listed as a transaction signer since it signs while sending.
func SplitSigners(values ...interface{}) (*Signers, error) {
	result := &Signers{
		Message:     []MessageSigner{},
		Transaction: []TransactionSigner{},
	}
	for _, value := range values {
		matched := false
		if s, ok := value.(MessageSigner); ok {
			result.Message = append(result.Message, s)
			matched = true
		}
		if s, ok := value.(TransactionSenderSigner); ok {
			if result.Sender != nil && result.Sender.Address() != s.Address() {
				return nil, fmt.Errorf("%w: %s and %s", ErrMultipleSenders, result.Sender.Address(), s.Address())
			}
			result.Sender = s
			matched = true
		} else if s, ok := value.(TransactionSigner); ok {
			result.Transaction = append(result.Transaction, s)
			matched = true
		}
		if !matched {
			return nil, fmt.Errorf("%w: %T is not a signer", ErrCapabilityMismatch, value)
		}
	}
	return result, nil
}

func dedupe(signers []TransactionSigner) []TransactionSigner {
	result := make([]TransactionSigner, 0, len(signers))
	seen := map[address.Address]bool{}
	for _, s := range signers {
		addr := s.Address()
		if seen[addr] {
			continue
		}
		seen[addr] = true
		result = append(result, s)
	}
	return result
}

// SignTransaction applies signers to tx one after another, each receiving the output of the previous one.
// Signers sharing an address are applied once. The input transaction is not modified.
func SignTransaction(ctx context.Context, signers []TransactionSigner, tx *transaction.Transaction) (*transaction.Transaction, error) {
	if tx == nil {
		return nil, ErrNilTransaction
	}
	expected, err := tx.SigningBytes()
	if err != nil {
		return nil, err
	}
	current := tx.Copy()
	for _, s := range dedupe(signers) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results, err := s.SignTransactions(ctx, []*transaction.Transaction{current})
		if err != nil {
			return nil, fmt.Errorf("signer %s: %w", s.Address(), err)
		}
		if len(results) != 1 || results[0] == nil {
			return nil, fmt.Errorf("%w: signer %s returned %d transactions for 1", ErrSignerResult, s.Address(), len(results))
		}
		signed := results[0]
		actual, err := signed.SigningBytes()
		if err != nil {
			return nil, fmt.Errorf("%w: signer %s: %s", ErrSignerResult, s.Address(), err.Error())
		}
		if !bytes.Equal(actual, expected) {
			return nil, fmt.Errorf("%w: signer %s modified the message", ErrSignerResult, s.Address())
		}
		current = signed
	}
	return current, nil
}

// SignAndSendTransaction signs tx with signers and hands the result to sender.
// It returns the transaction signature reported by sender.
func SignAndSendTransaction(ctx context.Context, sender TransactionSenderSigner, signers []TransactionSigner, tx *transaction.Transaction) (crypto.Signature, error) {
	signed, err := SignTransaction(ctx, signers, tx)
	if err != nil {
		return crypto.Signature{}, err
	}
	signatures, err := sender.SignAndSendTransactions(ctx, []*transaction.Transaction{signed})
	if err != nil {
		return crypto.Signature{}, fmt.Errorf("sender %s: %w", sender.Address(), err)
	}
	if len(signatures) != 1 {
		return crypto.Signature{}, fmt.Errorf("%w: sender %s returned %d signatures for 1", ErrSignerResult, sender.Address(), len(signatures))
	}
	return signatures[0], nil
}
