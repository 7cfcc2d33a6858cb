package signer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LiskHQ/sdk-core/pkg/address"
	"github.com/LiskHQ/sdk-core/pkg/crypto"
	"github.com/LiskHQ/sdk-core/pkg/transaction"
)

type mockSender struct {
	signer   *KeypairSigner
	received []*transaction.Transaction
	err      error
}

func (m *mockSender) Address() address.Address { return m.signer.Address() }

func (m *mockSender) SignAndSendTransactions(ctx context.Context, txs []*transaction.Transaction) ([]crypto.Signature, error) {
	if m.err != nil {
		return nil, m.err
	}
	signed, err := m.signer.SignTransactions(ctx, txs)
	if err != nil {
		return nil, err
	}
	m.received = append(m.received, signed...)
	result := make([]crypto.Signature, len(signed))
	for i, tx := range signed {
		id, err := tx.ID()
		if err != nil {
			return nil, err
		}
		result[i] = id
	}
	return result, nil
}

// tamperingSigner returns a transaction with a different message.
type tamperingSigner struct {
	*KeypairSigner
	count int
}

func (s *tamperingSigner) SignTransactions(ctx context.Context, txs []*transaction.Transaction) ([]*transaction.Transaction, error) {
	signed, err := s.KeypairSigner.SignTransactions(ctx, txs)
	if err != nil {
		return nil, err
	}
	if s.count > 0 {
		return append(signed, signed...), nil
	}
	signed[0].Message.LifetimeToken[0] ^= 0xff
	return signed, nil
}

type notASigner struct{}

func newSigner(t *testing.T, passphrase string) *KeypairSigner {
	t.Helper()
	pk, sk, err := crypto.GetKeys(passphrase)
	require.NoError(t, err)
	s, err := NewKeypairSigner(crypto.KeyPair{PublicKey: pk, PrivateKey: sk})
	require.NoError(t, err)
	return s
}

func newTransaction(t *testing.T, signers ...Signer) *transaction.Transaction {
	t.Helper()
	accounts := []address.Address{}
	for _, s := range signers {
		accounts = append(accounts, s.Address())
	}
	accounts = append(accounts, address.MustParse("SysvarRent111111111111111111111111111111111"))
	tx, err := transaction.New(transaction.CompiledMessage{
		Version: transaction.V0,
		Header: transaction.MessageHeader{
			NumSignerAccounts:            uint8(len(signers)),
			NumReadonlyNonSignerAccounts: 1,
		},
		StaticAccounts: accounts,
		LifetimeToken:  transaction.Blockhash{1, 2, 3},
		Instructions: []transaction.CompiledInstruction{
			{ProgramAddressIndex: uint8(len(signers)), AccountIndices: []uint8{0}, Data: []byte{9}},
		},
		AddressTableLookups: []transaction.AddressTableLookup{},
	})
	require.NoError(t, err)
	return tx
}

func TestKeypairSignerSignMessages(t *testing.T) {
	s := newSigner(t, "message signer")
	messages := [][]byte{[]byte("first"), []byte("second"), {}}

	results, err := s.SignMessages(context.Background(), messages)
	require.NoError(t, err)
	require.Len(t, results, len(messages))
	for i, res := range results {
		assert.Equal(t, messages[i], res.Message)
		assert.NoError(t, crypto.VerifySignature(s.Address().Bytes(), res.Signature[:], messages[i]))
	}

	invalid, err := NewKeypairSigner(crypto.KeyPair{PublicKey: s.Address().Bytes(), PrivateKey: []byte{1, 2}})
	require.NoError(t, err)
	_, err = invalid.SignMessages(context.Background(), messages)
	assert.ErrorIs(t, err, crypto.ErrSigning)

	_, err = NewKeypairSigner(crypto.KeyPair{PublicKey: []byte{1}})
	assert.Error(t, err)
}

func TestKeypairSignerSignTransactions(t *testing.T) {
	s := newSigner(t, "transaction signer")
	txs := make([]*transaction.Transaction, 20)
	for i := range txs {
		txs[i] = newTransaction(t, s)
		txs[i].Message.Instructions[0].Data = []byte{byte(i)}
	}

	results, err := s.SignTransactions(context.Background(), txs)
	require.NoError(t, err)
	require.Len(t, results, len(txs))
	for i, tx := range results {
		assert.Equal(t, []byte{byte(i)}, tx.Message.Instructions[0].Data, "results must keep input order")
		assert.True(t, tx.IsFullySigned())
		assert.NoError(t, tx.VerifySignatures())
		assert.False(t, txs[i].IsFullySigned())
	}

	other := newSigner(t, "other")
	txs[5] = newTransaction(t, other)
	_, err = s.SignTransactions(context.Background(), txs)
	assert.ErrorIs(t, err, transaction.ErrUnexpectedSigner)
}

func TestGenerateKeypairSigner(t *testing.T) {
	s, err := GenerateKeypairSigner()
	require.NoError(t, err)
	assert.False(t, s.Address().IsZero())
	assert.Equal(t, s.KeyPair().PublicKey, s.Address().Bytes())
}

func TestCapabilities(t *testing.T) {
	keypair := newSigner(t, "keypair")
	sender := &mockSender{signer: keypair}

	assert.True(t, IsMessageSigner(keypair))
	assert.True(t, IsTransactionSigner(keypair))
	assert.False(t, IsTransactionSenderSigner(keypair))
	assert.True(t, IsTransactionSenderSigner(sender))
	assert.False(t, IsMessageSigner(sender))
	assert.False(t, IsTransactionSigner(nil))

	_, err := AssertIsMessageSigner(keypair)
	assert.NoError(t, err)
	_, err = AssertIsTransactionSigner(keypair)
	assert.NoError(t, err)
	_, err = AssertIsTransactionSenderSigner(sender)
	assert.NoError(t, err)

	_, err = AssertIsTransactionSenderSigner(keypair)
	assert.ErrorIs(t, err, ErrCapabilityMismatch)
	assert.ErrorContains(t, err, "*signer.KeypairSigner does not implement TransactionSenderSigner")
	_, err = AssertIsMessageSigner(notASigner{})
	assert.ErrorIs(t, err, ErrCapabilityMismatch)
	_, err = AssertIsTransactionSigner("address")
	assert.ErrorIs(t, err, ErrCapabilityMismatch)
}

func TestSplitSigners(t *testing.T) {
	a := newSigner(t, "a")
	b := newSigner(t, "b")
	sender := &mockSender{signer: newSigner(t, "sender")}

	signers, err := SplitSigners(a, sender, b)
	require.NoError(t, err)
	assert.Equal(t, []MessageSigner{a, b}, signers.Message)
	assert.Equal(t, []TransactionSigner{a, b}, signers.Transaction)
	assert.Equal(t, sender, signers.Sender)

	_, err = SplitSigners(sender, &mockSender{signer: a})
	assert.ErrorIs(t, err, ErrMultipleSenders)

	_, err = SplitSigners(sender, sender)
	assert.NoError(t, err)

	_, err = SplitSigners(a, notASigner{})
	assert.ErrorIs(t, err, ErrCapabilityMismatch)

	empty, err := SplitSigners()
	require.NoError(t, err)
	assert.Empty(t, empty.Transaction)
	assert.Nil(t, empty.Sender)
}

func TestSignTransaction(t *testing.T) {
	a := newSigner(t, "a")
	b := newSigner(t, "b")
	tx := newTransaction(t, a, b)

	ab, err := SignTransaction(context.Background(), []TransactionSigner{a, b}, tx)
	require.NoError(t, err)
	ba, err := SignTransaction(context.Background(), []TransactionSigner{b, a, b}, tx)
	require.NoError(t, err)
	assert.True(t, ab.IsFullySigned())
	assert.False(t, tx.IsFullySigned())

	abBytes, err := ab.WireBytes()
	require.NoError(t, err)
	baBytes, err := ba.WireBytes()
	require.NoError(t, err)
	assert.Equal(t, abBytes, baBytes)

	partial, err := SignTransaction(context.Background(), []TransactionSigner{b}, tx)
	require.NoError(t, err)
	assert.Equal(t, []address.Address{a.Address()}, partial.MissingSigners())

	unchanged, err := SignTransaction(context.Background(), nil, tx)
	require.NoError(t, err)
	assert.Equal(t, tx, unchanged)
}

func TestSignTransactionErrors(t *testing.T) {
	a := newSigner(t, "a")
	b := newSigner(t, "b")
	tx := newTransaction(t, a, b)

	_, err := SignTransaction(context.Background(), []TransactionSigner{a, &tamperingSigner{KeypairSigner: b}}, tx)
	assert.ErrorIs(t, err, ErrSignerResult)
	assert.ErrorContains(t, err, "modified the message")

	_, err = SignTransaction(context.Background(), []TransactionSigner{&tamperingSigner{KeypairSigner: b, count: 1}}, tx)
	assert.ErrorIs(t, err, ErrSignerResult)

	_, err = SignTransaction(context.Background(), []TransactionSigner{newSigner(t, "c")}, tx)
	assert.ErrorIs(t, err, transaction.ErrUnexpectedSigner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = SignTransaction(ctx, []TransactionSigner{a}, tx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSignAndSendTransaction(t *testing.T) {
	a := newSigner(t, "a")
	sender := &mockSender{signer: newSigner(t, "sender")}
	tx := newTransaction(t, sender, a)

	signature, err := SignAndSendTransaction(context.Background(), sender, []TransactionSigner{a}, tx)
	require.NoError(t, err)
	require.Len(t, sender.received, 1)
	assert.True(t, sender.received[0].IsFullySigned())
	id, err := sender.received[0].ID()
	require.NoError(t, err)
	assert.Equal(t, id, signature)

	sender.err = errors.New("node unavailable")
	_, err = SignAndSendTransaction(context.Background(), sender, []TransactionSigner{a}, tx)
	assert.ErrorContains(t, err, "node unavailable")
}

func TestSignNilTransaction(t *testing.T) {
	a := newSigner(t, "a")
	tx := newTransaction(t, a)

	_, err := a.SignTransactions(context.Background(), []*transaction.Transaction{tx, nil})
	assert.ErrorIs(t, err, ErrNilTransaction)
	assert.ErrorContains(t, err, "transaction 1")

	_, err = SignTransaction(context.Background(), []TransactionSigner{a}, nil)
	assert.ErrorIs(t, err, ErrNilTransaction)

	_, err = SignAndSendTransaction(context.Background(), &mockSender{signer: a}, nil, nil)
	assert.ErrorIs(t, err, ErrNilTransaction)
}
