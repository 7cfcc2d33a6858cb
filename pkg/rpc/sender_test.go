package rpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LiskHQ/sdk-core/pkg/address"
	"github.com/LiskHQ/sdk-core/pkg/crypto"
	"github.com/LiskHQ/sdk-core/pkg/signer"
	"github.com/LiskHQ/sdk-core/pkg/transaction"
)

// acceptTransactions makes node decode submitted transactions and answer with their id.
func acceptTransactions(node *mockNode) *[]*transaction.Transaction {
	mu := sync.Mutex{}
	received := []*transaction.Transaction{}
	node.handlers[methodSendTx] = func(params json.RawMessage) (interface{}, error) {
		values := []json.RawMessage{}
		if err := json.Unmarshal(params, &values); err != nil {
			return nil, err
		}
		encoded := ""
		if err := json.Unmarshal(values[0], &encoded); err != nil {
			return nil, err
		}
		wire, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, err
		}
		tx, err := transaction.Decode(wire)
		if err != nil {
			return nil, err
		}
		if err := tx.VerifySignatures(); err != nil {
			return nil, err
		}
		id, err := tx.ID()
		if err != nil {
			return nil, err
		}
		mu.Lock()
		received = append(received, tx)
		mu.Unlock()
		return id.String(), nil
	}
	return &received
}

func newKeypairSigner(t *testing.T, passphrase string) *signer.KeypairSigner {
	t.Helper()
	pk, sk, err := crypto.GetKeys(passphrase)
	require.NoError(t, err)
	s, err := signer.NewKeypairSigner(crypto.KeyPair{PublicKey: pk, PrivateKey: sk})
	require.NoError(t, err)
	return s
}

func newUnsignedTransaction(t *testing.T, signers ...signer.Signer) *transaction.Transaction {
	t.Helper()
	accounts := []address.Address{}
	for _, s := range signers {
		accounts = append(accounts, s.Address())
	}
	accounts = append(accounts, address.MustParse("SysvarRent111111111111111111111111111111111"))
	tx, err := transaction.New(transaction.CompiledMessage{
		Version: transaction.Legacy,
		Header: transaction.MessageHeader{
			NumSignerAccounts:            uint8(len(signers)),
			NumReadonlyNonSignerAccounts: 1,
		},
		StaticAccounts: accounts,
		LifetimeToken:  transaction.Blockhash{7},
		Instructions: []transaction.CompiledInstruction{
			{ProgramAddressIndex: uint8(len(signers)), AccountIndices: []uint8{0}, Data: []byte{1}},
		},
	})
	require.NoError(t, err)
	return tx
}

func TestSenderSigner(t *testing.T) {
	node := newMockNode(t)
	received := acceptTransactions(node)
	feePayer := newKeypairSigner(t, "fee payer")
	sender := NewSenderSigner(newTestLogger(t), feePayer, newTestClient(t, node, 0))
	assert.True(t, signer.IsTransactionSenderSigner(sender))
	assert.Equal(t, feePayer.Address(), sender.Address())

	txs := []*transaction.Transaction{
		newUnsignedTransaction(t, feePayer),
		newUnsignedTransaction(t, feePayer),
	}
	txs[1].Message.LifetimeToken[1] = 1

	signatures, err := sender.SignAndSendTransactions(context.Background(), txs)
	require.NoError(t, err)
	require.Len(t, signatures, 2)
	require.Len(t, *received, 2)
	for i, tx := range *received {
		id, err := tx.ID()
		assert.NoError(t, err)
		assert.Equal(t, id, signatures[i])
	}
	assert.NotEqual(t, signatures[0], signatures[1])
}

func TestSenderSignerPartiallySigned(t *testing.T) {
	node := newMockNode(t)
	received := acceptTransactions(node)
	feePayer := newKeypairSigner(t, "fee payer")
	cosigner := newKeypairSigner(t, "cosigner")
	sender := NewSenderSigner(newTestLogger(t), feePayer, newTestClient(t, node, 0))

	tx := newUnsignedTransaction(t, feePayer, cosigner)
	_, err := sender.SignAndSendTransactions(context.Background(), []*transaction.Transaction{tx})
	assert.ErrorIs(t, err, transaction.ErrMissingSignatures)
	assert.Empty(t, *received)
	assert.Equal(t, 0, node.callCount())

	signature, err := signer.SignAndSendTransaction(context.Background(), sender, []signer.TransactionSigner{cosigner}, tx)
	require.NoError(t, err)
	require.Len(t, *received, 1)
	assert.True(t, (*received)[0].IsFullySigned())
	id, err := (*received)[0].ID()
	require.NoError(t, err)
	assert.Equal(t, id, signature)
}
