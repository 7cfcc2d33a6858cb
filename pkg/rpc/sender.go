package rpc

import (
	"context"
	"fmt"

	"github.com/LiskHQ/sdk-core/pkg/address"
	"github.com/LiskHQ/sdk-core/pkg/crypto"
	"github.com/LiskHQ/sdk-core/pkg/log"
	"github.com/LiskHQ/sdk-core/pkg/signer"
	"github.com/LiskHQ/sdk-core/pkg/transaction"
)

// SenderSigner signs with a key pair and submits through a Client.
type SenderSigner struct {
	logger log.Logger
	signer *signer.KeypairSigner
	client *Client
}

var _ signer.TransactionSenderSigner = (*SenderSigner)(nil)

func NewSenderSigner(logger log.Logger, keypairSigner *signer.KeypairSigner, client *Client) *SenderSigner {
	return &SenderSigner{
		logger: logger,
		signer: keypairSigner,
		client: client,
	}
}

func (s *SenderSigner) Address() address.Address {
	return s.signer.Address()
}

// SignAndSendTransactions signs all transactions, then submits them in order.
// Nothing is submitted if any transaction cannot be signed or is not fully signed afterwards.
func (s *SenderSigner) SignAndSendTransactions(ctx context.Context, transactions []*transaction.Transaction) ([]crypto.Signature, error) {
	signed, err := s.signer.SignTransactions(ctx, transactions)
	if err != nil {
		return nil, err
	}
	wires := make([][]byte, len(signed))
	for i, tx := range signed {
		wire, err := tx.WireBytes()
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		wires[i] = wire
	}
	signatures := make([]crypto.Signature, len(wires))
	for i, wire := range wires {
		signature, err := s.client.SendTransaction(ctx, wire)
		if err != nil {
			return nil, fmt.Errorf("sending transaction %d: %w", i, err)
		}
		s.logger.Infof("Sent transaction %s", signature)
		signatures[i] = signature
	}
	return signatures, nil
}
