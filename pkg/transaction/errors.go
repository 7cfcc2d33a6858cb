package transaction

import "errors"

var (
	// ErrUnexpectedSigner is returned when signing with a key which is not a required signer of the message.
	ErrUnexpectedSigner = errors.New("signer is not required by the transaction")
	// ErrMissingSignatures is returned when a transaction is expected to be fully signed but is not.
	ErrMissingSignatures = errors.New("transaction is missing signatures")
	// ErrInvalidHeader is returned when the message header is inconsistent with its accounts.
	ErrInvalidHeader = errors.New("invalid message header")
	// ErrUnsupportedVersion is returned for message versions other than legacy and 0.
	ErrUnsupportedVersion = errors.New("unsupported transaction version")
)
