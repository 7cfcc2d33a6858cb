package main

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/LiskHQ/sdk-core/pkg/rpc"
	"github.com/LiskHQ/sdk-core/pkg/signer"
	"github.com/LiskHQ/sdk-core/pkg/transaction"
)

const (
	encodingBase64 = "base64"
	encodingHex    = "hex"
)

var encodingFlag = &cli.StringFlag{
	Name:  "encoding",
	Usage: "Encoding of the wire transaction (base64, hex)",
	Value: encodingBase64,
}

func decodeWire(encoding, val string) ([]byte, error) {
	switch encoding {
	case encodingBase64:
		return base64.StdEncoding.DecodeString(val)
	case encodingHex:
		return hex.DecodeString(val)
	default:
		return nil, fmt.Errorf("unknown encoding %s", encoding)
	}
}

func encodeWire(encoding string, data []byte) (string, error) {
	switch encoding {
	case encodingBase64:
		return base64.StdEncoding.EncodeToString(data), nil
	case encodingHex:
		return hex.EncodeToString(data), nil
	default:
		return "", fmt.Errorf("unknown encoding %s", encoding)
	}
}

func readTransaction(c *cli.Context) (*transaction.Transaction, error) {
	if c.Args().Len() != 1 {
		return nil, errors.New("must specify one encoded transaction")
	}
	wire, err := decodeWire(c.String("encoding"), c.Args().First())
	if err != nil {
		return nil, err
	}
	return transaction.Decode(wire)
}

func getTransactionCommand() *cli.Command {
	return &cli.Command{
		Name:  "tx",
		Usage: "Transaction related commands",
		Subcommands: []*cli.Command{
			{
				Name:      "inspect",
				Usage:     "Decode a wire transaction and print it in JSON",
				ArgsUsage: "<transaction>",
				Flags:     []cli.Flag{encodingFlag},
				Action: func(c *cli.Context) error {
					tx, err := readTransaction(c)
					if err != nil {
						return err
					}
					encoded, err := json.MarshalIndent(tx, "", "  ")
					if err != nil {
						return err
					}
					fmt.Println(string(encoded))
					return nil
				},
			},
			{
				Name:      "sign",
				Usage:     "Sign a wire transaction with the key file",
				ArgsUsage: "<transaction>",
				Flags:     []cli.Flag{passwordFlag, encodingFlag},
				Action: func(c *cli.Context) error {
					cfg, logger, err := setup(c)
					if err != nil {
						return err
					}
					tx, err := readTransaction(c)
					if err != nil {
						return err
					}
					keypairSigner, err := loadSigner(cfg.Keys.FromFile, c.String("password"))
					if err != nil {
						return err
					}
					signed, err := signer.SignTransaction(c.Context, []signer.TransactionSigner{keypairSigner}, tx)
					if err != nil {
						return err
					}
					if missing := signed.MissingSigners(); len(missing) > 0 {
						logger.Infof("Transaction still requires signatures of %v", missing)
					}
					encoded, err := signed.Encode()
					if err != nil {
						return err
					}
					output, err := encodeWire(c.String("encoding"), encoded)
					if err != nil {
						return err
					}
					fmt.Println(output)
					return nil
				},
			},
			{
				Name:      "send",
				Usage:     "Sign a wire transaction with the key file and send it to the node",
				ArgsUsage: "<transaction>",
				Flags: []cli.Flag{
					passwordFlag,
					encodingFlag,
					&cli.BoolFlag{
						Name:  "refresh-blockhash",
						Usage: "Replace the lifetime token with the latest blockhash. Existing signatures are dropped",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, logger, err := setup(c)
					if err != nil {
						return err
					}
					tx, err := readTransaction(c)
					if err != nil {
						return err
					}
					keypairSigner, err := loadSigner(cfg.Keys.FromFile, c.String("password"))
					if err != nil {
						return err
					}
					client, err := rpc.NewClient(logger, cfg.RPC.ClientConfig())
					if err != nil {
						return err
					}
					if c.Bool("refresh-blockhash") {
						latest, err := client.GetLatestBlockhash(c.Context)
						if err != nil {
							return err
						}
						logger.Infof("Using blockhash %s valid until block height %d", latest.Blockhash, latest.LastValidBlockHeight)
						msg := tx.Message.Copy()
						msg.LifetimeToken = latest.Blockhash
						tx, err = transaction.New(msg)
						if err != nil {
							return err
						}
					}
					sender := rpc.NewSenderSigner(logger, keypairSigner, client)
					signature, err := signer.SignAndSendTransaction(c.Context, sender, nil, tx)
					if err != nil {
						return err
					}
					fmt.Println(signature)
					return nil
				},
			},
		},
	}
}
