package main

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"
)

func parseMessages(args []string, isHex bool) ([][]byte, error) {
	if len(args) == 0 {
		return nil, errors.New("must specify at least one message to sign")
	}
	messages := make([][]byte, len(args))
	for i, arg := range args {
		if !isHex {
			messages[i] = []byte(arg)
			continue
		}
		decoded, err := hex.DecodeString(arg)
		if err != nil {
			return nil, fmt.Errorf("message %d is not a hex string: %w", i, err)
		}
		messages[i] = decoded
	}
	return messages, nil
}

func getMessageCommand() *cli.Command {
	return &cli.Command{
		Name:  "message",
		Usage: "Message related commands",
		Subcommands: []*cli.Command{
			{
				Name:      "sign",
				Usage:     "Sign arbitrary messages with the key file",
				ArgsUsage: "<message>...",
				Flags: []cli.Flag{
					passwordFlag,
					&cli.BoolFlag{
						Name:  "hex",
						Usage: "Messages are hex encoded",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, logger, err := setup(c)
					if err != nil {
						return err
					}
					messages, err := parseMessages(c.Args().Slice(), c.Bool("hex"))
					if err != nil {
						return err
					}
					keypairSigner, err := loadSigner(cfg.Keys.FromFile, c.String("password"))
					if err != nil {
						return err
					}
					signed, err := keypairSigner.SignMessages(c.Context, messages)
					if err != nil {
						return err
					}
					logger.Debugf("Signed %d messages with %s", len(signed), keypairSigner.Address())
					for _, s := range signed {
						fmt.Println(s.Signature)
					}
					return nil
				},
			},
		},
	}
}
