package main

import (
	"encoding/hex"
	"fmt"
	"math"

	"github.com/urfave/cli/v2"

	"github.com/LiskHQ/sdk-core/pkg/address"
	"github.com/LiskHQ/sdk-core/pkg/codec"
	"github.com/LiskHQ/sdk-core/pkg/transaction"
)

func toIndices(values []int) ([]uint8, error) {
	indices := make([]uint8, len(values))
	for i, v := range values {
		if v < 0 || v > math.MaxUint8 {
			return nil, fmt.Errorf("index %d is out of range of u8", v)
		}
		indices[i] = uint8(v)
	}
	return indices, nil
}

func getLookupCommand() *cli.Command {
	return &cli.Command{
		Name:  "lookup",
		Usage: "Address table lookup related commands",
		Subcommands: []*cli.Command{
			{
				Name:  "encode",
				Usage: "Encode an address table lookup and print it in hex",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "table",
						Usage:    "Address of the lookup table",
						Required: true,
					},
					&cli.IntSliceFlag{
						Name:  "writable",
						Usage: "Indices of the writable accounts",
					},
					&cli.IntSliceFlag{
						Name:  "readable",
						Usage: "Indices of the read-only accounts",
					},
				},
				Action: func(c *cli.Context) error {
					table, err := address.Parse(c.String("table"))
					if err != nil {
						return err
					}
					writable, err := toIndices(c.IntSlice("writable"))
					if err != nil {
						return err
					}
					readable, err := toIndices(c.IntSlice("readable"))
					if err != nil {
						return err
					}
					encoded, err := codec.Encode(transaction.AddressTableLookupEncoder(), transaction.AddressTableLookup{
						LookupTableAddress: table,
						WritableIndices:    writable,
						ReadableIndices:    readable,
					})
					if err != nil {
						return err
					}
					fmt.Println(hex.EncodeToString(encoded))
					return nil
				},
			},
		},
	}
}
