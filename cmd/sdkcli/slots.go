package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/LiskHQ/sdk-core/pkg/rpc"
)

func getSlotsCommand() *cli.Command {
	return &cli.Command{
		Name:  "slots",
		Usage: "Slot related commands",
		Subcommands: []*cli.Command{
			{
				Name:  "watch",
				Usage: "Subscribe to slot notifications and log them",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "count",
						Usage: "Stop after the number of notifications. Zero watches until interrupted",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, logger, err := setup(c)
					if err != nil {
						return err
					}
					ctx, cancel := context.WithCancel(c.Context)
					defer cancel()
					signalChan := make(chan os.Signal, 1)
					signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
					defer signal.Stop(signalChan)
					go func() {
						select {
						case <-signalChan:
							logger.Info("Closing slot subscription with SIGTERM")
							cancel()
						case <-ctx.Done():
						}
					}()

					client := rpc.NewSubscriptionClient(logger, cfg.RPC.WSURL)
					sub, err := client.SlotNotifications(ctx)
					if err != nil {
						return err
					}
					defer sub.Close()
					limit := c.Int("count")
					for received := 0; limit <= 0 || received < limit; received++ {
						notification, err := sub.Next(ctx)
						if errors.Is(err, context.Canceled) {
							return nil
						}
						if err != nil {
							return err
						}
						logger.With("slot", notification.Slot).Infof("Received slot with parent %d and root %d", notification.Parent, notification.Root)
					}
					return nil
				},
			},
		},
	}
}
