// sdkcli is a CLI which manages keys, signs and submits transactions.
package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/LiskHQ/sdk-core/pkg/config"
	"github.com/LiskHQ/sdk-core/pkg/log"
)

var globalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to config in JSON or YAML",
	},
	&cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level (debug, info, warn, error, fatal)",
	},
	&cli.StringFlag{
		Name:  "rpc-url",
		Usage: "HTTP endpoint of the node",
	},
	&cli.StringFlag{
		Name:  "ws-url",
		Usage: "Websocket endpoint of the node",
	},
	&cli.StringFlag{
		Name:    "key-file",
		Aliases: []string{"k"},
		Usage:   "Path to encrypted key file",
	},
}

// loadConfig reads the config file if specified and applies the global flags on top of it.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.Merge(&config.Config{
		System: &config.SystemConfig{LogLevel: c.String("log-level")},
		RPC: &config.RPCConfig{
			HTTPURL: c.String("rpc-url"),
			WSURL:   c.String("ws-url"),
		},
		Keys: &config.KeysConfig{FromFile: c.String("key-file")},
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup returns the config and the logger of a command.
func setup(c *cli.Context) (*config.Config, log.Logger, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	logger, err := log.NewLogger(cfg.System.LoggerConfig())
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func main() {
	logger, err := log.NewDefaultProductionLogger()
	if err != nil {
		panic(err)
	}
	app := cli.App{
		Usage: "Key management and transaction signing tool",
		Flags: globalFlags,
		Commands: []*cli.Command{
			getKeysCommand(),
			getMessageCommand(),
			getTransactionCommand(),
			getLookupCommand(),
			getSlotsCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		logger.Errorf("Fail running application with %s", err)
		os.Exit(1)
	}
}
