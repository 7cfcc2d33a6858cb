package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/LiskHQ/sdk-core/pkg/address"
	"github.com/LiskHQ/sdk-core/pkg/codec"
	"github.com/LiskHQ/sdk-core/pkg/crypto"
	"github.com/LiskHQ/sdk-core/pkg/signer"
)

var passwordFlag = &cli.StringFlag{
	Name:     "password",
	Usage:    "Password of the key file",
	EnvVars:  []string{"SDK_CORE_PASSWORD"},
	Required: true,
}

type keys struct {
	RecoveryPhrase string          `json:"recoveryPhrase,omitempty"`
	DerivationPath string          `json:"derivationPath,omitempty"`
	Address        address.Address `json:"address"`
	PublicKey      codec.Hex       `json:"publicKey"`
	KeyFile        string          `json:"keyFile"`
}

func (k *keys) String() string {
	val := `
	RecoveryPhrase: %s
	DerivationPath: %s
	Address: %s
	PublicKey: %s
	KeyFile: %s
	`
	return fmt.Sprintf(val, k.RecoveryPhrase, k.DerivationPath, k.Address, k.PublicKey, k.KeyFile)
}

func printKeys(k *keys, asJSON bool) error {
	if !asJSON {
		fmt.Println(k)
		return nil
	}
	encoded, err := json.MarshalIndent(k, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

// writeKeyFile stores keyFile at path. Existing files are kept unless overwrite is set.
func writeKeyFile(path string, keyFile *crypto.KeyFile, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("key file %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(keyFile, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, encoded, 0600)
}

func readKeyFile(path string) (*crypto.KeyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	keyFile := &crypto.KeyFile{}
	if err := json.Unmarshal(data, keyFile); err != nil {
		return nil, fmt.Errorf("invalid key file %s: %w", path, err)
	}
	return keyFile, nil
}

// loadSigner decrypts the key file at path into a signer.
func loadSigner(path, password string) (*signer.KeypairSigner, error) {
	keyFile, err := readKeyFile(path)
	if err != nil {
		return nil, err
	}
	keyPair, err := crypto.DecryptKeyPair(keyFile, password)
	if err != nil {
		return nil, err
	}
	keypairSigner, err := signer.NewKeypairSigner(keyPair)
	if err != nil {
		return nil, err
	}
	if keyFile.Address != "" && keyFile.Address != keypairSigner.Address().String() {
		return nil, fmt.Errorf("key file %s is for %s but decrypted key is for %s", path, keyFile.Address, keypairSigner.Address())
	}
	return keypairSigner, nil
}

func createKeys(recoveryPhrase, derivationPath, password string) (*keys, *crypto.KeyFile, error) {
	keyPair, err := crypto.DeriveKeyPair(recoveryPhrase, derivationPath)
	if err != nil {
		return nil, nil, err
	}
	addr, err := address.FromPublicKey(keyPair.PublicKey)
	if err != nil {
		return nil, nil, err
	}
	keyFile, err := crypto.EncryptKeyPair(keyPair, addr.String(), password)
	if err != nil {
		return nil, nil, err
	}
	return &keys{
		RecoveryPhrase: recoveryPhrase,
		DerivationPath: derivationPath,
		Address:        addr,
		PublicKey:      keyPair.PublicKey,
	}, keyFile, nil
}

func getKeysCommand() *cli.Command {
	jsonFlag := &cli.BoolFlag{
		Name:  "json",
		Usage: "Print in JSON format",
	}
	return &cli.Command{
		Name:  "keys",
		Usage: "Key related commands",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a new encrypted key file",
				Flags: []cli.Flag{
					passwordFlag,
					&cli.StringFlag{
						Name:  "recovery-phrase",
						Usage: "BIP-39 recovery phrase. A new one is generated if empty",
					},
					&cli.StringFlag{
						Name:  "derivation-path",
						Usage: "Derivation path of the key",
					},
					&cli.BoolFlag{
						Name:  "overwrite",
						Usage: "Overwrite the existing key file",
					},
					jsonFlag,
				},
				Action: func(c *cli.Context) error {
					cfg, logger, err := setup(c)
					if err != nil {
						return err
					}
					recoveryPhrase := c.String("recovery-phrase")
					if recoveryPhrase == "" {
						recoveryPhrase, err = crypto.NewRecoveryPhrase()
						if err != nil {
							return err
						}
					}
					derivationPath := cfg.Keys.DerivationPath
					if path := c.String("derivation-path"); path != "" {
						derivationPath = path
					}
					created, keyFile, err := createKeys(recoveryPhrase, derivationPath, c.String("password"))
					if err != nil {
						return err
					}
					if err := writeKeyFile(cfg.Keys.FromFile, keyFile, c.Bool("overwrite")); err != nil {
						return err
					}
					created.KeyFile = cfg.Keys.FromFile
					logger.Infof("Key file for %s is written to %s", created.Address, cfg.Keys.FromFile)
					return printKeys(created, c.Bool("json"))
				},
			},
			{
				Name:  "show",
				Usage: "Decrypt the key file and show its address",
				Flags: []cli.Flag{passwordFlag, jsonFlag},
				Action: func(c *cli.Context) error {
					cfg, _, err := setup(c)
					if err != nil {
						return err
					}
					keypairSigner, err := loadSigner(cfg.Keys.FromFile, c.String("password"))
					if err != nil {
						return err
					}
					return printKeys(&keys{
						Address:   keypairSigner.Address(),
						PublicKey: keypairSigner.KeyPair().PublicKey,
						KeyFile:   cfg.Keys.FromFile,
					}, c.Bool("json"))
				},
			},
		},
	}
}
