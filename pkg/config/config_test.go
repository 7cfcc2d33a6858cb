package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LiskHQ/sdk-core/pkg/crypto"
)

func TestLoadYAML(t *testing.T) {
	config, err := Load("./testdata/config.yml")
	require.NoError(t, err)
	assert.NoError(t, config.Validate())

	assert.Equal(t, "debug", config.System.LogLevel)
	assert.Equal(t, "json", config.System.LogFormat)
	assert.Equal(t, "https://api.devnet.example.com", config.RPC.HTTPURL)
	assert.Equal(t, "wss://api.devnet.example.com", config.RPC.WSURL)
	assert.Equal(t, 10, config.RPC.RateLimit)
	assert.Equal(t, defaultTimeoutSec, config.RPC.Timeout)
	// explicit zero is kept
	assert.Equal(t, uint64(0), config.RPC.GetMaxRetries())
	assert.Equal(t, "./keys.json", config.Keys.FromFile)
	assert.Equal(t, crypto.DefaultDerivationPath, config.Keys.DerivationPath)
}

func TestLoadJSON(t *testing.T) {
	config, err := Load("./testdata/config.json")
	require.NoError(t, err)
	assert.NoError(t, config.Validate())

	assert.Equal(t, "warn", config.System.LogLevel)
	assert.Equal(t, "console", config.System.LogFormat)
	assert.Equal(t, defaultWSURL, config.RPC.WSURL)
	assert.Equal(t, 5*time.Second, config.RPC.TimeoutDuration())
	assert.Equal(t, uint64(defaultMaxRetries), config.RPC.GetMaxRetries())
	assert.Equal(t, "m/44'/501'/1'/0'", config.Keys.DerivationPath)
	assert.Equal(t, "keys.json", filepath.Base(config.Keys.FromFile))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("./testdata/not_exist.yml")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load("./testdata/unknown_field.yml")
	assert.ErrorContains(t, err, "invalid yaml config")

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"system":`), 0600))
	_, err = Load(path)
	assert.ErrorContains(t, err, "invalid json config")
}

func TestDefault(t *testing.T) {
	config := Default()
	assert.NoError(t, config.Validate())
	assert.Equal(t, defaultHTTPURL, config.RPC.HTTPURL)
	assert.Equal(t, 0, config.RPC.RateLimit)

	clientConfig := config.RPC.ClientConfig()
	assert.Equal(t, defaultHTTPURL, clientConfig.URL)
	assert.Equal(t, 30*time.Second, clientConfig.Timeout)
	assert.Equal(t, uint64(defaultMaxRetries), clientConfig.MaxRetries)

	loggerConfig := config.System.LoggerConfig()
	assert.Equal(t, "info", loggerConfig.Level)
	assert.Equal(t, "console", loggerConfig.Format)
}

func TestMerge(t *testing.T) {
	config := Default()
	config.Merge(&Config{
		System: &SystemConfig{LogLevel: "error"},
		RPC:    &RPCConfig{WSURL: "ws://node:8900", MaxRetries: intPtr(5)},
		Keys:   &KeysConfig{FromFile: "/tmp/keys.json"},
	})
	assert.Equal(t, "error", config.System.LogLevel)
	assert.Equal(t, "console", config.System.LogFormat)
	assert.Equal(t, defaultHTTPURL, config.RPC.HTTPURL)
	assert.Equal(t, "ws://node:8900", config.RPC.WSURL)
	assert.Equal(t, uint64(5), config.RPC.GetMaxRetries())
	assert.Equal(t, "/tmp/keys.json", config.Keys.FromFile)
	assert.Equal(t, crypto.DefaultDerivationPath, config.Keys.DerivationPath)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		desc   string
		modify func(c *Config)
		errStr string
	}{
		{
			desc:   "invalid log level",
			modify: func(c *Config) { c.System.LogLevel = "trace" },
			errStr: "log level trace is not allowed",
		},
		{
			desc:   "invalid log format",
			modify: func(c *Config) { c.System.LogFormat = "xml" },
			errStr: "log format xml is not allowed",
		},
		{
			desc:   "http scheme",
			modify: func(c *Config) { c.RPC.HTTPURL = "ws://127.0.0.1:8899" },
			errStr: "invalid rpc httpURL",
		},
		{
			desc:   "ws without host",
			modify: func(c *Config) { c.RPC.WSURL = "ws://" },
			errStr: "cannot be empty",
		},
		{
			desc:   "negative rate limit",
			modify: func(c *Config) { c.RPC.RateLimit = -1 },
			errStr: "invalid rate limit -1",
		},
		{
			desc:   "negative timeout",
			modify: func(c *Config) { c.RPC.Timeout = -3 },
			errStr: "invalid timeout -3",
		},
		{
			desc:   "negative retries",
			modify: func(c *Config) { c.RPC.MaxRetries = intPtr(-1) },
			errStr: "invalid max retries -1",
		},
		{
			desc:   "empty key file",
			modify: func(c *Config) { c.Keys.FromFile = "" },
			errStr: "keys fromFile cannot be empty",
		},
		{
			desc:   "derivation path",
			modify: func(c *Config) { c.Keys.DerivationPath = "44'/501'" },
			errStr: "keys derivationPath: invalid derivation path",
		},
	}
	for _, c := range cases {
		t.Logf("Validating %s", c.desc)
		config := Default()
		c.modify(config)
		assert.ErrorContains(t, config.Validate(), c.errStr)
	}
}
