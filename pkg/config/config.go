// Package config provides the configuration of the SDK command line tools.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/LiskHQ/sdk-core/pkg/crypto"
	"github.com/LiskHQ/sdk-core/pkg/log"
	"github.com/LiskHQ/sdk-core/pkg/rpc"
)

var (
	logLevels         = []string{"debug", "info", "warn", "error", "fatal"}
	logFormats        = []string{"json", "console"}
	defaultHTTPURL    = "http://127.0.0.1:8899"
	defaultWSURL      = "ws://127.0.0.1:8900"
	defaultTimeoutSec = 30
	defaultMaxRetries = 2
)

type Config struct {
	System *SystemConfig `json:"system" yaml:"system"`
	RPC    *RPCConfig    `json:"rpc" yaml:"rpc"`
	Keys   *KeysConfig   `json:"keys" yaml:"keys"`
}

func intPtr(v int) *int {
	return &v
}

func contain(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}

// Load reads a config file. Files ending with .yml or .yaml are parsed as YAML, anything else as JSON.
// Defaults are inserted for missing values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		if err := yaml.UnmarshalStrict(data, config); err != nil {
			return nil, fmt.Errorf("invalid yaml config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("invalid json config %s: %w", path, err)
		}
	}
	if err := config.InsertDefault(); err != nil {
		return nil, err
	}
	return config, nil
}

// Default returns a config with every default inserted.
func Default() *Config {
	config := &Config{}
	if err := config.InsertDefault(); err != nil {
		panic(err)
	}
	return config
}

func (c *Config) InsertDefault() error {
	if c.System == nil {
		c.System = &SystemConfig{}
	}
	if err := c.System.InsertDefault(); err != nil {
		return err
	}
	if c.RPC == nil {
		c.RPC = &RPCConfig{}
	}
	if err := c.RPC.InsertDefault(); err != nil {
		return err
	}
	if c.Keys == nil {
		c.Keys = &KeysConfig{}
	}
	if err := c.Keys.InsertDefault(); err != nil {
		return err
	}
	return nil
}

// Merge overrides c with the non-empty values of config.
func (c *Config) Merge(config *Config) {
	if config.System != nil {
		c.System.Merge(config.System)
	}
	if config.RPC != nil {
		if c.RPC == nil {
			c.RPC = config.RPC
		} else {
			c.RPC.Merge(config.RPC)
		}
	}
	if config.Keys != nil {
		if c.Keys == nil {
			c.Keys = config.Keys
		} else {
			c.Keys.Merge(config.Keys)
		}
	}
}

func (c *Config) Validate() error {
	if err := c.System.Validate(); err != nil {
		return err
	}
	if err := c.RPC.Validate(); err != nil {
		return err
	}
	if err := c.Keys.Validate(); err != nil {
		return err
	}
	return nil
}

type SystemConfig struct {
	LogLevel  string `json:"logLevel" yaml:"logLevel"`
	LogFormat string `json:"logFormat" yaml:"logFormat"`
}

func (c *SystemConfig) InsertDefault() error {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}
	return nil
}

func (c *SystemConfig) Merge(config *SystemConfig) {
	if config.LogLevel != "" {
		c.LogLevel = config.LogLevel
	}
	if config.LogFormat != "" {
		c.LogFormat = config.LogFormat
	}
}

func (c SystemConfig) Validate() error {
	if !contain(logLevels, c.LogLevel) {
		return fmt.Errorf("log level %s is not allowed", c.LogLevel)
	}
	if !contain(logFormats, c.LogFormat) {
		return fmt.Errorf("log format %s is not allowed", c.LogFormat)
	}
	return nil
}

// LoggerConfig returns the options of the logger.
func (c SystemConfig) LoggerConfig() log.Config {
	return log.Config{
		Level:  c.LogLevel,
		Format: c.LogFormat,
	}
}

type RPCConfig struct {
	HTTPURL string `json:"httpURL" yaml:"httpURL"`
	WSURL   string `json:"wsURL" yaml:"wsURL"`
	// RateLimit is in requests per second. Zero disables it.
	RateLimit int `json:"rateLimit" yaml:"rateLimit"`
	// Timeout is in seconds.
	Timeout    int  `json:"timeout" yaml:"timeout"`
	MaxRetries *int `json:"maxRetries" yaml:"maxRetries"`
}

func (c *RPCConfig) InsertDefault() error {
	if c.HTTPURL == "" {
		c.HTTPURL = defaultHTTPURL
	}
	if c.WSURL == "" {
		c.WSURL = defaultWSURL
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeoutSec
	}
	if c.MaxRetries == nil {
		c.MaxRetries = intPtr(defaultMaxRetries)
	}
	return nil
}

func (c *RPCConfig) Merge(config *RPCConfig) {
	if config.HTTPURL != "" {
		c.HTTPURL = config.HTTPURL
	}
	if config.WSURL != "" {
		c.WSURL = config.WSURL
	}
	if config.RateLimit != 0 {
		c.RateLimit = config.RateLimit
	}
	if config.Timeout != 0 {
		c.Timeout = config.Timeout
	}
	if config.MaxRetries != nil {
		c.MaxRetries = config.MaxRetries
	}
}

func (c *RPCConfig) Validate() error {
	if err := validateURL(c.HTTPURL, "http", "https"); err != nil {
		return fmt.Errorf("invalid rpc httpURL: %w", err)
	}
	if err := validateURL(c.WSURL, "ws", "wss"); err != nil {
		return fmt.Errorf("invalid rpc wsURL: %w", err)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("invalid rate limit %d for RPC is specified", c.RateLimit)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %d for RPC is specified", c.Timeout)
	}
	if c.MaxRetries != nil && *c.MaxRetries < 0 {
		return fmt.Errorf("invalid max retries %d for RPC is specified", *c.MaxRetries)
	}
	return nil
}

// TimeoutDuration returns the timeout of a single request.
func (c RPCConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// GetMaxRetries returns the number of retries or the default.
func (c RPCConfig) GetMaxRetries() uint64 {
	if c.MaxRetries == nil {
		return uint64(defaultMaxRetries)
	}
	if *c.MaxRetries < 0 {
		return 0
	}
	return uint64(*c.MaxRetries)
}

// ClientConfig returns the options of the HTTP client.
func (c RPCConfig) ClientConfig() rpc.ClientConfig {
	return rpc.ClientConfig{
		URL:        c.HTTPURL,
		RateLimit:  c.RateLimit,
		Timeout:    c.TimeoutDuration(),
		MaxRetries: c.GetMaxRetries(),
	}
}

func validateURL(val string, schemes ...string) error {
	parsed, err := url.Parse(val)
	if err != nil {
		return err
	}
	if !contain(schemes, parsed.Scheme) {
		return fmt.Errorf("scheme of %s must be one of %v", val, schemes)
	}
	if parsed.Host == "" {
		return fmt.Errorf("host of %s cannot be empty", val)
	}
	return nil
}

type KeysConfig struct {
	FromFile       string `json:"fromFile" yaml:"fromFile"`
	DerivationPath string `json:"derivationPath" yaml:"derivationPath"`
}

func (c *KeysConfig) InsertDefault() error {
	if c.FromFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		c.FromFile = filepath.Join(home, ".sdk-core", "keys.json")
	}
	if c.DerivationPath == "" {
		c.DerivationPath = crypto.DefaultDerivationPath
	}
	return nil
}

func (c *KeysConfig) Merge(config *KeysConfig) {
	if config.FromFile != "" {
		c.FromFile = config.FromFile
	}
	if config.DerivationPath != "" {
		c.DerivationPath = config.DerivationPath
	}
}

func (c KeysConfig) Validate() error {
	if c.FromFile == "" {
		return errors.New("keys fromFile cannot be empty")
	}
	if _, err := crypto.ParseDerivationPath(c.DerivationPath); err != nil {
		return fmt.Errorf("keys derivationPath: %w", err)
	}
	return nil
}
