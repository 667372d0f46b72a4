// Package config provides process-lifetime configuration loading for the
// wallet engine: network selection, store location, fee policy, derivation
// gap limits, encryption-at-rest policy, and logging.
package config

import (
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/chaincfg"
	"gopkg.in/yaml.v3"
)

// Config is the engine's immutable configuration, loaded once at process
// startup. Nothing in the core re-reads it mid-run.
type Config struct {
	Version    int              `yaml:"version"`
	Home       string           `yaml:"home"`
	Network    NetworkConfig    `yaml:"network"`
	Chain      ChainConfig      `yaml:"chain"`
	Fees       FeesConfig       `yaml:"fees"`
	Derivation DerivationConfig `yaml:"derivation"`
	Security   SecurityConfig   `yaml:"security"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`

	// Warnings accumulates non-fatal problems noticed while applying
	// environment overrides (e.g. a malformed chain endpoint); surfaced to
	// the CLI rather than failing startup outright.
	Warnings []string `yaml:"-"`
}

// NetworkConfig selects the Bitcoin network the engine derives keys and
// decodes/encodes addresses for.
type NetworkConfig struct {
	// Name is one of "mainnet", "testnet", "regtest".
	Name string `yaml:"name"`
}

// ChainConfig selects and configures the BlockChainIO backend.
type ChainConfig struct {
	// Backend is "fullnode" or "indexserver".
	Backend string `yaml:"backend"`

	FullNode    FullNodeConfig    `yaml:"full_node"`
	IndexServer IndexServerConfig `yaml:"index_server"`
}

// FullNodeConfig configures the rpcclient-backed BlockChainIO.
type FullNodeConfig struct {
	Host       string `yaml:"host"`
	User       string `yaml:"user"`
	Pass       string `yaml:"pass"`
	DisableTLS bool   `yaml:"disable_tls"`
}

// IndexServerConfig configures the HTTP-polling BlockChainIO.
type IndexServerConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	PollSeconds    int    `yaml:"poll_seconds"`
}

// FeesConfig holds the configured fee setting.
type FeesConfig struct {
	// FixedFeeSats is loaded from the file and the environment, but the
	// wallet does not read it: transactions always pay wallet.FixedFee.
	FixedFeeSats int64 `yaml:"fixed_fee_sats"`
}

// DerivationConfig controls address issuance and entropy strength.
type DerivationConfig struct {
	// AddressGap is loaded from the file but not read by the CLI or the
	// core; addresses are issued unconditionally on request.
	AddressGap int `yaml:"address_gap"`

	// EntropyClass is one of "low" (16 bytes/12 words), "recommended" (32
	// bytes/24 words), "paranoid" (64 bytes/48 words).
	EntropyClass string `yaml:"entropy_class"`
}

// SecurityConfig controls at-rest encryption and memory handling.
type SecurityConfig struct {
	// PlainStore disables at-rest entropy encryption; false unless the
	// operator explicitly opts out of the age/scrypt envelope.
	PlainStore bool `yaml:"plain_store"`
	MemoryLock bool `yaml:"memory_lock"`
}

// OutputConfig controls CLI output formatting only; the core ignores it.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	JSON  bool   `yaml:"json"`
}

// Load reads and unmarshals configuration from path, seeding unset fields
// from Defaults first so a partial YAML document is still valid.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is operator-supplied, not remote input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg as YAML to path, creating parent directories as needed.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Path returns the default config file path under an engine home directory.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// DefaultHome returns the default engine home directory, "~/.hdwallet".
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hdwallet"
	}
	return filepath.Join(home, ".hdwallet")
}

// StoreDir returns the per-wallet persistence directory under Home.
func (c *Config) StoreDir() string {
	return filepath.Join(c.Home, "wallet")
}

// NetworkParams maps Network.Name to the corresponding chaincfg.Params,
// defaulting to mainnet for an unrecognized value.
func (c *Config) NetworkParams() *chaincfg.Params {
	switch c.Network.Name {
	case "testnet":
		return &chaincfg.TestNet3Params
	case "regtest":
		return &chaincfg.RegressionNetParams
	default:
		return &chaincfg.MainNetParams
	}
}
