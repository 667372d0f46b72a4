package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerforge/hdwallet/internal/config"
)

func TestLoadSaveRoundTrip(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := config.Defaults()
	cfg.Network.Name = "testnet"
	cfg.Chain.FullNode.Host = "node.example.com:8332"
	cfg.Output.Verbose = true

	err := config.Save(cfg, path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)

	loaded, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Version, loaded.Version)
	assert.Equal(t, cfg.Network.Name, loaded.Network.Name)
	assert.Equal(t, cfg.Chain.FullNode.Host, loaded.Chain.FullNode.Host)
	assert.Equal(t, cfg.Output.Verbose, loaded.Output.Verbose)
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "mainnet", cfg.Network.Name)
	assert.Equal(t, "fullnode", cfg.Chain.Backend)
	assert.Equal(t, int64(10000), cfg.Fees.FixedFeeSats)
	assert.Equal(t, "recommended", cfg.Derivation.EntropyClass)
	assert.Equal(t, 20, cfg.Derivation.AddressGap)
	assert.False(t, cfg.Security.PlainStore)
	assert.True(t, cfg.Security.MemoryLock)
	assert.Equal(t, "auto", cfg.Output.DefaultFormat)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadFileNotFound(t *testing.T) {
	t.Parallel()
	_, err := config.Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(path, []byte("invalid: yaml: content: ["), 0o600)
	require.NoError(t, err)

	_, err = config.Load(path)
	assert.Error(t, err)
}

func TestSaveCreatesDirectory(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := config.Defaults()
	err := config.Save(cfg, path)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestConfigPath(t *testing.T) {
	t.Parallel()
	path := config.Path("/home/user/.hdwallet")
	assert.Equal(t, "/home/user/.hdwallet/config.yaml", path)
}

func TestDefaultHome(t *testing.T) {
	t.Parallel()
	home := config.DefaultHome()
	assert.Contains(t, home, ".hdwallet")
}

func TestStoreDir(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.Home = "/srv/hdwallet"
	assert.Equal(t, "/srv/hdwallet/wallet", cfg.StoreDir())
}
