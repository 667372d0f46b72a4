package keyfactory_test

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerforge/hdwallet/internal/keyfactory"
	"github.com/ledgerforge/hdwallet/internal/scripttype"
)

func TestNewMasterDebugIsDeterministic(t *testing.T) {
	t.Parallel()

	master1, m1, entropy1, err := keyfactory.NewMaster(keyfactory.Low, &chaincfg.TestNet3Params, "", "sync-test", true)
	require.NoError(t, err)
	master2, m2, entropy2, err := keyfactory.NewMaster(keyfactory.Low, &chaincfg.TestNet3Params, "", "sync-test", true)
	require.NoError(t, err)

	assert.Equal(t, entropy1, entropy2)
	assert.Equal(t, m1.String(), m2.String())
	assert.Equal(t, master1.String(), master2.String())
}

func TestNewMasterEntropyClasses(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		class     keyfactory.EntropyClass
		wordCount int
	}{
		{keyfactory.Low, 12},
		{keyfactory.Recommended, 24},
		{keyfactory.Paranoid, 48},
	} {
		_, m, entropy, err := keyfactory.NewMaster(tc.class, &chaincfg.RegressionNetParams, "", "", true)
		require.NoError(t, err)
		assert.Len(t, entropy, int(tc.class))
		assert.Equal(t, tc.wordCount, m.WordCount())
	}
}

func TestDecryptReproducesMaster(t *testing.T) {
	t.Parallel()

	master, _, entropy, err := keyfactory.NewMaster(keyfactory.Recommended, &chaincfg.TestNet3Params, "", "saltvalue", true)
	require.NoError(t, err)

	rebuilt, _, err := keyfactory.Decrypt(entropy, &chaincfg.TestNet3Params, "", "saltvalue")
	require.NoError(t, err)

	assert.Equal(t, master.String(), rebuilt.String())
}

func TestRecoverFromMnemonicMatchesOriginal(t *testing.T) {
	t.Parallel()

	master, m, _, err := keyfactory.NewMaster(keyfactory.Low, &chaincfg.TestNet3Params, "", "saltvalue", true)
	require.NoError(t, err)

	recovered, err := keyfactory.Recover(m, &chaincfg.TestNet3Params, "saltvalue")
	require.NoError(t, err)

	assert.Equal(t, master.String(), recovered.String())
}

func TestAccountRootPathDistinctPerScriptType(t *testing.T) {
	t.Parallel()

	master, _, _, err := keyfactory.NewMaster(keyfactory.Low, &chaincfg.TestNet3Params, "", "", true)
	require.NoError(t, err)

	coinType := keyfactory.CoinType(&chaincfg.TestNet3Params)
	assert.Equal(t, uint32(1), coinType)

	seen := map[string]bool{}
	for _, st := range scripttype.All {
		acct, err := keyfactory.AccountRootPath(master, st, coinType)
		require.NoError(t, err)
		s := acct.String()
		assert.False(t, seen[s], "account root key collided across script types")
		seen[s] = true
	}
}

func TestPublicChildRejectsHardenedIndex(t *testing.T) {
	t.Parallel()

	master, _, _, err := keyfactory.NewMaster(keyfactory.Low, &chaincfg.TestNet3Params, "", "", true)
	require.NoError(t, err)
	pub, err := keyfactory.ExtendedPublicFromPrivate(master)
	require.NoError(t, err)

	_, err = keyfactory.PublicChild(pub, hdkeychain.HardenedKeyStart)
	require.Error(t, err)
}

func TestFirstFivePubkeysDeterministicAndDistinctPerChain(t *testing.T) {
	t.Parallel()

	master, _, _, err := keyfactory.NewMaster(keyfactory.Low, &chaincfg.TestNet3Params, "", "", true)
	require.NoError(t, err)
	master2, _, _, err := keyfactory.NewMaster(keyfactory.Low, &chaincfg.TestNet3Params, "", "", true)
	require.NoError(t, err)

	for _, st := range scripttype.All {
		account, err := keyfactory.AccountRootPath(master, st, keyfactory.CoinType(&chaincfg.TestNet3Params))
		require.NoError(t, err)
		account2, err := keyfactory.AccountRootPath(master2, st, keyfactory.CoinType(&chaincfg.TestNet3Params))
		require.NoError(t, err)
		assert.Equal(t, account.String(), account2.String())

		for _, chain := range []uint32{0, 1} {
			chainKey, err := keyfactory.PrivateChild(account, chain)
			require.NoError(t, err)

			seen := map[string]bool{}
			for idx := uint32(0); idx < 5; idx++ {
				child, err := keyfactory.PrivateChild(chainKey, idx)
				require.NoError(t, err)
				pub, err := child.ECPubKey()
				require.NoError(t, err)
				hexKey := pub.SerializeCompressed()
				assert.Len(t, hexKey, 33)
				assert.False(t, seen[string(hexKey)], "duplicate pubkey at chain %d index %d", chain, idx)
				seen[string(hexKey)] = true
			}
		}
	}
}
