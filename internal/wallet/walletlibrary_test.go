package wallet_test

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerforge/hdwallet/internal/keyfactory"
	"github.com/ledgerforge/hdwallet/internal/scripttype"
	"github.com/ledgerforge/hdwallet/internal/wallet"
	"github.com/ledgerforge/hdwallet/internal/walletmodel"
	walleterr "github.com/ledgerforge/hdwallet/pkg/errors"
)

// fakeChain is an in-memory BlockChainIO: heights map to hand-assembled
// blocks, and broadcast transactions are recorded but not auto-mined, so
// tests control exactly when a send is confirmed.
type fakeChain struct {
	blocks     map[uint32]*wire.MsgBlock
	tip        uint32
	broadcasts []*wire.MsgTx
}

func newFakeChain() *fakeChain {
	return &fakeChain{blocks: map[uint32]*wire.MsgBlock{}}
}

func (f *fakeChain) GetBlockCount(context.Context) (uint32, error) { return f.tip, nil }

func (f *fakeChain) GetBlockHash(_ context.Context, height uint32) (chainhash.Hash, error) {
	var h chainhash.Hash
	h[0] = byte(height)
	h[1] = byte(height >> 8)
	return h, nil
}

func (f *fakeChain) GetBlock(_ context.Context, hash chainhash.Hash) (*wire.MsgBlock, error) {
	height := uint32(hash[0]) | uint32(hash[1])<<8
	return f.blocks[height], nil
}

func (f *fakeChain) SendRawTransaction(_ context.Context, tx *wire.MsgTx) (chainhash.Hash, error) {
	f.broadcasts = append(f.broadcasts, tx)
	return tx.TxHash(), nil
}

// mineBlock appends a block containing txs at the next height.
func (f *fakeChain) mineBlock(txs ...*wire.MsgTx) {
	f.tip++
	f.blocks[f.tip] = &wire.MsgBlock{Transactions: txs}
}

func fundingTx(t *testing.T, address string, amount int64) *wire.MsgTx {
	t.Helper()
	addr, err := btcutil.DecodeAddress(address, &chaincfg.RegressionNetParams)
	require.NoError(t, err)
	script, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: 0}, nil, nil))
	tx.AddTxOut(wire.NewTxOut(amount, script))
	return tx
}

func newTestWallet(t *testing.T, chain *fakeChain) *wallet.WalletLibrary {
	t.Helper()
	wl, _ := newTestWalletInDir(t, chain, t.TempDir())
	return wl
}

// newTestWalletInDir creates a wallet rooted at dir and returns it alongside
// the Config used, so callers can reopen or recover against the same
// directory/chain/salt.
func newTestWalletInDir(t *testing.T, chain *fakeChain, dir string) (*wallet.WalletLibrary, wallet.Config) {
	t.Helper()
	cfg := wallet.Config{
		Network:      &chaincfg.RegressionNetParams,
		Dir:          dir,
		Password:     "pw",
		Salt:         "test",
		Chain:        chain,
		EntropyClass: keyfactory.Low,
		Debug:        true,
	}
	wl, err := wallet.Create(cfg)
	require.NoError(t, err)
	return wl, cfg
}

func TestSanityFundAndSync(t *testing.T) {
	t.Parallel()
	chain := newFakeChain()
	wl := newTestWallet(t, chain)

	addr, err := wl.NewAddress(scripttype.P2WKH)
	require.NoError(t, err)

	chain.mineBlock(fundingTx(t, addr, 100_000_000))
	require.NoError(t, wl.SyncWithTip(context.Background()))

	assert.Equal(t, uint64(100_000_000), wl.WalletBalance())
}

func TestBasicSpendProducesChangeAndFee(t *testing.T) {
	t.Parallel()
	chain := newFakeChain()
	wl := newTestWallet(t, chain)

	addr, err := wl.NewAddress(scripttype.P2WKH)
	require.NoError(t, err)
	chain.mineBlock(fundingTx(t, addr, 200_000_000))
	require.NoError(t, wl.SyncWithTip(context.Background()))
	require.Equal(t, uint64(200_000_000), wl.WalletBalance())

	destAddr, err := wl.NewAddress(scripttype.P2WKH)
	require.NoError(t, err)

	tx, _, err := wl.SendCoins(context.Background(), destAddr, 150_000_000, false, true)
	require.NoError(t, err)
	require.Len(t, tx.TxOut, 2)

	var sum int64
	for _, out := range tx.TxOut {
		sum += out.Value
	}
	assert.Equal(t, int64(200_000_000-10_000), sum)

	chain.mineBlock(tx)
	require.NoError(t, wl.SyncWithTip(context.Background()))
	// destAddr belongs to this wallet, so both the payment and the change
	// come back as UTXOs: only the fee leaves the balance.
	assert.Equal(t, uint64(200_000_000-10_000), wl.WalletBalance())

	var foundChange bool
	for _, u := range wl.GetUTXOList() {
		if u.Value == 200_000_000-150_000_000-10_000 {
			foundChange = true
		}
	}
	assert.True(t, foundChange)
}

func TestLockExclusivityAllowsFourthAfterRelease(t *testing.T) {
	t.Parallel()
	chain := newFakeChain()
	wl := newTestWallet(t, chain)

	for i := 0; i < 6; i++ {
		addr, err := wl.NewAddress(scripttype.P2WKH)
		require.NoError(t, err)
		chain.mineBlock(fundingTx(t, addr, 100_000_000))
	}
	require.NoError(t, wl.SyncWithTip(context.Background()))
	require.Equal(t, uint64(600_000_000), wl.WalletBalance())

	destAddr, err := wl.NewAddress(scripttype.P2WKH)
	require.NoError(t, err)

	var lastLockID walletmodel.LockID
	for i := 0; i < 3; i++ {
		_, lockID, err := wl.SendCoins(context.Background(), destAddr, 200_000_000-10_000, true, true)
		require.NoError(t, err)
		lastLockID = lockID
	}
	require.NotEqual(t, walletmodel.NoLock, lastLockID)

	// release the third lock, freeing its coins for a fourth send
	require.NoError(t, wl.UnlockCoins(lastLockID))

	_, _, err = wl.SendCoins(context.Background(), destAddr, 200_000_000-10_000, true, true)
	assert.NoError(t, err)
}

func TestLockExhaustionFailsFourthSend(t *testing.T) {
	t.Parallel()
	chain := newFakeChain()
	wl := newTestWallet(t, chain)

	for i := 0; i < 6; i++ {
		addr, err := wl.NewAddress(scripttype.P2WKH)
		require.NoError(t, err)
		chain.mineBlock(fundingTx(t, addr, 100_000_000))
	}
	require.NoError(t, wl.SyncWithTip(context.Background()))

	destAddr, err := wl.NewAddress(scripttype.P2WKH)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, _, err := wl.SendCoins(context.Background(), destAddr, 200_000_000-10_000, true, true)
		require.NoError(t, err)
	}

	_, _, err = wl.SendCoins(context.Background(), destAddr, 200_000_000-10_000, false, true)
	require.Error(t, err)
	assert.True(t, walleterr.Is(err, walleterr.ErrNoCoinsAvailable) || walleterr.Is(err, walleterr.ErrInsufficientFunds))
}

// TestPersistenceRoundTripViaDecrypt covers fund -> close -> reopen -> fund
// again: a wallet.Decrypt of a closed wallet's directory must rehydrate its
// balance, synced height, and addresses exactly, and stay usable afterward.
func TestPersistenceRoundTripViaDecrypt(t *testing.T) {
	t.Parallel()
	chain := newFakeChain()
	dir := t.TempDir()

	wl, cfg := newTestWalletInDir(t, chain, dir)
	addr, err := wl.NewAddress(scripttype.P2WKH)
	require.NoError(t, err)
	chain.mineBlock(fundingTx(t, addr, 100_000_000))
	require.NoError(t, wl.SyncWithTip(context.Background()))
	require.Equal(t, uint64(100_000_000), wl.WalletBalance())

	reopened, err := wallet.Decrypt(cfg)
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000_000), reopened.WalletBalance())
	assert.Equal(t, wl.GetFullAddressList(), reopened.GetFullAddressList())

	// syncing again against the same (already-applied) tip is a no-op
	require.NoError(t, reopened.SyncWithTip(context.Background()))
	assert.Equal(t, uint64(100_000_000), reopened.WalletBalance())

	addr2, err := reopened.NewAddress(scripttype.P2WKH)
	require.NoError(t, err)
	chain.mineBlock(fundingTx(t, addr2, 50_000_000))
	require.NoError(t, reopened.SyncWithTip(context.Background()))
	assert.Equal(t, uint64(150_000_000), reopened.WalletBalance())
}

// TestRecoveryRoundTripViaMnemonic covers export mnemonic -> rebuild from
// words into a fresh directory -> re-sync the same chain: the recovered
// wallet must derive the same first address and pick up the same balance.
func TestRecoveryRoundTripViaMnemonic(t *testing.T) {
	t.Parallel()
	chain := newFakeChain()
	original, cfg := newTestWalletInDir(t, chain, t.TempDir())

	addr, err := original.NewAddress(scripttype.P2WKH)
	require.NoError(t, err)
	words := original.Mnemonic()

	chain.mineBlock(fundingTx(t, addr, 75_000_000))
	require.NoError(t, original.SyncWithTip(context.Background()))
	require.Equal(t, uint64(75_000_000), original.WalletBalance())

	recoverCfg := cfg
	recoverCfg.Dir = t.TempDir()
	recovered, err := wallet.RecoverFromMnemonic(recoverCfg, words)
	require.NoError(t, err)

	recoveredAddr, err := recovered.NewAddress(scripttype.P2WKH)
	require.NoError(t, err)
	require.Equal(t, addr, recoveredAddr, "recovered wallet must re-derive the same first address")

	require.NoError(t, recovered.SyncWithTip(context.Background()))
	assert.Equal(t, uint64(75_000_000), recovered.WalletBalance())
}
