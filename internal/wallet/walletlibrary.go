// Package wallet aggregates the engine's three per-script-type Accounts
// into one wallet: address issuance, balance, transaction building and
// signing, coin locking, and block/tx ingestion.
package wallet

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/ledgerforge/hdwallet/internal/account"
	"github.com/ledgerforge/hdwallet/internal/chainio"
	"github.com/ledgerforge/hdwallet/internal/coinlocks"
	"github.com/ledgerforge/hdwallet/internal/metrics"
	"github.com/ledgerforge/hdwallet/internal/mnemonic"
	"github.com/ledgerforge/hdwallet/internal/scripttype"
	"github.com/ledgerforge/hdwallet/internal/store"
	"github.com/ledgerforge/hdwallet/internal/utxotracker"
	"github.com/ledgerforge/hdwallet/internal/walletmodel"
	walleterr "github.com/ledgerforge/hdwallet/pkg/errors"
)

// WalletLibrary is the engine's single mutable-state owner: it holds one
// Account per script type, the Store, the coin-lock table, and the
// BlockChainIO sink transactions are published to. Public methods that read
// or change account and lock state acquire w.mu; SyncWithTip and PublishTx
// do not (SyncWithTip reaches that state through ProcessTx), and each
// Account also guards its own maps with its own mutex.
type WalletLibrary struct {
	mu sync.Mutex

	network  *chaincfg.Params
	store    *store.Store
	chain    chainio.BlockChainIO
	accounts map[scripttype.ScriptType]*account.Account
	locks    *coinlocks.CoinLocks
	mnemonic mnemonic.Mnemonic
	tracker  *utxotracker.Tracker
}

func newWalletLibrary(network *chaincfg.Params, st *store.Store, chain chainio.BlockChainIO, accounts map[scripttype.ScriptType]*account.Account, m mnemonic.Mnemonic) *WalletLibrary {
	wl := &WalletLibrary{
		network:  network,
		store:    st,
		chain:    chain,
		accounts: accounts,
		locks:    coinlocks.New(),
		mnemonic: m,
	}
	wl.tracker = utxotracker.New(chain, st, wl)
	return wl
}

// SyncWithTip fetches and applies every block between the wallet's
// last-synced height and the chain tip, in order.
func (w *WalletLibrary) SyncWithTip(ctx context.Context) error {
	return w.tracker.SyncWithTip(ctx)
}

func (w *WalletLibrary) accountFor(t scripttype.ScriptType) *account.Account {
	return w.accounts[t]
}

// Mnemonic returns the wallet's recovery phrase, callable immediately after
// creation or recovery.
func (w *WalletLibrary) Mnemonic() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mnemonic.String()
}

// NewAddress issues the next receiving address for scriptType.
func (w *WalletLibrary) NewAddress(scriptType scripttype.ScriptType) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	acct := w.accountFor(scriptType)
	if acct == nil {
		return "", walleterr.New("UNKNOWN_SCRIPT_TYPE", "no account for this script type")
	}
	return acct.NewAddress()
}

// orderedUTXOs flattens every account's UTXO set in a stable order
// (by ScriptType, then by outpoint string), giving coin selection a
// deterministic order. The order in which UTXOs arrived is not tracked.
func (w *WalletLibrary) orderedUTXOs() []walletmodel.Utxo {
	var out []walletmodel.Utxo
	for _, st := range scripttype.All {
		acct := w.accounts[st]
		if acct == nil {
			continue
		}
		out = append(out, acct.UTXOs()...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScriptType != out[j].ScriptType {
			return out[i].ScriptType < out[j].ScriptType
		}
		return out[i].Outpoint.String() < out[j].Outpoint.String()
	})
	return out
}

// GetUTXOList returns every UTXO owned by the wallet, excluding any
// currently reserved under an active lock group.
func (w *WalletLibrary) GetUTXOList() []walletmodel.Utxo {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []walletmodel.Utxo
	for _, u := range w.orderedUTXOs() {
		if w.locks.IsLocked(u.Outpoint) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// WalletBalance sums every unlocked UTXO's value.
func (w *WalletLibrary) WalletBalance() uint64 {
	var total uint64
	for _, u := range w.GetUTXOList() {
		total += u.Value
	}
	return total
}

// GetFullAddressList returns every issued address, P2PKH first, then
// P2SH-WPKH, then P2WKH.
func (w *WalletLibrary) GetFullAddressList() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []string
	for _, st := range scripttype.All {
		acct := w.accounts[st]
		if acct == nil {
			continue
		}
		out = append(out, acct.Addresses()...)
	}
	return out
}

// MakeTx spends the exact outpoints given (in caller order), failing
// UnknownOutpoint if any is foreign to this wallet or InsufficientFunds if
// their sum can't cover amount+FixedFee. A change output is added at a
// freshly issued internal P2WKH address iff inputs exceed amount+FixedFee.
func (w *WalletLibrary) MakeTx(outpoints []wire.OutPoint, destination string, amount uint64) (*wire.MsgTx, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	inputs := make([]walletmodel.Utxo, 0, len(outpoints))
	for _, op := range outpoints {
		u, ok := w.findUTXO(op)
		if !ok {
			return nil, walleterr.WithDetails(walleterr.ErrUnknownOutpoint, map[string]string{"outpoint": op.String()})
		}
		inputs = append(inputs, u)
	}

	return w.buildTx(inputs, destination, amount, scripttype.P2WKH)
}

func (w *WalletLibrary) findUTXO(op wire.OutPoint) (walletmodel.Utxo, bool) {
	for _, st := range scripttype.All {
		acct := w.accounts[st]
		if acct == nil {
			continue
		}
		for _, u := range acct.UTXOs() {
			if u.Outpoint == op {
				return u, true
			}
		}
	}
	return walletmodel.Utxo{}, false
}

// SendCoins selects unlocked coins (and, if witnessOnly, P2WKH-only ones) in
// orderedUTXOs order until their sum covers amount+FixedFee, builds and signs
// a transaction, submits it via BlockChainIO, and folds its effects into
// the wallet's own UTXO set immediately. lock=true reserves the chosen
// outpoints under a freshly minted LockID before broadcasting; lock=false
// returns the walletmodel.NoLock sentinel.
func (w *WalletLibrary) SendCoins(ctx context.Context, destination string, amount uint64, lock, witnessOnly bool) (*wire.MsgTx, walletmodel.LockID, error) {
	w.mu.Lock()

	inputs, err := w.selectCoins(amount, witnessOnly)
	if err != nil {
		w.mu.Unlock()
		return nil, walletmodel.NoLock, err
	}

	tx, err := w.buildTx(inputs, destination, amount, scripttype.P2WKH)
	if err != nil {
		w.mu.Unlock()
		return nil, walletmodel.NoLock, err
	}

	lockID := walletmodel.NoLock
	if lock {
		outpoints := make([]wire.OutPoint, len(inputs))
		for i, u := range inputs {
			outpoints[i] = u.Outpoint
		}
		lockID = w.locks.Allocate(outpoints)
		metrics.Global.RecordLockAllocated()
		if err := w.persistLocks(); err != nil {
			w.mu.Unlock()
			return nil, walletmodel.NoLock, err
		}
	}
	w.mu.Unlock()

	if _, err := w.PublishTx(ctx, tx); err != nil {
		return nil, lockID, err
	}
	if err := w.ProcessTx(tx); err != nil {
		return nil, lockID, err
	}

	return tx, lockID, nil
}

func (w *WalletLibrary) persistLocks() error {
	for _, g := range w.locks.Groups() {
		if err := w.store.PutLockGroup(g); err != nil {
			return err
		}
	}
	return nil
}

// UnlockCoins releases a reservation group; an unknown LockID is a no-op.
func (w *WalletLibrary) UnlockCoins(lockID walletmodel.LockID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.locks.Release(lockID)
	metrics.Global.RecordLockReleased()
	return w.store.DeleteLockGroup(lockID)
}

// PublishTx broadcasts tx via BlockChainIO.
func (w *WalletLibrary) PublishTx(ctx context.Context, tx *wire.MsgTx) (chainhash.Hash, error) {
	start := time.Now()
	hash, err := w.chain.SendRawTransaction(ctx, tx)
	metrics.Global.RecordChainCall(time.Since(start), err)
	return hash, err
}

// ProcessTx applies one transaction's effects to every account: removing
// any input's outpoint from whichever account owns it, and matching every
// output's script_pubkey against the issued-address registry, grabbing it
// into the owning account on a hit. Invoked by the UTXO tracker per block
// transaction and directly after a wallet-originated broadcast.
func (w *WalletLibrary) ProcessTx(tx *wire.MsgTx) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	txHash := tx.TxHash()

	for _, in := range tx.TxIn {
		for _, st := range scripttype.All {
			acct := w.accounts[st]
			if acct == nil {
				continue
			}
			if err := acct.DropUTXO(in.PreviousOutPoint); err != nil {
				return err
			}
		}
	}

	for i, out := range tx.TxOut {
		for _, st := range scripttype.All {
			acct := w.accounts[st]
			if acct == nil {
				continue
			}
			path, ok := acct.MatchScriptPubKey(out.PkScript)
			if !ok {
				continue
			}
			u := walletmodel.Utxo{
				Outpoint:     wire.OutPoint{Hash: txHash, Index: uint32(i)},
				Value:        uint64(out.Value),
				ScriptType:   st,
				Path:         path,
				ScriptPubKey: out.PkScript,
			}
			if err := acct.GrabUTXO(u); err != nil {
				return err
			}
			break
		}
	}

	return nil
}
