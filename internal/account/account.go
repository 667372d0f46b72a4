// Package account implements one ScriptType's worth of wallet state: the
// account extended key, its external/internal chain derivation counters,
// the append-only pubkey and address histories, and the UTXO set owned by
// that script type.
package account

import (
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"

	"github.com/ledgerforge/hdwallet/internal/keyfactory"
	"github.com/ledgerforge/hdwallet/internal/scripttype"
	"github.com/ledgerforge/hdwallet/internal/store"
	"github.com/ledgerforge/hdwallet/internal/walletmodel"
	walleterr "github.com/ledgerforge/hdwallet/pkg/errors"
)

// externalChainIndex and internalChainIndex are the BIP32 chain-level
// indices below the account key: m/.../0/* for receiving, m/.../1/* for
// change, per BIP44's external/internal convention.
const (
	externalChainIndex = 0
	internalChainIndex = 1
)

// Account tracks one script type's derivation state and owned coins. All
// exported methods are safe for concurrent use; callers normally reach an
// Account only while the owning WalletLibrary's lock is held, but Account's
// own mutex makes it independently safe.
type Account struct {
	scriptType scripttype.ScriptType
	network    *chaincfg.Params
	store      *store.Store

	accountKey  *hdkeychain.ExtendedKey
	externalKey *hdkeychain.ExtendedKey
	internalKey *hdkeychain.ExtendedKey

	mu sync.Mutex

	externalIndex uint32
	internalIndex uint32

	externalPubkeys [][]byte
	internalPubkeys [][]byte
	addresses       []string

	utxos map[wire.OutPoint]walletmodel.Utxo

	// pubkeyHashIndex maps a script_pubkey's hex encoding to the KeyPath
	// that produced it, so the UTXO tracker can recognize incoming outputs
	// without re-deriving every issued key.
	pubkeyHashIndex map[string]walletmodel.KeyPath
}

// New derives the account-root key for scriptType from master and builds an
// empty Account. Fails KeyDerivation only on the astronomically rare BIP32
// forbidden-child outcome.
func New(master *hdkeychain.ExtendedKey, scriptType scripttype.ScriptType, network *chaincfg.Params, st *store.Store) (*Account, error) {
	accountKey, err := keyfactory.AccountRootPath(master, scriptType, keyfactory.CoinType(network))
	if err != nil {
		return nil, err
	}
	externalKey, err := keyfactory.PrivateChild(accountKey, externalChainIndex)
	if err != nil {
		return nil, err
	}
	internalKey, err := keyfactory.PrivateChild(accountKey, internalChainIndex)
	if err != nil {
		return nil, err
	}

	return &Account{
		scriptType:      scriptType,
		network:         network,
		store:           st,
		accountKey:      accountKey,
		externalKey:     externalKey,
		internalKey:     internalKey,
		utxos:           map[wire.OutPoint]walletmodel.Utxo{},
		pubkeyHashIndex: map[string]walletmodel.KeyPath{},
	}, nil
}

// ScriptType returns the script type this account derives addresses for.
func (a *Account) ScriptType() scripttype.ScriptType {
	return a.scriptType
}

// Restore rehydrates an Account's in-memory state from Store on wallet
// reopen: pubkey histories, address list, and UTXO set.
func (a *Account) Restore() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	extPks, err := a.store.ListPubkeys(a.scriptType, walletmodel.External)
	if err != nil {
		return err
	}
	intPks, err := a.store.ListPubkeys(a.scriptType, walletmodel.Internal)
	if err != nil {
		return err
	}
	a.externalPubkeys = extPks
	a.internalPubkeys = intPks
	a.externalIndex = uint32(len(extPks))
	// internalIndex tracks the *next* pre-increment value; since
	// NextInternalPubkey increments before deriving, after n calls the
	// counter sits at n while the vector also holds n entries.
	a.internalIndex = uint32(len(intPks))

	a.addresses = a.store.ListAddresses(a.scriptType)

	utxos, err := a.store.ListUTXOs()
	if err != nil {
		return err
	}
	for _, u := range utxos {
		if u.ScriptType != a.scriptType {
			continue
		}
		a.utxos[u.Outpoint] = u
	}

	for i, pk := range a.externalPubkeys {
		a.indexPubkeyLocked(walletmodel.External, uint32(i), pk)
	}
	for i, pk := range a.internalPubkeys {
		// Reconstructing the reverse registry must mirror the same
		// off-by-one the derivation used: entry i was derived at chain
		// index i+1.
		a.indexPubkeyLocked(walletmodel.Internal, uint32(i), pk)
	}
	return nil
}

func (a *Account) indexPubkeyLocked(chain walletmodel.AddressChain, index uint32, pubKey []byte) {
	_, script, err := scripttype.Address(a.scriptType, pubKey, a.network)
	if err != nil {
		return
	}
	a.pubkeyHashIndex[string(script)] = walletmodel.KeyPath{Chain: chain, Index: index}
}

// NextExternalPubkey derives the next receiving-chain public key, persists
// it, and advances the external counter after deriving.
func (a *Account) NextExternalPubkey() ([]byte, walletmodel.KeyPath, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	index := a.externalIndex
	child, err := keyfactory.PrivateChild(a.externalKey, index)
	if err != nil {
		return nil, walletmodel.KeyPath{}, err
	}
	pub, err := child.ECPubKey()
	if err != nil {
		return nil, walletmodel.KeyPath{}, walleterr.Wrap(walleterr.ErrKeyDerivation, "external pubkey at index %d", index)
	}
	pubKey := pub.SerializeCompressed()

	if err := a.store.PutPubkey(a.scriptType, walletmodel.External, index, pubKey); err != nil {
		return nil, walletmodel.KeyPath{}, err
	}
	a.externalPubkeys = append(a.externalPubkeys, pubKey)
	a.indexPubkeyLocked(walletmodel.External, index, pubKey)
	a.externalIndex++

	return pubKey, walletmodel.KeyPath{Chain: walletmodel.External, Index: index}, nil
}

// NextInternalPubkey derives the next change-chain public key.
//
// Preserved quirk: the internal counter increments *before* derivation, so
// the key persisted under index i is actually derived at m/1/(i+1), one
// ahead of what the index would suggest. NextExternalPubkey does not share
// this behavior.
func (a *Account) NextInternalPubkey() ([]byte, walletmodel.KeyPath, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	index := a.internalIndex
	a.internalIndex++
	derivationIndex := a.internalIndex

	child, err := keyfactory.PrivateChild(a.internalKey, derivationIndex)
	if err != nil {
		return nil, walletmodel.KeyPath{}, err
	}
	pub, err := child.ECPubKey()
	if err != nil {
		return nil, walletmodel.KeyPath{}, walleterr.Wrap(walleterr.ErrKeyDerivation, "internal pubkey at index %d", derivationIndex)
	}
	pubKey := pub.SerializeCompressed()

	if err := a.store.PutPubkey(a.scriptType, walletmodel.Internal, index, pubKey); err != nil {
		return nil, walletmodel.KeyPath{}, err
	}
	a.internalPubkeys = append(a.internalPubkeys, pubKey)
	a.indexPubkeyLocked(walletmodel.Internal, index, pubKey)

	return pubKey, walletmodel.KeyPath{Chain: walletmodel.Internal, Index: index}, nil
}

// NewAddress issues the next receiving address for this script type.
func (a *Account) NewAddress() (string, error) {
	pubKey, _, err := a.NextExternalPubkey()
	if err != nil {
		return "", err
	}
	return a.formatAndStore(pubKey)
}

// NewChangeAddress issues the next change address for this script type.
func (a *Account) NewChangeAddress() (string, error) {
	pubKey, _, err := a.NextInternalPubkey()
	if err != nil {
		return "", err
	}
	return a.formatAndStore(pubKey)
}

func (a *Account) formatAndStore(pubKey []byte) (string, error) {
	address, _, err := scripttype.Address(a.scriptType, pubKey, a.network)
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	a.addresses = append(a.addresses, address)
	a.mu.Unlock()

	if err := a.store.PutAddress(a.scriptType, address); err != nil {
		return "", err
	}
	return address, nil
}

// Addresses returns the issue-order address list for this script type.
func (a *Account) Addresses() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.addresses...)
}

// GrabUTXO records a newly observed UTXO owned by this account.
func (a *Account) GrabUTXO(u walletmodel.Utxo) error {
	a.mu.Lock()
	a.utxos[u.Outpoint] = u
	a.mu.Unlock()
	return a.store.PutUTXO(u)
}

// DropUTXO removes a spent UTXO, if tracked by this account.
func (a *Account) DropUTXO(op wire.OutPoint) error {
	a.mu.Lock()
	_, ok := a.utxos[op]
	delete(a.utxos, op)
	a.mu.Unlock()
	if !ok {
		return nil
	}
	return a.store.DeleteUTXO(op)
}

// UTXOs returns a snapshot of every UTXO currently owned by this account.
func (a *Account) UTXOs() []walletmodel.Utxo {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]walletmodel.Utxo, 0, len(a.utxos))
	for _, u := range a.utxos {
		out = append(out, u)
	}
	return out
}

// MatchScriptPubKey looks up the KeyPath that issued scriptPubKey, if any,
// used by the UTXO tracker to recognize incoming payments.
func (a *Account) MatchScriptPubKey(scriptPubKey []byte) (walletmodel.KeyPath, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	path, ok := a.pubkeyHashIndex[string(scriptPubKey)]
	return path, ok
}

// SignFor re-derives the private key at path from the account key and
// produces a low-S ECDSA signature over sighash.
func (a *Account) SignFor(path walletmodel.KeyPath, sighash [32]byte) (*ecdsa.Signature, error) {
	a.mu.Lock()
	chainKey := a.externalKey
	if path.Chain == walletmodel.Internal {
		chainKey = a.internalKey
	}
	a.mu.Unlock()

	derivationIndex := path.Index
	if path.Chain == walletmodel.Internal {
		// Mirrors the persisted-vs-derived offset in NextInternalPubkey:
		// signing must re-derive the same key that was actually handed out.
		derivationIndex = path.Index + 1
	}

	child, err := keyfactory.PrivateChild(chainKey, derivationIndex)
	if err != nil {
		return nil, err
	}
	priv, err := child.ECPrivKey()
	if err != nil {
		return nil, walleterr.Wrap(walleterr.ErrSigningError, "deriving private key for signing")
	}

	return ecdsa.Sign(priv, sighash[:]), nil
}

// PubKeyFor returns the compressed public key at path, re-derived from the
// account key (used by script construction when only the path is known).
func (a *Account) PubKeyFor(path walletmodel.KeyPath) (*btcec.PublicKey, error) {
	a.mu.Lock()
	chainKey := a.externalKey
	if path.Chain == walletmodel.Internal {
		chainKey = a.internalKey
	}
	a.mu.Unlock()

	derivationIndex := path.Index
	if path.Chain == walletmodel.Internal {
		derivationIndex = path.Index + 1
	}

	child, err := keyfactory.PrivateChild(chainKey, derivationIndex)
	if err != nil {
		return nil, err
	}
	return child.ECPubKey()
}
