// Package walletmodel holds the domain types shared by the Account, Store,
// UTXO tracker, and WalletLibrary packages: key paths, UTXOs, and lock
// groups. Kept separate from those packages to avoid import cycles.
package walletmodel

import (
	"github.com/btcsuite/btcd/wire"

	"github.com/ledgerforge/hdwallet/internal/scripttype"
)

// AddressChain selects the external (receiving) or internal (change)
// branch within an account.
type AddressChain uint32

const (
	// External is the receiving-address branch (chain index 0).
	External AddressChain = 0
	// Internal is the change-address branch (chain index 1).
	Internal AddressChain = 1
)

func (c AddressChain) String() string {
	if c == Internal {
		return "internal"
	}
	return "external"
}

// KeyPath locates one derived key within an account: the branch and the
// monotonic index assigned when it was issued.
type KeyPath struct {
	Chain AddressChain
	Index uint32
}

// PubkeyRecord is one append-only entry in an account's derivation history.
type PubkeyRecord struct {
	ScriptType scripttype.ScriptType
	Path       KeyPath
	PubKey     []byte // compressed secp256k1 public key, 33 bytes
}

// Utxo is a single unspent transaction output owned by the wallet.
type Utxo struct {
	Outpoint     wire.OutPoint
	Value        uint64 // satoshis
	ScriptType   scripttype.ScriptType
	Path         KeyPath
	ScriptPubKey []byte
}

// LockID is an opaque, process-unique reservation identifier.
type LockID string

// NoLock is the sentinel LockID returned by SendCoins when the caller did
// not request a reservation; UnlockCoins treats it as a no-op.
const NoLock LockID = ""

// LockGroup is a named reservation over a set of outpoints.
type LockGroup struct {
	ID        LockID
	Outpoints []wire.OutPoint
}
