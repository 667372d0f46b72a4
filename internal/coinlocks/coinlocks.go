// Package coinlocks implements named reservation groups over outpoints, so a
// caller building one transaction can claim a set of UTXOs without a second
// in-flight spend double-selecting them.
package coinlocks

import (
	"sync"

	"github.com/btcsuite/btcd/wire"
	"github.com/google/uuid"

	"github.com/ledgerforge/hdwallet/internal/walletmodel"
)

// CoinLocks tracks which outpoints are currently reserved, grouped under the
// LockID that reserved them. The table itself lives in memory; WalletLibrary
// persists each LockGroup to Store, and wallet.Decrypt re-registers the
// stored groups through Restore, so reservations survive a reopen.
type CoinLocks struct {
	mu     sync.Mutex
	groups map[walletmodel.LockID]map[wire.OutPoint]struct{}
}

// New returns an empty lock table.
func New() *CoinLocks {
	return &CoinLocks{groups: map[walletmodel.LockID]map[wire.OutPoint]struct{}{}}
}

// Allocate reserves outpoints under a freshly minted LockID. Callers must
// have already confirmed none of outpoints are locked (IsLocked) before
// calling; Allocate does not itself check for overlap against existing
// groups, since the caller is expected to be mid coin-selection holding the
// WalletLibrary's own lock.
func (c *CoinLocks) Allocate(outpoints []wire.OutPoint) walletmodel.LockID {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := walletmodel.LockID(uuid.NewString())
	set := make(map[wire.OutPoint]struct{}, len(outpoints))
	for _, op := range outpoints {
		set[op] = struct{}{}
	}
	c.groups[id] = set
	return id
}

// Restore re-registers a LockGroup loaded from Store, keeping its original
// id. Used to rehydrate reservations on wallet reopen.
func (c *CoinLocks) Restore(group walletmodel.LockGroup) {
	c.mu.Lock()
	defer c.mu.Unlock()

	set := make(map[wire.OutPoint]struct{}, len(group.Outpoints))
	for _, op := range group.Outpoints {
		set[op] = struct{}{}
	}
	c.groups[group.ID] = set
}

// Release removes a reservation group. Releasing an unknown or already-
// empty LockID is a no-op, matching walletmodel.NoLock's use as a sentinel.
func (c *CoinLocks) Release(id walletmodel.LockID) {
	if id == walletmodel.NoLock {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.groups, id)
}

// IsLocked reports whether an outpoint is held by any active reservation
// group.
func (c *CoinLocks) IsLocked(op wire.OutPoint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, set := range c.groups {
		if _, ok := set[op]; ok {
			return true
		}
	}
	return false
}

// Groups returns every active reservation as walletmodel.LockGroup values,
// used by WalletLibrary to persist the current lock table to Store.
func (c *CoinLocks) Groups() []walletmodel.LockGroup {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]walletmodel.LockGroup, 0, len(c.groups))
	for id, set := range c.groups {
		ops := make([]wire.OutPoint, 0, len(set))
		for op := range set {
			ops = append(ops, op)
		}
		out = append(out, walletmodel.LockGroup{ID: id, Outpoints: ops})
	}
	return out
}
