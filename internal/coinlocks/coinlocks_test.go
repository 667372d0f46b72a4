package coinlocks_test

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerforge/hdwallet/internal/coinlocks"
	"github.com/ledgerforge/hdwallet/internal/walletmodel"
)

func outpoint(t *testing.T, hexHash string, index uint32) wire.OutPoint {
	t.Helper()
	hash, err := chainhash.NewHashFromStr(hexHash)
	require.NoError(t, err)
	return wire.OutPoint{Hash: *hash, Index: index}
}

func TestAllocateLocksAllGivenOutpoints(t *testing.T) {
	t.Parallel()

	locks := coinlocks.New()
	op1 := outpoint(t, "0000000000000000000000000000000000000000000000000000000000000a", 0)
	op2 := outpoint(t, "0000000000000000000000000000000000000000000000000000000000000b", 1)

	id := locks.Allocate([]wire.OutPoint{op1, op2})
	assert.NotEqual(t, walletmodel.NoLock, id)
	assert.True(t, locks.IsLocked(op1))
	assert.True(t, locks.IsLocked(op2))
}

func TestReleaseUnlocksGroup(t *testing.T) {
	t.Parallel()

	locks := coinlocks.New()
	op := outpoint(t, "0000000000000000000000000000000000000000000000000000000000000c", 0)
	id := locks.Allocate([]wire.OutPoint{op})
	require.True(t, locks.IsLocked(op))

	locks.Release(id)
	assert.False(t, locks.IsLocked(op))
}

func TestReleaseNoLockSentinelIsNoop(t *testing.T) {
	t.Parallel()

	locks := coinlocks.New()
	assert.NotPanics(t, func() { locks.Release(walletmodel.NoLock) })
}

func TestTwoAllocationsAreIndependent(t *testing.T) {
	t.Parallel()

	locks := coinlocks.New()
	op1 := outpoint(t, "0000000000000000000000000000000000000000000000000000000000000d", 0)
	op2 := outpoint(t, "0000000000000000000000000000000000000000000000000000000000000e", 0)

	id1 := locks.Allocate([]wire.OutPoint{op1})
	id2 := locks.Allocate([]wire.OutPoint{op2})
	assert.NotEqual(t, id1, id2)

	locks.Release(id1)
	assert.False(t, locks.IsLocked(op1))
	assert.True(t, locks.IsLocked(op2))
}

func TestRestoreRehydratesGroupUnderOriginalID(t *testing.T) {
	t.Parallel()

	locks := coinlocks.New()
	op := outpoint(t, "0000000000000000000000000000000000000000000000000000000000000f", 0)
	group := walletmodel.LockGroup{ID: walletmodel.LockID("fixed-id"), Outpoints: []wire.OutPoint{op}}

	locks.Restore(group)
	assert.True(t, locks.IsLocked(op))

	groups := locks.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, group.ID, groups[0].ID)
}
