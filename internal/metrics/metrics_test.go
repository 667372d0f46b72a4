package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordChainCall(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordChainCall(10*time.Millisecond, nil)
	m.RecordChainCall(20*time.Millisecond, errors.New("timeout"))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.ChainCallsTotal)
	assert.Equal(t, int64(1), snap.ChainErrorsTotal)
	assert.InDelta(t, 15.0, m.ChainLatencyAvgMs(), 0.01)
}

func TestRecordBlockApplied(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordBlockApplied(nil)
	m.RecordBlockApplied(nil)
	m.RecordBlockApplied(errors.New("chain io error"))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.BlocksApplied)
	assert.Equal(t, int64(1), snap.SyncErrors)
}

func TestRecordSignOp(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordSignOp(nil)
	m.RecordSignOp(errors.New("bad script type"))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.SignOpsTotal)
	assert.Equal(t, int64(1), snap.SignOpsErrors)
}

func TestRecordLockLifecycle(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordLockAllocated()
	m.RecordLockAllocated()
	m.RecordLockReleased()

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.LocksAllocated)
	assert.Equal(t, int64(1), snap.LocksReleased)
}

func TestChainLatencyAvgMsZeroCalls(t *testing.T) {
	t.Parallel()
	m := &Metrics{}
	assert.Equal(t, 0.0, m.ChainLatencyAvgMs())
}

func TestReset(t *testing.T) {
	t.Parallel()
	m := &Metrics{}
	m.RecordChainCall(time.Millisecond, nil)
	m.RecordSignOp(nil)
	m.RecordLockAllocated()

	m.Reset()

	snap := m.Snapshot()
	assert.Equal(t, Snapshot{}, snap)
}
