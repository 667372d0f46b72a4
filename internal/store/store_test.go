package store_test

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerforge/hdwallet/internal/scripttype"
	"github.com/ledgerforge/hdwallet/internal/store"
	"github.com/ledgerforge/hdwallet/internal/walletcrypto"
	"github.com/ledgerforge/hdwallet/internal/walletmodel"
)

func init() {
	walletcrypto.SetScryptWorkFactor(10) // fast for tests
}

func TestOpenEmptyDirectoryInitializesDocument(t *testing.T) {
	t.Parallel()

	s, err := store.Open(t.TempDir(), "pw", false)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), s.GetHeight())

	utxos, err := s.ListUTXOs()
	require.NoError(t, err)
	assert.Empty(t, utxos)
}

func TestEntropyEncryptedRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	s, err := store.Open(dir, "correct horse", false)
	require.NoError(t, err)

	entropy := []byte("0123456789abcdef0123456789abcdef")
	require.NoError(t, s.PutEntropy(entropy))

	reopened, err := store.Open(dir, "correct horse", false)
	require.NoError(t, err)

	got, err := reopened.GetEntropy()
	require.NoError(t, err)
	assert.Equal(t, entropy, got)
}

func TestEntropyPlainStorageRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	s, err := store.Open(dir, "", true)
	require.NoError(t, err)

	entropy := []byte("plaintext-entropy-bytes")
	require.NoError(t, s.PutEntropy(entropy))

	reopened, err := store.Open(dir, "", true)
	require.NoError(t, err)
	got, err := reopened.GetEntropy()
	require.NoError(t, err)
	assert.Equal(t, entropy, got)
}

func TestUTXOPersistenceRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	s, err := store.Open(dir, "pw", false)
	require.NoError(t, err)

	hash, err := chainhash.NewHashFromStr("00000000000000000000000000000000000000000000000000000000000001")
	require.NoError(t, err)
	u := walletmodel.Utxo{
		Outpoint:     wire.OutPoint{Hash: *hash, Index: 2},
		Value:        100_000_000,
		ScriptType:   scripttype.P2WKH,
		Path:         walletmodel.KeyPath{Chain: walletmodel.External, Index: 3},
		ScriptPubKey: []byte{0x00, 0x14},
	}
	require.NoError(t, s.PutUTXO(u))

	reopened, err := store.Open(dir, "pw", false)
	require.NoError(t, err)
	utxos, err := reopened.ListUTXOs()
	require.NoError(t, err)
	require.Len(t, utxos, 1)
	assert.Equal(t, u.Value, utxos[0].Value)
	assert.Equal(t, u.ScriptType, utxos[0].ScriptType)
	assert.Equal(t, u.Path, utxos[0].Path)
	assert.Equal(t, u.ScriptPubKey, utxos[0].ScriptPubKey)
	assert.Equal(t, u.Outpoint, utxos[0].Outpoint)

	require.NoError(t, reopened.DeleteUTXO(u.Outpoint))
	utxos, err = reopened.ListUTXOs()
	require.NoError(t, err)
	assert.Empty(t, utxos)
}

func TestPubkeyAndAddressHistory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	s, err := store.Open(dir, "pw", false)
	require.NoError(t, err)

	pk1 := []byte{0x02, 0x01}
	pk2 := []byte{0x02, 0x02}
	require.NoError(t, s.PutPubkey(scripttype.P2PKH, walletmodel.External, 0, pk1))
	require.NoError(t, s.PutPubkey(scripttype.P2PKH, walletmodel.External, 1, pk2))
	require.NoError(t, s.PutAddress(scripttype.P2PKH, "1Address0"))
	require.NoError(t, s.PutAddress(scripttype.P2PKH, "1Address1"))

	pks, err := s.ListPubkeys(scripttype.P2PKH, walletmodel.External)
	require.NoError(t, err)
	require.Len(t, pks, 2)
	assert.Equal(t, pk1, pks[0])
	assert.Equal(t, pk2, pks[1])

	addrs := s.ListAddresses(scripttype.P2PKH)
	assert.Equal(t, []string{"1Address0", "1Address1"}, addrs)
}

func TestLockGroupPersistence(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	s, err := store.Open(dir, "pw", false)
	require.NoError(t, err)

	hash, err := chainhash.NewHashFromStr("00000000000000000000000000000000000000000000000000000000000002")
	require.NoError(t, err)
	group := walletmodel.LockGroup{
		ID:        walletmodel.LockID("lock-1"),
		Outpoints: []wire.OutPoint{{Hash: *hash, Index: 0}},
	}
	require.NoError(t, s.PutLockGroup(group))

	groups, err := s.ListLockGroups()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, group.ID, groups[0].ID)
	assert.Equal(t, group.Outpoints, groups[0].Outpoints)

	require.NoError(t, s.DeleteLockGroup(group.ID))
	groups, err = s.ListLockGroups()
	require.NoError(t, err)
	assert.Empty(t, groups)
}
