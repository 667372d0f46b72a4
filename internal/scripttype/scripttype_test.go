package scripttype_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerforge/hdwallet/internal/scripttype"
)

// a valid compressed secp256k1 public key (generator point), used purely as
// fixed byte input to the address formatters under test.
const testPubKeyHex = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"

func testPubKey(t *testing.T) []byte {
	t.Helper()
	b, err := hex.DecodeString(testPubKeyHex)
	require.NoError(t, err)
	return b
}

func TestAddressPerScriptType(t *testing.T) {
	t.Parallel()
	pk := testPubKey(t)

	tests := []struct {
		name   string
		typ    scripttype.ScriptType
		prefix string
	}{
		{"p2pkh mainnet starts with 1", scripttype.P2PKH, "1"},
		{"p2sh-wpkh mainnet starts with 3", scripttype.P2SHWPKH, "3"},
		{"p2wkh mainnet starts with bc1", scripttype.P2WKH, "bc1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			addr, script, err := scripttype.Address(tt.typ, pk, &chaincfg.MainNetParams)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(addr, tt.prefix), "address %q should start with %q", addr, tt.prefix)
			assert.NotEmpty(t, script)
		})
	}
}

func TestAddressDeterministic(t *testing.T) {
	t.Parallel()
	pk := testPubKey(t)

	a1, s1, err := scripttype.Address(scripttype.P2WKH, pk, &chaincfg.MainNetParams)
	require.NoError(t, err)
	a2, s2, err := scripttype.Address(scripttype.P2WKH, pk, &chaincfg.MainNetParams)
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.Equal(t, s1, s2)
}

func TestPurposePerScriptType(t *testing.T) {
	t.Parallel()
	assert.Equal(t, uint32(44), scripttype.P2PKH.Purpose())
	assert.Equal(t, uint32(49), scripttype.P2SHWPKH.Purpose())
	assert.Equal(t, uint32(84), scripttype.P2WKH.Purpose())
}
