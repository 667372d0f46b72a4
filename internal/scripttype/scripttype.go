// Package scripttype implements the three output-script conventions the
// engine supports — legacy P2PKH, backwards-compatible P2SH-wrapped-SegWit,
// and native SegWit P2WKH — including address formatting and script_pubkey
// derivation for each.
package scripttype

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"

	walleterr "github.com/ledgerforge/hdwallet/pkg/errors"
)

// ScriptType is the numeric tag persisted on disk for each account
// convention. Values are stable: 0/1/2, matching the reference wallet's
// AccountAddressType ordinals.
type ScriptType uint8

const (
	// P2PKH is the legacy pay-to-pubkey-hash convention.
	P2PKH ScriptType = iota
	// P2SHWPKH is a P2SH-wrapped witness-pubkey-hash program.
	P2SHWPKH
	// P2WKH is the native SegWit witness-pubkey-hash convention.
	P2WKH
)

// All enumerates the three script types in the fixed order the wallet
// library concatenates address lists and derives accounts.
var All = [3]ScriptType{P2PKH, P2SHWPKH, P2WKH}

// Purpose returns the BIP44/49/84 purpose field for this script type's
// account-root derivation path.
func (t ScriptType) Purpose() uint32 {
	switch t {
	case P2PKH:
		return 44
	case P2SHWPKH:
		return 49
	case P2WKH:
		return 84
	default:
		return 44
	}
}

// String renders a human-readable name, used in log fields and on-disk
// debugging aids (never as the persisted tag, which is the numeric value).
func (t ScriptType) String() string {
	switch t {
	case P2PKH:
		return "p2pkh"
	case P2SHWPKH:
		return "p2sh-wpkh"
	case P2WKH:
		return "p2wkh"
	default:
		return "unknown"
	}
}

// RedeemScript returns the `OP_0 <20-byte-pkh>` witness program used as the
// P2SH redeem script for P2SHWPKH addresses.
func RedeemScript(pubKey []byte) []byte {
	pkh := Hash160(pubKey)
	script, err := txscript.NewScriptBuilder().AddOp(txscript.OP_0).AddData(pkh).Script()
	if err != nil {
		// AddData of a fixed 20-byte push never fails; this is unreachable.
		panic(err)
	}
	return script
}

// Address formats the compressed public key per this script type and
// returns both the textual address and its script_pubkey bytes.
func Address(t ScriptType, pubKey []byte, net *chaincfg.Params) (string, []byte, error) {
	pkh := Hash160(pubKey)

	switch t {
	case P2PKH:
		addr, err := btcutil.NewAddressPubKeyHash(pkh, net)
		if err != nil {
			return "", nil, walleterr.Wrap(err, "p2pkh address")
		}
		script, err := txscript.PayToAddrScript(addr)
		if err != nil {
			return "", nil, walleterr.Wrap(err, "p2pkh script_pubkey")
		}
		return addr.EncodeAddress(), script, nil

	case P2SHWPKH:
		redeem := RedeemScript(pubKey)
		scriptHash := Hash160(redeem)
		addr, err := btcutil.NewAddressScriptHashFromHash(scriptHash, net)
		if err != nil {
			return "", nil, walleterr.Wrap(err, "p2sh-wpkh address")
		}
		script, err := txscript.PayToAddrScript(addr)
		if err != nil {
			return "", nil, walleterr.Wrap(err, "p2sh-wpkh script_pubkey")
		}
		return addr.EncodeAddress(), script, nil

	case P2WKH:
		addr, err := btcutil.NewAddressWitnessPubKeyHash(pkh, net)
		if err != nil {
			return "", nil, walleterr.Wrap(err, "p2wkh address")
		}
		script, err := txscript.PayToAddrScript(addr)
		if err != nil {
			return "", nil, walleterr.Wrap(err, "p2wkh script_pubkey")
		}
		return addr.EncodeAddress(), script, nil

	default:
		return "", nil, walleterr.New("UNKNOWN_SCRIPT_TYPE", "unknown script type")
	}
}
