package wallet

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/ledgerforge/hdwallet/internal/metrics"
	"github.com/ledgerforge/hdwallet/internal/scripttype"
	"github.com/ledgerforge/hdwallet/internal/walletmodel"
	walleterr "github.com/ledgerforge/hdwallet/pkg/errors"
)

// FixedFee is the flat per-transaction fee this engine charges; no fee
// estimation is performed.
const FixedFee = 10000

// buildTx assembles an unsigned transaction spending inputs to destination
// for amount, with a change output at changeAddress iff the inputs exceed
// amount+FixedFee, then signs every input in place.
func (w *WalletLibrary) buildTx(inputs []walletmodel.Utxo, destination string, amount uint64, changeScriptType scripttype.ScriptType) (*wire.MsgTx, error) {
	var total uint64
	for _, u := range inputs {
		total += u.Value
	}
	if total < amount+FixedFee {
		return nil, walleterr.ErrInsufficientFunds
	}

	destAddr, err := btcutil.DecodeAddress(destination, w.network)
	if err != nil {
		return nil, walleterr.Wrap(walleterr.ErrInvalidAddress, "decoding destination %q: %v", destination, err)
	}
	destScript, err := txscript.PayToAddrScript(destAddr)
	if err != nil {
		return nil, walleterr.Wrap(walleterr.ErrInvalidAddress, "building destination script: %v", err)
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	for _, u := range inputs {
		tx.AddTxIn(wire.NewTxIn(&u.Outpoint, nil, nil))
	}
	tx.AddTxOut(wire.NewTxOut(int64(amount), destScript))

	change := total - amount - FixedFee
	if change > 0 {
		changeAddr, err := w.accountFor(changeScriptType).NewChangeAddress()
		if err != nil {
			return nil, err
		}
		changeAddress, err := btcutil.DecodeAddress(changeAddr, w.network)
		if err != nil {
			return nil, walleterr.Wrap(walleterr.ErrInvalidAddress, "decoding change address: %v", err)
		}
		changeScript, err := txscript.PayToAddrScript(changeAddress)
		if err != nil {
			return nil, walleterr.Wrap(walleterr.ErrInvalidAddress, "building change script: %v", err)
		}
		tx.AddTxOut(wire.NewTxOut(int64(change), changeScript))
	}

	sigHashes := txscript.NewTxSigHashes(tx, nil)
	for i, u := range inputs {
		acct := w.accountFor(u.ScriptType)
		err := signInput(tx, i, u, acct, sigHashes)
		metrics.Global.RecordSignOp(err)
		if err != nil {
			return nil, err
		}
	}

	return tx, nil
}

// selectCoins accumulates UTXOs in orderedUTXOs order (script type, then
// outpoint string; arrival order is not tracked) until the running total
// covers amount+FixedFee, skipping locked outpoints and, if witnessOnly is
// set, any non-P2WKH UTXO.
func (w *WalletLibrary) selectCoins(amount uint64, witnessOnly bool) ([]walletmodel.Utxo, error) {
	var selected []walletmodel.Utxo
	var total uint64

	for _, u := range w.orderedUTXOs() {
		if w.locks.IsLocked(u.Outpoint) {
			continue
		}
		if witnessOnly && u.ScriptType != scripttype.P2WKH {
			continue
		}
		selected = append(selected, u)
		total += u.Value
		if total >= amount+FixedFee {
			return selected, nil
		}
	}
	return nil, walleterr.ErrNoCoinsAvailable
}
