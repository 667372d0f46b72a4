package wallet

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/ledgerforge/hdwallet/internal/account"
	"github.com/ledgerforge/hdwallet/internal/scripttype"
	"github.com/ledgerforge/hdwallet/internal/walletmodel"
	walleterr "github.com/ledgerforge/hdwallet/pkg/errors"
)

// signInput computes the appropriate sighash for utxo's script type
// (BIP143 for P2SH-WPKH/P2WKH, legacy pre-BIP143 serialization for P2PKH),
// signs it with the account's re-derived private key, and writes the
// resulting scriptSig/witness onto tx.TxIn[inputIndex].
func signInput(tx *wire.MsgTx, inputIndex int, utxo walletmodel.Utxo, acct *account.Account, sigHashes *txscript.TxSigHashes) error {
	pubKey, err := acct.PubKeyFor(utxo.Path)
	if err != nil {
		return err
	}
	pubKeyBytes := pubKey.SerializeCompressed()

	switch utxo.ScriptType {
	case scripttype.P2PKH:
		sigHash, err := txscript.CalcSignatureHash(utxo.ScriptPubKey, txscript.SigHashAll, tx, inputIndex)
		if err != nil {
			return walleterr.Wrap(walleterr.ErrSigningError, "legacy sighash for input %d: %v", inputIndex, err)
		}
		var arr [32]byte
		copy(arr[:], sigHash)
		sig, err := acct.SignFor(utxo.Path, arr)
		if err != nil {
			return err
		}
		sigBytes := append(sig.Serialize(), byte(txscript.SigHashAll))
		script, err := txscript.NewScriptBuilder().AddData(sigBytes).AddData(pubKeyBytes).Script()
		if err != nil {
			return walleterr.Wrap(walleterr.ErrSigningError, "building p2pkh scriptSig: %v", err)
		}
		tx.TxIn[inputIndex].SignatureScript = script
		return nil

	case scripttype.P2WKH:
		sigHash, err := txscript.CalcWitnessSigHash(p2pkhEquivalentScript(pubKeyBytes), sigHashes, txscript.SigHashAll, tx, inputIndex, int64(utxo.Value))
		if err != nil {
			return walleterr.Wrap(walleterr.ErrSigningError, "witness sighash for input %d: %v", inputIndex, err)
		}
		var arr [32]byte
		copy(arr[:], sigHash)
		sig, err := acct.SignFor(utxo.Path, arr)
		if err != nil {
			return err
		}
		sigBytes := append(sig.Serialize(), byte(txscript.SigHashAll))
		tx.TxIn[inputIndex].Witness = wire.TxWitness{sigBytes, pubKeyBytes}
		tx.TxIn[inputIndex].SignatureScript = nil
		return nil

	case scripttype.P2SHWPKH:
		sigHash, err := txscript.CalcWitnessSigHash(p2pkhEquivalentScript(pubKeyBytes), sigHashes, txscript.SigHashAll, tx, inputIndex, int64(utxo.Value))
		if err != nil {
			return walleterr.Wrap(walleterr.ErrSigningError, "witness sighash for input %d: %v", inputIndex, err)
		}
		var arr [32]byte
		copy(arr[:], sigHash)
		sig, err := acct.SignFor(utxo.Path, arr)
		if err != nil {
			return err
		}
		sigBytes := append(sig.Serialize(), byte(txscript.SigHashAll))
		tx.TxIn[inputIndex].Witness = wire.TxWitness{sigBytes, pubKeyBytes}

		redeem := scripttype.RedeemScript(pubKeyBytes)
		script, err := txscript.NewScriptBuilder().AddData(redeem).Script()
		if err != nil {
			return walleterr.Wrap(walleterr.ErrSigningError, "building p2sh-wpkh scriptSig: %v", err)
		}
		tx.TxIn[inputIndex].SignatureScript = script
		return nil

	default:
		return walleterr.New("SIGNING_ERROR", "unknown script type")
	}
}

// p2pkhEquivalentScript builds the P2PKH-shaped script BIP143 hashes in
// place of the real scriptPubKey for witness inputs (OP_DUP OP_HASH160
// <pkh> OP_EQUALVERIFY OP_CHECKSIG), per BIP143's "implied redeem script"
// rule for witness v0 key-hash outputs.
func p2pkhEquivalentScript(pubKey []byte) []byte {
	script, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(scripttype.Hash160(pubKey)).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
	if err != nil {
		panic(err) // fixed-shape script over a 20-byte push never fails
	}
	return script
}
