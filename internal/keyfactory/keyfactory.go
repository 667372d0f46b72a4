// Package keyfactory implements the engine's deterministic derivation
// primitives: entropy -> mnemonic -> seed -> master extended key -> account
// and child keys, over secp256k1 via BIP32.
package keyfactory

import (
	"crypto/sha512"
	"strconv"

	"golang.org/x/crypto/pbkdf2"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/ledgerforge/hdwallet/internal/mnemonic"
	"github.com/ledgerforge/hdwallet/internal/scripttype"
	"github.com/ledgerforge/hdwallet/internal/walletcrypto"
	walleterr "github.com/ledgerforge/hdwallet/pkg/errors"
)

// EntropyClass is the number of entropy bytes drawn for a new wallet; its
// value determines the resulting mnemonic's word count.
type EntropyClass int

const (
	// Low produces a 12-word mnemonic.
	Low EntropyClass = 16
	// Recommended produces a 24-word mnemonic.
	Recommended EntropyClass = 32
	// Paranoid produces a 48-word mnemonic.
	Paranoid EntropyClass = 64
)

// pbkdf2Iterations and seedLen fix the BIP39 seed-stretching parameters.
const (
	pbkdf2Iterations = 2048
	seedLen          = 64
)

// Seed derives the 64-byte BIP39 seed from a mnemonic phrase and salt:
// PBKDF2-HMAC-SHA512(words, "mnemonic"+salt, 2048, 64). The passphrase
// argument does not enter the derivation.
func Seed(m mnemonic.Mnemonic, passphrase, salt string) []byte {
	_ = passphrase // unused: the seed depends only on the words and the salt; kept for signature symmetry
	return pbkdf2.Key([]byte(m.String()), []byte("mnemonic"+salt), pbkdf2Iterations, seedLen, sha512.New)
}

// NewMaster draws entropyClass bytes from the CSPRNG (or leaves the buffer
// zeroed when debug is set, for deterministic test keys), derives the
// mnemonic and seed, and returns the network master extended private key.
func NewMaster(entropyClass EntropyClass, network *chaincfg.Params, passphrase, salt string, debug bool) (*hdkeychain.ExtendedKey, mnemonic.Mnemonic, []byte, error) {
	var entropy []byte
	if debug {
		entropy = make([]byte, entropyClass)
	} else {
		b, err := walletcrypto.RandomBytes(int(entropyClass))
		if err != nil {
			return nil, mnemonic.Mnemonic{}, nil, walleterr.Wrap(walleterr.ErrNoRandomSource, "drawing %d bytes", entropyClass)
		}
		entropy = b
	}

	m, err := mnemonic.FromEntropy(entropy, passphrase)
	if err != nil {
		return nil, mnemonic.Mnemonic{}, nil, err
	}

	master, err := MasterFromSeed(Seed(m, passphrase, salt), network)
	if err != nil {
		return nil, mnemonic.Mnemonic{}, nil, err
	}

	return master, m, entropy, nil
}

// Decrypt rebuilds the mnemonic, seed, and master key from previously
// stored entropy (Store's Decrypt construction mode).
func Decrypt(entropy []byte, network *chaincfg.Params, passphrase, salt string) (*hdkeychain.ExtendedKey, mnemonic.Mnemonic, error) {
	m, err := mnemonic.FromEntropy(entropy, passphrase)
	if err != nil {
		return nil, mnemonic.Mnemonic{}, err
	}
	master, err := MasterFromSeed(Seed(m, passphrase, salt), network)
	if err != nil {
		return nil, mnemonic.Mnemonic{}, err
	}
	return master, m, nil
}

// Recover rebuilds the master key from caller-supplied mnemonic words
// (RecoverFromMnemonic construction mode).
func Recover(m mnemonic.Mnemonic, network *chaincfg.Params, salt string) (*hdkeychain.ExtendedKey, error) {
	return MasterFromSeed(Seed(m, "", salt), network)
}

// MasterFromSeed derives the master extended private key at path m.
func MasterFromSeed(seed []byte, network *chaincfg.Params) (*hdkeychain.ExtendedKey, error) {
	key, err := hdkeychain.NewMaster(seed, network)
	if err != nil {
		return nil, walleterr.Wrap(walleterr.ErrKeyDerivation, "master key from seed")
	}
	return key, nil
}

// ExtendedPublicFromPrivate neuters a private extended key to its public
// counterpart (used for watch-only export and xpub display; never cached
// in place of the private key for signing).
func ExtendedPublicFromPrivate(key *hdkeychain.ExtendedKey) (*hdkeychain.ExtendedKey, error) {
	pub, err := key.Neuter()
	if err != nil {
		return nil, walleterr.Wrap(walleterr.ErrKeyDerivation, "neuter extended key")
	}
	return pub, nil
}

// PrivateChild derives the private child at the given BIP32 index. Indices
// >= hdkeychain.HardenedKeyStart are hardened.
func PrivateChild(key *hdkeychain.ExtendedKey, index uint32) (*hdkeychain.ExtendedKey, error) {
	child, err := key.Child(index)
	if err != nil {
		return nil, walleterr.WithDetails(walleterr.ErrKeyDerivation, map[string]string{"index": strconv.FormatUint(uint64(index), 10)})
	}
	return child, nil
}

// PublicChild derives the public child at the given non-hardened index
// from a neutered (public) extended key.
func PublicChild(pubKey *hdkeychain.ExtendedKey, index uint32) (*hdkeychain.ExtendedKey, error) {
	if index >= hdkeychain.HardenedKeyStart {
		return nil, walleterr.WithDetails(walleterr.ErrKeyDerivation, map[string]string{"reason": "hardened index requires private key"})
	}
	return PrivateChild(pubKey, index)
}

// AccountRootPath derives the account-root extended private key for a
// script type: m/purpose'/coin'/0'. purpose is 44/49/84 per ScriptType;
// coin is 0' on mainnet and 1' on testnet/regtest (see scripttype.Purpose).
func AccountRootPath(master *hdkeychain.ExtendedKey, t scripttype.ScriptType, coinType uint32) (*hdkeychain.ExtendedKey, error) {
	purpose, err := PrivateChild(master, hdkeychain.HardenedKeyStart+t.Purpose())
	if err != nil {
		return nil, err
	}
	coin, err := PrivateChild(purpose, hdkeychain.HardenedKeyStart+coinType)
	if err != nil {
		return nil, err
	}
	account, err := PrivateChild(coin, hdkeychain.HardenedKeyStart+0)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ParseEntropyClass maps a config-file entropy class name to its byte
// count, defaulting to Recommended for an unrecognized value.
func ParseEntropyClass(name string) EntropyClass {
	switch name {
	case "low":
		return Low
	case "paranoid":
		return Paranoid
	default:
		return Recommended
	}
}

// CoinType returns the standard BIP44 coin_type field for the given
// network: 0' on mainnet, 1' on testnet/regtest/simnet.
func CoinType(network *chaincfg.Params) uint32 {
	if network.Name == chaincfg.MainNetParams.Name {
		return 0
	}
	return 1
}
