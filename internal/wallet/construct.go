package wallet

import (
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/ledgerforge/hdwallet/internal/account"
	"github.com/ledgerforge/hdwallet/internal/chainio"
	"github.com/ledgerforge/hdwallet/internal/keyfactory"
	"github.com/ledgerforge/hdwallet/internal/mnemonic"
	"github.com/ledgerforge/hdwallet/internal/scripttype"
	"github.com/ledgerforge/hdwallet/internal/store"
)

// Config bundles the parameters shared by all three construction modes.
type Config struct {
	Network      *chaincfg.Params
	Dir          string
	Password     string
	PlainStore   bool
	Salt         string
	Chain        chainio.BlockChainIO
	EntropyClass keyfactory.EntropyClass
	Debug        bool // deterministic key generation, tests only
}

func newAccounts(master *hdkeychain.ExtendedKey, network *chaincfg.Params, st *store.Store) (map[scripttype.ScriptType]*account.Account, error) {
	accounts := make(map[scripttype.ScriptType]*account.Account, len(scripttype.All))
	for _, st2 := range scripttype.All {
		acct, err := account.New(master, st2, network, st)
		if err != nil {
			return nil, err
		}
		accounts[st2] = acct
	}
	return accounts, nil
}

// Create generates a fresh wallet: draws entropy, derives the master key,
// persists it (encrypted unless plain storage was selected), and builds an
// empty Account per script type.
func Create(cfg Config) (*WalletLibrary, error) {
	st, err := store.Open(cfg.Dir, cfg.Password, cfg.PlainStore)
	if err != nil {
		return nil, err
	}

	master, m, entropy, err := keyfactory.NewMaster(cfg.EntropyClass, cfg.Network, "", cfg.Salt, cfg.Debug)
	if err != nil {
		return nil, err
	}
	if err := st.PutEntropy(entropy); err != nil {
		return nil, err
	}

	accounts, err := newAccounts(master, cfg.Network, st)
	if err != nil {
		return nil, err
	}

	return newWalletLibrary(cfg.Network, st, cfg.Chain, accounts, m), nil
}

// Decrypt reopens an existing wallet directory: loads and decrypts the
// persisted entropy, rebuilds the master key, and rehydrates every Account
// (and the lock table) from Store.
func Decrypt(cfg Config) (*WalletLibrary, error) {
	st, err := store.Open(cfg.Dir, cfg.Password, cfg.PlainStore)
	if err != nil {
		return nil, err
	}

	entropy, err := st.GetEntropy()
	if err != nil {
		return nil, err
	}

	master, m, err := keyfactory.Decrypt(entropy, cfg.Network, "", cfg.Salt)
	if err != nil {
		return nil, err
	}

	accounts, err := newAccounts(master, cfg.Network, st)
	if err != nil {
		return nil, err
	}
	for _, acct := range accounts {
		if err := acct.Restore(); err != nil {
			return nil, err
		}
	}

	wl := newWalletLibrary(cfg.Network, st, cfg.Chain, accounts, m)

	groups, err := st.ListLockGroups()
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		wl.locks.Restore(g)
	}

	return wl, nil
}

// RecoverFromMnemonic rebuilds a wallet from caller-supplied mnemonic words,
// persisting its entropy into a (possibly new) wallet directory.
func RecoverFromMnemonic(cfg Config, words string) (*WalletLibrary, error) {
	m, err := mnemonic.FromWords(words)
	if err != nil {
		return nil, err
	}

	master, err := keyfactory.Recover(m, cfg.Network, cfg.Salt)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Dir, cfg.Password, cfg.PlainStore)
	if err != nil {
		return nil, err
	}
	if err := st.PutEntropy(m.Entropy()); err != nil {
		return nil, err
	}

	accounts, err := newAccounts(master, cfg.Network, st)
	if err != nil {
		return nil, err
	}

	return newWalletLibrary(cfg.Network, st, cfg.Chain, accounts, m), nil
}
