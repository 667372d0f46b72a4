package main

import (
	"github.com/ledgerforge/hdwallet/internal/config"
	"github.com/ledgerforge/hdwallet/internal/wallet"
)

// openExistingWallet takes the loaded cfg, builds the configured chain backend,
// prompts for the store password, and decrypts the wallet directory.
func openExistingWallet(cfg *config.Config) (*wallet.WalletLibrary, error) {
	chain, err := buildChain(cfg)
	if err != nil {
		return nil, err
	}

	password, err := promptPassword("Enter encryption password: ")
	if err != nil {
		return nil, err
	}
	defer zeroBytes(password)

	return wallet.Decrypt(wallet.Config{
		Network:    cfg.NetworkParams(),
		Dir:        cfg.StoreDir(),
		Password:   string(password),
		PlainStore: cfg.Security.PlainStore,
		Chain:      chain,
	})
}
