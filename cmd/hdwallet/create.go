package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerforge/hdwallet/internal/keyfactory"
	"github.com/ledgerforge/hdwallet/internal/wallet"
)

func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Generate a new wallet and print its recovery mnemonic",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEngineConfig()
			if err != nil {
				return err
			}

			chain, err := buildChain(cfg)
			if err != nil {
				return err
			}

			password, err := promptNewPassword()
			if err != nil {
				return err
			}
			defer zeroBytes(password)

			wl, err := wallet.Create(wallet.Config{
				Network:      cfg.NetworkParams(),
				Dir:          cfg.StoreDir(),
				Password:     string(password),
				PlainStore:   cfg.Security.PlainStore,
				Chain:        chain,
				EntropyClass: keyfactory.ParseEntropyClass(cfg.Derivation.EntropyClass),
			})
			if err != nil {
				return err
			}

			fmt.Println("Wallet created. Write down this recovery phrase and store it safely:")
			fmt.Println()
			fmt.Println(wl.Mnemonic())
			return nil
		},
	}
}
