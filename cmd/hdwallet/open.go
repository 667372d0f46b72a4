package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decrypt-open",
		Short: "Decrypt and open an existing wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEngineConfig()
			if err != nil {
				return err
			}

			wl, err := openExistingWallet(cfg)
			if err != nil {
				return err
			}

			fmt.Printf("Wallet opened. Balance: %d sats\n", wl.WalletBalance())
			return nil
		},
	}
}
