package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Print the wallet's unlocked balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEngineConfig()
			if err != nil {
				return err
			}

			wl, err := openExistingWallet(cfg)
			if err != nil {
				return err
			}

			fmt.Printf("%d sats\n", wl.WalletBalance())
			return nil
		},
	}
}
