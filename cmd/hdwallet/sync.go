package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Apply every block since the wallet's last-synced height",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEngineConfig()
			if err != nil {
				return err
			}

			wl, err := openExistingWallet(cfg)
			if err != nil {
				return err
			}

			if err := wl.SyncWithTip(context.Background()); err != nil {
				return err
			}

			fmt.Printf("Synced. Balance: %d sats\n", wl.WalletBalance())
			return nil
		},
	}
}
