package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerforge/hdwallet/internal/walletmodel"
)

func newSendCmd() *cobra.Command {
	var amount uint64
	var lock bool
	var witnessOnly bool

	cmd := &cobra.Command{
		Use:   "send <address>",
		Short: "Select coins, build, sign, and broadcast a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEngineConfig()
			if err != nil {
				return err
			}

			wl, err := openExistingWallet(cfg)
			if err != nil {
				return err
			}

			tx, lockID, err := wl.SendCoins(context.Background(), args[0], amount, lock, witnessOnly)
			if err != nil {
				return err
			}

			fmt.Printf("Broadcast %s\n", tx.TxHash())
			if lockID != walletmodel.NoLock {
				fmt.Printf("Locked selected coins under lock %s\n", lockID)
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&amount, "amount", 0, "amount to send, in satoshis")
	cmd.Flags().BoolVar(&lock, "lock", false, "reserve the spent coins under a lock group")
	cmd.Flags().BoolVar(&witnessOnly, "witness-only", false, "restrict coin selection to native SegWit UTXOs")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
