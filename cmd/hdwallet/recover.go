package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ledgerforge/hdwallet/internal/mnemonic"
	"github.com/ledgerforge/hdwallet/internal/wallet"
)

func newRecoverCmd() *cobra.Command {
	var words string

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Rebuild a wallet from a recovery mnemonic",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEngineConfig()
			if err != nil {
				return err
			}

			chain, err := buildChain(cfg)
			if err != nil {
				return err
			}

			if words == "" {
				words, err = readMnemonicLine()
				if err != nil {
					return err
				}
			}
			if corrections := mnemonic.DetectTypos(words); len(corrections) > 0 {
				fmt.Fprintln(os.Stderr, mnemonic.FormatTypoSuggestions(corrections))
			}

			password, err := promptNewPassword()
			if err != nil {
				return err
			}
			defer zeroBytes(password)

			wl, err := wallet.RecoverFromMnemonic(wallet.Config{
				Network:    cfg.NetworkParams(),
				Dir:        cfg.StoreDir(),
				Password:   string(password),
				PlainStore: cfg.Security.PlainStore,
				Chain:      chain,
			}, words)
			if err != nil {
				return err
			}

			fmt.Printf("Wallet recovered. Balance: %d sats\n", wl.WalletBalance())
			return nil
		},
	}

	cmd.Flags().StringVar(&words, "mnemonic", "", "recovery phrase (prompted on stdin if omitted)")
	return cmd
}

func readMnemonicLine() (string, error) {
	fmt.Fprint(os.Stderr, "Enter recovery phrase: ")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 4096), 4096)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("no mnemonic provided")
	}
	return strings.TrimSpace(scanner.Text()), nil
}
