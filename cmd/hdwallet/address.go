package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerforge/hdwallet/internal/scripttype"
)

func newAddressCmd() *cobra.Command {
	var scriptTypeName string

	cmd := &cobra.Command{
		Use:   "address",
		Short: "Issue a new receiving address",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEngineConfig()
			if err != nil {
				return err
			}

			wl, err := openExistingWallet(cfg)
			if err != nil {
				return err
			}

			st, err := parseScriptType(scriptTypeName)
			if err != nil {
				return err
			}

			addr, err := wl.NewAddress(st)
			if err != nil {
				return err
			}

			fmt.Println(addr)
			return nil
		},
	}

	cmd.Flags().StringVar(&scriptTypeName, "type", "p2wkh", "address convention: p2pkh, p2sh-wpkh, p2wkh")
	return cmd
}

func parseScriptType(name string) (scripttype.ScriptType, error) {
	switch name {
	case "p2pkh":
		return scripttype.P2PKH, nil
	case "p2sh-wpkh":
		return scripttype.P2SHWPKH, nil
	case "p2wkh", "":
		return scripttype.P2WKH, nil
	default:
		return 0, fmt.Errorf("unknown address type %q", name)
	}
}
