package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ledgerforge/hdwallet/internal/config"
)

var homeFlag string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hdwallet",
		Short:         "Hierarchical-deterministic Bitcoin wallet engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&homeFlag, "home", "", "engine home directory (default ~/.hdwallet)")

	root.AddCommand(
		newCreateCmd(),
		newOpenCmd(),
		newRecoverCmd(),
		newAddressCmd(),
		newBalanceCmd(),
		newSendCmd(),
		newSyncCmd(),
	)

	return root
}

// loadEngineConfig loads config.yaml under --home (config.DefaultHome when
// --home is unset), uses Defaults in memory if the file is absent, and
// overlays environment overrides.
func loadEngineConfig() (*config.Config, error) {
	home := homeFlag
	if home == "" {
		home = config.DefaultHome()
	}

	cfgPath := config.Path(home)
	cfg, err := config.Load(cfgPath)
	if os.IsNotExist(err) {
		cfg = config.Defaults()
		cfg.Home = home
	} else if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg.Home = home

	config.ApplyEnvironment(cfg)
	for _, w := range cfg.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	return cfg, nil
}
