package main

import (
	"fmt"
	"time"

	"github.com/ledgerforge/hdwallet/internal/chainio"
	"github.com/ledgerforge/hdwallet/internal/config"
)

// buildChain constructs the BlockChainIO backend cfg selects.
func buildChain(cfg *config.Config) (chainio.BlockChainIO, error) {
	switch cfg.Chain.Backend {
	case "indexserver":
		timeout := time.Duration(cfg.Chain.IndexServer.TimeoutSeconds) * time.Second
		return chainio.NewIndexServerIO(cfg.Chain.IndexServer.BaseURL, timeout), nil
	case "fullnode", "":
		return chainio.NewFullNodeIO(
			cfg.Chain.FullNode.Host,
			cfg.Chain.FullNode.User,
			cfg.Chain.FullNode.Pass,
			cfg.Chain.FullNode.DisableTLS,
		)
	default:
		return nil, fmt.Errorf("unknown chain backend %q", cfg.Chain.Backend)
	}
}
