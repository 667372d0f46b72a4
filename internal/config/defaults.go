package config

// Defaults returns the engine's baseline configuration: mainnet, a
// full-node backend pointed at localhost, the standard 24-word entropy
// class, and error-level logging with no log file set.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    DefaultHome(),
		Network: NetworkConfig{
			Name: "mainnet",
		},
		Chain: ChainConfig{
			Backend: "fullnode",
			FullNode: FullNodeConfig{
				Host:       "127.0.0.1:8332",
				DisableTLS: true,
			},
			IndexServer: IndexServerConfig{
				BaseURL:        "https://blockstream.info/api",
				TimeoutSeconds: 15,
				PollSeconds:    10,
			},
		},
		Fees: FeesConfig{
			FixedFeeSats: 10000,
		},
		Derivation: DerivationConfig{
			AddressGap:   20,
			EntropyClass: "recommended",
		},
		Security: SecurityConfig{
			PlainStore: false,
			MemoryLock: true,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "",
			JSON:  false,
		},
	}
}
