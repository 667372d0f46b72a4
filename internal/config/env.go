package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvHome          = "HDWALLET_HOME"
	EnvNetwork       = "HDWALLET_NETWORK"
	EnvChainBackend  = "HDWALLET_CHAIN_BACKEND"
	EnvFullNodeHost  = "HDWALLET_FULLNODE_HOST"
	EnvIndexBaseURL  = "HDWALLET_INDEX_BASE_URL"
	EnvFixedFeeSats  = "HDWALLET_FIXED_FEE_SATS"
	EnvEntropyClass  = "HDWALLET_ENTROPY_CLASS"
	EnvPlainStore    = "HDWALLET_PLAIN_STORE"
	EnvOutputFormat  = "HDWALLET_OUTPUT_FORMAT"
	EnvVerbose       = "HDWALLET_VERBOSE"
	EnvLogLevel      = "HDWALLET_LOG_LEVEL"
	EnvNoColor       = "NO_COLOR"
)

// ApplyEnvironment overlays environment variable overrides onto cfg.
// Malformed values are recorded in cfg.Warnings rather than rejected, since
// the engine should still start with its last-known-good configuration.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvNetwork); v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		switch v {
		case "mainnet", "testnet", "regtest":
			cfg.Network.Name = v
		default:
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("%s: unknown network %q", EnvNetwork, v))
		}
	}

	if v := os.Getenv(EnvChainBackend); v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		switch v {
		case "fullnode", "indexserver":
			cfg.Chain.Backend = v
		default:
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("%s: unknown backend %q", EnvChainBackend, v))
		}
	}

	if v := os.Getenv(EnvFullNodeHost); v != "" {
		cfg.Chain.FullNode.Host = sanitizeHost(v)
	}

	if v := os.Getenv(EnvIndexBaseURL); v != "" {
		sanitized := SanitizeURL(v)
		if err := ValidateRPCURL(sanitized); err != nil {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("%s: %v", EnvIndexBaseURL, err))
		}
		cfg.Chain.IndexServer.BaseURL = sanitized
	}

	if v := os.Getenv(EnvFixedFeeSats); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.Fees.FixedFeeSats = n
		} else {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("%s: invalid value %q", EnvFixedFeeSats, v))
		}
	}

	if v := os.Getenv(EnvEntropyClass); v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		switch v {
		case "low", "recommended", "paranoid":
			cfg.Derivation.EntropyClass = v
		default:
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("%s: unknown entropy class %q", EnvEntropyClass, v))
		}
	}

	if v := os.Getenv(EnvPlainStore); v != "" {
		cfg.Security.PlainStore = parseBool(v)
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// SanitizeURL trims whitespace and re-serializes rawURL through net/url,
// dropping anything url.Parse can't account for, for operator-supplied
// index-server endpoints.
func SanitizeURL(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	u, err := url.Parse(trimmed)
	if err != nil {
		return trimmed
	}
	return u.String()
}

// sanitizeHost trims whitespace from a host:port pair; full-node hosts are
// not URLs, so SanitizeURL would mangle them.
func sanitizeHost(raw string) string {
	return strings.TrimSpace(raw)
}

// ValidateRPCURL validates that an RPC URL uses HTTPS or WSS, or targets
// localhost/loopback for development.
func ValidateRPCURL(rawURL string) error {
	if rawURL == "" {
		return nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid RPC URL: %w", err)
	}

	if u.Scheme == "https" || u.Scheme == "wss" {
		return nil
	}

	host := u.Hostname()
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return nil
	}

	return fmt.Errorf("RPC URL must use HTTPS (got %s://%s): plaintext HTTP exposes signed transactions to network attackers", u.Scheme, u.Host)
}
