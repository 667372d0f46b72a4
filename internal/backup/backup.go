package backup

import (
	"github.com/ledgerforge/hdwallet/internal/shamir"
)

// Backup bundles a Manifest with the share set it describes, for callers
// that want to persist both together (e.g. as a single JSON blob for
// out-of-band transport); the engine itself only ever needs the shares.
type Backup struct {
	Manifest Manifest `json:"manifest"`
	Shares   []string `json:"shares"`
}

// BackupEntropy splits master entropy into n shares with reconstruction
// threshold k, for out-of-band cold storage. The wallet never calls this
// itself; it is an opt-in operation layered over KeyFactory's entropy.
func BackupEntropy(entropy []byte, k, n int) (*Backup, error) {
	shares, err := shamir.Split(entropy, n, k)
	if err != nil {
		return nil, err
	}

	manifest := NewManifest(entropy, k, n)
	return &Backup{Manifest: manifest, Shares: shares}, nil
}

// RestoreFromShares reconstructs entropy from at least Manifest.Threshold
// shares and validates it against the manifest's recorded length and
// checksum before returning it.
func RestoreFromShares(manifest Manifest, shares []string) ([]byte, error) {
	entropy, err := shamir.Combine(shares)
	if err != nil {
		return nil, err
	}
	if err := manifest.Validate(entropy); err != nil {
		return nil, err
	}
	return entropy, nil
}
