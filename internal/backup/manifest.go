// Package backup provides optional Shamir-split cold backup of a wallet's
// master entropy. The wallet never requires shares to operate: BackupEntropy
// and RestoreFromShares are opt-in calls layered over KeyFactory/Store.
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrManifestMismatch indicates that reconstructed entropy does not
	// match the length or the checksum recorded in the manifest.
	ErrManifestMismatch = errors.New("backup manifest mismatch")

	// ErrInvalidFormat indicates the manifest is malformed.
	ErrInvalidFormat = errors.New("invalid backup manifest format")
)

// ManifestVersion is the current manifest format version.
const ManifestVersion = 1

// Manifest describes a Shamir split of a wallet's master entropy, without
// itself containing any share or secret material.
type Manifest struct {
	// Version is the manifest format version.
	Version int `json:"version"`

	// CreatedAt is when the split was performed.
	CreatedAt time.Time `json:"created_at"`

	// Threshold is the minimum number of shares required to reconstruct.
	Threshold int `json:"threshold"`

	// TotalShares is the number of shares generated.
	TotalShares int `json:"total_shares"`

	// EntropyLength is the byte length of the split secret (16, 32, or 64),
	// checked against the reconstructed value before it is handed back to
	// KeyFactory.
	EntropyLength int `json:"entropy_length"`

	// EntropyChecksum is SHA-256(entropy), verified after reconstruction so
	// a wrong share combination is caught before it is used to rebuild keys.
	EntropyChecksum string `json:"entropy_checksum"`
}

// NewManifest builds a Manifest describing a split of entropy into n shares
// with threshold k.
func NewManifest(entropy []byte, k, n int) Manifest {
	return Manifest{
		Version:         ManifestVersion,
		CreatedAt:       time.Now().UTC(),
		Threshold:       k,
		TotalShares:     n,
		EntropyLength:   len(entropy),
		EntropyChecksum: checksum(entropy),
	}
}

// Validate checks the manifest reconstructed entropy against this manifest's
// recorded length and checksum.
func (m Manifest) Validate(entropy []byte) error {
	if m.Version != ManifestVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidFormat, m.Version)
	}
	if len(entropy) != m.EntropyLength {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrManifestMismatch, m.EntropyLength, len(entropy))
	}
	if checksum(entropy) != m.EntropyChecksum {
		return ErrManifestMismatch
	}
	return nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
