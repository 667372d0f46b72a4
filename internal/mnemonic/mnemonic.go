// Package mnemonic implements BIP39-style entropy <-> word-list encoding,
// generalized to the engine's three entropy classes: 16, 32, and 64 bytes
// (12, 24, and 48 words). The 64-byte/48-word class has no equivalent in
// any published BIP39 library (standard implementations cap out at 256
// bits / 24 words), so the checksum-and-split arithmetic is implemented
// directly against the standard English wordlist rather than delegated to
// fixed-size library entry points.
package mnemonic

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"

	walleterr "github.com/ledgerforge/hdwallet/pkg/errors"
)

// Mnemonic is an ordered sequence of checksummed wordlist entries.
type Mnemonic struct {
	words   []string
	entropy []byte
}

// wordList is the fixed 2048-word English BIP39 list, reused verbatim
// across all three entropy classes.
var wordList = bip39.GetWordList() //nolint:gochecknoglobals // immutable reference table

var wordIndex = buildWordIndex()

func buildWordIndex() map[string]int {
	idx := make(map[string]int, len(wordList))
	for i, w := range wordList {
		idx[w] = i
	}
	return idx
}

// validEntropyLen reports whether n is one of the engine's three supported
// entropy byte lengths.
func validEntropyLen(n int) bool {
	return n == 16 || n == 32 || n == 64
}

// FromEntropy derives a Mnemonic from raw entropy. Entropy must be 16, 32,
// or 64 bytes, else ErrInvalidEntropyLength. The passphrase parameter is
// accepted for API symmetry with FromWords/seed derivation; it never
// affects word selection.
func FromEntropy(entropy []byte, _passphrase string) (Mnemonic, error) {
	if !validEntropyLen(len(entropy)) {
		return Mnemonic{}, walleterr.WithDetails(walleterr.ErrInvalidEntropyLength, map[string]string{
			"length": fmt.Sprintf("%d", len(entropy)),
		})
	}

	entropyBits := len(entropy) * 8
	checksumBits := len(entropy) / 4

	hash := sha256.Sum256(entropy)

	totalBits := entropyBits + checksumBits
	bits := make([]bool, totalBits)
	for i := 0; i < entropyBits; i++ {
		bits[i] = bitAt(entropy, i)
	}
	for i := 0; i < checksumBits; i++ {
		bits[entropyBits+i] = bitAt(hash[:], i)
	}

	wordCount := totalBits / 11
	words := make([]string, wordCount)
	for i := 0; i < wordCount; i++ {
		idx := 0
		for b := 0; b < 11; b++ {
			idx <<= 1
			if bits[i*11+b] {
				idx |= 1
			}
		}
		words[i] = wordList[idx]
	}

	return Mnemonic{words: words, entropy: append([]byte(nil), entropy...)}, nil
}

// FromWords parses and validates a space-separated phrase of 12, 24, or 48
// words, checking every word against the list and the trailing checksum.
func FromWords(text string) (Mnemonic, error) {
	words := strings.Fields(text)

	switch len(words) {
	case 12, 24, 48:
	default:
		return Mnemonic{}, walleterr.WithDetails(walleterr.ErrInvalidEntropyLength, map[string]string{
			"word_count": fmt.Sprintf("%d", len(words)),
		})
	}

	totalBits := len(words) * 11
	bits := make([]bool, totalBits)
	for i, w := range words {
		idx, ok := wordIndex[w]
		if !ok {
			return Mnemonic{}, walleterr.WithDetails(walleterr.ErrUnknownWord, map[string]string{
				"word": w,
			})
		}
		for b := 0; b < 11; b++ {
			bits[i*11+b] = idx&(1<<(10-b)) != 0
		}
	}

	entropyBits := totalBits * 32 / 33
	checksumBits := totalBits - entropyBits

	entropy := make([]byte, entropyBits/8)
	for i := 0; i < entropyBits; i++ {
		if bits[i] {
			entropy[i/8] |= 1 << (7 - uint(i%8))
		}
	}

	hash := sha256.Sum256(entropy)
	for i := 0; i < checksumBits; i++ {
		if bitAt(hash[:], i) != bits[entropyBits+i] {
			return Mnemonic{}, walleterr.ErrBadChecksum
		}
	}

	return Mnemonic{words: words, entropy: entropy}, nil
}

// String returns the space-joined word sequence.
func (m Mnemonic) String() string {
	return strings.Join(m.words, " ")
}

// Words returns a copy of the underlying word sequence.
func (m Mnemonic) Words() []string {
	out := make([]string, len(m.words))
	copy(out, m.words)
	return out
}

// WordCount returns the number of words (12, 24, or 48).
func (m Mnemonic) WordCount() int {
	return len(m.words)
}

// Entropy returns the raw entropy bytes this mnemonic encodes.
func (m Mnemonic) Entropy() []byte {
	return append([]byte(nil), m.entropy...)
}

// IsValidWord reports whether w is present in the fixed wordlist.
func IsValidWord(w string) bool {
	_, ok := wordIndex[w]
	return ok
}

func bitAt(data []byte, i int) bool {
	byteIdx := i / 8
	bitIdx := 7 - uint(i%8)
	return data[byteIdx]&(1<<bitIdx) != 0
}
