package mnemonic_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerforge/hdwallet/internal/mnemonic"
	walleterr "github.com/ledgerforge/hdwallet/pkg/errors"
)

func TestFromEntropyRoundTrip(t *testing.T) {
	t.Parallel()

	for _, length := range []int{16, 32, 64} {
		entropy := bytes.Repeat([]byte{0x42}, length)
		m, err := mnemonic.FromEntropy(entropy, "")
		require.NoError(t, err)

		switch length {
		case 16:
			assert.Equal(t, 12, m.WordCount())
		case 32:
			assert.Equal(t, 24, m.WordCount())
		case 64:
			assert.Equal(t, 48, m.WordCount())
		}

		back, err := mnemonic.FromWords(m.String())
		require.NoError(t, err)
		assert.Equal(t, m.Words(), back.Words())
	}
}

func TestFromEntropyRejectsBadLength(t *testing.T) {
	t.Parallel()

	_, err := mnemonic.FromEntropy(make([]byte, 20), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, walleterr.ErrInvalidEntropyLength)
}

func TestFromWordsRejectsUnknownWord(t *testing.T) {
	t.Parallel()

	entropy := bytes.Repeat([]byte{0x01}, 16)
	m, err := mnemonic.FromEntropy(entropy, "")
	require.NoError(t, err)

	words := m.Words()
	words[0] = "notaword123"
	_, err = mnemonic.FromWords(joinWords(words))
	require.Error(t, err)
	assert.ErrorIs(t, err, walleterr.ErrUnknownWord)
}

func TestFromWordsRejectsBadChecksum(t *testing.T) {
	t.Parallel()

	entropy := bytes.Repeat([]byte{0x01}, 16)
	m, err := mnemonic.FromEntropy(entropy, "")
	require.NoError(t, err)

	words := m.Words()
	// swap two words to corrupt the checksum while keeping every word valid
	words[0], words[1] = words[1], words[0]
	_, err = mnemonic.FromWords(joinWords(words))
	require.Error(t, err)
	assert.ErrorIs(t, err, walleterr.ErrBadChecksum)
}

func TestDetectTyposSuggestsClosestWord(t *testing.T) {
	t.Parallel()

	corrections := mnemonic.DetectTypos("abandn ability able")
	require.Len(t, corrections, 1)
	assert.Equal(t, "abandn", corrections[0].Original)
	assert.Equal(t, "abandon", corrections[0].Suggestion)
}

func joinWords(words []string) string {
	out := ""
	for i, w := range words {
		if i > 0 {
			out += " "
		}
		out += w
	}
	return out
}
