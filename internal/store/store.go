// Package store implements the wallet engine's persistent key/value
// facade: a single JSON document per wallet directory, rewritten via
// atomic temp-file-then-rename on every mutation, with master entropy
// encrypted at rest. The on-disk layout is this module's own choice — the
// reference wallet this engine generalizes leaves persistence unimplemented
// entirely.
package store

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/ledgerforge/hdwallet/internal/fileutil"
	"github.com/ledgerforge/hdwallet/internal/scripttype"
	"github.com/ledgerforge/hdwallet/internal/walletcrypto"
	"github.com/ledgerforge/hdwallet/internal/walletmodel"
	walleterr "github.com/ledgerforge/hdwallet/pkg/errors"
)

// documentVersion is bumped whenever the on-disk schema changes in a way
// that requires a migration.
const documentVersion = 1

const stateFileName = "state.json"

// document is the full on-disk schema. Every Store mutation rewrites it in
// one atomic file operation, trading per-record write amplification for a
// trivially-auditable crash-safety story.
type document struct {
	Version           int                          `json:"version"`
	EntropyCiphertext []byte                       `json:"entropy_ciphertext,omitempty"`
	EntropyPlaintext  []byte                        `json:"entropy_plaintext,omitempty"`
	Encrypted         bool                          `json:"encrypted"`
	LastSeenHeight    uint32                        `json:"last_seen_height"`
	UTXOs             map[string]utxoRecord          `json:"utxos"`
	ExternalPubkeys   map[string][]pubkeyRecord      `json:"external_pubkeys"`
	InternalPubkeys   map[string][]pubkeyRecord      `json:"internal_pubkeys"`
	Addresses         map[string][]string            `json:"addresses"`
	LockGroups        map[string][]string            `json:"lock_groups"`
}

type utxoRecord struct {
	TxID         string `json:"txid"`
	Vout         uint32 `json:"vout"`
	Value        uint64 `json:"value"`
	ScriptType   uint8  `json:"script_type"`
	Chain        uint32 `json:"chain"`
	Index        uint32 `json:"index"`
	ScriptPubKey string `json:"script_pubkey_hex"`
}

type pubkeyRecord struct {
	Index  uint32 `json:"index"`
	PubKey string `json:"pubkey_hex"`
}

func newDocument() *document {
	return &document{
		Version:         documentVersion,
		UTXOs:           map[string]utxoRecord{},
		ExternalPubkeys: map[string][]pubkeyRecord{},
		InternalPubkeys: map[string][]pubkeyRecord{},
		Addresses:       map[string][]string{},
		LockGroups:      map[string][]string{},
	}
}

// Store is the single exclusive owner of the wallet's persisted state.
// Accounts and the WalletLibrary reach it only while the library's own
// mutex is held; Store's internal mutex exists purely to make its own
// read-modify-write file cycle safe in isolation.
type Store struct {
	dir      string
	password string
	plain    bool

	mu  sync.Mutex
	doc *document
}

// Open loads (or initializes) the wallet directory's state document.
// password encrypts/decrypts the entropy field unless plain is true.
func Open(dir, password string, plain bool) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, walleterr.Wrap(walleterr.ErrStoreError, "creating wallet directory: %v", err)
	}

	s := &Store{dir: dir, password: password, plain: plain}

	path := s.path()
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is derived from validated wallet directory
	switch {
	case os.IsNotExist(err):
		s.doc = newDocument()
		return s, nil
	case err != nil:
		return nil, walleterr.Wrap(walleterr.ErrStoreError, "reading state file: %v", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, walleterr.Wrap(walleterr.ErrStoreError, "parsing state file: %v", err)
	}
	if doc.Version > documentVersion {
		return nil, walleterr.New("STORE_ERROR", fmt.Sprintf("state file version %d is newer than supported %d", doc.Version, documentVersion))
	}
	s.doc = &doc
	return s, nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, stateFileName)
}

// save rewrites the whole document atomically. Caller must hold s.mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return walleterr.Wrap(walleterr.ErrStoreError, "marshaling state: %v", err)
	}
	if err := fileutil.WriteAtomic(s.path(), data, 0o600); err != nil {
		return walleterr.Wrap(walleterr.ErrStoreError, "writing state file: %v", err)
	}
	return nil
}

// PutEntropy encrypts (unless plain storage was selected) and persists the
// master entropy.
func (s *Store) PutEntropy(entropy []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.plain {
		s.doc.EntropyPlaintext = append([]byte(nil), entropy...)
		s.doc.EntropyCiphertext = nil
		s.doc.Encrypted = false
	} else {
		ciphertext, err := walletcrypto.Encrypt(entropy, s.password)
		if err != nil {
			return walleterr.Wrap(walleterr.ErrStoreError, "encrypting entropy: %v", err)
		}
		s.doc.EntropyCiphertext = ciphertext
		s.doc.EntropyPlaintext = nil
		s.doc.Encrypted = true
	}
	return s.save()
}

// GetEntropy decrypts and returns the persisted master entropy.
func (s *Store) GetEntropy() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.Encrypted {
		if len(s.doc.EntropyCiphertext) == 0 {
			return nil, walleterr.New("STORE_ERROR", "no entropy has been persisted")
		}
		plaintext, err := walletcrypto.Decrypt(s.doc.EntropyCiphertext, s.password)
		if err != nil {
			return nil, walleterr.Wrap(walleterr.ErrDecryptionFailed, "decrypting entropy: %v", err)
		}
		return plaintext, nil
	}

	if len(s.doc.EntropyPlaintext) == 0 {
		return nil, walleterr.New("STORE_ERROR", "no entropy has been persisted")
	}
	return append([]byte(nil), s.doc.EntropyPlaintext...), nil
}

// DeleteEntropy removes the persisted entropy record.
func (s *Store) DeleteEntropy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.EntropyCiphertext = nil
	s.doc.EntropyPlaintext = nil
	s.doc.Encrypted = false
	return s.save()
}

// PutHeight persists the last-seen block height.
func (s *Store) PutHeight(height uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.LastSeenHeight = height
	return s.save()
}

// GetHeight returns the last-seen block height (0 if never set).
func (s *Store) GetHeight() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.LastSeenHeight
}

// PutUTXO persists a single UTXO record.
func (s *Store) PutUTXO(u walletmodel.Utxo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.UTXOs[u.Outpoint.String()] = utxoRecord{
		TxID:         u.Outpoint.Hash.String(),
		Vout:         u.Outpoint.Index,
		Value:        u.Value,
		ScriptType:   uint8(u.ScriptType),
		Chain:        uint32(u.Path.Chain),
		Index:        u.Path.Index,
		ScriptPubKey: hex.EncodeToString(u.ScriptPubKey),
	}
	return s.save()
}

// DeleteUTXO removes a UTXO record by outpoint.
func (s *Store) DeleteUTXO(op wire.OutPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.doc.UTXOs, op.String())
	return s.save()
}

// ListUTXOs returns every persisted UTXO, used to rehydrate in-memory
// Account maps on open.
func (s *Store) ListUTXOs() ([]walletmodel.Utxo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]walletmodel.Utxo, 0, len(s.doc.UTXOs))
	for _, r := range s.doc.UTXOs {
		hash, err := chainhash.NewHashFromStr(r.TxID)
		if err != nil {
			return nil, walleterr.Wrap(walleterr.ErrStoreError, "parsing stored txid: %v", err)
		}
		spk, err := hexDecode(r.ScriptPubKey)
		if err != nil {
			return nil, walleterr.Wrap(walleterr.ErrStoreError, "parsing stored script_pubkey: %v", err)
		}
		out = append(out, walletmodel.Utxo{
			Outpoint:     wire.OutPoint{Hash: *hash, Index: r.Vout},
			Value:        r.Value,
			ScriptType:   scripttype.ScriptType(r.ScriptType),
			Path:         walletmodel.KeyPath{Chain: walletmodel.AddressChain(r.Chain), Index: r.Index},
			ScriptPubKey: spk,
		})
	}
	return out, nil
}

// PutPubkey persists one pubkey record for a (ScriptType, chain) branch.
func (s *Store) PutPubkey(t scripttype.ScriptType, chain walletmodel.AddressChain, index uint32, pubKey []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := scriptTypeKey(t)
	rec := pubkeyRecord{Index: index, PubKey: hex.EncodeToString(pubKey)}
	if chain == walletmodel.Internal {
		s.doc.InternalPubkeys[key] = append(s.doc.InternalPubkeys[key], rec)
	} else {
		s.doc.ExternalPubkeys[key] = append(s.doc.ExternalPubkeys[key], rec)
	}
	return s.save()
}

// ListPubkeys returns the append-order pubkey history for one (ScriptType,
// chain) branch, used to rehydrate Account vectors on open.
func (s *Store) ListPubkeys(t scripttype.ScriptType, chain walletmodel.AddressChain) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := scriptTypeKey(t)
	var recs []pubkeyRecord
	if chain == walletmodel.Internal {
		recs = s.doc.InternalPubkeys[key]
	} else {
		recs = s.doc.ExternalPubkeys[key]
	}

	out := make([][]byte, len(recs))
	for i, r := range recs {
		b, err := hexDecode(r.PubKey)
		if err != nil {
			return nil, walleterr.Wrap(walleterr.ErrStoreError, "parsing stored pubkey: %v", err)
		}
		out[i] = b
	}
	return out, nil
}

// PutAddress appends one issued address string for a script type.
func (s *Store) PutAddress(t scripttype.ScriptType, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := scriptTypeKey(t)
	s.doc.Addresses[key] = append(s.doc.Addresses[key], address)
	return s.save()
}

// ListAddresses returns the issue-order address list for a script type.
func (s *Store) ListAddresses(t scripttype.ScriptType) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.doc.Addresses[scriptTypeKey(t)]...)
}

// PutLockGroup persists a reservation group.
func (s *Store) PutLockGroup(g walletmodel.LockGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ops := make([]string, len(g.Outpoints))
	for i, op := range g.Outpoints {
		ops[i] = op.String()
	}
	s.doc.LockGroups[string(g.ID)] = ops
	return s.save()
}

// DeleteLockGroup removes a reservation group by id.
func (s *Store) DeleteLockGroup(id walletmodel.LockID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.doc.LockGroups, string(id))
	return s.save()
}

// ListLockGroups returns every persisted reservation group, used to
// rehydrate CoinLocks on open.
func (s *Store) ListLockGroups() ([]walletmodel.LockGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]walletmodel.LockGroup, 0, len(s.doc.LockGroups))
	for id, ops := range s.doc.LockGroups {
		parsed := make([]wire.OutPoint, 0, len(ops))
		for _, raw := range ops {
			op, err := parseOutpoint(raw)
			if err != nil {
				return nil, err
			}
			parsed = append(parsed, op)
		}
		out = append(out, walletmodel.LockGroup{ID: walletmodel.LockID(id), Outpoints: parsed})
	}
	return out, nil
}

func scriptTypeKey(t scripttype.ScriptType) string {
	return t.String()
}

func hexDecode(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(s)
}

func parseOutpoint(s string) (wire.OutPoint, error) {
	// wire.OutPoint.String() renders "<hash>:<index>"; find the last colon
	// since chainhash strings never contain one.
	idx := strings.LastIndexByte(s, ':')
	if idx < 0 {
		return wire.OutPoint{}, walleterr.New("STORE_ERROR", "malformed outpoint: "+s)
	}
	hash, err := chainhash.NewHashFromStr(s[:idx])
	if err != nil {
		return wire.OutPoint{}, walleterr.Wrap(walleterr.ErrStoreError, "parsing outpoint hash: %v", err)
	}
	vout, err := strconv.ParseUint(s[idx+1:], 10, 32)
	if err != nil {
		return wire.OutPoint{}, walleterr.Wrap(walleterr.ErrStoreError, "parsing outpoint index: %v", err)
	}
	return wire.OutPoint{Hash: *hash, Index: uint32(vout)}, nil
}
