// Package chainio defines the wallet engine's blockchain data-source
// boundary and two concrete backends: a full-node RPC client and an
// HTTP-polling index-server client.
package chainio

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// BlockChainIO is the engine's only dependency on an external blockchain
// data source. Every method takes a context so callers can bound publish
// and sync operations.
type BlockChainIO interface {
	// GetBlockCount returns the current chain tip height.
	GetBlockCount(ctx context.Context) (uint32, error)
	// GetBlockHash returns the block hash at height.
	GetBlockHash(ctx context.Context, height uint32) (chainhash.Hash, error)
	// GetBlock returns the full block for hash.
	GetBlock(ctx context.Context, hash chainhash.Hash) (*wire.MsgBlock, error)
	// SendRawTransaction broadcasts tx and returns its txid.
	SendRawTransaction(ctx context.Context, tx *wire.MsgTx) (chainhash.Hash, error)
}

// Block pairs a fetched block with the height it was fetched at, the unit
// the UTXO tracker and block source adapters exchange.
type Block struct {
	Height uint32
	Hash   chainhash.Hash
	Block  *wire.MsgBlock
}
