package chainio

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"

	walleterr "github.com/ledgerforge/hdwallet/pkg/errors"
)

// FullNodeIO implements BlockChainIO against a Bitcoin Core-compatible
// full-node JSON-RPC endpoint.
type FullNodeIO struct {
	client  *rpcclient.Client
	limiter *RateLimiter
}

// NewFullNodeIO dials host with the given credentials. disableTLS matches
// the common local-node setup (RPC over loopback, no certificate). Calls
// are rate-limited per RPC method via DefaultRateLimiter, so a sync burst
// on one method can't starve the others.
func NewFullNodeIO(host, user, pass string, disableTLS bool) (*FullNodeIO, error) {
	cfg := &rpcclient.ConnConfig{
		Host:         host,
		User:         user,
		Pass:         pass,
		HTTPPostMode: true,
		DisableTLS:   disableTLS,
	}
	client, err := rpcclient.New(cfg, nil)
	if err != nil {
		return nil, walleterr.Wrap(walleterr.ErrChainIoError, "connecting to full node: %v", err)
	}
	return &FullNodeIO{client: client, limiter: DefaultRateLimiter()}, nil
}

// Shutdown closes the underlying RPC connection.
func (f *FullNodeIO) Shutdown() {
	f.client.Shutdown()
}

// GetBlockCount returns the node's current chain tip height.
func (f *FullNodeIO) GetBlockCount(ctx context.Context) (uint32, error) {
	if err := f.limiter.Wait(ctx, "getblockcount"); err != nil {
		return 0, err
	}
	count, err := f.client.GetBlockCount()
	if err != nil {
		return 0, walleterr.Wrap(walleterr.ErrChainIoError, "getblockcount: %v", err)
	}
	return uint32(count), nil
}

// GetBlockHash returns the block hash at height.
func (f *FullNodeIO) GetBlockHash(ctx context.Context, height uint32) (chainhash.Hash, error) {
	if err := f.limiter.Wait(ctx, "getblockhash"); err != nil {
		return chainhash.Hash{}, err
	}
	hash, err := f.client.GetBlockHash(int64(height))
	if err != nil {
		return chainhash.Hash{}, walleterr.Wrap(walleterr.ErrChainIoError, "getblockhash(%d): %v", height, err)
	}
	return *hash, nil
}

// GetBlock returns the full block for hash.
func (f *FullNodeIO) GetBlock(ctx context.Context, hash chainhash.Hash) (*wire.MsgBlock, error) {
	if err := f.limiter.Wait(ctx, "getblock"); err != nil {
		return nil, err
	}
	block, err := f.client.GetBlock(&hash)
	if err != nil {
		return nil, walleterr.Wrap(walleterr.ErrChainIoError, "getblock(%s): %v", hash, err)
	}
	return block, nil
}

// SendRawTransaction broadcasts tx and returns its txid.
func (f *FullNodeIO) SendRawTransaction(ctx context.Context, tx *wire.MsgTx) (chainhash.Hash, error) {
	if err := f.limiter.Wait(ctx, "sendrawtransaction"); err != nil {
		return chainhash.Hash{}, err
	}
	hash, err := f.client.SendRawTransaction(tx, false)
	if err != nil {
		return chainhash.Hash{}, walleterr.Wrap(walleterr.ErrChainIoError, "sendrawtransaction: %v", err)
	}
	return *hash, nil
}
