// Package utxotracker drives blockchain sync: polling a BlockChainIO for
// new blocks and applying each transaction to the wallet's account set in
// block order.
package utxotracker

import (
	"context"

	"github.com/btcsuite/btcd/wire"

	"github.com/ledgerforge/hdwallet/internal/chainio"
	"github.com/ledgerforge/hdwallet/internal/metrics"
	"github.com/ledgerforge/hdwallet/internal/store"
	walleterr "github.com/ledgerforge/hdwallet/pkg/errors"
)

// TxProcessor applies one transaction's effects (spent-outpoint removal,
// incoming-output matching) to the wallet's accounts. Implemented by
// wallet.WalletLibrary; kept as a narrow interface here so utxotracker does
// not import the wallet package.
type TxProcessor interface {
	ProcessTx(tx *wire.MsgTx) error
}

// Tracker advances a wallet's synced height by fetching and applying every
// block between the last-seen height and the chain tip.
type Tracker struct {
	chain     chainio.BlockChainIO
	store     *store.Store
	processor TxProcessor
}

// New builds a Tracker bound to chain for fetching blocks, store for
// persisting progress, and processor for applying transaction effects.
func New(chain chainio.BlockChainIO, st *store.Store, processor TxProcessor) *Tracker {
	return &Tracker{chain: chain, store: st, processor: processor}
}

// ApplyBlock applies every transaction in block, in order.
func (t *Tracker) ApplyBlock(block *wire.MsgBlock) error {
	for _, tx := range block.Transactions {
		if err := t.processor.ProcessTx(tx); err != nil {
			return err
		}
	}
	return nil
}

// SyncWithTip fetches the chain tip height and applies every block in
// (lastSeenHeight, tip], persisting the synced height only after each block
// fully applies. Idempotent: re-running after a partial failure resumes
// from the last successfully persisted height rather than reprocessing.
func (t *Tracker) SyncWithTip(ctx context.Context) error {
	tip, err := t.chain.GetBlockCount(ctx)
	if err != nil {
		return walleterr.Wrap(walleterr.ErrChainIoError, "fetching chain tip: %v", err)
	}

	last := t.store.GetHeight()
	for height := last + 1; height <= tip; height++ {
		hash, err := t.chain.GetBlockHash(ctx, height)
		if err != nil {
			return walleterr.Wrap(walleterr.ErrChainIoError, "fetching hash at height %d: %v", height, err)
		}
		block, err := t.chain.GetBlock(ctx, hash)
		if err != nil {
			return walleterr.Wrap(walleterr.ErrChainIoError, "fetching block %s: %v", hash, err)
		}
		err = t.ApplyBlock(block)
		metrics.Global.RecordBlockApplied(err)
		if err != nil {
			return err
		}
		if err := t.store.PutHeight(height); err != nil {
			return err
		}
	}
	return nil
}
