package chainio

import (
	"context"
	"time"
)

// BlockSource converts a BlockChainIO's polling contract into a pull-style
// channel of newly available blocks, one entry per height above the last
// one delivered. Both FullNodeIO and IndexServerIO back a BlockSource
// identically, since neither exposes a push notification in this engine.
type BlockSource struct {
	io           BlockChainIO
	pollInterval time.Duration
	lastHeight   uint32

	out  chan Block
	errs chan error
}

// NewBlockSource starts polling io for new blocks above startHeight,
// emitting them in height order on the returned channel. The channel and
// its companion error channel are closed when ctx is canceled.
func NewBlockSource(ctx context.Context, io BlockChainIO, startHeight uint32, pollInterval time.Duration) *BlockSource {
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	bs := &BlockSource{
		io:           io,
		pollInterval: pollInterval,
		lastHeight:   startHeight,
		out:          make(chan Block),
		errs:         make(chan error, 1),
	}
	go bs.run(ctx)
	return bs
}

// Blocks returns the channel new blocks are delivered on.
func (bs *BlockSource) Blocks() <-chan Block {
	return bs.out
}

// Errs returns the channel polling errors are delivered on (buffered,
// capacity 1: a stalled consumer does not block the poller forever; the
// first unread error is kept and later ones are dropped while it waits).
func (bs *BlockSource) Errs() <-chan error {
	return bs.errs
}

func (bs *BlockSource) run(ctx context.Context) {
	defer close(bs.out)
	defer close(bs.errs)

	ticker := time.NewTicker(bs.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bs.pollOnce(ctx)
		}
	}
}

func (bs *BlockSource) pollOnce(ctx context.Context) {
	tip, err := bs.io.GetBlockCount(ctx)
	if err != nil {
		bs.reportErr(err)
		return
	}

	for height := bs.lastHeight + 1; height <= tip; height++ {
		hash, err := bs.io.GetBlockHash(ctx, height)
		if err != nil {
			bs.reportErr(err)
			return
		}
		block, err := bs.io.GetBlock(ctx, hash)
		if err != nil {
			bs.reportErr(err)
			return
		}

		select {
		case bs.out <- Block{Height: height, Hash: hash, Block: block}:
			bs.lastHeight = height
		case <-ctx.Done():
			return
		}
	}
}

func (bs *BlockSource) reportErr(err error) {
	select {
	case bs.errs <- err:
	default:
	}
}
