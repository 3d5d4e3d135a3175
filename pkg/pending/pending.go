// Package pending implements the pending-transaction inclusion watcher:
// given a transaction hash, poll until it is mined and has accumulated the
// requested number of confirmations. It is grounded in the teacher's
// RSKTxMgrConfig retry-tuning shape (NumConfirmations, RetryInterval,
// MaxRetries, ReceiptQueryInterval), but scoped to spec's single
// awaitInclusion operation rather than a full transaction-lifecycle
// manager — see DESIGN.md for why the teacher's op-service/txmgr
// dependency was dropped rather than adapted.
package pending

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lattice-labs/evmrpc/pkg/types"
)

// ErrNotIncluded is returned when retries are exhausted without the
// transaction's receipt ever appearing.
var ErrNotIncluded = errors.New("pending: transaction not included before retries exhausted")

// ReceiptFetcher and BlockNumberFetcher are the two RPC operations the
// watcher needs; callers supply them bound to a concrete transport (HTTP
// or WebSocket) rather than the watcher depending on one directly.
type ReceiptFetcher func(ctx context.Context, txHash types.Hash) (*types.Receipt, error)
type BlockNumberFetcher func(ctx context.Context) (uint64, error)

// Config tunes AwaitInclusion's polling behavior.
type Config struct {
	Retries              int
	RetryInterval        time.Duration
	Confirmations        uint64
	ReceiptQueryInterval time.Duration
}

// DefaultConfig mirrors the teacher's RSKTxMgrConfig defaults, generalized
// off its RSK-specific ~30s block time comment to a conservative default
// suitable for any chain; callers tune Confirmations/intervals to their
// own chain's block time.
func DefaultConfig() Config {
	return Config{
		Retries:              10,
		RetryInterval:        time.Second,
		Confirmations:        1,
		ReceiptQueryInterval: time.Second,
	}
}

// AwaitInclusion polls getReceipt up to cfg.Retries times with
// cfg.RetryInterval spacing until txHash's receipt appears, then polls
// getBlockNumber until the chain has advanced cfg.Confirmations blocks
// past the receipt's block. A failed on-chain status still counts as
// successful inclusion — this watcher waits for finality, not success.
func AwaitInclusion(ctx context.Context, cfg Config, getReceipt ReceiptFetcher, getBlockNumber BlockNumberFetcher, txHash types.Hash) (*types.Receipt, error) {
	receipt, err := waitForReceipt(ctx, cfg, getReceipt, txHash)
	if err != nil {
		return nil, err
	}
	if cfg.Confirmations == 0 {
		return receipt, nil
	}
	if err := waitForConfirmations(ctx, cfg, getBlockNumber, receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

func waitForReceipt(ctx context.Context, cfg Config, getReceipt ReceiptFetcher, txHash types.Hash) (*types.Receipt, error) {
	for attempt := 0; attempt < cfg.Retries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, cfg.RetryInterval); err != nil {
				return nil, err
			}
		}
		receipt, err := getReceipt(ctx, txHash)
		if err != nil {
			return nil, fmt.Errorf("pending: fetching receipt: %w", err)
		}
		if receipt != nil {
			return receipt, nil
		}
	}
	return nil, ErrNotIncluded
}

func waitForConfirmations(ctx context.Context, cfg Config, getBlockNumber BlockNumberFetcher, receipt *types.Receipt) error {
	target := uint64(receipt.BlockNumber) + cfg.Confirmations
	for {
		current, err := getBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("pending: fetching block number: %w", err)
		}
		if current >= target {
			return nil
		}
		if err := sleep(ctx, cfg.ReceiptQueryInterval); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
