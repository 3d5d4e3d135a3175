package pending

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-labs/evmrpc/pkg/types"
)

func fastConfig() Config {
	return Config{Retries: 5, RetryInterval: time.Millisecond, Confirmations: 2, ReceiptQueryInterval: time.Millisecond}
}

func TestAwaitInclusionSucceedsAfterPolling(t *testing.T) {
	var calls int
	getReceipt := func(ctx context.Context, h types.Hash) (*types.Receipt, error) {
		calls++
		if calls < 3 {
			return nil, nil
		}
		return &types.Receipt{BlockNumber: 100}, nil
	}
	block := uint64(100)
	getBlockNumber := func(ctx context.Context) (uint64, error) {
		block++
		return block, nil
	}

	receipt, err := AwaitInclusion(context.Background(), fastConfig(), getReceipt, getBlockNumber, types.Hash{})
	require.NoError(t, err)
	assert.Equal(t, types.Uint64Quantity(100), receipt.BlockNumber)
	assert.GreaterOrEqual(t, calls, 3)
}

func TestAwaitInclusionNotIncluded(t *testing.T) {
	getReceipt := func(ctx context.Context, h types.Hash) (*types.Receipt, error) {
		return nil, nil
	}
	getBlockNumber := func(ctx context.Context) (uint64, error) {
		return 0, nil
	}

	_, err := AwaitInclusion(context.Background(), fastConfig(), getReceipt, getBlockNumber, types.Hash{})
	assert.ErrorIs(t, err, ErrNotIncluded)
}

func TestAwaitInclusionFailedStatusStillIncluded(t *testing.T) {
	failed := types.Uint64Quantity(0)
	getReceipt := func(ctx context.Context, h types.Hash) (*types.Receipt, error) {
		return &types.Receipt{BlockNumber: 50, Status: &failed}, nil
	}
	getBlockNumber := func(ctx context.Context) (uint64, error) {
		return 52, nil
	}

	receipt, err := AwaitInclusion(context.Background(), fastConfig(), getReceipt, getBlockNumber, types.Hash{})
	require.NoError(t, err)
	assert.False(t, receipt.Successful())
}

func TestAwaitInclusionWrapsRPCErrors(t *testing.T) {
	boom := errors.New("boom")
	getReceipt := func(ctx context.Context, h types.Hash) (*types.Receipt, error) {
		return nil, boom
	}
	getBlockNumber := func(ctx context.Context) (uint64, error) {
		return 0, nil
	}

	_, err := AwaitInclusion(context.Background(), fastConfig(), getReceipt, getBlockNumber, types.Hash{})
	assert.ErrorIs(t, err, boom)
}

func TestAwaitInclusionZeroConfirmationsSkipsBlockPolling(t *testing.T) {
	getReceipt := func(ctx context.Context, h types.Hash) (*types.Receipt, error) {
		return &types.Receipt{BlockNumber: 1}, nil
	}
	called := false
	getBlockNumber := func(ctx context.Context) (uint64, error) {
		called = true
		return 1, nil
	}

	cfg := fastConfig()
	cfg.Confirmations = 0
	_, err := AwaitInclusion(context.Background(), cfg, getReceipt, getBlockNumber, types.Hash{})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestAwaitInclusionRespectsContextCancellation(t *testing.T) {
	getReceipt := func(ctx context.Context, h types.Hash) (*types.Receipt, error) {
		return nil, nil
	}
	getBlockNumber := func(ctx context.Context) (uint64, error) {
		return 0, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := Config{Retries: 1000, RetryInterval: time.Hour, Confirmations: 1, ReceiptQueryInterval: time.Hour}
	_, err := AwaitInclusion(ctx, cfg, getReceipt, getBlockNumber, types.Hash{})
	assert.Error(t, err)
}
