// Package client is the typed façade combining pkg/rpctransport,
// pkg/types, pkg/txn, pkg/pending, and pkg/tracer into the eth_* method
// surface, adapted from the teacher's ethclient.Client method list and
// its toBlockNumArg/toCallArg/toFilterArg argument-shaping helpers (kept
// nearly as-is, since they are pure and chain-agnostic) — generalized
// off RSK's legacy-only gas model back to the full EIP-1559/4844/7702
// surface pkg/txn supports.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"

	"github.com/lattice-labs/evmrpc/pkg/hexutil"
	"github.com/lattice-labs/evmrpc/pkg/pending"
	"github.com/lattice-labs/evmrpc/pkg/rpctransport"
	"github.com/lattice-labs/evmrpc/pkg/tracer"
	"github.com/lattice-labs/evmrpc/pkg/txn"
	"github.com/lattice-labs/evmrpc/pkg/types"
)

// ErrNotFound is returned by methods that fetch a single optional
// resource (block, receipt) when the node reports none exists.
var ErrNotFound = errors.New("client: not found")

// Transport is the subset of rpctransport.HTTPTransport/WSTransport a
// Client needs: a single correlated call. Both concrete transports
// satisfy this without modification.
type Transport interface {
	Call(ctx context.Context, method string, params interface{}, out interface{}) error
}

// Subscriber is implemented only by WebSocket-backed transports; a
// Client built over HTTP leaves this nil and Subscribe* methods report
// ErrSubscribeRequiresWebSocket.
type Subscriber interface {
	Subscribe(ctx context.Context, method string, params interface{}) (string, <-chan json.RawMessage, func(), error)
}

// ErrSubscribeRequiresWebSocket is returned by Subscribe* methods when the
// underlying transport does not support subscriptions.
var ErrSubscribeRequiresWebSocket = errors.New("client: subscriptions require a WebSocket transport")

// Client is the typed eth_* method surface over an arbitrary transport.
type Client struct {
	transport  Transport
	subscriber Subscriber
}

// New wraps an already-constructed transport. A transport that also
// implements Subscriber (the WebSocket transport) backs the Subscribe*
// methods; an *rpctransport.HTTPTransport never does, so over HTTP those
// methods report ErrSubscribeRequiresWebSocket.
func New(transport Transport) *Client {
	c := &Client{transport: transport}
	if _, isHTTP := transport.(*rpctransport.HTTPTransport); isHTTP {
		return c
	}
	if s, ok := transport.(Subscriber); ok {
		c.subscriber = s
	}
	return c
}

// BlockNumber returns the most recent block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var result types.Uint64Quantity
	err := c.transport.Call(ctx, "eth_blockNumber", []interface{}{}, &result)
	return uint64(result), err
}

// ChainID retrieves the chain id used for transaction replay protection.
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	var result types.Uint64Quantity
	err := c.transport.Call(ctx, "eth_chainId", []interface{}{}, &result)
	return uint64(result), err
}

// BlockByNumber returns the block (with full transaction bodies) at the
// given height.
func (c *Client) BlockByNumber(ctx context.Context, number types.BlockNumberOrTag) (*types.Block, error) {
	var block *types.Block
	err := c.transport.Call(ctx, "eth_getBlockByNumber", []interface{}{number, true}, &block)
	if err == nil && block == nil {
		return nil, ErrNotFound
	}
	return block, err
}

// HeaderByNumber returns the block at the given height with only
// transaction hashes populated.
func (c *Client) HeaderByNumber(ctx context.Context, number types.BlockNumberOrTag) (*types.Block, error) {
	var block *types.Block
	err := c.transport.Call(ctx, "eth_getBlockByNumber", []interface{}{number, false}, &block)
	if err == nil && block == nil {
		return nil, ErrNotFound
	}
	return block, err
}

// TransactionReceipt returns the receipt of a mined transaction.
func (c *Client) TransactionReceipt(ctx context.Context, txHash types.Hash) (*types.Receipt, error) {
	var r *types.Receipt
	err := c.transport.Call(ctx, "eth_getTransactionReceipt", []interface{}{txHash}, &r)
	if err == nil && r == nil {
		return nil, ErrNotFound
	}
	return r, err
}

// SendRawTransaction submits an already-signed, already-encoded envelope.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (types.Hash, error) {
	var h types.Hash
	err := c.transport.Call(ctx, "eth_sendRawTransaction", []interface{}{hexutil.Encode(raw)}, &h)
	return h, err
}

// SendTransaction encodes signed's canonical envelope and submits it.
func (c *Client) SendTransaction(ctx context.Context, signed *txn.Signed) (types.Hash, error) {
	env, err := signed.Tx.SignedEnvelope(signed.Signature)
	if err != nil {
		return types.Hash{}, err
	}
	raw, err := txn.EnvelopeBytes(env)
	if err != nil {
		return types.Hash{}, err
	}
	return c.SendRawTransaction(ctx, raw)
}

// CallContract executes msg against the state at blockNumber without
// broadcasting a transaction.
func (c *Client) CallContract(ctx context.Context, msg types.CallRequest, blockNumber types.BlockNumberOrTag) ([]byte, error) {
	var result types.Bytes
	err := c.transport.Call(ctx, "eth_call", []interface{}{msg, blockNumber}, &result)
	return result, err
}

// CallContractWithOverride is eth_call with a state override map, e.g.
// for simulating against hypothetical balances or code.
func (c *Client) CallContractWithOverride(ctx context.Context, msg types.CallRequest, blockNumber types.BlockNumberOrTag, overrides types.StateOverride) ([]byte, error) {
	var result types.Bytes
	err := c.transport.Call(ctx, "eth_call", []interface{}{msg, blockNumber, overrides}, &result)
	return result, err
}

// EstimateGas estimates the gas msg would consume.
func (c *Client) EstimateGas(ctx context.Context, msg types.CallRequest) (uint64, error) {
	var result types.Uint64Quantity
	err := c.transport.Call(ctx, "eth_estimateGas", []interface{}{msg}, &result)
	return uint64(result), err
}

// SuggestGasPrice retrieves the node's suggested legacy gas price.
func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	var result types.Quantity
	err := c.transport.Call(ctx, "eth_gasPrice", []interface{}{}, &result)
	return result.Big(), err
}

// SuggestGasTipCap retrieves the node's suggested EIP-1559 priority fee.
func (c *Client) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	var result types.Quantity
	err := c.transport.Call(ctx, "eth_maxPriorityFeePerGas", []interface{}{}, &result)
	return result.Big(), err
}

// NonceAt returns account's nonce at blockNumber.
func (c *Client) NonceAt(ctx context.Context, account types.Address, blockNumber types.BlockNumberOrTag) (uint64, error) {
	var result types.Uint64Quantity
	err := c.transport.Call(ctx, "eth_getTransactionCount", []interface{}{account, blockNumber}, &result)
	return uint64(result), err
}

// PendingNonceAt returns account's nonce including pending transactions,
// the value to use for the next transaction.
func (c *Client) PendingNonceAt(ctx context.Context, account types.Address) (uint64, error) {
	return c.NonceAt(ctx, account, types.Pending)
}

// BalanceAt returns account's wei balance at blockNumber.
func (c *Client) BalanceAt(ctx context.Context, account types.Address, blockNumber types.BlockNumberOrTag) (*big.Int, error) {
	var result types.Quantity
	err := c.transport.Call(ctx, "eth_getBalance", []interface{}{account, blockNumber}, &result)
	return result.Big(), err
}

// CodeAt returns the code deployed at account.
func (c *Client) CodeAt(ctx context.Context, account types.Address, blockNumber types.BlockNumberOrTag) ([]byte, error) {
	var result types.Bytes
	err := c.transport.Call(ctx, "eth_getCode", []interface{}{account, blockNumber}, &result)
	return result, err
}

// StorageAt returns the 32-byte value at key in account's storage.
func (c *Client) StorageAt(ctx context.Context, account types.Address, key types.Hash, blockNumber types.BlockNumberOrTag) (types.Hash, error) {
	var result types.Hash
	err := c.transport.Call(ctx, "eth_getStorageAt", []interface{}{account, key, blockNumber}, &result)
	return result, err
}

// FeeHistory retrieves historical base fees, gas ratios, and priority fee
// percentiles for blockCount blocks ending at newestBlock.
func (c *Client) FeeHistory(ctx context.Context, blockCount uint64, newestBlock types.BlockNumberOrTag, rewardPercentiles []float64) (*types.FeeHistory, error) {
	var result types.FeeHistory
	err := c.transport.Call(ctx, "eth_feeHistory", []interface{}{
		hexutil.EncodeUint64(blockCount), newestBlock, rewardPercentiles,
	}, &result)
	return &result, err
}

// FilterQuery is the eth_getLogs argument object, adapted from the
// teacher's ethereum.FilterQuery.
type FilterQuery struct {
	BlockHash *types.Hash
	FromBlock *types.BlockNumberOrTag
	ToBlock   *types.BlockNumberOrTag
	Addresses []types.Address
	Topics    [][]types.Hash
}

func toFilterArg(q FilterQuery) (interface{}, error) {
	arg := map[string]interface{}{
		"address": q.Addresses,
		"topics":  q.Topics,
	}
	if q.BlockHash != nil {
		if q.FromBlock != nil || q.ToBlock != nil {
			return nil, errors.New("client: cannot specify both BlockHash and FromBlock/ToBlock")
		}
		arg["blockHash"] = *q.BlockHash
		return arg, nil
	}
	from := types.Earliest
	if q.FromBlock != nil {
		from = *q.FromBlock
	}
	to := types.Latest
	if q.ToBlock != nil {
		to = *q.ToBlock
	}
	arg["fromBlock"] = from
	arg["toBlock"] = to
	return arg, nil
}

// FilterLogs executes q as a one-shot eth_getLogs query.
func (c *Client) FilterLogs(ctx context.Context, q FilterQuery) ([]types.Log, error) {
	arg, err := toFilterArg(q)
	if err != nil {
		return nil, err
	}
	var result []types.Log
	err = c.transport.Call(ctx, "eth_getLogs", []interface{}{arg}, &result)
	return result, err
}

// AwaitInclusion polls for txHash's receipt and subsequent confirmations,
// per pkg/pending.
func (c *Client) AwaitInclusion(ctx context.Context, cfg pending.Config, txHash types.Hash) (*types.Receipt, error) {
	return pending.AwaitInclusion(ctx, cfg,
		func(ctx context.Context, h types.Hash) (*types.Receipt, error) {
			r, err := c.TransactionReceipt(ctx, h)
			if errors.Is(err, ErrNotFound) {
				return nil, nil
			}
			return r, err
		},
		c.BlockNumber,
		txHash,
	)
}

// TraceTransaction runs debug_traceTransaction with cfg, decoding into
// the struct-logger shape (the default tracer).
func (c *Client) TraceTransaction(ctx context.Context, txHash types.Hash, cfg tracer.Config) (*tracer.StructLogResult, error) {
	var result tracer.StructLogResult
	err := c.transport.Call(ctx, "debug_traceTransaction", []interface{}{txHash, cfg}, &result)
	return &result, err
}

// TraceCall runs debug_traceCall with the callTracer, returning the
// nested call-frame tree.
func (c *Client) TraceCall(ctx context.Context, msg types.CallRequest, blockNumber types.BlockNumberOrTag, cfg tracer.Config) (*tracer.CallFrame, error) {
	cfg.Tracer = "callTracer"
	var result tracer.CallFrame
	err := c.transport.Call(ctx, "debug_traceCall", []interface{}{msg, blockNumber, cfg}, &result)
	return &result, err
}

// SubscribeNewHeads opens a newHeads subscription over a WebSocket
// transport, delivering each event decoded as a types.Block through a
// pkg/types.Subscription.
func (c *Client) SubscribeNewHeads(ctx context.Context) (*types.Subscription[types.Block], error) {
	if c.subscriber == nil {
		return nil, ErrSubscribeRequiresWebSocket
	}
	_, raw, unsub, err := c.subscriber.Subscribe(ctx, "eth_subscribe", []interface{}{"newHeads"})
	if err != nil {
		return nil, err
	}
	return decodingSubscription[types.Block](raw, unsub), nil
}

// SubscribeLogs opens a logs subscription filtered by q.
func (c *Client) SubscribeLogs(ctx context.Context, q FilterQuery) (*types.Subscription[types.Log], error) {
	if c.subscriber == nil {
		return nil, ErrSubscribeRequiresWebSocket
	}
	arg, err := toFilterArg(q)
	if err != nil {
		return nil, err
	}
	_, raw, unsub, err := c.subscriber.Subscribe(ctx, "eth_subscribe", []interface{}{"logs", arg})
	if err != nil {
		return nil, err
	}
	return decodingSubscription[types.Log](raw, unsub), nil
}

// decodingSubscription adapts a raw json.RawMessage channel (as produced
// by rpctransport's subscription router) into a types.Subscription[T],
// decoding each event in a forwarding goroutine as it arrives; an event
// that fails to decode is skipped.
func decodingSubscription[T any](raw <-chan json.RawMessage, unsubscribe func()) *types.Subscription[T] {
	out := make(chan T, cap(raw))
	go func() {
		defer close(out)
		for msg := range raw {
			var v T
			if err := json.Unmarshal(msg, &v); err != nil {
				continue
			}
			out <- v
		}
	}()
	return types.NewSubscription(out, unsubscribe)
}
