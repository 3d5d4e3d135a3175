package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-labs/evmrpc/pkg/rpctransport"
	"github.com/lattice-labs/evmrpc/pkg/types"
)

type rpcCall struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
	ID     uint64        `json:"id"`
}

func handlerReturning(t *testing.T, result interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var call rpcCall
		require.NoError(t, json.NewDecoder(r.Body).Decode(&call))
		resultJSON, err := json.Marshal(result)
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + jsonInt(call.ID) + `,"result":` + string(resultJSON) + `}`))
	}
}

func jsonInt(id uint64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestBlockNumber(t *testing.T) {
	srv := httptest.NewServer(handlerReturning(t, "0x2a"))
	defer srv.Close()

	c := New(rpctransport.NewHTTPTransport(srv.URL))
	n, err := c.BlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(42), n)
}

func TestBalanceAt(t *testing.T) {
	var capturedParams []interface{}
	srv := httptest.NewServer(func() http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var call rpcCall
			require.NoError(t, json.NewDecoder(r.Body).Decode(&call))
			capturedParams = call.Params
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + jsonInt(call.ID) + `,"result":"0x3e8"}`))
		}
	}())
	defer srv.Close()

	c := New(rpctransport.NewHTTPTransport(srv.URL))
	addr := types.Address{1, 2, 3}
	balance, err := c.BalanceAt(context.Background(), addr, types.Latest)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance.Int64())
	require.Len(t, capturedParams, 2)
	assert.Equal(t, "latest", capturedParams[1])
}

func TestTransactionReceiptNotFound(t *testing.T) {
	srv := httptest.NewServer(handlerReturning(t, nil))
	defer srv.Close()

	c := New(rpctransport.NewHTTPTransport(srv.URL))
	_, err := c.TransactionReceipt(context.Background(), types.Hash{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilterLogsRejectsBlockHashWithRange(t *testing.T) {
	c := New(rpctransport.NewHTTPTransport("http://unused"))
	bh := types.Hash{1}
	from := types.Latest
	_, err := c.FilterLogs(context.Background(), FilterQuery{BlockHash: &bh, FromBlock: &from})
	assert.Error(t, err)
}

func TestSubscribeRequiresWebSocket(t *testing.T) {
	c := New(rpctransport.NewHTTPTransport("http://unused"))
	_, err := c.SubscribeNewHeads(context.Background())
	assert.ErrorIs(t, err, ErrSubscribeRequiresWebSocket)
}
