package chain

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// rpcHandler answers JSON-RPC calls with canned results keyed by method.
type rpcHandler struct {
	results map[string]interface{}
	errors  map[string]string
	raw     map[string]string
	calls   []rpcRequest
}

func (h *rpcHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.calls = append(h.calls, req)
	w.Header().Set("Content-Type", "application/json")

	if raw, ok := h.raw[req.Method]; ok {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":` + raw + `}`))
		return
	}
	if msg, ok := h.errors[req.Method]; ok {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]interface{}{"code": -32000, "message": msg},
		})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      req.ID,
		"result":  h.results[req.Method],
	})
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func rpcLog(block, index string, topic common.Hash) map[string]interface{} {
	return map[string]interface{}{
		"address":          "0x1111111111111111111111111111111111111111",
		"topics":           []string{topic.Hex()},
		"data":             "0x01",
		"blockNumber":      block,
		"transactionHash":  "0xabc0000000000000000000000000000000000000000000000000000000000001",
		"transactionIndex": "0x0",
		"blockHash":        "0xdef0000000000000000000000000000000000000000000000000000000000002",
		"logIndex":         index,
		"removed":          false,
	}
}

func TestLatestBlockNumber(t *testing.T) {
	h := &rpcHandler{results: map[string]interface{}{"eth_blockNumber": "0x3e8"}}
	client := newTestClient(t, h)

	tip, err := client.LatestBlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), tip)
}

func TestFilterLogsSortsAndConverts(t *testing.T) {
	topic := common.HexToHash("0xaa")
	h := &rpcHandler{results: map[string]interface{}{
		"eth_getLogs": []interface{}{
			rpcLog("0x20", "0x1", topic),
			rpcLog("0x10", "0x5", topic),
			rpcLog("0x10", "0x2", topic),
		},
	}}
	client := newTestClient(t, h)

	address := common.HexToAddress("0x1111111111111111111111111111111111111111")
	logs, err := client.FilterLogs(context.Background(), 16, 32, address, topic)
	require.NoError(t, err)
	require.Len(t, logs, 3)

	assert.Equal(t, uint64(16), logs[0].BlockNumber)
	assert.Equal(t, uint64(2), logs[0].LogIndex)
	assert.Equal(t, uint64(16), logs[1].BlockNumber)
	assert.Equal(t, uint64(5), logs[1].LogIndex)
	assert.Equal(t, uint64(32), logs[2].BlockNumber)
	assert.Equal(t, address, logs[0].Address)
	assert.Equal(t, []byte{0x01}, logs[0].Data)
	assert.Equal(t, topic, logs[0].Topic0())

	require.Len(t, h.calls, 1)
	var filter map[string]interface{}
	require.NoError(t, json.Unmarshal(h.calls[0].Params[0], &filter))
	assert.Equal(t, "0x10", filter["fromBlock"])
	assert.Equal(t, "0x20", filter["toBlock"])
}

func TestFilterLogsRejectsBadInput(t *testing.T) {
	h := &rpcHandler{}
	client := newTestClient(t, h)
	address := common.HexToAddress("0x1111111111111111111111111111111111111111")

	_, err := client.FilterLogs(context.Background(), 10, 9, address, common.Hash{})
	assert.ErrorIs(t, err, ErrRPC)

	_, err = client.FilterLogs(context.Background(), 1, 2, common.Address{}, common.Hash{})
	assert.ErrorIs(t, err, ErrRPC)

	assert.Empty(t, h.calls)
}

func TestErrorClassification(t *testing.T) {
	t.Run("node error", func(t *testing.T) {
		h := &rpcHandler{errors: map[string]string{"eth_blockNumber": "backend unavailable"}}
		client := newTestClient(t, h)
		_, err := client.LatestBlockNumber(context.Background())
		assert.ErrorIs(t, err, ErrRPC)
		assert.False(t, errors.Is(err, ErrNetwork))
	})

	t.Run("malformed result", func(t *testing.T) {
		h := &rpcHandler{raw: map[string]string{"eth_blockNumber": `"not-a-number"`}}
		client := newTestClient(t, h)
		_, err := client.LatestBlockNumber(context.Background())
		assert.ErrorIs(t, err, ErrRPC)
	})

	t.Run("http failure", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad gateway", http.StatusBadGateway)
		}))
		_, err := client.LatestBlockNumber(context.Background())
		assert.ErrorIs(t, err, ErrNetwork)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.Copy(io.Discard, r.Body)
			select {
			case <-r.Context().Done():
			case <-release:
			}
		}))
		t.Cleanup(srv.Close)
		// runs before srv.Close so a stalled handler cannot block shutdown
		t.Cleanup(func() { close(release) })
		client, err := NewClient(context.Background(), srv.URL, 50*time.Millisecond)
		require.NoError(t, err)
		defer client.Close()

		_, err = client.LatestBlockNumber(context.Background())
		assert.ErrorIs(t, err, ErrNetwork)
	})
}
