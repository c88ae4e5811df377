package chain

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"poagov/internal/model"
)

const defaultTimeout = 30 * time.Second

// Client wraps go-ethereum RPC with per-call timeouts and error classification.
type Client struct {
	endpoint  string
	timeout   time.Duration
	rpcClient *rpc.Client
	ethClient *ethclient.Client
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, classify("dial", err)
	}

	return &Client{
		endpoint:  rpcURL,
		timeout:   timeout,
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// Endpoint returns the RPC URL the client was dialed with.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// LatestBlockNumber returns the latest block number.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	number, err := c.ethClient.BlockNumber(ctx)
	if err != nil {
		return 0, classify("eth_blockNumber", err)
	}
	return number, nil
}

// FilterLogs returns the logs emitted by address with the given topic0 in
// the inclusive range, ordered by block number and log index.
func (c *Client) FilterLogs(
	ctx context.Context,
	fromBlock uint64,
	toBlock uint64,
	address common.Address,
	topic0 common.Hash,
) ([]model.LogEntry, error) {
	if toBlock < fromBlock {
		return nil, fmt.Errorf("eth_getLogs: %w: invalid range %d-%d", ErrRPC, fromBlock, toBlock)
	}
	if address == (common.Address{}) {
		return nil, fmt.Errorf("eth_getLogs: %w: empty contract address", ErrRPC)
	}

	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{address},
		Topics:    [][]common.Hash{{topic0}},
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	logs, err := c.ethClient.FilterLogs(ctx, query)
	if err != nil {
		return nil, classify("eth_getLogs", err)
	}

	entries := make([]model.LogEntry, 0, len(logs))
	for _, log := range logs {
		if log.Removed {
			continue
		}
		entries = append(entries, logEntry(log))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].BlockNumber != entries[j].BlockNumber {
			return entries[i].BlockNumber < entries[j].BlockNumber
		}
		return entries[i].LogIndex < entries[j].LogIndex
	})
	return entries, nil
}
