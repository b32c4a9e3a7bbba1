package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
)

// Minimal read-only ABI shared by the vault share token, the gauge and the
// staking pool: all three expose ERC-20 balances, and the vault adds the
// ERC-4626 scalars.
const readABI = `[
	{"name":"totalSupply","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"uint256"}]},
	{"name":"totalAssets","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"uint256"}]},
	{"name":"pricePerShare","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"uint256"}]},
	{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"type":"address"}],"outputs":[{"type":"uint256"}]},
	{"name":"symbol","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"string"}]}
]`

// TransferTopic is the ERC-20 Transfer(address,address,uint256) event signature.
var TransferTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

// tokenDecimals is the fixed-point scale of every amount in this domain.
const tokenDecimals = 18

// Client wraps an Ethereum JSON-RPC client with retry on transient failures.
type Client struct {
	eth        *ethclient.Client
	abi        abi.ABI
	maxRetries int
	baseDelay  time.Duration
}

// Dial connects to a JSON-RPC endpoint.
func Dial(ctx context.Context, rawURL string, maxRetries int, baseDelay time.Duration) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("dialing RPC endpoint: %w", err)
	}
	parsed, err := abi.JSON(strings.NewReader(readABI))
	if err != nil {
		return nil, fmt.Errorf("parsing read ABI: %w", err)
	}
	return &Client{eth: eth, abi: parsed, maxRetries: maxRetries, baseDelay: baseDelay}, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

// withRetry runs fn with exponential backoff between attempts.
func (c *Client) withRetry(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := range c.maxRetries + 1 {
		if attempt > 0 {
			delay := c.baseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, c.maxRetries+1, lastErr)
}

// call executes eth_call against the contract for the named read method.
func (c *Client) call(ctx context.Context, contract common.Address, method string, args ...any) ([]any, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s call: %w", method, err)
	}

	var raw []byte
	msg := ethereum.CallMsg{To: &contract, Data: data}
	err = c.withRetry(ctx, method, func() error {
		var callErr error
		raw, callErr = c.eth.CallContract(ctx, msg, nil)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	vals, err := c.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s result from %s: %w", method, contract.Hex(), err)
	}
	return vals, nil
}

// callUint256 reads a single uint256 scalar.
func (c *Client) callUint256(ctx context.Context, contract common.Address, method string, args ...any) (*big.Int, error) {
	vals, err := c.call(ctx, contract, method, args...)
	if err != nil {
		return nil, err
	}
	n, ok := vals[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s on %s returned %T, want uint256", method, contract.Hex(), vals[0])
	}
	return n, nil
}

// callString reads a single string return value.
func (c *Client) callString(ctx context.Context, contract common.Address, method string) (string, error) {
	vals, err := c.call(ctx, contract, method)
	if err != nil {
		return "", err
	}
	s, ok := vals[0].(string)
	if !ok {
		return "", fmt.Errorf("%s on %s returned %T, want string", method, contract.Hex(), vals[0])
	}
	return s, nil
}

// filterLogs runs eth_getLogs with retry.
func (c *Client) filterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	var logs []types.Log
	err := c.withRetry(ctx, "eth_getLogs", func() error {
		var filterErr error
		logs, filterErr = c.eth.FilterLogs(ctx, query)
		return filterErr
	})
	return logs, err
}

// blockNumber reads the current head block with retry.
func (c *Client) blockNumber(ctx context.Context) (uint64, error) {
	var n uint64
	err := c.withRetry(ctx, "eth_blockNumber", func() error {
		var numErr error
		n, numErr = c.eth.BlockNumber(ctx)
		return numErr
	})
	return n, err
}

// FromWei converts a raw uint256 amount to an exact 18-decimal value.
func FromWei(n *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(n, -tokenDecimals)
}
