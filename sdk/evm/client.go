// Package evm implements the chain access layer of the scanner: endpoint
// probing, bridgehub resolution, state transition inspection and priority
// queue verification, all over plain JSON-RPC with inline ABIs.
package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/sethvargo/go-retry"

	"github.com/elasticchain/scout/internal/utils/abi"
)

// DefaultCallTimeout bounds every individual RPC call when the caller does
// not override it.
const DefaultCallTimeout = 5 * time.Second

// RetryPolicy controls whether failed RPC reads are retried before being
// recorded as permanent errors. The zero value performs a single attempt,
// matching the behavior deployments have relied on so far.
type RetryPolicy struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries uint64
	// BaseDelay seeds the fibonacci backoff between attempts.
	BaseDelay time.Duration
}

// Options configures a Client.
type Options struct {
	Timeout time.Duration
	Retry   RetryPolicy
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultCallTimeout
	}

	return o.Timeout
}

// Client is a read-only JSON-RPC client for one layer endpoint. It never
// submits transactions. All calls are bounded by the configured timeout and
// optionally retried per the retry policy; no lock is held across a call.
type Client struct {
	url  string
	rpc  *gethrpc.Client
	eth  *ethclient.Client
	opts Options
}

// Dial connects to an endpoint. The connection itself is lazy in the
// underlying transport; failures surface on the first call.
func Dial(ctx context.Context, rawurl string, opts Options) (*Client, error) {
	rpcClient, err := gethrpc.DialContext(ctx, rawurl)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rawurl, err)
	}

	return &Client{
		url:  rawurl,
		rpc:  rpcClient,
		eth:  ethclient.NewClient(rpcClient),
		opts: opts,
	}, nil
}

// URL returns the endpoint this client talks to.
func (c *Client) URL() string { return c.url }

// Close releases the underlying transport.
func (c *Client) Close() {
	c.rpc.Close()
}

// do runs one RPC operation under the per-call timeout and retry policy.
func (c *Client) do(ctx context.Context, op func(ctx context.Context) error) error {
	attempt := func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.opts.timeout())
		defer cancel()

		return op(callCtx)
	}

	if c.opts.Retry.MaxRetries == 0 {
		return attempt(ctx)
	}

	delay := c.opts.Retry.BaseDelay
	if delay <= 0 {
		delay = 250 * time.Millisecond
	}
	backoff := retry.WithMaxRetries(c.opts.Retry.MaxRetries, retry.NewFibonacci(delay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := attempt(ctx); err != nil {
			return retry.RetryableError(err)
		}

		return nil
	})
	if err == nil {
		return nil
	}
	// Strip the retryable wrapper so callers record the underlying reason.
	if inner := errors.Unwrap(err); inner != nil {
		return inner
	}

	return err
}

// ChainID fetches the endpoint's chain id.
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	var id *big.Int
	err := c.do(ctx, func(ctx context.Context) error {
		var err error
		id, err = c.eth.ChainID(ctx)

		return err
	})
	if err != nil {
		return 0, err
	}

	return id.Uint64(), nil
}

// BlockNumber fetches the endpoint's latest block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var n uint64
	err := c.do(ctx, func(ctx context.Context) error {
		var err error
		n, err = c.eth.BlockNumber(ctx)

		return err
	})

	return n, err
}

// BridgehubAddress asks the endpoint for the bridgehub contract it settles
// through (zks_getBridgehubContract). Only gateway/client-chain endpoints
// implement that namespace; an L1 node returns a method-not-found error.
func (c *Client) BridgehubAddress(ctx context.Context) (common.Address, error) {
	var result string
	err := c.do(ctx, func(ctx context.Context) error {
		return c.rpc.CallContext(ctx, &result, "zks_getBridgehubContract")
	})
	if err != nil {
		return common.Address{}, err
	}
	if !common.IsHexAddress(result) {
		return common.Address{}, fmt.Errorf("zks_getBridgehubContract returned %q, not an address", result)
	}

	return common.HexToAddress(result), nil
}

// L1ChainID asks the endpoint for the chain id of its parent layer
// (zks_L1ChainId).
func (c *Client) L1ChainID(ctx context.Context) (uint64, error) {
	var result string
	err := c.do(ctx, func(ctx context.Context) error {
		return c.rpc.CallContext(ctx, &result, "zks_L1ChainId")
	})
	if err != nil {
		return 0, err
	}

	trimmed := strings.TrimPrefix(result, "0x")
	id, err := hexutil.DecodeUint64("0x" + trimmed)
	if err != nil {
		return 0, fmt.Errorf("zks_L1ChainId returned %q: %w", result, err)
	}

	return id, nil
}

// CodeAt fetches the deployed bytecode at addr on the latest block.
func (c *Client) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	var code []byte
	err := c.do(ctx, func(ctx context.Context) error {
		var err error
		code, err = c.eth.CodeAt(ctx, addr, nil)

		return err
	})

	return code, err
}

// BalanceAt fetches the native balance of addr on the latest block.
func (c *Client) BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error) {
	var bal *big.Int
	err := c.do(ctx, func(ctx context.Context) error {
		var err error
		bal, err = c.eth.BalanceAt(ctx, addr, nil)

		return err
	})

	return bal, err
}

// Call executes a read-only contract call and returns the decoded outputs.
func (c *Client) Call(ctx context.Context, to common.Address, contractABI gethabi.ABI, method string, args ...any) ([]any, error) {
	data, err := abi.Pack(contractABI, method, args...)
	if err != nil {
		return nil, err
	}

	msg := ethereum.CallMsg{To: &to, Data: data}

	var ret []byte
	err = c.do(ctx, func(ctx context.Context) error {
		var err error
		ret, err = c.eth.CallContract(ctx, msg, nil)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", method, to.Hex(), err)
	}

	return abi.Unpack(contractABI, method, ret)
}

// FilterLogs runs one eth_getLogs query.
func (c *Client) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error) {
	var logs []ethtypes.Log
	err := c.do(ctx, func(ctx context.Context) error {
		var err error
		logs, err = c.eth.FilterLogs(ctx, q)

		return err
	})

	return logs, err
}

// PortActive reports whether anything is listening at the endpoint's TCP
// address. It mirrors a plain connect-with-timeout and is the scanner's
// cheapest liveness signal before any RPC is attempted.
func PortActive(rawurl string, timeout time.Duration) bool {
	hostport := rawurl
	for _, prefix := range []string{"http://", "https://", "ws://", "wss://"} {
		hostport = strings.TrimPrefix(hostport, prefix)
	}
	if i := strings.IndexByte(hostport, '/'); i >= 0 {
		hostport = hostport[:i]
	}

	conn, err := net.DialTimeout("tcp", hostport, timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()

	return true
}
