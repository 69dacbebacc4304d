package sui

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"

	"github.com/ligun0805/sui-airdrop/pkg/logger"
)

const (
	DefaultTimeout = 25 * time.Second

	// Defaults for the coin pager.
	DefaultCoinPageSize = 50
	DefaultCoinMaxPages = 20
)

// Options tune a Client. Zero values pick defaults.
type Options struct {
	Timeout time.Duration
	// ReadRate caps read calls per second; 0 disables throttling.
	ReadRate float64
	Logger   *logger.Logger
}

// Client is a thin Sui JSON-RPC client.
type Client struct {
	rc      *rpc.Client
	limiter *rate.Limiter
	log     *logger.Logger
	url     string
}

// Dial connects to a Sui fullnode over HTTP.
func Dial(ctx context.Context, url string, opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	hc := &http.Client{Timeout: opts.Timeout}
	rc, err := rpc.DialOptions(ctx, url, rpc.WithHTTPClient(hc))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &Client{rc: rc, log: logger.OrNop(opts.Logger), url: url}
	if opts.ReadRate > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.ReadRate), 1)
	}
	return c, nil
}

func (c *Client) Close() {
	c.rc.Close()
}

// URL returns the endpoint the client was dialed with.
func (c *Client) URL() string { return c.url }

func (c *Client) read(ctx context.Context, out interface{}, method string, args ...interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	start := time.Now()
	err := c.rc.CallContext(ctx, out, method, args...)
	if err != nil {
		c.log.Debugw("rpc call failed", "method", method, "class", ClassifyError(err), "err", err)
		return err
	}
	c.log.Debugw("rpc call", "method", method, "took", time.Since(start))
	return nil
}

// GetCoins returns one page of owner's coins of coinType.
func (c *Client) GetCoins(ctx context.Context, owner, coinType string, cursor *string, limit int) (*CoinPage, error) {
	var raw rpcCoinPage
	if err := c.read(ctx, &raw, "suix_getCoins", owner, coinType, cursor, limit); err != nil {
		return nil, fmt.Errorf("get coins %s: %w", CoinTypeName(coinType), err)
	}
	page := &CoinPage{NextCursor: raw.NextCursor, HasNextPage: raw.HasNextPage}
	for _, rc := range raw.Data {
		coin, err := rc.toCoin(owner)
		if err != nil {
			return nil, err
		}
		page.Data = append(page.Data, coin)
	}
	return page, nil
}

// GetAllCoins follows nextCursor until the last page or maxPages, whichever comes first.
func (c *Client) GetAllCoins(ctx context.Context, owner, coinType string, pageSize, maxPages int) ([]Coin, error) {
	if pageSize <= 0 {
		pageSize = DefaultCoinPageSize
	}
	if maxPages <= 0 {
		maxPages = DefaultCoinMaxPages
	}
	var (
		all    []Coin
		cursor *string
	)
	for i := 0; i < maxPages; i++ {
		page, err := c.GetCoins(ctx, owner, coinType, cursor, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		if !page.HasNextPage || page.NextCursor == nil {
			return all, nil
		}
		cursor = page.NextCursor
	}
	c.log.Warnw("coin listing truncated", "coinType", coinType, "pages", maxPages, "coins", len(all))
	return all, nil
}

// GetCoinMetadata returns metadata for coinType, or ErrNoMetadata.
func (c *Client) GetCoinMetadata(ctx context.Context, coinType string) (*CoinMetadata, error) {
	var md *CoinMetadata
	if err := c.read(ctx, &md, "suix_getCoinMetadata", coinType); err != nil {
		return nil, fmt.Errorf("get metadata %s: %w", CoinTypeName(coinType), err)
	}
	if md == nil {
		return nil, fmt.Errorf("%s: %w", coinType, ErrNoMetadata)
	}
	return md, nil
}

func amountStrings(amounts []*big.Int) []string {
	out := make([]string, len(amounts))
	for i, a := range amounts {
		out[i] = a.String()
	}
	return out
}

// Pay builds an unsigned transaction paying amounts of a non-SUI coin from inputCoins. The gas coin is picked by the node.
func (c *Client) Pay(ctx context.Context, signer string, inputCoins, recipients []string, amounts []*big.Int, gasBudget uint64) (*TransactionBytes, error) {
	var out TransactionBytes
	err := c.rc.CallContext(ctx, &out, "unsafe_pay",
		signer, inputCoins, recipients, amountStrings(amounts), nil, fmt.Sprint(gasBudget))
	if err != nil {
		return nil, fmt.Errorf("build pay: %w", err)
	}
	return &out, nil
}

// PaySui builds an unsigned transaction paying SUI; the first input coin also pays gas.
func (c *Client) PaySui(ctx context.Context, signer string, inputCoins, recipients []string, amounts []*big.Int, gasBudget uint64) (*TransactionBytes, error) {
	var out TransactionBytes
	err := c.rc.CallContext(ctx, &out, "unsafe_paySui",
		signer, inputCoins, recipients, amountStrings(amounts), fmt.Sprint(gasBudget))
	if err != nil {
		return nil, fmt.Errorf("build paySui: %w", err)
	}
	return &out, nil
}

// ExecuteTransactionBlock submits signed tx bytes and waits for local execution.
// A transaction whose effects report failure is returned as an error.
func (c *Client) ExecuteTransactionBlock(ctx context.Context, txBytes string, signatures []string) (*Submission, error) {
	var out rpcExecuteResponse
	opts := map[string]bool{"showEffects": true}
	if err := c.rc.CallContext(ctx, &out, "sui_executeTransactionBlock",
		txBytes, signatures, opts, "WaitForLocalExecution"); err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	if out.Effects != nil && out.Effects.Status.Status != "" && out.Effects.Status.Status != "success" {
		msg := out.Effects.Status.Error
		if msg == "" {
			msg = out.Effects.Status.Status
		}
		return nil, fmt.Errorf("transaction %s failed: %s", out.Digest, msg)
	}
	if out.Digest == "" {
		return nil, fmt.Errorf("execute: empty digest in response")
	}
	return &Submission{Digest: out.Digest}, nil
}
