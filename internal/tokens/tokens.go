package tokens

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ligun0805/sui-airdrop/internal/sui"
	"github.com/ligun0805/sui-airdrop/pkg/logger"
)

// DefaultDecimals is assumed when a coin type has no metadata.
const DefaultDecimals = 9

const metadataConcurrency = 4

// Descriptor describes a fungible token.
type Descriptor struct {
	Type     string
	Symbol   string
	Name     string
	Decimals int
	IconURL  string
}

// FallbackDescriptor synthesizes a descriptor from the coin type alone.
func FallbackDescriptor(coinType string) Descriptor {
	return Descriptor{
		Type:     coinType,
		Symbol:   sui.CoinTypeName(coinType),
		Name:     coinType,
		Decimals: DefaultDecimals,
	}
}

// Holding is an account's aggregated balance of one token, with every coin object backing it.
type Holding struct {
	Token   Descriptor
	Balance *big.Int
	Coins   []sui.Coin
}

// Display formats the balance in whole units.
func (h *Holding) Display() string {
	return FormatUnits(h.Balance, h.Token.Decimals)
}

// ChainService is the read side of a Sui node.
type ChainService interface {
	GetAllCoins(ctx context.Context, owner, coinType string, pageSize, maxPages int) ([]sui.Coin, error)
	GetCoinMetadata(ctx context.Context, coinType string) (*sui.CoinMetadata, error)
}

// Resolver finds whitelisted token holdings of an account.
type Resolver struct {
	chain     ChainService
	whitelist []string
	log       *logger.Logger

	PageSize int
	MaxPages int
}

func NewResolver(chain ChainService, whitelist []string, l *logger.Logger) *Resolver {
	if whitelist == nil {
		whitelist = Whitelist()
	}
	return &Resolver{
		chain:     chain,
		whitelist: whitelist,
		log:       logger.OrNop(l),
		PageSize:  sui.DefaultCoinPageSize,
		MaxPages:  sui.DefaultCoinMaxPages,
	}
}

func (r *Resolver) Whitelist() []string {
	return append([]string(nil), r.whitelist...)
}

// Resolve queries each whitelisted type. A failed query drops only that type.
// Types the account holds no coins of are absent from the result.
func (r *Resolver) Resolve(ctx context.Context, owner string) (map[string]*Holding, error) {
	if !sui.IsAddress(owner) {
		return nil, fmt.Errorf("invalid owner address %q", owner)
	}
	out := map[string]*Holding{}
	for _, coinType := range r.whitelist {
		coins, err := r.chain.GetAllCoins(ctx, owner, coinType, r.PageSize, r.MaxPages)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.log.Warnw("failed to fetch coins", "coinType", coinType, "class", sui.ClassifyError(err), "err", err)
			continue
		}
		for _, c := range coins {
			ct := c.CoinType
			if ct == "" {
				ct = coinType
			}
			h, ok := out[ct]
			if !ok {
				h = &Holding{Balance: new(big.Int)}
				out[ct] = h
			}
			h.Balance.Add(h.Balance, c.Balance)
			h.Coins = append(h.Coins, c)
		}
		r.log.Debugw("coins fetched", "coinType", coinType, "count", len(coins))
	}

	// Metadata reads are independent; each goroutine owns one holding.
	// A lookup failure falls back to defaults, so only cancellation stops the group.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(metadataConcurrency)
	for ct, h := range out {
		ct, h := ct, h
		g.Go(func() error {
			h.Token = r.describe(gctx, ct)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resolver) describe(ctx context.Context, coinType string) Descriptor {
	md, err := r.chain.GetCoinMetadata(ctx, coinType)
	if err != nil {
		if errors.Is(err, sui.ErrNoMetadata) {
			r.log.Infow("no metadata, using fallback", "coinType", coinType)
		} else {
			r.log.Warnw("failed to fetch metadata", "coinType", coinType, "err", err)
		}
		return FallbackDescriptor(coinType)
	}
	d := Descriptor{Type: coinType, Symbol: md.Symbol, Name: md.Name, Decimals: md.Decimals}
	if md.IconURL != nil {
		d.IconURL = *md.IconURL
	}
	if d.Symbol == "" {
		d.Symbol = sui.CoinTypeName(coinType)
	}
	return d
}

// Sorted orders holdings by whitelist position.
func (r *Resolver) Sorted(holdings map[string]*Holding) []*Holding {
	pos := map[string]int{}
	for i, t := range r.whitelist {
		pos[t] = i
	}
	out := make([]*Holding, 0, len(holdings))
	for _, h := range holdings {
		out = append(out, h)
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, iok := pos[out[i].Token.Type]
		pj, jok := pos[out[j].Token.Type]
		if iok != jok {
			return iok
		}
		if pi != pj {
			return pi < pj
		}
		return out[i].Token.Type < out[j].Token.Type
	})
	return out
}

// Lookup finds a holding by full coin type or by symbol (case-insensitive).
func Lookup(holdings map[string]*Holding, typeOrSymbol string) (*Holding, error) {
	key := strings.TrimSpace(typeOrSymbol)
	if h, ok := holdings[key]; ok {
		return h, nil
	}
	var match *Holding
	for _, h := range holdings {
		if strings.EqualFold(h.Token.Symbol, key) {
			if match != nil {
				return nil, fmt.Errorf("symbol %s is ambiguous, use the full coin type", key)
			}
			match = h
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no balance of %s in this wallet", key)
	}
	return match, nil
}

// FormatUnits renders an integer amount of smallest units as a decimal string without rounding.
func FormatUnits(n *big.Int, decimals int) string {
	if n == nil || n.Sign() == 0 {
		return "0"
	}
	if decimals <= 0 {
		return n.String()
	}
	sign := ""
	x := new(big.Int).Set(n)
	if x.Sign() < 0 {
		sign = "-"
		x.Abs(x)
	}
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(x, denom, new(big.Int))
	if frac.Sign() == 0 {
		return sign + whole.String()
	}
	fs := frac.Text(10)
	if len(fs) < decimals {
		fs = strings.Repeat("0", decimals-len(fs)) + fs
	}
	return sign + whole.String() + "." + strings.TrimRight(fs, "0")
}
